// Package git probes the staging area of the repository in the working directory.
package git

import (
	"errors"
	"fmt"

	"github.com/samzong/cmg/internal/gitcmd"
	"github.com/samzong/cmg/internal/gitutil"
)

// ErrNotGitRepository is returned when the staging area is queried outside a work tree.
var ErrNotGitRepository = errors.New("not a git repository")

type Options struct {
	Verbose bool
	// Dir runs every command in this directory instead of the process cwd.
	Dir string
}

type Client struct {
	runner gitcmd.Runner
}

func NewClient(opts Options) *Client {
	return &Client{runner: gitcmd.Runner{Verbose: opts.Verbose, Dir: opts.Dir}}
}

// IsGitRepository reports whether the working directory is inside a git work tree.
func (c *Client) IsGitRepository() bool {
	result, err := c.runner.Run("rev-parse", "--is-inside-work-tree")
	return err == nil && result.StdoutString(true) == "true"
}

// HasStagedChanges reports whether the index differs from HEAD.
// git exits non-zero in quiet mode when differences exist; any non-zero
// status is taken as "changes staged". Only a failure to start git is an error.
func (c *Client) HasStagedChanges() (bool, error) {
	result, err := c.runner.Run("diff", "--cached", "--quiet")
	if _, ok := gitcmd.ExitCode(err); !ok {
		return false, fmt.Errorf("failed to run git diff --cached --quiet: %w", err)
	}
	return result.ExitCode != 0, nil
}

// StagedFileNames returns staged paths in the order git reports them.
func (c *Client) StagedFileNames() ([]string, error) {
	result, err := c.runner.Run("diff", "--cached", "--name-only")
	if err != nil {
		if !c.IsGitRepository() {
			return nil, ErrNotGitRepository
		}
		return nil, gitutil.WrapGitError("git diff --cached --name-only failed", result, err)
	}
	return gitutil.SplitLines(result.StdoutString(false)), nil
}

// StagedDiff returns the unified diff of the staged changes, trimmed.
func (c *Client) StagedDiff() (string, error) {
	result, err := c.runner.Run("diff", "--cached")
	if err != nil {
		return "", gitutil.WrapGitError("git diff --cached failed", result, err)
	}
	return result.StdoutString(true), nil
}
