package gitcmd

import (
	"bytes"
	"errors"
	"os/exec"
	"strings"

	"github.com/samzong/cmg/internal/logger"
)

// Runner executes git commands with shared logging and output handling.
type Runner struct {
	Verbose bool
	Dir     string
	// Binary overrides the git executable, mainly for tests.
	Binary string
}

// Result contains captured stdout/stderr and the exit status of a git command.
type Result struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
}

func (r Result) StdoutString(trim bool) string {
	output := string(r.Stdout)
	if trim {
		return strings.TrimSpace(output)
	}
	return output
}

func (r Result) StderrString(trim bool) string {
	output := string(r.Stderr)
	if trim {
		return strings.TrimSpace(output)
	}
	return output
}

func (r Runner) binary() string {
	if r.Binary != "" {
		return r.Binary
	}
	return "git"
}

func (r Runner) command(args ...string) *exec.Cmd {
	cmd := exec.Command(r.binary(), args...)
	if r.Dir != "" {
		cmd.Dir = r.Dir
	}
	return cmd
}

func (r Runner) log(args []string) {
	if !r.Verbose {
		return
	}
	logger.Debugf("Running: git %s", strings.Join(args, " "))
}

// Run executes a git command and captures stdout/stderr.
// A non-zero exit status is reported both in Result.ExitCode and as an *exec.ExitError.
func (r Runner) Run(args ...string) (Result, error) {
	r.log(args)
	cmd := r.command(args...)

	var outBuf bytes.Buffer
	var errBuf bytes.Buffer
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf

	err := cmd.Run()
	result := Result{Stdout: outBuf.Bytes(), Stderr: errBuf.Bytes()}
	if code, ok := ExitCode(err); ok {
		result.ExitCode = code
	}
	return result, err
}

// ExitCode extracts the exit status from an error returned by Run.
// ok is false when the process could not be started at all.
func ExitCode(err error) (code int, ok bool) {
	if err == nil {
		return 0, true
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), true
	}
	return -1, false
}
