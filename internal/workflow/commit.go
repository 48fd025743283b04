package workflow

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/samzong/cmg/internal/llm"
	"github.com/samzong/cmg/internal/logger"
	"github.com/samzong/cmg/internal/ui"
)

// ErrGenerationFailed means no message was produced; the reason has already
// been reported to the user.
var ErrGenerationFailed = errors.New("failed to generate commit message")

// StagedChanges is the file list and diff collected from the index.
type StagedChanges struct {
	Files []string
	Diff  string
}

type CommitOptions struct {
	Edit        bool
	NoClipboard bool
	ErrWriter   io.Writer
	OutWriter   io.Writer
}

type CommitFlow struct {
	git       GitClient
	llm       LLMClient
	clipboard ClipboardSink
	editor    Editor
	opts      CommitOptions
}

func NewCommitFlow(git GitClient, llm LLMClient, clipboard ClipboardSink, opts CommitOptions) *CommitFlow {
	if opts.OutWriter == nil {
		opts.OutWriter = os.Stdout
	}
	if opts.ErrWriter == nil {
		opts.ErrWriter = os.Stderr
	}
	return &CommitFlow{
		git:       git,
		llm:       llm,
		clipboard: clipboard,
		editor:    &ExternalEditor{ErrWriter: opts.ErrWriter},
		opts:      opts,
	}
}

func (f *CommitFlow) SetEditor(e Editor) {
	f.editor = e
}

// Run executes the flow once. It returns nil when nothing is staged or the
// message was presented, ErrGenerationFailed when no message was produced,
// and any other error for environment faults.
func (f *CommitFlow) Run(ctx context.Context) error {
	staged, err := f.git.HasStagedChanges()
	if err != nil {
		return err
	}
	if !staged {
		fmt.Fprintln(f.opts.OutWriter, "No staged changes to generate a commit message.")
		return nil
	}

	changes, err := f.collect()
	if err != nil {
		return err
	}

	message, err := f.generate(ctx, changes.Diff)
	if err != nil {
		return err
	}

	if f.opts.Edit {
		message, err = f.edit(message)
		if err != nil {
			return err
		}
	}

	ui.Present(f.opts.OutWriter, message, changes.Files)

	if f.clipboard != nil && !f.opts.NoClipboard {
		f.clipboard.Copy(message)
	}
	return nil
}

func (f *CommitFlow) collect() (StagedChanges, error) {
	files, err := f.git.StagedFileNames()
	if err != nil {
		return StagedChanges{}, fmt.Errorf("failed to list staged files: %w", err)
	}

	diff, err := f.git.StagedDiff()
	if err != nil {
		return StagedChanges{}, fmt.Errorf("failed to get git diff: %w", err)
	}

	return StagedChanges{Files: files, Diff: diff}, nil
}

func (f *CommitFlow) generate(ctx context.Context, diff string) (string, error) {
	sp := ui.NewSpinnerTo(f.opts.ErrWriter, "Generating commit message...")
	sp.Start()
	message, err := f.llm.GenerateCommitMessage(ctx, diff)
	sp.Stop()

	var providerErr *llm.ProviderError
	switch {
	case err == nil:
	case errors.Is(err, llm.ErrMissingAPIKey):
		fmt.Fprintln(f.opts.ErrWriter, "OPENAI_API_KEY environment variable is not set.")
		fmt.Fprintln(f.opts.ErrWriter, "Hint: export OPENAI_API_KEY or run `cmg init`.")
	case errors.As(err, &providerErr):
		logger.Errorf("completion request failed: status=%d body=%q", providerErr.StatusCode, providerErr.Body)
		fmt.Fprintf(f.opts.ErrWriter, "OpenAI API request failed with status code: %d\n", providerErr.StatusCode)
		fmt.Fprintf(f.opts.ErrWriter, "Response: %s\n", providerErr.Body)
	case errors.Is(err, llm.ErrEmptyResponse):
		fmt.Fprintln(f.opts.ErrWriter, "OpenAI API returned no choices.")
	default:
		return "", err
	}

	if err != nil || message == "" {
		fmt.Fprintln(f.opts.OutWriter, "Failed to generate commit message.")
		return "", ErrGenerationFailed
	}
	return message, nil
}

func (f *CommitFlow) edit(message string) (string, error) {
	edited, err := f.editor.Edit(message)
	if err != nil {
		return "", err
	}
	if edited == "" {
		fmt.Fprintln(f.opts.ErrWriter, "Empty message provided, using original message")
		return message, nil
	}
	return edited, nil
}
