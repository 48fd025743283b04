// Package workflow sequences probing, generation, presentation and clipboard copy.
package workflow

import "context"

// GitClient abstracts the staging-area probe for testability.
type GitClient interface {
	HasStagedChanges() (bool, error)
	StagedFileNames() ([]string, error)
	StagedDiff() (string, error)
}

// LLMClient abstracts message generation for testability.
type LLMClient interface {
	GenerateCommitMessage(ctx context.Context, diff string) (string, error)
}

// ClipboardSink places a message on the clipboard, reporting the outcome itself.
type ClipboardSink interface {
	Copy(message string) bool
}

// Editor lets the user rewrite a message before it is presented.
type Editor interface {
	Edit(message string) (string, error)
}
