package workflow

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/mattn/go-isatty"
)

// ExternalEditor opens the user's editor on a temporary copy of the message.
type ExternalEditor struct {
	ErrWriter io.Writer
	Stdin     io.Reader
	Stdout    io.Writer
}

// Edit returns the trimmed edited text, or "" when the user cleared it.
func (e *ExternalEditor) Edit(message string) (string, error) {
	stdin := e.Stdin
	if stdin == nil {
		stdin = os.Stdin
	}
	if f, ok := stdin.(*os.File); ok {
		if !isatty.IsTerminal(f.Fd()) && !isatty.IsCygwinTerminal(f.Fd()) {
			return "", errors.New("stdin is not a terminal, cannot open an editor")
		}
	}

	errWriter := e.ErrWriter
	if errWriter == nil {
		errWriter = os.Stderr
	}
	stdout := e.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}

	fmt.Fprintln(errWriter, "Opening editor to modify commit message...")

	tmpFile, err := os.CreateTemp("", "cmg-commit-*.txt")
	if err != nil {
		return "", fmt.Errorf("failed to create temporary file: %w", err)
	}

	tmpFileName := tmpFile.Name()
	defer os.Remove(tmpFileName)

	if _, err := tmpFile.WriteString(message); err != nil {
		tmpFile.Close()
		return "", fmt.Errorf("failed to write to temporary file: %w", err)
	}
	tmpFile.Close()

	editor := strings.Fields(getEditor())
	cmd := exec.Command(editor[0], append(editor[1:], tmpFileName)...)
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = errWriter

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("failed to open editor: %w", err)
	}

	editedBytes, err := os.ReadFile(tmpFileName)
	if err != nil {
		return "", fmt.Errorf("failed to read edited message: %w", err)
	}

	return strings.TrimSpace(string(editedBytes)), nil
}

func getEditor() string {
	if editor := strings.TrimSpace(os.Getenv("EDITOR")); editor != "" {
		return editor
	}
	if editor := strings.TrimSpace(os.Getenv("VISUAL")); editor != "" {
		return editor
	}
	return "vi"
}
