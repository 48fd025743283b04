package gitutil

import (
	"fmt"
	"strings"

	"github.com/samzong/cmg/internal/gitcmd"
)

// WrapGitError builds an error message that prefers git stderr output when present.
func WrapGitError(action string, result gitcmd.Result, err error) error {
	errMsg := result.StderrString(true)
	if errMsg != "" {
		return fmt.Errorf("%s: %s: %w", action, errMsg, err)
	}
	return fmt.Errorf("%s: %w", action, err)
}

// SplitLines splits command output into trimmed, non-empty lines, keeping order.
func SplitLines(output string) []string {
	lines := strings.Split(output, "\n")
	result := make([]string, 0, len(lines))
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			result = append(result, line)
		}
	}
	return result
}
