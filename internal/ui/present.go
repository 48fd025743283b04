package ui

import (
	"fmt"
	"io"
)

// Separator frames the sections printed by Present.
const Separator = "------------------------------"

// Present prints the proposed message followed by the staged files, one per line.
func Present(w io.Writer, message string, files []string) {
	fmt.Fprintln(w, Separator)
	fmt.Fprintln(w, "Proposed Commit Message:")
	fmt.Fprintln(w, message)
	fmt.Fprintln(w, Separator)
	fmt.Fprintln(w, "Staged Files:")
	for _, file := range files {
		fmt.Fprintln(w, file)
	}
	fmt.Fprintln(w, Separator)
}
