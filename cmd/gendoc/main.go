//go:build ignore

// Command gendoc writes cmg reference documentation.
//
//	go run ./cmd/gendoc [dir] [man|markdown]
package main

import (
	"fmt"
	"os"

	"github.com/samzong/cmg/cmd"
	"github.com/spf13/cobra/doc"
)

func main() {
	dir := "./docs/man"
	format := "man"
	if len(os.Args) > 1 {
		dir = os.Args[1]
	}
	if len(os.Args) > 2 {
		format = os.Args[2]
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating directory: %v\n", err)
		os.Exit(1)
	}

	rootCmd := cmd.RootCmd()
	rootCmd.DisableAutoGenTag = true

	var err error
	switch format {
	case "man":
		err = doc.GenManTree(rootCmd, &doc.GenManHeader{
			Title:   "CMG",
			Section: "1",
			Source:  "cmg " + cmd.Version,
			Manual:  "cmg Manual",
		}, dir)
	case "markdown":
		err = doc.GenMarkdownTree(rootCmd, dir)
	default:
		err = fmt.Errorf("unknown format %q (want man or markdown)", format)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating docs: %v\n", err)
		os.Exit(1)
	}

	fmt.Fprintf(os.Stderr, "%s docs generated in %s\n", format, dir)
}
