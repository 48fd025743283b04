// Package clipboard copies text to the system clipboard through the
// platform's command line utility.
package clipboard

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/samzong/cmg/internal/logger"
)

// Platform selects which clipboard utility is used.
type Platform int

const (
	PlatformUnsupported Platform = iota
	PlatformMacOS
	PlatformUnix
)

func (p Platform) String() string {
	switch p {
	case PlatformMacOS:
		return "macos"
	case PlatformUnix:
		return "unix"
	default:
		return "unsupported"
	}
}

// Detect maps an OS name such as runtime.GOOS or "Mac OS X" to a Platform.
func Detect(osName string) Platform {
	name := strings.ToLower(osName)
	switch {
	case strings.Contains(name, "mac"), strings.Contains(name, "darwin"):
		return PlatformMacOS
	case strings.Contains(name, "nix"), strings.Contains(name, "nux"), strings.Contains(name, "aix"):
		return PlatformUnix
	default:
		return PlatformUnsupported
	}
}

// Current returns the Platform of the running process.
func Current() Platform {
	return Detect(runtime.GOOS)
}

// Command returns the utility for p; ok is false for PlatformUnsupported.
func (p Platform) Command() (name string, args []string, ok bool) {
	switch p {
	case PlatformMacOS:
		return "pbcopy", nil, true
	case PlatformUnix:
		return "xclip", []string{"-selection", "clipboard"}, true
	default:
		return "", nil, false
	}
}

// Runner starts name with args, feeds stdin to it and waits for it to exit.
type Runner func(name string, args []string, stdin string) error

// Sink places messages on the clipboard and falls back to printing them.
type Sink struct {
	Platform Platform
	Out      io.Writer
	Run      Runner
}

func NewSink(out io.Writer) *Sink {
	return &Sink{Platform: Current(), Out: out, Run: runCommand}
}

// Copy tries to place message on the clipboard and reports the outcome on
// Out. When copying is impossible the message is printed instead, so the
// caller never loses it. Copy returns true only when the utility succeeded.
func (s *Sink) Copy(message string) bool {
	out := s.Out
	if out == nil {
		out = os.Stdout
	}

	name, args, ok := s.Platform.Command()
	if !ok {
		fmt.Fprintln(out, "Clipboard utility not supported on this OS.")
		printFallback(out, message)
		return false
	}

	run := s.Run
	if run == nil {
		run = runCommand
	}

	if err := run(name, args, message); err != nil {
		logger.Debugf("clipboard utility %s failed: %v", name, err)
		fmt.Fprintln(out, "Failed to copy commit message to clipboard.")
		printFallback(out, message)
		return false
	}

	fmt.Fprintln(out, "Commit message copied to clipboard.")
	return true
}

func printFallback(out io.Writer, message string) {
	fmt.Fprintln(out, "Commit Message:")
	fmt.Fprintln(out, message)
}

func runCommand(name string, args []string, stdin string) error {
	cmd := exec.Command(name, args...)
	pipe, err := cmd.StdinPipe()
	if err != nil {
		return err
	}
	if err := cmd.Start(); err != nil {
		return err
	}

	_, writeErr := io.WriteString(pipe, stdin)
	closeErr := pipe.Close()
	waitErr := cmd.Wait()

	switch {
	case waitErr != nil:
		return waitErr
	case writeErr != nil:
		return writeErr
	default:
		return closeErr
	}
}
