//go:build !prod

package git

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

// CreateTempRepo initializes an isolated repository with one commit and
// returns its path. Tests are skipped when git is not installed.
func CreateTempRepo(t *testing.T) string {
	t.Helper()

	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}

	dir := t.TempDir()
	RunGit(t, dir, "init", "-q")
	RunGit(t, dir, "config", "user.email", "test@example.com")
	RunGit(t, dir, "config", "user.name", "cmg test")
	RunGit(t, dir, "config", "commit.gpgsign", "false")

	WriteFile(t, dir, "README.md", "seed\n")
	RunGit(t, dir, "add", "README.md")
	RunGit(t, dir, "commit", "-q", "-m", "seed")

	return dir
}

// RunGit runs git in dir and fails the test on error.
func RunGit(t *testing.T, dir string, args ...string) {
	t.Helper()

	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("git %v failed: %v\n%s", args, err, out)
	}
}

// WriteFile writes content to name relative to dir, creating parent directories.
func WriteFile(t *testing.T, dir, name, content string) {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("Failed to create directory for %s: %v", name, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
}
