// Package git detects plan files changed on the current branch by shelling
// out to the git CLI.
package git

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"plandeck/internal/ports"
)

// Changes implements ports.BranchChanges for a directory inside a git work tree
type Changes struct {
	dir string
	run func(dir string, args ...string) ([]byte, error)
}

// Ensure Changes implements BranchChanges
var _ ports.BranchChanges = (*Changes)(nil)

// NewChanges creates a detector rooted at dir (usually the plans directory)
func NewChanges(dir string) *Changes {
	return &Changes{dir: dir, run: runGit}
}

// IsAvailable returns true if the git binary can be found
func (c *Changes) IsAvailable() bool {
	_, err := exec.LookPath("git")
	return err == nil
}

// ChangedFiles returns the absolute paths under dir that differ from the
// merge-base with trunk, including uncommitted and untracked files
func (c *Changes) ChangedFiles(trunk string) (map[string]bool, error) {
	out, err := c.run(c.dir, "merge-base", "HEAD", trunk)
	if err != nil {
		return nil, fmt.Errorf("failed to find merge-base with %s: %w", trunk, err)
	}
	base := strings.TrimSpace(string(out))
	if base == "" {
		return nil, fmt.Errorf("failed to find merge-base with %s: empty output", trunk)
	}

	changed := make(map[string]bool)

	diff, err := c.run(c.dir, "diff", "--name-only", "--relative", base, "--", ".")
	if err != nil {
		return nil, fmt.Errorf("failed to diff against %s: %w", base, err)
	}
	c.collect(diff, changed)

	untracked, err := c.run(c.dir, "ls-files", "--others", "--exclude-standard", "--", ".")
	if err != nil {
		return nil, fmt.Errorf("failed to list untracked files: %w", err)
	}
	c.collect(untracked, changed)

	return changed, nil
}

// collect adds every non-empty line of out, resolved against dir
func (c *Changes) collect(out []byte, into map[string]bool) {
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		into[filepath.Join(c.dir, filepath.FromSlash(line))] = true
	}
}

func runGit(dir string, args ...string) ([]byte, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	output, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, fmt.Errorf("git %s: %s", args[0], strings.TrimSpace(string(exitErr.Stderr)))
		}
		return nil, fmt.Errorf("git %s: %w", args[0], err)
	}
	return output, nil
}
