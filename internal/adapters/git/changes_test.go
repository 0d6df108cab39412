package git

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

func TestChangedFiles_ParsesOutput(t *testing.T) {
	c := &Changes{
		dir: "/repo/plans",
		run: func(dir string, args ...string) ([]byte, error) {
			switch args[0] {
			case "merge-base":
				return []byte("abc123\n"), nil
			case "diff":
				if args[3] != "abc123" {
					t.Errorf("expected diff against merge-base, got %v", args)
				}
				return []byte("5-branch.yml\nnested/6-x.yml\n\n"), nil
			case "ls-files":
				return []byte("7-new.yml\n"), nil
			}
			return nil, errors.New("unexpected command")
		},
	}

	changed, err := c.ChangedFiles("main")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"5-branch.yml", "nested/6-x.yml", "7-new.yml"} {
		if !changed[filepath.Join("/repo/plans", want)] {
			t.Errorf("expected %s in %v", want, changed)
		}
	}
	if len(changed) != 3 {
		t.Errorf("expected 3 paths, got %d", len(changed))
	}
}

func TestChangedFiles_MergeBaseFailure(t *testing.T) {
	c := &Changes{
		dir: "/repo",
		run: func(dir string, args ...string) ([]byte, error) {
			return nil, errors.New("git merge-base: Not a valid object name main")
		},
	}
	_, err := c.ChangedFiles("main")
	if err == nil || !strings.Contains(err.Error(), "merge-base") {
		t.Fatalf("expected merge-base error, got %v", err)
	}
}

func TestChangedFiles_RealRepository(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}

	dir := t.TempDir()
	gitCmd := func(args ...string) {
		t.Helper()
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		cmd.Env = append(os.Environ(),
			"GIT_AUTHOR_NAME=test", "GIT_AUTHOR_EMAIL=test@example.com",
			"GIT_COMMITTER_NAME=test", "GIT_COMMITTER_EMAIL=test@example.com",
		)
		if out, err := cmd.CombinedOutput(); err != nil {
			t.Fatalf("git %v failed: %v\n%s", args, err, out)
		}
	}
	write := func(name, content string) {
		t.Helper()
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}

	gitCmd("init", "-q", "-b", "main")
	write("1-trunk.yml", "id: 1\n")
	gitCmd("add", ".")
	gitCmd("commit", "-q", "-m", "trunk")
	gitCmd("checkout", "-q", "-b", "feature")
	write("1-branch.yml", "id: 1\n")
	write("1-trunk.yml", "id: 1\ntitle: touched\n")

	changed, err := NewChanges(dir).ChangedFiles("main")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !changed[filepath.Join(dir, "1-branch.yml")] || !changed[filepath.Join(dir, "1-trunk.yml")] {
		t.Errorf("expected both files to be reported, got %v", changed)
	}
}
