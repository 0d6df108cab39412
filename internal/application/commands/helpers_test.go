package commands

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	"plandeck/internal/adapters/filesystem"
	"plandeck/internal/domain"
	"plandeck/internal/logging"
)

// fixture is a plans directory backed by the real filesystem adapters
type fixture struct {
	t    *testing.T
	root string
	repo *filesystem.Repository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	root := t.TempDir()
	return &fixture{
		t:    t,
		root: root,
		repo: filesystem.NewRepository(root, filesystem.WithLogger(logging.Discard())),
	}
}

func (f *fixture) write(rel string, p *domain.Plan) string {
	f.t.Helper()
	path := filepath.Join(f.root, rel)
	if err := f.repo.WriteFile(path, p); err != nil {
		f.t.Fatalf("failed to write %s: %v", rel, err)
	}
	return path
}

func (f *fixture) writeRaw(rel, content string) string {
	f.t.Helper()
	path := filepath.Join(f.root, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		f.t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		f.t.Fatal(err)
	}
	return path
}

// snapshot returns every file under the root with its content
func (f *fixture) snapshot() map[string]string {
	f.t.Helper()
	out := make(map[string]string)
	err := filepath.WalkDir(f.root, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		rel, _ := filepath.Rel(f.root, path)
		out[rel] = string(data)
		return nil
	})
	if err != nil {
		f.t.Fatalf("failed to snapshot: %v", err)
	}
	return out
}

// byTitle reads the directory back and indexes plans by title
func (f *fixture) byTitle() map[string]*domain.Plan {
	f.t.Helper()
	files, err := f.repo.Scan()
	if err != nil {
		f.t.Fatalf("scan failed: %v", err)
	}
	out := make(map[string]*domain.Plan, len(files))
	for _, file := range files {
		if _, dup := out[file.Plan.Title]; dup {
			f.t.Fatalf("duplicate title %q in fixture", file.Plan.Title)
		}
		out[file.Plan.Title] = file.Plan
	}
	return out
}

func (f *fixture) rel(path string) string {
	rel, err := filepath.Rel(f.root, path)
	if err != nil {
		f.t.Fatal(err)
	}
	return filepath.ToSlash(rel)
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func day(d int) time.Time {
	return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC)
}

var fixedNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func contains(s, substr string) bool {
	return strings.Contains(s, substr)
}
