package filesystem

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"plandeck/internal/domain"
	"plandeck/internal/logging"
)

func setupTestPlans(t *testing.T) (string, func()) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "plandeck-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}

	cleanup := func() {
		os.RemoveAll(tmpDir)
	}

	return tmpDir, cleanup
}

func writePlanFile(t *testing.T, root, rel, content string) string {
	t.Helper()
	path := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", rel, err)
	}
	return path
}

func TestScan_ParsesPlans(t *testing.T) {
	root, cleanup := setupTestPlans(t)
	defer cleanup()

	writePlanFile(t, root, "1-setup.yml", `# yaml-language-server: $schema=https://example.com/plan.json
id: 1
title: Setup
status: in_progress
priority: high
dependencies: [2, 2]
createdAt: 2024-01-01T00:00:00Z
tasks:
  - title: install
    done: true
  - title: configure
    done: false
`)
	writePlanFile(t, root, "1-setup/2-child.yaml", "id: 2\ntitle: Child\nparent: 1\n")

	repo := NewRepository(root, WithLogger(logging.Discard()))
	files, err := repo.Scan()
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("expected 2 files, got %d", len(files))
	}

	p := files[0].Plan
	if p.ID != 1 || p.Title != "Setup" || p.Status != domain.StatusInProgress || p.Priority != domain.PriorityHigh {
		t.Errorf("unexpected plan: %+v", p)
	}
	if len(p.Dependencies) != 2 {
		t.Errorf("duplicate dependencies should be kept, got %v", p.Dependencies)
	}
	if len(p.Tasks) != 2 || !p.Tasks[0].Done || p.Tasks[1].Done {
		t.Errorf("unexpected tasks: %+v", p.Tasks)
	}
	if !p.CreatedAt.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected createdAt: %v", p.CreatedAt)
	}
	if p.Filename != files[0].Path {
		t.Errorf("expected filename to be set, got %q", p.Filename)
	}

	child := files[1].Plan
	if child.Parent != 1 || child.Status != domain.StatusPending {
		t.Errorf("expected parent 1 and default pending status, got %+v", child)
	}
}

func TestScan_KeepsRawIDs(t *testing.T) {
	root, cleanup := setupTestPlans(t)
	defer cleanup()

	writePlanFile(t, root, "a.yml", "title: no id\n")
	writePlanFile(t, root, "b.yml", "id: abc\ntitle: bad id\n")
	writePlanFile(t, root, "c.yml", "id: -3\ntitle: negative\n")

	repo := NewRepository(root, WithLogger(logging.Discard()))
	files, err := repo.Scan()
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	tests := []struct {
		raw string
	}{{""}, {"abc"}, {"-3"}}
	for i, tt := range tests {
		if files[i].RawID != tt.raw {
			t.Errorf("file %d: expected raw id %q, got %q", i, tt.raw, files[i].RawID)
		}
		if files[i].Plan.HasID() {
			t.Errorf("file %d: expected no usable id, got %d", i, files[i].Plan.ID)
		}
	}
}

func TestScan_SkipsMalformedAndHidden(t *testing.T) {
	root, cleanup := setupTestPlans(t)
	defer cleanup()

	writePlanFile(t, root, "1-ok.yml", "id: 1\ntitle: ok\n")
	writePlanFile(t, root, "2-broken.yml", "id: [unterminated\n")
	writePlanFile(t, root, "3-bad-status.yml", "id: 3\nstatus: someday\n")
	writePlanFile(t, root, ".plandeck/backups/x/1-ok.yml", "id: 1\n")
	writePlanFile(t, root, "notes.md", "# not a plan\n")

	repo := NewRepository(root, WithLogger(logging.Discard()))
	files, err := repo.Scan()
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(files) != 1 || files[0].Plan.ID != 1 {
		t.Fatalf("expected only 1-ok.yml, got %d files", len(files))
	}
}

func TestScan_MissingDirectory(t *testing.T) {
	repo := NewRepository(filepath.Join(os.TempDir(), "plandeck-does-not-exist"))
	if _, err := repo.Scan(); err == nil {
		t.Fatal("expected an error for a missing directory")
	}
}

func TestScan_UnreadableRoot(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced for root")
	}
	root, cleanup := setupTestPlans(t)
	defer cleanup()

	writePlanFile(t, root, "1-ok.yml", "id: 1\n")
	if err := os.Chmod(root, 0); err != nil {
		t.Fatal(err)
	}
	defer os.Chmod(root, 0755)

	_, err := NewRepository(root, WithLogger(logging.Discard())).Scan()
	if !errors.Is(err, fs.ErrPermission) {
		t.Fatalf("expected a permission error, got %v", err)
	}
}

func TestReadAll_LastWriteWins(t *testing.T) {
	root, cleanup := setupTestPlans(t)
	defer cleanup()

	writePlanFile(t, root, "5-a.yml", "id: 5\ntitle: first\n")
	writePlanFile(t, root, "5-b.yml", "id: 5\ntitle: second\n")
	writePlanFile(t, root, "9-c.yml", "id: 9\ntitle: third\n")

	repo := NewRepository(root, WithLogger(logging.Discard()))
	set, err := repo.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if set.MaxID != 9 {
		t.Errorf("expected max id 9, got %d", set.MaxID)
	}
	if p, _ := set.Get(5); p.Title != "second" {
		t.Errorf("expected the later file to win, got %q", p.Title)
	}
}

func TestEncode_StableKeyOrder(t *testing.T) {
	repo := NewRepository(t.TempDir(), WithSchema("https://example.com/plan.json"))
	plan := &domain.Plan{
		ID:           4,
		Title:        "Write docs",
		Parent:       1,
		Dependencies: []int{2, 3},
		Status:       domain.StatusPending,
		Priority:     domain.PriorityLow,
		CreatedAt:    time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		Tasks:        []domain.Task{{Title: "outline"}},
	}

	data, err := repo.Encode(plan)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	out := string(data)

	if !strings.HasPrefix(out, "# yaml-language-server: $schema=https://example.com/plan.json\n") {
		t.Errorf("expected schema comment first, got:\n%s", out)
	}
	order := []string{"id:", "title:", "parent:", "dependencies:", "status:", "priority:", "createdAt:", "tasks:"}
	last := -1
	for _, key := range order {
		idx := strings.Index(out, "\n"+key)
		if idx < 0 {
			t.Fatalf("missing key %s in:\n%s", key, out)
		}
		if idx < last {
			t.Errorf("key %s out of order in:\n%s", key, out)
		}
		last = idx
	}
	if strings.Contains(out, "updatedAt") || strings.Contains(out, "goal") {
		t.Errorf("empty fields should be omitted, got:\n%s", out)
	}
}

func TestWriteFile_RoundTrip(t *testing.T) {
	root, cleanup := setupTestPlans(t)
	defer cleanup()

	repo := NewRepository(root)
	path := filepath.Join(root, "7-nested", "8-leaf.yml")
	want := &domain.Plan{ID: 8, Title: "leaf", Parent: 7, Status: domain.StatusDone}

	if err := repo.WriteFile(path, want); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	got, err := repo.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if got.ID != 8 || got.Parent != 7 || got.Status != domain.StatusDone || got.Title != "leaf" {
		t.Errorf("unexpected plan after round trip: %+v", got)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat failed: %v", err)
	}
	if info.Mode().Perm() != filePerms {
		t.Errorf("expected mode %o, got %o", filePerms, info.Mode().Perm())
	}
}

func TestEncode_PatchesSourceAndKeepsUnknownKeys(t *testing.T) {
	root, cleanup := setupTestPlans(t)
	defer cleanup()

	path := writePlanFile(t, root, "2-child.yml", `# custom header kept by hand
id: 2
title: child
assignedTo: alice
parent: 5
dependencies: [3, 4]
issue:
  - https://example.com/issues/12
tasks:
  - title: wire it
    done: false
    files: [main.go]
    steps:
      - draft
`)

	repo := NewRepository(root, WithLogger(logging.Discard()))
	plan, err := repo.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}

	upd := plan.Clone()
	upd.ID = 5
	upd.Parent = 2
	upd.Dependencies = []int{4, 3}
	upd.Status = domain.StatusDone
	upd.UpdatedAt = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	data, err := repo.Encode(upd)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	out := string(data)

	if !strings.HasPrefix(out, "# custom header kept by hand\n") {
		t.Errorf("expected leading comment to survive, got:\n%s", out)
	}
	for _, want := range []string{"assignedTo: alice", "https://example.com/issues/12", "files: [main.go]", "- draft", "dependencies: [4, 3]"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in:\n%s", want, out)
		}
	}
	if strings.Index(out, "status:") > strings.Index(out, "issue:") {
		t.Errorf("expected status to be inserted before issue, got:\n%s", out)
	}

	newPath := filepath.Join(root, "5-child.yml")
	if err := writeAtomic(newPath, data); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	got, err := repo.ReadFile(newPath)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if got.ID != 5 || got.Parent != 2 || got.Status != domain.StatusDone || got.Title != "child" {
		t.Errorf("unexpected plan after patch: %+v", got)
	}
	if len(got.Tasks) != 1 || got.Tasks[0].Title != "wire it" {
		t.Errorf("unexpected tasks after patch: %+v", got.Tasks)
	}
	if !got.UpdatedAt.Equal(upd.UpdatedAt) {
		t.Errorf("expected updatedAt %v, got %v", upd.UpdatedAt, got.UpdatedAt)
	}
}

func TestEncode_PatchAddsSchemaOnlyWhenMissing(t *testing.T) {
	root, cleanup := setupTestPlans(t)
	defer cleanup()

	schema := "https://example.com/plan.json"
	repo := NewRepository(root, WithSchema(schema), WithLogger(logging.Discard()))

	bare, err := repo.ReadFile(writePlanFile(t, root, "1-a.yml", "id: 1\ntitle: a\n"))
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	headed, err := repo.ReadFile(writePlanFile(t, root, "2-b.yml", schemaPrefix+schema+"\nid: 2\ntitle: b\n"))
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}

	for _, p := range []*domain.Plan{bare, headed} {
		upd := p.Clone()
		upd.ID += 10
		data, err := repo.Encode(upd)
		if err != nil {
			t.Fatalf("Encode failed: %v", err)
		}
		if n := strings.Count(string(data), schemaPrefix); n != 1 {
			t.Errorf("plan %d: expected one schema comment, got %d in:\n%s", upd.ID, n, data)
		}
	}
}
