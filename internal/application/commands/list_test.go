package commands

import (
	"context"
	"testing"

	"plandeck/internal/domain"
)

func TestListPlansCommand_Execute(t *testing.T) {
	f := newFixture(t)
	f.write("10-z.yml", &domain.Plan{ID: 10, Title: "ten"})
	f.write("2-b.yml", &domain.Plan{ID: 2, Title: "two-b", Status: domain.StatusDone})
	f.write("2-a.yml", &domain.Plan{ID: 2, Title: "two-a"})
	f.writeRaw("loose.yml", "title: loose\n")

	files, err := NewListPlansCommand(f.repo, "").Execute(context.Background())
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	var titles []string
	for _, file := range files {
		titles = append(titles, file.Plan.Title)
	}
	want := []string{"two-a", "two-b", "ten", "loose"}
	if len(titles) != len(want) {
		t.Fatalf("expected %v, got %v", want, titles)
	}
	for i := range want {
		if titles[i] != want[i] {
			t.Errorf("position %d: expected %s, got %s", i, want[i], titles[i])
		}
	}

	done, err := NewListPlansCommand(f.repo, "done").Execute(context.Background())
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if len(done) != 1 || done[0].Plan.Title != "two-b" {
		t.Errorf("expected only the done plan, got %d", len(done))
	}
}

func TestListPlansCommand_Validate(t *testing.T) {
	if err := NewListPlansCommand(nil, "someday").Validate(); err == nil || !contains(err.Error(), "invalid status") {
		t.Errorf("expected invalid status error, got %v", err)
	}
	if err := NewListPlansCommand(nil, "in_progress").Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
