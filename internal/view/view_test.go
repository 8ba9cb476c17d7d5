package view_test

import (
	"testing"
	"time"

	"tasktrack/internal/service"
	"tasktrack/internal/view"
)

func sampleTasks() []service.Task {
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return []service.Task{
		{ID: "3", Title: "Walk dog", IsCompleted: false, OwnerID: "u1", CreatedAt: base.Add(3 * time.Minute)},
		{ID: "2", Title: "Pay rent", IsCompleted: true, OwnerID: "u1", CreatedAt: base.Add(2 * time.Minute)},
		{ID: "1", Title: "Buy milk", IsCompleted: false, OwnerID: "u1", CreatedAt: base.Add(1 * time.Minute)},
	}
}

func ids(tasks []service.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestProject(t *testing.T) {
	tasks := sampleTasks()

	tests := []struct {
		filter view.Filter
		want   []string
	}{
		{view.All, []string{"3", "2", "1"}},
		{view.Pending, []string{"3", "1"}},
		{view.Completed, []string{"2"}},
	}

	for _, tc := range tests {
		t.Run(tc.filter.String(), func(t *testing.T) {
			got := ids(view.Project(tasks, tc.filter))
			if !equal(got, tc.want) {
				t.Errorf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestProject_PartitionsList(t *testing.T) {
	tasks := sampleTasks()

	all := view.Project(tasks, view.All)
	pending := view.Project(tasks, view.Pending)
	completed := view.Project(tasks, view.Completed)

	if len(all) != len(tasks) {
		t.Errorf("All: expected %d tasks, got %d", len(tasks), len(all))
	}
	if len(pending)+len(completed) != len(tasks) {
		t.Errorf("pending(%d) + completed(%d) != %d", len(pending), len(completed), len(tasks))
	}
}

func TestProject_DoesNotAliasInput(t *testing.T) {
	tasks := sampleTasks()

	got := view.Project(tasks, view.All)
	got[0].Title = "changed"

	if tasks[0].Title != "Walk dog" {
		t.Error("projection must not share storage with the input list")
	}
}

func TestProject_RecomputesAfterMutation(t *testing.T) {
	tasks := sampleTasks()

	if n := len(view.Project(tasks, view.Completed)); n != 1 {
		t.Fatalf("expected 1 completed task, got %d", n)
	}
	tasks[0].IsCompleted = true
	if n := len(view.Project(tasks, view.Completed)); n != 2 {
		t.Errorf("expected 2 completed tasks after mutation, got %d", n)
	}
}

func TestProject_Empty(t *testing.T) {
	for _, f := range view.Filters {
		got := view.Project(nil, f)
		if got == nil || len(got) != 0 {
			t.Errorf("%s: expected empty non-nil slice, got %#v", f, got)
		}
	}
}

func TestParseFilter(t *testing.T) {
	tests := []struct {
		in      string
		want    view.Filter
		wantErr bool
	}{
		{"", view.All, false},
		{"all", view.All, false},
		{" Pending ", view.Pending, false},
		{"COMPLETED", view.Completed, false},
		{"done", view.Completed, false},
		{"archived", view.All, true},
	}

	for _, tc := range tests {
		got, err := view.ParseFilter(tc.in)
		if (err != nil) != tc.wantErr {
			t.Errorf("ParseFilter(%q): wantErr=%v, got %v", tc.in, tc.wantErr, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseFilter(%q): expected %s, got %s", tc.in, tc.want, got)
		}
	}
}

func TestCount(t *testing.T) {
	c := view.Count(sampleTasks())
	if c.All != 3 || c.Pending != 2 || c.Completed != 1 {
		t.Errorf("unexpected counts %+v", c)
	}
}
