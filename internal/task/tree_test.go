package task

import (
	"encoding/json"
	"strings"
	"testing"
)

func testTasks(ids ...string) []Task {
	tasks := make([]Task, len(ids))
	for i, id := range ids {
		tasks[i] = Task{ID: id}
	}
	return tasks
}

func TestTreeChildren(t *testing.T) {
	tr := NewTree(testTasks("1", "2", "1_1", "1_2", "1_2_1", "3"))

	tests := []struct {
		parent string
		want   []string
	}{
		{"0", []string{"1", "2", "3"}},
		{"1", []string{"1_1", "1_2"}},
		{"1_2", []string{"1_2_1"}},
		{"3", nil},
	}
	for _, tt := range tests {
		t.Run(tt.parent, func(t *testing.T) {
			got := tr.Children(tt.parent)
			if len(got) != len(tt.want) {
				t.Fatalf("Children(%q) = %v, want %v", tt.parent, got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("Children(%q)[%d] = %q, want %q", tt.parent, i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestTreeHasChildren(t *testing.T) {
	tr := NewTree(testTasks("1", "1_1", "2"))

	if !tr.HasChildren("1") {
		t.Error("HasChildren(1) = false, want true")
	}
	if tr.HasChildren("2") {
		t.Error("HasChildren(2) = true, want false")
	}
	if tr.HasChildren("1_1") {
		t.Error("HasChildren(1_1) = true, want false")
	}
}

func TestTreeSubtreeMembers(t *testing.T) {
	tr := NewTree(testTasks("1", "1_1", "1_2", "1_2_1", "2", "2_1"))

	// Non-root subtree includes all descendants.
	got := tr.SubtreeMembers("1")
	want := []string{"1_1", "1_2", "1_2_1"}
	if len(got) != len(want) {
		t.Fatalf("SubtreeMembers(1) = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("SubtreeMembers(1)[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	// Root subtree is direct children only.
	got = tr.SubtreeMembers("0")
	want = []string{"1", "2"}
	if len(got) != len(want) {
		t.Fatalf("SubtreeMembers(0) = %v, want %v", got, want)
	}
}

func TestTreeSkipsDuplicatesAndEmptyIDs(t *testing.T) {
	tasks := []Task{
		{ID: "1", Description: "first"},
		{ID: ""},
		{ID: "1", Description: "duplicate"},
	}
	tr := NewTree(tasks)
	if tr.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", tr.Len())
	}
	got, ok := tr.Get("1")
	if !ok || got.Description != "first" {
		t.Errorf("Get(1) = %+v, want first occurrence", got)
	}
}

func TestTaskJSONShape(t *testing.T) {
	in := `{"task_id":"1_2","description":"analyze","dependencies":["1_1"],"status":"undone","stage":2}`
	var tk Task
	if err := json.Unmarshal([]byte(in), &tk); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if tk.ID != "1_2" || tk.Stage != 2 || tk.Status != StatusUndone {
		t.Errorf("unexpected task: %+v", tk)
	}
	if len(tk.Dependencies) != 1 || tk.Dependencies[0] != "1_1" {
		t.Errorf("dependencies = %v, want [1_1]", tk.Dependencies)
	}

	out, err := json.Marshal(tk)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	for _, field := range []string{`"task_id"`, `"dependencies"`, `"status"`, `"stage"`} {
		if !strings.Contains(string(out), field) {
			t.Errorf("marshaled task missing %s: %s", field, out)
		}
	}
}

func TestCloneIsolation(t *testing.T) {
	orig := Task{ID: "1", Dependencies: []string{"2"}}
	cp := orig.Clone()
	cp.Dependencies[0] = "changed"
	if orig.Dependencies[0] != "2" {
		t.Error("Clone shares dependency slice with original")
	}
}

func TestStatusTerminal(t *testing.T) {
	terminal := []Status{StatusDone, StatusExecutionFailed, StatusValidationFailed}
	active := []Status{StatusUndone, StatusDoing, StatusValidating}

	for _, s := range terminal {
		if !s.IsTerminal() {
			t.Errorf("%s.IsTerminal() = false, want true", s)
		}
	}
	for _, s := range active {
		if s.IsTerminal() {
			t.Errorf("%s.IsTerminal() = true, want false", s)
		}
	}
}
