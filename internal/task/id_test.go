package task

import (
	"sort"
	"testing"
)

func TestParentID(t *testing.T) {
	tests := []struct {
		id   string
		want string
	}{
		{"1_2", "1"},
		{"1_2_3", "1_2"},
		{"1", "0"},
		{"42", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			if got := ParentID(tt.id); got != tt.want {
				t.Errorf("ParentID(%q) = %q, want %q", tt.id, got, tt.want)
			}
		})
	}
}

func TestAncestorChain(t *testing.T) {
	got := AncestorChain("1_2_3")
	want := []string{"1_2", "1", "0"}
	if len(got) != len(want) {
		t.Fatalf("AncestorChain(1_2_3) = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("AncestorChain(1_2_3)[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestIsTopLevel(t *testing.T) {
	tests := []struct {
		id   string
		want bool
	}{
		{"1", true},
		{"42", true},
		{"0", false},
		{"01", false},
		{"1_2", false},
		{"", false},
		{"x", false},
	}
	for _, tt := range tests {
		if got := IsTopLevel(tt.id); got != tt.want {
			t.Errorf("IsTopLevel(%q) = %v, want %v", tt.id, got, tt.want)
		}
	}
}

func TestInSubtree(t *testing.T) {
	tests := []struct {
		id     string
		parent string
		want   bool
	}{
		{"1_2", "1", true},
		{"1_2_3", "1", true},
		{"12", "1", false}, // "12" is not under "1"
		{"2", "0", true},
		{"2_1", "0", false}, // root membership is direct children only
		{"1", "1", false},
		{"", "1", false},
	}
	for _, tt := range tests {
		if got := InSubtree(tt.id, tt.parent); got != tt.want {
			t.Errorf("InSubtree(%q, %q) = %v, want %v", tt.id, tt.parent, got, tt.want)
		}
	}
}

func TestNaturalLess(t *testing.T) {
	ids := []string{"1_10", "1_2", "2", "1", "1_1", "10"}
	sort.Slice(ids, func(i, j int) bool { return NaturalLess(ids[i], ids[j]) })

	want := []string{"1", "1_1", "1_2", "1_10", "2", "10"}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("natural sort = %v, want %v", ids, want)
		}
	}
}
