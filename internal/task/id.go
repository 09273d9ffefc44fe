package task

import (
	"strconv"
	"strings"
)

// RootID is the synthetic root of the decomposition tree. It is never an
// executable task; top-level tasks are its children.
const RootID = "0"

// ParentID returns the ID of a task's parent, e.g. "1_2" -> "1".
// Top-level tasks ("1", "2", ...) have the synthetic root as parent.
func ParentID(id string) string {
	if i := strings.LastIndex(id, "_"); i >= 0 {
		return id[:i]
	}
	return RootID
}

// AncestorChain returns the ancestor IDs from immediate parent up to the
// root, e.g. "1_2_3" -> ["1_2", "1", "0"].
func AncestorChain(id string) []string {
	var chain []string
	curr := id
	for {
		parent := ParentID(curr)
		chain = append(chain, parent)
		if parent == RootID {
			return chain
		}
		curr = parent
	}
}

// IsTopLevel reports whether id is a direct child of the root, i.e. a bare
// positive integer with no leading zero.
func IsTopLevel(id string) bool {
	if id == "" || id[0] == '0' {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] < '0' || id[i] > '9' {
			return false
		}
	}
	return true
}

// InSubtree reports whether id belongs to parentID's subtree. Membership
// under the root is "is a bare positive integer"; under any other parent
// it is ID-prefix containment with the "_" separator.
func InSubtree(id, parentID string) bool {
	if id == "" || parentID == "" {
		return false
	}
	if parentID == RootID {
		return IsTopLevel(id)
	}
	return strings.HasPrefix(id, parentID+"_")
}

// NaturalLess orders task IDs segment by numeric value so that
// "1" < "1_1" < "1_2" < "1_10". Non-numeric segments compare as strings
// after all numeric ones.
func NaturalLess(a, b string) bool {
	as := strings.Split(a, "_")
	bs := strings.Split(b, "_")
	for i := 0; i < len(as) && i < len(bs); i++ {
		ai, aerr := strconv.Atoi(as[i])
		bi, berr := strconv.Atoi(bs[i])
		switch {
		case aerr == nil && berr == nil:
			if ai != bi {
				return ai < bi
			}
		case aerr == nil:
			return true
		case berr == nil:
			return false
		default:
			if as[i] != bs[i] {
				return as[i] < bs[i]
			}
		}
	}
	return len(as) < len(bs)
}
