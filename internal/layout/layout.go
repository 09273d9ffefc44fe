// Package layout places staged tasks on a 2-D grid for visualization.
//
// The grid is built from the cleaned, staged task view (see the stage
// package): columns advance with dependency depth and rows group tasks
// that branch from a common ancestor, so parallel siblings render as a
// vertical block. Tasks with neither dependencies nor dependents are set
// aside as isolated rather than placed on the grid. No other component
// consumes this output.
package layout

import (
	"sort"

	"github.com/maars-dev/maars/internal/task"
)

// Layout is the grid placement of a staged plan.
type Layout struct {
	// Grid is a dense MaxRows x MaxCols matrix; empty cells are nil.
	Grid [][]*task.Task `json:"grid"`

	// MaxRows and MaxCols are the grid dimensions.
	MaxRows int `json:"maxRows"`
	MaxCols int `json:"maxCols"`

	// IsolatedTasks have no dependencies and no dependents and live in a
	// separate region of the visualization.
	IsolatedTasks []task.Task `json:"isolatedTasks"`

	// TreeData is the flat task list in stage order, for tree-style views.
	TreeData []task.Task `json:"treeData"`
}

type position struct {
	row, col int
}

// Build computes the grid layout from staged tasks. The input is not
// mutated. An empty input produces an empty, non-nil layout.
func Build(stages [][]task.Task) *Layout {
	out := &Layout{
		Grid:          [][]*task.Task{},
		IsolatedTasks: []task.Task{},
		TreeData:      []task.Task{},
	}
	if len(stages) == 0 {
		return out
	}

	// Flatten in stage order; later references share these copies.
	var all []task.Task
	for _, st := range stages {
		for _, t := range st {
			if t.ID == "" {
				continue
			}
			all = append(all, t.Clone())
			out.TreeData = append(out.TreeData, t.Clone())
		}
	}

	dependents := make(map[string][]string)
	for _, t := range all {
		for _, dep := range t.Dependencies {
			dependents[dep] = append(dependents[dep], t.ID)
		}
	}

	var connected []task.Task
	for _, t := range all {
		if len(t.Dependencies) == 0 && len(dependents[t.ID]) == 0 {
			out.IsolatedTasks = append(out.IsolatedTasks, t)
		} else {
			connected = append(connected, t)
		}
	}
	if len(connected) == 0 {
		return out
	}

	// Column assignment: column 0 holds tasks with no dependencies;
	// column k+1 holds tasks whose dependencies all sit in columns <= k.
	placed := make(map[string]bool, len(connected))
	var columns [][]task.Task
	for len(placed) < len(connected) {
		var col []task.Task
		for _, t := range connected {
			if placed[t.ID] {
				continue
			}
			if allPlaced(t.Dependencies, placed) {
				col = append(col, t)
			}
		}
		if len(col) == 0 {
			// Unresolvable remainder (cycle in display data): emit it as
			// one final column so the grid stays total.
			for _, t := range connected {
				if !placed[t.ID] {
					col = append(col, t)
				}
			}
		}
		columns = append(columns, col)
		for _, t := range col {
			placed[t.ID] = true
		}
	}

	// Row assignment per column: dependency-free tasks first, then groups
	// sharing the same rightmost (highest-column) dependency, so siblings
	// branching from one ancestor stack vertically.
	positions := make(map[string]position, len(connected))
	maxRows := 0
	for colIdx, col := range columns {
		var noDeps []task.Task
		groupOrder := []string{}
		groups := make(map[string][]task.Task)

		for _, t := range col {
			rightmost := rightmostDependency(t, positions)
			if rightmost == "" {
				noDeps = append(noDeps, t)
				continue
			}
			if _, ok := groups[rightmost]; !ok {
				groupOrder = append(groupOrder, rightmost)
			}
			groups[rightmost] = append(groups[rightmost], t)
		}

		row := 0
		for _, t := range noDeps {
			positions[t.ID] = position{row: row, col: colIdx}
			row++
		}
		for _, anchor := range groupOrder {
			group := groups[anchor]
			sort.Slice(group, func(i, j int) bool { return task.NaturalLess(group[i].ID, group[j].ID) })
			for _, t := range group {
				positions[t.ID] = position{row: row, col: colIdx}
				row++
			}
		}
		if row > maxRows {
			maxRows = row
		}
	}
	if maxRows == 0 {
		maxRows = 1
	}

	out.MaxRows = maxRows
	out.MaxCols = len(columns)
	out.Grid = make([][]*task.Task, maxRows)
	for r := range out.Grid {
		out.Grid[r] = make([]*task.Task, len(columns))
	}
	for i := range connected {
		t := connected[i]
		pos, ok := positions[t.ID]
		if !ok || pos.col >= len(columns) || pos.row >= maxRows {
			continue
		}
		out.Grid[pos.row][pos.col] = &connected[i]
	}
	return out
}

func allPlaced(deps []string, placed map[string]bool) bool {
	for _, dep := range deps {
		if !placed[dep] {
			return false
		}
	}
	return true
}

// rightmostDependency returns the dependency sitting in the highest
// column so far, or "" if none of the task's dependencies are placed.
func rightmostDependency(t task.Task, positions map[string]position) string {
	best := ""
	bestCol := -1
	for _, dep := range t.Dependencies {
		if pos, ok := positions[dep]; ok && pos.col > bestCol {
			best = dep
			bestCol = pos.col
		}
	}
	return best
}
