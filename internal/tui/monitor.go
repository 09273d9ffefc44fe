package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/maars-dev/maars/internal/event"
	"github.com/maars-dev/maars/internal/pool"
	"github.com/maars-dev/maars/internal/task"
)

// busMsg wraps a bus event for delivery into the Bubbletea update loop.
type busMsg struct {
	event event.Event
}

// Model renders a live view of a running plan: per-task status lines
// grouped by stage, worker pool occupancy, and a completion summary.
type Model struct {
	spinner  spinner.Model
	tasks    []task.Task
	index    map[string]int
	pools    map[string]pool.Stats
	attempts map[string]int
	warnings []string
	finished bool
	stopped  bool
	done     int
	failed   int
	width    int
	onQuit   func()
}

// NewModel builds a monitor over the staged task list. warnings lists
// task IDs the scheduler could not order; they are shown until a later
// stage warning replaces them. onQuit, if non-nil, is invoked once when
// the user quits before the run ends.
func NewModel(tasks []task.Task, warnings []string, onQuit func()) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#A78BFA"))

	index := make(map[string]int, len(tasks))
	for i, t := range tasks {
		index[t.ID] = i
	}
	return Model{
		spinner:  sp,
		tasks:    task.CloneAll(tasks),
		index:    index,
		pools:    make(map[string]pool.Stats),
		attempts: make(map[string]int),
		warnings: warnings,
		onQuit:   onQuit,
	}
}

func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			if !m.finished && m.onQuit != nil {
				m.onQuit()
				m.onQuit = nil
			}
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width

	case busMsg:
		return m.applyEvent(msg.event)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) applyEvent(e event.Event) (tea.Model, tea.Cmd) {
	switch e := e.(type) {
	case event.TaskStatusEvent:
		if i, ok := m.index[e.TaskID]; ok {
			m.tasks[i].Status = e.NewStatus
			m.attempts[e.TaskID] = e.Attempt
		}

	case event.PoolStateEvent:
		m.pools[e.Pool] = e.Stats

	case event.StageWarningEvent:
		m.warnings = e.TaskIDs

	case event.RunCompletedEvent:
		m.finished = true
		m.done, m.failed = e.Done, e.Failed
		return m, tea.Quit

	case event.RunStoppedEvent:
		m.finished = true
		m.stopped = true
		m.done = e.Done
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("maars run"))
	b.WriteString("\n")

	if m.finished {
		if m.stopped {
			b.WriteString(mutedStyle.Render(fmt.Sprintf("stopped: %d/%d done", m.done, len(m.tasks))))
		} else {
			b.WriteString(mutedStyle.Render(fmt.Sprintf("completed: %d done, %d failed", m.done, m.failed)))
		}
	} else {
		b.WriteString(m.spinner.View())
		b.WriteString(mutedStyle.Render(fmt.Sprintf(" running %d tasks", len(m.tasks))))
	}
	b.WriteString("\n")
	if len(m.warnings) > 0 {
		b.WriteString(statusFailed.Render("unschedulable: " + strings.Join(m.warnings, ", ")))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	lastStage := -1
	for _, t := range m.tasks {
		if t.Stage != lastStage {
			b.WriteString(mutedStyle.Render(fmt.Sprintf("stage %d", t.Stage)))
			b.WriteString("\n")
			lastStage = t.Stage
		}
		b.WriteString("  ")
		b.WriteString(renderStatus(t.Status))
		b.WriteString(fmt.Sprintf(" %-8s", t.ID))
		if n := m.attempts[t.ID]; n > 0 {
			b.WriteString(statusFailed.Render(fmt.Sprintf(" (attempt %d)", n)))
		}
		if t.Description != "" {
			b.WriteString(" ")
			b.WriteString(mutedStyle.Render(truncate(t.Description, 60)))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	for _, name := range []string{"executors", "validators"} {
		if s, ok := m.pools[name]; ok {
			b.WriteString(poolStyle.Render(fmt.Sprintf("%s: %d/%d busy", name, s.Busy, s.Total)))
			if s.Failed > 0 {
				b.WriteString(statusFailed.Render(fmt.Sprintf(" (%d failed)", s.Failed)))
			}
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(mutedStyle.Render("q to stop"))
	b.WriteString("\n")
	return b.String()
}

func renderStatus(s task.Status) string {
	label := fmt.Sprintf("%-17s", s.String())
	switch s {
	case task.StatusDoing:
		return statusDoing.Render("● " + label)
	case task.StatusValidating:
		return statusValidating.Render("● " + label)
	case task.StatusDone:
		return statusDone.Render("● " + label)
	case task.StatusExecutionFailed, task.StatusValidationFailed:
		return statusFailed.Render("● " + label)
	default:
		return statusUndone.Render("○ " + label)
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-1] + "…"
}
