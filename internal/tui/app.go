// Package tui provides the live run monitor.
package tui

import (
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/maars-dev/maars/internal/event"
	"github.com/maars-dev/maars/internal/task"
)

// App wraps the Bubbletea program and bridges bus events into it.
type App struct {
	program *tea.Program
	bus     *event.Bus
	subID   string
}

// New creates a monitor over the given staged tasks. warnings lists any
// task IDs the scheduler could not order. Events published on bus drive
// the display; onQuit is called when the user quits while the run is
// still going (typically the runner's Stop).
func New(tasks []task.Task, warnings []string, bus *event.Bus, onQuit func()) *App {
	return &App{
		program: tea.NewProgram(NewModel(tasks, warnings, onQuit)),
		bus:     bus,
	}
}

// Run blocks until the run finishes or the user quits.
func (a *App) Run() error {
	a.subID = a.bus.SubscribeAll(func(e event.Event) {
		a.program.Send(busMsg{event: e})
	})
	defer a.bus.Unsubscribe(a.subID)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		<-sigChan
		a.program.Send(tea.Quit())
	}()

	_, err := a.program.Run()
	return err
}
