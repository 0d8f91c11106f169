// ABOUTME: TUI initialization and control
// ABOUTME: Wraps the bubbletea program for the keep-alive status display
package ui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// Control carries the quit request from the display back to the app
type Control struct {
	Quit chan struct{}
	once sync.Once
}

// NewControl creates a new control handle
func NewControl() *Control {
	return &Control{
		Quit: make(chan struct{}),
	}
}

func (c *Control) requestQuit() {
	c.once.Do(func() { close(c.Quit) })
}

// NewModel creates a new TUI model
func NewModel(ctrl *Control, info Info) Model {
	return Model{
		info:    info,
		control: ctrl,
	}
}

// Run creates the TUI program; the caller starts it
func Run(ctrl *Control, info Info, opts ...tea.ProgramOption) *tea.Program {
	opts = append([]tea.ProgramOption{tea.WithAltScreen()}, opts...)
	return tea.NewProgram(NewModel(ctrl, info), opts...)
}
