// ABOUTME: Bubbletea model for the keep-alive status display
// ABOUTME: Defines display state and update logic
package ui

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/Resonate-Protocol/keepalive-go/internal/stream"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")).
			MarginBottom(1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86"))

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("250"))

	failedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("196"))

	helpStyle = lipgloss.NewStyle().Faint(true)
)

// Info holds values fixed for the life of a run
type Info struct {
	Backend   string
	Format    string
	Frequency float64
	Amplitude float64
	RunID     string
	Version   string
}

// Model represents the TUI state
type Model struct {
	info Info

	// Stream
	state     stream.State
	buffers   uint64
	samples   uint64
	bytes     uint64
	phase     float64
	startedAt time.Time
	lastErr   string

	now       time.Time
	showDebug bool
	quitting  bool

	// Dimensions
	width  int
	height int

	control *Control
}

// StatusMsg carries a stats snapshot from the driver
type StatusMsg struct {
	Stats stream.Stats
	Err   error
}

type tickMsg time.Time

func tickEvery() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Init starts the uptime ticker
func (m Model) Init() tea.Cmd {
	return tickEvery()
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case tickMsg:
		m.now = time.Time(msg)
		return m, tickEvery()
	case StatusMsg:
		m.applyStatus(msg)
	}

	return m, nil
}

// View renders the TUI
func (m Model) View() string {
	if m.quitting {
		return "Stopping keep-alive...\n"
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render(m.info.Version))
	b.WriteString("\n\n")

	m.row(&b, "Backend: ", m.info.Backend)
	m.row(&b, "Format:  ", m.info.Format)
	m.row(&b, "Tone:    ", fmt.Sprintf("%.0f Hz at %s", m.info.Frequency, formatLevel(m.info.Amplitude)))

	b.WriteString(headerStyle.Render("State:   "))
	if m.state == stream.StateFailed {
		b.WriteString(failedStyle.Render(m.state.String()))
	} else {
		b.WriteString(valueStyle.Render(m.state.String()))
	}
	b.WriteString("\n")

	m.row(&b, "Uptime:  ", m.uptime().String())
	m.row(&b, "Buffers: ", fmt.Sprintf("%d (%s)", m.buffers, formatBytes(m.bytes)))

	if m.lastErr != "" {
		b.WriteString("\n")
		b.WriteString(failedStyle.Render(truncate(m.lastErr, 60)))
		b.WriteString("\n")
	}

	if m.showDebug {
		b.WriteString("\n")
		m.row(&b, "Run ID:  ", m.info.RunID)
		m.row(&b, "Samples: ", fmt.Sprintf("%d", m.samples))
		m.row(&b, "Phase:   ", fmt.Sprintf("%.6f rad", m.phase))
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("d:Debug  q:Quit"))

	return b.String()
}

func (m Model) row(b *strings.Builder, label, value string) {
	b.WriteString(headerStyle.Render(label))
	b.WriteString(valueStyle.Render(value))
	b.WriteString("\n")
}

func (m Model) uptime() time.Duration {
	if m.startedAt.IsZero() || m.now.Before(m.startedAt) {
		return 0
	}
	return m.now.Sub(m.startedAt).Round(time.Second)
}

// handleKey handles keyboard input
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		if m.control != nil {
			m.control.requestQuit()
		}
		return m, tea.Quit
	case "d":
		m.showDebug = !m.showDebug
	}

	return m, nil
}

// applyStatus updates model from status message
func (m *Model) applyStatus(msg StatusMsg) {
	s := msg.Stats
	m.state = s.State
	m.buffers = s.BuffersWritten
	m.samples = s.SamplesGenerated
	m.bytes = s.BytesWritten
	m.phase = s.Phase
	if !s.StartedAt.IsZero() {
		m.startedAt = s.StartedAt
	}
	if m.now.IsZero() {
		m.now = time.Now()
	}
	if msg.Err != nil {
		m.lastErr = msg.Err.Error()
	}
}

// formatLevel renders a linear amplitude as dBFS
func formatLevel(amplitude float64) string {
	if amplitude <= 0 {
		return "-inf dBFS"
	}
	return fmt.Sprintf("%.1f dBFS", 20*math.Log10(amplitude))
}

func formatBytes(n uint64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := uint64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

func truncate(s string, length int) string {
	if len(s) <= length {
		return s
	}
	return s[:length-3] + "..."
}
