// Package tui is the live capture viewer.
package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/aayushbajaj/hooktrace/internal/hook"
	"github.com/aayushbajaj/hooktrace/internal/keylogger"
	"github.com/aayushbajaj/hooktrace/internal/mousetracker"
	"github.com/aayushbajaj/hooktrace/internal/vkey"
	"github.com/aayushbajaj/hooktrace/pkg/stats"
)

var (
	titleStyle     lipgloss.Style
	statLabelStyle lipgloss.Style
	statValueStyle lipgloss.Style
	boxStyle       lipgloss.Style
	logStyle       lipgloss.Style
	blockedStyle   lipgloss.Style
	alertStyle     lipgloss.Style
	statusOnStyle  lipgloss.Style
	statusOffStyle lipgloss.Style
	helpStyle      lipgloss.Style
)

// DefaultHistory is the log length used when Options.History is 0.
const DefaultHistory = 500

const topKeys = 5

// Toggler turns capture on and off.
type Toggler interface {
	Enable() error
	Disable() error
	Enabled() bool
}

// Options configures the viewer.
type Options struct {
	Capture   Toggler
	Entries   <-chan keylogger.Entry
	Movements <-chan mousetracker.Movement
	// History caps the number of log lines kept.
	History int
	// Now is the clock; defaults to time.Now.
	Now func() time.Time
}

type Model struct {
	capture Toggler
	entries <-chan keylogger.Entry
	moves   <-chan mousetracker.Movement
	history int
	now     func() time.Time

	session *stats.Session
	log     []keylogger.Entry
	pos     mousetracker.Movement
	hasPos  bool
	status  string
	width   int
	height  int
}

type entryMsg keylogger.Entry

type moveMsg mousetracker.Movement

type tickMsg time.Time

// feedClosedMsg is sent once a feed channel is closed.
type feedClosedMsg struct{}

func New(opts Options) Model {
	if opts.History <= 0 {
		opts.History = DefaultHistory
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return Model{
		capture: opts.Capture,
		entries: opts.Entries,
		moves:   opts.Movements,
		history: opts.History,
		now:     opts.Now,
		session: stats.NewSession(opts.Now()),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(waitForEntry(m.entries), waitForMove(m.moves), tick())
}

func waitForEntry(ch <-chan keylogger.Entry) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		e, ok := <-ch
		if !ok {
			return feedClosedMsg{}
		}
		return entryMsg(e)
	}
}

func waitForMove(ch <-chan mousetracker.Movement) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		mv, ok := <-ch
		if !ok {
			return feedClosedMsg{}
		}
		return moveMsg(mv)
	}
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "c":
			m.log = nil
			m.session.Reset(m.now())
			m.status = ""
		case "t":
			m.toggle()
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case entryMsg:
		e := keylogger.Entry(msg)
		m.log = append(m.log, e)
		if over := len(m.log) - m.history; over > 0 {
			m.log = append([]keylogger.Entry(nil), m.log[over:]...)
		}
		m.session.RecordKey(stats.Stroke{
			VirtualKey: e.VirtualKey,
			Pressed:    e.Direction == hook.Pressed,
			Blocked:    e.Blocked,
			Injected:   e.Injected,
			Time:       e.Time,
		})
		return m, waitForEntry(m.entries)

	case moveMsg:
		m.pos = mousetracker.Movement(msg)
		m.hasPos = true
		m.session.RecordMove(msg.Distance)
		return m, waitForMove(m.moves)

	case tickMsg:
		return m, tick()

	case feedClosedMsg:
		m.status = "capture stopped"
	}

	return m, nil
}

func (m *Model) toggle() {
	if m.capture == nil {
		return
	}
	var err error
	if m.capture.Enabled() {
		err = m.capture.Disable()
	} else {
		err = m.capture.Enable()
	}
	if err != nil {
		m.status = err.Error()
		return
	}
	m.status = ""
}

// Log returns the visible log lines, oldest first.
func (m Model) Log() []string {
	lines := make([]string, len(m.log))
	for i, e := range m.log {
		lines[i] = e.String()
	}
	return lines
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("⌨️  hooktrace"))
	b.WriteString("\n")

	tracking := statusOffStyle.Render("OFF")
	if m.capture != nil && m.capture.Enabled() {
		tracking = statusOnStyle.Render("ON")
	}
	b.WriteString(statLabelStyle.Render("Tracking: ") + tracking)
	if m.status != "" {
		b.WriteString("  " + alertStyle.Render(m.status))
	}
	b.WriteString("\n\n")

	pointer := statLabelStyle.Render("waiting for movement")
	if m.hasPos {
		pointer = fmt.Sprintf("%s %s",
			statLabelStyle.Render("Position:"),
			statValueStyle.Render(fmt.Sprintf("X: %d, Y: %d", m.pos.X, m.pos.Y)))
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		boxStyle.Render("Pointer\n"+pointer),
		" ",
		boxStyle.Render("Session\n"+m.renderSession()),
	))
	b.WriteString("\n\n")

	b.WriteString(statLabelStyle.Render("Keystrokes:"))
	b.WriteString("\n")
	b.WriteString(m.renderLog())
	b.WriteString("\n")

	b.WriteString(helpStyle.Render("t: toggle tracking • c: clear • q: quit"))
	return b.String()
}

func (m Model) renderSession() string {
	sum := m.session.Summary(m.now(), topKeys)

	lines := []string{
		fmt.Sprintf("%s %s  %s %s",
			statLabelStyle.Render("Down:"), statValueStyle.Render(stats.FormatCount(sum.Pressed)),
			statLabelStyle.Render("Up:"), statValueStyle.Render(stats.FormatCount(sum.Released))),
		fmt.Sprintf("%s %s  %s %s",
			statLabelStyle.Render("Blocked:"), statValueStyle.Render(stats.FormatCount(sum.Blocked)),
			statLabelStyle.Render("Per min:"), statValueStyle.Render(fmt.Sprintf("%.0f", sum.PerMinute))),
		fmt.Sprintf("%s %s",
			statLabelStyle.Render("Pointer:"),
			statValueStyle.Render(fmt.Sprintf("%.1f ft", mousetracker.PixelsToFeet(sum.Distance, 0)))),
	}
	if len(sum.TopKeys) > 0 {
		names := make([]string, len(sum.TopKeys))
		for i, k := range sum.TopKeys {
			names[i] = fmt.Sprintf("%s×%s", vkey.Name(k.VirtualKey), stats.FormatCount(k.Count))
		}
		lines = append(lines, statLabelStyle.Render("Top: ")+statValueStyle.Render(strings.Join(names, " ")))
	}
	return strings.Join(lines, "\n")
}

// logRows is how many log lines fit under the header at the current size.
func (m Model) logRows() int {
	const chrome = 14
	if m.height <= chrome {
		return 10
	}
	return m.height - chrome
}

func (m Model) renderLog() string {
	if len(m.log) == 0 {
		return statLabelStyle.Render("No keystrokes yet")
	}
	start := len(m.log) - m.logRows()
	if start < 0 {
		start = 0
	}
	var b strings.Builder
	for i, e := range m.log[start:] {
		if i > 0 {
			b.WriteString("\n")
		}
		if e.Blocked {
			b.WriteString(blockedStyle.Render(e.String()))
		} else {
			b.WriteString(logStyle.Render(e.String()))
		}
	}
	return b.String()
}
