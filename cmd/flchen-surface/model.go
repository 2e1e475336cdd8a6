package main

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wehiroi/flchen/pkg/editor"
	"github.com/wehiroi/flchen/pkg/flchen"
	"github.com/wehiroi/flchen/pkg/framework/query"
	"github.com/wehiroi/flchen/pkg/framework/router"
	"github.com/wehiroi/flchen/pkg/framework/state"
	"github.com/wehiroi/flchen/pkg/framework/transport"
	"github.com/wehiroi/flchen/pkg/plugin"
)

type styles struct {
	title  lipgloss.Style
	label  lipgloss.Style
	value  lipgloss.Style
	active lipgloss.Style
	idle   lipgloss.Style
	warn   lipgloss.Style
	help   lipgloss.Style
	frame  lipgloss.Style
}

func newStyles() styles {
	return styles{
		title:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("213")),
		label:  lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(12),
		value:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("255")),
		active: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("16")).Background(lipgloss.Color("205")).Padding(0, 1),
		idle:   lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Padding(0, 1),
		warn:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203")),
		help:   lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		frame:  lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("99")).Padding(1, 2),
	}
}

// Model is the terminal control surface. Like the embedded page it only
// sees the instance through the editor callback; the diagnostics line reads
// counters directly.
type Model struct {
	editor *editor.Editor
	host   *host
	clock  *transport.Clock
	inst   *plugin.Instance
	proc   *flchen.Processor
	poll   time.Duration
	styles styles

	mode        string
	position    string
	playing     bool
	unavailable bool
	lastKey     string
	quitting    bool
}

type pollMsg time.Time

func newModel(ed *editor.Editor, h *host, clock *transport.Clock, inst *plugin.Instance, poll time.Duration) Model {
	proc, _ := inst.Processor().(*flchen.Processor)
	return Model{
		editor: ed,
		host:   h,
		clock:  clock,
		inst:   inst,
		proc:   proc,
		poll:   poll,
		styles: newStyles(),
	}
}

func pollEvery(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return pollMsg(t)
	})
}

func (m Model) Init() tea.Cmd {
	return pollEvery(m.poll)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch key := msg.String(); key {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit

		case " ":
			m.playing = m.clock.Toggle()

		case "u":
			m.unavailable = !m.unavailable
			m.clock.SetUnavailable(m.unavailable)

		case "0":
			m.clock.Seek(0)

		default:
			if code, ok := codeForKey(key); ok {
				m.host.NoteOn(code)
				m.lastKey = key
			}
		}

	case pollMsg:
		m.mode = m.editor.Invoke("getMode")
		m.position = m.editor.Invoke("getTime")
		return m, pollEvery(m.poll)
	}
	return m, nil
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	s := m.styles

	var b strings.Builder
	b.WriteString(s.title.Render(flchen.Name + " surface"))
	b.WriteString("\n\n")

	b.WriteString(s.label.Render("mode") + s.value.Render(m.mode) + "\n")
	b.WriteString(s.label.Render("position") + s.value.Render(m.position) + "\n")

	transportState := "stopped"
	if m.playing {
		transportState = "playing"
	}
	if m.unavailable {
		transportState = s.warn.Render("unavailable")
	}
	b.WriteString(s.label.Render("transport") + transportState + "\n\n")

	b.WriteString(m.renderKeys())
	b.WriteString("\n\n")

	b.WriteString(s.help.Render(m.diagnostics()))
	b.WriteString("\n")
	b.WriteString(s.help.Render("a-l select mode · space play/stop · 0 rewind · u drop transport · q quit"))

	return s.frame.Render(b.String())
}

// renderKeys draws one cell per mode, highlighting the current one.
func (m Model) renderKeys() string {
	cells := make([]string, 0, state.NumModes)
	for i, mapping := range router.Table() {
		label := fmt.Sprintf("%c %d", keyRow[i], mapping.Mode)
		if query.FormatMode(mapping.Mode) == m.mode {
			cells = append(cells, m.styles.active.Render(label))
		} else {
			cells = append(cells, m.styles.idle.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cells...)
}

func (m Model) diagnostics() string {
	parts := []string{fmt.Sprintf("blocks %d", m.host.Blocks())}
	if m.proc != nil {
		parts = append(parts, fmt.Sprintf("missed %d", m.proc.Router().MissedCycles()))
	}
	parts = append(parts, fmt.Sprintf("dropped %d", m.inst.DroppedEvents()+m.host.Overflows()))
	if p := m.inst.Profiler(); p.IsEnabled() {
		parts = append(parts, fmt.Sprintf("load %.1f%%", p.Load()))
	}
	return strings.Join(parts, " · ")
}
