package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/stagekit/stagekit/perform"
)

// refreshMsg tells the view an asynchronous fetch settled.
type refreshMsg struct{}

// beatMsg is one metronome beat.
type beatMsg time.Time

type Model struct {
	session *perform.Session
	keys    keyMap
	spinner spinner.Model
	width   int
	height  int
	beat    bool
}

func New(session *perform.Session) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	return Model{
		session: session,
		keys:    newKeyMap(),
		spinner: sp,
		width:   0,
		height:  0,
		beat:    false,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.beatTick())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case refreshMsg:
		return m, nil

	case beatMsg:
		if m.session.View().Controls.Playing {
			m.beat = !m.beat
		} else {
			m.beat = false
		}
		return m, m.beatTick()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.previous):
		m.session.Previous()
	case key.Matches(msg, m.keys.next):
		m.session.Next()
	case key.Matches(msg, m.keys.metronome):
		m.session.ToggleMetronome()
	case key.Matches(msg, m.keys.zoomIn):
		m.session.ZoomIn()
	case key.Matches(msg, m.keys.zoomOut):
		m.session.ZoomOut()
	case key.Matches(msg, m.keys.resetZoom):
		m.session.ResetZoom()
	case key.Matches(msg, m.keys.darkSheet):
		m.session.ToggleDarkSheet()
	case key.Matches(msg, m.keys.bpmUp):
		m.session.IncreaseBPM()
	case key.Matches(msg, m.keys.bpmDown):
		m.session.DecreaseBPM()
	case key.Matches(msg, m.keys.exit):
		return m, tea.Quit
	}
	return m, nil
}

// beatTick schedules the next metronome beat from the current tempo.
func (m Model) beatTick() tea.Cmd {
	bpm := m.session.View().Controls.BPM
	if bpm <= 0 {
		bpm = 120
	}
	return tea.Tick(time.Minute/time.Duration(bpm), func(t time.Time) tea.Msg {
		return beatMsg(t)
	})
}

// Run wires the session's async updates into the program and blocks until
// the performer exits.
func Run(session *perform.Session) error {
	p := tea.NewProgram(New(session), tea.WithAltScreen())
	session.SetOnUpdate(func() {
		p.Send(refreshMsg{})
	})
	_, err := p.Run()
	return err
}
