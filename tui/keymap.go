package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap is the performance-mode key protocol: left/right arrows navigate,
// space drives the metronome, escape leaves performance mode.
type keyMap struct {
	previous  key.Binding
	next      key.Binding
	metronome key.Binding
	zoomIn    key.Binding
	zoomOut   key.Binding
	resetZoom key.Binding
	darkSheet key.Binding
	bpmUp     key.Binding
	bpmDown   key.Binding
	exit      key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		previous:  key.NewBinding(key.WithKeys("left"), key.WithHelp("←", "previous")),
		next:      key.NewBinding(key.WithKeys("right"), key.WithHelp("→", "next")),
		metronome: key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "metronome")),
		zoomIn:    key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "zoom in")),
		zoomOut:   key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "zoom out")),
		resetZoom: key.NewBinding(key.WithKeys("0"), key.WithHelp("0", "reset zoom")),
		darkSheet: key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "dark sheet")),
		bpmUp:     key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "bpm +")),
		bpmDown:   key.NewBinding(key.WithKeys("["), key.WithHelp("[", "bpm -")),
		exit:      key.NewBinding(key.WithKeys("esc", "ctrl+c"), key.WithHelp("esc", "exit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.previous, k.next, k.metronome, k.exit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.previous, k.next, k.metronome},
		{k.zoomIn, k.zoomOut, k.resetZoom, k.darkSheet},
		{k.bpmUp, k.bpmDown, k.exit},
	}
}
