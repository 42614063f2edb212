package tui

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
)

type keyMap struct {
	Up     key.Binding
	Down   key.Binding
	Left   key.Binding
	Right  key.Binding
	Action key.Binding
	Again  key.Binding
	Back   key.Binding
	Quit   key.Binding
	Help   key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Left:   key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "aim left")),
		Right:  key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "aim right")),
		Action: key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter/space", "select")),
		Again:  key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "fish again")),
		Back:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		Quit:   key.NewBinding(key.WithKeys("ctrl+c", "q"), key.WithHelp("q", "quit")),
		Help:   key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more keys")),
	}
}

// bindings adapts a per-screen key list to help.KeyMap.
type bindings []key.Binding

func (b bindings) ShortHelp() []key.Binding { return b }

func (b bindings) FullHelp() [][]key.Binding { return [][]key.Binding{b} }

// withHelp relabels a binding for the current screen.
func withHelp(b key.Binding, desc string) key.Binding {
	b.SetHelp(b.Help().Key, desc)
	return b
}

func newHelp() help.Model {
	h := help.New()
	h.ShowAll = false
	return h
}

func newBar() progress.Model {
	return progress.New(progress.WithDefaultGradient(), progress.WithWidth(30), progress.WithoutPercentage())
}

func newNameInput() textinput.Model {
	ti := textinput.New()
	ti.Placeholder = "Angler"
	ti.CharLimit = 24
	ti.Width = 24
	return ti
}
