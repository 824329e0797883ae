package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Next      key.Binding
	Prev      key.Binding
	Left      key.Binding
	Right     key.Binding
	Press     key.Binding
	Sample    key.Binding
	Randomize key.Binding
	Reset     key.Binding
	Retry     key.Binding
	Help      key.Binding
	Quit      key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Next: key.NewBinding(
			key.WithKeys("tab", "down", "j"),
			key.WithHelp("tab", "next"),
		),
		Prev: key.NewBinding(
			key.WithKeys("shift+tab", "up", "k"),
			key.WithHelp("shift+tab", "prev"),
		),
		Left: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/→", "move slider"),
		),
		Right: key.NewBinding(
			key.WithKeys("right", "l"),
		),
		Press: key.NewBinding(
			key.WithKeys("enter", " "),
			key.WithHelp("⏎", "press"),
		),
		Sample: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "new sentence"),
		),
		Randomize: key.NewBinding(
			key.WithKeys("z"),
			key.WithHelp("z", "randomize z"),
		),
		Reset: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reset z"),
		),
		Retry: key.NewBinding(
			key.WithKeys("R"),
			key.WithHelp("R", "retry"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c", "esc"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Sample, k.Randomize, k.Reset, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Next, k.Prev, k.Left, k.Press},
		{k.Sample, k.Randomize, k.Reset, k.Retry},
		{k.Help, k.Quit},
	}
}
