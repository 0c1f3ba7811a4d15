package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap holds the key bindings of the terminal game
type KeyMap struct {
	Up      key.Binding
	Down    key.Binding
	Left    key.Binding
	Right   key.Binding
	Restart key.Binding
	Hint    key.Binding
	Auto    key.Binding
	Quit    key.Binding
}

// Keys are the default bindings: arrows or WASD to move, R to restart, Esc to quit
var Keys = KeyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "w"),
		key.WithHelp("↑/w", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "s"),
		key.WithHelp("↓/s", "down"),
	),
	Left: key.NewBinding(
		key.WithKeys("left", "a"),
		key.WithHelp("←/a", "left"),
	),
	Right: key.NewBinding(
		key.WithKeys("right", "d"),
		key.WithHelp("→/d", "right"),
	),
	Restart: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "restart"),
	),
	Hint: key.NewBinding(
		key.WithKeys("h"),
		key.WithHelp("h", "hint"),
	),
	Auto: key.NewBinding(
		key.WithKeys("p"),
		key.WithHelp("p", "autoplay"),
	),
	Quit: key.NewBinding(
		key.WithKeys("esc", "q", "ctrl+c"),
		key.WithHelp("esc/q", "quit"),
	),
}

// helpBindings lists the bindings shown in the footer
func (k KeyMap) helpBindings() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Left, k.Right, k.Restart, k.Hint, k.Auto, k.Quit}
}
