// Package keymap defines the key bindings of the TUI.
//
// Bindings are grouped by focus: Global bindings work everywhere, Sidebar
// bindings apply while the menu has focus and Content bindings are shared by
// the screens. Every group implements help.KeyMap so the help bar can render it.
package keymap

import "github.com/charmbracelet/bubbles/key"

// Global bindings are checked before anything else.
type Global struct {
	Quit          key.Binding
	ToggleSidebar key.Binding
	Logout        key.Binding
	FocusSidebar  key.Binding
	Help          key.Binding
}

// Sidebar bindings apply while the menu has focus.
type Sidebar struct {
	Up     key.Binding
	Down   key.Binding
	Select key.Binding
	Leave  key.Binding
	Quit   key.Binding
}

// Content bindings are shared by the screens.
type Content struct {
	Up        key.Binding
	Down      key.Binding
	Left      key.Binding
	Right     key.Binding
	Open      key.Binding
	NextField key.Binding
	PrevField key.Binding
	Submit    key.Binding
	Refresh   key.Binding
	Reset     key.Binding
}

// Keymap is the complete set of bindings.
type Keymap struct {
	Global  Global
	Sidebar Sidebar
	Content Content
}

// Default returns the default bindings.
func Default() Keymap {
	return Keymap{
		Global: Global{
			Quit: key.NewBinding(
				key.WithKeys("ctrl+c"),
				key.WithHelp("ctrl+c", "salir"),
			),
			ToggleSidebar: key.NewBinding(
				key.WithKeys("ctrl+b"),
				key.WithHelp("ctrl+b", "menú"),
			),
			Logout: key.NewBinding(
				key.WithKeys("ctrl+l"),
				key.WithHelp("ctrl+l", "cerrar sesión"),
			),
			FocusSidebar: key.NewBinding(
				key.WithKeys("esc"),
				key.WithHelp("esc", "ir al menú"),
			),
			Help: key.NewBinding(
				key.WithKeys("f1"),
				key.WithHelp("f1", "ayuda"),
			),
		},
		Sidebar: Sidebar{
			Up: key.NewBinding(
				key.WithKeys("up", "k"),
				key.WithHelp("↑/k", "arriba"),
			),
			Down: key.NewBinding(
				key.WithKeys("down", "j"),
				key.WithHelp("↓/j", "abajo"),
			),
			Select: key.NewBinding(
				key.WithKeys("enter"),
				key.WithHelp("enter", "abrir"),
			),
			Leave: key.NewBinding(
				key.WithKeys("tab", "right", "l"),
				key.WithHelp("tab", "ir al contenido"),
			),
			Quit: key.NewBinding(
				key.WithKeys("q"),
				key.WithHelp("q", "salir"),
			),
		},
		Content: Content{
			Up: key.NewBinding(
				key.WithKeys("up"),
				key.WithHelp("↑", "arriba"),
			),
			Down: key.NewBinding(
				key.WithKeys("down"),
				key.WithHelp("↓", "abajo"),
			),
			Left: key.NewBinding(
				key.WithKeys("left"),
				key.WithHelp("←", "filtro anterior"),
			),
			Right: key.NewBinding(
				key.WithKeys("right"),
				key.WithHelp("→", "filtro siguiente"),
			),
			Open: key.NewBinding(
				key.WithKeys("enter"),
				key.WithHelp("enter", "abrir"),
			),
			NextField: key.NewBinding(
				key.WithKeys("tab"),
				key.WithHelp("tab", "siguiente campo"),
			),
			PrevField: key.NewBinding(
				key.WithKeys("shift+tab"),
				key.WithHelp("shift+tab", "campo anterior"),
			),
			Submit: key.NewBinding(
				key.WithKeys("ctrl+s"),
				key.WithHelp("ctrl+s", "enviar"),
			),
			Refresh: key.NewBinding(
				key.WithKeys("ctrl+r"),
				key.WithHelp("ctrl+r", "recargar"),
			),
			Reset: key.NewBinding(
				key.WithKeys("ctrl+n"),
				key.WithHelp("ctrl+n", "nuevo"),
			),
		},
	}
}

// ShortHelp implements help.KeyMap.
func (g Global) ShortHelp() []key.Binding {
	return []key.Binding{g.FocusSidebar, g.ToggleSidebar, g.Logout, g.Quit}
}

// FullHelp implements help.KeyMap.
func (g Global) FullHelp() [][]key.Binding {
	return [][]key.Binding{g.ShortHelp(), {g.Help}}
}

// ShortHelp implements help.KeyMap.
func (s Sidebar) ShortHelp() []key.Binding {
	return []key.Binding{s.Up, s.Down, s.Select, s.Leave, s.Quit}
}

// FullHelp implements help.KeyMap.
func (s Sidebar) FullHelp() [][]key.Binding {
	return [][]key.Binding{s.ShortHelp()}
}

// ShortHelp implements help.KeyMap.
func (c Content) ShortHelp() []key.Binding {
	return []key.Binding{c.Up, c.Down, c.Open, c.Refresh}
}

// FullHelp implements help.KeyMap.
func (c Content) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{c.Up, c.Down, c.Left, c.Right},
		{c.Open, c.NextField, c.PrevField},
		{c.Submit, c.Refresh, c.Reset},
	}
}
