package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the keyboard bindings.
type keyMap struct {
	Quit      key.Binding
	Astronomy key.Binding
	Weather   key.Binding
	Search    key.Binding
	Favorite  key.Binding
	Theme     key.Binding

	// Search input
	Confirm key.Binding
	Cancel  key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Astronomy: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "refresh picture"),
		),
		Weather: key.NewBinding(
			key.WithKeys("w"),
			key.WithHelp("w", "local weather"),
		),
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search city"),
		),
		Favorite: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "favorite"),
		),
		Theme: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "theme"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "search"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc", "ctrl+c"),
			key.WithHelp("esc", "cancel"),
		),
	}
}

// helpLine lists the main bindings for the footer.
func (k keyMap) helpLine() []key.Binding {
	return []key.Binding{k.Astronomy, k.Weather, k.Search, k.Favorite, k.Theme, k.Quit}
}
