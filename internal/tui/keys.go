package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all key bindings for the application
type KeyMap struct {
	// Navigation
	Up       key.Binding
	Down     key.Binding
	Enter    key.Binding
	Back     key.Binding
	NextPage key.Binding
	PrevPage key.Binding

	// Views
	Feed     key.Binding
	Trending key.Binding
	Profile  key.Binding
	Search   key.Binding

	// Actions
	Like     key.Binding
	Dislike  key.Binding
	Bookmark key.Binding
	Follow   key.Binding
	Unfollow key.Binding
	Comment  key.Binding
	Share    key.Binding
	Refresh  key.Binding

	Quit   key.Binding
	Help   key.Binding
	Escape key.Binding
}

// DefaultKeyMap returns the default key bindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "down"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "open"),
		),
		Back: key.NewBinding(
			key.WithKeys("h", "backspace"),
			key.WithHelp("h", "back"),
		),
		NextPage: key.NewBinding(
			key.WithKeys("n", "right"),
			key.WithHelp("n", "next page"),
		),
		PrevPage: key.NewBinding(
			key.WithKeys("p", "left"),
			key.WithHelp("p", "previous page"),
		),
		Feed: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1", "feed"),
		),
		Trending: key.NewBinding(
			key.WithKeys("2"),
			key.WithHelp("2", "trending"),
		),
		Profile: key.NewBinding(
			key.WithKeys("u"),
			key.WithHelp("u", "author profile"),
		),
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search"),
		),
		Like: key.NewBinding(
			key.WithKeys("l"),
			key.WithHelp("l", "like"),
		),
		Dislike: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "dislike"),
		),
		Bookmark: key.NewBinding(
			key.WithKeys("b"),
			key.WithHelp("b", "bookmark"),
		),
		Follow: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "follow"),
		),
		Unfollow: key.NewBinding(
			key.WithKeys("F"),
			key.WithHelp("F", "unfollow"),
		),
		Comment: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "comment"),
		),
		Share: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "share"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
	}
}
