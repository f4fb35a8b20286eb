package ui

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap defines all keybindings for the application
type KeyMap struct {
	// Navigation
	Up     key.Binding
	Down   key.Binding
	Top    key.Binding
	Bottom key.Binding

	// Entry actions
	Add           key.Binding
	Rename        key.Binding
	Divider       key.Binding
	Toggle        key.Binding
	InProgress    key.Binding
	Important     key.Binding
	Delete        key.Binding
	ClearDone     key.Binding
	Move          key.Binding
	AttachImage   key.Binding
	DetachImage   key.Binding
	TogglePreview key.Binding
	PasteImage    key.Binding
	CopyTitle     key.Binding

	// General
	Help    key.Binding
	Quit    key.Binding
	Confirm key.Binding
	Cancel  key.Binding
}

// DefaultKeyMap returns the default keybindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		// Navigation
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Top: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "top"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "bottom"),
		),

		// Entry actions
		Add: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add"),
		),
		Rename: key.NewBinding(
			key.WithKeys("enter", "r"),
			key.WithHelp("enter", "rename"),
		),
		Divider: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "section"),
		),
		Toggle: key.NewBinding(
			key.WithKeys("tab", "x"),
			key.WithHelp("tab", "toggle done"),
		),
		InProgress: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "in progress"),
		),
		Important: key.NewBinding(
			key.WithKeys("i"),
			key.WithHelp("i", "important"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d", "delete"),
			key.WithHelp("d", "delete"),
		),
		ClearDone: key.NewBinding(
			key.WithKeys("C"),
			key.WithHelp("C", "clear done"),
		),
		Move: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "move"),
		),
		AttachImage: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "attach image"),
		),
		DetachImage: key.NewBinding(
			key.WithKeys("O"),
			key.WithHelp("O", "detach image"),
		),
		TogglePreview: key.NewBinding(
			key.WithKeys("v"),
			key.WithHelp("v", "preview"),
		),
		PasteImage: key.NewBinding(
			key.WithKeys("P", "ctrl+v"),
			key.WithHelp("P", "paste image path"),
		),
		CopyTitle: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "copy title"),
		),

		// General
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "confirm"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
	}
}

// ShortHelp returns short help bindings (for status bar)
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Add, k.Toggle, k.Move, k.Delete, k.Help, k.Quit}
}

// FullHelp returns full help bindings (for help view)
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Top, k.Bottom},
		{k.Add, k.Rename, k.Divider, k.Delete},
		{k.Toggle, k.InProgress, k.Important, k.ClearDone},
		{k.Move, k.AttachImage, k.PasteImage, k.DetachImage},
		{k.TogglePreview, k.CopyTitle},
		{k.Help, k.Quit},
	}
}
