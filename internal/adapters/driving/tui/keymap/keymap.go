// Package keymap defines keybindings for the TUI.
package keymap

import (
	"slices"

	"github.com/charmbracelet/bubbles/key"
)

// KeyMap defines all keybindings for the TUI.
type KeyMap struct {
	Quit key.Binding
	Back key.Binding

	// Ask submits the typed question.
	Ask key.Binding

	Up     key.Binding
	Down   key.Binding
	Select key.Binding

	// NewQuestion clears the answer and focuses the input.
	NewQuestion key.Binding

	// ToggleContext turns secondary context pages on or off.
	ToggleContext key.Binding

	// Delete removes the selected collection.
	Delete key.Binding

	// Refresh reloads the collection list.
	Refresh key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Ask: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "ask"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "select"),
		),
		NewQuestion: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "new question"),
		),
		ToggleContext: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "toggle context"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
	}
}

// AskHelp returns keybindings shown while typing a question.
func (k *KeyMap) AskHelp() []key.Binding {
	return []key.Binding{k.Ask, k.Back}
}

// AnswerHelp returns keybindings shown once an answer is displayed.
func (k *KeyMap) AnswerHelp() []key.Binding {
	return []key.Binding{k.NewQuestion, k.ToggleContext, k.Up, k.Back}
}

// CollectionsHelp returns keybindings for the collection list.
func (k *KeyMap) CollectionsHelp() []key.Binding {
	return []key.Binding{k.Select, k.Delete, k.Refresh, k.Back}
}

// Matches checks if a key string matches a binding.
func Matches(keyStr string, binding key.Binding) bool {
	return slices.Contains(binding.Keys(), keyStr)
}
