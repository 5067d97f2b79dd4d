// Package status provides status bar components for the TUI.
package status

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/pagelens/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/pagelens/internal/adapters/driving/tui/styles"
)

// State represents the current application state for display.
type State string

const (
	StateReady    State = "ready"
	StateThinking State = "thinking"
	StateAnswered State = "answered"
	StateError    State = "error"
)

// Bar displays application status and keybinding hints.
type Bar struct {
	styles     *styles.Styles
	keymap     *keymap.KeyMap
	state      State
	message    string
	collection string
	fromCache  bool
	elapsed    float64
	width      int
}

// NewBar creates a new status bar component.
func NewBar(s *styles.Styles, km *keymap.KeyMap) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &Bar{
		styles: s,
		keymap: km,
		state:  StateReady,
		width:  80,
	}
}

// Init initialises the status bar.
func (s *Bar) Init() tea.Cmd {
	return nil
}

// Update handles status bar messages.
func (s *Bar) Update(_ tea.Msg) (*Bar, tea.Cmd) {
	// Bar is passive, updated via Set methods
	return s, nil
}

// View renders the status bar.
func (s *Bar) View() string {
	left := s.renderLeft()
	right := s.renderRight()

	padding := max(s.width-lipgloss.Width(left)-lipgloss.Width(right), 1)

	return s.styles.StatusBar.Width(s.width).Render(
		left + strings.Repeat(" ", padding) + right,
	)
}

func (s *Bar) renderLeft() string {
	prefix := ""
	if s.collection != "" {
		prefix = s.styles.Subtitle.Render("["+s.collection+"]") + " "
	}

	switch s.state {
	case StateThinking:
		return prefix + s.styles.Muted.Render("Thinking...")
	case StateError:
		if s.message != "" {
			return prefix + s.styles.Error.Render("Error: "+s.message)
		}
		return prefix + s.styles.Error.Render("Error")
	case StateAnswered:
		text := fmt.Sprintf("Answered in %.2fs", s.elapsed)
		if s.fromCache {
			return prefix + s.styles.Success.Render(text+" (cached)")
		}
		return prefix + s.styles.Normal.Render(text)
	case StateReady:
	}
	if s.message != "" {
		return prefix + s.styles.Muted.Render(s.message)
	}
	return prefix + s.styles.Muted.Render("Ready")
}

func (s *Bar) renderRight() string {
	var bindings []key.Binding
	if s.state == StateAnswered {
		bindings = s.keymap.AnswerHelp()
	} else {
		bindings = s.keymap.AskHelp()
	}

	hints := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		hints = append(hints, fmt.Sprintf("%s: %s", h.Key, h.Desc))
	}
	return s.styles.Muted.Render(strings.Join(hints, " | "))
}

// SetState sets the current state.
func (s *Bar) SetState(state State) {
	s.state = state
}

// State returns the current state.
func (s *Bar) State() State {
	return s.state
}

// SetMessage sets a custom message.
func (s *Bar) SetMessage(message string) {
	s.message = message
}

// Message returns the current message.
func (s *Bar) Message() string {
	return s.message
}

// SetCollection sets the collection shown on the left.
func (s *Bar) SetCollection(name string) {
	s.collection = name
}

// SetAnswer records the timing of the last answer and whether it came from the cache.
func (s *Bar) SetAnswer(elapsed float64, fromCache bool) {
	s.state = StateAnswered
	s.elapsed = elapsed
	s.fromCache = fromCache
}

// FromCache reports whether the last answer was served from the cache.
func (s *Bar) FromCache() bool {
	return s.fromCache
}

// SetWidth sets the status bar width.
func (s *Bar) SetWidth(width int) {
	s.width = width
}

// Width returns the current width.
func (s *Bar) Width() int {
	return s.width
}

// Clear resets the status bar to default state. The collection is kept.
func (s *Bar) Clear() {
	s.state = StateReady
	s.message = ""
	s.fromCache = false
	s.elapsed = 0
}
