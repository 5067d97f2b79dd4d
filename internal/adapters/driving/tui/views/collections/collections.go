// Package collections provides the collection listing view for the TUI.
package collections

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/pagelens/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/pagelens/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/pagelens/internal/core/domain"
	"github.com/custodia-labs/pagelens/internal/core/ports/driving"
)

// View lists indexed collections and lets the user pick or delete one.
type View struct {
	styles  *styles.Styles
	service driving.CollectionService

	collections []domain.CollectionSummary
	selected    int
	width       int
	height      int
	ready       bool
	loading     bool
	notice      string
}

// NewView creates a new collections view.
func NewView(s *styles.Styles, service driving.CollectionService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{
		styles:  s,
		service: service,
		width:   80,
		height:  24,
	}
}

// Init initialises the view and loads collections.
func (v *View) Init() tea.Cmd {
	v.loading = true
	return v.loadCollections()
}

// loadCollections returns a command that lists collections.
func (v *View) loadCollections() tea.Cmd {
	return func() tea.Msg {
		if v.service == nil {
			return messages.CollectionsLoaded{}
		}
		return messages.CollectionsLoaded{Collections: v.service.List(context.Background())}
	}
}

// deleteCollection returns a command that deletes a collection.
func (v *View) deleteCollection(name string) tea.Cmd {
	return func() tea.Msg {
		if v.service == nil {
			return messages.CollectionDeleted{Name: name}
		}
		return messages.CollectionDeleted{Name: name, Deleted: v.service.Delete(context.Background(), name)}
	}
}

// Update handles messages for the collections view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.CollectionsLoaded:
		v.loading = false
		v.collections = msg.Collections
		if v.selected >= len(v.collections) {
			v.selected = max(len(v.collections)-1, 0)
		}
		return v, nil

	case messages.CollectionDeleted:
		if msg.Deleted {
			v.notice = fmt.Sprintf("Deleted %q", msg.Name)
		} else {
			v.notice = fmt.Sprintf("Collection %q not found", msg.Name)
		}
		v.loading = true
		return v, v.loadCollections()
	}

	return v, nil
}

// handleKeyMsg handles key presses.
func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	case "up", "k":
		if v.selected > 0 {
			v.selected--
		}
	case "down", "j":
		if v.selected < len(v.collections)-1 {
			v.selected++
		}
	case "enter":
		if c := v.SelectedCollection(); c != nil {
			name := c.Name
			return v, func() tea.Msg {
				return messages.CollectionSelected{Name: name}
			}
		}
	case "d", "delete":
		if c := v.SelectedCollection(); c != nil {
			return v, v.deleteCollection(c.Name)
		}
	case "r":
		v.loading = true
		v.notice = ""
		return v, v.loadCollections()
	}

	return v, nil
}

// View renders the collections view.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render("Collections"))
	b.WriteString("\n\n")

	switch {
	case v.loading:
		b.WriteString(v.styles.Muted.Render("Loading collections..."))
		b.WriteString("\n\n")
	case len(v.collections) == 0:
		b.WriteString(v.styles.Muted.Render("No collections indexed. Run `pagelens index <files>` first."))
		b.WriteString("\n\n")
	default:
		for i := range v.collections {
			b.WriteString(v.renderCollection(i, &v.collections[i]))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if v.notice != "" {
		b.WriteString(v.styles.Warning.Render(v.notice))
		b.WriteString("\n\n")
	}

	b.WriteString(v.styles.Help.Render("[enter] ask  [d] delete  [r] reload  [esc] back  [q] quit"))
	return b.String()
}

// renderCollection renders one collection line.
func (v *View) renderCollection(index int, c *domain.CollectionSummary) string {
	indicator := "  "
	if index == v.selected {
		indicator = "> "
	}
	detail := fmt.Sprintf("%d docs, %d pages, %.1f MB", c.DocumentCount, c.TotalPages, c.SizeEstimate)

	if index == v.selected {
		return v.styles.Selected.Render(fmt.Sprintf("%s%-20s %s", indicator, c.Name, detail))
	}
	return v.styles.Normal.Render(fmt.Sprintf("%s%-20s ", indicator, c.Name)) +
		v.styles.Muted.Render(detail)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
}

// Collections returns the listed collections.
func (v *View) Collections() []domain.CollectionSummary {
	return v.collections
}

// SelectedCollection returns the highlighted collection, or nil.
func (v *View) SelectedCollection() *domain.CollectionSummary {
	if v.selected < 0 || v.selected >= len(v.collections) {
		return nil
	}
	return &v.collections[v.selected]
}

// SelectedIndex returns the highlighted index.
func (v *View) SelectedIndex() int {
	return v.selected
}
