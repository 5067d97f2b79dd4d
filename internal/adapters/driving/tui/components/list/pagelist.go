// Package list provides list display components for the TUI.
package list

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/pagelens/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/pagelens/internal/core/domain"
)

// PageList displays the pages retrieved for an answer: the source page first,
// followed by any context pages.
type PageList struct {
	pages    []domain.ContextDocument
	selected int
	styles   *styles.Styles
	width    int
	height   int
}

// NewPageList creates a new page list component.
func NewPageList(s *styles.Styles) *PageList {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &PageList{
		styles: s,
		width:  80,
		height: 10,
	}
}

// Init initialises the list.
func (p *PageList) Init() tea.Cmd {
	return nil
}

// Update handles list navigation messages.
func (p *PageList) Update(msg tea.Msg) (*PageList, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "up", "k":
			p.MoveUp()
		case "down", "j":
			p.MoveDown()
		}
	}
	return p, nil
}

// View renders the page list.
func (p *PageList) View() string {
	if len(p.pages) == 0 {
		return p.styles.Muted.Render("No pages")
	}

	lines := make([]string, 0, len(p.pages)+2)
	lines = append(lines, p.styles.Subtitle.Render(fmt.Sprintf("Pages (%d)", len(p.pages))), "")

	visible := max(p.height-2, 1)
	start := 0
	if p.selected >= visible {
		start = p.selected - visible + 1
	}
	end := min(start+visible, len(p.pages))

	for i := start; i < end; i++ {
		lines = append(lines, p.renderPage(i, p.pages[i]))
	}

	return strings.Join(lines, "\n")
}

// renderPage formats one page line with its similarity.
func (p *PageList) renderPage(index int, page domain.ContextDocument) string {
	indicator := "  "
	if index == p.selected {
		indicator = "> "
	}
	tag := "context"
	if index == 0 {
		tag = "source "
	}

	name := page.Document
	maxLen := max(p.width-24, 10)
	if len(name) > maxLen {
		name = name[:maxLen-3] + "..."
	}

	score := fmt.Sprintf("%.3f", page.Similarity)
	if index == p.selected {
		return p.styles.Selected.Render(fmt.Sprintf("%s%s %-*s  %s", indicator, tag, maxLen, name, score))
	}
	return p.styles.Normal.Render(fmt.Sprintf("%s%s %-*s  ", indicator, tag, maxLen, name)) +
		p.styles.Score(page.Similarity).Render(score)
}

// SetResult fills the list from a query result. Context documents that repeat
// the source page are skipped.
func (p *PageList) SetResult(result *domain.QueryResult) {
	p.selected = 0
	p.pages = nil
	if result == nil {
		return
	}
	if result.SourceDocument != "" {
		p.pages = append(p.pages, domain.ContextDocument{
			Document:   result.SourceDocument,
			Similarity: result.SimilarityScore,
		})
	}
	for _, doc := range result.ContextDocuments {
		if doc.Document == result.SourceDocument {
			continue
		}
		p.pages = append(p.pages, doc)
	}
}

// Pages returns the listed pages.
func (p *PageList) Pages() []domain.ContextDocument {
	return p.pages
}

// Selected returns the index of the selected page.
func (p *PageList) Selected() int {
	return p.selected
}

// SelectedPage returns the selected page, or nil if the list is empty.
func (p *PageList) SelectedPage() *domain.ContextDocument {
	if p.selected < 0 || p.selected >= len(p.pages) {
		return nil
	}
	return &p.pages[p.selected]
}

// MoveUp moves selection up.
func (p *PageList) MoveUp() {
	if p.selected > 0 {
		p.selected--
	}
}

// MoveDown moves selection down.
func (p *PageList) MoveDown() {
	if p.selected < len(p.pages)-1 {
		p.selected++
	}
}

// SetDimensions sets the component dimensions.
func (p *PageList) SetDimensions(width, height int) {
	p.width = width
	p.height = height
}

// Count returns the number of pages.
func (p *PageList) Count() int {
	return len(p.pages)
}
