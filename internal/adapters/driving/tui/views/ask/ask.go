// Package ask provides the question and answer view for the TUI.
package ask

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/pagelens/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/pagelens/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/pagelens/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/pagelens/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/pagelens/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/pagelens/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/pagelens/internal/core/domain"
	"github.com/custodia-labs/pagelens/internal/core/ports/driving"
)

// defaultTopK retrieves a few pages so the context list has something to show.
const defaultTopK = 3

// View represents the ask view with input, answer, page list and status bar.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	input     *input.QuestionInput
	pages     *list.PageList
	statusbar *status.Bar

	ragService driving.RAGService
	ctx        context.Context

	collection     string
	topK           int
	includeContext bool
	answer         *domain.QueryResult

	width      int
	height     int
	ready      bool
	err        error
	focusInput bool // true = typing a question, false = reading the answer
}

// NewView creates a new ask view.
func NewView(s *styles.Styles, km *keymap.KeyMap, ragService driving.RAGService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	v := &View{
		styles:         s,
		keymap:         km,
		input:          input.NewQuestionInput(s),
		pages:          list.NewPageList(s),
		statusbar:      status.NewBar(s, km),
		ragService:     ragService,
		ctx:            context.Background(),
		collection:     domain.DefaultCollection,
		topK:           defaultTopK,
		includeContext: true,
		width:          80,
		height:         24,
		focusInput:     true,
	}
	v.statusbar.SetCollection(v.collection)
	return v
}

// WithContext sets the context for the view.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return v.input.Init()
}

// Update handles messages for the ask view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.AnswerReceived:
		v.handleAnswer(msg)
		return v, nil

	case messages.CollectionSelected:
		v.SetCollection(msg.Name)
		return v, nil

	case messages.ErrorOccurred:
		v.err = msg.Err
		v.statusbar.SetState(status.StateError)
		v.statusbar.SetMessage(msg.Err.Error())
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// handleKeyMsg processes keyboard input.
func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	if msg.Type == tea.KeyEsc {
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	}

	if v.focusInput {
		if msg.Type == tea.KeyEnter {
			question := v.input.Value()
			if question == "" {
				return v, nil
			}
			v.err = nil
			v.statusbar.SetState(status.StateThinking)
			v.focusInput = false
			v.input.Blur()
			return v, v.performQuery(question)
		}
		var cmd tea.Cmd
		v.input, cmd = v.input.Update(msg)
		return v, cmd
	}

	key := msg.String()
	switch {
	case keymap.Matches(key, v.keymap.NewQuestion):
		v.focusInput = true
		v.input.SetValue("")
		v.answer = nil
		v.pages.SetResult(nil)
		v.statusbar.Clear()
		return v, v.input.Focus()
	case keymap.Matches(key, v.keymap.ToggleContext):
		v.includeContext = !v.includeContext
		if v.includeContext {
			v.statusbar.SetMessage("Context pages on")
		} else {
			v.statusbar.SetMessage("Context pages off")
		}
		return v, nil
	case keymap.Matches(key, v.keymap.Up), keymap.Matches(key, v.keymap.Down):
		v.pages, _ = v.pages.Update(msg)
		return v, nil
	}

	return v, nil
}

// Query builds the query that submitting question would send.
func (v *View) Query(question string) domain.Query {
	q := domain.NewQuery(question)
	q.Collection = v.collection
	q.TopK = v.topK
	q.IncludeContext = v.includeContext
	return q
}

// performQuery asks the RAG service and reports the result as a message.
func (v *View) performQuery(question string) tea.Cmd {
	q := v.Query(question)
	return func() tea.Msg {
		if v.ragService == nil {
			return messages.ErrorOccurred{Err: ErrNoRAGService}
		}
		result, err := v.ragService.Query(v.ctx, q)
		return messages.AnswerReceived{Result: result, Err: err}
	}
}

// handleAnswer displays an answer or its error.
func (v *View) handleAnswer(msg messages.AnswerReceived) {
	if msg.Err != nil {
		v.err = msg.Err
		v.answer = nil
		v.pages.SetResult(nil)
		v.statusbar.SetState(status.StateError)
		v.statusbar.SetMessage(msg.Err.Error())
		return
	}

	v.err = nil
	v.answer = msg.Result
	v.pages.SetResult(msg.Result)
	elapsed := msg.Result.ProcessingTime
	if msg.Result.FromCache {
		elapsed = msg.Result.CacheRetrievalTime
	}
	v.statusbar.SetMessage("")
	v.statusbar.SetAnswer(elapsed, msg.Result.FromCache)
	v.focusInput = false
	v.input.Blur()
}

// View renders the ask view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := make([]string, 0, 10)
	sections = append(sections, v.styles.Title.Render("pagelens"), "", v.input.View(), "")

	if v.err != nil {
		sections = append(sections, v.styles.Error.Render("Error: "+v.err.Error()), "")
	}

	if v.answer != nil {
		width := max(v.width-4, 20)
		sections = append(sections,
			v.styles.Answer.Width(width).Render(v.answer.Answer), "",
			v.pages.View(),
		)
	}

	sections = append(sections, "", v.statusbar.View())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetCollection changes the collection questions are asked against.
func (v *View) SetCollection(name string) {
	if name == "" {
		name = domain.DefaultCollection
	}
	v.collection = name
	v.statusbar.SetCollection(name)
}

// Collection returns the collection questions are asked against.
func (v *View) Collection() string {
	return v.collection
}

// SetTopK sets how many pages each question retrieves.
func (v *View) SetTopK(k int) {
	if k >= 1 && k <= domain.MaxTopK {
		v.topK = k
	}
}

// IncludeContext reports whether context pages are requested.
func (v *View) IncludeContext() bool {
	return v.includeContext
}

// Answer returns the answer currently displayed, or nil.
func (v *View) Answer() *domain.QueryResult {
	return v.answer
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}

// InputFocused reports whether the question input has focus.
func (v *View) InputFocused() bool {
	return v.focusInput
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	v.input.SetWidth(width)
	v.pages.SetDimensions(width, max(height-14, 3))
	v.statusbar.SetWidth(width)
}

// Ready returns whether the view is ready to render.
func (v *View) Ready() bool {
	return v.ready
}

// Reset clears the question and answer and refocuses the input.
func (v *View) Reset() {
	v.input.Reset()
	v.input.Focus()
	v.focusInput = true
	v.answer = nil
	v.err = nil
	v.pages.SetResult(nil)
	v.statusbar.Clear()
}
