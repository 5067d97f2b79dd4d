package tui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pagelens/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/pagelens/internal/core/domain"
)

func newTestPorts() *Ports {
	return &Ports{
		RAG: &mockRAGService{},
		Collections: &mockCollectionService{collections: []domain.CollectionSummary{
			{Name: "default", DocumentCount: 1, TotalPages: 2},
			{Name: "reports", DocumentCount: 2, TotalPages: 9},
		}},
	}
}

// goToAskView navigates the app from menu to the ask view.
func goToAskView(app *App) {
	app.SetDimensions(100, 40)
	app.Update(messages.ViewChanged{View: messages.ViewAsk})
}

func typeText(app *App, text string) {
	for _, r := range text {
		app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

// run executes cmd and feeds its message back into the app.
func run(t *testing.T, app *App, cmd tea.Cmd) {
	t.Helper()
	require.NotNil(t, cmd)
	app.Update(cmd())
}

func TestNewApp_Success(t *testing.T) {
	app, err := NewApp(newTestPorts())

	require.NoError(t, err)
	require.NotNil(t, app)
	assert.Equal(t, messages.ViewMenu, app.CurrentView())
	assert.Equal(t, domain.DefaultCollection, app.Collection())
}

func TestNewApp_InvalidPorts(t *testing.T) {
	app, err := NewApp(&Ports{Collections: &mockCollectionService{}})

	assert.ErrorIs(t, err, ErrMissingRAGService)
	assert.Nil(t, app)
}

func TestNewApp_WithStatsShowsModels(t *testing.T) {
	ports := newTestPorts()
	ports.Stats = &mockStatsService{}

	app, err := NewApp(ports)
	require.NoError(t, err)
	app.SetDimensions(100, 40)

	view := app.View()
	assert.Contains(t, view, "embeddings: demo")
	assert.Contains(t, view, "Demo mode")
}

func TestApp_WithContextAndInit(t *testing.T) {
	app, _ := NewApp(newTestPorts())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	assert.Equal(t, app, app.WithContext(ctx))
	assert.NotNil(t, app.Init())
}

func TestApp_View_NotReady(t *testing.T) {
	app, _ := NewApp(newTestPorts())

	assert.Equal(t, "Initialising...", app.View())

	app.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	assert.True(t, app.Ready())
	assert.Contains(t, app.View(), "pagelens")
}

func TestApp_AskFlow(t *testing.T) {
	rag := &mockRAGService{result: &domain.QueryResult{
		Answer:          "The chart peaks in March.",
		SourceDocument:  "slides_page_4.png",
		SimilarityScore: 0.64,
	}}
	ports := newTestPorts()
	ports.RAG = rag
	app, err := NewApp(ports)
	require.NoError(t, err)

	goToAskView(app)
	assert.Equal(t, messages.ViewAsk, app.CurrentView())

	typeText(app, "when does the chart peak?")
	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	run(t, app, cmd)

	assert.Equal(t, "when does the chart peak?", rag.lastQuery.Text)
	assert.Equal(t, domain.DefaultCollection, rag.lastQuery.Collection)
	assert.NoError(t, app.Err())

	view := app.View()
	assert.Contains(t, view, "The chart peaks in March.")
	assert.Contains(t, view, "slides_page_4.png")
}

func TestApp_AskError(t *testing.T) {
	ports := newTestPorts()
	ports.RAG = &mockRAGService{err: errors.New("no documents indexed")}
	app, _ := NewApp(ports)

	goToAskView(app)
	typeText(app, "anything")
	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	run(t, app, cmd)

	assert.EqualError(t, app.Err(), "no documents indexed")
	assert.Contains(t, app.View(), "no documents indexed")
}

func TestApp_SelectCollectionThenAsk(t *testing.T) {
	rag := &mockRAGService{}
	ports := newTestPorts()
	ports.RAG = rag
	app, _ := NewApp(ports)
	app.SetDimensions(100, 40)

	_, cmd := app.Update(messages.ViewChanged{View: messages.ViewCollections})
	run(t, app, cmd)
	assert.Equal(t, messages.ViewCollections, app.CurrentView())
	assert.Contains(t, app.View(), "reports")

	app.Update(tea.KeyMsg{Type: tea.KeyDown})
	_, cmd = app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	run(t, app, cmd)

	assert.Equal(t, messages.ViewAsk, app.CurrentView())
	assert.Equal(t, "reports", app.Collection())

	typeText(app, "totals?")
	_, cmd = app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	run(t, app, cmd)
	assert.Equal(t, "reports", rag.lastQuery.Collection)
}

func TestApp_DeleteCollection(t *testing.T) {
	ports := newTestPorts()
	svc := ports.Collections.(*mockCollectionService)
	app, _ := NewApp(ports)
	app.SetDimensions(100, 40)

	_, cmd := app.Update(messages.ViewChanged{View: messages.ViewCollections})
	run(t, app, cmd)

	_, cmd = app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'d'}})
	require.NotNil(t, cmd)
	_, reload := app.Update(cmd())
	run(t, app, reload)

	assert.Equal(t, []string{"default"}, svc.deleted)
	assert.NotContains(t, app.View(), "1 docs, 2 pages")
}

func TestApp_EscReturnsToMenu(t *testing.T) {
	app, _ := NewApp(newTestPorts())
	goToAskView(app)

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyEsc})
	run(t, app, cmd)

	assert.Equal(t, messages.ViewMenu, app.CurrentView())
}

func TestApp_Update_ErrorOccurred(t *testing.T) {
	app, _ := NewApp(newTestPorts())
	goToAskView(app)

	app.Update(messages.ErrorOccurred{Err: errors.New("boom")})

	assert.EqualError(t, app.Err(), "boom")
	assert.Contains(t, app.View(), "boom")
}

func TestApp_Update_Quit(t *testing.T) {
	app, _ := NewApp(newTestPorts())

	_, cmd := app.Update(messages.Quit{})
	assert.NotNil(t, cmd)

	_, cmd = app.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	assert.NotNil(t, cmd)
}
