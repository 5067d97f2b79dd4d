package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/pagelens/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/pagelens/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/pagelens/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/pagelens/internal/adapters/driving/tui/views/ask"
	"github.com/custodia-labs/pagelens/internal/adapters/driving/tui/views/collections"
	"github.com/custodia-labs/pagelens/internal/adapters/driving/tui/views/menu"
)

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	// ports provides access to core services via driving ports.
	ports *Ports

	// ctx is the context for cancellation.
	ctx context.Context

	// styles holds the TUI styles.
	styles *styles.Styles

	menuView        *menu.View
	askView         *ask.View
	collectionsView *collections.View

	// currentView tracks which view is active.
	currentView messages.ViewType

	// err holds the last error that occurred.
	err error

	// width and height are terminal dimensions.
	width  int
	height int

	// ready indicates if the app has initialised.
	ready bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()

	menuView := menu.NewView(s)
	if ports.Stats != nil {
		avail := ports.Stats.Stats(context.Background()).ProviderAvailability
		menuView.SetModels(avail.EmbeddingModelName(), avail.GenerationModelName(), avail.DemoMode())
	}

	return &App{
		ports:           ports,
		ctx:             context.Background(),
		styles:          s,
		menuView:        menuView,
		askView:         ask.NewView(s, km, ports.RAG),
		collectionsView: collections.NewView(s, ports.Collections),
		currentView:     messages.ViewMenu,
	}, nil
}

// WithContext sets the context for the app. Queries started from the ask
// view are cancelled with it.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.askView.WithContext(ctx)
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnterAltScreen,
		tea.SetWindowTitle("pagelens"),
	)
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		// Global quit with ctrl+c
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		return a.forward(msg)

	case messages.ViewChanged:
		a.currentView = msg.View
		switch msg.View {
		case messages.ViewAsk:
			a.askView.Reset()
			return a, a.askView.Init()
		case messages.ViewCollections:
			return a, a.collectionsView.Init()
		case messages.ViewMenu:
		}
		return a, nil

	case messages.CollectionSelected:
		a.askView, _ = a.askView.Update(msg)
		a.currentView = messages.ViewAsk
		a.askView.Reset()
		return a, a.askView.Init()

	case messages.AnswerReceived:
		a.askView, cmd = a.askView.Update(msg)
		a.err = a.askView.Err()
		return a, cmd

	case messages.CollectionsLoaded, messages.CollectionDeleted:
		a.collectionsView, cmd = a.collectionsView.Update(msg)
		return a, cmd

	case messages.ErrorOccurred:
		a.err = msg.Err
		if a.currentView == messages.ViewAsk {
			a.askView, cmd = a.askView.Update(msg)
		}
		return a, cmd

	case messages.Quit:
		return a, tea.Quit
	}

	return a.forward(msg)
}

// forward passes a message to the active view.
func (a *App) forward(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.currentView {
	case messages.ViewMenu:
		a.menuView, cmd = a.menuView.Update(msg)
	case messages.ViewAsk:
		a.askView, cmd = a.askView.Update(msg)
	case messages.ViewCollections:
		a.collectionsView, cmd = a.collectionsView.Update(msg)
	}
	return a, cmd
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	switch a.currentView {
	case messages.ViewAsk:
		return a.askView.View()
	case messages.ViewCollections:
		return a.collectionsView.View()
	case messages.ViewMenu:
		return a.menuView.View()
	default:
		return a.menuView.View()
	}
}

// Run starts the TUI application.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx))
	_, err := p.Run()
	return err
}

// SelectCollection sets the collection questions are asked against.
func (a *App) SelectCollection(name string) {
	a.askView.SetCollection(name)
}

// CurrentView returns the current view type.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// Collection returns the collection questions are asked against.
func (a *App) Collection() string {
	return a.askView.Collection()
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has been initialised.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sets the terminal dimensions on every view.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.menuView.SetDimensions(width, height)
	a.askView.SetDimensions(width, height)
	a.collectionsView.SetDimensions(width, height)
}
