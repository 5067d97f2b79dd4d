// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/pagelens/internal/core/domain"
)

// QuestionSubmitted is sent when the user asks a question.
type QuestionSubmitted struct {
	Query domain.Query
}

// AnswerReceived carries the result of a query back to the model.
type AnswerReceived struct {
	Result *domain.QueryResult
	Err    error
}

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewMenu is the main navigation menu.
	ViewMenu ViewType = iota
	// ViewAsk is the question input and answer view.
	ViewAsk
	// ViewCollections lists indexed collections.
	ViewCollections
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewMenu:
		return "menu"
	case ViewAsk:
		return "ask"
	case ViewCollections:
		return "collections"
	default:
		return "unknown"
	}
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}

// CollectionsLoaded carries the collection listing.
type CollectionsLoaded struct {
	Collections []domain.CollectionSummary
}

// CollectionSelected makes the named collection the target of later questions.
type CollectionSelected struct {
	Name string
}

// CollectionDeleted reports the outcome of a delete.
type CollectionDeleted struct {
	Name    string
	Deleted bool
}
