// Package tui provides an interactive terminal user interface for pagelens.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/pagelens/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the TUI.
// This provides a single injection point for dependency injection.
type Ports struct {
	// RAG answers questions.
	RAG driving.RAGService

	// Collections lists and deletes indexed collections.
	Collections driving.CollectionService

	// Stats reports provider availability for the menu header. Optional.
	Stats driving.StatsService
}

// NewPorts creates a new Ports aggregate with the given services.
func NewPorts(rag driving.RAGService, collections driving.CollectionService) *Ports {
	return &Ports{
		RAG:         rag,
		Collections: collections,
	}
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.RAG == nil {
		return ErrMissingRAGService
	}
	if p.Collections == nil {
		return ErrMissingCollectionService
	}
	return nil
}
