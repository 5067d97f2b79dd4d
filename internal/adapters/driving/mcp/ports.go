package mcp

import (
	"github.com/custodia-labs/pagelens/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// RAG answers questions.
	RAG driving.RAGService

	// Collections lists registered collections.
	Collections driving.CollectionService

	// Stats reports counters and provider availability.
	Stats driving.StatsService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.RAG == nil {
		return ErrMissingRAGService
	}
	// Collections and Stats are optional
	return nil
}
