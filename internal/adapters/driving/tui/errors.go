package tui

import "errors"

// ErrMissingRAGService is returned when the RAG service is not provided.
var ErrMissingRAGService = errors.New("tui: rag service is required")

// ErrMissingCollectionService is returned when the collection service is not provided.
var ErrMissingCollectionService = errors.New("tui: collection service is required")

// ErrInvalidPorts is returned when ports validation fails.
var ErrInvalidPorts = errors.New("tui: invalid ports configuration")
