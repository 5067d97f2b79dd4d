// Package domain defines the core business entities for pagelens.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Collection: A named set of page images and their embedding vectors
//   - ItemRef: The stored path of one ingested page or image
//   - Query: A question addressed to one collection
//   - RetrievalResult: Ranked items for a query
//   - QueryResult: The answer record returned to callers
//   - PerformanceMetrics: Process-wide query and ingestion counters
//   - ProviderAvailability: Which external providers are live
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
