package driven

import "github.com/custodia-labs/pagelens/internal/core/domain"

// CollectionStore holds the name to collection mapping.
// Implementations must be safe for concurrent use. Collections are replaced
// as whole values; callers never mutate a stored *domain.Collection.
type CollectionStore interface {
	// Get returns the collection registered under name, or nil and false.
	Get(name string) (*domain.Collection, bool)

	// Put registers col under col.Name and returns the value it replaced,
	// or nil when the name was free.
	Put(col *domain.Collection) *domain.Collection

	// Delete removes the named collection and returns it. It reports
	// whether it existed.
	Delete(name string) (*domain.Collection, bool)

	// List returns all collections ordered by name.
	List() []*domain.Collection

	// Len returns the number of registered collections.
	Len() int
}
