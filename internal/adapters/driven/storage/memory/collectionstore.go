package memory

import (
	"sort"
	"sync"

	"github.com/custodia-labs/pagelens/internal/core/domain"
	"github.com/custodia-labs/pagelens/internal/core/ports/driven"
)

// Ensure CollectionStore implements the interface.
var _ driven.CollectionStore = (*CollectionStore)(nil)

// CollectionStore is an in-memory implementation of driven.CollectionStore.
// Values are swapped whole under the lock; readers keep whatever version
// they already hold.
type CollectionStore struct {
	mu          sync.RWMutex
	collections map[string]*domain.Collection
}

// NewCollectionStore creates a new in-memory collection store.
func NewCollectionStore() *CollectionStore {
	return &CollectionStore{
		collections: make(map[string]*domain.Collection),
	}
}

// Get returns the collection registered under name.
func (s *CollectionStore) Get(name string) (*domain.Collection, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	col, ok := s.collections[name]
	return col, ok
}

// Put registers col under col.Name and returns the replaced value.
func (s *CollectionStore) Put(col *domain.Collection) *domain.Collection {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.collections[col.Name]
	s.collections[col.Name] = col
	return prev
}

// Delete removes the named collection.
func (s *CollectionStore) Delete(name string) (*domain.Collection, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	col, ok := s.collections[name]
	if !ok {
		return nil, false
	}
	delete(s.collections, name)
	return col, true
}

// List returns all collections ordered by name.
func (s *CollectionStore) List() []*domain.Collection {
	s.mu.RLock()
	out := make([]*domain.Collection, 0, len(s.collections))
	for _, col := range s.collections {
		out = append(out, col)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].Name < out[j].Name
	})
	return out
}

// Len returns the number of registered collections.
func (s *CollectionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.collections)
}
