package services

import (
	"github.com/custodia-labs/pagelens/internal/core/domain"
	"github.com/custodia-labs/pagelens/internal/core/ports/driven"
)

// CollectionRegistry resolves collection names to indexed collections.
// It owns the stored files of every registered version: a version that is
// replaced or deleted has its directory removed once no query reads it.
type CollectionRegistry struct {
	store    driven.CollectionStore
	versions *fileVersions
}

// NewCollectionRegistry wraps a collection store.
func NewCollectionRegistry(store driven.CollectionStore) *CollectionRegistry {
	return &CollectionRegistry{
		store:    store,
		versions: newFileVersions(),
	}
}

// Register swaps col in under its name, replacing any previous version.
func (r *CollectionRegistry) Register(col *domain.Collection) error {
	if err := col.Validate(); err != nil {
		return err
	}
	if prev := r.store.Put(col); prev != nil && prev.Dir != col.Dir {
		r.versions.retire(prev.Dir)
	}
	return nil
}

// Acquire looks up the named collection and keeps its stored files on disk
// until the returned release func is called, even if the collection is
// replaced or deleted meanwhile. The release func is never nil.
func (r *CollectionRegistry) Acquire(name string) (*domain.Collection, func(), error) {
	for {
		col, err := r.Lookup(name)
		if err != nil {
			return nil, func() {}, err
		}
		if r.versions.acquire(col.Dir) {
			return col, func() { r.versions.release(col.Dir) }, nil
		}
		// Retired between the lookup and the acquire; a newer version is
		// already registered or the name is gone.
	}
}

// Lookup returns the named collection or a NotFoundError.
func (r *CollectionRegistry) Lookup(name string) (*domain.Collection, error) {
	col, ok := r.store.Get(name)
	if !ok {
		return nil, &domain.NotFoundError{Collection: name, Reason: domain.CollectionMissing}
	}
	return col, nil
}

// Resolve returns the named collection, or the first one by name when it is
// absent. It fails when no collection is registered at all.
func (r *CollectionRegistry) Resolve(name string) (*domain.Collection, error) {
	if col, ok := r.store.Get(name); ok {
		return col, nil
	}
	all := r.store.List()
	if len(all) == 0 {
		return nil, errNoCollections
	}
	return all[0], nil
}

// Summaries lists every collection ordered by name.
func (r *CollectionRegistry) Summaries() []domain.CollectionSummary {
	all := r.store.List()
	out := make([]domain.CollectionSummary, len(all))
	for i, col := range all {
		out[i] = col.Summary()
	}
	return out
}

// Delete removes the named collection. It reports whether it existed.
func (r *CollectionRegistry) Delete(name string) bool {
	col, ok := r.store.Delete(name)
	if ok {
		r.versions.retire(col.Dir)
	}
	return ok
}

// Len returns the number of registered collections.
func (r *CollectionRegistry) Len() int {
	return r.store.Len()
}
