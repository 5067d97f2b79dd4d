package memory

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pagelens/internal/core/domain"
)

func TestCollectionStore_PutGet(t *testing.T) {
	store := NewCollectionStore()

	_, ok := store.Get("docs")
	assert.False(t, ok)

	col := &domain.Collection{Name: "docs", Items: []domain.ItemRef{"a.png"}}
	assert.Nil(t, store.Put(col))

	got, ok := store.Get("docs")
	require.True(t, ok)
	assert.Same(t, col, got)
	assert.Equal(t, 1, store.Len())
}

func TestCollectionStore_PutReplaces(t *testing.T) {
	store := NewCollectionStore()
	first := &domain.Collection{Name: "docs", Items: []domain.ItemRef{"a.png", "b.png"}}
	second := &domain.Collection{Name: "docs", Items: []domain.ItemRef{"c.png"}}

	store.Put(first)
	held, _ := store.Get("docs")
	assert.Same(t, first, store.Put(second))

	got, _ := store.Get("docs")
	assert.Same(t, second, got)
	assert.Equal(t, 1, store.Len())
	assert.Len(t, held.Items, 2, "earlier readers keep their version")
}

func TestCollectionStore_Delete(t *testing.T) {
	store := NewCollectionStore()
	col := &domain.Collection{Name: "docs"}
	store.Put(col)

	removed, ok := store.Delete("docs")
	assert.True(t, ok)
	assert.Same(t, col, removed)
	_, ok = store.Delete("docs")
	assert.False(t, ok)
	removed, ok = store.Delete("never-existed")
	assert.False(t, ok)
	assert.Nil(t, removed)
	assert.Equal(t, 0, store.Len())
}

func TestCollectionStore_ListSorted(t *testing.T) {
	store := NewCollectionStore()
	for _, name := range []string{"zeta", "alpha", "mid"} {
		store.Put(&domain.Collection{Name: name})
	}

	list := store.List()
	require.Len(t, list, 3)
	assert.Equal(t, "alpha", list[0].Name)
	assert.Equal(t, "mid", list[1].Name)
	assert.Equal(t, "zeta", list[2].Name)
}

func TestCollectionStore_Concurrent(t *testing.T) {
	store := NewCollectionStore()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			store.Put(&domain.Collection{Name: fmt.Sprintf("c%d", i%5)})
		}(i)
		go func() {
			defer wg.Done()
			_ = store.List()
			_, _ = store.Get("c1")
		}()
	}
	wg.Wait()
	assert.Equal(t, 5, store.Len())
}
