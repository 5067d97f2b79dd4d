package domain

// ScoredItem is one retrieved item with its similarity to the query.
type ScoredItem struct {
	// Item is the stored page reference.
	Item ItemRef

	// Index is the item's position in the collection.
	Index int

	// Score is the inner product of the query and item vectors.
	Score float64
}

// RetrievalResult holds items ordered by descending score.
// Equal scores are ordered by ascending Index.
type RetrievalResult struct {
	Items []ScoredItem
}

// Len returns the number of retrieved items.
func (r RetrievalResult) Len() int {
	return len(r.Items)
}

// Best returns the highest-scoring item. ok is false for an empty result.
func (r RetrievalResult) Best() (ScoredItem, bool) {
	if len(r.Items) == 0 {
		return ScoredItem{}, false
	}
	return r.Items[0], true
}

// Context returns up to limit items after the best one.
func (r RetrievalResult) Context(limit int) []ScoredItem {
	if len(r.Items) <= 1 || limit <= 0 {
		return nil
	}
	rest := r.Items[1:]
	if len(rest) > limit {
		rest = rest[:limit]
	}
	return rest
}
