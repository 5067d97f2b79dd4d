package domain

// PerformanceMetrics holds process-wide counters.
type PerformanceMetrics struct {
	TotalQueries   int     `json:"total_queries"`
	CacheHits      int     `json:"cache_hits"`
	AvgQueryTime   float64 `json:"avg_query_time"`
	TotalDocuments int     `json:"total_documents"`
}

// CacheHitRate returns cache hits as a percentage of all queries.
func (m PerformanceMetrics) CacheHitRate() float64 {
	total := m.TotalQueries
	if total < 1 {
		total = 1
	}
	return float64(m.CacheHits) / float64(total) * 100
}
