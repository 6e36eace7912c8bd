package models

import "time"

// DashboardCounts summarizes pending work for one building scope.
type DashboardCounts struct {
	Building      string `json:"building"`
	PendingEarned int    `json:"pending_earned"`
	PendingUsed   int    `json:"pending_used"`
}

// SystemMetrics is a lightweight aggregated metrics snapshot.
type SystemMetrics struct {
	CacheHitRatio            float64   `json:"cache_hit_ratio"`
	CacheHits                uint64    `json:"cache_hits"`
	CacheMisses              uint64    `json:"cache_misses"`
	RequestsTotal            uint64    `json:"requests_total"`
	AverageRequestDurationMs float64   `json:"average_request_duration_ms"`
	DBQueryCount             uint64    `json:"db_query_count"`
	AverageDBQueryDurationMs float64   `json:"average_db_query_duration_ms"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generated_at"`
}
