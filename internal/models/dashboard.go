package models

import "time"

// BranchStats aggregates one branch for the admin dashboard.
type BranchStats struct {
	Branch       string `json:"branch"`
	StudentCount int    `json:"student_count"`
	RegularCount int    `json:"regular_count"`
	LateralCount int    `json:"lateral_count"`
	FeeCompleted int    `json:"fee_completed"`
	FeePending   int    `json:"fee_pending"`
	SFC          bool   `json:"sfc"`
}

// SystemMetrics is a lightweight runtime snapshot for the admin dashboard.
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

// DashboardOverview is the cached admin landing view.
type DashboardOverview struct {
	TotalStudents      int           `json:"total_students"`
	UnparseableRolls   int           `json:"unparseable_rolls"`
	Branches           []BranchStats `json:"branches"`
	AcademicYearLabels []string      `json:"academic_year_labels"`
	GeneratedAt        time.Time     `json:"generated_at"`
}
