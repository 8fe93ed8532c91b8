package dto

import "time"

// SweepResult reports one retention sweep.
type SweepResult struct {
	DeletedCount int64     `json:"deleted_count"`
	Cutoff       time.Time `json:"cutoff"`
}

// SweepStats reports what a sweep would delete, without deleting.
type SweepStats struct {
	EligibleCount int64     `json:"eligible_count"`
	Cutoff        time.Time `json:"cutoff"`
}
