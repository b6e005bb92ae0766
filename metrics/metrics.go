package metrics

import (
	"context"
	"time"
)

// Metrics represents the current state of the resumption gateway.
type Metrics struct {
	// PendingWaits maps kind to the number of live pending waits
	PendingWaits map[string]int64 `json:"pending_waits"`

	// OutcomeCounts maps outcome name to the cumulative count of
	// waits that ended that way (plus unmatched webhook arrivals)
	OutcomeCounts map[string]int64 `json:"outcome_counts"`

	// Timestamp when metrics were collected
	Timestamp time.Time `json:"timestamp"`
}

// Collector defines the interface for collecting metrics from the
// resumption gateway.
type Collector interface {
	// Collect gathers current metrics from the system
	Collect(ctx context.Context) (Metrics, error)

	// GetPendingWaits returns the number of live pending waits per kind
	GetPendingWaits(ctx context.Context) (map[string]int64, error)

	// GetOutcomeCounts returns cumulative wait outcomes by name
	GetOutcomeCounts(ctx context.Context) (map[string]int64, error)
}
