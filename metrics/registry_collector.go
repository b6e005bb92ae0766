package metrics

import (
	"context"
	"time"

	"github.com/marcelsud/webhook-resume/registry"
)

// RegistryCollector implements the Collector interface over the
// in-process suspension registry
type RegistryCollector struct {
	registry *registry.Registry
}

// NewRegistryCollector creates a new registry metrics collector
func NewRegistryCollector(reg *registry.Registry) *RegistryCollector {
	return &RegistryCollector{
		registry: reg,
	}
}

// Collect gathers all metrics from the registry
func (c *RegistryCollector) Collect(ctx context.Context) (Metrics, error) {
	pending, err := c.GetPendingWaits(ctx)
	if err != nil {
		return Metrics{}, err
	}

	outcomes, err := c.GetOutcomeCounts(ctx)
	if err != nil {
		return Metrics{}, err
	}

	return Metrics{
		PendingWaits:  pending,
		OutcomeCounts: outcomes,
		Timestamp:     time.Now(),
	}, nil
}

// GetPendingWaits returns the number of live pending waits per kind
func (c *RegistryCollector) GetPendingWaits(_ context.Context) (map[string]int64, error) {
	return c.registry.Stats().PendingByKind, nil
}

// GetOutcomeCounts returns cumulative wait outcomes by name
func (c *RegistryCollector) GetOutcomeCounts(_ context.Context) (map[string]int64, error) {
	stats := c.registry.Stats()
	return map[string]int64{
		registry.Resolved.String():  stats.Resolved,
		registry.TimedOut.String():  stats.TimedOut,
		registry.Cancelled.String(): stats.Cancelled,
		registry.Unmatched.String(): stats.Unmatched,
	}, nil
}
