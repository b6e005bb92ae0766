package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/marcelsud/webhook-resume/registry"
	"github.com/marcelsud/webhook-resume/webhook"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryCollector(t *testing.T) {
	ctx := context.Background()

	t.Run("creates collector successfully", func(t *testing.T) {
		collector := NewRegistryCollector(registry.New(nil))

		assert.NotNil(t, collector)
		assert.NotNil(t, collector.registry)
	})

	t.Run("pending waits grouped by kind", func(t *testing.T) {
		reg := registry.New(nil)
		collector := NewRegistryCollector(reg)

		_, err := reg.Suspend(ctx, "slack", "a", time.Minute)
		require.NoError(t, err)
		_, err = reg.Suspend(ctx, "slack", "b", time.Minute)
		require.NoError(t, err)

		pending, err := collector.GetPendingWaits(ctx)
		require.NoError(t, err)
		assert.EqualValues(t, 2, pending["slack"])
	})

	t.Run("collect snapshots outcomes and timestamp", func(t *testing.T) {
		reg := registry.New(nil)
		collector := NewRegistryCollector(reg)

		_, err := reg.Suspend(ctx, "slack", "a", time.Minute)
		require.NoError(t, err)
		reg.Resolve(ctx, "a", webhook.Resolved{Kind: "slack", CorrelationID: "a"})
		reg.Resolve(ctx, "ghost", webhook.Resolved{Kind: "slack", CorrelationID: "ghost"})

		m, err := collector.Collect(ctx)
		require.NoError(t, err)
		assert.EqualValues(t, 1, m.OutcomeCounts["resolved"])
		assert.EqualValues(t, 1, m.OutcomeCounts["unmatched"])
		assert.EqualValues(t, 0, m.OutcomeCounts["timed_out"])
		assert.False(t, m.Timestamp.IsZero())
	})
}

func TestMetrics_Struct(t *testing.T) {
	t.Run("metrics struct has all required fields", func(t *testing.T) {
		m := Metrics{
			PendingWaits: map[string]int64{
				"slack":            3,
				"mercury-receipts": 1,
			},
			OutcomeCounts: map[string]int64{
				"resolved":  100,
				"timed_out": 5,
				"unmatched": 2,
			},
			Timestamp: time.Now(),
		}

		assert.NotNil(t, m.PendingWaits)
		assert.NotNil(t, m.OutcomeCounts)
		assert.Equal(t, int64(3), m.PendingWaits["slack"])
	})
}
