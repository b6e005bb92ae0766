//go:build integration

package redisjournal_test

import (
	"context"
	"testing"
	"time"

	"github.com/marcelsud/webhook-resume/registry/redisjournal"
	"github.com/marcelsud/webhook-resume/webhook"
	"github.com/stretchr/testify/require"
	testcontainersredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

/* Test Helpers for Redis Integration Tests
 * Following the pattern from: https://eltonminetto.dev/post/2024-02-15-using-test-helpers/
 */

// RedisContainer holds the Redis testcontainer and connection details
type RedisContainer struct {
	Container *testcontainersredis.RedisContainer
	Addr      string
}

// SetupRedisContainer creates and starts a Redis testcontainer
func SetupRedisContainer(t *testing.T, ctx context.Context) (*RedisContainer, func()) {
	t.Helper()

	redisContainer, err := testcontainersredis.Run(ctx,
		"redis:7-alpine",
		testcontainersredis.WithSnapshotting(10, 1),
		testcontainersredis.WithLogLevel(testcontainersredis.LogLevelVerbose),
	)
	require.NoError(t, err, "failed to start Redis container")

	addr, err := redisContainer.ConnectionString(ctx)
	require.NoError(t, err, "failed to get Redis connection string")

	// Remove redis:// prefix if present
	if len(addr) > 8 && addr[:8] == "redis://" {
		addr = addr[8:]
	}

	// Wait for Redis to be ready
	time.Sleep(1 * time.Second)

	rc := &RedisContainer{
		Container: redisContainer,
		Addr:      addr,
	}

	cleanup := func() {
		if err := redisContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate Redis container: %v", err)
		}
	}

	return rc, cleanup
}

// CreateTestJournal creates a Redis journal connected to the test container
func CreateTestJournal(t *testing.T, addr string) *redisjournal.Journal {
	t.Helper()

	journal, err := redisjournal.NewJournal(addr, "", 0, time.Hour)
	require.NoError(t, err, "failed to create Redis journal")

	return journal
}

// resolvedFixture builds a resolved event for registry round-trips
func resolvedFixture(kind, id string) webhook.Resolved {
	return webhook.Resolved{
		Kind:          kind,
		CorrelationID: id,
		Fields:        webhook.Payload{"confirmed": true},
		ReceivedAt:    time.Now(),
	}
}
