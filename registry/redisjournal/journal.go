package redisjournal

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/marcelsud/webhook-resume/registry"
	"github.com/redis/go-redis/v9"
)

/* Redis implementation of registry.Journal
 * Uses Redis Hashes for pending-wait records and a Redis Stream for
 * the outcome history, so operators can see abandoned sessions across
 * process restarts
 */

const (
	hashPrefix    = "wait"            // Hash naming: wait:{correlation_id}
	outcomeStream = "resume:outcomes" // Stream of terminal transitions
)

type Journal struct {
	client    *redis.Client
	recordTTL time.Duration
}

// NewJournal creates a new Redis journal. recordTTL bounds how long a
// pending record outlives its wait when the process dies before
// recording an outcome.
func NewJournal(addr, password string, db int, recordTTL time.Duration) (*Journal, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connecting to Redis: %w", err)
	}

	return &Journal{
		client:    client,
		recordTTL: recordTTL,
	}, nil
}

// RecordPending stores the pending-wait record with a TTL
func (j *Journal) RecordPending(ctx context.Context, e registry.PendingEntry) error {
	hashKey := fmt.Sprintf("%s:%s", hashPrefix, e.CorrelationID)

	err := j.client.HSet(ctx, hashKey, map[string]interface{}{
		"waiter_id":      e.WaiterID,
		"kind":           e.Kind,
		"correlation_id": e.CorrelationID,
		"created_at":     e.CreatedAt.Unix(),
		"deadline":       e.Deadline.Unix(),
	}).Err()
	if err != nil {
		return fmt.Errorf("storing pending wait: %w", err)
	}

	if err := j.client.Expire(ctx, hashKey, j.recordTTL).Err(); err != nil {
		return fmt.Errorf("setting pending wait TTL: %w", err)
	}

	return nil
}

// RecordOutcome appends the terminal transition to the outcome stream
// and removes the pending record
func (j *Journal) RecordOutcome(ctx context.Context, e registry.OutcomeEntry) error {
	_, err := j.client.XAdd(ctx, &redis.XAddArgs{
		Stream: outcomeStream,
		Values: map[string]interface{}{
			"id":             e.ID,
			"waiter_id":      e.WaiterID,
			"kind":           e.Kind,
			"correlation_id": e.CorrelationID,
			"outcome":        e.Outcome.String(),
			"at":             e.At.Unix(),
		},
	}).Result()
	if err != nil {
		return fmt.Errorf("appending outcome: %w", err)
	}

	// Unmatched webhooks never had a pending record
	if e.WaiterID != "" {
		hashKey := fmt.Sprintf("%s:%s", hashPrefix, e.CorrelationID)
		if err := j.client.Del(ctx, hashKey).Err(); err != nil {
			return fmt.Errorf("removing pending wait: %w", err)
		}
	}

	return nil
}

// GetPending retrieves the pending-wait record for a correlation id
func (j *Journal) GetPending(ctx context.Context, correlationID string) (registry.PendingEntry, error) {
	hashKey := fmt.Sprintf("%s:%s", hashPrefix, correlationID)

	data, err := j.client.HGetAll(ctx, hashKey).Result()
	if err != nil {
		return registry.PendingEntry{}, fmt.Errorf("getting pending wait: %w", err)
	}
	if len(data) == 0 {
		return registry.PendingEntry{}, fmt.Errorf("pending wait not found: %s", correlationID)
	}

	return registry.PendingEntry{
		WaiterID:      data["waiter_id"],
		Kind:          data["kind"],
		CorrelationID: data["correlation_id"],
		CreatedAt:     time.Unix(parseInt64(data["created_at"]), 0),
		Deadline:      time.Unix(parseInt64(data["deadline"]), 0),
	}, nil
}

// ListPending scans all pending-wait records
func (j *Journal) ListPending(ctx context.Context) ([]registry.PendingEntry, error) {
	pattern := fmt.Sprintf("%s:*", hashPrefix)
	var entries []registry.PendingEntry

	var cursor uint64
	for {
		keys, nextCursor, err := j.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return nil, fmt.Errorf("scanning pending waits: %w", err)
		}

		for _, key := range keys {
			data, err := j.client.HGetAll(ctx, key).Result()
			if err != nil || len(data) == 0 {
				// Expired between scan and read
				continue
			}
			entries = append(entries, registry.PendingEntry{
				WaiterID:      data["waiter_id"],
				Kind:          data["kind"],
				CorrelationID: data["correlation_id"],
				CreatedAt:     time.Unix(parseInt64(data["created_at"]), 0),
				Deadline:      time.Unix(parseInt64(data["deadline"]), 0),
			})
		}

		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}

	return entries, nil
}

// Close closes the Redis connection
func (j *Journal) Close(_ context.Context) error {
	return j.client.Close()
}

func parseInt64(s string) int64 {
	v, _ := strconv.ParseInt(s, 10, 64)
	return v
}
