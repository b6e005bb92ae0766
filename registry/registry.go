package registry

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/marcelsud/webhook-resume/webhook"
)

/* Suspension Registry: the process-wide map from correlation id to a
 * suspended workflow continuation. Entries are created by Suspend and
 * removed by exactly one of Resolve, Cancel, or expiry. The map is the
 * only shared mutable state in the gateway; every mutation takes the
 * registry lock, so for a given id the loser of a resolve/expiry race
 * observes "already gone" instead of double-delivering.
 */

var (
	// ErrAlreadyPending is returned by Suspend when the correlation id
	// already has a live continuation. A duplicate suspend is a
	// workflow-definition fault, never silently overwritten.
	ErrAlreadyPending = errors.New("correlation id already has a pending wait")

	// ErrTimeout is delivered to a waiter whose entry expired before a
	// matching webhook arrived.
	ErrTimeout = errors.New("wait expired before a matching webhook arrived")

	// ErrCancelled is delivered to a waiter whose entry was removed by
	// an explicit cancellation.
	ErrCancelled = errors.New("wait cancelled")
)

// result is what an entry's waiter eventually receives.
type result struct {
	event webhook.Resolved
	err   error
}

type entry struct {
	waiterID      string
	kind          string
	correlationID string
	deadline      time.Time
	// buffered so delivery never blocks the resolving call
	ch chan result
}

// Waiter is the handle a suspending caller waits on. At most one
// result is ever delivered to it.
type Waiter struct {
	// ID uniquely identifies this suspension for journaling
	ID string

	// Kind and CorrelationID echo the Suspend arguments
	Kind          string
	CorrelationID string

	ch <-chan result
}

// Wait blocks until the matching webhook resolves the wait, the entry
// expires or is cancelled, or ctx is done. Callers whose context ends
// first should Cancel the correlation id so a late webhook is treated
// as unmatched rather than resuming a dead instance.
func (w *Waiter) Wait(ctx context.Context) (webhook.Resolved, error) {
	select {
	case res := <-w.ch:
		return res.event, res.err
	case <-ctx.Done():
		return webhook.Resolved{}, ctx.Err()
	}
}

// Registry owns the pending waits. Construct with New at process start
// and inject it where needed; it is safe for concurrent use.
type Registry struct {
	mu      sync.Mutex
	entries map[string]*entry
	journal Journal

	resolved  atomic.Int64
	timedOut  atomic.Int64
	cancelled atomic.Int64
	unmatched atomic.Int64
}

// New creates a registry journaling to the given Journal. A nil
// journal disables journaling.
func New(journal Journal) *Registry {
	return &Registry{
		entries: make(map[string]*entry),
		journal: journal,
	}
}

// Suspend registers a pending wait for id expiring after ttl and
// returns the handle to wait on. Fails with ErrAlreadyPending when id
// already has a live continuation.
func (r *Registry) Suspend(ctx context.Context, kind, id string, ttl time.Duration) (*Waiter, error) {
	if id == "" {
		return nil, fmt.Errorf("correlation id cannot be empty")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("ttl must be positive (got %s)", ttl)
	}

	e := &entry{
		waiterID:      uuid.New().String(),
		kind:          kind,
		correlationID: id,
		deadline:      time.Now().Add(ttl),
		ch:            make(chan result, 1),
	}

	r.mu.Lock()
	if _, exists := r.entries[id]; exists {
		r.mu.Unlock()
		return nil, fmt.Errorf("suspending %s: %w", id, ErrAlreadyPending)
	}
	r.entries[id] = e
	r.mu.Unlock()

	if r.journal != nil {
		pending := PendingEntry{
			WaiterID:      e.waiterID,
			Kind:          kind,
			CorrelationID: id,
			CreatedAt:     time.Now(),
			Deadline:      e.deadline,
		}
		if err := r.journal.RecordPending(ctx, pending); err != nil {
			// Undo, the wait is not durably recorded
			r.remove(id, e)
			return nil, fmt.Errorf("journaling pending wait: %w", err)
		}
	}

	return &Waiter{
		ID:            e.waiterID,
		Kind:          kind,
		CorrelationID: id,
		ch:            e.ch,
	}, nil
}

// Resolve delivers event to the continuation pending on id and removes
// the entry. It reports whether a pending wait matched; an unmatched
// or repeated resolve is not an error, the event is dropped and the
// outcome journaled.
func (r *Registry) Resolve(ctx context.Context, id string, event webhook.Resolved) bool {
	e := r.claim(id)
	if e == nil {
		r.unmatched.Add(1)
		r.recordOutcome(ctx, "", event.Kind, id, Unmatched)
		return false
	}

	e.ch <- result{event: event}
	r.resolved.Add(1)
	r.recordOutcome(ctx, e.waiterID, e.kind, id, Resolved)
	return true
}

// Cancel removes the pending wait for id, releasing its waiter with
// ErrCancelled. It reports whether a wait was live.
func (r *Registry) Cancel(ctx context.Context, id string) bool {
	e := r.claim(id)
	if e == nil {
		return false
	}

	e.ch <- result{err: ErrCancelled}
	r.cancelled.Add(1)
	r.recordOutcome(ctx, e.waiterID, e.kind, id, Cancelled)
	return true
}

// SweepExpired evicts every entry whose deadline is at or before now,
// releasing each waiter with ErrTimeout. Returns the number evicted.
func (r *Registry) SweepExpired(ctx context.Context, now time.Time) int {
	r.mu.Lock()
	var expired []*entry
	for id, e := range r.entries {
		if !e.deadline.After(now) {
			delete(r.entries, id)
			expired = append(expired, e)
		}
	}
	r.mu.Unlock()

	for _, e := range expired {
		e.ch <- result{err: ErrTimeout}
		r.timedOut.Add(1)
		r.recordOutcome(ctx, e.waiterID, e.kind, e.correlationID, TimedOut)
	}

	return len(expired)
}

// Run sweeps expired entries every interval until ctx is done.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			r.SweepExpired(ctx, now)
		}
	}
}

// Len returns the number of pending waits.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Stats is a point-in-time snapshot of registry state, consumed by the
// metrics collector.
type Stats struct {
	PendingByKind map[string]int64
	Resolved      int64
	TimedOut      int64
	Cancelled     int64
	Unmatched     int64
}

// Stats snapshots the pending waits per kind and the cumulative
// outcome counters.
func (r *Registry) Stats() Stats {
	r.mu.Lock()
	pending := make(map[string]int64, len(r.entries))
	for _, e := range r.entries {
		pending[e.kind]++
	}
	r.mu.Unlock()

	return Stats{
		PendingByKind: pending,
		Resolved:      r.resolved.Load(),
		TimedOut:      r.timedOut.Load(),
		Cancelled:     r.cancelled.Load(),
		Unmatched:     r.unmatched.Load(),
	}
}

/* claim atomically removes and returns the entry for id, or nil when
 * no entry is live. All terminal transitions (resolve, cancel, expiry)
 * go through a single compare-and-remove so exactly one of them wins.
 */
func (r *Registry) claim(id string) *entry {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[id]
	if !ok {
		return nil
	}
	delete(r.entries, id)
	return e
}

// remove deletes id only if it still maps to e (undo path of Suspend).
func (r *Registry) remove(id string, e *entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cur, ok := r.entries[id]; ok && cur == e {
		delete(r.entries, id)
	}
}

// recordOutcome journals a terminal transition best-effort. Outcome
// journaling must never fail the dispatch path.
func (r *Registry) recordOutcome(ctx context.Context, waiterID, kind, id string, outcome Outcome) {
	if r.journal == nil {
		return
	}
	_ = r.journal.RecordOutcome(ctx, OutcomeEntry{
		ID:            uuid.New().String(),
		WaiterID:      waiterID,
		Kind:          kind,
		CorrelationID: id,
		Outcome:       outcome,
		At:            time.Now(),
	})
}
