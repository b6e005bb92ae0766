package registry

import (
	"context"
	"fmt"
	"sync"
	"time"
)

/* Journal records the lifecycle of pending waits for operators:
 * which correlation ids are waiting, and how each wait ended. The
 * registry treats it as write-only audit, never as the source of
 * truth for dispatch.
 */

// Outcome represents how a pending wait ended.
type Outcome int

const (
	Resolved Outcome = iota + 1
	TimedOut
	Cancelled
	// Unmatched marks a webhook that arrived with no pending wait;
	// there was never an entry, only the discrepancy is recorded
	Unmatched
)

// String returns the string representation of the outcome.
func (o Outcome) String() string {
	switch o {
	case Resolved:
		return "resolved"
	case TimedOut:
		return "timed_out"
	case Cancelled:
		return "cancelled"
	case Unmatched:
		return "unmatched"
	default:
		return "unknown"
	}
}

// NewOutcome creates an Outcome from a string.
func NewOutcome(s string) Outcome {
	switch s {
	case "resolved":
		return Resolved
	case "timed_out":
		return TimedOut
	case "cancelled":
		return Cancelled
	case "unmatched":
		return Unmatched
	default:
		return 0
	}
}

// Validate checks if the outcome is valid.
func (o Outcome) Validate() error {
	if o < Resolved || o > Unmatched {
		return fmt.Errorf("invalid outcome: %d", o)
	}
	return nil
}

// PendingEntry describes a registered wait.
type PendingEntry struct {
	WaiterID      string
	Kind          string
	CorrelationID string
	CreatedAt     time.Time
	Deadline      time.Time
}

// OutcomeEntry describes a terminal transition of a wait, or an
// unmatched webhook arrival.
type OutcomeEntry struct {
	ID            string
	WaiterID      string
	Kind          string
	CorrelationID string
	Outcome       Outcome
	At            time.Time
}

// Journal persists wait lifecycle records.
type Journal interface {
	/* RecordPending is called after the wait is registered; a failure
	 * unregisters the wait, so a recorded wait is always observable
	 */
	RecordPending(ctx context.Context, e PendingEntry) error
	RecordOutcome(ctx context.Context, e OutcomeEntry) error
	Close(ctx context.Context) error
}

/* MemoryJournal is an in-process Journal used in tests and when no
 * redis is configured.
 */
type MemoryJournal struct {
	mu       sync.Mutex
	pending  []PendingEntry
	outcomes []OutcomeEntry
}

// NewMemoryJournal creates an empty in-memory journal.
func NewMemoryJournal() *MemoryJournal {
	return &MemoryJournal{}
}

func (j *MemoryJournal) RecordPending(_ context.Context, e PendingEntry) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.pending = append(j.pending, e)
	return nil
}

func (j *MemoryJournal) RecordOutcome(_ context.Context, e OutcomeEntry) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.outcomes = append(j.outcomes, e)
	return nil
}

func (j *MemoryJournal) Close(_ context.Context) error {
	return nil
}

// Pending returns a copy of the recorded pending entries.
func (j *MemoryJournal) Pending() []PendingEntry {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := make([]PendingEntry, len(j.pending))
	copy(out, j.pending)
	return out
}

// Outcomes returns a copy of the recorded outcome entries.
func (j *MemoryJournal) Outcomes() []OutcomeEntry {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := make([]OutcomeEntry, len(j.outcomes))
	copy(out, j.outcomes)
	return out
}
