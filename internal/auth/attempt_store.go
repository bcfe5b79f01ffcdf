package auth

import (
	"context"
	"sync"
	"time"

	"github.com/BradenHooton/dancingpony/internal/models"
)

// AttemptStore holds failed-login records keyed by identity.
//
// Update runs fn with exclusive access to the identity's record; fn receives
// the current record (nil when none exists) and returns the record to keep.
// Returning nil deletes the record, returning current unchanged writes
// nothing. The store persists the returned record before handing fn's error
// back to the caller, so a failure outcome and its bookkeeping stay coupled.
type AttemptStore interface {
	Update(ctx context.Context, identity string, fn func(current *models.AttemptRecord) (*models.AttemptRecord, error)) error
	Get(ctx context.Context, identity string) (*models.AttemptRecord, error)
	DeleteExpired(ctx context.Context, threshold int, cutoff time.Time) (int64, error)
}

type attemptEntry struct {
	mu     sync.Mutex
	refs   int
	record *models.AttemptRecord
}

// MemoryAttemptStore keeps records in process memory behind per-identity
// locks. State does not survive a restart and is not shared between
// processes; use PostgresAttemptStore for that.
type MemoryAttemptStore struct {
	mu      sync.Mutex
	entries map[string]*attemptEntry
}

func NewMemoryAttemptStore() *MemoryAttemptStore {
	return &MemoryAttemptStore{entries: make(map[string]*attemptEntry)}
}

func (s *MemoryAttemptStore) acquire(identity string) *attemptEntry {
	s.mu.Lock()
	e, ok := s.entries[identity]
	if !ok {
		e = &attemptEntry{}
		s.entries[identity] = e
	}
	e.refs++
	s.mu.Unlock()

	e.mu.Lock()
	return e
}

func (s *MemoryAttemptStore) release(identity string, e *attemptEntry) {
	e.mu.Unlock()

	s.mu.Lock()
	e.refs--
	// refs == 0 means no goroutine holds or waits on e, so record is stable here
	if e.refs == 0 && e.record == nil {
		delete(s.entries, identity)
	}
	s.mu.Unlock()
}

func (s *MemoryAttemptStore) Update(ctx context.Context, identity string, fn func(current *models.AttemptRecord) (*models.AttemptRecord, error)) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	e := s.acquire(identity)
	defer s.release(identity, e)

	next, err := fn(cloneRecord(e.record))
	e.record = cloneRecord(next)
	return err
}

func (s *MemoryAttemptStore) Get(_ context.Context, identity string) (*models.AttemptRecord, error) {
	s.mu.Lock()
	e, ok := s.entries[identity]
	if ok {
		e.refs++
	}
	s.mu.Unlock()
	if !ok {
		return nil, nil
	}

	e.mu.Lock()
	rec := cloneRecord(e.record)
	s.release(identity, e)
	return rec, nil
}

// DeleteExpired drops records that reached threshold and whose last failure
// is at or before cutoff. Entries currently locked by an attempt are skipped;
// that attempt will clear them lazily.
func (s *MemoryAttemptStore) DeleteExpired(_ context.Context, threshold int, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var removed int64
	for identity, e := range s.entries {
		if e.refs > 0 || e.record == nil {
			continue
		}
		if e.record.FailureCount >= threshold && !e.record.LastFailureTime.After(cutoff) {
			delete(s.entries, identity)
			removed++
		}
	}
	return removed, nil
}

func cloneRecord(r *models.AttemptRecord) *models.AttemptRecord {
	if r == nil {
		return nil
	}
	c := *r
	return &c
}
