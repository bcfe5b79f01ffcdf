package auth

import (
	"context"

	"github.com/BradenHooton/dancingpony/internal/models"
)

// AttemptsOf returns the tracked record for identity, or nil.
func AttemptsOf(ctx context.Context, g *Guard, identity string) (*models.AttemptRecord, error) {
	return g.attempts.Get(ctx, identity)
}

// Len returns the number of identities with a tracked record.
func (s *MemoryAttemptStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
