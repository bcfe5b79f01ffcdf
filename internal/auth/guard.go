package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/BradenHooton/dancingpony/internal/models"
	pkglogger "github.com/BradenHooton/dancingpony/pkg/logger"
)

// UserDirectory looks up users by their login identity. A missing user is
// reported as models.ErrNotFound; any other error is an infrastructure failure.
type UserDirectory interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

// CredentialVerifier compares a plaintext secret with a stored hash.
// A mismatch is (false, nil); errors are reserved for verifier failures.
type CredentialVerifier interface {
	Verify(secret, hash string) (bool, error)
}

// OutcomeRecorder receives one outcome label per authentication attempt.
type OutcomeRecorder interface {
	ObserveLogin(outcome string)
}

// Outcome labels reported to the OutcomeRecorder
const (
	OutcomeSuccess            = "success"
	OutcomeInvalidCredentials = "invalid_credentials"
	OutcomeLocked             = "locked"
	OutcomeError              = "error"
)

// GuardConfig holds the lockout thresholds. They are fixed for the
// lifetime of a Guard.
type GuardConfig struct {
	MaxFailedAttempts int
	BlockTime         time.Duration
}

// Guard authenticates (identity, secret) pairs and enforces a temporary
// lockout after MaxFailedAttempts consecutive failures. The lockout lasts
// BlockTime measured from the most recent failure and is cleared lazily on
// the next attempt after it elapses.
type Guard struct {
	users    UserDirectory
	verifier CredentialVerifier
	attempts AttemptStore
	config   GuardConfig
	logger   *slog.Logger
	audit    *pkglogger.AuditLogger
	outcomes OutcomeRecorder
	now      func() time.Time
}

// GuardOption customizes a Guard
type GuardOption func(*Guard)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) GuardOption {
	return func(g *Guard) { g.now = now }
}

// WithAuditLogger emits an audit event for every attempt.
func WithAuditLogger(audit *pkglogger.AuditLogger) GuardOption {
	return func(g *Guard) { g.audit = audit }
}

// WithOutcomeRecorder reports attempt outcomes, typically to metrics.
func WithOutcomeRecorder(r OutcomeRecorder) GuardOption {
	return func(g *Guard) { g.outcomes = r }
}

// NewGuard creates a Guard. The attempt store is owned by the guard for its
// whole lifetime and should be constructed once at startup.
func NewGuard(users UserDirectory, verifier CredentialVerifier, attempts AttemptStore, config GuardConfig, logger *slog.Logger, opts ...GuardOption) *Guard {
	g := &Guard{
		users:    users,
		verifier: verifier,
		attempts: attempts,
		config:   config,
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Authenticate verifies secret for identity.
//
// It returns the user on success, models.ErrInvalidCredentials for unknown
// identities and wrong secrets alike, models.ErrAccountLocked while a
// lockout is active, and an error wrapping models.ErrInternalServer when the
// directory, verifier, or attempt store fails.
func (g *Guard) Authenticate(ctx context.Context, identity, secret string) (*models.User, error) {
	if identity == "" {
		g.finish(identity, "", OutcomeInvalidCredentials)
		return nil, models.ErrInvalidCredentials
	}

	user, err := g.users.GetByEmail(ctx, identity)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			// unknown identities never get an attempt record
			g.logger.Info("login failed: unknown identity",
				slog.String("email", pkglogger.SanitizedEmail(identity)))
			g.finish(identity, "", OutcomeInvalidCredentials)
			return nil, models.ErrInvalidCredentials
		}
		g.logger.Error("login failed: user lookup", slog.Any("error", err))
		g.finish(identity, "", OutcomeError)
		return nil, fmt.Errorf("%w: user lookup: %w", models.ErrInternalServer, err)
	}

	err = g.attempts.Update(ctx, identity, func(current *models.AttemptRecord) (*models.AttemptRecord, error) {
		return g.evaluate(identity, secret, user, current)
	})

	switch {
	case err == nil:
		g.finish(identity, user.ID, OutcomeSuccess)
		return user, nil
	case errors.Is(err, models.ErrInvalidCredentials):
		g.finish(identity, user.ID, OutcomeInvalidCredentials)
		return nil, models.ErrInvalidCredentials
	case errors.Is(err, models.ErrAccountLocked):
		g.finish(identity, user.ID, OutcomeLocked)
		return nil, models.ErrAccountLocked
	case errors.Is(err, models.ErrInternalServer):
		g.finish(identity, user.ID, OutcomeError)
		return nil, err
	default:
		g.logger.Error("login failed: attempt store", slog.String("user_id", user.ID), slog.Any("error", err))
		g.finish(identity, user.ID, OutcomeError)
		return nil, fmt.Errorf("%w: attempt store: %w", models.ErrInternalServer, err)
	}
}

// evaluate runs the lockout check and verification for one attempt. It is
// called with exclusive access to identity's record and returns the record
// to persist alongside the attempt's outcome.
func (g *Guard) evaluate(identity, secret string, user *models.User, current *models.AttemptRecord) (*models.AttemptRecord, error) {
	now := g.now()

	if current != nil && current.FailureCount >= g.config.MaxFailedAttempts {
		if current.Locked(g.config.MaxFailedAttempts, g.config.BlockTime, now) {
			g.logger.Warn("login rejected: account locked",
				slog.String("user_id", user.ID),
				slog.Int("failure_count", current.FailureCount),
				slog.Time("last_failure", current.LastFailureTime))
			// no verification while locked
			return current, models.ErrAccountLocked
		}
		g.logger.Info("account unlocked", slog.String("user_id", user.ID))
		current = nil
	}

	ok, err := g.verifier.Verify(secret, user.PasswordHash)
	if err != nil {
		g.logger.Error("login failed: credential verifier", slog.String("user_id", user.ID), slog.Any("error", err))
		return current, fmt.Errorf("%w: credential verifier: %w", models.ErrInternalServer, err)
	}

	if !ok {
		next := &models.AttemptRecord{
			Identity:        identity,
			FailureCount:    1,
			LastFailureTime: now,
		}
		if current != nil {
			next.FailureCount = current.FailureCount + 1
		}

		g.logger.Info("login failed: invalid credentials",
			slog.String("user_id", user.ID),
			slog.Int("failure_count", next.FailureCount))
		if next.FailureCount == g.config.MaxFailedAttempts {
			g.logger.Warn("account locked",
				slog.String("user_id", user.ID),
				slog.Duration("block_time", g.config.BlockTime))
		}
		return next, models.ErrInvalidCredentials
	}

	if current != nil {
		g.logger.Info("login succeeded, clearing failed attempts",
			slog.String("user_id", user.ID),
			slog.Int("failure_count", current.FailureCount))
	}
	return nil, nil
}

// SweepExpired evicts lockouts whose block window has elapsed. It removes
// exactly the records the next attempt would clear lazily.
func (g *Guard) SweepExpired(ctx context.Context) (int64, error) {
	return g.attempts.DeleteExpired(ctx, g.config.MaxFailedAttempts, g.now().Add(-g.config.BlockTime))
}

func (g *Guard) finish(identity, userID, outcome string) {
	if g.outcomes != nil {
		g.outcomes.ObserveLogin(outcome)
	}
	if g.audit == nil {
		return
	}

	event := pkglogger.AuditEvent{
		EventType: "login_failed",
		UserID:    userID,
		Identity:  identity,
		Success:   outcome == OutcomeSuccess,
	}
	if event.Success {
		event.EventType = "login_success"
	} else {
		event.FailureReason = outcome
	}
	g.audit.LogAuthAttempt(event)
}
