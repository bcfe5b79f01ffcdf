package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/BradenHooton/dancingpony/internal/database"
	"github.com/BradenHooton/dancingpony/internal/models"
	"github.com/jackc/pgx/v5"
)

// FailedLoginRepository stores attempt records in the failed_logins table so
// that every process behind a load balancer shares one lockout state.
// Updates for the same identity are serialized with a transaction-scoped
// advisory lock.
type FailedLoginRepository struct {
	db *database.DB
}

func NewFailedLoginRepository(db *database.DB) *FailedLoginRepository {
	return &FailedLoginRepository{db: db}
}

func scanAttemptRow(row pgx.Row) (*models.AttemptRecord, error) {
	var rec models.AttemptRecord
	err := row.Scan(&rec.Identity, &rec.FailureCount, &rec.LastFailureTime)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// Update runs fn while holding the identity's advisory lock and writes back
// the record fn returns. fn's error is returned after the write commits.
func (r *FailedLoginRepository) Update(ctx context.Context, identity string, fn func(current *models.AttemptRecord) (*models.AttemptRecord, error)) error {
	var outcome error

	err := r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, identity); err != nil {
			return fmt.Errorf("failed to lock identity: %w", err)
		}

		current, err := scanAttemptRow(tx.QueryRow(ctx, `
			SELECT identity, failure_count, last_failure_time
			FROM failed_logins WHERE identity = $1`, identity))
		if err != nil {
			return fmt.Errorf("failed to read attempt record: %w", err)
		}

		var snapshot *models.AttemptRecord
		if current != nil {
			c := *current
			snapshot = &c
		}

		next, fnErr := fn(current)
		outcome = fnErr

		switch {
		case next == nil && snapshot == nil:
			return nil
		case next == nil:
			if _, err := tx.Exec(ctx, `DELETE FROM failed_logins WHERE identity = $1`, identity); err != nil {
				return fmt.Errorf("failed to clear attempt record: %w", err)
			}
		case snapshot != nil && *next == *snapshot:
			return nil
		default:
			_, err := tx.Exec(ctx, `
				INSERT INTO failed_logins (identity, failure_count, last_failure_time)
				VALUES ($1, $2, $3)
				ON CONFLICT (identity) DO UPDATE
				SET failure_count = EXCLUDED.failure_count,
				    last_failure_time = EXCLUDED.last_failure_time`,
				identity, next.FailureCount, next.LastFailureTime.UTC())
			if err != nil {
				return fmt.Errorf("failed to write attempt record: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	return outcome
}

func (r *FailedLoginRepository) Get(ctx context.Context, identity string) (*models.AttemptRecord, error) {
	rec, err := scanAttemptRow(r.db.Pool.QueryRow(ctx, `
		SELECT identity, failure_count, last_failure_time
		FROM failed_logins WHERE identity = $1`, identity))
	if err != nil {
		return nil, fmt.Errorf("failed to get attempt record: %w", err)
	}
	return rec, nil
}

// DeleteExpired removes lockouts at or above threshold whose last failure is
// at or before cutoff
func (r *FailedLoginRepository) DeleteExpired(ctx context.Context, threshold int, cutoff time.Time) (int64, error) {
	tag, err := r.db.Pool.Exec(ctx, `
		DELETE FROM failed_logins
		WHERE failure_count >= $1 AND last_failure_time <= $2`,
		threshold, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired attempt records: %w", err)
	}
	return tag.RowsAffected(), nil
}
