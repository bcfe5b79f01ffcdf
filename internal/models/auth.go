package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type TokenClaims struct {
	Type   string `json:"type"`
	UserID string `json:"user_id"`
	Email  string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// AttemptRecord tracks consecutive failed logins for one identity.
// A record exists only while the identity has at least one failure since
// its last successful login or lockout expiry.
type AttemptRecord struct {
	Identity        string    `db:"identity"`
	FailureCount    int       `db:"failure_count"`
	LastFailureTime time.Time `db:"last_failure_time"`
}

// Locked reports whether the record holds an active lockout at now.
func (r *AttemptRecord) Locked(maxFailures int, blockTime time.Duration, now time.Time) bool {
	return r.FailureCount >= maxFailures && now.Sub(r.LastFailureTime) < blockTime
}
