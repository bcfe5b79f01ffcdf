package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/BradenHooton/dancingpony/internal/models"
	pkghttp "github.com/BradenHooton/dancingpony/pkg/http"
)

// contextKey is a custom type for context keys
type contextKey string

const (
	// UserContextKey is the key for storing the authenticated user in context
	UserContextKey contextKey = "user"

	basicChallenge = `Basic realm="dancingpony", charset="UTF-8"`
)

// CredentialAuthenticator checks an identity/secret pair. *Guard satisfies it.
type CredentialAuthenticator interface {
	Authenticate(ctx context.Context, identity, secret string) (*models.User, error)
}

// UserRepository fetches users for bearer-token requests
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
}

// NormalizeIdentity trims and lowercases an email used as a login identity.
func NormalizeIdentity(identity string) string {
	return strings.ToLower(strings.TrimSpace(identity))
}

// BasicLogin authenticates the request's Basic credentials through the guard
// and writes the mapped error response on failure. It reports whether the
// handler may continue.
func BasicLogin(w http.ResponseWriter, r *http.Request, guard CredentialAuthenticator, logger *slog.Logger) (*models.User, bool) {
	identity, secret, ok := r.BasicAuth()
	if !ok {
		w.Header().Set("WWW-Authenticate", basicChallenge)
		pkghttp.WriteUnauthorized(w, "Missing basic credentials")
		return nil, false
	}

	user, err := guard.Authenticate(r.Context(), NormalizeIdentity(identity), secret)
	if err != nil {
		WriteAuthError(w, err, logger)
		return nil, false
	}
	return user, true
}

// WriteAuthError maps a guard outcome to a response. Unknown identities and
// wrong passwords share the same 401 body.
func WriteAuthError(w http.ResponseWriter, err error, logger *slog.Logger) {
	switch {
	case errors.Is(err, models.ErrInvalidCredentials):
		w.Header().Set("WWW-Authenticate", basicChallenge)
		pkghttp.WriteUnauthorized(w, "Incorrect email or password")
	case errors.Is(err, models.ErrAccountLocked):
		w.Header().Set("WWW-Authenticate", basicChallenge)
		pkghttp.WriteAccountLocked(w, "Account locked due to too many failed login attempts. Please try again later.")
	default:
		logger.Error("authentication unavailable", slog.Any("error", err))
		pkghttp.WriteInternalError(w, "Authentication is temporarily unavailable")
	}
}

// RequireAuth accepts either Basic credentials, checked by the login guard on
// every request, or a Bearer access token issued by /auth/token. The
// authenticated user is stored in the request context.
func RequireAuth(guard CredentialAuthenticator, tm *TokenManager, users UserRepository, logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			scheme, credentials, _ := strings.Cut(authHeader, " ")

			var user *models.User
			switch {
			case strings.EqualFold(scheme, "Bearer") && credentials != "":
				var ok bool
				user, ok = bearerUser(w, r, strings.TrimSpace(credentials), tm, users, logger)
				if !ok {
					return
				}
			case strings.EqualFold(scheme, "Basic"):
				var ok bool
				user, ok = BasicLogin(w, r, guard, logger)
				if !ok {
					return
				}
			default:
				w.Header().Set("WWW-Authenticate", basicChallenge)
				pkghttp.WriteUnauthorized(w, "Missing or unsupported authorization header")
				return
			}

			ctx := context.WithValue(r.Context(), UserContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerUser(w http.ResponseWriter, r *http.Request, token string, tm *TokenManager, users UserRepository, logger *slog.Logger) (*models.User, bool) {
	claims, err := tm.ValidateToken(token)
	if err != nil {
		pkghttp.WriteUnauthorized(w, "Invalid or expired token")
		return nil, false
	}

	user, err := users.GetByID(r.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			pkghttp.WriteUnauthorized(w, "Invalid or expired token")
			return nil, false
		}
		logger.Error("failed to load token user", slog.String("user_id", claims.UserID), slog.Any("error", err))
		pkghttp.WriteInternalError(w, "Internal server error")
		return nil, false
	}
	return user, true
}

// GetUserFromContext returns the authenticated user, or nil
func GetUserFromContext(r *http.Request) *models.User {
	user, ok := r.Context().Value(UserContextKey).(*models.User)
	if !ok {
		return nil
	}
	return user
}
