package routes

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/BradenHooton/dancingpony/internal/auth"
	"github.com/BradenHooton/dancingpony/internal/handlers"
	"github.com/BradenHooton/dancingpony/internal/middleware"
	"github.com/BradenHooton/dancingpony/internal/models"
	pkgauth "github.com/BradenHooton/dancingpony/pkg/auth"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type directory struct {
	user *models.User
}

func (d *directory) GetByEmail(_ context.Context, email string) (*models.User, error) {
	if email == d.user.Email {
		return d.user, nil
	}
	return nil, models.ErrNotFound
}

func (d *directory) GetByID(_ context.Context, id string) (*models.User, error) {
	if id == d.user.ID {
		return d.user, nil
	}
	return nil, models.ErrNotFound
}

type clock struct{ now time.Time }

func (c *clock) Now() time.Time { return c.now }

// newRouter wires the real guard, memory store and middleware around mock services
func newRouter(t *testing.T, clk *clock) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	hash, err := bcrypt.GenerateFromPassword([]byte("elbereth7"), bcrypt.MinCost)
	require.NoError(t, err)
	users := &directory{user: &models.User{ID: "user-1", Email: "frodo@shire.me", PasswordHash: string(hash), IsActive: true}}

	guard := auth.NewGuard(users, pkgauth.BcryptVerifier{}, auth.NewMemoryAttemptStore(),
		auth.GuardConfig{MaxFailedAttempts: 3, BlockTime: 5 * time.Minute}, logger, auth.WithClock(clk.Now))
	tm := auth.NewTokenManager("a-reasonably-long-secret", time.Minute)

	router := chi.NewRouter()
	RegisterRoutes(router, Dependencies{
		UserHandler:  handlers.NewUserHandler(&handlers.MockUserService{}, nil, nil, logger),
		DishHandler:  handlers.NewDishHandler(&handlers.MockDishService{}, logger),
		AuthHandler:  handlers.NewAuthHandler(guard, tm, logger),
		Guard:        guard,
		TokenManager: tm,
		Users:        users,
		RateLimit:    middleware.RateLimitConfig{RequestsPerMinute: 1000},
		Logger:       logger,
	})
	return router
}

func get(router http.Handler, path, user, pass string) int {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if user != "" {
		req.SetBasicAuth(user, pass)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w.Code
}

func TestRoutes_RequireAuthentication(t *testing.T) {
	router := newRouter(t, &clock{now: time.Now()})

	for _, path := range []string{"/me", "/dishes", "/dishes/abc", "/search?query=x"} {
		assert.Equal(t, http.StatusUnauthorized, get(router, path, "", ""), path)
	}
	assert.Equal(t, http.StatusOK, get(router, "/dishes", "frodo@shire.me", "elbereth7"))
}

func TestRoutes_LockoutScenario(t *testing.T) {
	clk := &clock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	router := newRouter(t, clk)

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusUnauthorized, get(router, "/me", "frodo@shire.me", "wrong"))
	}

	// locked out even with the right password
	assert.Equal(t, http.StatusForbidden, get(router, "/me", "frodo@shire.me", "elbereth7"))

	clk.now = clk.now.Add(5*time.Minute + time.Second)
	assert.Equal(t, http.StatusOK, get(router, "/me", "frodo@shire.me", "elbereth7"))
}

func TestRoutes_TokenThenBearer(t *testing.T) {
	router := newRouter(t, &clock{now: time.Now()})

	req := httptest.NewRequest(http.MethodPost, "/auth/token", nil)
	req.SetBasicAuth("frodo@shire.me", "elbereth7")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var resp handlers.TokenResponse
	handlers.AssertJSONResponse(t, w, http.StatusOK, &resp)

	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+resp.AccessToken)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
