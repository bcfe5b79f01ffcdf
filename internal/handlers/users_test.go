package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/BradenHooton/dancingpony/internal/handlers"
	"github.com/BradenHooton/dancingpony/internal/models"
	"github.com/BradenHooton/dancingpony/pkg/auth"
	pkglogger "github.com/BradenHooton/dancingpony/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newUserHandler(svc handlers.UserService) *handlers.UserHandler {
	return handlers.NewUserHandler(svc, nil, nil, discardLogger())
}

func TestRegister_Success(t *testing.T) {
	var gotEmail string
	svc := &handlers.MockUserService{
		RegisterFunc: func(ctx context.Context, email, password, name string) (*models.User, error) {
			gotEmail = email
			return &models.User{ID: "user-1", Email: email, Name: name, IsActive: true, CreatedAt: time.Now()}, nil
		},
	}

	req := handlers.NewTestRequest(t, http.MethodPost, "/register", map[string]string{
		"email":    " Rosie@Shire.ME ",
		"password": "cotton4ever",
		"name":     "Rosie",
	})
	w := httptest.NewRecorder()
	newUserHandler(svc).Register(w, req)

	var resp handlers.UserResponse
	handlers.AssertJSONResponse(t, w, http.StatusCreated, &resp)
	assert.Equal(t, "user-1", resp.ID)
	assert.Equal(t, "rosie@shire.me", gotEmail)
	assert.True(t, resp.IsActive)
	assert.NotContains(t, w.Body.String(), "password")
}

func TestRegister_WritesAuditEvent(t *testing.T) {
	var buf bytes.Buffer
	audit := pkglogger.NewAuditLogger(slog.New(slog.NewJSONHandler(&buf, nil)))
	svc := &handlers.MockUserService{
		RegisterFunc: func(ctx context.Context, email, password, name string) (*models.User, error) {
			return &models.User{ID: "user-1", Email: email, Name: name}, nil
		},
	}
	h := handlers.NewUserHandler(svc, audit, nil, discardLogger())

	req := handlers.NewTestRequest(t, http.MethodPost, "/register", map[string]string{
		"email": "rosie@shire.me", "password": "cotton4ever", "name": "Rosie",
	})
	req.RemoteAddr = "203.0.113.5:4000"
	h.Register(httptest.NewRecorder(), req)

	assert.Contains(t, buf.String(), "user_registered")
	assert.Contains(t, buf.String(), "203.0.113.5")
}

func TestRegister_Errors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		serviceErr error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "malformed json",
			body:       `{"email":`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "bad_request",
		},
		{
			name:       "invalid email",
			body:       `{"email":"not-an-email","password":"cotton4ever","name":"Rosie"}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "validation_error",
		},
		{
			name:       "missing name",
			body:       `{"email":"rosie@shire.me","password":"cotton4ever"}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "validation_error",
		},
		{
			name:       "weak password",
			body:       `{"email":"rosie@shire.me","password":"short","name":"Rosie"}`,
			serviceErr: fmt.Errorf("%w: %w", models.ErrBadRequest, &auth.PasswordValidationError{Errors: []string{"too short"}}),
			wantStatus: http.StatusBadRequest,
			wantCode:   "validation_error",
		},
		{
			name:       "duplicate",
			body:       `{"email":"rosie@shire.me","password":"cotton4ever","name":"Rosie"}`,
			serviceErr: models.ErrConflict,
			wantStatus: http.StatusConflict,
			wantCode:   "conflict",
		},
		{
			name:       "internal",
			body:       `{"email":"rosie@shire.me","password":"cotton4ever","name":"Rosie"}`,
			serviceErr: models.ErrInternalServer,
			wantStatus: http.StatusInternalServerError,
			wantCode:   "internal_error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &handlers.MockUserService{
				RegisterFunc: func(ctx context.Context, email, password, name string) (*models.User, error) {
					return nil, tt.serviceErr
				},
			}
			req := httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(tt.body))
			w := httptest.NewRecorder()
			newUserHandler(svc).Register(w, req)

			handlers.AssertErrorResponse(t, w, tt.wantStatus, tt.wantCode)
		})
	}
}

func TestMe(t *testing.T) {
	user := &models.User{ID: "user-1", Email: "rosie@shire.me", Name: "Rosie", IsActive: true}
	req := handlers.WithUser(httptest.NewRequest(http.MethodGet, "/me", nil), user)
	w := httptest.NewRecorder()

	newUserHandler(&handlers.MockUserService{}).Me(w, req)

	var resp map[string]any
	handlers.AssertJSONResponse(t, w, http.StatusOK, &resp)
	assert.Equal(t, "rosie@shire.me", resp["email"])
	assert.NotContains(t, resp, "password_hash")
}

func TestMe_Unauthenticated(t *testing.T) {
	w := httptest.NewRecorder()
	newUserHandler(&handlers.MockUserService{}).Me(w, httptest.NewRequest(http.MethodGet, "/me", nil))

	require.Equal(t, http.StatusUnauthorized, w.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "unauthorized", resp["error"])
}
