package handlers_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/BradenHooton/dancingpony/internal/handlers"
	"github.com/stretchr/testify/assert"
)

type stubPinger struct{ err error }

func (s stubPinger) HealthCheck(context.Context) error { return s.err }

func TestHealth(t *testing.T) {
	w := httptest.NewRecorder()
	handlers.Health(stubPinger{})(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"healthy","database":"up"}`, w.Body.String())

	w = httptest.NewRecorder()
	handlers.Health(stubPinger{err: errors.New("down")})(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
