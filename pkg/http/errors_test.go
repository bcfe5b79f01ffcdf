package http_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	pkghttp "github.com/BradenHooton/dancingpony/pkg/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteErrorWithDetails(t *testing.T) {
	w := httptest.NewRecorder()

	pkghttp.WriteErrorWithDetails(w, 400, "test_error", "Test message", "Additional details")

	assert.Equal(t, 400, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var resp pkghttp.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "test_error", resp.Error)
	assert.Equal(t, "Test message", resp.Message)
	assert.Equal(t, "Additional details", resp.Details)
}

func TestWriteError_OmitsEmptyDetails(t *testing.T) {
	w := httptest.NewRecorder()
	pkghttp.WriteError(w, 401, "unauthorized", "Invalid token")

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "unauthorized", resp["error"])
	assert.Equal(t, "Invalid token", resp["message"])
	assert.NotContains(t, resp, "details")
}

func TestErrorWriters(t *testing.T) {
	tests := []struct {
		name       string
		write      func(http.ResponseWriter, string)
		wantStatus int
		wantCode   string
	}{
		{"bad request", pkghttp.WriteBadRequest, http.StatusBadRequest, "bad_request"},
		{"unauthorized", pkghttp.WriteUnauthorized, http.StatusUnauthorized, "unauthorized"},
		{"forbidden", pkghttp.WriteForbidden, http.StatusForbidden, "forbidden"},
		{"account locked", pkghttp.WriteAccountLocked, http.StatusForbidden, "account_locked"},
		{"not found", pkghttp.WriteNotFound, http.StatusNotFound, "not_found"},
		{"conflict", pkghttp.WriteConflict, http.StatusConflict, "conflict"},
		{"too many requests", pkghttp.WriteTooManyRequests, http.StatusTooManyRequests, "rate_limit_exceeded"},
		{"internal", pkghttp.WriteInternalError, http.StatusInternalServerError, "internal_error"},
		{"unavailable", pkghttp.WriteServiceUnavailable, http.StatusServiceUnavailable, "service_unavailable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.write(w, "message")

			assert.Equal(t, tt.wantStatus, w.Code)

			var resp pkghttp.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantCode, resp.Error)
			assert.Equal(t, "message", resp.Message)
		})
	}
}

func TestWriteValidationError(t *testing.T) {
	w := httptest.NewRecorder()
	pkghttp.WriteValidationError(w, "price: must be greater than or equal to 0")

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp pkghttp.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "validation_error", resp.Error)
	assert.Equal(t, "price: must be greater than or equal to 0", resp.Details)
}

func TestWriteJSON(t *testing.T) {
	w := httptest.NewRecorder()
	pkghttp.WriteJSON(w, http.StatusCreated, map[string]string{"id": "abc"})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"id":"abc"}`, w.Body.String())
}
