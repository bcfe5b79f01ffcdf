package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/BradenHooton/dancingpony/internal/auth"
	"github.com/BradenHooton/dancingpony/internal/models"
	"github.com/BradenHooton/dancingpony/internal/services"
	pkghttp "github.com/BradenHooton/dancingpony/pkg/http"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
)

// NewTestRequest creates an HTTP request with JSON body for testing
func NewTestRequest(t *testing.T, method, url string, body interface{}) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// WithUser stores user in the request context the way RequireAuth does
func WithUser(req *http.Request, user *models.User) *http.Request {
	ctx := context.WithValue(req.Context(), auth.UserContextKey, user)
	return req.WithContext(ctx)
}

// WithChiRouteContext sets chi URL parameters on a request
//
//	req = WithChiRouteContext(req, map[string]string{"id": "dish-1"})
func WithChiRouteContext(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// AssertJSONResponse checks that response has correct status and decodes JSON body
func AssertJSONResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, target interface{}) {
	assert.Equal(t, expectedStatus, w.Code, "Response status mismatch")
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"), "Content-Type should be application/json")

	if target != nil {
		err := json.Unmarshal(w.Body.Bytes(), target)
		assert.NoError(t, err, "Failed to decode response JSON")
	}
}

// AssertErrorResponse checks that response is a valid error response
func AssertErrorResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, expectedError string) {
	assert.Equal(t, expectedStatus, w.Code, "Response status mismatch")

	var resp pkghttp.ErrorResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	assert.NoError(t, err, "Failed to decode error response")
	assert.Equal(t, expectedError, resp.Error, "Error code mismatch")
	assert.NotEmpty(t, resp.Message, "Error message should not be empty")
}

// MockUserService implements UserService for testing
type MockUserService struct {
	RegisterFunc func(ctx context.Context, email, password, name string) (*models.User, error)
}

func (m *MockUserService) Register(ctx context.Context, email, password, name string) (*models.User, error) {
	if m.RegisterFunc == nil {
		return nil, models.ErrInternalServer
	}
	return m.RegisterFunc(ctx, email, password, name)
}

// MockDishService implements DishService for testing
type MockDishService struct {
	CreateDishFunc   func(ctx context.Context, in services.DishUpdate) (*models.Dish, error)
	GetDishFunc      func(ctx context.Context, id string) (*models.Dish, error)
	ListDishesFunc   func(ctx context.Context) ([]*models.Dish, error)
	SearchDishesFunc func(ctx context.Context, term string) ([]*models.Dish, error)
	UpdateDishFunc   func(ctx context.Context, id string, in services.DishUpdate) (*models.Dish, error)
	RateDishFunc     func(ctx context.Context, id string, rating float64) (*models.Dish, error)
	DeleteDishFunc   func(ctx context.Context, id string) (int64, error)
}

func (m *MockDishService) CreateDish(ctx context.Context, in services.DishUpdate) (*models.Dish, error) {
	if m.CreateDishFunc == nil {
		return nil, models.ErrInternalServer
	}
	return m.CreateDishFunc(ctx, in)
}

func (m *MockDishService) GetDish(ctx context.Context, id string) (*models.Dish, error) {
	if m.GetDishFunc == nil {
		return nil, models.ErrNotFound
	}
	return m.GetDishFunc(ctx, id)
}

func (m *MockDishService) ListDishes(ctx context.Context) ([]*models.Dish, error) {
	if m.ListDishesFunc == nil {
		return []*models.Dish{}, nil
	}
	return m.ListDishesFunc(ctx)
}

func (m *MockDishService) SearchDishes(ctx context.Context, term string) ([]*models.Dish, error) {
	if m.SearchDishesFunc == nil {
		return []*models.Dish{}, nil
	}
	return m.SearchDishesFunc(ctx, term)
}

func (m *MockDishService) UpdateDish(ctx context.Context, id string, in services.DishUpdate) (*models.Dish, error) {
	if m.UpdateDishFunc == nil {
		return nil, models.ErrNotFound
	}
	return m.UpdateDishFunc(ctx, id, in)
}

func (m *MockDishService) RateDish(ctx context.Context, id string, rating float64) (*models.Dish, error) {
	if m.RateDishFunc == nil {
		return nil, models.ErrNotFound
	}
	return m.RateDishFunc(ctx, id, rating)
}

func (m *MockDishService) DeleteDish(ctx context.Context, id string) (int64, error) {
	if m.DeleteDishFunc == nil {
		return 0, nil
	}
	return m.DeleteDishFunc(ctx, id)
}

// MockAuthenticator implements auth.CredentialAuthenticator for testing
type MockAuthenticator struct {
	AuthenticateFunc func(ctx context.Context, identity, secret string) (*models.User, error)
}

func (m *MockAuthenticator) Authenticate(ctx context.Context, identity, secret string) (*models.User, error) {
	if m.AuthenticateFunc == nil {
		return nil, models.ErrInvalidCredentials
	}
	return m.AuthenticateFunc(ctx, identity, secret)
}
