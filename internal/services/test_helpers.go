package services

import (
	"context"
	"sync"
	"time"

	"github.com/BradenHooton/dancingpony/internal/models"
)

// MockUserRepository implements UserRepository for testing
type MockUserRepository struct {
	GetByIDFunc    func(ctx context.Context, id string) (*models.User, error)
	GetByEmailFunc func(ctx context.Context, email string) (*models.User, error)
	CreateFunc     func(ctx context.Context, user *models.User) (*models.User, error)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.GetByEmailFunc != nil {
		return m.GetByEmailFunc(ctx, email)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, user)
	}
	return nil, models.ErrInternalServer
}

// MockDishRepository implements DishRepository for testing
type MockDishRepository struct {
	AddFunc       func(ctx context.Context, dish *models.Dish) (*models.Dish, error)
	GetFunc       func(ctx context.Context, id string) (*models.Dish, error)
	ListFunc      func(ctx context.Context) ([]*models.Dish, error)
	SearchFunc    func(ctx context.Context, term string) ([]*models.Dish, error)
	UpdateFunc    func(ctx context.Context, id string, dish *models.Dish) (*models.Dish, error)
	SetRatingFunc func(ctx context.Context, id string, rating float64) (*models.Dish, error)
	DeleteFunc    func(ctx context.Context, id string) (int64, error)
}

func (m *MockDishRepository) Add(ctx context.Context, dish *models.Dish) (*models.Dish, error) {
	if m.AddFunc != nil {
		return m.AddFunc(ctx, dish)
	}
	return nil, models.ErrInternalServer
}

func (m *MockDishRepository) Get(ctx context.Context, id string) (*models.Dish, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockDishRepository) List(ctx context.Context) ([]*models.Dish, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return []*models.Dish{}, nil
}

func (m *MockDishRepository) Search(ctx context.Context, term string) ([]*models.Dish, error) {
	if m.SearchFunc != nil {
		return m.SearchFunc(ctx, term)
	}
	return []*models.Dish{}, nil
}

func (m *MockDishRepository) Update(ctx context.Context, id string, dish *models.Dish) (*models.Dish, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, dish)
	}
	return nil, models.ErrInternalServer
}

func (m *MockDishRepository) SetRating(ctx context.Context, id string, rating float64) (*models.Dish, error) {
	if m.SetRatingFunc != nil {
		return m.SetRatingFunc(ctx, id, rating)
	}
	return nil, models.ErrNotFound
}

func (m *MockDishRepository) Delete(ctx context.Context, id string) (int64, error) {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return 0, nil
}

// recordingObserver collects ObserveCall invocations
type recordingObserver struct {
	mu      sync.Mutex
	methods []string
}

func (o *recordingObserver) ObserveCall(method string, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.methods = append(o.methods, method)
}

// NewTestUser creates a test user with default values
func NewTestUser(id, email, name string) *models.User {
	now := time.Now()
	return &models.User{
		ID:        id,
		Email:     email,
		Name:      name,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NewTestDish creates a test dish with default values
func NewTestDish(id, name string, price float64) *models.Dish {
	now := time.Now()
	return &models.Dish{
		ID:          id,
		Name:        name,
		Description: name + " from the Prancing Pony kitchen",
		Price:       price,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
