package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/BradenHooton/dancingpony/internal/models"
)

const (
	MinRating = 0.0
	MaxRating = 5.0
)

// DishRepository defines the interface for dish data access
type DishRepository interface {
	Add(ctx context.Context, dish *models.Dish) (*models.Dish, error)
	Get(ctx context.Context, id string) (*models.Dish, error)
	List(ctx context.Context) ([]*models.Dish, error)
	Search(ctx context.Context, term string) ([]*models.Dish, error)
	Update(ctx context.Context, id string, dish *models.Dish) (*models.Dish, error)
	SetRating(ctx context.Context, id string, rating float64) (*models.Dish, error)
	Delete(ctx context.Context, id string) (int64, error)
}

// CallObserver records one service call. metrics.DishMetrics satisfies it.
type CallObserver interface {
	ObserveCall(method string, elapsed time.Duration)
}

// DishUpdate carries the mutable fields of a dish
type DishUpdate struct {
	Name        string
	Description string
	Price       float64
	Image       string
}

// DishService handles the dish catalog
type DishService struct {
	repo     DishRepository
	observer CallObserver
	logger   *slog.Logger
}

// NewDishService creates a new DishService. observer may be nil.
func NewDishService(repo DishRepository, observer CallObserver, logger *slog.Logger) *DishService {
	return &DishService{
		repo:     repo,
		observer: observer,
		logger:   logger,
	}
}

func (s *DishService) track(method string) func() {
	if s.observer == nil {
		return func() {}
	}
	start := time.Now()
	return func() { s.observer.ObserveCall(method, time.Since(start)) }
}

// mapRepoError passes through the sentinels callers act on and hides the rest
func (s *DishService) mapRepoError(op, id string, err error) error {
	switch {
	case errors.Is(err, models.ErrNotFound):
		return models.ErrNotFound
	case errors.Is(err, models.ErrBadRequest):
		return models.ErrBadRequest
	}
	s.logger.Error("dish repository failure",
		slog.String("op", op), slog.String("dish_id", id), slog.Any("error", err))
	return models.ErrInternalServer
}

func (s *DishService) CreateDish(ctx context.Context, in DishUpdate) (*models.Dish, error) {
	defer s.track("create_dish")()

	if in.Price < 0 {
		return nil, fmt.Errorf("%w: price must not be negative", models.ErrBadRequest)
	}

	dish, err := s.repo.Add(ctx, &models.Dish{
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		Image:       in.Image,
	})
	if err != nil {
		return nil, s.mapRepoError("create", "", err)
	}

	s.logger.Info("dish created", slog.String("dish_id", dish.ID))
	return dish, nil
}

func (s *DishService) GetDish(ctx context.Context, id string) (*models.Dish, error) {
	defer s.track("get_dish")()

	dish, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, s.mapRepoError("get", id, err)
	}
	return dish, nil
}

func (s *DishService) ListDishes(ctx context.Context) ([]*models.Dish, error) {
	defer s.track("list_dishes")()

	dishes, err := s.repo.List(ctx)
	if err != nil {
		return nil, s.mapRepoError("list", "", err)
	}
	return dishes, nil
}

// SearchDishes matches term against name and description
func (s *DishService) SearchDishes(ctx context.Context, term string) ([]*models.Dish, error) {
	defer s.track("search_dishes")()

	dishes, err := s.repo.Search(ctx, term)
	if err != nil {
		return nil, s.mapRepoError("search", "", err)
	}
	return dishes, nil
}

// UpdateDish replaces the mutable fields of an existing dish. The rating is
// left untouched.
func (s *DishService) UpdateDish(ctx context.Context, id string, in DishUpdate) (*models.Dish, error) {
	defer s.track("update_dish")()

	if in.Price < 0 {
		return nil, fmt.Errorf("%w: price must not be negative", models.ErrBadRequest)
	}

	dish, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, s.mapRepoError("update", id, err)
	}

	dish.Name = in.Name
	dish.Description = in.Description
	dish.Price = in.Price
	dish.Image = in.Image

	updated, err := s.repo.Update(ctx, id, dish)
	if err != nil {
		return nil, s.mapRepoError("update", id, err)
	}

	s.logger.Info("dish updated", slog.String("dish_id", id))
	return updated, nil
}

// RateDish sets the rating, which must lie in [MinRating, MaxRating]
func (s *DishService) RateDish(ctx context.Context, id string, rating float64) (*models.Dish, error) {
	defer s.track("rate_dish")()

	if rating < MinRating || rating > MaxRating {
		return nil, fmt.Errorf("%w: rating must be between %.0f and %.0f", models.ErrBadRequest, MinRating, MaxRating)
	}

	dish, err := s.repo.SetRating(ctx, id, rating)
	if err != nil {
		return nil, s.mapRepoError("rate", id, err)
	}
	return dish, nil
}

// DeleteDish returns the number of dishes removed, zero when id is unknown
func (s *DishService) DeleteDish(ctx context.Context, id string) (int64, error) {
	defer s.track("delete_dish")()

	n, err := s.repo.Delete(ctx, id)
	if err != nil {
		return 0, s.mapRepoError("delete", id, err)
	}
	if n > 0 {
		s.logger.Info("dish deleted", slog.String("dish_id", id))
	}
	return n, nil
}
