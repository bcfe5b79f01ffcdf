package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/BradenHooton/dancingpony/internal/models"
	"github.com/BradenHooton/dancingpony/internal/services"
	pkghttp "github.com/BradenHooton/dancingpony/pkg/http"
	"github.com/go-chi/chi/v5"
)

// DishService defines the interface for dish business logic
type DishService interface {
	CreateDish(ctx context.Context, in services.DishUpdate) (*models.Dish, error)
	GetDish(ctx context.Context, id string) (*models.Dish, error)
	ListDishes(ctx context.Context) ([]*models.Dish, error)
	SearchDishes(ctx context.Context, term string) ([]*models.Dish, error)
	UpdateDish(ctx context.Context, id string, in services.DishUpdate) (*models.Dish, error)
	RateDish(ctx context.Context, id string, rating float64) (*models.Dish, error)
	DeleteDish(ctx context.Context, id string) (int64, error)
}

// DishHandler serves the dish catalog
type DishHandler struct {
	service DishService
	logger  *slog.Logger
}

// NewDishHandler creates a new DishHandler
func NewDishHandler(service DishService, logger *slog.Logger) *DishHandler {
	return &DishHandler{
		service: service,
		logger:  logger,
	}
}

// DishRequest is the body of create and update calls
type DishRequest struct {
	Name        string   `json:"name" validate:"required,min=1,max=200"`
	Description string   `json:"description" validate:"max=2000"`
	Price       *float64 `json:"price" validate:"required,gte=0"`
	Image       string   `json:"image" validate:"omitempty,base64"`
}

func (req *DishRequest) toUpdate() services.DishUpdate {
	return services.DishUpdate{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Price:       *req.Price,
		Image:       req.Image,
	}
}

// RateRequest is the body of PUT /dishes/{id}/rate
type RateRequest struct {
	Rating *float64 `json:"rating" validate:"required,gte=0,lte=5"`
}

// DishResponse represents a dish in the HTTP response
type DishResponse struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	Image       string   `json:"image"`
	Rating      *float64 `json:"rating"`
}

func dishModelToResponse(d *models.Dish) *DishResponse {
	return &DishResponse{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		Price:       d.Price,
		Image:       d.Image,
		Rating:      d.Rating,
	}
}

func dishListToResponse(dishes []*models.Dish) []*DishResponse {
	out := make([]*DishResponse, len(dishes))
	for i, d := range dishes {
		out[i] = dishModelToResponse(d)
	}
	return out
}

// writeServiceError maps service sentinels to responses
func (h *DishHandler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrNotFound):
		pkghttp.WriteNotFound(w, "Dish not found")
	case errors.Is(err, models.ErrBadRequest):
		pkghttp.WriteBadRequest(w, err.Error())
	default:
		pkghttp.WriteInternalError(w, "Internal server error")
	}
}

// CreateDish adds a dish to the catalog
//
// @Router /dishes [post]
func (h *DishHandler) CreateDish(w http.ResponseWriter, r *http.Request) {
	var req DishRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	dish, err := h.service.CreateDish(r.Context(), req.toUpdate())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	pkghttp.WriteJSON(w, http.StatusCreated, dishModelToResponse(dish))
}

// GetDish returns one dish
//
// @Router /dishes/{id} [get]
func (h *DishHandler) GetDish(w http.ResponseWriter, r *http.Request) {
	dish, err := h.service.GetDish(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	pkghttp.WriteJSON(w, http.StatusOK, dishModelToResponse(dish))
}

// ListDishes returns the whole catalog
//
// @Router /dishes [get]
func (h *DishHandler) ListDishes(w http.ResponseWriter, r *http.Request) {
	dishes, err := h.service.ListDishes(r.Context())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	pkghttp.WriteJSON(w, http.StatusOK, dishListToResponse(dishes))
}

// SearchDishes matches ?query= against name and description
//
// @Router /search [get]
func (h *DishHandler) SearchDishes(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("query"))
	if query == "" {
		pkghttp.WriteValidationError(w, "query: this field is required")
		return
	}

	dishes, err := h.service.SearchDishes(r.Context(), query)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	pkghttp.WriteJSON(w, http.StatusOK, dishListToResponse(dishes))
}

// UpdateDish replaces a dish's fields
//
// @Router /dishes/{id} [put]
func (h *DishHandler) UpdateDish(w http.ResponseWriter, r *http.Request) {
	var req DishRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	dish, err := h.service.UpdateDish(r.Context(), chi.URLParam(r, "id"), req.toUpdate())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	pkghttp.WriteJSON(w, http.StatusOK, dishModelToResponse(dish))
}

// RateDish sets a dish's rating
//
// @Router /dishes/{id}/rate [put]
func (h *DishHandler) RateDish(w http.ResponseWriter, r *http.Request) {
	var req RateRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	dish, err := h.service.RateDish(r.Context(), chi.URLParam(r, "id"), *req.Rating)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	pkghttp.WriteJSON(w, http.StatusOK, dishModelToResponse(dish))
}

// DeleteDish removes a dish. Unknown IDs still get 204.
//
// @Router /dishes/{id} [delete]
func (h *DishHandler) DeleteDish(w http.ResponseWriter, r *http.Request) {
	if _, err := h.service.DeleteDish(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
