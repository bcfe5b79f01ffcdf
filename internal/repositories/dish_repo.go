package repositories

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/BradenHooton/dancingpony/internal/database"
	"github.com/BradenHooton/dancingpony/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const dishColumns = `id, name, description, price, image, rating, created_at, updated_at`

// DishRepository persists the dish catalog
type DishRepository struct {
	pool *pgxpool.Pool
}

func NewDishRepository(db *database.DB) *DishRepository {
	return &DishRepository{pool: db.Pool}
}

func scanDishRow(scanner rowScanner) (*models.Dish, error) {
	var dish models.Dish
	err := scanner.Scan(
		&dish.ID, &dish.Name, &dish.Description, &dish.Price,
		&dish.Image, &dish.Rating, &dish.CreatedAt, &dish.UpdatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	return &dish, nil
}

func scanDishRows(rows pgx.Rows) ([]*models.Dish, error) {
	defer rows.Close()

	dishes := make([]*models.Dish, 0)
	for rows.Next() {
		dish, err := scanDishRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan dish: %w", err)
		}
		dishes = append(dishes, dish)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return dishes, nil
}

// Add inserts a dish and returns the stored row
func (r *DishRepository) Add(ctx context.Context, dish *models.Dish) (*models.Dish, error) {
	now := time.Now().UTC()
	query := `
		INSERT INTO dish (id, name, description, price, image, rating, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
		RETURNING ` + dishColumns

	created, err := scanDishRow(r.pool.QueryRow(ctx, query,
		uuid.New().String(), dish.Name, dish.Description, dish.Price, dish.Image, dish.Rating, now,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to add dish: %w", err)
	}
	return created, nil
}

// Get returns models.ErrNotFound for unknown or malformed IDs
func (r *DishRepository) Get(ctx context.Context, id string) (*models.Dish, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, models.ErrNotFound
	}
	query := `SELECT ` + dishColumns + ` FROM dish WHERE id = $1`
	return scanDishRow(r.pool.QueryRow(ctx, query, id))
}

func (r *DishRepository) List(ctx context.Context) ([]*models.Dish, error) {
	query := `SELECT ` + dishColumns + ` FROM dish ORDER BY name, id`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query dishes: %w", err)
	}
	return scanDishRows(rows)
}

// Search matches the term case-insensitively against name and description
func (r *DishRepository) Search(ctx context.Context, term string) ([]*models.Dish, error) {
	query := `
		SELECT ` + dishColumns + `
		FROM dish
		WHERE name ILIKE $1 ESCAPE '\' OR description ILIKE $1 ESCAPE '\'
		ORDER BY name, id`

	rows, err := r.pool.Query(ctx, query, "%"+escapeLike(term)+"%")
	if err != nil {
		return nil, fmt.Errorf("failed to search dishes: %w", err)
	}
	return scanDishRows(rows)
}

// Update overwrites every mutable field of the dish with the given ID
func (r *DishRepository) Update(ctx context.Context, id string, dish *models.Dish) (*models.Dish, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, models.ErrNotFound
	}
	query := `
		UPDATE dish
		SET name = $2, description = $3, price = $4, image = $5, rating = $6, updated_at = $7
		WHERE id = $1
		RETURNING ` + dishColumns

	return scanDishRow(r.pool.QueryRow(ctx, query,
		id, dish.Name, dish.Description, dish.Price, dish.Image, dish.Rating, time.Now().UTC(),
	))
}

// SetRating updates only the rating column
func (r *DishRepository) SetRating(ctx context.Context, id string, rating float64) (*models.Dish, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, models.ErrNotFound
	}
	query := `
		UPDATE dish SET rating = $2, updated_at = $3
		WHERE id = $1
		RETURNING ` + dishColumns

	return scanDishRow(r.pool.QueryRow(ctx, query, id, rating, time.Now().UTC()))
}

// Delete removes the dish and returns the number of rows removed
func (r *DishRepository) Delete(ctx context.Context, id string) (int64, error) {
	if _, err := uuid.Parse(id); err != nil {
		return 0, nil
	}
	tag, err := r.pool.Exec(ctx, `DELETE FROM dish WHERE id = $1`, id)
	if err != nil {
		return 0, fmt.Errorf("failed to delete dish: %w", err)
	}
	return tag.RowsAffected(), nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
