package models

import "time"

// Dish is a single catalog entry. Image holds base64-encoded PNG data.
type Dish struct {
	ID          string
	Name        string
	Description string
	Price       float64
	Image       string
	Rating      *float64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
