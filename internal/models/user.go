package models

import (
	"time"
)

type User struct {
	ID           string
	Email        string
	PasswordHash string
	Name         string
	IsActive     bool
	IsSuperuser  bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
