package entity

import (
	"github.com/google/uuid"
)

// db model
type BusinessProfile struct {
	Id          uuid.UUID `json:"id" db:"id"`
	UserId      uuid.UUID `json:"userId" db:"user_id"`
	Name        string    `json:"name" db:"name"`
	Category    string    `json:"category" db:"category"`
	Description string    `json:"description" db:"description"`
	Address     string    `json:"address" db:"address"`
	Hours       string    `json:"hours" db:"hours"`
	ImageUrl    string    `json:"imageUrl" db:"image_url"`
	CreatedAt   string    `json:"createdAt" db:"created_at"`
}

// service + repo input model
type UpsertBusinessInput struct {
	UserId      string // given, owning provider user
	Name        string // given
	Category    string // given
	Description string // given
	Address     string // given
	Hours       string // given
	ImageUrl    string // given, opaque reference from external storage
	// Id UUID sets automatically on first insert
	// CreatedAt sets automatically
}

// controller model
type BusinessOutputModel struct {
	Id          string `json:"id"`
	UserId      string `json:"userId"`
	Name        string `json:"name"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Address     string `json:"address"`
	Hours       string `json:"hours"`
	ImageUrl    string `json:"imageUrl"`
	CreatedAt   string `json:"createdAt"`
}
