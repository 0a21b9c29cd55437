package entity

import (
	"github.com/google/uuid"
)

// User roles.
const (
	RoleRequester = "requester"
	RoleProvider  = "provider"
)

// db model
type User struct {
	Id              uuid.UUID `json:"id" db:"id"`
	Email           string    `json:"email" db:"email"`
	Name            string    `json:"name" db:"name"`
	Role            string    `json:"role" db:"role"`
	ProfileComplete bool      `json:"profileComplete" db:"profile_complete"`
	CreatedAt       string    `json:"createdAt" db:"created_at"`
}

// service + repo input model
type RegisterUserInput struct {
	Email string // given
	Name  string // given
	Role  string // given: "requester" or "provider"
	// Id UUID sets automatically
	// ProfileComplete starts false, set by onboarding completion
	// CreatedAt sets automatically
}

// controller model
type UserOutputModel struct {
	Id              string `json:"id"`
	Email           string `json:"email"`
	Name            string `json:"name"`
	Role            string `json:"role"`
	ProfileComplete bool   `json:"profileComplete"`
	CreatedAt       string `json:"createdAt"`
}
