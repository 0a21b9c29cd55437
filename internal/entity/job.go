package entity

import (
	"github.com/google/uuid"
)

// Job statuses. Transitions never regress: open -> in_progress -> completed.
const (
	JobOpen       = "open"
	JobInProgress = "in_progress"
	JobCompleted  = "completed"
)

// db model
type Job struct {
	Id          uuid.UUID `json:"id" db:"id"`
	UserId      uuid.UUID `json:"userId" db:"user_id"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description" db:"description"`
	Budget      float64   `json:"budget" db:"budget"`
	Category    string    `json:"category" db:"category"`
	Location    string    `json:"location" db:"location"`
	Status      string    `json:"status" db:"status"`
	CreatedAt   string    `json:"createdAt" db:"created_at"`
}

// service + repo input model
type CreateJobInput struct {
	UserId      string  // given, requester posting the job
	Title       string  // given
	Description string  // given
	Budget      float64 // given, must be positive
	Category    string  // given
	Location    string  // given
	// Status should be set: "open"
	// Id UUID sets automatically
	// CreatedAt sets automatically
}

// controller model
type JobOutputModel struct {
	Id          string  `json:"id"`
	UserId      string  `json:"userId"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Budget      float64 `json:"budget"`
	Category    string  `json:"category"`
	Location    string  `json:"location"`
	Status      string  `json:"status"`
	CreatedAt   string  `json:"createdAt"`
}
