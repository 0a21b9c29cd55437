package entity

import (
	"github.com/google/uuid"
)

// Bid statuses. "accepted" and "rejected" are terminal.
const (
	BidPending  = "pending"
	BidAccepted = "accepted"
	BidRejected = "rejected"
)

// Bid decisions.
const (
	DecisionAccept = "accept"
	DecisionReject = "reject"
)

// db model
type Bid struct {
	Id         uuid.UUID `json:"id" db:"id"`
	JobId      uuid.UUID `json:"jobId" db:"job_id"`
	BusinessId uuid.UUID `json:"businessId" db:"business_id"`
	Amount     float64   `json:"amount" db:"amount"`
	Proposal   string    `json:"proposal" db:"proposal"`
	Status     string    `json:"status" db:"status"`
	CreatedAt  string    `json:"createdAt" db:"created_at"`
}

// service + repo input model
type SubmitBidInput struct {
	JobId      string  // given
	BusinessId string  // given, bidding business profile
	Amount     float64 // given, must be positive
	Proposal   string  // given
	// Status should be set: "pending"
	// Id UUID sets automatically
	// CreatedAt sets automatically
}

// controller model
type BidOutputModel struct {
	Id         string  `json:"id"`
	JobId      string  `json:"jobId"`
	BusinessId string  `json:"businessId"`
	Amount     float64 `json:"amount"`
	Proposal   string  `json:"proposal"`
	Status     string  `json:"status"`
	CreatedAt  string  `json:"createdAt"`
}
