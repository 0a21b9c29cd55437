package entity

import (
	"github.com/google/uuid"
)

// db model. Immutable once created except for the Read flag.
type Message struct {
	Id         uuid.UUID `json:"id" db:"id"`
	SenderId   uuid.UUID `json:"senderId" db:"sender_id"`
	ReceiverId uuid.UUID `json:"receiverId" db:"receiver_id"`
	Content    string    `json:"content" db:"content"`
	Read       bool      `json:"read" db:"read"`
	CreatedAt  string    `json:"createdAt" db:"created_at"`
}

// service + repo input model
type SendMessageInput struct {
	SenderId   string // given
	ReceiverId string // given
	Content    string // given
	// Read starts false
	// Id UUID sets automatically
	// CreatedAt sets automatically
}

// controller model
type MessageOutputModel struct {
	Id         string `json:"id"`
	SenderId   string `json:"senderId"`
	ReceiverId string `json:"receiverId"`
	Content    string `json:"content"`
	Read       bool   `json:"read"`
	CreatedAt  string `json:"createdAt"`
}
