package event

import (
	"time"

	"github.com/google/uuid"

	"marketplace-management-api/internal/entity"
)

// Kind identifies the kind of a change feed event.
type Kind string

// Job events.
const (
	// KindJobCreated records the creation of a job.
	KindJobCreated Kind = "job.created"
	// KindJobStatusChanged records a job status transition.
	KindJobStatusChanged Kind = "job.status_changed"
)

// Bid events.
const (
	// KindBidCreated records a new bid on an open job.
	KindBidCreated Kind = "bid.created"
	// KindBidDecided records a bid transitioning to accepted or rejected.
	KindBidDecided Kind = "bid.decided"
)

// Message events.
const (
	// KindMessageCreated records a new message between two users.
	KindMessageCreated Kind = "message.created"
	// KindMessageRead records a message being marked read by its receiver.
	KindMessageRead Kind = "message.read"
)

// Event is one immutable record on the change feed. It carries the
// post-mutation snapshot of the affected row; exactly one of Job, Bid
// or Message is set, matching the kind.
type Event struct {
	// Seq is the feed-scoped sequence number, assigned on append (starts at 1).
	Seq uint64
	// Kind identifies the mutation.
	Kind Kind
	// OccurredAt is when the mutation committed.
	OccurredAt time.Time
	// Participants are the user ids this event is routed to.
	Participants []uuid.UUID
	// Job is the post-mutation job row for job.* events.
	Job *entity.Job
	// Bid is the post-mutation bid row for bid.* events.
	Bid *entity.Bid
	// Message is the post-mutation message row for message.* events.
	Message *entity.Message
}

// HasParticipant reports whether the event is addressed to the given user.
func (e Event) HasParticipant(userId uuid.UUID) bool {
	for _, id := range e.Participants {
		if id == userId {
			return true
		}
	}

	return false
}
