package entity

import (
	"github.com/google/uuid"
)

// View delta kinds pushed to subscribed clients.
const (
	DeltaJobUpsert    = "job_upsert"
	DeltaThreadUpsert = "thread_upsert"
	DeltaResync       = "resync"
)

// JobBoardRow is one entry of the per-viewer job board view: a job
// snapshot annotated with its bids.
type JobBoardRow struct {
	Job  Job   `json:"job"`
	Bids []Bid `json:"bids"`
}

// ThreadView is the per-viewer chat thread summary for one counterparty.
// Derived from the raw message table, never written directly.
type ThreadView struct {
	CounterpartyId uuid.UUID `json:"counterpartyId"`
	LastMessage    Message   `json:"lastMessage"`
	UnreadCount    int       `json:"unreadCount"`
}

// ViewDelta is a recomputed view fragment pushed to a subscribed client.
// Deltas for one viewer arrive in the order they were emitted.
type ViewDelta struct {
	Seq     uint64        `json:"seq"`
	Kind    string        `json:"kind"`
	Job     *JobBoardRow  `json:"job,omitempty"`
	Thread  *ThreadView   `json:"thread,omitempty"`
	Board   []JobBoardRow `json:"board,omitempty"`
	Threads []ThreadView  `json:"threads,omitempty"`
}
