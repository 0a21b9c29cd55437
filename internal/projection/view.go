// Package projection maintains the per-viewer read models: the job
// board (jobs annotated with their bids) and the chat thread summaries.
// Views are updated incrementally from change feed events and are only
// recomputed from the store on an explicit rebuild (resync).
package projection

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"marketplace-management-api/internal/entity"
	"marketplace-management-api/internal/event"
)

const rebuildPageLimit = 500

// Source is the store surface the view needs for targeted backfill and
// full rebuilds. repo.Repositories satisfies it.
type Source interface {
	GetJobById(ctx context.Context, id string) (*entity.Job, error)
	GetJobsForUser(ctx context.Context, userId string, pg *entity.PaginationInput) ([]entity.Job, error)
	GetJobBids(ctx context.Context, jobId string) ([]entity.Bid, error)
	GetUserMessages(ctx context.Context, userId string) ([]entity.Message, error)
}

type boardRow struct {
	job  entity.Job
	bids []entity.Bid
	// known is false while the row is a placeholder materialized from a
	// bid event that referenced a job the view had not seen yet.
	known bool
}

type threadState struct {
	last    entity.Message
	lastSeq uint64
	// unread message ids addressed to the viewer; counting by id keeps
	// event application idempotent under redelivery.
	unread map[uuid.UUID]struct{}
}

// View is the projection state for one viewer. Not safe for concurrent
// use; the dispatcher drives each view from a single goroutine.
type View struct {
	viewer  uuid.UUID
	source  Source
	lastSeq uint64

	board    []*boardRow
	rowIndex map[uuid.UUID]*boardRow
	threads  map[uuid.UUID]*threadState
}

func NewView(viewer uuid.UUID, source Source) *View {
	return &View{
		viewer:   viewer,
		source:   source,
		rowIndex: make(map[uuid.UUID]*boardRow),
		threads:  make(map[uuid.UUID]*threadState),
	}
}

// LastSeq returns the sequence number of the last applied event.
func (v *View) LastSeq() uint64 {
	return v.lastSeq
}

// SetLastSeq moves the idempotence watermark. The dispatcher sets it to
// the feed position captured when a rebuild started, so the client can
// resume from the resync snapshot.
func (v *View) SetLastSeq(seq uint64) {
	v.lastSeq = seq
}

// Apply folds one event into the view and returns the deltas to push.
// Events at or below the last applied sequence number are no-ops, so
// duplicate delivery is safe.
func (v *View) Apply(ctx context.Context, evt event.Event) ([]entity.ViewDelta, error) {
	if evt.Seq != 0 && evt.Seq <= v.lastSeq {
		return nil, nil
	}

	var deltas []entity.ViewDelta
	switch evt.Kind {
	case event.KindJobCreated, event.KindJobStatusChanged:
		if evt.Job != nil {
			deltas = v.applyJob(evt.Seq, *evt.Job)
		}
	case event.KindBidCreated, event.KindBidDecided:
		if evt.Bid != nil {
			deltas = v.applyBid(ctx, evt.Seq, *evt.Bid)
		}
	case event.KindMessageCreated:
		if evt.Message != nil {
			deltas = v.applyMessageCreated(evt.Seq, *evt.Message)
		}
	case event.KindMessageRead:
		if evt.Message != nil {
			deltas = v.applyMessageRead(evt.Seq, *evt.Message)
		}
	}

	if evt.Seq > v.lastSeq {
		v.lastSeq = evt.Seq
	}

	return deltas, nil
}

func (v *View) applyJob(seq uint64, job entity.Job) []entity.ViewDelta {
	row, ok := v.rowIndex[job.Id]
	if !ok {
		row = &boardRow{bids: make([]entity.Bid, 0)}
		v.rowIndex[job.Id] = row
		v.board = append(v.board, row)
	}
	row.job = job
	row.known = true
	v.sortBoard()

	return []entity.ViewDelta{v.jobDelta(seq, row)}
}

func (v *View) applyBid(ctx context.Context, seq uint64, bid entity.Bid) []entity.ViewDelta {
	row, ok := v.rowIndex[bid.JobId]
	if !ok {
		// Bid arrived before its job: materialize on first reference and
		// backfill the job row with a targeted refetch.
		row = &boardRow{job: entity.Job{Id: bid.JobId}, bids: make([]entity.Bid, 0)}
		if job, err := v.source.GetJobById(ctx, bid.JobId.String()); err == nil {
			row.job = *job
			row.known = true
		}
		v.rowIndex[bid.JobId] = row
		v.board = append(v.board, row)
		v.sortBoard()
	}

	// patch the nested bid list only
	patched := false
	for i := range row.bids {
		if row.bids[i].Id == bid.Id {
			row.bids[i] = bid
			patched = true
			break
		}
	}
	if !patched {
		row.bids = append(row.bids, bid)
	}

	return []entity.ViewDelta{v.jobDelta(seq, row)}
}

func (v *View) applyMessageCreated(seq uint64, msg entity.Message) []entity.ViewDelta {
	counterparty, ok := v.counterparty(msg)
	if !ok {
		return nil
	}

	thread, ok := v.threads[counterparty]
	if !ok {
		thread = &threadState{unread: make(map[uuid.UUID]struct{})}
		v.threads[counterparty] = thread
	}

	if thread.last.Id == uuid.Nil || messageNewer(msg, seq, thread.last, thread.lastSeq) {
		thread.last = msg
		thread.lastSeq = seq
	}
	if msg.ReceiverId == v.viewer && !msg.Read {
		thread.unread[msg.Id] = struct{}{}
	}

	return []entity.ViewDelta{v.threadDelta(seq, counterparty, thread)}
}

func (v *View) applyMessageRead(seq uint64, msg entity.Message) []entity.ViewDelta {
	counterparty, ok := v.counterparty(msg)
	if !ok {
		return nil
	}

	thread, ok := v.threads[counterparty]
	if !ok {
		return nil
	}

	if msg.ReceiverId == v.viewer {
		delete(thread.unread, msg.Id)
	}
	if thread.last.Id == msg.Id {
		thread.last.Read = true
	}

	return []entity.ViewDelta{v.threadDelta(seq, counterparty, thread)}
}

func (v *View) counterparty(msg entity.Message) (uuid.UUID, bool) {
	switch v.viewer {
	case msg.SenderId:
		return msg.ReceiverId, true
	case msg.ReceiverId:
		return msg.SenderId, true
	}

	return uuid.Nil, false
}

// Rebuild recomputes both views from the store. Used on resync, when the
// feed can no longer replay the events the view missed.
func (v *View) Rebuild(ctx context.Context) error {
	pg := entity.NewPaginationInput(rebuildPageLimit, 0)
	jobs, err := v.source.GetJobsForUser(ctx, v.viewer.String(), pg)
	if err != nil {
		return err
	}

	board := make([]*boardRow, 0, len(jobs))
	rowIndex := make(map[uuid.UUID]*boardRow, len(jobs))
	for _, job := range jobs {
		bids, err := v.source.GetJobBids(ctx, job.Id.String())
		if err != nil {
			return err
		}
		row := &boardRow{job: job, bids: bids, known: true}
		board = append(board, row)
		rowIndex[job.Id] = row
	}

	messages, err := v.source.GetUserMessages(ctx, v.viewer.String())
	if err != nil {
		return err
	}

	v.board = board
	v.rowIndex = rowIndex
	v.threads = buildThreads(v.viewer, messages)
	v.sortBoard()

	return nil
}

// Board returns the job board, newest jobs first.
func (v *View) Board() []entity.JobBoardRow {
	rows := make([]entity.JobBoardRow, 0, len(v.board))
	for _, row := range v.board {
		rows = append(rows, entity.JobBoardRow{Job: row.job, Bids: append([]entity.Bid(nil), row.bids...)})
	}

	return rows
}

// Threads returns the chat thread summaries, most recent first.
func (v *View) Threads() []entity.ThreadView {
	return sortThreadViews(v.threads)
}

func (v *View) jobDelta(seq uint64, row *boardRow) entity.ViewDelta {
	return entity.ViewDelta{
		Seq:  seq,
		Kind: entity.DeltaJobUpsert,
		Job:  &entity.JobBoardRow{Job: row.job, Bids: append([]entity.Bid(nil), row.bids...)},
	}
}

func (v *View) threadDelta(seq uint64, counterparty uuid.UUID, thread *threadState) entity.ViewDelta {
	return entity.ViewDelta{
		Seq:  seq,
		Kind: entity.DeltaThreadUpsert,
		Thread: &entity.ThreadView{
			CounterpartyId: counterparty,
			LastMessage:    thread.last,
			UnreadCount:    len(thread.unread),
		},
	}
}

// ResyncDelta snapshots the whole view for delivery after a rebuild.
func (v *View) ResyncDelta() entity.ViewDelta {
	return entity.ViewDelta{
		Seq:     v.lastSeq,
		Kind:    entity.DeltaResync,
		Board:   v.Board(),
		Threads: v.Threads(),
	}
}

func (v *View) sortBoard() {
	sort.SliceStable(v.board, func(i, j int) bool {
		a, b := v.board[i], v.board[j]
		// placeholders sink until their job is backfilled
		if a.known != b.known {
			return a.known
		}
		at, aerr := time.Parse(time.RFC3339, a.job.CreatedAt)
		bt, berr := time.Parse(time.RFC3339, b.job.CreatedAt)
		if aerr != nil || berr != nil {
			return false
		}
		return at.After(bt)
	})
}

// messageNewer reports whether message a supersedes b as the thread's
// last message. created_at decides; equal timestamps fall back to the
// feed sequence number.
func messageNewer(a entity.Message, aSeq uint64, b entity.Message, bSeq uint64) bool {
	at, aerr := time.Parse(time.RFC3339, a.CreatedAt)
	bt, berr := time.Parse(time.RFC3339, b.CreatedAt)
	if aerr == nil && berr == nil {
		if at.After(bt) {
			return true
		}
		if bt.After(at) {
			return false
		}
	}

	return aSeq >= bSeq
}
