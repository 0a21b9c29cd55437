package projection_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace-management-api/internal/entity"
	"marketplace-management-api/internal/event"
	"marketplace-management-api/internal/projection"
	"marketplace-management-api/internal/repo"
	"marketplace-management-api/internal/repo/memdb"
)

type fixture struct {
	repos  *repo.Repositories
	viewer uuid.UUID
	view   *projection.View
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repos := memdb.NewRepositories()
	viewer := uuid.New()

	return &fixture{
		repos:  repos,
		viewer: viewer,
		view:   projection.NewView(viewer, repos),
	}
}

func (f *fixture) createUser(t *testing.T, role string) uuid.UUID {
	t.Helper()
	id, err := f.repos.User.CreateUser(context.Background(), &entity.RegisterUserInput{
		Email: uuid.NewString() + "@example.com", Name: "someone", Role: role,
	})
	require.NoError(t, err)

	return id
}

func (f *fixture) createJob(t *testing.T, owner uuid.UUID) *entity.Job {
	t.Helper()
	id, err := f.repos.Job.CreateJob(context.Background(), &entity.CreateJobInput{
		UserId: owner.String(), Title: "fix the sink", Description: "leaking",
		Budget: 120, Category: "plumbing", Location: "downtown",
	})
	require.NoError(t, err)
	job, err := f.repos.Job.GetJobById(context.Background(), id.String())
	require.NoError(t, err)

	return job
}

func TestApplyIgnoresDuplicateEvents(t *testing.T) {
	f := newFixture(t)
	job := f.createJob(t, f.viewer)

	evt := event.Event{Seq: 1, Kind: event.KindJobCreated, Job: job}
	deltas, err := f.view.Apply(context.Background(), evt)
	require.NoError(t, err)
	require.Len(t, deltas, 1)
	assert.Equal(t, entity.DeltaJobUpsert, deltas[0].Kind)

	deltas, err = f.view.Apply(context.Background(), evt)
	require.NoError(t, err)
	assert.Empty(t, deltas)
	assert.Len(t, f.view.Board(), 1)
	assert.Equal(t, uint64(1), f.view.LastSeq())
}

func TestBidBeforeJobBackfillsFromStore(t *testing.T) {
	f := newFixture(t)
	job := f.createJob(t, f.viewer)

	bid := entity.Bid{Id: uuid.New(), JobId: job.Id, BusinessId: uuid.New(),
		Amount: 80, Proposal: "can do tomorrow", Status: entity.BidPending}
	deltas, err := f.view.Apply(context.Background(), event.Event{Seq: 1, Kind: event.KindBidCreated, Bid: &bid})
	require.NoError(t, err)
	require.Len(t, deltas, 1)

	board := f.view.Board()
	require.Len(t, board, 1)
	assert.Equal(t, "fix the sink", board[0].Job.Title)
	require.Len(t, board[0].Bids, 1)
	assert.Equal(t, bid.Id, board[0].Bids[0].Id)
}

func TestBidForUnknownJobStaysPlaceholderUntilJobArrives(t *testing.T) {
	f := newFixture(t)
	jobId := uuid.New()

	bid := entity.Bid{Id: uuid.New(), JobId: jobId, BusinessId: uuid.New(),
		Amount: 50, Proposal: "offer", Status: entity.BidPending}
	_, err := f.view.Apply(context.Background(), event.Event{Seq: 1, Kind: event.KindBidCreated, Bid: &bid})
	require.NoError(t, err)

	board := f.view.Board()
	require.Len(t, board, 1)
	assert.Equal(t, jobId, board[0].Job.Id)
	assert.Empty(t, board[0].Job.Title)

	job := entity.Job{Id: jobId, UserId: f.viewer, Title: "paint the fence",
		Description: "two coats", Budget: 200, Status: entity.JobOpen, CreatedAt: "2026-08-30T10:00:00Z"}
	_, err = f.view.Apply(context.Background(), event.Event{Seq: 2, Kind: event.KindJobStatusChanged, Job: &job})
	require.NoError(t, err)

	board = f.view.Board()
	require.Len(t, board, 1, "placeholder must merge, not duplicate")
	assert.Equal(t, "paint the fence", board[0].Job.Title)
	require.Len(t, board[0].Bids, 1)
}

func TestBidDecisionPatchesExistingRow(t *testing.T) {
	f := newFixture(t)
	job := f.createJob(t, f.viewer)

	bid := entity.Bid{Id: uuid.New(), JobId: job.Id, BusinessId: uuid.New(),
		Amount: 80, Proposal: "offer", Status: entity.BidPending}
	_, err := f.view.Apply(context.Background(), event.Event{Seq: 1, Kind: event.KindJobCreated, Job: job})
	require.NoError(t, err)
	_, err = f.view.Apply(context.Background(), event.Event{Seq: 2, Kind: event.KindBidCreated, Bid: &bid})
	require.NoError(t, err)

	bid.Status = entity.BidAccepted
	_, err = f.view.Apply(context.Background(), event.Event{Seq: 3, Kind: event.KindBidDecided, Bid: &bid})
	require.NoError(t, err)

	board := f.view.Board()
	require.Len(t, board, 1)
	require.Len(t, board[0].Bids, 1)
	assert.Equal(t, entity.BidAccepted, board[0].Bids[0].Status)
}

func TestUnreadCountIsIdempotentAndFloorsAtZero(t *testing.T) {
	f := newFixture(t)
	counterparty := uuid.New()

	msg := entity.Message{Id: uuid.New(), SenderId: counterparty, ReceiverId: f.viewer,
		Content: "hello", CreatedAt: "2026-08-30T10:00:00Z"}
	deltas, err := f.view.Apply(context.Background(), event.Event{Seq: 1, Kind: event.KindMessageCreated, Message: &msg})
	require.NoError(t, err)
	require.Len(t, deltas, 1)
	assert.Equal(t, 1, deltas[0].Thread.UnreadCount)

	read := msg
	read.Read = true
	deltas, err = f.view.Apply(context.Background(), event.Event{Seq: 2, Kind: event.KindMessageRead, Message: &read})
	require.NoError(t, err)
	require.Len(t, deltas, 1)
	assert.Equal(t, 0, deltas[0].Thread.UnreadCount)

	// redelivered read must not push the count negative
	deltas, err = f.view.Apply(context.Background(), event.Event{Seq: 3, Kind: event.KindMessageRead, Message: &read})
	require.NoError(t, err)
	require.Len(t, deltas, 1)
	assert.Equal(t, 0, deltas[0].Thread.UnreadCount)
}

func TestMessagesForOtherViewersAreSkipped(t *testing.T) {
	f := newFixture(t)

	msg := entity.Message{Id: uuid.New(), SenderId: uuid.New(), ReceiverId: uuid.New(),
		Content: "not for us", CreatedAt: "2026-08-30T10:00:00Z"}
	deltas, err := f.view.Apply(context.Background(), event.Event{Seq: 1, Kind: event.KindMessageCreated, Message: &msg})
	require.NoError(t, err)
	assert.Empty(t, deltas)
	assert.Empty(t, f.view.Threads())
}

func TestRebuildMatchesAppliedEvents(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	counterparty := f.createUser(t, entity.RoleRequester)

	job := f.createJob(t, f.viewer)
	otherJob := f.createJob(t, counterparty) // not visible to the viewer

	msgId, err := f.repos.Message.CreateMessage(ctx, &entity.SendMessageInput{
		SenderId: counterparty.String(), ReceiverId: f.viewer.String(), Content: "hi",
	})
	require.NoError(t, err)
	msg, err := f.repos.Message.GetMessageById(ctx, msgId.String())
	require.NoError(t, err)

	applied := projection.NewView(f.viewer, f.repos)
	_, err = applied.Apply(ctx, event.Event{Seq: 1, Kind: event.KindJobCreated, Job: job})
	require.NoError(t, err)
	_, err = applied.Apply(ctx, event.Event{Seq: 2, Kind: event.KindMessageCreated, Message: msg})
	require.NoError(t, err)

	rebuilt := projection.NewView(f.viewer, f.repos)
	require.NoError(t, rebuilt.Rebuild(ctx))

	assert.Equal(t, applied.Board(), rebuilt.Board())
	assert.Equal(t, applied.Threads(), rebuilt.Threads())

	for _, row := range rebuilt.Board() {
		assert.NotEqual(t, otherJob.Id, row.Job.Id)
	}
}

func TestReduceThreadsGroupsByCounterparty(t *testing.T) {
	viewer := uuid.New()
	alice := uuid.New()
	bob := uuid.New()

	messages := []entity.Message{
		{Id: uuid.New(), SenderId: alice, ReceiverId: viewer, Content: "first", CreatedAt: "2026-08-30T10:00:00Z"},
		{Id: uuid.New(), SenderId: viewer, ReceiverId: alice, Content: "reply", CreatedAt: "2026-08-30T10:01:00Z"},
		{Id: uuid.New(), SenderId: alice, ReceiverId: viewer, Content: "again", CreatedAt: "2026-08-30T10:02:00Z"},
		{Id: uuid.New(), SenderId: bob, ReceiverId: viewer, Content: "hey", CreatedAt: "2026-08-30T09:00:00Z", Read: true},
	}

	threads := projection.ReduceThreads(viewer, messages)
	require.Len(t, threads, 2)

	// most recent thread first
	assert.Equal(t, alice, threads[0].CounterpartyId)
	assert.Equal(t, "again", threads[0].LastMessage.Content)
	assert.Equal(t, 2, threads[0].UnreadCount)

	assert.Equal(t, bob, threads[1].CounterpartyId)
	assert.Equal(t, 0, threads[1].UnreadCount)
}
