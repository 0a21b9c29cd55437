package dispatcher_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"marketplace-management-api/internal/dispatcher"
	"marketplace-management-api/internal/entity"
	"marketplace-management-api/internal/event"
	"marketplace-management-api/internal/feed"
	"marketplace-management-api/internal/repo"
	"marketplace-management-api/internal/repo/memdb"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type harness struct {
	repos *repo.Repositories
	feed  *feed.Log
	disp  *dispatcher.Dispatcher
}

func newHarness(t *testing.T, retention int, queueSize int) *harness {
	t.Helper()
	repos := memdb.NewRepositories()
	log, err := feed.NewLog(context.Background(), repos.Event, retention, nil)
	require.NoError(t, err)

	d := dispatcher.New(log, repos, queueSize, nil)
	t.Cleanup(func() {
		d.Shutdown()
		log.Close()
	})

	return &harness{repos: repos, feed: log, disp: d}
}

func (h *harness) createJob(t *testing.T, owner uuid.UUID) *entity.Job {
	t.Helper()
	id, err := h.repos.Job.CreateJob(context.Background(), &entity.CreateJobInput{
		UserId: owner.String(), Title: "mow the lawn", Description: "weekly",
		Budget: 40, Category: "garden", Location: "suburbs",
	})
	require.NoError(t, err)
	job, err := h.repos.Job.GetJobById(context.Background(), id.String())
	require.NoError(t, err)

	return job
}

func (h *harness) emitJob(t *testing.T, job *entity.Job, participants ...uuid.UUID) {
	t.Helper()
	err := h.feed.Append(context.Background(), &event.Event{
		Kind:         event.KindJobCreated,
		Participants: participants,
		Job:          job,
	})
	require.NoError(t, err)
}

type chanSender struct {
	deltas chan entity.ViewDelta
}

func newChanSender() *chanSender {
	return &chanSender{deltas: make(chan entity.ViewDelta, 128)}
}

func (s *chanSender) Send(delta entity.ViewDelta) error {
	s.deltas <- delta
	return nil
}

func (s *chanSender) next(t *testing.T) entity.ViewDelta {
	t.Helper()
	select {
	case delta := <-s.deltas:
		return delta
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for delta")
	}

	return entity.ViewDelta{}
}

func (s *chanSender) expectNone(t *testing.T) {
	t.Helper()
	select {
	case delta := <-s.deltas:
		t.Fatalf("unexpected delta: %+v", delta)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestDeltasReachOnlyParticipants(t *testing.T) {
	h := newHarness(t, 0, 16)
	owner := uuid.New()
	bystander := uuid.New()

	ownerSender := newChanSender()
	bystanderSender := newChanSender()
	ownerSession, err := h.disp.Attach(context.Background(), owner, h.feed.LastSeq(), ownerSender)
	require.NoError(t, err)
	defer ownerSession.Close()
	bystanderSession, err := h.disp.Attach(context.Background(), bystander, h.feed.LastSeq(), bystanderSender)
	require.NoError(t, err)
	defer bystanderSession.Close()

	job := h.createJob(t, owner)
	h.emitJob(t, job, owner)

	delta := ownerSender.next(t)
	assert.Equal(t, entity.DeltaJobUpsert, delta.Kind)
	require.NotNil(t, delta.Job)
	assert.Equal(t, job.Id, delta.Job.Job.Id)

	bystanderSender.expectNone(t)
}

func TestAttachPastRetentionStartsWithResync(t *testing.T) {
	h := newHarness(t, 2, 16)
	owner := uuid.New()

	jobs := make([]*entity.Job, 0, 5)
	for range 5 {
		job := h.createJob(t, owner)
		jobs = append(jobs, job)
		h.emitJob(t, job, owner)
	}

	sender := newChanSender()
	session, err := h.disp.Attach(context.Background(), owner, 0, sender)
	require.NoError(t, err)
	defer session.Close()

	delta := sender.next(t)
	assert.Equal(t, entity.DeltaResync, delta.Kind)
	assert.Len(t, delta.Board, len(jobs))
}

func TestSlowConsumerIsResynced(t *testing.T) {
	h := newHarness(t, 0, 1)
	owner := uuid.New()

	gate := make(chan struct{})
	sender := newChanSender()
	gated := &gatedSender{gate: gate, inner: sender}

	session, err := h.disp.Attach(context.Background(), owner, h.feed.LastSeq(), gated)
	require.NoError(t, err)
	defer session.Close()

	// first delivery blocks in Send while the queue (size 1) overflows
	for range 4 {
		h.emitJob(t, h.createJob(t, owner), owner)
	}
	close(gate)

	deadline := time.After(5 * time.Second)
	for {
		select {
		case delta := <-sender.deltas:
			if delta.Kind != entity.DeltaResync {
				continue
			}
			assert.Len(t, delta.Board, 4)
			return
		case <-deadline:
			t.Fatal("expected a resync delta after overflow")
		}
	}
}

type gatedSender struct {
	gate  <-chan struct{}
	inner *chanSender
}

func (s *gatedSender) Send(delta entity.ViewDelta) error {
	<-s.gate
	return s.inner.Send(delta)
}

func TestSessionCloseDetaches(t *testing.T) {
	h := newHarness(t, 0, 16)

	session, err := h.disp.Attach(context.Background(), uuid.New(), 0, newChanSender())
	require.NoError(t, err)
	assert.Equal(t, 1, h.disp.ActiveSessions())

	session.Close()
	assert.Equal(t, 0, h.disp.ActiveSessions())
}

func TestShutdownDetachesEverySession(t *testing.T) {
	h := newHarness(t, 0, 16)

	first, err := h.disp.Attach(context.Background(), uuid.New(), 0, newChanSender())
	require.NoError(t, err)
	second, err := h.disp.Attach(context.Background(), uuid.New(), 0, newChanSender())
	require.NoError(t, err)

	h.disp.Shutdown()

	<-first.Done()
	<-second.Done()
	assert.Equal(t, 0, h.disp.ActiveSessions())

	_, err = h.disp.Attach(context.Background(), uuid.New(), 0, newChanSender())
	assert.ErrorIs(t, err, feed.ErrClosed)
}

func TestSendErrorEndsSession(t *testing.T) {
	h := newHarness(t, 0, 16)
	owner := uuid.New()

	session, err := h.disp.Attach(context.Background(), owner, h.feed.LastSeq(), failSender{})
	require.NoError(t, err)

	h.emitJob(t, h.createJob(t, owner), owner)

	select {
	case <-session.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("session should end when the sender fails")
	}
	assert.Equal(t, 0, h.disp.ActiveSessions())
}

type failSender struct{}

func (failSender) Send(entity.ViewDelta) error {
	return assert.AnError
}
