package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace-management-api/internal/entity"
	"marketplace-management-api/internal/service"
)

func TestCreateJobValidation(t *testing.T) {
	env := newTestEnv(t)
	requester := env.registerUser(t, entity.RoleRequester)
	ctx := context.Background()

	_, err := env.services.Job.CreateJob(ctx, &entity.CreateJobInput{
		UserId: requester.Id, Title: "cheap work", Description: "d", Budget: -5,
		Category: "misc", Location: "here",
	})
	assert.ErrorIs(t, err, service.ErrBudgetNotPositive)

	_, err = env.services.Job.CreateJob(ctx, &entity.CreateJobInput{
		UserId: requester.Id, Title: " ", Description: "d", Budget: 10,
		Category: "misc", Location: "here",
	})
	assert.ErrorIs(t, err, service.ErrMissingFields)

	_, err = env.services.Job.CreateJob(ctx, &entity.CreateJobInput{
		UserId: uuid.NewString(), Title: "t", Description: "d", Budget: 10,
		Category: "misc", Location: "here",
	})
	assert.ErrorIs(t, err, service.ErrUserNotFound)
}

func TestCreateJobStartsOpen(t *testing.T) {
	env := newTestEnv(t)
	requester := env.registerUser(t, entity.RoleRequester)

	job := env.createJob(t, requester.Id)
	assert.Equal(t, entity.JobOpen, job.Status)
	assert.Equal(t, requester.Id, job.UserId)
	assert.Equal(t, uint64(1), env.feed.LastSeq(), "creation must land on the feed")
}

func TestCompleteJobLifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	requester := env.registerUser(t, entity.RoleRequester)
	provider, business := env.registerProvider(t)

	job := env.createJob(t, requester.Id)

	// an open job cannot be completed
	_, err := env.services.Job.CompleteJob(ctx, job.Id, requester.Id)
	assert.ErrorIs(t, err, service.ErrJobNotInProgress)

	bid := env.submitBid(t, job.Id, provider.Id, business.Id)
	_, err = env.services.Bid.DecideBid(ctx, bid.Id, entity.DecisionAccept, requester.Id)
	require.NoError(t, err)

	_, err = env.services.Job.CompleteJob(ctx, job.Id, provider.Id)
	assert.ErrorIs(t, err, service.ErrNotJobOwner)

	completed, err := env.services.Job.CompleteJob(ctx, job.Id, requester.Id)
	require.NoError(t, err)
	assert.Equal(t, entity.JobCompleted, completed.Status)

	_, err = env.services.Job.CompleteJob(ctx, job.Id, requester.Id)
	assert.ErrorIs(t, err, service.ErrJobNotInProgress)
}

func TestGetJobBoardNestsBids(t *testing.T) {
	env := newTestEnv(t)
	requester := env.registerUser(t, entity.RoleRequester)
	provider, business := env.registerProvider(t)

	first := env.createJob(t, requester.Id)
	second := env.createJob(t, requester.Id)
	env.submitBid(t, first.Id, provider.Id, business.Id)

	board, err := env.services.Job.GetJobBoard(context.Background(), entity.NewPaginationInput(10, 0))
	require.NoError(t, err)
	require.Len(t, board, 2)

	byId := make(map[string][]entity.Bid, len(board))
	for _, row := range board {
		byId[row.Job.Id.String()] = row.Bids
	}
	assert.Len(t, byId[first.Id], 1)
	assert.Empty(t, byId[second.Id])
}
