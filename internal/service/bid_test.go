package service_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace-management-api/internal/entity"
	"marketplace-management-api/internal/event"
	"marketplace-management-api/internal/service"
)

func TestSubmitBidValidation(t *testing.T) {
	env := newTestEnv(t)
	requester := env.registerUser(t, entity.RoleRequester)
	provider, business := env.registerProvider(t)
	job := env.createJob(t, requester.Id)
	ctx := context.Background()

	_, err := env.services.Bid.SubmitBid(ctx, &entity.SubmitBidInput{
		JobId: job.Id, BusinessId: business.Id, Amount: 0, Proposal: "free",
	}, provider.Id)
	assert.ErrorIs(t, err, service.ErrAmountNotPositive)

	_, err = env.services.Bid.SubmitBid(ctx, &entity.SubmitBidInput{
		JobId: job.Id, BusinessId: business.Id, Amount: 10, Proposal: "  ",
	}, provider.Id)
	assert.ErrorIs(t, err, service.ErrMissingFields)

	_, err = env.services.Bid.SubmitBid(ctx, &entity.SubmitBidInput{
		JobId: job.Id, BusinessId: business.Id, Amount: 10, Proposal: "offer",
	}, requester.Id)
	assert.ErrorIs(t, err, service.ErrNotBusinessOwner)
}

func TestSubmitBidOnOwnJobIsRejected(t *testing.T) {
	env := newTestEnv(t)
	provider, business := env.registerProvider(t)
	job := env.createJob(t, provider.Id)

	_, err := env.services.Bid.SubmitBid(context.Background(), &entity.SubmitBidInput{
		JobId: job.Id, BusinessId: business.Id, Amount: 10, Proposal: "myself",
	}, provider.Id)
	assert.ErrorIs(t, err, service.ErrBidOnOwnJob)
}

func TestDecideBidAcceptCascade(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	requester := env.registerUser(t, entity.RoleRequester)
	firstProvider, firstBusiness := env.registerProvider(t)
	secondProvider, secondBusiness := env.registerProvider(t)

	job := env.createJob(t, requester.Id)
	winner := env.submitBid(t, job.Id, firstProvider.Id, firstBusiness.Id)
	loser := env.submitBid(t, job.Id, secondProvider.Id, secondBusiness.Id)

	sub, err := env.feed.Subscribe(env.feed.LastSeq(), 16)
	require.NoError(t, err)
	defer sub.Cancel()

	accepted, err := env.services.Bid.DecideBid(ctx, winner.Id, entity.DecisionAccept, requester.Id)
	require.NoError(t, err)
	assert.Equal(t, entity.BidAccepted, accepted.Status)

	bids, err := env.services.Bid.GetJobBids(ctx, job.Id)
	require.NoError(t, err)
	require.Len(t, bids, 2)
	for _, bid := range bids {
		switch bid.Id {
		case winner.Id:
			assert.Equal(t, entity.BidAccepted, bid.Status)
		case loser.Id:
			assert.Equal(t, entity.BidRejected, bid.Status)
		}
	}

	updated, err := env.repos.Job.GetJobById(ctx, job.Id)
	require.NoError(t, err)
	assert.Equal(t, entity.JobInProgress, updated.Status)

	// the cascade announces the accepted bid, the auto-rejected sibling
	// and the job transition, in that order
	first := <-sub.C
	assert.Equal(t, event.KindBidDecided, first.Kind)
	assert.Equal(t, entity.BidAccepted, first.Bid.Status)

	second := <-sub.C
	assert.Equal(t, event.KindBidDecided, second.Kind)
	assert.Equal(t, entity.BidRejected, second.Bid.Status)

	third := <-sub.C
	assert.Equal(t, event.KindJobStatusChanged, third.Kind)
	assert.Equal(t, entity.JobInProgress, third.Job.Status)
}

func TestDecideBidConcurrentAcceptsPickExactlyOne(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	requester := env.registerUser(t, entity.RoleRequester)
	firstProvider, firstBusiness := env.registerProvider(t)
	secondProvider, secondBusiness := env.registerProvider(t)

	job := env.createJob(t, requester.Id)
	first := env.submitBid(t, job.Id, firstProvider.Id, firstBusiness.Id)
	second := env.submitBid(t, job.Id, secondProvider.Id, secondBusiness.Id)

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i, bidId := range []string{first.Id, second.Id} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, results[i] = env.services.Bid.DecideBid(ctx, bidId, entity.DecisionAccept, requester.Id)
		}()
	}
	wg.Wait()

	var wins, losses int
	for _, err := range results {
		if err == nil {
			wins++
			continue
		}
		losses++
		assert.ErrorIs(t, err, service.ErrInvalidState)
	}
	assert.Equal(t, 1, wins)
	assert.Equal(t, 1, losses)

	bids, err := env.services.Bid.GetJobBids(ctx, job.Id)
	require.NoError(t, err)
	var acceptedCount int
	for _, bid := range bids {
		if bid.Status == entity.BidAccepted {
			acceptedCount++
		}
	}
	assert.Equal(t, 1, acceptedCount)
}

func TestDecideBidReject(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	requester := env.registerUser(t, entity.RoleRequester)
	provider, business := env.registerProvider(t)

	job := env.createJob(t, requester.Id)
	bid := env.submitBid(t, job.Id, provider.Id, business.Id)

	rejected, err := env.services.Bid.DecideBid(ctx, bid.Id, entity.DecisionReject, requester.Id)
	require.NoError(t, err)
	assert.Equal(t, entity.BidRejected, rejected.Status)

	// the job stays open for new bids
	updated, err := env.repos.Job.GetJobById(ctx, job.Id)
	require.NoError(t, err)
	assert.Equal(t, entity.JobOpen, updated.Status)
	env.submitBid(t, job.Id, provider.Id, business.Id)

	_, err = env.services.Bid.DecideBid(ctx, bid.Id, entity.DecisionReject, requester.Id)
	assert.ErrorIs(t, err, service.ErrBidAlreadyDecided)
}

func TestDecideBidAuthorization(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	requester := env.registerUser(t, entity.RoleRequester)
	stranger := env.registerUser(t, entity.RoleRequester)
	provider, business := env.registerProvider(t)

	job := env.createJob(t, requester.Id)
	bid := env.submitBid(t, job.Id, provider.Id, business.Id)

	_, err := env.services.Bid.DecideBid(ctx, bid.Id, entity.DecisionAccept, stranger.Id)
	assert.ErrorIs(t, err, service.ErrNotJobOwner)

	_, err = env.services.Bid.DecideBid(ctx, bid.Id, "maybe", requester.Id)
	assert.ErrorIs(t, err, service.ErrInvalidDecision)
}

func TestSubmitBidOnClosedJob(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	requester := env.registerUser(t, entity.RoleRequester)
	firstProvider, firstBusiness := env.registerProvider(t)
	secondProvider, secondBusiness := env.registerProvider(t)

	job := env.createJob(t, requester.Id)
	bid := env.submitBid(t, job.Id, firstProvider.Id, firstBusiness.Id)

	_, err := env.services.Bid.DecideBid(ctx, bid.Id, entity.DecisionAccept, requester.Id)
	require.NoError(t, err)

	_, err = env.services.Bid.SubmitBid(ctx, &entity.SubmitBidInput{
		JobId: job.Id, BusinessId: secondBusiness.Id, Amount: 60, Proposal: "late offer",
	}, secondProvider.Id)
	assert.ErrorIs(t, err, service.ErrJobNotOpen)
}
