package service_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"marketplace-management-api/internal/entity"
	"marketplace-management-api/internal/feed"
	"marketplace-management-api/internal/repo"
	"marketplace-management-api/internal/repo/memdb"
	"marketplace-management-api/internal/service"
)

type testEnv struct {
	repos    *repo.Repositories
	feed     *feed.Log
	services *service.Services
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	repos := memdb.NewRepositories()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	feedLog, err := feed.NewLog(context.Background(), repos.Event, 0, logger)
	require.NoError(t, err)
	t.Cleanup(feedLog.Close)

	return &testEnv{
		repos:    repos,
		feed:     feedLog,
		services: service.NewServices(repos, feedLog, logger),
	}
}

func (e *testEnv) registerUser(t *testing.T, role string) *entity.UserOutputModel {
	t.Helper()
	user, err := e.services.Profile.RegisterUser(context.Background(), &entity.RegisterUserInput{
		Email: uuid.NewString() + "@example.com",
		Name:  "test user",
		Role:  role,
	})
	require.NoError(t, err)

	return user
}

// registerProvider registers a provider user together with its business
// profile and returns both.
func (e *testEnv) registerProvider(t *testing.T) (*entity.UserOutputModel, *entity.BusinessOutputModel) {
	t.Helper()
	user := e.registerUser(t, entity.RoleProvider)
	business, err := e.services.Profile.UpsertBusinessProfile(context.Background(), &entity.UpsertBusinessInput{
		UserId:   user.Id,
		Name:     "Handy Help",
		Category: "repair",
	})
	require.NoError(t, err)

	return user, business
}

func (e *testEnv) createJob(t *testing.T, ownerId string) *entity.JobOutputModel {
	t.Helper()
	job, err := e.services.Job.CreateJob(context.Background(), &entity.CreateJobInput{
		UserId:      ownerId,
		Title:       "assemble furniture",
		Description: "two bookshelves and a desk",
		Budget:      90,
		Category:    "assembly",
		Location:    "midtown",
	})
	require.NoError(t, err)

	return job
}

func (e *testEnv) submitBid(t *testing.T, jobId string, providerId string, businessId string) *entity.BidOutputModel {
	t.Helper()
	bid, err := e.services.Bid.SubmitBid(context.Background(), &entity.SubmitBidInput{
		JobId:      jobId,
		BusinessId: businessId,
		Amount:     75,
		Proposal:   "done by friday",
	}, providerId)
	require.NoError(t, err)

	return bid
}
