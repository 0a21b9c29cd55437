package service

import (
	"context"
	"log/slog"

	"marketplace-management-api/internal/entity"
	"marketplace-management-api/internal/feed"
	"marketplace-management-api/internal/repo"
)

type Diagnostics interface {
	Ping() error
}

type Job interface {
	CreateJob(ctx context.Context, input *entity.CreateJobInput) (*entity.JobOutputModel, error)
	CompleteJob(ctx context.Context, jobId string, actingUserId string) (*entity.JobOutputModel, error)
	GetJobBoard(ctx context.Context, pg *entity.PaginationInput) ([]entity.JobBoardRow, error)
}

type Bid interface {
	SubmitBid(ctx context.Context, input *entity.SubmitBidInput, actingUserId string) (*entity.BidOutputModel, error)
	DecideBid(ctx context.Context, bidId string, decision string, actingUserId string) (*entity.BidOutputModel, error)
	GetJobBids(ctx context.Context, jobId string) ([]entity.BidOutputModel, error)
}

type Message interface {
	SendMessage(ctx context.Context, input *entity.SendMessageInput) (*entity.MessageOutputModel, error)
	MarkMessageRead(ctx context.Context, messageId string, actingUserId string) (*entity.MessageOutputModel, error)
	GetChatThreads(ctx context.Context, userId string) ([]entity.ThreadView, error)
}

type Profile interface {
	RegisterUser(ctx context.Context, input *entity.RegisterUserInput) (*entity.UserOutputModel, error)
	CompleteUserOnboarding(ctx context.Context, userId string) (*entity.UserOutputModel, error)
	GetUserById(ctx context.Context, userId string) (*entity.UserOutputModel, error)
	UpsertBusinessProfile(ctx context.Context, input *entity.UpsertBusinessInput) (*entity.BusinessOutputModel, error)
	GetBusinessById(ctx context.Context, businessId string) (*entity.BusinessOutputModel, error)
	GetBusinesses(ctx context.Context, category string, pg *entity.PaginationInput) ([]entity.BusinessOutputModel, error)
}

type Services struct {
	Diagnostics Diagnostics
	Job         Job
	Bid         Bid
	Message     Message
	Profile     Profile
}

func NewServices(repos *repo.Repositories, feedLog *feed.Log, logger *slog.Logger) *Services {
	if logger == nil {
		logger = slog.Default()
	}
	locks := newJobLocks()

	return &Services{
		Diagnostics: NewDiagnosticsService(repos),
		Job:         NewJobService(repos, feedLog, locks, logger),
		Bid:         NewBidService(repos, feedLog, locks, logger),
		Message:     NewMessageService(repos, feedLog, logger),
		Profile:     NewProfileService(repos, logger),
	}
}
