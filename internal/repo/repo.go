package repo

import (
	"context"

	"github.com/google/uuid"

	"marketplace-management-api/internal/entity"
	"marketplace-management-api/internal/event"
	"marketplace-management-api/pkg/postgres"

	"marketplace-management-api/internal/repo/pgdb"
)

type Diagnostics interface {
	Ping() error
}

type User interface {
	CreateUser(ctx context.Context, input *entity.RegisterUserInput) (uuid.UUID, error)
	GetUserById(ctx context.Context, id string) (*entity.User, error)
	GetUserByEmail(ctx context.Context, email string) (*entity.User, error)
	SetUserProfileComplete(ctx context.Context, id string) error
}

type Business interface {
	UpsertBusinessProfile(ctx context.Context, input *entity.UpsertBusinessInput) (uuid.UUID, error)
	GetBusinessById(ctx context.Context, id string) (*entity.BusinessProfile, error)
	GetBusinessByUserId(ctx context.Context, userId string) (*entity.BusinessProfile, error)
	GetBusinesses(ctx context.Context, category string, pg *entity.PaginationInput) ([]entity.BusinessProfile, error)
}

type Job interface {
	CreateJob(ctx context.Context, input *entity.CreateJobInput) (uuid.UUID, error)
	GetJobById(ctx context.Context, id string) (*entity.Job, error)
	// UpdateJobStatusById advances a job from one status to another.
	// Returns repo_errors.ErrConflict if the job is no longer in the
	// expected status.
	UpdateJobStatusById(ctx context.Context, id string, from string, to string) error
	GetJobs(ctx context.Context, pg *entity.PaginationInput) ([]entity.Job, error)
	// GetJobsForUser returns jobs the user participates in, either as the
	// owning requester or through a bid by their business.
	GetJobsForUser(ctx context.Context, userId string, pg *entity.PaginationInput) ([]entity.Job, error)
}

type Bid interface {
	CreateBid(ctx context.Context, input *entity.SubmitBidInput) (uuid.UUID, error)
	GetBidById(ctx context.Context, id string) (*entity.Bid, error)
	GetJobBids(ctx context.Context, jobId string) ([]entity.Bid, error)
	// AcceptBidCascade atomically accepts the bid, rejects every other
	// pending bid on the job and advances the job to in_progress. Returns
	// the ids of the rejected siblings. Returns repo_errors.ErrConflict if
	// the bid is no longer pending or the job is no longer open.
	AcceptBidCascade(ctx context.Context, bidId string, jobId string) ([]uuid.UUID, error)
	// RejectBid rejects a pending bid. Returns repo_errors.ErrConflict if
	// the bid is no longer pending.
	RejectBid(ctx context.Context, bidId string) error
}

type Message interface {
	CreateMessage(ctx context.Context, input *entity.SendMessageInput) (uuid.UUID, error)
	GetMessageById(ctx context.Context, id string) (*entity.Message, error)
	// MarkMessageRead flips the read flag. The boolean reports whether the
	// flag actually changed; marking an already-read message is a no-op.
	MarkMessageRead(ctx context.Context, id string) (bool, error)
	GetUserMessages(ctx context.Context, userId string) ([]entity.Message, error)
}

type Event interface {
	// AppendEvent persists an event with its already-assigned sequence number.
	AppendEvent(ctx context.Context, evt *event.Event) error
	// LatestSeq returns the highest persisted sequence number, 0 when empty.
	LatestSeq(ctx context.Context) (uint64, error)
}

type Repositories struct {
	Diagnostics
	User
	Business
	Job
	Bid
	Message
	Event
}

func NewRepositories(p *postgres.Postgres) *Repositories {
	return &Repositories{
		Diagnostics: pgdb.NewDiagnosticsRepo(p),
		User:        pgdb.NewUserRepo(p),
		Business:    pgdb.NewBusinessRepo(p),
		Job:         pgdb.NewJobRepo(p),
		Bid:         pgdb.NewBidRepo(p),
		Message:     pgdb.NewMessageRepo(p),
		Event:       pgdb.NewEventRepo(p),
	}
}
