package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"marketplace-management-api/internal/entity"
	"marketplace-management-api/internal/event"
	"marketplace-management-api/internal/feed"
	"marketplace-management-api/internal/repo"
	"marketplace-management-api/internal/repo/repo_errors"
)

type JobService struct {
	jobRepo      repo.Job
	bidRepo      repo.Bid
	userRepo     repo.User
	businessRepo repo.Business
	feed         *feed.Log
	locks        *jobLocks
	logger       *slog.Logger
}

func NewJobService(repos *repo.Repositories, feedLog *feed.Log, locks *jobLocks, logger *slog.Logger) *JobService {
	return &JobService{
		jobRepo:      repos.Job,
		bidRepo:      repos.Bid,
		userRepo:     repos.User,
		businessRepo: repos.Business,
		feed:         feedLog,
		locks:        locks,
		logger:       logger,
	}
}

func (s *JobService) CreateJob(ctx context.Context, input *entity.CreateJobInput) (*entity.JobOutputModel, error) {
	if input.Budget <= 0 {
		return nil, ErrBudgetNotPositive
	}
	if strings.TrimSpace(input.Title) == "" || strings.TrimSpace(input.Description) == "" ||
		strings.TrimSpace(input.Category) == "" || strings.TrimSpace(input.Location) == "" {
		return nil, ErrMissingFields
	}

	_, err := s.userRepo.GetUserById(ctx, input.UserId)
	if err != nil {
		if errors.Is(err, repo_errors.ErrNotFound) {
			return nil, ErrUserNotFound
		}

		return nil, err
	}

	id, err := s.jobRepo.CreateJob(ctx, input)
	if err != nil {
		return nil, err
	}

	job, err := s.jobRepo.GetJobById(ctx, id.String())
	if err != nil {
		return nil, err
	}

	err = s.feed.Append(ctx, &event.Event{
		Kind:         event.KindJobCreated,
		Participants: []uuid.UUID{job.UserId},
		Job:          job,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("job created", "job", job.Id, "user", job.UserId)

	return mapJob(job), nil
}

func (s *JobService) CompleteJob(ctx context.Context, jobId string, actingUserId string) (*entity.JobOutputModel, error) {
	job, err := s.jobRepo.GetJobById(ctx, jobId)
	if err != nil {
		if errors.Is(err, repo_errors.ErrNotFound) {
			return nil, ErrJobNotFound
		}

		return nil, err
	}

	if job.UserId.String() != actingUserId {
		return nil, ErrNotJobOwner
	}

	unlock := s.locks.lock(job.Id)
	defer unlock()

	job, err = s.jobRepo.GetJobById(ctx, jobId)
	if err != nil {
		return nil, err
	}
	if job.Status != entity.JobInProgress {
		return nil, ErrJobNotInProgress
	}

	err = s.jobRepo.UpdateJobStatusById(ctx, jobId, entity.JobInProgress, entity.JobCompleted)
	if err != nil {
		if errors.Is(err, repo_errors.ErrConflict) {
			return nil, ErrConflict
		}

		return nil, err
	}

	job, err = s.jobRepo.GetJobById(ctx, jobId)
	if err != nil {
		return nil, err
	}

	participants, err := jobParticipants(ctx, s.bidRepo, s.businessRepo, job)
	if err != nil {
		return nil, err
	}

	err = s.feed.Append(ctx, &event.Event{
		Kind:         event.KindJobStatusChanged,
		Participants: participants,
		Job:          job,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("job completed", "job", job.Id)

	return mapJob(job), nil
}

func (s *JobService) GetJobBoard(ctx context.Context, pg *entity.PaginationInput) ([]entity.JobBoardRow, error) {
	jobs, err := s.jobRepo.GetJobs(ctx, pg)
	if err != nil {
		return nil, err
	}

	board := make([]entity.JobBoardRow, 0, len(jobs))
	for _, job := range jobs {
		bids, err := s.bidRepo.GetJobBids(ctx, job.Id.String())
		if err != nil {
			return nil, err
		}
		board = append(board, entity.JobBoardRow{Job: job, Bids: bids})
	}

	return board, nil
}

// jobParticipants lists the users a job event is routed to: the owning
// requester plus the owning user of every bidding business.
func jobParticipants(ctx context.Context, bidRepo repo.Bid, businessRepo repo.Business, job *entity.Job) ([]uuid.UUID, error) {
	participants := []uuid.UUID{job.UserId}

	bids, err := bidRepo.GetJobBids(ctx, job.Id.String())
	if err != nil {
		return nil, err
	}
	for _, bid := range bids {
		business, err := businessRepo.GetBusinessById(ctx, bid.BusinessId.String())
		if err != nil {
			return nil, err
		}
		participants = appendParticipant(participants, business.UserId)
	}

	return participants, nil
}

func appendParticipant(participants []uuid.UUID, id uuid.UUID) []uuid.UUID {
	for _, existing := range participants {
		if existing == id {
			return participants
		}
	}

	return append(participants, id)
}
