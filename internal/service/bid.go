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

type BidService struct {
	bidRepo      repo.Bid
	jobRepo      repo.Job
	businessRepo repo.Business
	feed         *feed.Log
	locks        *jobLocks
	logger       *slog.Logger
}

func NewBidService(repos *repo.Repositories, feedLog *feed.Log, locks *jobLocks, logger *slog.Logger) *BidService {
	return &BidService{
		bidRepo:      repos.Bid,
		jobRepo:      repos.Job,
		businessRepo: repos.Business,
		feed:         feedLog,
		locks:        locks,
		logger:       logger,
	}
}

func (s *BidService) SubmitBid(ctx context.Context, input *entity.SubmitBidInput, actingUserId string) (*entity.BidOutputModel, error) {
	if input.Amount <= 0 {
		return nil, ErrAmountNotPositive
	}
	if strings.TrimSpace(input.Proposal) == "" {
		return nil, ErrMissingFields
	}

	business, err := s.businessRepo.GetBusinessById(ctx, input.BusinessId)
	if err != nil {
		if errors.Is(err, repo_errors.ErrNotFound) {
			return nil, ErrBusinessNotFound
		}

		return nil, err
	}

	if business.UserId.String() != actingUserId {
		return nil, ErrNotBusinessOwner
	}

	job, err := s.jobRepo.GetJobById(ctx, input.JobId)
	if err != nil {
		if errors.Is(err, repo_errors.ErrNotFound) {
			return nil, ErrJobNotFound
		}

		return nil, err
	}

	if business.UserId == job.UserId {
		return nil, ErrBidOnOwnJob
	}
	if job.Status != entity.JobOpen {
		return nil, ErrJobNotOpen
	}

	unlock := s.locks.lock(job.Id)
	defer unlock()

	id, err := s.bidRepo.CreateBid(ctx, input)
	if err != nil {
		// the job closed between the status check and the insert
		if errors.Is(err, repo_errors.ErrConflict) {
			return nil, ErrJobNotOpen
		}

		return nil, err
	}

	bid, err := s.bidRepo.GetBidById(ctx, id.String())
	if err != nil {
		return nil, err
	}

	err = s.feed.Append(ctx, &event.Event{
		Kind:         event.KindBidCreated,
		Participants: []uuid.UUID{job.UserId, business.UserId},
		Bid:          bid,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("bid submitted", "bid", bid.Id, "job", job.Id)

	return mapBid(bid), nil
}

// DecideBid accepts or rejects a pending bid on behalf of the job
// owner. Accepting atomically moves the job to in_progress and rejects
// every other pending bid on it, so a job can never hold more than one
// accepted bid.
func (s *BidService) DecideBid(ctx context.Context, bidId string, decision string, actingUserId string) (*entity.BidOutputModel, error) {
	if decision != entity.DecisionAccept && decision != entity.DecisionReject {
		return nil, ErrInvalidDecision
	}

	bid, err := s.bidRepo.GetBidById(ctx, bidId)
	if err != nil {
		if errors.Is(err, repo_errors.ErrNotFound) {
			return nil, ErrBidNotFound
		}

		return nil, err
	}

	job, err := s.jobRepo.GetJobById(ctx, bid.JobId.String())
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

	bid, err = s.bidRepo.GetBidById(ctx, bidId)
	if err != nil {
		return nil, err
	}
	if bid.Status != entity.BidPending {
		return nil, ErrBidAlreadyDecided
	}

	if decision == entity.DecisionReject {
		return s.reject(ctx, bid, job)
	}

	return s.accept(ctx, bid, job)
}

func (s *BidService) GetJobBids(ctx context.Context, jobId string) ([]entity.BidOutputModel, error) {
	_, err := s.jobRepo.GetJobById(ctx, jobId)
	if err != nil {
		if errors.Is(err, repo_errors.ErrNotFound) {
			return nil, ErrJobNotFound
		}

		return nil, err
	}

	bids, err := s.bidRepo.GetJobBids(ctx, jobId)
	if err != nil {
		return nil, err
	}

	return mapBids(bids), nil
}

func (s *BidService) accept(ctx context.Context, bid *entity.Bid, job *entity.Job) (*entity.BidOutputModel, error) {
	if job.Status != entity.JobOpen {
		return nil, ErrJobNotOpen
	}

	rejectedIds, err := s.bidRepo.AcceptBidCascade(ctx, bid.Id.String(), job.Id.String())
	if err != nil {
		if errors.Is(err, repo_errors.ErrConflict) {
			return nil, ErrConflict
		}

		return nil, err
	}

	accepted, err := s.bidRepo.GetBidById(ctx, bid.Id.String())
	if err != nil {
		return nil, err
	}
	job, err = s.jobRepo.GetJobById(ctx, job.Id.String())
	if err != nil {
		return nil, err
	}

	// Cascade emits one event per affected row, in the transaction's
	// logical order: the accepted bid, each auto-rejected sibling, then
	// the job status change.
	events := make([]*event.Event, 0, len(rejectedIds)+2)

	acceptedParticipants, err := s.bidParticipants(ctx, job, accepted)
	if err != nil {
		return nil, err
	}
	events = append(events, &event.Event{
		Kind:         event.KindBidDecided,
		Participants: acceptedParticipants,
		Bid:          accepted,
	})

	for _, rejectedId := range rejectedIds {
		rejected, err := s.bidRepo.GetBidById(ctx, rejectedId.String())
		if err != nil {
			return nil, err
		}
		rejectedParticipants, err := s.bidParticipants(ctx, job, rejected)
		if err != nil {
			return nil, err
		}
		events = append(events, &event.Event{
			Kind:         event.KindBidDecided,
			Participants: rejectedParticipants,
			Bid:          rejected,
		})
	}

	jobAudience, err := jobParticipants(ctx, s.bidRepo, s.businessRepo, job)
	if err != nil {
		return nil, err
	}
	events = append(events, &event.Event{
		Kind:         event.KindJobStatusChanged,
		Participants: jobAudience,
		Job:          job,
	})

	if err := s.feed.Append(ctx, events...); err != nil {
		return nil, err
	}

	s.logger.Info("bid accepted", "bid", accepted.Id, "job", job.Id, "rejected_siblings", len(rejectedIds))

	return mapBid(accepted), nil
}

func (s *BidService) reject(ctx context.Context, bid *entity.Bid, job *entity.Job) (*entity.BidOutputModel, error) {
	err := s.bidRepo.RejectBid(ctx, bid.Id.String())
	if err != nil {
		if errors.Is(err, repo_errors.ErrConflict) {
			return nil, ErrConflict
		}

		return nil, err
	}

	rejected, err := s.bidRepo.GetBidById(ctx, bid.Id.String())
	if err != nil {
		return nil, err
	}

	participants, err := s.bidParticipants(ctx, job, rejected)
	if err != nil {
		return nil, err
	}

	err = s.feed.Append(ctx, &event.Event{
		Kind:         event.KindBidDecided,
		Participants: participants,
		Bid:          rejected,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("bid rejected", "bid", rejected.Id, "job", job.Id)

	return mapBid(rejected), nil
}

func (s *BidService) bidParticipants(ctx context.Context, job *entity.Job, bid *entity.Bid) ([]uuid.UUID, error) {
	business, err := s.businessRepo.GetBusinessById(ctx, bid.BusinessId.String())
	if err != nil {
		return nil, err
	}

	return appendParticipant([]uuid.UUID{job.UserId}, business.UserId), nil
}
