package memdb

import (
	"context"

	"github.com/google/uuid"

	"marketplace-management-api/internal/entity"
	"marketplace-management-api/internal/repo/repo_errors"
)

type BidRepo struct {
	*Store
}

func (r *BidRepo) CreateBid(ctx context.Context, input *entity.SubmitBidInput) (uuid.UUID, error) {
	jobUuid, err := uuid.Parse(input.JobId)
	if err != nil {
		return uuid.Nil, repo_errors.ErrNotFound
	}
	businessUuid, err := uuid.Parse(input.BusinessId)
	if err != nil {
		return uuid.Nil, repo_errors.ErrNotFound
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	job, ok := r.jobs[jobUuid]
	if !ok {
		return uuid.Nil, repo_errors.ErrNotFound
	}
	if job.Status != entity.JobOpen {
		return uuid.Nil, repo_errors.ErrConflict
	}

	bid := entity.Bid{
		Id:         uuid.New(),
		JobId:      jobUuid,
		BusinessId: businessUuid,
		Amount:     input.Amount,
		Proposal:   input.Proposal,
		Status:     entity.BidPending,
		CreatedAt:  now(),
	}
	r.bids[bid.Id] = bid
	r.bidOrder = append(r.bidOrder, bid.Id)

	return bid.Id, nil
}

func (r *BidRepo) GetBidById(ctx context.Context, id string) (*entity.Bid, error) {
	uuidForm, err := uuid.Parse(id)
	if err != nil {
		return nil, repo_errors.ErrNotFound
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	bid, ok := r.bids[uuidForm]
	if !ok {
		return nil, repo_errors.ErrNotFound
	}

	return &bid, nil
}

func (r *BidRepo) GetJobBids(ctx context.Context, jobId string) ([]entity.Bid, error) {
	uuidForm, err := uuid.Parse(jobId)
	if err != nil {
		return nil, repo_errors.ErrNotFound
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	bids := make([]entity.Bid, 0)
	for _, id := range r.bidOrder {
		bid := r.bids[id]
		if bid.JobId == uuidForm {
			bids = append(bids, bid)
		}
	}

	return bids, nil
}

func (r *BidRepo) AcceptBidCascade(ctx context.Context, bidId string, jobId string) ([]uuid.UUID, error) {
	bidUuid, err := uuid.Parse(bidId)
	if err != nil {
		return nil, repo_errors.ErrNotFound
	}
	jobUuid, err := uuid.Parse(jobId)
	if err != nil {
		return nil, repo_errors.ErrNotFound
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	bid, ok := r.bids[bidUuid]
	if !ok {
		return nil, repo_errors.ErrNotFound
	}
	job, ok := r.jobs[jobUuid]
	if !ok {
		return nil, repo_errors.ErrNotFound
	}
	if bid.Status != entity.BidPending || job.Status != entity.JobOpen {
		return nil, repo_errors.ErrConflict
	}

	bid.Status = entity.BidAccepted
	r.bids[bidUuid] = bid

	rejected := make([]uuid.UUID, 0)
	for _, id := range r.bidOrder {
		sibling := r.bids[id]
		if sibling.JobId == jobUuid && sibling.Status == entity.BidPending {
			sibling.Status = entity.BidRejected
			r.bids[id] = sibling
			rejected = append(rejected, id)
		}
	}

	job.Status = entity.JobInProgress
	r.jobs[jobUuid] = job

	return rejected, nil
}

func (r *BidRepo) RejectBid(ctx context.Context, bidId string) error {
	uuidForm, err := uuid.Parse(bidId)
	if err != nil {
		return repo_errors.ErrNotFound
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	bid, ok := r.bids[uuidForm]
	if !ok {
		return repo_errors.ErrNotFound
	}
	if bid.Status != entity.BidPending {
		return repo_errors.ErrConflict
	}
	bid.Status = entity.BidRejected
	r.bids[uuidForm] = bid

	return nil
}
