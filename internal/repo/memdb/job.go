package memdb

import (
	"context"

	"github.com/google/uuid"

	"marketplace-management-api/internal/entity"
	"marketplace-management-api/internal/repo/repo_errors"
)

type JobRepo struct {
	*Store
}

func (r *JobRepo) CreateJob(ctx context.Context, input *entity.CreateJobInput) (uuid.UUID, error) {
	userUuid, err := uuid.Parse(input.UserId)
	if err != nil {
		return uuid.Nil, repo_errors.ErrNotFound
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	job := entity.Job{
		Id:          uuid.New(),
		UserId:      userUuid,
		Title:       input.Title,
		Description: input.Description,
		Budget:      input.Budget,
		Category:    input.Category,
		Location:    input.Location,
		Status:      entity.JobOpen,
		CreatedAt:   now(),
	}
	r.jobs[job.Id] = job
	r.jobOrder = append(r.jobOrder, job.Id)

	return job.Id, nil
}

func (r *JobRepo) GetJobById(ctx context.Context, id string) (*entity.Job, error) {
	uuidForm, err := uuid.Parse(id)
	if err != nil {
		return nil, repo_errors.ErrNotFound
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	job, ok := r.jobs[uuidForm]
	if !ok {
		return nil, repo_errors.ErrNotFound
	}

	return &job, nil
}

func (r *JobRepo) UpdateJobStatusById(ctx context.Context, id string, from string, to string) error {
	uuidForm, err := uuid.Parse(id)
	if err != nil {
		return repo_errors.ErrNotFound
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	job, ok := r.jobs[uuidForm]
	if !ok {
		return repo_errors.ErrNotFound
	}
	if job.Status != from {
		return repo_errors.ErrConflict
	}
	job.Status = to
	r.jobs[uuidForm] = job

	return nil
}

func (r *JobRepo) GetJobs(ctx context.Context, pg *entity.PaginationInput) ([]entity.Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	jobs := make([]entity.Job, 0, len(r.jobOrder))
	for i := len(r.jobOrder) - 1; i >= 0; i-- {
		jobs = append(jobs, r.jobs[r.jobOrder[i]])
	}

	return paginate(jobs, pg), nil
}

func (r *JobRepo) GetJobsForUser(ctx context.Context, userId string, pg *entity.PaginationInput) ([]entity.Job, error) {
	uuidForm, err := uuid.Parse(userId)
	if err != nil {
		return nil, repo_errors.ErrNotFound
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	// jobs the user's business has bid on
	bidJobs := make(map[uuid.UUID]bool)
	for _, bid := range r.bids {
		business, ok := r.businesses[bid.BusinessId]
		if ok && business.UserId == uuidForm {
			bidJobs[bid.JobId] = true
		}
	}

	jobs := make([]entity.Job, 0)
	for i := len(r.jobOrder) - 1; i >= 0; i-- {
		job := r.jobs[r.jobOrder[i]]
		if job.UserId == uuidForm || bidJobs[job.Id] {
			jobs = append(jobs, job)
		}
	}

	return paginate(jobs, pg), nil
}
