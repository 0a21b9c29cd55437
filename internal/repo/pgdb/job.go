package pgdb

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"marketplace-management-api/internal/entity"
	"marketplace-management-api/internal/repo/repo_errors"
	"marketplace-management-api/pkg/postgres"
)

type JobRepo struct {
	*postgres.Postgres
}

func NewJobRepo(pgdb *postgres.Postgres) *JobRepo {
	return &JobRepo{pgdb}
}

const jobColumns = "id, user_id, title, description, budget, category, location, status, created_at"

func (r *JobRepo) CreateJob(ctx context.Context, input *entity.CreateJobInput) (uuid.UUID, error) {
	userUuid, err := uuid.Parse(input.UserId)
	if err != nil {
		return uuid.Nil, repo_errors.ErrNotFound
	}

	createJobReq, args, _ := r.SqlBuilder.
		Insert("jobs").
		Columns("user_id", "title", "description", "budget", "category", "location", "status").
		Values(userUuid, input.Title, input.Description, input.Budget, input.Category, input.Location, entity.JobOpen).
		Suffix("RETURNING id").
		ToSql()

	var jobId uuid.UUID
	err = r.Database.QueryRowContext(ctx, createJobReq, args...).Scan(&jobId)
	if err != nil {
		return uuid.Nil, err
	}

	return jobId, nil
}

func (r *JobRepo) GetJobById(ctx context.Context, id string) (*entity.Job, error) {
	uuidForm, err := uuid.Parse(id)
	if err != nil {
		return nil, repo_errors.ErrNotFound
	}

	getJobReq, args, _ := r.SqlBuilder.
		Select(jobColumns).
		From("jobs").
		Where("id = ?", uuidForm).
		ToSql()

	var job entity.Job
	var createdAt time.Time
	row := r.Database.QueryRowContext(ctx, getJobReq, args...)
	err = row.Scan(&job.Id, &job.UserId, &job.Title, &job.Description, &job.Budget,
		&job.Category, &job.Location, &job.Status, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repo_errors.ErrNotFound
		}

		return nil, err
	}
	job.CreatedAt = createdAt.Format(time.RFC3339)

	return &job, nil
}

func (r *JobRepo) UpdateJobStatusById(ctx context.Context, id string, from string, to string) error {
	uuidForm, err := uuid.Parse(id)
	if err != nil {
		return repo_errors.ErrNotFound
	}

	// The status guard makes the transition race-safe: a concurrent writer
	// that already moved the job off `from` leaves nothing to update here.
	updateReq, args, _ := r.SqlBuilder.
		Update("jobs").
		Set("status", to).
		Where("id = ? AND status = ?", uuidForm, from).
		ToSql()

	result, err := r.Database.ExecContext(ctx, updateReq, args...)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return repo_errors.ErrConflict
	}

	return nil
}

func (r *JobRepo) GetJobs(ctx context.Context, pg *entity.PaginationInput) ([]entity.Job, error) {
	listReq, args, _ := r.SqlBuilder.
		Select(jobColumns).
		From("jobs").
		OrderBy("created_at DESC, id").
		Limit(uint64(pg.Limit)).
		Offset(uint64(pg.Offset)).
		ToSql()

	return r.queryJobs(ctx, listReq, args)
}

func (r *JobRepo) GetJobsForUser(ctx context.Context, userId string, pg *entity.PaginationInput) ([]entity.Job, error) {
	uuidForm, err := uuid.Parse(userId)
	if err != nil {
		return nil, repo_errors.ErrNotFound
	}

	listReq, args, _ := r.SqlBuilder.
		Select(jobColumns).
		From("jobs").
		Where(`user_id = ? OR id IN (
			SELECT bids.job_id FROM bids
			INNER JOIN business_profiles ON business_profiles.id = bids.business_id
			WHERE business_profiles.user_id = ?)`, uuidForm, uuidForm).
		OrderBy("created_at DESC, id").
		Limit(uint64(pg.Limit)).
		Offset(uint64(pg.Offset)).
		ToSql()

	return r.queryJobs(ctx, listReq, args)
}

func (r *JobRepo) queryJobs(ctx context.Context, query string, args []interface{}) ([]entity.Job, error) {
	rows, err := r.Database.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	jobs := make([]entity.Job, 0)
	for rows.Next() {
		var job entity.Job
		var createdAt time.Time
		err = rows.Scan(&job.Id, &job.UserId, &job.Title, &job.Description, &job.Budget,
			&job.Category, &job.Location, &job.Status, &createdAt)
		if err != nil {
			return nil, err
		}
		job.CreatedAt = createdAt.Format(time.RFC3339)
		jobs = append(jobs, job)
	}

	return jobs, rows.Err()
}
