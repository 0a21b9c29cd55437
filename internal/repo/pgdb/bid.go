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

type BidRepo struct {
	*postgres.Postgres
}

func NewBidRepo(pgdb *postgres.Postgres) *BidRepo {
	return &BidRepo{pgdb}
}

const bidColumns = "id, job_id, business_id, amount, proposal, status, created_at"

func (r *BidRepo) CreateBid(ctx context.Context, input *entity.SubmitBidInput) (uuid.UUID, error) {
	jobUuid, err := uuid.Parse(input.JobId)
	if err != nil {
		return uuid.Nil, repo_errors.ErrNotFound
	}
	businessUuid, err := uuid.Parse(input.BusinessId)
	if err != nil {
		return uuid.Nil, repo_errors.ErrNotFound
	}

	// Insert through a SELECT guarded on the parent job still being open,
	// so a bid can never land on a closed job even across processes.
	createBidReq := `INSERT INTO bids (job_id, business_id, amount, proposal, status)
		SELECT $1, $2, $3, $4, $5 FROM jobs WHERE jobs.id = $1 AND jobs.status = $6
		RETURNING id`

	var bidId uuid.UUID
	err = r.Database.QueryRowContext(ctx, createBidReq,
		jobUuid, businessUuid, input.Amount, input.Proposal, entity.BidPending, entity.JobOpen).Scan(&bidId)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return uuid.Nil, repo_errors.ErrConflict
		}

		return uuid.Nil, err
	}

	return bidId, nil
}

func (r *BidRepo) GetBidById(ctx context.Context, id string) (*entity.Bid, error) {
	uuidForm, err := uuid.Parse(id)
	if err != nil {
		return nil, repo_errors.ErrNotFound
	}

	getBidReq, args, _ := r.SqlBuilder.
		Select(bidColumns).
		From("bids").
		Where("id = ?", uuidForm).
		ToSql()

	var bid entity.Bid
	var createdAt time.Time
	row := r.Database.QueryRowContext(ctx, getBidReq, args...)
	err = row.Scan(&bid.Id, &bid.JobId, &bid.BusinessId, &bid.Amount, &bid.Proposal, &bid.Status, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repo_errors.ErrNotFound
		}

		return nil, err
	}
	bid.CreatedAt = createdAt.Format(time.RFC3339)

	return &bid, nil
}

func (r *BidRepo) GetJobBids(ctx context.Context, jobId string) ([]entity.Bid, error) {
	uuidForm, err := uuid.Parse(jobId)
	if err != nil {
		return nil, repo_errors.ErrNotFound
	}

	listReq, args, _ := r.SqlBuilder.
		Select(bidColumns).
		From("bids").
		Where("job_id = ?", uuidForm).
		OrderBy("created_at, id").
		ToSql()

	rows, err := r.Database.QueryContext(ctx, listReq, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bids := make([]entity.Bid, 0)
	for rows.Next() {
		var bid entity.Bid
		var createdAt time.Time
		err = rows.Scan(&bid.Id, &bid.JobId, &bid.BusinessId, &bid.Amount, &bid.Proposal, &bid.Status, &createdAt)
		if err != nil {
			return nil, err
		}
		bid.CreatedAt = createdAt.Format(time.RFC3339)
		bids = append(bids, bid)
	}

	return bids, rows.Err()
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

	tx, err := r.Database.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}

	acceptReq, args, _ := r.SqlBuilder.
		Update("bids").
		Set("status", entity.BidAccepted).
		Where("id = ? AND status = ?", bidUuid, entity.BidPending).
		RunWith(tx).
		ToSql()

	result, err := tx.ExecContext(ctx, acceptReq, args...)
	if err != nil {
		if e := tx.Rollback(); e != nil {
			return nil, e
		}

		return nil, err
	}
	affected, err := result.RowsAffected()
	if err != nil || affected == 0 {
		if e := tx.Rollback(); e != nil {
			return nil, e
		}
		if err != nil {
			return nil, err
		}

		return nil, repo_errors.ErrConflict
	}

	rejectReq, args, _ := r.SqlBuilder.
		Update("bids").
		Set("status", entity.BidRejected).
		Where("job_id = ? AND status = ?", jobUuid, entity.BidPending).
		Suffix("RETURNING id").
		RunWith(tx).
		ToSql()

	rows, err := tx.QueryContext(ctx, rejectReq, args...)
	if err != nil {
		if e := tx.Rollback(); e != nil {
			return nil, e
		}

		return nil, err
	}

	rejected := make([]uuid.UUID, 0)
	for rows.Next() {
		var id uuid.UUID
		if err = rows.Scan(&id); err != nil {
			rows.Close()
			if e := tx.Rollback(); e != nil {
				return nil, e
			}

			return nil, err
		}
		rejected = append(rejected, id)
	}
	rows.Close()
	if err = rows.Err(); err != nil {
		if e := tx.Rollback(); e != nil {
			return nil, e
		}

		return nil, err
	}

	advanceReq, args, _ := r.SqlBuilder.
		Update("jobs").
		Set("status", entity.JobInProgress).
		Where("id = ? AND status = ?", jobUuid, entity.JobOpen).
		RunWith(tx).
		ToSql()

	result, err = tx.ExecContext(ctx, advanceReq, args...)
	if err != nil {
		if e := tx.Rollback(); e != nil {
			return nil, e
		}

		return nil, err
	}
	affected, err = result.RowsAffected()
	if err != nil || affected == 0 {
		if e := tx.Rollback(); e != nil {
			return nil, e
		}
		if err != nil {
			return nil, err
		}

		return nil, repo_errors.ErrConflict
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}

	return rejected, nil
}

func (r *BidRepo) RejectBid(ctx context.Context, bidId string) error {
	uuidForm, err := uuid.Parse(bidId)
	if err != nil {
		return repo_errors.ErrNotFound
	}

	rejectReq, args, _ := r.SqlBuilder.
		Update("bids").
		Set("status", entity.BidRejected).
		Where("id = ? AND status = ?", uuidForm, entity.BidPending).
		ToSql()

	result, err := r.Database.ExecContext(ctx, rejectReq, args...)
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
