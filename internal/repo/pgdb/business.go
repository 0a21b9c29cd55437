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

type BusinessRepo struct {
	*postgres.Postgres
}

func NewBusinessRepo(pgdb *postgres.Postgres) *BusinessRepo {
	return &BusinessRepo{pgdb}
}

const businessColumns = "id, user_id, name, category, description, address, hours, image_url, created_at"

func (r *BusinessRepo) UpsertBusinessProfile(ctx context.Context, input *entity.UpsertBusinessInput) (uuid.UUID, error) {
	userUuid, err := uuid.Parse(input.UserId)
	if err != nil {
		return uuid.Nil, repo_errors.ErrNotFound
	}

	// One profile per user: insert or replace on the user_id unique key.
	upsertReq, args, _ := r.SqlBuilder.
		Insert("business_profiles").
		Columns("user_id", "name", "category", "description", "address", "hours", "image_url").
		Values(userUuid, input.Name, input.Category, input.Description, input.Address, input.Hours, input.ImageUrl).
		Suffix(`ON CONFLICT (user_id) DO UPDATE SET
			name = EXCLUDED.name,
			category = EXCLUDED.category,
			description = EXCLUDED.description,
			address = EXCLUDED.address,
			hours = EXCLUDED.hours,
			image_url = EXCLUDED.image_url
			RETURNING id`).
		ToSql()

	var businessId uuid.UUID
	err = r.Database.QueryRowContext(ctx, upsertReq, args...).Scan(&businessId)
	if err != nil {
		return uuid.Nil, err
	}

	return businessId, nil
}

func (r *BusinessRepo) GetBusinessById(ctx context.Context, id string) (*entity.BusinessProfile, error) {
	uuidForm, err := uuid.Parse(id)
	if err != nil {
		return nil, repo_errors.ErrNotFound
	}

	getReq, args, _ := r.SqlBuilder.
		Select(businessColumns).
		From("business_profiles").
		Where("id = ?", uuidForm).
		ToSql()

	return r.scanBusiness(r.Database.QueryRowContext(ctx, getReq, args...))
}

func (r *BusinessRepo) GetBusinessByUserId(ctx context.Context, userId string) (*entity.BusinessProfile, error) {
	uuidForm, err := uuid.Parse(userId)
	if err != nil {
		return nil, repo_errors.ErrNotFound
	}

	getReq, args, _ := r.SqlBuilder.
		Select(businessColumns).
		From("business_profiles").
		Where("user_id = ?", uuidForm).
		ToSql()

	return r.scanBusiness(r.Database.QueryRowContext(ctx, getReq, args...))
}

func (r *BusinessRepo) GetBusinesses(ctx context.Context, category string, pg *entity.PaginationInput) ([]entity.BusinessProfile, error) {
	builder := r.SqlBuilder.
		Select(businessColumns).
		From("business_profiles").
		OrderBy("created_at DESC").
		Limit(uint64(pg.Limit)).
		Offset(uint64(pg.Offset))

	if category != "" {
		builder = builder.Where("category = ?", category)
	}

	listReq, args, _ := builder.ToSql()

	rows, err := r.Database.QueryContext(ctx, listReq, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	businesses := make([]entity.BusinessProfile, 0)
	for rows.Next() {
		var business entity.BusinessProfile
		var createdAt time.Time
		err = rows.Scan(&business.Id, &business.UserId, &business.Name, &business.Category,
			&business.Description, &business.Address, &business.Hours, &business.ImageUrl, &createdAt)
		if err != nil {
			return nil, err
		}
		business.CreatedAt = createdAt.Format(time.RFC3339)
		businesses = append(businesses, business)
	}

	return businesses, rows.Err()
}

func (r *BusinessRepo) scanBusiness(row *sql.Row) (*entity.BusinessProfile, error) {
	var business entity.BusinessProfile
	var createdAt time.Time
	err := row.Scan(&business.Id, &business.UserId, &business.Name, &business.Category,
		&business.Description, &business.Address, &business.Hours, &business.ImageUrl, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repo_errors.ErrNotFound
		}

		return nil, err
	}
	business.CreatedAt = createdAt.Format(time.RFC3339)

	return &business, nil
}
