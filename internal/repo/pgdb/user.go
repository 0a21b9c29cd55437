package pgdb

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"marketplace-management-api/internal/entity"
	"marketplace-management-api/internal/repo/repo_errors"
	"marketplace-management-api/pkg/postgres"
)

type UserRepo struct {
	*postgres.Postgres
}

func NewUserRepo(pgdb *postgres.Postgres) *UserRepo {
	return &UserRepo{pgdb}
}

func (r *UserRepo) CreateUser(ctx context.Context, input *entity.RegisterUserInput) (uuid.UUID, error) {
	createUserReq, args, _ := r.SqlBuilder.
		Insert("users").
		Columns("email", "name", "role", "profile_complete").
		Values(input.Email, input.Name, input.Role, false).
		Suffix("RETURNING id").
		ToSql()

	var userId uuid.UUID
	err := r.Database.QueryRowContext(ctx, createUserReq, args...).Scan(&userId)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return uuid.Nil, repo_errors.ErrConflict
		}

		return uuid.Nil, err
	}

	return userId, nil
}

func (r *UserRepo) GetUserById(ctx context.Context, id string) (*entity.User, error) {
	uuidForm, err := uuid.Parse(id)
	if err != nil {
		return nil, repo_errors.ErrNotFound
	}

	getUserReq, args, _ := r.SqlBuilder.
		Select("id, email, name, role, profile_complete, created_at").
		From("users").
		Where("id = ?", uuidForm).
		ToSql()

	return r.scanUser(r.Database.QueryRowContext(ctx, getUserReq, args...))
}

func (r *UserRepo) GetUserByEmail(ctx context.Context, email string) (*entity.User, error) {
	getUserReq, args, _ := r.SqlBuilder.
		Select("id, email, name, role, profile_complete, created_at").
		From("users").
		Where("email = ?", email).
		ToSql()

	return r.scanUser(r.Database.QueryRowContext(ctx, getUserReq, args...))
}

func (r *UserRepo) SetUserProfileComplete(ctx context.Context, id string) error {
	uuidForm, err := uuid.Parse(id)
	if err != nil {
		return repo_errors.ErrNotFound
	}

	updateReq, args, _ := r.SqlBuilder.
		Update("users").
		Set("profile_complete", true).
		Where("id = ?", uuidForm).
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
		return repo_errors.ErrNotFound
	}

	return nil
}

func (r *UserRepo) scanUser(row *sql.Row) (*entity.User, error) {
	var user entity.User
	var createdAt time.Time
	err := row.Scan(&user.Id, &user.Email, &user.Name, &user.Role, &user.ProfileComplete, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repo_errors.ErrNotFound
		}

		return nil, err
	}
	user.CreatedAt = createdAt.Format(time.RFC3339)

	return &user, nil
}
