package memdb

import (
	"context"

	"github.com/google/uuid"

	"marketplace-management-api/internal/entity"
	"marketplace-management-api/internal/repo/repo_errors"
)

type UserRepo struct {
	*Store
}

func (r *UserRepo) CreateUser(ctx context.Context, input *entity.RegisterUserInput) (uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, user := range r.users {
		if user.Email == input.Email {
			return uuid.Nil, repo_errors.ErrConflict
		}
	}

	user := entity.User{
		Id:        uuid.New(),
		Email:     input.Email,
		Name:      input.Name,
		Role:      input.Role,
		CreatedAt: now(),
	}
	r.users[user.Id] = user

	return user.Id, nil
}

func (r *UserRepo) GetUserById(ctx context.Context, id string) (*entity.User, error) {
	uuidForm, err := uuid.Parse(id)
	if err != nil {
		return nil, repo_errors.ErrNotFound
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[uuidForm]
	if !ok {
		return nil, repo_errors.ErrNotFound
	}

	return &user, nil
}

func (r *UserRepo) GetUserByEmail(ctx context.Context, email string) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, user := range r.users {
		if user.Email == email {
			u := user
			return &u, nil
		}
	}

	return nil, repo_errors.ErrNotFound
}

func (r *UserRepo) SetUserProfileComplete(ctx context.Context, id string) error {
	uuidForm, err := uuid.Parse(id)
	if err != nil {
		return repo_errors.ErrNotFound
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[uuidForm]
	if !ok {
		return repo_errors.ErrNotFound
	}
	user.ProfileComplete = true
	r.users[uuidForm] = user

	return nil
}
