package memdb

import (
	"context"

	"github.com/google/uuid"

	"marketplace-management-api/internal/entity"
	"marketplace-management-api/internal/repo/repo_errors"
)

type BusinessRepo struct {
	*Store
}

func (r *BusinessRepo) UpsertBusinessProfile(ctx context.Context, input *entity.UpsertBusinessInput) (uuid.UUID, error) {
	userUuid, err := uuid.Parse(input.UserId)
	if err != nil {
		return uuid.Nil, repo_errors.ErrNotFound
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for id, business := range r.businesses {
		if business.UserId == userUuid {
			business.Name = input.Name
			business.Category = input.Category
			business.Description = input.Description
			business.Address = input.Address
			business.Hours = input.Hours
			business.ImageUrl = input.ImageUrl
			r.businesses[id] = business

			return id, nil
		}
	}

	business := entity.BusinessProfile{
		Id:          uuid.New(),
		UserId:      userUuid,
		Name:        input.Name,
		Category:    input.Category,
		Description: input.Description,
		Address:     input.Address,
		Hours:       input.Hours,
		ImageUrl:    input.ImageUrl,
		CreatedAt:   now(),
	}
	r.businesses[business.Id] = business
	r.businessOrder = append(r.businessOrder, business.Id)

	return business.Id, nil
}

func (r *BusinessRepo) GetBusinessById(ctx context.Context, id string) (*entity.BusinessProfile, error) {
	uuidForm, err := uuid.Parse(id)
	if err != nil {
		return nil, repo_errors.ErrNotFound
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	business, ok := r.businesses[uuidForm]
	if !ok {
		return nil, repo_errors.ErrNotFound
	}

	return &business, nil
}

func (r *BusinessRepo) GetBusinessByUserId(ctx context.Context, userId string) (*entity.BusinessProfile, error) {
	uuidForm, err := uuid.Parse(userId)
	if err != nil {
		return nil, repo_errors.ErrNotFound
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, business := range r.businesses {
		if business.UserId == uuidForm {
			b := business
			return &b, nil
		}
	}

	return nil, repo_errors.ErrNotFound
}

func (r *BusinessRepo) GetBusinesses(ctx context.Context, category string, pg *entity.PaginationInput) ([]entity.BusinessProfile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]entity.BusinessProfile, 0)
	// newest first
	for i := len(r.businessOrder) - 1; i >= 0; i-- {
		business := r.businesses[r.businessOrder[i]]
		if category != "" && business.Category != category {
			continue
		}
		matched = append(matched, business)
	}

	return paginate(matched, pg), nil
}

func paginate[T any](items []T, pg *entity.PaginationInput) []T {
	if pg == nil {
		return items
	}
	if pg.Offset >= len(items) {
		return []T{}
	}
	items = items[pg.Offset:]
	if pg.Limit > 0 && pg.Limit < len(items) {
		items = items[:pg.Limit]
	}

	return items
}
