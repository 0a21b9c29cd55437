package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"marketplace-management-api/internal/entity"
	"marketplace-management-api/internal/repo"
	"marketplace-management-api/internal/repo/repo_errors"
)

type ProfileService struct {
	userRepo     repo.User
	businessRepo repo.Business
	logger       *slog.Logger
}

func NewProfileService(repos *repo.Repositories, logger *slog.Logger) *ProfileService {
	return &ProfileService{
		userRepo:     repos.User,
		businessRepo: repos.Business,
		logger:       logger,
	}
}

func (s *ProfileService) RegisterUser(ctx context.Context, input *entity.RegisterUserInput) (*entity.UserOutputModel, error) {
	if strings.TrimSpace(input.Email) == "" || strings.TrimSpace(input.Name) == "" {
		return nil, ErrMissingFields
	}
	if input.Role != entity.RoleRequester && input.Role != entity.RoleProvider {
		return nil, ErrInvalidRole
	}

	id, err := s.userRepo.CreateUser(ctx, input)
	if err != nil {
		if errors.Is(err, repo_errors.ErrConflict) {
			return nil, ErrEmailTaken
		}

		return nil, err
	}

	user, err := s.userRepo.GetUserById(ctx, id.String())
	if err != nil {
		return nil, err
	}

	s.logger.Info("user registered", "user", user.Id, "role", user.Role)

	return mapUser(user), nil
}

func (s *ProfileService) CompleteUserOnboarding(ctx context.Context, userId string) (*entity.UserOutputModel, error) {
	err := s.userRepo.SetUserProfileComplete(ctx, userId)
	if err != nil {
		if errors.Is(err, repo_errors.ErrNotFound) {
			return nil, ErrUserNotFound
		}

		return nil, err
	}

	user, err := s.userRepo.GetUserById(ctx, userId)
	if err != nil {
		return nil, err
	}

	return mapUser(user), nil
}

func (s *ProfileService) GetUserById(ctx context.Context, userId string) (*entity.UserOutputModel, error) {
	user, err := s.userRepo.GetUserById(ctx, userId)
	if err != nil {
		if errors.Is(err, repo_errors.ErrNotFound) {
			return nil, ErrUserNotFound
		}

		return nil, err
	}

	return mapUser(user), nil
}

func (s *ProfileService) UpsertBusinessProfile(ctx context.Context, input *entity.UpsertBusinessInput) (*entity.BusinessOutputModel, error) {
	if strings.TrimSpace(input.Name) == "" || strings.TrimSpace(input.Category) == "" {
		return nil, ErrMissingFields
	}

	user, err := s.userRepo.GetUserById(ctx, input.UserId)
	if err != nil {
		if errors.Is(err, repo_errors.ErrNotFound) {
			return nil, ErrUserNotFound
		}

		return nil, err
	}
	if user.Role != entity.RoleProvider {
		return nil, ErrNotProvider
	}

	id, err := s.businessRepo.UpsertBusinessProfile(ctx, input)
	if err != nil {
		return nil, err
	}

	// completing the business profile finishes provider onboarding
	if !user.ProfileComplete {
		if err := s.userRepo.SetUserProfileComplete(ctx, input.UserId); err != nil {
			return nil, err
		}
	}

	business, err := s.businessRepo.GetBusinessById(ctx, id.String())
	if err != nil {
		return nil, err
	}

	s.logger.Info("business profile upserted", "business", business.Id, "user", user.Id)

	return mapBusiness(business), nil
}

func (s *ProfileService) GetBusinessById(ctx context.Context, businessId string) (*entity.BusinessOutputModel, error) {
	business, err := s.businessRepo.GetBusinessById(ctx, businessId)
	if err != nil {
		if errors.Is(err, repo_errors.ErrNotFound) {
			return nil, ErrBusinessNotFound
		}

		return nil, err
	}

	return mapBusiness(business), nil
}

func (s *ProfileService) GetBusinesses(ctx context.Context, category string, pg *entity.PaginationInput) ([]entity.BusinessOutputModel, error) {
	businesses, err := s.businessRepo.GetBusinesses(ctx, category, pg)
	if err != nil {
		return nil, err
	}

	return mapBusinesses(businesses), nil
}
