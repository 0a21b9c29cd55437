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
	"marketplace-management-api/internal/projection"
	"marketplace-management-api/internal/repo"
	"marketplace-management-api/internal/repo/repo_errors"
)

type MessageService struct {
	messageRepo repo.Message
	userRepo    repo.User
	feed        *feed.Log
	logger      *slog.Logger
}

func NewMessageService(repos *repo.Repositories, feedLog *feed.Log, logger *slog.Logger) *MessageService {
	return &MessageService{
		messageRepo: repos.Message,
		userRepo:    repos.User,
		feed:        feedLog,
		logger:      logger,
	}
}

func (s *MessageService) SendMessage(ctx context.Context, input *entity.SendMessageInput) (*entity.MessageOutputModel, error) {
	if strings.TrimSpace(input.Content) == "" {
		return nil, ErrMissingFields
	}
	if input.SenderId == input.ReceiverId {
		return nil, ErrSelfMessage
	}

	for _, userId := range []string{input.SenderId, input.ReceiverId} {
		_, err := s.userRepo.GetUserById(ctx, userId)
		if err != nil {
			if errors.Is(err, repo_errors.ErrNotFound) {
				return nil, ErrUserNotFound
			}

			return nil, err
		}
	}

	id, err := s.messageRepo.CreateMessage(ctx, input)
	if err != nil {
		return nil, err
	}

	message, err := s.messageRepo.GetMessageById(ctx, id.String())
	if err != nil {
		return nil, err
	}

	err = s.feed.Append(ctx, &event.Event{
		Kind:         event.KindMessageCreated,
		Participants: []uuid.UUID{message.SenderId, message.ReceiverId},
		Message:      message,
	})
	if err != nil {
		return nil, err
	}

	return mapMessage(message), nil
}

func (s *MessageService) MarkMessageRead(ctx context.Context, messageId string, actingUserId string) (*entity.MessageOutputModel, error) {
	message, err := s.messageRepo.GetMessageById(ctx, messageId)
	if err != nil {
		if errors.Is(err, repo_errors.ErrNotFound) {
			return nil, ErrMessageNotFound
		}

		return nil, err
	}

	if message.ReceiverId.String() != actingUserId {
		return nil, ErrNotMessageReceiver
	}

	changed, err := s.messageRepo.MarkMessageRead(ctx, messageId)
	if err != nil {
		return nil, err
	}
	if !changed {
		// already read, nothing to announce
		return mapMessage(message), nil
	}

	message, err = s.messageRepo.GetMessageById(ctx, messageId)
	if err != nil {
		return nil, err
	}

	err = s.feed.Append(ctx, &event.Event{
		Kind:         event.KindMessageRead,
		Participants: []uuid.UUID{message.SenderId, message.ReceiverId},
		Message:      message,
	})
	if err != nil {
		return nil, err
	}

	return mapMessage(message), nil
}

func (s *MessageService) GetChatThreads(ctx context.Context, userId string) ([]entity.ThreadView, error) {
	viewer, err := uuid.Parse(userId)
	if err != nil {
		return nil, ErrUserNotFound
	}

	messages, err := s.messageRepo.GetUserMessages(ctx, userId)
	if err != nil {
		if errors.Is(err, repo_errors.ErrNotFound) {
			return nil, ErrUserNotFound
		}

		return nil, err
	}

	return projection.ReduceThreads(viewer, messages), nil
}
