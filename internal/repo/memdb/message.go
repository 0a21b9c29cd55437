package memdb

import (
	"context"

	"github.com/google/uuid"

	"marketplace-management-api/internal/entity"
	"marketplace-management-api/internal/repo/repo_errors"
)

type MessageRepo struct {
	*Store
}

func (r *MessageRepo) CreateMessage(ctx context.Context, input *entity.SendMessageInput) (uuid.UUID, error) {
	senderUuid, err := uuid.Parse(input.SenderId)
	if err != nil {
		return uuid.Nil, repo_errors.ErrNotFound
	}
	receiverUuid, err := uuid.Parse(input.ReceiverId)
	if err != nil {
		return uuid.Nil, repo_errors.ErrNotFound
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	message := entity.Message{
		Id:         uuid.New(),
		SenderId:   senderUuid,
		ReceiverId: receiverUuid,
		Content:    input.Content,
		CreatedAt:  now(),
	}
	r.messages[message.Id] = message
	r.messageOrder = append(r.messageOrder, message.Id)

	return message.Id, nil
}

func (r *MessageRepo) GetMessageById(ctx context.Context, id string) (*entity.Message, error) {
	uuidForm, err := uuid.Parse(id)
	if err != nil {
		return nil, repo_errors.ErrNotFound
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	message, ok := r.messages[uuidForm]
	if !ok {
		return nil, repo_errors.ErrNotFound
	}

	return &message, nil
}

func (r *MessageRepo) MarkMessageRead(ctx context.Context, id string) (bool, error) {
	uuidForm, err := uuid.Parse(id)
	if err != nil {
		return false, repo_errors.ErrNotFound
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	message, ok := r.messages[uuidForm]
	if !ok {
		return false, repo_errors.ErrNotFound
	}
	if message.Read {
		return false, nil
	}
	message.Read = true
	r.messages[uuidForm] = message

	return true, nil
}

func (r *MessageRepo) GetUserMessages(ctx context.Context, userId string) ([]entity.Message, error) {
	uuidForm, err := uuid.Parse(userId)
	if err != nil {
		return nil, repo_errors.ErrNotFound
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	messages := make([]entity.Message, 0)
	for _, id := range r.messageOrder {
		message := r.messages[id]
		if message.SenderId == uuidForm || message.ReceiverId == uuidForm {
			messages = append(messages, message)
		}
	}

	return messages, nil
}
