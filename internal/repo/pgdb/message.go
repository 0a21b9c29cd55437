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

type MessageRepo struct {
	*postgres.Postgres
}

func NewMessageRepo(pgdb *postgres.Postgres) *MessageRepo {
	return &MessageRepo{pgdb}
}

const messageColumns = "id, sender_id, receiver_id, content, read, created_at"

func (r *MessageRepo) CreateMessage(ctx context.Context, input *entity.SendMessageInput) (uuid.UUID, error) {
	senderUuid, err := uuid.Parse(input.SenderId)
	if err != nil {
		return uuid.Nil, repo_errors.ErrNotFound
	}
	receiverUuid, err := uuid.Parse(input.ReceiverId)
	if err != nil {
		return uuid.Nil, repo_errors.ErrNotFound
	}

	createReq, args, _ := r.SqlBuilder.
		Insert("messages").
		Columns("sender_id", "receiver_id", "content", "read").
		Values(senderUuid, receiverUuid, input.Content, false).
		Suffix("RETURNING id").
		ToSql()

	var messageId uuid.UUID
	err = r.Database.QueryRowContext(ctx, createReq, args...).Scan(&messageId)
	if err != nil {
		return uuid.Nil, err
	}

	return messageId, nil
}

func (r *MessageRepo) GetMessageById(ctx context.Context, id string) (*entity.Message, error) {
	uuidForm, err := uuid.Parse(id)
	if err != nil {
		return nil, repo_errors.ErrNotFound
	}

	getReq, args, _ := r.SqlBuilder.
		Select(messageColumns).
		From("messages").
		Where("id = ?", uuidForm).
		ToSql()

	var message entity.Message
	var createdAt time.Time
	row := r.Database.QueryRowContext(ctx, getReq, args...)
	err = row.Scan(&message.Id, &message.SenderId, &message.ReceiverId, &message.Content, &message.Read, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repo_errors.ErrNotFound
		}

		return nil, err
	}
	message.CreatedAt = createdAt.Format(time.RFC3339)

	return &message, nil
}

func (r *MessageRepo) MarkMessageRead(ctx context.Context, id string) (bool, error) {
	uuidForm, err := uuid.Parse(id)
	if err != nil {
		return false, repo_errors.ErrNotFound
	}

	updateReq, args, _ := r.SqlBuilder.
		Update("messages").
		Set("read", true).
		Where(`id = ? AND read = false`, uuidForm).
		ToSql()

	result, err := r.Database.ExecContext(ctx, updateReq, args...)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected > 0, nil
}

func (r *MessageRepo) GetUserMessages(ctx context.Context, userId string) ([]entity.Message, error) {
	uuidForm, err := uuid.Parse(userId)
	if err != nil {
		return nil, repo_errors.ErrNotFound
	}

	listReq, args, _ := r.SqlBuilder.
		Select(messageColumns).
		From("messages").
		Where("sender_id = ? OR receiver_id = ?", uuidForm, uuidForm).
		OrderBy("created_at, id").
		ToSql()

	rows, err := r.Database.QueryContext(ctx, listReq, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := make([]entity.Message, 0)
	for rows.Next() {
		var message entity.Message
		var createdAt time.Time
		err = rows.Scan(&message.Id, &message.SenderId, &message.ReceiverId, &message.Content, &message.Read, &createdAt)
		if err != nil {
			return nil, err
		}
		message.CreatedAt = createdAt.Format(time.RFC3339)
		messages = append(messages, message)
	}

	return messages, rows.Err()
}
