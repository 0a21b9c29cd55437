package pgdb

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/lib/pq"

	"marketplace-management-api/internal/entity"
	"marketplace-management-api/internal/event"
	"marketplace-management-api/pkg/postgres"
)

type EventRepo struct {
	*postgres.Postgres
}

func NewEventRepo(pgdb *postgres.Postgres) *EventRepo {
	return &EventRepo{pgdb}
}

// eventPayload is the durable JSON form of the row snapshot carried by
// an event. Exactly one field is set.
type eventPayload struct {
	Job     *entity.Job     `json:"job,omitempty"`
	Bid     *entity.Bid     `json:"bid,omitempty"`
	Message *entity.Message `json:"message,omitempty"`
}

func (r *EventRepo) AppendEvent(ctx context.Context, evt *event.Event) error {
	payload, err := json.Marshal(eventPayload{Job: evt.Job, Bid: evt.Bid, Message: evt.Message})
	if err != nil {
		return err
	}

	participants := make([]string, 0, len(evt.Participants))
	for _, id := range evt.Participants {
		participants = append(participants, id.String())
	}

	appendReq, args, _ := r.SqlBuilder.
		Insert("events").
		Columns("seq", "kind", "participants", "payload", "occurred_at").
		Values(evt.Seq, string(evt.Kind), pq.Array(participants), payload, evt.OccurredAt).
		ToSql()

	_, err = r.Database.ExecContext(ctx, appendReq, args...)
	if err != nil {
		return err
	}

	return nil
}

func (r *EventRepo) LatestSeq(ctx context.Context) (uint64, error) {
	latestReq, _, _ := r.SqlBuilder.
		Select("MAX(seq)").
		From("events").
		ToSql()

	var seq sql.NullInt64
	err := r.Database.QueryRowContext(ctx, latestReq).Scan(&seq)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}

		return 0, err
	}
	if !seq.Valid {
		return 0, nil
	}

	return uint64(seq.Int64), nil
}
