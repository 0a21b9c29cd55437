package memdb

import (
	"context"

	"marketplace-management-api/internal/event"
)

type EventRepo struct {
	*Store
}

func (r *EventRepo) AppendEvent(ctx context.Context, evt *event.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events = append(r.events, *evt)

	return nil
}

func (r *EventRepo) LatestSeq(ctx context.Context) (uint64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.events) == 0 {
		return 0, nil
	}

	return r.events[len(r.events)-1].Seq, nil
}
