package projection

import (
	"sort"

	"github.com/google/uuid"

	"marketplace-management-api/internal/entity"
)

// buildThreads folds a user's raw messages into per-counterparty thread
// state. Messages must be ordered oldest first; equal timestamps resolve
// to the later message.
func buildThreads(viewer uuid.UUID, messages []entity.Message) map[uuid.UUID]*threadState {
	threads := make(map[uuid.UUID]*threadState)
	for _, msg := range messages {
		var counterparty uuid.UUID
		switch viewer {
		case msg.SenderId:
			counterparty = msg.ReceiverId
		case msg.ReceiverId:
			counterparty = msg.SenderId
		default:
			continue
		}

		thread, ok := threads[counterparty]
		if !ok {
			thread = &threadState{unread: make(map[uuid.UUID]struct{})}
			threads[counterparty] = thread
		}
		if thread.last.Id == uuid.Nil || messageNewer(msg, 0, thread.last, 0) {
			thread.last = msg
		}
		if msg.ReceiverId == viewer && !msg.Read {
			thread.unread[msg.Id] = struct{}{}
		}
	}

	return threads
}

// ReduceThreads derives the chat thread summaries for a viewer from the
// raw message table, most recent thread first.
func ReduceThreads(viewer uuid.UUID, messages []entity.Message) []entity.ThreadView {
	return sortThreadViews(buildThreads(viewer, messages))
}

func sortThreadViews(threads map[uuid.UUID]*threadState) []entity.ThreadView {
	views := make([]entity.ThreadView, 0, len(threads))
	for counterparty, thread := range threads {
		views = append(views, entity.ThreadView{
			CounterpartyId: counterparty,
			LastMessage:    thread.last,
			UnreadCount:    len(thread.unread),
		})
	}
	sort.Slice(views, func(i, j int) bool {
		if views[i].LastMessage.CreatedAt != views[j].LastMessage.CreatedAt {
			return views[i].LastMessage.CreatedAt > views[j].LastMessage.CreatedAt
		}
		return views[i].CounterpartyId.String() < views[j].CounterpartyId.String()
	})

	return views
}
