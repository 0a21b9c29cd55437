// Package feed is the ordered change feed between the store and the
// per-viewer projections. A single append lock assigns sequence numbers,
// persists events to the event repository and fans them out to
// subscribers. Replay is served from an in-memory retention window; a
// subscriber that has fallen behind it gets ErrGap and must rebuild its
// views from the store.
package feed

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"marketplace-management-api/internal/event"
	"marketplace-management-api/internal/repo"
)

// ErrGap indicates the requested replay position is older than the
// retention window. The subscriber must resync from the store.
var ErrGap = errors.New("feed: replay position is past retention")

// ErrClosed indicates the feed is shutting down.
var ErrClosed = errors.New("feed: closed")

const defaultRetention = 1024

type Log struct {
	store     repo.Event
	logger    *slog.Logger
	retention int

	mu       sync.Mutex
	lastSeq  uint64
	floorSeq uint64 // events with seq <= floorSeq are no longer retained
	ring     []event.Event
	subs     map[int]*subscriber
	nextSub  int
	closed   bool
}

type subscriber struct {
	ch     chan event.Event
	gap    chan struct{}
	gapped bool
}

// Subscription is one live feed of events. Events arrive on C in
// sequence order. Gap is closed when the subscriber fell behind and its
// remaining events were dropped; the subscriber must cancel, resync and
// resubscribe.
type Subscription struct {
	C      <-chan event.Event
	Gap    <-chan struct{}
	cancel func()
}

// Cancel detaches the subscription. Safe to call more than once.
func (s *Subscription) Cancel() {
	s.cancel()
}

// NewLog seeds the sequence counter from the durable event table so
// numbering keeps increasing across restarts.
func NewLog(ctx context.Context, store repo.Event, retention int, logger *slog.Logger) (*Log, error) {
	if retention <= 0 {
		retention = defaultRetention
	}
	if logger == nil {
		logger = slog.Default()
	}

	latest, err := store.LatestSeq(ctx)
	if err != nil {
		return nil, err
	}

	return &Log{
		store:     store,
		logger:    logger,
		retention: retention,
		lastSeq:   latest,
		floorSeq:  latest,
		subs:      make(map[int]*subscriber),
	}, nil
}

// LastSeq returns the sequence number of the most recent event.
func (l *Log) LastSeq() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.lastSeq
}

// Append assigns sequence numbers to the events in order, persists them
// and delivers them to every subscriber. Delivery never blocks: a
// subscriber whose queue is full is flagged with a gap and dropped.
func (l *Log) Append(ctx context.Context, events ...*event.Event) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return ErrClosed
	}

	for _, evt := range events {
		l.lastSeq++
		evt.Seq = l.lastSeq
		if evt.OccurredAt.IsZero() {
			evt.OccurredAt = time.Now().UTC()
		}

		if err := l.store.AppendEvent(ctx, evt); err != nil {
			return err
		}

		l.ring = append(l.ring, *evt)
		if len(l.ring) > l.retention {
			evicted := len(l.ring) - l.retention
			l.floorSeq = l.ring[evicted-1].Seq
			l.ring = l.ring[evicted:]
		}

		for id, sub := range l.subs {
			if sub.gapped {
				continue
			}
			select {
			case sub.ch <- *evt:
			default:
				sub.gapped = true
				close(sub.gap)
				l.logger.Warn("feed subscriber overflowed, dropping", "subscriber", id, "seq", evt.Seq)
			}
		}
	}

	return nil
}

// Subscribe attaches a subscriber that wants every event after afterSeq.
// Retained events are replayed into the queue immediately; the
// subscription then receives live appends. Returns ErrGap when afterSeq
// is older than the retention window or the replay does not fit the
// queue.
func (l *Log) Subscribe(afterSeq uint64, queueSize int) (*Subscription, error) {
	if queueSize <= 0 {
		queueSize = l.retention
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil, ErrClosed
	}
	if afterSeq < l.floorSeq {
		return nil, ErrGap
	}
	if afterSeq > l.lastSeq {
		afterSeq = l.lastSeq
	}

	replay := make([]event.Event, 0)
	for _, evt := range l.ring {
		if evt.Seq > afterSeq {
			replay = append(replay, evt)
		}
	}
	if len(replay) > queueSize {
		return nil, ErrGap
	}

	sub := &subscriber{
		ch:  make(chan event.Event, queueSize),
		gap: make(chan struct{}),
	}
	for _, evt := range replay {
		sub.ch <- evt
	}

	id := l.nextSub
	l.nextSub++
	l.subs[id] = sub

	cancel := func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		if _, ok := l.subs[id]; ok {
			delete(l.subs, id)
			close(sub.ch)
		}
	}

	return &Subscription{C: sub.ch, Gap: sub.gap, cancel: cancel}, nil
}

// Close detaches every subscriber and rejects further appends.
func (l *Log) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return
	}
	l.closed = true
	for id, sub := range l.subs {
		delete(l.subs, id)
		close(sub.ch)
	}
}
