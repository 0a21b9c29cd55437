// Package dispatcher fans change feed events out to the projections of
// connected viewers and pushes the resulting view deltas to their
// transports. Each connection gets a bounded queue; a slow consumer is
// forced through a resync instead of ever blocking the feed or the
// other consumers.
package dispatcher

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"marketplace-management-api/internal/entity"
	"marketplace-management-api/internal/feed"
	"marketplace-management-api/internal/projection"
)

const defaultQueueSize = 256

// Sender pushes one view delta to a connected client. The transport
// behind it is external; the only contract is in-order delivery per
// viewer.
type Sender interface {
	Send(delta entity.ViewDelta) error
}

type Dispatcher struct {
	feed      *feed.Log
	source    projection.Source
	queueSize int
	logger    *slog.Logger

	mu       sync.Mutex
	sessions map[int]*Session
	nextId   int
	closed   bool
	wg       sync.WaitGroup
}

func New(feedLog *feed.Log, source projection.Source, queueSize int, logger *slog.Logger) *Dispatcher {
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Dispatcher{
		feed:      feedLog,
		source:    source,
		queueSize: queueSize,
		logger:    logger,
		sessions:  make(map[int]*Session),
	}
}

// Session is one viewer connection: a projection plus the goroutine
// applying feed events to it.
type Session struct {
	id         int
	viewer     uuid.UUID
	view       *projection.View
	sender     Sender
	dispatcher *Dispatcher
	ctx        context.Context
	cancel     context.CancelFunc
	done       chan struct{}
}

// Attach registers a viewer connection and starts delivering view
// deltas for every event after afterSeq. It never blocks on delivery;
// the session catches up (or resyncs) on its own goroutine.
func (d *Dispatcher) Attach(ctx context.Context, viewerId uuid.UUID, afterSeq uint64, sender Sender) (*Session, error) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil, feed.ErrClosed
	}

	sessionCtx, cancel := context.WithCancel(ctx)
	s := &Session{
		id:         d.nextId,
		viewer:     viewerId,
		view:       projection.NewView(viewerId, d.source),
		sender:     sender,
		dispatcher: d,
		ctx:        sessionCtx,
		cancel:     cancel,
		done:       make(chan struct{}),
	}
	d.nextId++
	d.sessions[s.id] = s
	d.wg.Add(1)
	d.mu.Unlock()

	go s.run(afterSeq)

	return s, nil
}

// Done is closed when the session has fully detached.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Close detaches the session. Idempotent; further delivery halts and
// the registry slot is released without blocking the feed.
func (s *Session) Close() {
	s.cancel()
	<-s.done
}

func (s *Session) run(afterSeq uint64) {
	defer s.finish()

	sub, err := s.subscribe(afterSeq)
	if err != nil {
		return
	}

	for {
		select {
		case <-s.ctx.Done():
			sub.Cancel()
			return
		case <-sub.Gap:
			sub.Cancel()
			s.dispatcher.logger.Info("session fell behind, resyncing", "viewer", s.viewer)
			sub, err = s.resync()
			if err != nil {
				return
			}
		case evt, ok := <-sub.C:
			if !ok {
				return
			}
			if !evt.HasParticipant(s.viewer) {
				continue
			}
			deltas, err := s.view.Apply(s.ctx, evt)
			if err != nil {
				s.dispatcher.logger.Error("apply event", "viewer", s.viewer, "seq", evt.Seq, "err", err)
				continue
			}
			for _, delta := range deltas {
				if err := s.sender.Send(delta); err != nil {
					sub.Cancel()
					return
				}
			}
		}
	}
}

// subscribe attaches to the feed, falling back to a full resync when
// the requested position is past retention.
func (s *Session) subscribe(afterSeq uint64) (*feed.Subscription, error) {
	sub, err := s.dispatcher.feed.Subscribe(afterSeq, s.dispatcher.queueSize)
	if err == nil {
		return sub, nil
	}
	if errors.Is(err, feed.ErrGap) {
		return s.resync()
	}

	return nil, err
}

// resync rebuilds the projection from the store and pushes a full
// snapshot. The feed position is captured before the store reads, so
// events landing during the rebuild are replayed afterwards; event
// application is idempotent, which makes the overlap harmless.
func (s *Session) resync() (*feed.Subscription, error) {
	afterSeq := s.dispatcher.feed.LastSeq()
	sub, err := s.dispatcher.feed.Subscribe(afterSeq, s.dispatcher.queueSize)
	if err != nil {
		return nil, err
	}

	if err := s.view.Rebuild(s.ctx); err != nil {
		sub.Cancel()
		s.dispatcher.logger.Error("rebuild view", "viewer", s.viewer, "err", err)
		return nil, err
	}
	s.view.SetLastSeq(afterSeq)

	if err := s.sender.Send(s.view.ResyncDelta()); err != nil {
		sub.Cancel()
		return nil, err
	}

	return sub, nil
}

func (s *Session) finish() {
	s.cancel()
	d := s.dispatcher
	d.mu.Lock()
	delete(d.sessions, s.id)
	d.mu.Unlock()
	close(s.done)
	d.wg.Done()
}

// ActiveSessions reports the number of attached viewer connections.
func (d *Dispatcher) ActiveSessions() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	return len(d.sessions)
}

// Shutdown detaches every session and waits for their goroutines.
func (d *Dispatcher) Shutdown() {
	d.mu.Lock()
	d.closed = true
	sessions := make([]*Session, 0, len(d.sessions))
	for _, s := range d.sessions {
		sessions = append(sessions, s)
	}
	d.mu.Unlock()

	for _, s := range sessions {
		s.cancel()
	}
	d.wg.Wait()
}
