package hub

import (
	"sync"

	"github.com/riskibarqy/volley-league/internal/domain/live"
)

type delivery struct {
	snapshot live.Snapshot
	ok       bool
}

// subscription holds at most one pending delivery. A newer offer replaces an
// undelivered one, so a slow handler only ever sees the latest state.
type subscription struct {
	hub     *Hub
	id      uint64
	matchID string
	handler live.Handler

	mu      sync.Mutex
	pending *delivery
	notify  chan struct{}
	done    chan struct{}
	once    sync.Once
}

func newSubscription(h *Hub, id uint64, matchID string, handler live.Handler) *subscription {
	return &subscription{
		hub:     h,
		id:      id,
		matchID: matchID,
		handler: handler,
		notify:  make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
}

func (s *subscription) offer(d delivery) {
	s.mu.Lock()
	s.pending = &d
	s.mu.Unlock()

	select {
	case s.notify <- struct{}{}:
	default:
	}
}

func (s *subscription) run() {
	for {
		select {
		case <-s.done:
			return
		case <-s.notify:
		}

		s.mu.Lock()
		d := s.pending
		s.pending = nil
		s.mu.Unlock()
		if d == nil {
			continue
		}

		select {
		case <-s.done:
			return
		default:
		}
		s.handler(s.matchID, d.snapshot, d.ok)
	}
}

// Close stops future deliveries. It does not wait for a handler already running.
func (s *subscription) Close() {
	s.once.Do(func() {
		close(s.done)
		s.hub.remove(s)
	})
}
