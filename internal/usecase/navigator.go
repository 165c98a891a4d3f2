package usecase

import (
	"sync"

	"github.com/riskibarqy/volley-league/internal/domain/live"
	"github.com/riskibarqy/volley-league/internal/domain/round"
	"github.com/riskibarqy/volley-league/internal/platform/logging"
)

// NavigatorListener receives rendered rounds and live match updates. Calls
// are serialized and must not block or call back into the Navigator.
type NavigatorListener interface {
	RoundRendered(view RoundView)
	MatchUpdated(cursor int, update MatchView)
}

// SubscriptionSet owns the live subscriptions of one rendered round.
type SubscriptionSet struct {
	generation uint64
	subs       []live.Subscription
}

func (s *SubscriptionSet) Generation() uint64 {
	return s.generation
}

func (s *SubscriptionSet) Len() int {
	return len(s.subs)
}

func (s *SubscriptionSet) add(sub live.Subscription) {
	s.subs = append(s.subs, sub)
}

// Close releases every handle and returns how many were released.
func (s *SubscriptionSet) Close() int {
	n := len(s.subs)
	for _, sub := range s.subs {
		sub.Close()
	}
	s.subs = nil
	return n
}

// Navigator is a cursor over round groups that keeps live subscriptions for
// the shown round only.
type Navigator struct {
	mu       sync.Mutex
	groups   []round.Group
	cursor   int
	subs     *SubscriptionSet
	feed     live.Feed
	listener NavigatorListener
	logger   *logging.Logger
	closed   bool
}

// NewNavigator takes a snapshot of groups. A nil feed disables live updates.
func NewNavigator(groups []round.Group, feed live.Feed, listener NavigatorListener, logger *logging.Logger) *Navigator {
	if logger == nil {
		logger = logging.Default()
	}
	return &Navigator{
		groups:   groups,
		subs:     &SubscriptionSet{},
		feed:     feed,
		listener: listener,
		logger:   logger,
	}
}

// Start moves to the current round for today and renders it.
func (n *Navigator) Start(today string) RoundView {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.cursor = LocateCurrentRound(n.groups, today)
	return n.renderLocked()
}

// Advance moves by delta rounds with wraparound and renders. With no rounds
// it renders the empty view and leaves the cursor at 0.
func (n *Navigator) Advance(delta int) RoundView {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.cursor = AdvanceCursor(n.cursor, delta, len(n.groups))
	return n.renderLocked()
}

// Replace swaps in freshly built groups, keeps the cursor (wrapped into the
// new range) and renders.
func (n *Navigator) Replace(groups []round.Group) RoundView {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.groups = groups
	n.cursor = AdvanceCursor(n.cursor, 0, len(groups))
	return n.renderLocked()
}

func (n *Navigator) Cursor() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.cursor
}

// ActiveSubscriptions is the number of live handles held for the shown round.
func (n *Navigator) ActiveSubscriptions() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.subs.Len()
}

// Close releases every subscription. Later callbacks are dropped.
func (n *Navigator) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed {
		return
	}
	n.closed = true
	n.subs.Close()
}

func (n *Navigator) renderLocked() RoundView {
	if n.closed {
		return RoundView{Empty: true}
	}

	released := n.subs.Close()
	n.subs = &SubscriptionSet{generation: n.subs.generation + 1}

	view := BuildRoundView(n.groups, n.cursor, nil)
	if n.listener != nil {
		n.listener.RoundRendered(view)
	}
	if view.Empty || n.feed == nil {
		return view
	}

	generation := n.subs.generation
	for _, item := range view.Matches {
		if item.Match.ID == "" {
			continue
		}
		sub, err := n.feed.Subscribe(item.Match.ID, n.deliver(generation))
		if err != nil {
			n.logger.Warn("live subscribe failed", "match_id", item.Match.ID, "error", err)
			continue
		}
		n.subs.add(sub)
	}
	n.logger.Debug("round rendered",
		"cursor", n.cursor,
		"round", view.Label,
		"released_subscriptions", released,
		"subscriptions", n.subs.Len(),
	)
	return view
}

func (n *Navigator) deliver(generation uint64) live.Handler {
	return func(matchID string, snapshot live.Snapshot, ok bool) {
		n.mu.Lock()
		defer n.mu.Unlock()

		if n.closed || n.subs.generation != generation {
			n.logger.Debug("stale live callback dropped", "match_id", matchID)
			return
		}
		if n.cursor >= len(n.groups) {
			return
		}
		for _, m := range n.groups[n.cursor].Matches {
			if m.ID != matchID {
				continue
			}
			var override *live.Snapshot
			if ok {
				override = &snapshot
			}
			if n.listener != nil {
				n.listener.MatchUpdated(n.cursor, MatchView{Match: m, Display: Reconcile(m, override)})
			}
			return
		}
		n.logger.Debug("live callback for match not in round", "match_id", matchID)
	}
}
