package hub

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/riskibarqy/volley-league/internal/domain/live"
	"github.com/riskibarqy/volley-league/internal/platform/cache"
	"github.com/riskibarqy/volley-league/internal/platform/logging"
	"github.com/riskibarqy/volley-league/internal/platform/metrics"
	"github.com/sourcegraph/conc"
)

var (
	ErrClosed         = errors.New("live hub closed")
	ErrMissingMatchID = errors.New("match id is required")
)

type Config struct {
	// SnapshotTTL bounds how long a published snapshot is retained. <= 0 keeps it until cleared.
	SnapshotTTL time.Duration
	Metrics     metrics.Metrics
	Logger      *logging.Logger
}

// Hub is an in-process live feed. It retains the latest snapshot per match
// and fans deliveries out to per-subscription goroutines.
type Hub struct {
	mu        sync.RWMutex
	snapshots *cache.Store[live.Snapshot]
	subs      map[string]map[uint64]*subscription
	nextID    uint64
	closed    bool

	workers conc.WaitGroup
	metrics metrics.Metrics
	logger  *logging.Logger
	now     func() time.Time
}

func New(cfg Config) *Hub {
	h := &Hub{
		snapshots: cache.NewStore[live.Snapshot](cfg.SnapshotTTL),
		subs:      make(map[string]map[uint64]*subscription),
		metrics:   cfg.Metrics,
		logger:    cfg.Logger,
		now:       time.Now,
	}
	if h.metrics == nil {
		h.metrics = metrics.Nop{}
	}
	if h.logger == nil {
		h.logger = logging.Default()
	}
	return h
}

// Subscribe registers handler for matchID. The retained snapshot, if any, is
// delivered first, always from the subscription goroutine.
func (h *Hub) Subscribe(matchID string, handler live.Handler) (live.Subscription, error) {
	if matchID == "" {
		return nil, ErrMissingMatchID
	}
	if handler == nil {
		return nil, fmt.Errorf("subscribe match=%s: nil handler", matchID)
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil, ErrClosed
	}
	h.nextID++
	sub := newSubscription(h, h.nextID, matchID, handler)
	byID := h.subs[matchID]
	if byID == nil {
		byID = make(map[uint64]*subscription)
		h.subs[matchID] = byID
	}
	byID[sub.id] = sub
	if snapshot, ok := h.snapshots.Get(context.Background(), matchID); ok {
		sub.offer(delivery{snapshot: snapshot, ok: true})
	}
	h.workers.Go(sub.run)
	h.mu.Unlock()

	h.metrics.AddLiveSubscriptions(1)
	h.logger.Debug("live subscription opened", "match_id", matchID, "subscription_id", sub.id)
	return sub, nil
}

// Publish retains snapshot and delivers it to every subscriber of its match.
func (h *Hub) Publish(ctx context.Context, snapshot live.Snapshot) error {
	if snapshot.MatchID == "" {
		return ErrMissingMatchID
	}
	if snapshot.ReceivedAt.IsZero() {
		snapshot.ReceivedAt = h.now()
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		return ErrClosed
	}

	h.snapshots.Set(ctx, snapshot.MatchID, snapshot)
	for _, sub := range h.subs[snapshot.MatchID] {
		sub.offer(delivery{snapshot: snapshot, ok: true})
	}
	h.metrics.IncLivePublished()
	h.logger.DebugContext(ctx, "live snapshot published",
		"match_id", snapshot.MatchID,
		"status", string(snapshot.Status),
		"subscribers", len(h.subs[snapshot.MatchID]),
	)
	return nil
}

// Clear drops the retained snapshot and tells subscribers to revert to
// source data. Nothing is delivered when no snapshot was retained.
func (h *Hub) Clear(ctx context.Context, matchID string) (bool, error) {
	if matchID == "" {
		return false, ErrMissingMatchID
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		return false, ErrClosed
	}

	existed := h.snapshots.Delete(ctx, matchID)
	if existed {
		for _, sub := range h.subs[matchID] {
			sub.offer(delivery{ok: false})
		}
		h.metrics.IncLiveCleared()
	}
	h.logger.DebugContext(ctx, "live snapshot cleared", "match_id", matchID, "retained", existed)
	return existed, nil
}

func (h *Hub) Latest(matchID string) (live.Snapshot, bool) {
	return h.snapshots.Get(context.Background(), matchID)
}

// ActiveMatchIDs lists matches with at least one open subscription, sorted.
func (h *Hub) ActiveMatchIDs() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]string, 0, len(h.subs))
	for matchID, byID := range h.subs {
		if len(byID) > 0 {
			out = append(out, matchID)
		}
	}
	slices.Sort(out)
	return out
}

func (h *Hub) Subscribers(matchID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[matchID])
}

// Run sweeps expired snapshots every interval until ctx is done.
func (h *Hub) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if dropped := h.snapshots.Sweep(); dropped > 0 {
				h.logger.DebugContext(ctx, "expired live snapshots swept", "dropped", dropped)
			}
		}
	}
}

// Close releases every subscription and waits for delivery goroutines to exit.
func (h *Hub) Close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	var open []*subscription
	for _, byID := range h.subs {
		for _, sub := range byID {
			open = append(open, sub)
		}
	}
	h.mu.Unlock()

	for _, sub := range open {
		sub.Close()
	}
	h.workers.Wait()
}

func (h *Hub) remove(sub *subscription) {
	h.mu.Lock()
	byID := h.subs[sub.matchID]
	_, ok := byID[sub.id]
	delete(byID, sub.id)
	if len(byID) == 0 {
		delete(h.subs, sub.matchID)
	}
	h.mu.Unlock()

	if ok {
		h.metrics.AddLiveSubscriptions(-1)
		h.logger.Debug("live subscription closed", "match_id", sub.matchID, "subscription_id", sub.id)
	}
}
