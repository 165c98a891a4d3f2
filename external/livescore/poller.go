package livescore

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/volley-league/internal/domain/live"
	"github.com/riskibarqy/volley-league/internal/platform/logging"
	"github.com/riskibarqy/volley-league/internal/platform/metrics"
)

type Fetcher interface {
	FetchLive(ctx context.Context, matchID string) (live.Snapshot, bool, error)
}

// Target is the live feed the poller publishes into.
type Target interface {
	Publish(ctx context.Context, snapshot live.Snapshot) error
	Clear(ctx context.Context, matchID string) (bool, error)
	ActiveMatchIDs() []string
}

type PollerConfig struct {
	Interval   time.Duration
	MaxWorkers int
	Metrics    metrics.Metrics
	Logger     *logging.Logger
}

type PollResult struct {
	Polled    int
	Published int
	Cleared   int
	Failed    int
}

// Poller fetches live state for every match that currently has subscribers.
type Poller struct {
	fetcher  Fetcher
	target   Target
	interval time.Duration
	pool     *ants.Pool
	workers  int
	metrics  metrics.Metrics
	logger   *logging.Logger
}

func NewPoller(fetcher Fetcher, target Target, cfg PollerConfig) (*Poller, error) {
	if fetcher == nil || target == nil {
		return nil, errors.New("live poller requires a fetcher and a target")
	}
	workers := cfg.MaxWorkers
	if workers <= 0 {
		workers = 4
	}
	interval := cfg.Interval
	if interval <= 0 {
		interval = 10 * time.Second
	}

	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, fmt.Errorf("create worker pool: %w", err)
	}

	p := &Poller{
		fetcher:  fetcher,
		target:   target,
		interval: interval,
		pool:     pool,
		workers:  workers,
		metrics:  cfg.Metrics,
		logger:   cfg.Logger,
	}
	if p.metrics == nil {
		p.metrics = metrics.Nop{}
	}
	if p.logger == nil {
		p.logger = logging.Default()
	}
	return p, nil
}

// PollOnce runs one fetch per active match id and waits for all of them.
func (p *Poller) PollOnce(ctx context.Context) (PollResult, error) {
	ids := p.target.ActiveMatchIDs()
	if len(ids) == 0 {
		return PollResult{}, nil
	}

	var published, cleared, failed atomic.Int32
	var workers sync.WaitGroup
	for _, matchID := range ids {
		workers.Add(1)
		if err := p.pool.Submit(func() {
			defer workers.Done()

			switch outcome := p.pollMatch(ctx, matchID); outcome {
			case outcomePublished:
				published.Add(1)
			case outcomeCleared:
				cleared.Add(1)
			case outcomeFailed:
				failed.Add(1)
			}
		}); err != nil {
			workers.Done()
			workers.Wait()
			return PollResult{}, fmt.Errorf("submit poll task to worker pool: %w", err)
		}
	}
	workers.Wait()

	result := PollResult{
		Polled:    len(ids),
		Published: int(published.Load()),
		Cleared:   int(cleared.Load()),
		Failed:    int(failed.Load()),
	}
	p.logger.DebugContext(ctx, "live poll finished",
		"polled", result.Polled,
		"published", result.Published,
		"cleared", result.Cleared,
		"failed", result.Failed,
		"workers", p.workers,
	)
	return result, nil
}

type pollOutcome int

const (
	outcomeUnchanged pollOutcome = iota
	outcomePublished
	outcomeCleared
	outcomeFailed
)

func (p *Poller) pollMatch(ctx context.Context, matchID string) pollOutcome {
	snapshot, found, err := p.fetcher.FetchLive(ctx, matchID)
	if err != nil {
		p.metrics.IncLivePollFailure()
		p.logger.WarnContext(ctx, "live score fetch failed", "match_id", matchID, "error", err)
		return outcomeFailed
	}

	if !found {
		existed, err := p.target.Clear(ctx, matchID)
		if err != nil {
			p.logger.WarnContext(ctx, "clear live snapshot failed", "match_id", matchID, "error", err)
			return outcomeFailed
		}
		if existed {
			return outcomeCleared
		}
		return outcomeUnchanged
	}

	snapshot.MatchID = matchID
	if err := p.target.Publish(ctx, snapshot); err != nil {
		p.logger.WarnContext(ctx, "publish live snapshot failed", "match_id", matchID, "error", err)
		return outcomeFailed
	}
	return outcomePublished
}

// Run polls every interval until ctx is done.
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := p.PollOnce(ctx); err != nil {
				p.logger.WarnContext(ctx, "live poll failed", "error", err)
			}
		}
	}
}

func (p *Poller) Close() {
	p.pool.Release()
}
