package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/riskibarqy/volley-league/internal/domain/live"
	"github.com/riskibarqy/volley-league/internal/domain/match"
	"github.com/riskibarqy/volley-league/internal/domain/round"
	"github.com/riskibarqy/volley-league/internal/domain/standing"
	"github.com/riskibarqy/volley-league/internal/platform/logging"
	"github.com/riskibarqy/volley-league/internal/platform/metrics"
	"github.com/riskibarqy/volley-league/internal/platform/resilience"
)

// Board is one immutable refresh result. It is replaced wholesale, never mutated.
type Board struct {
	Matches   []match.Match
	Teams     []string
	Standings []standing.Standing
	Rounds    []round.Group
	LoadedAt  time.Time
	byID      map[string]match.Match
}

func (b *Board) Match(matchID string) (match.Match, bool) {
	if b == nil {
		return match.Match{}, false
	}
	m, ok := b.byID[matchID]
	return m, ok
}

// BuildBoard runs the normalizer, aggregator and round index over raw rows.
func BuildBoard(matchRows, teamRows []match.Row, loadedAt time.Time) (*Board, []RowIssue) {
	matches, issues := NormalizeMatchesWithIssues(matchRows)
	teams := NormalizeTeamRows(teamRows)

	byID := make(map[string]match.Match, len(matches))
	for _, m := range matches {
		if m.ID == "" {
			continue
		}
		if _, dup := byID[m.ID]; !dup {
			byID[m.ID] = m
		}
	}

	return &Board{
		Matches:   matches,
		Teams:     teams,
		Standings: ComputeStandingsWithRoster(matches, teams),
		Rounds:    GroupByRound(matches),
		LoadedAt:  loadedAt,
		byID:      byID,
	}, issues
}

type LeagueServiceConfig struct {
	Source    match.RowSource
	Snapshots live.SnapshotReader
	Metrics   metrics.Metrics
	Logger    *logging.Logger
	Location  *time.Location
	Now       func() time.Time
}

type LeagueService struct {
	source    match.RowSource
	snapshots live.SnapshotReader
	metrics   metrics.Metrics
	logger    *logging.Logger
	location  *time.Location
	now       func() time.Time

	board  atomic.Pointer[Board]
	flight resilience.SingleFlight[*Board]
}

func NewLeagueService(cfg LeagueServiceConfig) *LeagueService {
	s := &LeagueService{
		source:    cfg.Source,
		snapshots: cfg.Snapshots,
		metrics:   cfg.Metrics,
		logger:    cfg.Logger,
		location:  cfg.Location,
		now:       cfg.Now,
	}
	if s.metrics == nil {
		s.metrics = metrics.Nop{}
	}
	if s.logger == nil {
		s.logger = logging.Default()
	}
	if s.location == nil {
		s.location = time.UTC
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Refresh reloads the board from the source. Concurrent calls share one load,
// which runs detached from the cancellation of whichever caller started it.
func (s *LeagueService) Refresh(ctx context.Context) (*Board, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeagueService.Refresh")
	defer span.End()

	// The load is shared, so one caller going away must not fail the others.
	loadCtx := context.WithoutCancel(ctx)
	board, err, shared := s.flight.Do("refresh", func() (*Board, error) {
		return s.load(loadCtx)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		s.logger.DebugContext(ctx, "refresh shared with in-flight load")
	}
	return board, nil
}

func (s *LeagueService) load(ctx context.Context) (*Board, error) {
	started := s.now()
	if s.source == nil {
		return nil, fmt.Errorf("%w: match source is not configured", ErrDependencyUnavailable)
	}

	matchRows, err := s.source.FetchMatchRows(ctx)
	if err != nil {
		s.metrics.ObserveRefresh(s.now().Sub(started), 0, err)
		return nil, fmt.Errorf("fetch match rows: %w", err)
	}
	teamRows, err := s.source.FetchTeamRows(ctx)
	if err != nil {
		// The roster is optional; standings still derive teams from matches.
		s.logger.WarnContext(ctx, "fetch team rows failed", "error", err)
		teamRows = nil
	}

	board, issues := BuildBoard(matchRows, teamRows, s.now())
	for _, issue := range issues {
		s.logger.DebugContext(ctx, "malformed field treated as absent",
			"row", issue.Row,
			"column", issue.Column,
			"value", issue.Value,
		)
	}
	for i, m := range board.Matches {
		if strings.TrimSpace(m.HomeTeam) == "" || strings.TrimSpace(m.AwayTeam) == "" {
			s.logger.WarnContext(ctx, "match row has empty team name", "row", i, "match_id", m.ID)
		}
	}

	s.board.Store(board)
	elapsed := s.now().Sub(started)
	s.metrics.ObserveRefresh(elapsed, len(board.Matches), nil)
	s.logger.InfoContext(ctx, "league board refreshed",
		"matches", len(board.Matches),
		"teams", len(board.Standings),
		"rounds", len(board.Rounds),
		"malformed_fields", len(issues),
		"duration_ms", elapsed.Milliseconds(),
	)
	return board, nil
}

// Board returns the current board, loading it on first use.
func (s *LeagueService) Board(ctx context.Context) (*Board, error) {
	if board := s.board.Load(); board != nil {
		return board, nil
	}
	return s.Refresh(ctx)
}

func (s *LeagueService) Standings(ctx context.Context) ([]standing.Standing, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeagueService.Standings")
	defer span.End()

	board, err := s.Board(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]standing.Standing, len(board.Standings))
	copy(out, board.Standings)
	return out, nil
}

func (s *LeagueService) Rounds(ctx context.Context) ([]round.Group, error) {
	board, err := s.Board(ctx)
	if err != nil {
		return nil, err
	}
	return board.Rounds, nil
}

// Today is the current calendar date in the schedule timezone.
func (s *LeagueService) Today() string {
	return s.now().In(s.location).Format(match.DateLayout)
}

func (s *LeagueService) CurrentCursor(ctx context.Context) (int, error) {
	board, err := s.Board(ctx)
	if err != nil {
		return 0, err
	}
	if len(board.Rounds) == 0 {
		return 0, ErrEmptySchedule
	}
	return LocateCurrentRound(board.Rounds, s.Today()), nil
}

// RoundView renders the round at cursor reconciled with retained live snapshots.
func (s *LeagueService) RoundView(ctx context.Context, cursor int) (RoundView, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeagueService.RoundView")
	defer span.End()

	board, err := s.Board(ctx)
	if err != nil {
		return RoundView{}, err
	}
	if len(board.Rounds) == 0 {
		return RoundView{Empty: true}, ErrEmptySchedule
	}
	return BuildRoundView(board.Rounds, cursor, s.snapshots), nil
}

func (s *LeagueService) CurrentRoundView(ctx context.Context) (RoundView, error) {
	cursor, err := s.CurrentCursor(ctx)
	if err != nil {
		return RoundView{Empty: true}, err
	}
	return s.RoundView(ctx, cursor)
}

func (s *LeagueService) MatchDisplay(ctx context.Context, matchID string) (MatchView, error) {
	matchID = strings.TrimSpace(matchID)
	if matchID == "" {
		return MatchView{}, fmt.Errorf("%w: match id is required", ErrInvalidInput)
	}

	board, err := s.Board(ctx)
	if err != nil {
		return MatchView{}, err
	}
	m, ok := board.Match(matchID)
	if !ok {
		return MatchView{}, fmt.Errorf("%w: match=%s", ErrNotFound, matchID)
	}
	return MatchView{Match: m, Display: Reconcile(m, latestSnapshot(s.snapshots, matchID))}, nil
}

// Run refreshes on every tick until ctx is done. Failures keep the previous board.
func (s *LeagueService) Run(ctx context.Context, interval time.Duration) {
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
			if _, err := s.Refresh(ctx); err != nil && !errors.Is(err, context.Canceled) {
				s.logger.WarnContext(ctx, "scheduled refresh failed", "error", err)
			}
		}
	}
}
