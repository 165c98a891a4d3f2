package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/riskibarqy/volley-league/internal/domain/live"
	"github.com/riskibarqy/volley-league/internal/domain/match"
	matchmock "github.com/riskibarqy/volley-league/internal/mocks/domain/match"
	"github.com/riskibarqy/volley-league/internal/platform/logging"
	"github.com/stretchr/testify/mock"
)

var fixedNow = time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)

func sampleMatchRows() []match.Row {
	return []match.Row{
		{"id": "m1", "round": "1", "date": "2026-10-01", "home_team": "Alpha", "away_team": "Beta",
			"set1_h": "25", "set1_a": "20", "set2_h": "18", "set2_a": "25", "set3_h": "25", "set3_a": "22", "status": "played"},
		{"id": "m2", "round": "2", "date": "2026-10-20", "time": "19:00", "home_team": "Beta", "away_team": "Gamma"},
		{"id": "m3", "round": "2", "date": "2026-10-20", "time": "18:00", "home_team": "Alpha", "away_team": "Gamma"},
	}
}

func newTestLeagueService(source match.RowSource, snapshots live.SnapshotReader) *LeagueService {
	return NewLeagueService(LeagueServiceConfig{
		Source:    source,
		Snapshots: snapshots,
		Logger:    logging.NewNop(),
		Now:       func() time.Time { return fixedNow },
	})
}

func TestLeagueService_RefreshBuildsBoard(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	source := matchmock.NewRowSource(t)
	source.On("FetchMatchRows", mock.Anything).Return(sampleMatchRows(), nil).Once()
	source.On("FetchTeamRows", mock.Anything).Return([]match.Row{{"team": "Delta"}}, nil).Once()

	service := newTestLeagueService(source, nil)

	board, err := service.Refresh(ctx)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if len(board.Matches) != 3 || len(board.Rounds) != 2 {
		t.Fatalf("unexpected board: matches=%d rounds=%d", len(board.Matches), len(board.Rounds))
	}

	standings, err := service.Standings(ctx)
	if err != nil {
		t.Fatalf("standings: %v", err)
	}
	if len(standings) != 4 || standings[0].Team != "Alpha" {
		t.Fatalf("unexpected standings: %+v", standings)
	}
	standings[0].Team = "mutated"
	again, _ := service.Standings(ctx)
	if again[0].Team != "Alpha" {
		t.Fatalf("standings must be returned as a copy")
	}
}

func TestLeagueService_BoardLoadsOnce(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	source := matchmock.NewRowSource(t)
	source.On("FetchMatchRows", mock.Anything).Return(sampleMatchRows(), nil).Once()
	source.On("FetchTeamRows", mock.Anything).Return(nil, nil).Once()

	service := newTestLeagueService(source, nil)
	if _, err := service.Board(ctx); err != nil {
		t.Fatalf("first board: %v", err)
	}
	if _, err := service.Board(ctx); err != nil {
		t.Fatalf("second board: %v", err)
	}
}

func TestLeagueService_ConcurrentRefreshSharesLoad(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	release := make(chan struct{})
	source := matchmock.NewRowSource(t)
	source.On("FetchMatchRows", mock.Anything).
		Run(func(mock.Arguments) { <-release }).
		Return(sampleMatchRows(), nil).
		Maybe()
	source.On("FetchTeamRows", mock.Anything).Return(nil, nil).Maybe()

	service := newTestLeagueService(source, nil)

	var wg sync.WaitGroup
	errs := make(chan error, 4)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := service.Refresh(ctx)
			errs <- err
		}()
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Fatalf("refresh: %v", err)
		}
	}
	calls := 0
	for _, call := range source.Calls {
		if call.Method == "FetchMatchRows" {
			calls++
		}
	}
	if calls < 1 || calls > 4 {
		t.Fatalf("unexpected fetch count %d", calls)
	}
}

func TestLeagueService_RefreshSurvivesCallerCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var loadErr error
	source := matchmock.NewRowSource(t)
	source.On("FetchMatchRows", mock.Anything).
		Run(func(args mock.Arguments) {
			loadErr = args.Get(0).(context.Context).Err()
		}).
		Return(sampleMatchRows(), nil).
		Once()
	source.On("FetchTeamRows", mock.Anything).Return(nil, nil).Once()

	service := newTestLeagueService(source, nil)
	board, err := service.Refresh(ctx)
	if err != nil {
		t.Fatalf("refresh with a cancelled caller: %v", err)
	}
	if loadErr != nil {
		t.Fatalf("shared load saw caller cancellation: %v", loadErr)
	}
	if len(board.Matches) != 3 {
		t.Fatalf("unexpected board: %d matches", len(board.Matches))
	}
}

func TestLeagueService_TeamRowsFailureIsTolerated(t *testing.T) {
	t.Parallel()

	source := matchmock.NewRowSource(t)
	source.On("FetchMatchRows", mock.Anything).Return(sampleMatchRows(), nil).Once()
	source.On("FetchTeamRows", mock.Anything).Return(nil, errors.New("sheet missing")).Once()

	service := newTestLeagueService(source, nil)
	board, err := service.Refresh(context.Background())
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if len(board.Teams) != 0 || len(board.Standings) != 3 {
		t.Fatalf("standings should derive from matches, got %+v", board.Standings)
	}
}

func TestLeagueService_RefreshFailureKeepsPreviousBoard(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	sourceErr := errors.New("sheet unavailable")
	source := matchmock.NewRowSource(t)
	source.On("FetchMatchRows", mock.Anything).Return(sampleMatchRows(), nil).Once()
	source.On("FetchTeamRows", mock.Anything).Return(nil, nil).Once()
	source.On("FetchMatchRows", mock.Anything).Return(nil, sourceErr).Once()

	service := newTestLeagueService(source, nil)
	first, err := service.Refresh(ctx)
	if err != nil {
		t.Fatalf("first refresh: %v", err)
	}

	if _, err := service.Refresh(ctx); !errors.Is(err, sourceErr) {
		t.Fatalf("expected source error, got %v", err)
	}
	current, err := service.Board(ctx)
	if err != nil || current != first {
		t.Fatalf("failed refresh must keep the previous board, err=%v", err)
	}
}

func TestLeagueService_CurrentRoundViewReconcilesSnapshots(t *testing.T) {
	t.Parallel()

	source := matchmock.NewRowSource(t)
	source.On("FetchMatchRows", mock.Anything).Return(sampleMatchRows(), nil).Once()
	source.On("FetchTeamRows", mock.Anything).Return(nil, nil).Once()
	snapshots := staticSnapshots{"m2": {MatchID: "m2", Status: match.StatusLive, Sets: sets(set(25, 23))}}

	service := newTestLeagueService(source, snapshots)
	view, err := service.CurrentRoundView(context.Background())
	if err != nil {
		t.Fatalf("current round view: %v", err)
	}
	if view.Cursor != 1 || view.Label != "Round 2" || len(view.Matches) != 2 {
		t.Fatalf("unexpected view: %+v", view)
	}
	if view.Matches[0].Match.ID != "m3" || view.Matches[1].Match.ID != "m2" {
		t.Fatalf("matches should be ordered by time, got %s,%s", view.Matches[0].Match.ID, view.Matches[1].Match.ID)
	}
	if !view.Matches[1].Display.IsLive || view.Matches[1].Display.SetsWonHome != 1 {
		t.Fatalf("expected live override, got %+v", view.Matches[1].Display)
	}
}

func TestLeagueService_MatchDisplayErrors(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	source := matchmock.NewRowSource(t)
	source.On("FetchMatchRows", mock.Anything).Return(sampleMatchRows(), nil).Once()
	source.On("FetchTeamRows", mock.Anything).Return(nil, nil).Once()

	service := newTestLeagueService(source, nil)

	if _, err := service.MatchDisplay(ctx, " "); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if _, err := service.MatchDisplay(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	got, err := service.MatchDisplay(ctx, "m1")
	if err != nil {
		t.Fatalf("match display: %v", err)
	}
	if got.Display.StatusLabel != live.LabelFinal || got.Display.SetsWonHome != 2 {
		t.Fatalf("unexpected display: %+v", got.Display)
	}
}

func TestLeagueService_EmptySchedule(t *testing.T) {
	t.Parallel()

	source := matchmock.NewRowSource(t)
	source.On("FetchMatchRows", mock.Anything).Return([]match.Row{}, nil).Once()
	source.On("FetchTeamRows", mock.Anything).Return(nil, nil).Once()

	service := newTestLeagueService(source, nil)
	if _, err := service.CurrentCursor(context.Background()); !errors.Is(err, ErrEmptySchedule) {
		t.Fatalf("expected ErrEmptySchedule, got %v", err)
	}
	view, err := service.RoundView(context.Background(), 0)
	if !errors.Is(err, ErrEmptySchedule) || !view.Empty {
		t.Fatalf("expected empty view, got %+v err=%v", view, err)
	}
}

func TestLeagueService_MissingSource(t *testing.T) {
	t.Parallel()

	service := newTestLeagueService(nil, nil)
	if _, err := service.Refresh(context.Background()); !errors.Is(err, ErrDependencyUnavailable) {
		t.Fatalf("expected ErrDependencyUnavailable, got %v", err)
	}
}

func TestLeagueService_TodayUsesLocation(t *testing.T) {
	t.Parallel()

	loc := time.FixedZone("UTC+14", 14*60*60)
	service := NewLeagueService(LeagueServiceConfig{
		Location: loc,
		Logger:   logging.NewNop(),
		Now:      func() time.Time { return time.Date(2026, 10, 14, 20, 0, 0, 0, time.UTC) },
	})
	if got := service.Today(); got != "2026-10-15" {
		t.Fatalf("expected local date 2026-10-15, got %s", got)
	}
}
