package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/riskibarqy/volley-league/external/livescore"
	"github.com/riskibarqy/volley-league/internal/config"
	"github.com/riskibarqy/volley-league/internal/domain/match"
	"github.com/riskibarqy/volley-league/internal/infrastructure/live/hub"
	"github.com/riskibarqy/volley-league/internal/infrastructure/source/csvsource"
	"github.com/riskibarqy/volley-league/internal/infrastructure/source/memory"
	"github.com/riskibarqy/volley-league/internal/interfaces/httpapi"
	"github.com/riskibarqy/volley-league/internal/platform/logging"
	"github.com/riskibarqy/volley-league/internal/platform/metrics"
	"github.com/riskibarqy/volley-league/internal/usecase"
	"github.com/sourcegraph/conc"
)

// MemorySource selects the built-in seed instead of a CSV sheet.
const MemorySource = "memory"

const snapshotSweepInterval = time.Minute

// App owns the HTTP server and the background loops feeding it.
type App struct {
	Server *http.Server

	league *usecase.LeagueService
	hub    *hub.Hub
	poller *livescore.Poller
	cfg    config.Config
	logger *logging.Logger

	workers conc.WaitGroup
}

func New(cfg config.Config, logger *logging.Logger) (*App, error) {
	if strings.TrimSpace(cfg.HTTPAddr) == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}
	if logger == nil {
		logger = logging.Default()
	}

	var (
		meter          metrics.Metrics = metrics.Nop{}
		metricsHandler http.Handler
	)
	if cfg.MetricsEnabled {
		registry := prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		meter = metrics.NewService(registry)
		metricsHandler = metrics.NewHandler(registry)
	}

	liveHub := hub.New(hub.Config{
		SnapshotTTL: cfg.LiveSnapshotTTL,
		Metrics:     meter,
		Logger:      logger.Named("live_hub"),
	})

	leagueSvc := usecase.NewLeagueService(usecase.LeagueServiceConfig{
		Source:    newRowSource(cfg, logger),
		Snapshots: liveHub,
		Metrics:   meter,
		Logger:    logger.Named("league"),
		Location:  cfg.ScheduleLocation,
	})

	var poller *livescore.Poller
	if cfg.LiveFeedEnabled {
		client := livescore.NewClient(livescore.ClientConfig{
			BaseURL:        cfg.LiveFeedBaseURL,
			Token:          cfg.LiveFeedToken,
			Timeout:        cfg.LiveFeedTimeout,
			MaxRetries:     1,
			Logger:         logger.Named("livescore"),
			CircuitBreaker: cfg.LiveFeedCircuit,
		})
		var err error
		poller, err = livescore.NewPoller(client, liveHub, livescore.PollerConfig{
			Interval:   cfg.LiveFeedPollInterval,
			MaxWorkers: cfg.LiveFeedMaxWorkers,
			Metrics:    meter,
			Logger:     logger.Named("livescore_poller"),
		})
		if err != nil {
			liveHub.Close()
			return nil, fmt.Errorf("build live poller: %w", err)
		}
	}

	handler := httpapi.NewHandler(leagueSvc, liveHub, logger, httpapi.HandlerConfig{
		CheckOrigin: allowOrigins(cfg.CORSAllowedOrigins),
	})
	router := httpapi.NewRouter(handler, logger, httpapi.RouterConfig{
		SwaggerEnabled:     cfg.SwaggerEnabled,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		InternalJobToken:   cfg.InternalJobToken,
		MetricsHandler:     metricsHandler,
	})

	return &App{
		Server: &http.Server{
			Addr:         cfg.HTTPAddr,
			Handler:      router,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		},
		league: leagueSvc,
		hub:    liveHub,
		poller: poller,
		cfg:    cfg,
		logger: logger,
	}, nil
}

func newRowSource(cfg config.Config, logger *logging.Logger) match.RowSource {
	if strings.EqualFold(strings.TrimSpace(cfg.MatchesSource), MemorySource) {
		logger.Warn("using built-in seed schedule", "matches_source", cfg.MatchesSource)
		return memory.NewRowSource(memory.SeedMatchRows(), memory.SeedTeamRows())
	}
	return csvsource.New(csvsource.Config{
		MatchesLocation: cfg.MatchesSource,
		TeamsLocation:   cfg.TeamsSource,
		Timeout:         cfg.SourceTimeout,
		MaxRetries:      cfg.SourceMaxRetries,
		Logger:          logger.Named("csvsource"),
		CircuitBreaker:  cfg.SourceCircuit,
	})
}

// allowOrigins mirrors the CORS allow-list for websocket upgrades.
// A wildcard entry accepts any origin.
func allowOrigins(origins []string) func(*http.Request) bool {
	allowed := make(map[string]struct{}, len(origins))
	for _, origin := range origins {
		if origin == "*" {
			return func(*http.Request) bool { return true }
		}
		allowed[origin] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := allowed[origin]
		return ok
	}
}

// Start loads the first board and launches the background loops. A failed
// first load is logged; requests retry the load on demand.
func (a *App) Start(ctx context.Context) {
	if board, err := a.league.Refresh(ctx); err != nil {
		a.logger.WarnContext(ctx, "initial data load failed", "error", err)
	} else {
		a.logger.InfoContext(ctx, "initial data loaded",
			"matches", len(board.Matches),
			"teams", len(board.Standings),
			"rounds", len(board.Rounds),
		)
	}

	a.workers.Go(func() { a.league.Run(ctx, a.cfg.DataRefreshInterval) })
	a.workers.Go(func() { a.hub.Run(ctx, snapshotSweepInterval) })
	if a.poller != nil {
		a.workers.Go(func() { a.poller.Run(ctx) })
	}
}

// ListenAndServe blocks until the server stops. A graceful shutdown is not an error.
func (a *App) ListenAndServe() error {
	a.logger.Info("http server starting", "addr", a.Server.Addr)
	if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the server, then waits for the loops started by Start. The
// caller cancels the Start context first.
func (a *App) Shutdown(ctx context.Context) error {
	err := a.Server.Shutdown(ctx)
	a.hub.Close()
	a.workers.Wait()
	if a.poller != nil {
		a.poller.Close()
	}
	a.logger.Info("http server stopped")
	return err
}
