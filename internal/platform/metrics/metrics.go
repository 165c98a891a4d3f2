package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics decouples the application from the Prometheus implementation.
type Metrics interface {
	ObserveRefresh(duration time.Duration, matches int, err error)
	IncLivePublished()
	IncLiveCleared()
	AddLiveSubscriptions(delta int)
	IncLivePollFailure()
}

var (
	_ Metrics = (*Service)(nil)
	_ Metrics = Nop{}
)

// Service holds the Prometheus collectors.
type Service struct {
	RefreshRuns       prometheus.Counter
	RefreshFailures   prometheus.Counter
	RefreshDuration   prometheus.Histogram
	MatchesLoaded     prometheus.Gauge
	LivePublished     prometheus.Counter
	LiveCleared       prometheus.Counter
	LiveSubscriptions prometheus.Gauge
	LivePollFailures  prometheus.Counter
}

// NewService creates and registers the collectors. If no registerer is
// provided, it uses the default Prometheus registerer.
func NewService(registerer ...prometheus.Registerer) *Service {
	reg := prometheus.DefaultRegisterer
	if len(registerer) > 0 {
		reg = registerer[0]
	}

	s := &Service{
		RefreshRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "volley_refresh_runs_total",
			Help: "The total number of data source refreshes.",
		}),
		RefreshFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "volley_refresh_failures_total",
			Help: "The total number of failed data source refreshes.",
		}),
		RefreshDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "volley_refresh_duration_seconds",
			Help:    "The duration of a data source refresh.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		MatchesLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "volley_matches_loaded",
			Help: "The number of matches in the current board.",
		}),
		LivePublished: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "volley_live_snapshots_published_total",
			Help: "The total number of live snapshots published.",
		}),
		LiveCleared: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "volley_live_snapshots_cleared_total",
			Help: "The total number of live snapshots withdrawn.",
		}),
		LiveSubscriptions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "volley_live_subscriptions",
			Help: "The number of open live subscriptions.",
		}),
		LivePollFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "volley_live_poll_failures_total",
			Help: "The total number of failed live score fetches.",
		}),
	}

	reg.MustRegister(
		s.RefreshRuns,
		s.RefreshFailures,
		s.RefreshDuration,
		s.MatchesLoaded,
		s.LivePublished,
		s.LiveCleared,
		s.LiveSubscriptions,
		s.LivePollFailures,
	)

	return s
}

// NewHandler returns an http.Handler for the given Gatherer.
func NewHandler(gatherer ...prometheus.Gatherer) http.Handler {
	gath := prometheus.DefaultGatherer
	if len(gatherer) > 0 {
		gath = gatherer[0]
	}
	return promhttp.HandlerFor(gath, promhttp.HandlerOpts{})
}

func (s *Service) ObserveRefresh(duration time.Duration, matches int, err error) {
	s.RefreshRuns.Inc()
	s.RefreshDuration.Observe(duration.Seconds())
	if err != nil {
		s.RefreshFailures.Inc()
		return
	}
	s.MatchesLoaded.Set(float64(matches))
}

func (s *Service) IncLivePublished() {
	s.LivePublished.Inc()
}

func (s *Service) IncLiveCleared() {
	s.LiveCleared.Inc()
}

func (s *Service) AddLiveSubscriptions(delta int) {
	s.LiveSubscriptions.Add(float64(delta))
}

func (s *Service) IncLivePollFailure() {
	s.LivePollFailures.Inc()
}

// Nop discards every observation.
type Nop struct{}

func (Nop) ObserveRefresh(time.Duration, int, error) {}
func (Nop) IncLivePublished()                        {}
func (Nop) IncLiveCleared()                          {}
func (Nop) AddLiveSubscriptions(int)                 {}
func (Nop) IncLivePollFailure()                      {}
