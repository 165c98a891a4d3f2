package csvsource

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/volley-league/internal/domain/match"
	"github.com/riskibarqy/volley-league/internal/platform/logging"
	"github.com/riskibarqy/volley-league/internal/platform/resilience"
	"github.com/riskibarqy/volley-league/internal/usecase"
	"github.com/valyala/bytebufferpool"
)

const maxBodyBytes = 8 << 20

var errCSVTransient = crerr.New("csv source transient failure")

type Config struct {
	// MatchesLocation and TeamsLocation are http(s) URLs or local file paths.
	MatchesLocation string
	TeamsLocation   string
	HTTPClient      *http.Client
	Timeout         time.Duration
	MaxRetries      int
	RetryBackoff    time.Duration
	Logger          *logging.Logger
	CircuitBreaker  resilience.CircuitBreakerConfig
}

// Source reads match and roster sheets published as CSV.
type Source struct {
	httpClient *http.Client
	matches    string
	teams      string
	maxRetries int
	backoff    time.Duration
	logger     *logging.Logger
	breaker    *resilience.CircuitBreaker
}

var _ match.RowSource = (*Source)(nil)

func New(cfg Config) *Source {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := &http.Client{Timeout: cfg.Timeout}
	if cfg.HTTPClient != nil {
		// Copy so the default timeout never leaks into the caller's client.
		clone := *cfg.HTTPClient
		httpClient = &clone
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 15 * time.Second
	}

	backoff := cfg.RetryBackoff
	if backoff <= 0 {
		backoff = time.Second
	}

	return &Source{
		httpClient: httpClient,
		matches:    strings.TrimSpace(cfg.MatchesLocation),
		teams:      strings.TrimSpace(cfg.TeamsLocation),
		maxRetries: max(cfg.MaxRetries, 0),
		backoff:    backoff,
		logger:     logger,
		breaker:    resilience.NewCircuitBreakerFromConfig(cfg.CircuitBreaker),
	}
}

func (s *Source) FetchMatchRows(ctx context.Context) ([]match.Row, error) {
	if s.matches == "" {
		return nil, fmt.Errorf("%w: matches location is empty", usecase.ErrInvalidInput)
	}
	return s.fetch(ctx, s.matches)
}

// FetchTeamRows returns no rows when no roster location is configured.
func (s *Source) FetchTeamRows(ctx context.Context) ([]match.Row, error) {
	if s.teams == "" {
		return nil, nil
	}
	return s.fetch(ctx, s.teams)
}

func (s *Source) fetch(ctx context.Context, location string) ([]match.Row, error) {
	if !isRemote(location) {
		return readFile(location)
	}

	var rows []match.Row
	err := s.breaker.Execute(func() error {
		var err error
		rows, err = s.download(ctx, location)
		return err
	}, isTransient)
	if stderrors.Is(err, resilience.ErrCircuitOpen) {
		s.logger.WarnContext(ctx, "csv source circuit breaker rejected request", "state", s.breaker.State())
		return nil, fmt.Errorf("%w: csv source is temporarily unavailable", usecase.ErrDependencyUnavailable)
	}
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *Source) download(ctx context.Context, location string) ([]match.Row, error) {
	var lastErr error
	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		rows, err := s.get(ctx, location)
		if err == nil {
			return rows, nil
		}
		lastErr = err
		if !isTransient(err) || attempt == s.maxRetries {
			break
		}

		timer := time.NewTimer(time.Duration(attempt+1) * s.backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	s.logger.WarnContext(ctx, "csv source request failed", "location", location, "error", lastErr)
	return nil, lastErr
}

func (s *Source) get(ctx context.Context, location string) ([]match.Row, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, crerr.Wrap(err, "build request")
	}
	req.Header.Set("accept", "text/csv")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, crerr.Mark(crerr.Wrap(err, "send request"), errCSVTransient)
	}
	defer resp.Body.Close()

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	if _, err := buf.ReadFrom(io.LimitReader(resp.Body, maxBodyBytes)); err != nil {
		return nil, crerr.Mark(crerr.Wrap(err, "read response body"), errCSVTransient)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		statusErr := crerr.Newf("csv source status=%d body=%s", resp.StatusCode, abbreviateBody(buf.B))
		if isRetryableStatus(resp.StatusCode) {
			return nil, crerr.Mark(statusErr, errCSVTransient)
		}
		return nil, statusErr
	}

	rows, err := ParseRows(bytes.NewReader(buf.B))
	if err != nil {
		return nil, crerr.Wrapf(err, "parse %s", location)
	}
	return rows, nil
}

func readFile(path string) ([]match.Row, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, crerr.Wrapf(err, "open %s", path)
	}
	defer file.Close()

	rows, err := ParseRows(file)
	if err != nil {
		return nil, crerr.Wrapf(err, "parse %s", path)
	}
	return rows, nil
}

func isRemote(location string) bool {
	lower := strings.ToLower(location)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

func isTransient(err error) bool {
	return err != nil && crerr.Is(err, errCSVTransient)
}

func isRetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func abbreviateBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) <= 240 {
		return text
	}
	return text[:240] + "..."
}
