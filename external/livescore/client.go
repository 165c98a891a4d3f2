package livescore

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/volley-league/internal/domain/live"
	"github.com/riskibarqy/volley-league/internal/domain/match"
	"github.com/riskibarqy/volley-league/internal/platform/logging"
	"github.com/riskibarqy/volley-league/internal/platform/resilience"
	"github.com/riskibarqy/volley-league/internal/usecase"
)

var errLiveScoreTransient = crerr.New("live score transient failure")

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	Token          string
	Timeout        time.Duration
	MaxRetries     int
	RetryBackoff   time.Duration
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	maxRetries int
	backoff    time.Duration
	logger     *logging.Logger
	breaker    *resilience.CircuitBreaker
	flight     resilience.SingleFlight[fetchResult]
}

type fetchResult struct {
	snapshot live.Snapshot
	found    bool
}

func NewClient(cfg ClientConfig) *Client {
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
		httpClient.Timeout = 5 * time.Second
	}

	backoff := cfg.RetryBackoff
	if backoff <= 0 {
		backoff = 500 * time.Millisecond
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		token:      strings.TrimSpace(cfg.Token),
		maxRetries: max(cfg.MaxRetries, 0),
		backoff:    backoff,
		logger:     logger,
		breaker:    resilience.NewCircuitBreakerFromConfig(cfg.CircuitBreaker),
	}
}

// FetchLive returns the provider's current snapshot for matchID. found is
// false when the provider has no live state for the match.
func (c *Client) FetchLive(ctx context.Context, matchID string) (live.Snapshot, bool, error) {
	matchID = strings.TrimSpace(matchID)
	if matchID == "" {
		return live.Snapshot{}, false, fmt.Errorf("%w: match id is required", usecase.ErrInvalidInput)
	}
	if c.baseURL == "" {
		return live.Snapshot{}, false, fmt.Errorf("%w: live score base url is empty", usecase.ErrDependencyUnavailable)
	}

	result, err, _ := c.flight.Do(matchID, func() (fetchResult, error) {
		var out fetchResult
		err := c.breaker.Execute(func() error {
			var err error
			out, err = c.fetch(ctx, matchID)
			return err
		}, isTransient)
		return out, err
	})
	if stderrors.Is(err, resilience.ErrCircuitOpen) {
		c.logger.WarnContext(ctx, "live score circuit breaker rejected request", "state", c.breaker.State())
		return live.Snapshot{}, false, fmt.Errorf("%w: live score provider is temporarily unavailable", usecase.ErrDependencyUnavailable)
	}
	if err != nil {
		return live.Snapshot{}, false, err
	}
	return result.snapshot, result.found, nil
}

func (c *Client) fetch(ctx context.Context, matchID string) (fetchResult, error) {
	fullURL := c.baseURL + "/matches/" + url.PathEscape(matchID) + "/live"

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		result, err := c.executeRequest(ctx, fullURL, matchID)
		if err == nil {
			return result, nil
		}
		lastErr = err
		if !isTransient(err) || attempt == c.maxRetries {
			break
		}

		timer := time.NewTimer(time.Duration(attempt+1) * c.backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return fetchResult{}, ctx.Err()
		case <-timer.C:
		}
	}
	return fetchResult{}, lastErr
}

func (c *Client) executeRequest(ctx context.Context, fullURL, matchID string) (fetchResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return fetchResult{}, crerr.Wrap(err, "build request")
	}
	req.Header.Set("accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fetchResult{}, crerr.Mark(crerr.Wrap(err, "send request"), errLiveScoreTransient)
	}
	raw, readErr := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	_ = resp.Body.Close()
	if readErr != nil {
		return fetchResult{}, crerr.Mark(crerr.Wrap(readErr, "read response body"), errLiveScoreTransient)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fetchResult{}, nil
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
	case isRetryableStatus(resp.StatusCode):
		return fetchResult{}, crerr.Mark(
			crerr.Newf("provider status=%d body=%s", resp.StatusCode, abbreviateBody(raw)),
			errLiveScoreTransient,
		)
	default:
		return fetchResult{}, crerr.Newf("provider status=%d body=%s", resp.StatusCode, abbreviateBody(raw))
	}

	var envelope liveEnvelope
	if err := sonic.Unmarshal(raw, &envelope); err != nil {
		return fetchResult{}, crerr.Wrap(err, "decode provider payload")
	}
	if envelope.Data == nil {
		return fetchResult{}, nil
	}
	return fetchResult{snapshot: envelope.Data.toSnapshot(matchID), found: true}, nil
}

type liveEnvelope struct {
	Data *livePayload `json:"data"`
}

type livePayload struct {
	MatchID   string        `json:"match_id"`
	Status    string        `json:"status"`
	Sets      []*setPayload `json:"sets"`
	UpdatedAt string        `json:"updated_at"`
}

type setPayload struct {
	Home int `json:"home"`
	Away int `json:"away"`
}

func (p *livePayload) toSnapshot(requestedID string) live.Snapshot {
	snapshot := live.Snapshot{
		MatchID: requestedID,
		Status:  match.NormalizeStatus(p.Status),
	}
	for i, item := range p.Sets {
		if i >= match.SetSlots {
			break
		}
		if item == nil || item.Home < 0 || item.Away < 0 {
			continue
		}
		snapshot.Sets[i] = &match.SetScore{Home: item.Home, Away: item.Away}
	}
	if parsed, err := time.Parse(time.RFC3339, strings.TrimSpace(p.UpdatedAt)); err == nil {
		snapshot.ReceivedAt = parsed.UTC()
	}
	return snapshot
}

func isTransient(err error) bool {
	return err != nil && crerr.Is(err, errLiveScoreTransient)
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
