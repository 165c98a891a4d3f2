package httpapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/websocket"
	"github.com/riskibarqy/volley-league/internal/domain/live"
	idgen "github.com/riskibarqy/volley-league/internal/platform/id"
	"github.com/riskibarqy/volley-league/internal/platform/logging"
	"github.com/riskibarqy/volley-league/internal/usecase"
)

const maxRequestBodyBytes = 64 << 10

// LiveStore is the live feed the handlers read from and the internal
// ingestion routes write into.
type LiveStore interface {
	live.Feed
	Publish(ctx context.Context, snapshot live.Snapshot) error
	Clear(ctx context.Context, matchID string) (bool, error)
}

type HandlerConfig struct {
	// CheckOrigin guards websocket upgrades. Nil accepts every origin.
	CheckOrigin func(r *http.Request) bool
	// StreamBuffer is the per-connection frame queue size.
	StreamBuffer int
	PingInterval time.Duration
	Now          func() time.Time
	// SessionIDs tags stream log lines. Defaults to random "ws_" ids.
	SessionIDs idgen.Generator
}

type Handler struct {
	leagueService *usecase.LeagueService
	live          LiveStore
	logger        *logging.Logger
	validator     *validator.Validate
	upgrader      websocket.Upgrader
	streamBuffer  int
	pingInterval  time.Duration
	now           func() time.Time
	sessionIDs    idgen.Generator
}

func NewHandler(
	leagueService *usecase.LeagueService,
	liveStore LiveStore,
	logger *logging.Logger,
	cfg HandlerConfig,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	checkOrigin := cfg.CheckOrigin
	if checkOrigin == nil {
		checkOrigin = func(*http.Request) bool { return true }
	}
	buffer := cfg.StreamBuffer
	if buffer <= 0 {
		buffer = 32
	}
	ping := cfg.PingInterval
	if ping <= 0 {
		ping = 30 * time.Second
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	sessionIDs := cfg.SessionIDs
	if sessionIDs == nil {
		sessionIDs = idgen.NewRandomGenerator("ws")
	}

	return &Handler{
		leagueService: leagueService,
		live:          liveStore,
		logger:        logger,
		validator:     newValidator(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin,
		},
		streamBuffer: buffer,
		pingInterval: ping,
		now:          now,
		sessionIDs:   sessionIDs,
	}
}

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return field.Name
		}
		return name
	})
	return v
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %w", usecase.ErrInvalidInput, err)
	}
	return nil
}

// decodeJSONBody decodes a strict JSON body into dst. An empty body leaves
// dst untouched when allowEmpty is set.
func decodeJSONBody(r *http.Request, dst any, allowEmpty bool) error {
	decoder := sonic.ConfigDefault.NewDecoder(io.LimitReader(r.Body, maxRequestBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		if allowEmpty && errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}
	return nil
}
