package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/riskibarqy/volley-league/internal/usecase"
)

// PublishLiveSnapshot overrides the displayed state of one match until it
// is cleared or its snapshot expires.
func (h *Handler) PublishLiveSnapshot(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.PublishLiveSnapshot")
	defer span.End()

	if h.live == nil {
		writeError(ctx, w, fmt.Errorf("%w: live feed is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	matchID := strings.TrimSpace(r.PathValue("matchID"))
	board, err := h.leagueService.Board(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	if _, ok := board.Match(matchID); !ok {
		writeError(ctx, w, fmt.Errorf("%w: match=%s", usecase.ErrNotFound, matchID))
		return
	}

	var req liveSnapshotRequest
	if err := decodeJSONBody(r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}
	req.Status = strings.ToLower(strings.TrimSpace(req.Status))
	req.UpdatedAt = strings.TrimSpace(req.UpdatedAt)
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	if err := h.live.Publish(ctx, req.toSnapshot(matchID, h.now().UTC())); err != nil {
		h.logger.WarnContext(ctx, "publish live snapshot failed", "match_id", matchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	view, err := h.leagueService.MatchDisplay(ctx, matchID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, toMatchViewDTO(view))
}

func (h *Handler) ClearLiveSnapshot(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ClearLiveSnapshot")
	defer span.End()

	if h.live == nil {
		writeError(ctx, w, fmt.Errorf("%w: live feed is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	matchID := strings.TrimSpace(r.PathValue("matchID"))
	if matchID == "" {
		writeError(ctx, w, fmt.Errorf("%w: match id is required", usecase.ErrInvalidInput))
		return
	}

	cleared, err := h.live.Clear(ctx, matchID)
	if err != nil {
		h.logger.WarnContext(ctx, "clear live snapshot failed", "match_id", matchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, clearLiveDTO{MatchID: matchID, Cleared: cleared})
}
