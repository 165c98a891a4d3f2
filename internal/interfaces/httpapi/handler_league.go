package httpapi

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/riskibarqy/volley-league/internal/usecase"
)

func (h *Handler) ListStandings(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListStandings")
	defer span.End()

	items, err := h.leagueService.Standings(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "list standings failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, toStandingDTOs(items))
}

func (h *Handler) ListRounds(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListRounds")
	defer span.End()

	groups, err := h.leagueService.Rounds(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "list rounds failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, toRoundSummaryDTOs(groups))
}

func (h *Handler) GetCurrentRound(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetCurrentRound")
	defer span.End()

	view, err := h.leagueService.CurrentRoundView(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, toRoundViewDTO(view))
}

func (h *Handler) GetRound(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetRound")
	defer span.End()

	raw := strings.TrimSpace(r.PathValue("cursor"))
	cursor, err := strconv.Atoi(raw)
	if err != nil {
		writeError(ctx, w, fmt.Errorf("%w: cursor must be an integer, got %q", usecase.ErrInvalidInput, raw))
		return
	}

	view, err := h.leagueService.RoundView(ctx, cursor)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, toRoundViewDTO(view))
}

func (h *Handler) GetMatchDisplay(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetMatchDisplay")
	defer span.End()

	matchID := strings.TrimSpace(r.PathValue("matchID"))
	view, err := h.leagueService.MatchDisplay(ctx, matchID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, toMatchViewDTO(view))
}
