package httpapi

import (
	"net/http"
)

// RunRefreshJob reloads the board from the data source. A failed refresh
// keeps serving the previous board.
func (h *Handler) RunRefreshJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunRefreshJob")
	defer span.End()

	board, err := h.leagueService.Refresh(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "run refresh job failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, refreshJobDTO{
		Matches:  len(board.Matches),
		Teams:    len(board.Standings),
		Rounds:   len(board.Rounds),
		LoadedAt: board.LoadedAt.UTC(),
	})
}
