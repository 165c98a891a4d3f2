package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler, swaggerEnabled bool, metricsHandler http.Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
	if metricsHandler != nil {
		mux.Handle("GET /metrics", metricsHandler)
	}
	if !swaggerEnabled {
		return
	}

	mux.HandleFunc("GET /openapi.yaml", handler.OpenAPI)
	mux.HandleFunc("GET /docs", handler.SwaggerUI)
	mux.HandleFunc("GET /docs/", handler.SwaggerUI)
}

func registerPublicLeagueRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/standings", handler.ListStandings)
	mux.HandleFunc("GET /v1/rounds", handler.ListRounds)
	mux.HandleFunc("GET /v1/rounds/current", handler.GetCurrentRound)
	mux.HandleFunc("GET /v1/rounds/stream", handler.StreamRounds)
	mux.HandleFunc("GET /v1/rounds/{cursor}", handler.GetRound)
	mux.HandleFunc("GET /v1/matches/{matchID}/display", handler.GetMatchDisplay)
}

func registerInternalRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	mux.Handle("POST /v1/internal/live/{matchID}", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.PublishLiveSnapshot)))
	mux.Handle("DELETE /v1/internal/live/{matchID}", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.ClearLiveSnapshot)))
	mux.Handle("POST /v1/internal/jobs/refresh", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunRefreshJob)))
}
