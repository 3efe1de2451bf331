// Package server собирает HTTP-сервер: маршруты и цепочку middleware.
package server

import (
	"net/http"

	"vibehub.ru/vibe-points/internal/api"
	"vibehub.ru/vibe-points/internal/config"
)

// New собирает http.Server с маршрутами сервиса.
func New(cfg *config.Config, a *api.API) *http.Server {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /ratings", a.CreateRating)
	mux.HandleFunc("GET /ratings/{id}", a.GetRating)
	mux.HandleFunc("GET /ratings/{id}/score", a.GetScore)
	mux.HandleFunc("POST /ratings/{id}/score/recount", a.RecountScore)
	mux.HandleFunc("POST /ratings/scores/batch", a.GetScoresBatch)

	mux.HandleFunc("POST /ratings/{id}/boost", a.Boost)
	mux.HandleFunc("POST /ratings/{id}/dampen", a.Dampen)
	mux.HandleFunc("GET /ratings/{id}/vote", a.VoterStatus)
	mux.HandleFunc("POST /ratings/votes/batch", a.VoterStatusBatch)

	mux.HandleFunc("GET /points/me", a.GetMyLedger)
	mux.HandleFunc("GET /points/me/history", a.GetMyHistory)

	mux.HandleFunc("POST /admin/points/grant", a.AdminGrant)
	mux.HandleFunc("POST /admin/points/deduct", a.AdminDeduct)

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	handler := RequestIDMiddleware(LoggingMiddleware(RecoveryMiddleware(mux)))

	return &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      handler,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
	}
}
