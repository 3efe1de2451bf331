// Package api — points_handler.go: собственный счёт и история транзакций.
package api

import (
	"net/http"
	"strconv"
)

// GetMyLedger — GET /points/me
func (a *API) GetMyLedger(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromRequest(r)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	ledger, err := a.points.GetLedger(r.Context(), userID)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]any{
		"user_id":            ledger.UserID,
		"current_balance":    ledger.CurrentBalance,
		"total_earned":       ledger.TotalEarned,
		"protected_points":   ledger.ProtectedPoints,
		"level":              ledger.Level,
		"karma_score":        ledger.KarmaScore,
		"daily_dampen_count": ledger.DailyDampenCount,
		"current_streak":     ledger.CurrentStreak,
	})
}

// GetMyHistory — GET /points/me/history?limit=N
func (a *API) GetMyHistory(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromRequest(r)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	history, err := a.points.GetHistory(r.Context(), userID, limit)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]any{"transactions": history})
}
