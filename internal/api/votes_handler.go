// Package api — votes_handler.go: бусты, дампены и статусы голосов.
package api

import (
	"net/http"

	"github.com/google/uuid"
)

type boostResponse struct {
	Boosted           bool   `json:"boosted"`
	Action            string `json:"action"`
	PointsTransferred int64  `json:"points_transferred"`
	Message           string `json:"message"`
}

type dampenResponse struct {
	Dampened        bool   `json:"dampened"`
	Action          string `json:"action"`
	PointsPenalized int64  `json:"points_penalized"`
	Message         string `json:"message"`
}

// Boost — POST /ratings/{id}/boost
func (a *API) Boost(w http.ResponseWriter, r *http.Request) {
	ratingID, ok := pathUUID(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "некорректный ID оценки")
		return
	}
	voterID, err := userIDFromRequest(r)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	result, err := a.votes.Boost(r.Context(), ratingID, voterID)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, boostResponse{
		Boosted:           result.Active,
		Action:            result.Action,
		PointsTransferred: result.Points,
		Message:           result.Message,
	})
}

// Dampen — POST /ratings/{id}/dampen
func (a *API) Dampen(w http.ResponseWriter, r *http.Request) {
	ratingID, ok := pathUUID(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "некорректный ID оценки")
		return
	}
	voterID, err := userIDFromRequest(r)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	result, err := a.votes.Dampen(r.Context(), ratingID, voterID)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, dampenResponse{
		Dampened:        result.Active,
		Action:          result.Action,
		PointsPenalized: result.Points,
		Message:         result.Message,
	})
}

// VoterStatus — GET /ratings/{id}/vote
func (a *API) VoterStatus(w http.ResponseWriter, r *http.Request) {
	ratingID, ok := pathUUID(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "некорректный ID оценки")
		return
	}
	voterID, err := userIDFromRequest(r)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	status, err := a.votes.VoterStatus(r.Context(), ratingID, voterID)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, status)
}

type voterStatusBatchRequest struct {
	RatingIDs []uuid.UUID `json:"rating_ids"`
}

// VoterStatusBatch — POST /ratings/votes/batch
func (a *API) VoterStatusBatch(w http.ResponseWriter, r *http.Request) {
	voterID, err := userIDFromRequest(r)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	var req voterStatusBatchRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if len(req.RatingIDs) > 100 {
		respondWithError(w, http.StatusBadRequest, "слишком много оценок в одном запросе (максимум 100)")
		return
	}

	statuses, err := a.votes.VoterStatusBulk(r.Context(), req.RatingIDs, voterID)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]any{"statuses": statuses})
}
