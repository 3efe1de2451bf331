// Package api — ratings_handler.go: создание оценок и их агрегаты.
package api

import (
	"net/http"

	"github.com/google/uuid"
)

type createRatingRequest struct {
	VibeID uuid.UUID `json:"vibe_id"`
	Emoji  string    `json:"emoji"`
	Value  int       `json:"value"`
	Review string    `json:"review"`
}

// CreateRating — POST /ratings
func (a *API) CreateRating(w http.ResponseWriter, r *http.Request) {
	authorID, err := userIDFromRequest(r)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	var req createRatingRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.VibeID == uuid.Nil {
		respondWithError(w, http.StatusBadRequest, "не указан вайб")
		return
	}

	rating, err := a.ratings.Create(r.Context(), req.VibeID, authorID, req.Emoji, req.Value, req.Review)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondWithJSON(w, http.StatusCreated, rating)
}

// GetRating — GET /ratings/{id}
func (a *API) GetRating(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "некорректный ID оценки")
		return
	}
	rating, err := a.ratings.Get(r.Context(), id)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, rating)
}

// GetScore — GET /ratings/{id}/score
func (a *API) GetScore(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "некорректный ID оценки")
		return
	}
	score, err := a.ratings.GetScore(r.Context(), id)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, score)
}

type scoresBatchRequest struct {
	RatingIDs []uuid.UUID `json:"rating_ids"`
}

// GetScoresBatch — POST /ratings/scores/batch
func (a *API) GetScoresBatch(w http.ResponseWriter, r *http.Request) {
	var req scoresBatchRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	scores, err := a.ratings.GetScoresBulk(r.Context(), req.RatingIDs)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]any{"scores": scores})
}

// RecountScore — POST /ratings/{id}/score/recount (починка агрегатов)
func (a *API) RecountScore(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "некорректный ID оценки")
		return
	}
	score, err := a.ratings.Recount(r.Context(), id)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, score)
}
