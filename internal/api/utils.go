// Package api — utils.go: JSON-ответы, разбор запроса и маппинг
// доменных ошибок на HTTP-статусы.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"vibehub.ru/vibe-points/internal/common"
)

// Заголовки, проставляемые вышестоящим шлюзом.
// Аутентификация — вне зоны ответственности этого сервиса.
const (
	headerUserID   = "X-User-ID"
	headerAdminKey = "X-Admin-Key"
)

type errorResponse struct {
	Error string `json:"error"`
}

func respondWithJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.WithError(err).Error("Ошибка кодирования ответа")
	}
}

func respondWithError(w http.ResponseWriter, status int, message string) {
	respondWithJSON(w, status, errorResponse{Error: message})
}

// respondDomainError переводит доменные ошибки в HTTP-статусы.
// Весь список — из одной таксономии ошибок экономики.
func respondDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, common.ErrRatingNotFound):
		respondWithError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, common.ErrSelfVote), errors.Is(err, common.ErrUnauthenticated):
		respondWithError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, common.ErrInsufficientBalance), errors.Is(err, common.ErrTargetProtected),
		errors.Is(err, common.ErrInvalidAmount):
		respondWithError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, common.ErrDampenDailyLimit):
		respondWithError(w, http.StatusTooManyRequests, err.Error())
	case errors.Is(err, common.ErrLedgerNotReady):
		respondWithError(w, http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, common.ErrBadAdminKey):
		respondWithError(w, http.StatusUnauthorized, err.Error())
	default:
		log.WithError(err).Error("Внутренняя ошибка")
		respondWithError(w, http.StatusInternalServerError, "внутренняя ошибка сервиса")
	}
}

// userIDFromRequest извлекает ID пользователя из заголовка шлюза.
func userIDFromRequest(r *http.Request) (uuid.UUID, error) {
	raw := r.Header.Get(headerUserID)
	if raw == "" {
		return uuid.Nil, common.ErrUnauthenticated
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, common.ErrUnauthenticated
	}
	return id, nil
}

// pathUUID разбирает UUID из сегмента пути.
func pathUUID(r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue(name))
	return id, err == nil
}

// decodeJSON разбирает тело запроса с ограничением размера.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondWithError(w, http.StatusBadRequest, "некорректное тело запроса")
		return false
	}
	return true
}
