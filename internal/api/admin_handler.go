// Package api — admin_handler.go: выдача и изъятие поинтов по API-ключу.
package api

import (
	"net/http"

	"github.com/google/uuid"
)

type adminAdjustRequest struct {
	UserID uuid.UUID `json:"user_id"`
	Amount int64     `json:"amount"`
	Reason string    `json:"reason"`
}

type adminAdjustResponse struct {
	UserID  uuid.UUID `json:"user_id"`
	Balance int64     `json:"balance"`
}

// AdminGrant — POST /admin/points/grant
func (a *API) AdminGrant(w http.ResponseWriter, r *http.Request) {
	a.adminAdjust(w, r, true)
}

// AdminDeduct — POST /admin/points/deduct
func (a *API) AdminDeduct(w http.ResponseWriter, r *http.Request) {
	a.adminAdjust(w, r, false)
}

func (a *API) adminAdjust(w http.ResponseWriter, r *http.Request, grant bool) {
	if err := a.admin.VerifyKey(r.Header.Get(headerAdminKey)); err != nil {
		respondDomainError(w, err)
		return
	}
	var req adminAdjustRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.UserID == uuid.Nil {
		respondWithError(w, http.StatusBadRequest, "не указан пользователь")
		return
	}

	var balance int64
	var err error
	if grant {
		balance, err = a.points.Grant(r.Context(), req.UserID, req.Amount, req.Reason)
	} else {
		balance, err = a.points.Deduct(r.Context(), req.UserID, req.Amount, req.Reason)
	}
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, adminAdjustResponse{UserID: req.UserID, Balance: balance})
}
