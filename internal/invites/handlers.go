// internal/invites/handlers.go
// HTTP handlers for the workout invite endpoints

package invites

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/Le0odev/gym-match-sub000/internal/auth"
	"github.com/Le0odev/gym-match-sub000/internal/common/utils"
)

// Handler exposes the invite service over HTTP
type Handler struct {
	service *Service
}

// NewHandler creates an invite handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInviteNotFound), errors.Is(err, ErrMatchNotFound):
		utils.RespondWithError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrNotParticipant), errors.Is(err, ErrWrongActor):
		utils.RespondWithError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, ErrInvalidState):
		utils.RespondWithError(w, http.StatusConflict, err.Error())
	default:
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// Create handles POST /invites/match/{matchId}
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req CreateInviteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	inv, err := h.service.Create(r.Context(), mux.Vars(r)["matchId"], userID, &req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondWithData(w, http.StatusCreated, inv)
}

// List handles GET /invites
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var status *string
	if raw := r.URL.Query().Get("status"); raw != "" {
		switch raw {
		case StatusPending, StatusAccepted, StatusRejected, StatusCanceled, StatusCompleted:
			status = &raw
		default:
			utils.RespondWithError(w, http.StatusBadRequest, "invalid status filter")
			return
		}
	}

	invs, err := h.service.List(r.Context(), userID, status)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondWithData(w, http.StatusOK, invs)
}

func (h *Handler) respond(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, inviteID, actingUserID string) (*Invite, error)) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	inv, err := fn(r.Context(), mux.Vars(r)["inviteId"], userID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondWithData(w, http.StatusOK, inv)
}

// Accept handles POST /invites/{inviteId}/accept
func (h *Handler) Accept(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, h.service.Accept)
}

// Reject handles POST /invites/{inviteId}/reject
func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, h.service.Reject)
}

// Cancel handles POST /invites/{inviteId}/cancel
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, h.service.Cancel)
}

// Complete handles POST /invites/{inviteId}/complete
func (h *Handler) Complete(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, h.service.Complete)
}
