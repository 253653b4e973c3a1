// internal/matching/handlers.go
// HTTP handlers for the matching endpoints

package matching

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/Le0odev/gym-match-sub000/internal/auth"
	"github.com/Le0odev/gym-match-sub000/internal/common/utils"
)

// Handler exposes the matching service over HTTP
type Handler struct {
	service *Service
}

// NewHandler creates a matching handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Discover handles GET /matches/discover with query-string filters
func (h *Handler) Discover(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	filters, err := FiltersFromQuery(r.URL.Query())
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.service.Discover(r.Context(), userID, filters)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	utils.RespondWithData(w, http.StatusOK, resp)
}

// DiscoverAdvanced handles POST /matches/discover/advanced with a JSON filter body
func (h *Handler) DiscoverAdvanced(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var filters DiscoverFilters
	if err := json.NewDecoder(r.Body).Decode(&filters); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := utils.ValidateStruct(&filters); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.service.Discover(r.Context(), userID, &filters)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	utils.RespondWithData(w, http.StatusOK, resp)
}

// Like handles POST /matches/like/{userId}
func (h *Handler) Like(w http.ResponseWriter, r *http.Request) {
	h.handleLike(w, r, h.service.Like)
}

// SuperLike handles POST /matches/super-like/{userId}
func (h *Handler) SuperLike(w http.ResponseWriter, r *http.Request) {
	h.handleLike(w, r, h.service.SuperLike)
}

func (h *Handler) handleLike(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, initiatorID, recipientID string, message *string) (*LikeResult, error)) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	targetID := mux.Vars(r)["userId"]
	if targetID == userID {
		utils.RespondWithError(w, http.StatusBadRequest, "Cannot like yourself")
		return
	}

	var req LikeRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if err := utils.ValidateStruct(&req); err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	result, err := fn(r.Context(), userID, targetID, req.Message)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	utils.RespondWithData(w, http.StatusOK, result)
}

func (h *Handler) respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrUserNotFound), errors.Is(err, ErrMatchNotFound):
		utils.RespondWithError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrNotMatchParticipant):
		utils.RespondWithError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, ErrInvalidMatchState):
		utils.RespondWithError(w, http.StatusConflict, err.Error())
	case errors.Is(err, ErrInvalidFilters):
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
	default:
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// Skip handles POST /matches/skip/{userId}
func (h *Handler) Skip(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	targetID := mux.Vars(r)["userId"]

	var req SkipRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if err := utils.ValidateStruct(&req); err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	if err := h.service.Skip(r.Context(), userID, targetID, req.Reason); err != nil {
		h.respondServiceError(w, err)
		return
	}
	utils.RespondWithMessage(w, http.StatusOK, "User skipped")
}

// Unmatch handles POST /matches/unmatch/{matchId}
func (h *Handler) Unmatch(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	matchID := mux.Vars(r)["matchId"]

	if err := h.service.Unmatch(r.Context(), userID, matchID); err != nil {
		h.respondServiceError(w, err)
		return
	}
	utils.RespondWithMessage(w, http.StatusOK, "Match dissolved")
}

// ListMatches handles GET /matches
func (h *Handler) ListMatches(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	views, err := h.service.ListMatches(r.Context(), userID)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	utils.RespondWithData(w, http.StatusOK, views)
}

// Stats handles GET /matches/stats
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	stats, err := h.service.Stats(r.Context(), userID)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	utils.RespondWithData(w, http.StatusOK, stats)
}

// Compatibility handles GET /matches/compatibility/{userId}
func (h *Handler) Compatibility(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	otherID := mux.Vars(r)["userId"]

	resp, err := h.service.Compatibility(r.Context(), userID, otherID)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	utils.RespondWithData(w, http.StatusOK, resp)
}
