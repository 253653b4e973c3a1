// internal/gyms/handlers.go
// HTTP handlers and routes for the gym endpoints

package gyms

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/Le0odev/gym-match-sub000/internal/common/utils"
)

// Handler exposes gym lookups over HTTP
type Handler struct {
	repo *Repository
}

// NewHandler creates a gym handler
func NewHandler(repo *Repository) *Handler {
	return &Handler{repo: repo}
}

// List handles GET /gyms
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	var city *string
	if raw := r.URL.Query().Get("city"); raw != "" {
		city = &raw
	}

	out, err := h.repo.List(r.Context(), city)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	utils.RespondWithData(w, http.StatusOK, out)
}

// Nearby handles GET /gyms/nearby?lat=&lon=&radiusKm=
func (h *Handler) Nearby(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	lat, err := strconv.ParseFloat(q.Get("lat"), 64)
	if err != nil || lat < -90 || lat > 90 {
		utils.RespondWithError(w, http.StatusBadRequest, "lat must be a valid latitude")
		return
	}
	lon, err := strconv.ParseFloat(q.Get("lon"), 64)
	if err != nil || lon < -180 || lon > 180 {
		utils.RespondWithError(w, http.StatusBadRequest, "lon must be a valid longitude")
		return
	}
	radiusKm := 10.0
	if raw := q.Get("radiusKm"); raw != "" {
		radiusKm, err = strconv.ParseFloat(raw, 64)
		if err != nil || radiusKm <= 0 || radiusKm > 200 {
			utils.RespondWithError(w, http.StatusBadRequest, "radiusKm must be between 0 and 200")
			return
		}
	}

	out, err := h.repo.Nearby(r.Context(), lat, lon, radiusKm)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	utils.RespondWithData(w, http.StatusOK, out)
}

// Get handles GET /gyms/{gymId}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	g, err := h.repo.GetByID(r.Context(), mux.Vars(r)["gymId"])
	if err != nil {
		if errors.Is(err, ErrGymNotFound) {
			utils.RespondWithError(w, http.StatusNotFound, err.Error())
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	utils.RespondWithData(w, http.StatusOK, g)
}

// RegisterRoutes wires the gym endpoints under /api/v1/gyms
func RegisterRoutes(router *mux.Router, handler *Handler, authMiddleware func(http.Handler) http.Handler) {
	api := router.PathPrefix("/api/v1/gyms").Subrouter()
	api.Use(authMiddleware)

	api.HandleFunc("", handler.List).Methods("GET")
	api.HandleFunc("/nearby", handler.Nearby).Methods("GET")
	api.HandleFunc("/{gymId}", handler.Get).Methods("GET")
}
