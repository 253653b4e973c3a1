// internal/invites/routes.go
// Route registration for the workout invite endpoints

package invites

import (
	"net/http"

	"github.com/gorilla/mux"
)

// RegisterRoutes wires the invite endpoints under /api/v1/invites
func RegisterRoutes(router *mux.Router, handler *Handler, authMiddleware func(http.Handler) http.Handler) {
	api := router.PathPrefix("/api/v1/invites").Subrouter()
	api.Use(authMiddleware)

	api.HandleFunc("", handler.List).Methods("GET")
	api.HandleFunc("/match/{matchId}", handler.Create).Methods("POST")
	api.HandleFunc("/{inviteId}/accept", handler.Accept).Methods("POST")
	api.HandleFunc("/{inviteId}/reject", handler.Reject).Methods("POST")
	api.HandleFunc("/{inviteId}/cancel", handler.Cancel).Methods("POST")
	api.HandleFunc("/{inviteId}/complete", handler.Complete).Methods("POST")
}
