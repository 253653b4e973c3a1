// internal/chat/routes.go
// Route registration for the chat endpoints

package chat

import (
	"net/http"

	"github.com/gorilla/mux"
)

// RegisterRoutes wires the chat endpoints under /api/v1/chat
func RegisterRoutes(router *mux.Router, handler *Handler, authMiddleware func(http.Handler) http.Handler) {
	api := router.PathPrefix("/api/v1/chat").Subrouter()
	api.Use(authMiddleware)

	api.HandleFunc("/unread", handler.UnreadCounts).Methods("GET")
	api.HandleFunc("/{matchId}/messages", handler.Send).Methods("POST")
	api.HandleFunc("/{matchId}/messages", handler.List).Methods("GET")
	api.HandleFunc("/{matchId}/read", handler.MarkAllRead).Methods("POST")
}
