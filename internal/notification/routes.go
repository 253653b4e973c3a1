// internal/notification/routes.go
// Route registration for the notification endpoints

package notification

import (
	"net/http"

	"github.com/gorilla/mux"
)

// RegisterRoutes wires the notification endpoints under /api/v1/notifications
func RegisterRoutes(router *mux.Router, handler *Handler, authMiddleware func(http.Handler) http.Handler) {
	api := router.PathPrefix("/api/v1/notifications").Subrouter()
	api.Use(authMiddleware)

	api.HandleFunc("", handler.List).Methods("GET")
	api.HandleFunc("/unread-count", handler.UnreadCount).Methods("GET")
	api.HandleFunc("/read-all", handler.MarkAllRead).Methods("POST")
	api.HandleFunc("/push-tokens", handler.RegisterToken).Methods("POST")
	api.HandleFunc("/push-tokens", handler.UnregisterToken).Methods("DELETE")
	api.HandleFunc("/{notificationId}/read", handler.MarkRead).Methods("POST")
	api.HandleFunc("/{notificationId}", handler.Delete).Methods("DELETE")
}
