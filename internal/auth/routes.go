// internal/auth/routes.go
// Route registration for the auth endpoints

package auth

import (
	"github.com/gorilla/mux"
)

// RegisterRoutes wires the public auth endpoints under /api/v1/auth
func RegisterRoutes(router *mux.Router, handler *Handler) {
	api := router.PathPrefix("/api/v1/auth").Subrouter()

	api.HandleFunc("/register", handler.Register).Methods("POST")
	api.HandleFunc("/login", handler.Login).Methods("POST")
	api.HandleFunc("/refresh", handler.Refresh).Methods("POST")
}
