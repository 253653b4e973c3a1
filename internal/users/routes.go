// internal/users/routes.go
// Route registration for the user endpoints

package users

import (
	"net/http"

	"github.com/gorilla/mux"
)

// RegisterRoutes wires the user endpoints under /api/v1/users
func RegisterRoutes(router *mux.Router, handler *Handler, authMiddleware func(http.Handler) http.Handler) {
	api := router.PathPrefix("/api/v1/users").Subrouter()
	api.Use(authMiddleware)

	api.HandleFunc("/me", handler.Me).Methods("GET")
	api.HandleFunc("/me", handler.UpdateProfile).Methods("PUT")
	api.HandleFunc("/me/location", handler.UpdateLocation).Methods("PUT")
	api.HandleFunc("/me/workout-preferences", handler.SetPreferences).Methods("PUT")
	api.HandleFunc("/me/photo", handler.UploadPhoto).Methods("POST")
	api.HandleFunc("/me/stats", handler.Stats).Methods("GET")
	api.HandleFunc("/workout-preferences", handler.ListPreferences).Methods("GET")
	api.HandleFunc("/{userId}", handler.GetProfile).Methods("GET")
}
