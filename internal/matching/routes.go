// internal/matching/routes.go
// Route registration for the matching endpoints

package matching

import (
	"net/http"

	"github.com/gorilla/mux"
)

// RegisterRoutes wires the matching endpoints under /api/v1/matches
func RegisterRoutes(router *mux.Router, handler *Handler, authMiddleware func(http.Handler) http.Handler) {
	api := router.PathPrefix("/api/v1/matches").Subrouter()
	api.Use(authMiddleware)

	api.HandleFunc("/discover", handler.Discover).Methods("GET")
	api.HandleFunc("/discover/advanced", handler.DiscoverAdvanced).Methods("POST")
	api.HandleFunc("/like/{userId}", handler.Like).Methods("POST")
	api.HandleFunc("/super-like/{userId}", handler.SuperLike).Methods("POST")
	api.HandleFunc("/skip/{userId}", handler.Skip).Methods("POST")
	api.HandleFunc("/unmatch/{matchId}", handler.Unmatch).Methods("POST")
	api.HandleFunc("/stats", handler.Stats).Methods("GET")
	api.HandleFunc("/compatibility/{userId}", handler.Compatibility).Methods("GET")
	api.HandleFunc("", handler.ListMatches).Methods("GET")
}
