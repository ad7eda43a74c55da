package api

import (
	"net/http"

	"reelcache/handlers"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// corsMiddleware handles CORS for API routes
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "*")

		// Handle preflight requests
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// requestIDMiddleware tags every response with an X-Request-Id so log
// lines can be correlated with client reports.
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-Id")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", id)
		next.ServeHTTP(w, r)
	})
}

// RegisterRoutes wires the API surface onto the router.
func RegisterRoutes(
	r *mux.Router,
	catalogHandler *handlers.CatalogHandler,
	metadataHandler *handlers.MetadataHandler,
	embedHandler *handlers.EmbedHandler,
	healthHandler *handlers.HealthHandler,
) {
	api := r.PathPrefix("/api").Subrouter()

	api.Use(corsMiddleware)
	api.Use(requestIDMiddleware)

	api.HandleFunc("/home", catalogHandler.Home).Methods(http.MethodGet)
	api.HandleFunc("/trending", catalogHandler.Trending).Methods(http.MethodGet)
	api.HandleFunc("/search", metadataHandler.Search).Methods(http.MethodGet)
	api.HandleFunc("/details", metadataHandler.Details).Methods(http.MethodGet)
	api.HandleFunc("/random", catalogHandler.Random).Methods(http.MethodGet)
	api.HandleFunc("/list", catalogHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/embed", embedHandler.Embed).Methods(http.MethodGet)
	api.HandleFunc("/health", healthHandler.Health).Methods(http.MethodGet)
}
