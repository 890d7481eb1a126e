package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"repackwatch/handlers"
)

// corsMiddleware handles CORS for API routes.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "*")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// handleOptions answers CORS preflight requests.
func handleOptions(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "*")
	w.WriteHeader(http.StatusOK)
}

// Register mounts API endpoints onto the provided router.
func Register(
	r *mux.Router,
	watchlistHandler *handlers.WatchlistHandler,
	settingsHandler *handlers.SettingsHandler,
	remindersHandler *handlers.RemindersHandler,
	scanHandler *handlers.ScanHandler,
	statusHandler *handlers.StatusHandler,
) {
	api := r.PathPrefix("/api").Subrouter()
	api.Use(corsMiddleware)

	// Export is registered before the {id} route so "export" is never read as
	// an item id.
	api.HandleFunc("/watchlist/export", watchlistHandler.Export).Methods(http.MethodGet)
	api.HandleFunc("/watchlist/export", handleOptions).Methods(http.MethodOptions)
	api.HandleFunc("/watchlist/import", watchlistHandler.Import).Methods(http.MethodPost)
	api.HandleFunc("/watchlist/import", handleOptions).Methods(http.MethodOptions)

	api.HandleFunc("/watchlist", watchlistHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/watchlist", watchlistHandler.Add).Methods(http.MethodPost)
	api.HandleFunc("/watchlist", watchlistHandler.Clear).Methods(http.MethodDelete)
	api.HandleFunc("/watchlist", handleOptions).Methods(http.MethodOptions)
	api.HandleFunc("/watchlist/{id}", watchlistHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/watchlist/{id}", watchlistHandler.Remove).Methods(http.MethodDelete)
	api.HandleFunc("/watchlist/{id}", handleOptions).Methods(http.MethodOptions)

	api.HandleFunc("/settings/reminders", settingsHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/settings/reminders", settingsHandler.Update).Methods(http.MethodPut)
	api.HandleFunc("/settings/reminders", handleOptions).Methods(http.MethodOptions)

	api.HandleFunc("/reminders/check", remindersHandler.Check).Methods(http.MethodPost)
	api.HandleFunc("/reminders/check", handleOptions).Methods(http.MethodOptions)

	api.HandleFunc("/scan", scanHandler.Scan).Methods(http.MethodPost)
	api.HandleFunc("/scan", handleOptions).Methods(http.MethodOptions)
	api.HandleFunc("/scan/all", scanHandler.ScanAll).Methods(http.MethodPost)
	api.HandleFunc("/scan/all", handleOptions).Methods(http.MethodOptions)

	api.HandleFunc("/status", statusHandler.Status).Methods(http.MethodGet)
}
