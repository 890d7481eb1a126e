package api_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gorilla/mux"

	"repackwatch/api"
	"repackwatch/config"
	"repackwatch/handlers"
	"repackwatch/internal/store"
	"repackwatch/models"
	"repackwatch/services/notify"
	"repackwatch/services/reminders"
	"repackwatch/services/scraper"
	"repackwatch/services/watchlist"
)

func newRouter(t *testing.T) (*mux.Router, *watchlist.Service) {
	t.Helper()
	kv, err := store.Open(filepath.Join(t.TempDir(), "watchlist.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { kv.Close() })

	watchlistService := watchlist.NewService(kv)
	reminderService := reminders.NewService(watchlistService, &notify.Log{}, config.ReminderSchedule{})
	fetcher := scraper.NewFetcher(config.ScraperSettings{AllowedDomains: []string{"fitgirl-repacks.site"}})

	r := mux.NewRouter()
	api.Register(r,
		handlers.NewWatchlistHandler(watchlistService),
		handlers.NewSettingsHandler(watchlistService),
		handlers.NewRemindersHandler(reminderService),
		handlers.NewScanHandler(fetcher, nil),
		handlers.NewStatusHandler(watchlistService, reminderService, "test"),
	)
	return r, watchlistService
}

func TestExportRouteIsNotShadowedByItemLookup(t *testing.T) {
	router, svc := newRouter(t)

	if _, err := svc.Add(context.Background(), models.WatchlistCandidate{
		Title: "Great Game", URL: "https://fitgirl-repacks.site/great-game/",
	}); err != nil {
		t.Fatalf("failed to seed watchlist: %v", err)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/watchlist/export", nil))

	// If the {id} route matched first this would be a 404 item lookup.
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 for export, got %d: %s", rec.Code, rec.Body.String())
	}
	if disposition := rec.Header().Get("Content-Disposition"); disposition == "" {
		t.Fatal("export route did not answer; Content-Disposition missing")
	}
}

func TestUnknownItemThroughRouter(t *testing.T) {
	router, _ := newRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/watchlist/doesnotexist", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	router, _ := newRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/api/watchlist", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 for preflight, got %d", rec.Code)
	}
	if origin := rec.Header().Get("Access-Control-Allow-Origin"); origin != "*" {
		t.Fatalf("unexpected Access-Control-Allow-Origin %q", origin)
	}
}
