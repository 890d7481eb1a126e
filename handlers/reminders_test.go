package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"repackwatch/handlers"
	"repackwatch/models"
)

type fakeScheduler struct {
	due     []models.WatchlistItem
	err     error
	running bool
}

func (f *fakeScheduler) CheckNow(_ context.Context) ([]models.WatchlistItem, error) {
	return f.due, f.err
}

func (f *fakeScheduler) Running() bool {
	return f.running
}

func TestRemindersCheck(t *testing.T) {
	scheduler := &fakeScheduler{
		due: []models.WatchlistItem{{ID: "abc", Title: "Great Game"}},
	}
	h := handlers.NewRemindersHandler(scheduler)

	rec := httptest.NewRecorder()
	h.Check(rec, httptest.NewRequest(http.MethodPost, "/api/reminders/check", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var due []models.WatchlistItem
	if err := json.Unmarshal(rec.Body.Bytes(), &due); err != nil {
		t.Fatalf("failed to decode check response: %v", err)
	}
	if len(due) != 1 || due[0].ID != "abc" {
		t.Fatalf("unexpected due items: %+v", due)
	}
}

func TestStatus(t *testing.T) {
	svc := newWatchlistService(t)
	ctx := context.Background()

	if _, err := svc.Add(ctx, models.WatchlistCandidate{
		Title: "Great Game", URL: "https://fitgirl-repacks.site/great-game/",
	}); err != nil {
		t.Fatalf("failed to seed watchlist: %v", err)
	}

	h := handlers.NewStatusHandler(svc, &fakeScheduler{running: true}, "1.0.0")

	rec := httptest.NewRecorder()
	h.Status(rec, httptest.NewRequest(http.MethodGet, "/api/status", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var status struct {
		Items            int    `json:"items"`
		SchedulerRunning bool   `json:"schedulerRunning"`
		Version          string `json:"version"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
		t.Fatalf("failed to decode status response: %v", err)
	}
	if status.Items != 1 {
		t.Fatalf("expected 1 item, got %d", status.Items)
	}
	if !status.SchedulerRunning {
		t.Fatal("expected schedulerRunning true")
	}
	if status.Version != "1.0.0" {
		t.Fatalf("unexpected version %q", status.Version)
	}
}
