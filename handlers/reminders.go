package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"repackwatch/models"
	"repackwatch/services/reminders"
)

type reminderScheduler interface {
	CheckNow(ctx context.Context) ([]models.WatchlistItem, error)
	Running() bool
}

var _ reminderScheduler = (*reminders.Service)(nil)

type countService interface {
	Count(ctx context.Context) (int, error)
}

type RemindersHandler struct {
	Scheduler reminderScheduler
}

func NewRemindersHandler(scheduler reminderScheduler) *RemindersHandler {
	return &RemindersHandler{Scheduler: scheduler}
}

// Check runs one reminder tick immediately and returns the items that were
// due. The tick has the same side effects as a scheduled one.
func (h *RemindersHandler) Check(w http.ResponseWriter, r *http.Request) {
	due, err := h.Scheduler.CheckNow(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(due)
}

type StatusHandler struct {
	Watchlist countService
	Scheduler reminderScheduler
	Version   string
}

func NewStatusHandler(watchlistService countService, scheduler reminderScheduler, version string) *StatusHandler {
	return &StatusHandler{Watchlist: watchlistService, Scheduler: scheduler, Version: version}
}

type statusResponse struct {
	Items            int    `json:"items"`
	SchedulerRunning bool   `json:"schedulerRunning"`
	Version          string `json:"version"`
}

// Status reports the item count and scheduler state, the server-side
// equivalent of the injected banner badge.
func (h *StatusHandler) Status(w http.ResponseWriter, r *http.Request) {
	count, err := h.Watchlist.Count(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(statusResponse{
		Items:            count,
		SchedulerRunning: h.Scheduler.Running(),
		Version:          h.Version,
	})
}
