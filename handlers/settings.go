package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"repackwatch/models"
	"repackwatch/services/watchlist"
)

type settingsService interface {
	GetSettings(ctx context.Context) (models.ReminderSettings, error)
	UpdateSettings(ctx context.Context, settings models.ReminderSettings) (models.ReminderSettings, error)
}

var _ settingsService = (*watchlist.Service)(nil)

type SettingsHandler struct {
	Service settingsService
}

func NewSettingsHandler(service settingsService) *SettingsHandler {
	return &SettingsHandler{Service: service}
}

func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	settings, err := h.Service.GetSettings(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(settings)
}

// Update persists new reminder settings. Every stored item's reminder date is
// recomputed against the new default as a side effect.
func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var settings models.ReminderSettings
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	saved, err := h.Service.UpdateSettings(r.Context(), settings)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, watchlist.ErrReminderDays) {
			status = http.StatusBadRequest
		}
		http.Error(w, err.Error(), status)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(saved)
}
