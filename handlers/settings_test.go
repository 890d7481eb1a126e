package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"repackwatch/handlers"
	"repackwatch/models"
)

func TestSettingsGetReturnsDefaults(t *testing.T) {
	svc := newWatchlistService(t)
	h := handlers.NewSettingsHandler(svc)

	rec := httptest.NewRecorder()
	h.Get(rec, httptest.NewRequest(http.MethodGet, "/api/settings/reminders", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var settings models.ReminderSettings
	if err := json.Unmarshal(rec.Body.Bytes(), &settings); err != nil {
		t.Fatalf("failed to decode settings response: %v", err)
	}

	defaults := models.DefaultReminderSettings()
	if settings.DefaultReminderDays != defaults.DefaultReminderDays {
		t.Fatalf("expected default of %d days, got %d", defaults.DefaultReminderDays, settings.DefaultReminderDays)
	}
	if !settings.EnableNotifications {
		t.Fatal("notifications should default to enabled")
	}
	if settings.ReminderTime != defaults.ReminderTime {
		t.Fatalf("expected reminder time %q, got %q", defaults.ReminderTime, settings.ReminderTime)
	}
}

func TestSettingsUpdate(t *testing.T) {
	svc := newWatchlistService(t)
	h := handlers.NewSettingsHandler(svc)

	body := `{"defaultReminderDays":3,"enableNotifications":false,"reminderTime":"18:30"}`
	req := httptest.NewRequest(http.MethodPut, "/api/settings/reminders", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Update(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var saved models.ReminderSettings
	if err := json.Unmarshal(rec.Body.Bytes(), &saved); err != nil {
		t.Fatalf("failed to decode update response: %v", err)
	}
	if saved.DefaultReminderDays != 3 || saved.EnableNotifications || saved.ReminderTime != "18:30" {
		t.Fatalf("unexpected settings returned: %+v", saved)
	}
	if saved.LastUpdated.IsZero() {
		t.Fatal("lastUpdated should be stamped on save")
	}

	// The update is persisted, not just echoed.
	stored, err := svc.GetSettings(context.Background())
	if err != nil {
		t.Fatalf("get settings returned error: %v", err)
	}
	if stored.DefaultReminderDays != 3 {
		t.Fatalf("expected persisted default of 3 days, got %d", stored.DefaultReminderDays)
	}
}

func TestSettingsUpdateRejectsBadInput(t *testing.T) {
	svc := newWatchlistService(t)
	h := handlers.NewSettingsHandler(svc)

	tests := []struct {
		name string
		body string
	}{
		{"not json", `{{{`},
		{"zero days", `{"defaultReminderDays":0,"enableNotifications":true}`},
		{"negative days", `{"defaultReminderDays":-2,"enableNotifications":true}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPut, "/api/settings/reminders", strings.NewReader(tc.body))
			rec := httptest.NewRecorder()
			h.Update(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected status 400, got %d", rec.Code)
			}
		})
	}
}
