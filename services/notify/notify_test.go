package notify_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"repackwatch/config"
	"repackwatch/services/notify"
)

func TestReminderNotification(t *testing.T) {
	n := notify.ReminderNotification(4)
	require.Equal(t, "basic", n.Type)
	require.Equal(t, "Repack Watchlist Reminder", n.Title)
	require.Equal(t, "You have 4 game(s) to check out!", n.Message)
}

func TestFromSettings(t *testing.T) {
	notifier, err := notify.FromSettings(config.NotifierSettings{})
	require.NoError(t, err)
	require.IsType(t, &notify.Log{}, notifier)

	notifier, err = notify.FromSettings(config.NotifierSettings{Type: "log"})
	require.NoError(t, err)
	require.IsType(t, &notify.Log{}, notifier)

	_, err = notify.FromSettings(config.NotifierSettings{Type: "webhook"})
	require.Error(t, err, "webhook without a URL must be rejected")

	notifier, err = notify.FromSettings(config.NotifierSettings{
		Type:       "webhook",
		WebhookURL: "https://example.com/hook",
	})
	require.NoError(t, err)
	require.IsType(t, &notify.Webhook{}, notifier)

	_, err = notify.FromSettings(config.NotifierSettings{Type: "carrier-pigeon"})
	require.Error(t, err)
}

func TestWebhookSend(t *testing.T) {
	var received notify.Notification
	var contentType string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		contentType = r.Header.Get("Content-Type")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	webhook := &notify.Webhook{URL: server.URL, Client: server.Client()}
	err := webhook.Send(context.Background(), notify.ReminderNotification(2))
	require.NoError(t, err)
	require.Equal(t, "application/json", contentType)
	require.Equal(t, "You have 2 game(s) to check out!", received.Message)
}

func TestWebhookSendRejectsErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer server.Close()

	webhook := &notify.Webhook{URL: server.URL, Client: server.Client()}
	err := webhook.Send(context.Background(), notify.ReminderNotification(1))
	require.Error(t, err)
	require.Contains(t, err.Error(), "502")
}
