package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"repackwatch/config"
)

// Notification is the payload delivered when reminders come due. Type is
// always "basic"; there is no rich formatting.
type Notification struct {
	Type    string `json:"type"`
	Title   string `json:"title"`
	Message string `json:"message"`
}

// ReminderNotification builds the aggregate due-reminder notification.
func ReminderNotification(count int) Notification {
	return Notification{
		Type:    "basic",
		Title:   "Repack Watchlist Reminder",
		Message: fmt.Sprintf("You have %d game(s) to check out!", count),
	}
}

// Notifier delivers notifications. Delivery is fire-and-forget: callers log
// failures but never retry.
type Notifier interface {
	Send(ctx context.Context, n Notification) error
}

// FromSettings selects a notifier implementation from config.
func FromSettings(cfg config.NotifierSettings) (Notifier, error) {
	switch cfg.Type {
	case "", "log":
		return &Log{}, nil
	case "webhook":
		if cfg.WebhookURL == "" {
			return nil, errors.New("webhook notifier requires webhookUrl")
		}
		timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		return &Webhook{
			URL:    cfg.WebhookURL,
			Client: &http.Client{Timeout: timeout},
		}, nil
	default:
		return nil, fmt.Errorf("unknown notifier type %q", cfg.Type)
	}
}

// Log writes notifications to the process log. Default for headless installs.
type Log struct{}

func (l *Log) Send(_ context.Context, n Notification) error {
	log.Printf("[notify] %s: %s", n.Title, n.Message)
	return nil
}

// Webhook POSTs the notification as JSON to a configured endpoint.
type Webhook struct {
	URL    string
	Client *http.Client
}

func (w *Webhook) Send(ctx context.Context, n Notification) error {
	body, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := w.Client.Do(req)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return fmt.Errorf("webhook returned status %d", res.StatusCode)
	}
	return nil
}
