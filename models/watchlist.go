package models

import (
	"encoding/base64"
	"strings"
	"time"
)

// WatchlistItem represents a repack listing saved by the user, with its
// reminder schedule.
type WatchlistItem struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	URL          string     `json:"url"`
	Image        string     `json:"image,omitempty"`
	Domain       string     `json:"domain,omitempty"`
	DateAdded    time.Time  `json:"dateAdded"`
	ReminderDate time.Time  `json:"reminderDate"`
	LastReminded *time.Time `json:"lastReminded,omitempty"`
}

// Key returns the storage key for the item.
func (w WatchlistItem) Key() string {
	return WatchlistKeyPrefix + w.ID
}

// WatchlistCandidate captures data scraped from a page before it becomes a
// watchlist item.
type WatchlistCandidate struct {
	Title  string `json:"title"`
	URL    string `json:"url"`
	Image  string `json:"image,omitempty"`
	Domain string `json:"domain,omitempty"`
}

// ReminderSettings is the singleton reminder configuration. ReminderTime is
// advisory only; the check loop compares dates, not time-of-day.
type ReminderSettings struct {
	DefaultReminderDays int       `json:"defaultReminderDays"`
	EnableNotifications bool      `json:"enableNotifications"`
	ReminderTime        string    `json:"reminderTime"`
	LastUpdated         time.Time `json:"lastUpdated,omitempty"`
}

// DefaultReminderSettings returns the settings used before the user saves any.
func DefaultReminderSettings() ReminderSettings {
	return ReminderSettings{
		DefaultReminderDays: 7,
		EnableNotifications: true,
		ReminderTime:        "09:00",
	}
}

// WatchlistExport is the import/export file format. The field names match the
// files produced by earlier releases, so old exports import cleanly.
type WatchlistExport struct {
	WatchlistItems []WatchlistItem   `json:"watchlistItems" validate:"required,dive"`
	Settings       *ReminderSettings `json:"settings,omitempty"`
	ExportDate     time.Time         `json:"exportDate"`
	Version        string            `json:"version"`
}

// Storage keys owned by the watchlist service.
const (
	WatchlistKeyPrefix  = "watchlist_"
	ReminderSettingsKey = "reminderSettings"
)

// ItemID derives the stable identity for a (url, title) pair: percent-encode
// "url|title", base64 it, and strip everything that is not alphanumeric so
// the result is safe as a storage key. Deterministic; never recomputed for a
// stored item.
func ItemID(url, title string) string {
	encoded := base64.StdEncoding.EncodeToString([]byte(percentEncode(url + "|" + title)))
	var b strings.Builder
	b.Grow(len(encoded))
	for i := 0; i < len(encoded); i++ {
		c := encoded[i]
		if c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' {
			b.WriteByte(c)
		}
	}
	return b.String()
}

// percentEncode escapes the same byte set as JavaScript's encodeURIComponent,
// which the identity format is frozen on.
func percentEncode(s string) string {
	const hex = "0123456789ABCDEF"
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9':
			b.WriteByte(c)
		case c == '-' || c == '_' || c == '.' || c == '!' || c == '~' || c == '*' || c == '\'' || c == '(' || c == ')':
			b.WriteByte(c)
		default:
			b.WriteByte('%')
			b.WriteByte(hex[c>>4])
			b.WriteByte(hex[c&0x0f])
		}
	}
	return b.String()
}
