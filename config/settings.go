package config

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

// Settings represents the application configuration persisted to disk.
type Settings struct {
	Server    ServerSettings   `json:"server"`
	Storage   StorageSettings  `json:"storage"`
	Scraper   ScraperSettings  `json:"scraper"`
	Reminders ReminderSchedule `json:"reminders"`
	Notifier  NotifierSettings `json:"notifier"`
	Log       LogConfig        `json:"log"`
}

type ServerSettings struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

// StorageSettings defines where the key-value database lives.
type StorageSettings struct {
	DatabasePath string `json:"databasePath"`
}

// ScraperSettings controls page fetching for the listing scraper.
type ScraperSettings struct {
	SiteBaseURL          string   `json:"siteBaseUrl"`
	AllowedDomains       []string `json:"allowedDomains"`
	WatchURLs            []string `json:"watchUrls,omitempty"` // pages scanned by ScanAll
	FetchTimeoutSeconds  int      `json:"fetchTimeoutSeconds"`
	MaxRetries           int      `json:"maxRetries"`
	MaxConcurrentFetches int      `json:"maxConcurrentFetches"`
	UserAgent            string   `json:"userAgent"`
}

// ReminderSchedule controls the background reminder check loop. The interval
// is in seconds so tests and small deployments can tighten it; the product
// default is one day.
type ReminderSchedule struct {
	InitialDelaySeconds  int `json:"initialDelaySeconds"`
	CheckIntervalSeconds int `json:"checkIntervalSeconds"`
	JitterSeconds        int `json:"jitterSeconds"`
}

// NotifierSettings selects how due-reminder notifications are delivered.
type NotifierSettings struct {
	Type           string `json:"type"` // log | webhook
	WebhookURL     string `json:"webhookUrl,omitempty"`
	TimeoutSeconds int    `json:"timeoutSeconds"`
}

// LogConfig represents logging configuration.
type LogConfig struct {
	File       string `json:"file"`
	Level      string `json:"level"`
	MaxSize    int    `json:"maxSize"`
	MaxAge     int    `json:"maxAge"`
	MaxBackups int    `json:"maxBackups"`
	Compress   bool   `json:"compress"`
}

// DefaultSettings returns sane defaults for a fresh install.
func DefaultSettings() Settings {
	return Settings{
		Server:  ServerSettings{Host: "0.0.0.0", Port: 7788},
		Storage: StorageSettings{DatabasePath: "cache/watchlist.db"},
		Scraper: ScraperSettings{
			SiteBaseURL:          "https://fitgirl-repacks.site/",
			AllowedDomains:       []string{"fitgirl-repacks.site"},
			FetchTimeoutSeconds:  30,
			MaxRetries:           3,
			MaxConcurrentFetches: 5,
			UserAgent:            "repackwatch/1.0",
		},
		Reminders: ReminderSchedule{
			InitialDelaySeconds:  60,
			CheckIntervalSeconds: 24 * 60 * 60,
			JitterSeconds:        0,
		},
		Notifier: NotifierSettings{Type: "log", TimeoutSeconds: 10},
		Log: LogConfig{
			File:       "cache/logs/repackwatch.log",
			Level:      "info",
			MaxSize:    50,
			MaxBackups: 3,
			MaxAge:     7,
			Compress:   true,
		},
	}
}

// Manager loads and persists settings to a JSON file.
type Manager struct {
	path string
}

func NewManager(configPath string) *Manager {
	return &Manager{path: configPath}
}

// EnsureDir ensures parent directory exists.
func (m *Manager) EnsureDir() error {
	dir := filepath.Dir(m.path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

// Load reads the settings file from disk or creates defaults if missing.
func (m *Manager) Load() (Settings, error) {
	if m.path == "" {
		return Settings{}, errors.New("config path not set")
	}
	if _, err := os.Stat(m.path); errors.Is(err, fs.ErrNotExist) {
		defaults := DefaultSettings()
		if err := m.Save(defaults); err != nil {
			return Settings{}, err
		}
		return defaults, nil
	}
	f, err := os.Open(m.path)
	if err != nil {
		return Settings{}, err
	}
	defer f.Close()

	var s Settings
	if err := json.NewDecoder(f).Decode(&s); err != nil {
		return Settings{}, err
	}
	applyFallbacks(&s)
	return s, nil
}

// Save writes settings to disk, creating the parent directory when needed.
func (m *Manager) Save(s Settings) error {
	if m.path == "" {
		return errors.New("config path not set")
	}
	if err := m.EnsureDir(); err != nil {
		return err
	}

	tmp := m.path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, m.path)
}

// applyFallbacks fills zero values left by hand-edited or older config files.
func applyFallbacks(s *Settings) {
	defaults := DefaultSettings()
	if s.Server.Port == 0 {
		s.Server.Port = defaults.Server.Port
	}
	if s.Storage.DatabasePath == "" {
		s.Storage.DatabasePath = defaults.Storage.DatabasePath
	}
	if s.Scraper.FetchTimeoutSeconds <= 0 {
		s.Scraper.FetchTimeoutSeconds = defaults.Scraper.FetchTimeoutSeconds
	}
	if s.Scraper.MaxRetries < 0 {
		s.Scraper.MaxRetries = defaults.Scraper.MaxRetries
	}
	if s.Scraper.MaxConcurrentFetches <= 0 {
		s.Scraper.MaxConcurrentFetches = defaults.Scraper.MaxConcurrentFetches
	}
	if s.Scraper.UserAgent == "" {
		s.Scraper.UserAgent = defaults.Scraper.UserAgent
	}
	if len(s.Scraper.AllowedDomains) == 0 {
		s.Scraper.AllowedDomains = defaults.Scraper.AllowedDomains
	}
	if s.Reminders.CheckIntervalSeconds <= 0 {
		s.Reminders.CheckIntervalSeconds = defaults.Reminders.CheckIntervalSeconds
	}
	if s.Reminders.InitialDelaySeconds < 0 {
		s.Reminders.InitialDelaySeconds = defaults.Reminders.InitialDelaySeconds
	}
	if s.Notifier.Type == "" {
		s.Notifier.Type = defaults.Notifier.Type
	}
	if s.Notifier.TimeoutSeconds <= 0 {
		s.Notifier.TimeoutSeconds = defaults.Notifier.TimeoutSeconds
	}
}
