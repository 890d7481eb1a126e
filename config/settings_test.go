package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"repackwatch/config"
)

func TestLoadCreatesDefaultsWhenMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	manager := config.NewManager(path)

	settings, err := manager.Load()
	if err != nil {
		t.Fatalf("load returned error: %v", err)
	}

	defaults := config.DefaultSettings()
	if settings.Server.Port != defaults.Server.Port {
		t.Fatalf("expected default port %d, got %d", defaults.Server.Port, settings.Server.Port)
	}

	// The defaults file must have been written out.
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("settings file was not created: %v", err)
	}
}

func TestLoadAppliesFallbacks(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	if err := os.WriteFile(path, []byte(`{"server":{"port":9000}}`), 0o644); err != nil {
		t.Fatalf("write settings file: %v", err)
	}

	settings, err := config.NewManager(path).Load()
	if err != nil {
		t.Fatalf("load returned error: %v", err)
	}

	if settings.Server.Port != 9000 {
		t.Fatalf("explicit port lost: got %d", settings.Server.Port)
	}
	if settings.Storage.DatabasePath == "" {
		t.Fatal("database path fallback not applied")
	}
	if settings.Reminders.CheckIntervalSeconds <= 0 {
		t.Fatal("check interval fallback not applied")
	}
	if len(settings.Scraper.AllowedDomains) == 0 {
		t.Fatal("allowed domains fallback not applied")
	}
}

func TestSaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "settings.json")
	manager := config.NewManager(path)

	settings := config.DefaultSettings()
	settings.Server.Port = 8123
	settings.Notifier.Type = "webhook"
	settings.Notifier.WebhookURL = "https://example.com/hook"

	if err := manager.Save(settings); err != nil {
		t.Fatalf("save returned error: %v", err)
	}

	loaded, err := manager.Load()
	if err != nil {
		t.Fatalf("reload returned error: %v", err)
	}
	if loaded.Server.Port != 8123 {
		t.Fatalf("expected port 8123 after reload, got %d", loaded.Server.Port)
	}
	if loaded.Notifier.WebhookURL != "https://example.com/hook" {
		t.Fatalf("webhook url lost on reload: %q", loaded.Notifier.WebhookURL)
	}
}
