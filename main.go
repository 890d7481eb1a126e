package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"gopkg.in/natefinch/lumberjack.v2"

	"repackwatch/api"
	"repackwatch/config"
	"repackwatch/handlers"
	"repackwatch/internal/store"
	"repackwatch/services/notify"
	"repackwatch/services/reminders"
	"repackwatch/services/scraper"
	"repackwatch/services/watchlist"
)

const version = "1.0.0"

func main() {
	configFlag := flag.String("config", "", "path to settings file")
	portOverride := flag.Int("port", 0, "override server port from config")
	flag.Parse()

	configPath := *configFlag
	if configPath == "" {
		configPath = os.Getenv("REPACKWATCH_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join("cache", "settings.json")
	}

	cfgManager := config.NewManager(configPath)
	settings, err := cfgManager.Load()
	if err != nil {
		log.Fatalf("failed to load settings: %v", err)
	}

	// Set up file logging with rotation
	if settings.Log.File != "" {
		logDir := filepath.Dir(settings.Log.File)
		if err := os.MkdirAll(logDir, 0o755); err != nil {
			log.Printf("warning: could not create log directory %s: %v", logDir, err)
		} else {
			fileWriter := &lumberjack.Logger{
				Filename:   settings.Log.File,
				MaxSize:    settings.Log.MaxSize,
				MaxBackups: settings.Log.MaxBackups,
				MaxAge:     settings.Log.MaxAge,
				Compress:   settings.Log.Compress,
			}
			log.SetOutput(io.MultiWriter(os.Stdout, fileWriter))
			log.SetFlags(log.LstdFlags | log.Lshortfile)
			log.Printf("logging to file: %s", settings.Log.File)
		}
	}

	if *portOverride > 0 {
		settings.Server.Port = *portOverride
	}

	kv, err := store.Open(settings.Storage.DatabasePath)
	if err != nil {
		log.Fatalf("failed to open store: %v", err)
	}
	defer kv.Close()

	notifier, err := notify.FromSettings(settings.Notifier)
	if err != nil {
		log.Fatalf("failed to configure notifier: %v", err)
	}

	watchlistService := watchlist.NewService(kv)
	fetcher := scraper.NewFetcher(settings.Scraper)
	reminderService := reminders.NewService(watchlistService, notifier, settings.Reminders)

	if err := reminderService.Start(context.Background()); err != nil {
		log.Fatalf("failed to start reminder scheduler: %v", err)
	}

	r := mux.NewRouter()
	api.Register(
		r,
		handlers.NewWatchlistHandler(watchlistService),
		handlers.NewSettingsHandler(watchlistService),
		handlers.NewRemindersHandler(reminderService),
		handlers.NewScanHandler(fetcher, settings.Scraper.WatchURLs),
		handlers.NewStatusHandler(watchlistService, reminderService, version),
	)

	addr := fmt.Sprintf("%s:%d", settings.Server.Host, settings.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("server starting on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-shutdownChan
	log.Println("shutdown signal received, cleaning up...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := reminderService.Stop(shutdownCtx); err != nil {
		log.Printf("scheduler shutdown error: %v", err)
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}

	log.Println("shutdown complete")
}
