package watchlist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"repackwatch/internal/store"
	"repackwatch/models"
)

const exportVersion = "1.0.0"

// UnknownTitle is the sentinel used when no usable title survives cleanup.
const UnknownTitle = "Unknown Game"

var (
	ErrURLRequired    = errors.New("item url is required")
	ErrListingURL     = errors.New("url points at a category, tag or listing page")
	ErrItemIDRequired = errors.New("item id is required")
	ErrReminderDays   = errors.New("defaultReminderDays must be at least 1")
	ErrInvalidImport  = errors.New("import file is not a valid watchlist export")
	ErrItemNotFound   = errors.New("watchlist item not found")
)

// listingMarkers identify URLs that show many entries rather than one game.
var listingMarkers = []string{"/category/", "/tag/", "/page/"}

// Service owns the persisted watchlist items and the reminder settings
// singleton. All state lives in the key-value store; the service holds no
// authoritative copies.
type Service struct {
	kv       *store.KV
	validate *validator.Validate
}

// NewService creates a watchlist service backed by the given store.
func NewService(kv *store.KV) *Service {
	return &Service{
		kv:       kv,
		validate: validator.New(),
	}
}

// List returns all watchlist items sorted by most recent additions first.
func (s *Service) List(ctx context.Context) ([]models.WatchlistItem, error) {
	raw, err := s.kv.ListPrefix(ctx, models.WatchlistKeyPrefix)
	if err != nil {
		return nil, err
	}

	items := make([]models.WatchlistItem, 0, len(raw))
	for key, value := range raw {
		var item models.WatchlistItem
		if err := json.Unmarshal(value, &item); err != nil {
			log.Printf("[watchlist] skipping unreadable record %q: %v", key, err)
			continue
		}
		items = append(items, item)
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].DateAdded.Equal(items[j].DateAdded) {
			return items[i].ID < items[j].ID
		}
		return items[i].DateAdded.After(items[j].DateAdded)
	})

	return items, nil
}

// Count returns the number of stored items without decoding them.
func (s *Service) Count(ctx context.Context) (int, error) {
	return s.kv.CountPrefix(ctx, models.WatchlistKeyPrefix)
}

// Get returns a single item by id.
func (s *Service) Get(ctx context.Context, id string) (models.WatchlistItem, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return models.WatchlistItem{}, ErrItemIDRequired
	}

	value, ok, err := s.kv.Get(ctx, models.WatchlistKeyPrefix+id)
	if err != nil {
		return models.WatchlistItem{}, err
	}
	if !ok {
		return models.WatchlistItem{}, ErrItemNotFound
	}

	var item models.WatchlistItem
	if err := json.Unmarshal(value, &item); err != nil {
		return models.WatchlistItem{}, fmt.Errorf("decode item %q: %w", id, err)
	}
	return item, nil
}

// Add validates a scraped candidate and persists it as a watchlist item. The
// reminder date is dateAdded plus the configured default. Re-adding an
// existing candidate overwrites the record wholesale.
func (s *Service) Add(ctx context.Context, candidate models.WatchlistCandidate) (models.WatchlistItem, error) {
	candidate.URL = strings.TrimSpace(candidate.URL)
	if candidate.URL == "" {
		return models.WatchlistItem{}, ErrURLRequired
	}
	for _, marker := range listingMarkers {
		if strings.Contains(candidate.URL, marker) {
			return models.WatchlistItem{}, ErrListingURL
		}
	}

	title := strings.TrimSpace(candidate.Title)
	if title == "" {
		title = UnknownTitle
	}

	domain := strings.TrimSpace(candidate.Domain)
	if domain == "" {
		if parsed, err := url.Parse(candidate.URL); err == nil {
			domain = parsed.Hostname()
		}
	}

	settings, err := s.GetSettings(ctx)
	if err != nil {
		return models.WatchlistItem{}, err
	}

	now := time.Now().UTC()
	item := models.WatchlistItem{
		ID:           models.ItemID(candidate.URL, title),
		Title:        title,
		URL:          candidate.URL,
		Image:        candidate.Image,
		Domain:       domain,
		DateAdded:    now,
		ReminderDate: now.AddDate(0, 0, settings.DefaultReminderDays),
	}

	if err := s.putItem(ctx, item); err != nil {
		return models.WatchlistItem{}, err
	}
	return item, nil
}

// Remove deletes an item. Removing an id that is not stored is a no-op.
func (s *Service) Remove(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrItemIDRequired
	}
	return s.kv.Delete(ctx, models.WatchlistKeyPrefix+id)
}

// Clear wipes the entire store, items and settings alike.
func (s *Service) Clear(ctx context.Context) error {
	return s.kv.Clear(ctx)
}

// GetSettings returns persisted reminder settings, or defaults when none
// have been saved yet.
func (s *Service) GetSettings(ctx context.Context) (models.ReminderSettings, error) {
	value, ok, err := s.kv.Get(ctx, models.ReminderSettingsKey)
	if err != nil {
		return models.ReminderSettings{}, err
	}
	if !ok {
		return models.DefaultReminderSettings(), nil
	}

	var settings models.ReminderSettings
	if err := json.Unmarshal(value, &settings); err != nil {
		return models.ReminderSettings{}, fmt.Errorf("decode reminder settings: %w", err)
	}
	if settings.DefaultReminderDays < 1 {
		settings.DefaultReminderDays = models.DefaultReminderSettings().DefaultReminderDays
	}
	return settings, nil
}

// UpdateSettings persists new reminder settings and recomputes every stored
// item's reminder date against the new default. The rewrite is a bulk reset,
// not an adjustment of the remaining wait.
func (s *Service) UpdateSettings(ctx context.Context, settings models.ReminderSettings) (models.ReminderSettings, error) {
	if settings.DefaultReminderDays < 1 {
		return models.ReminderSettings{}, ErrReminderDays
	}

	now := time.Now().UTC()
	settings.LastUpdated = now

	value, err := json.Marshal(settings)
	if err != nil {
		return models.ReminderSettings{}, fmt.Errorf("encode reminder settings: %w", err)
	}
	if err := s.kv.Put(ctx, models.ReminderSettingsKey, value); err != nil {
		return models.ReminderSettings{}, err
	}

	items, err := s.List(ctx)
	if err != nil {
		return models.ReminderSettings{}, err
	}
	for _, item := range items {
		item.ReminderDate = now.AddDate(0, 0, settings.DefaultReminderDays)
		if err := s.putItem(ctx, item); err != nil {
			return models.ReminderSettings{}, err
		}
	}

	return settings, nil
}

// CheckDue returns every item whose reminder date is at or before now.
func (s *Service) CheckDue(ctx context.Context, now time.Time) ([]models.WatchlistItem, error) {
	items, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	due := make([]models.WatchlistItem, 0)
	for _, item := range items {
		if !item.ReminderDate.After(now) {
			due = append(due, item)
		}
	}
	return due, nil
}

// AdvanceReminders pushes the reminder date of each given item forward by the
// configured default and stamps lastReminded. Called after a reminder fires,
// whether or not the notification was delivered.
func (s *Service) AdvanceReminders(ctx context.Context, due []models.WatchlistItem, now time.Time) error {
	if len(due) == 0 {
		return nil
	}

	settings, err := s.GetSettings(ctx)
	if err != nil {
		return err
	}

	for _, item := range due {
		reminded := now
		item.ReminderDate = now.AddDate(0, 0, settings.DefaultReminderDays)
		item.LastReminded = &reminded
		if err := s.putItem(ctx, item); err != nil {
			return err
		}
	}
	return nil
}

// Export serialises all items and the current settings into the portable
// export format.
func (s *Service) Export(ctx context.Context) (models.WatchlistExport, error) {
	items, err := s.List(ctx)
	if err != nil {
		return models.WatchlistExport{}, err
	}
	settings, err := s.GetSettings(ctx)
	if err != nil {
		return models.WatchlistExport{}, err
	}

	return models.WatchlistExport{
		WatchlistItems: items,
		Settings:       &settings,
		ExportDate:     time.Now().UTC(),
		Version:        exportVersion,
	}, nil
}

// Import validates an export payload, then wipes the store and rewrites it
// from the payload in one transaction. Nothing is written when validation
// fails.
func (s *Service) Import(ctx context.Context, payload models.WatchlistExport) (int, error) {
	if err := s.validate.Struct(payload); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidImport, err)
	}

	pairs := make(map[string][]byte, len(payload.WatchlistItems)+1)
	for _, item := range payload.WatchlistItems {
		if strings.TrimSpace(item.ID) == "" || strings.TrimSpace(item.URL) == "" {
			return 0, fmt.Errorf("%w: item missing id or url", ErrInvalidImport)
		}
		value, err := json.Marshal(item)
		if err != nil {
			return 0, fmt.Errorf("encode item %q: %w", item.ID, err)
		}
		pairs[item.Key()] = value
	}
	if payload.Settings != nil {
		value, err := json.Marshal(payload.Settings)
		if err != nil {
			return 0, fmt.Errorf("encode settings: %w", err)
		}
		pairs[models.ReminderSettingsKey] = value
	}

	if err := s.kv.Replace(ctx, pairs); err != nil {
		return 0, err
	}

	log.Printf("[watchlist] import %s applied: %d item(s)", uuid.NewString(), len(payload.WatchlistItems))
	return len(payload.WatchlistItems), nil
}

func (s *Service) putItem(ctx context.Context, item models.WatchlistItem) error {
	value, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("encode item %q: %w", item.ID, err)
	}
	return s.kv.Put(ctx, item.Key(), value)
}
