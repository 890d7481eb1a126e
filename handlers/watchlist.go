package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gorilla/mux"

	"repackwatch/models"
	"repackwatch/services/watchlist"
)

// maxImportBytes caps import uploads; a watchlist export is small.
const maxImportBytes = 8 << 20

type watchlistService interface {
	List(ctx context.Context) ([]models.WatchlistItem, error)
	Get(ctx context.Context, id string) (models.WatchlistItem, error)
	Add(ctx context.Context, candidate models.WatchlistCandidate) (models.WatchlistItem, error)
	Remove(ctx context.Context, id string) error
	Clear(ctx context.Context) error
	Export(ctx context.Context) (models.WatchlistExport, error)
	Import(ctx context.Context, payload models.WatchlistExport) (int, error)
}

var _ watchlistService = (*watchlist.Service)(nil)

type WatchlistHandler struct {
	Service watchlistService
}

func NewWatchlistHandler(service watchlistService) *WatchlistHandler {
	return &WatchlistHandler{Service: service}
}

func (h *WatchlistHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.Service.List(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(items)
}

func (h *WatchlistHandler) Add(w http.ResponseWriter, r *http.Request) {
	var candidate models.WatchlistCandidate
	if err := json.NewDecoder(r.Body).Decode(&candidate); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	item, err := h.Service.Add(r.Context(), candidate)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, watchlist.ErrURLRequired) || errors.Is(err, watchlist.ErrListingURL) {
			status = http.StatusBadRequest
		}
		http.Error(w, err.Error(), status)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(item)
}

func (h *WatchlistHandler) Get(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id := strings.TrimSpace(vars["id"])

	item, err := h.Service.Get(r.Context(), id)
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, watchlist.ErrItemIDRequired):
			status = http.StatusBadRequest
		case errors.Is(err, watchlist.ErrItemNotFound):
			status = http.StatusNotFound
		}
		http.Error(w, err.Error(), status)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(item)
}

// Remove deletes an item. Removing an unknown id still answers 204; the
// operation is idempotent.
func (h *WatchlistHandler) Remove(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id := strings.TrimSpace(vars["id"])

	if err := h.Service.Remove(r.Context(), id); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, watchlist.ErrItemIDRequired) {
			status = http.StatusBadRequest
		}
		http.Error(w, err.Error(), status)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *WatchlistHandler) Clear(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.Clear(r.Context()); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Export streams the full watchlist as a downloadable JSON file.
func (h *WatchlistHandler) Export(w http.ResponseWriter, r *http.Request) {
	payload, err := h.Service.Export(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	filename := fmt.Sprintf("repack-watchlist-%s.json", time.Now().UTC().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(payload)
}

// Import replaces the entire store with the uploaded export file. The upload
// is sniffed before decoding so a mislabelled binary fails fast.
func (h *WatchlistHandler) Import(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxImportBytes))
	if err != nil {
		http.Error(w, "read import file: "+err.Error(), http.StatusBadRequest)
		return
	}

	detected := mimetype.Detect(body)
	if !detected.Is("application/json") && !detected.Is("text/plain") {
		http.Error(w, fmt.Sprintf("import file must be JSON, got %s", detected.String()), http.StatusBadRequest)
		return
	}

	var payload models.WatchlistExport
	if err := json.Unmarshal(body, &payload); err != nil {
		http.Error(w, "import file is not valid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	imported, err := h.Service.Import(r.Context(), payload)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, watchlist.ErrInvalidImport) {
			status = http.StatusBadRequest
		}
		http.Error(w, err.Error(), status)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]int{"imported": imported})
}
