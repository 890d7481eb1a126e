package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"repackwatch/models"
	"repackwatch/services/scraper"
)

type pageScanner interface {
	Scan(ctx context.Context, pageURL string) ([]models.WatchlistCandidate, error)
	ScanAll(ctx context.Context, urls []string) []models.WatchlistCandidate
}

var _ pageScanner = (*scraper.Fetcher)(nil)

type ScanHandler struct {
	Scanner pageScanner
	// WatchURLs are the pages swept by ScanAll.
	WatchURLs []string
}

func NewScanHandler(scanner pageScanner, watchURLs []string) *ScanHandler {
	return &ScanHandler{Scanner: scanner, WatchURLs: watchURLs}
}

type scanRequest struct {
	URL string `json:"url"`
}

// Scan fetches one page of the watched site and returns the candidates the
// extraction heuristics found. Nothing is persisted; this is a preview.
func (h *ScanHandler) Scan(w http.ResponseWriter, r *http.Request) {
	var req scanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.URL) == "" {
		http.Error(w, "url is required", http.StatusBadRequest)
		return
	}

	candidates, err := h.Scanner.Scan(r.Context(), req.URL)
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, scraper.ErrDomainNotAllowed) {
			status = http.StatusBadRequest
		}
		http.Error(w, err.Error(), status)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(candidates)
}

// ScanAll sweeps every configured watch URL and returns the merged candidate
// list. Pages that fail to fetch are skipped.
func (h *ScanHandler) ScanAll(w http.ResponseWriter, r *http.Request) {
	if len(h.WatchURLs) == 0 {
		http.Error(w, "no watch urls configured", http.StatusBadRequest)
		return
	}

	candidates := h.Scanner.ScanAll(r.Context(), h.WatchURLs)
	if candidates == nil {
		candidates = []models.WatchlistCandidate{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(candidates)
}
