package scraper

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/avast/retry-go/v4"
	"github.com/sourcegraph/conc/pool"

	"repackwatch/config"
	"repackwatch/models"
)

var ErrDomainNotAllowed = errors.New("url hostname is not in the allowlist")

// Fetcher downloads and parses pages from the watched site.
type Fetcher struct {
	client         *http.Client
	allowedDomains []string
	maxRetries     int
	maxConcurrent  int
	userAgent      string
}

// NewFetcher builds a fetcher from scraper settings.
func NewFetcher(cfg config.ScraperSettings) *Fetcher {
	timeout := time.Duration(cfg.FetchTimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	maxConcurrent := cfg.MaxConcurrentFetches
	if maxConcurrent <= 0 {
		maxConcurrent = 5
	}

	return &Fetcher{
		client:         &http.Client{Timeout: timeout},
		allowedDomains: cfg.AllowedDomains,
		maxRetries:     cfg.MaxRetries,
		maxConcurrent:  maxConcurrent,
		userAgent:      cfg.UserAgent,
	}
}

// Fetch downloads one page and parses it, retrying transient failures with
// exponential backoff.
func (f *Fetcher) Fetch(ctx context.Context, pageURL string) (*goquery.Document, error) {
	parsed, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("parse url %q: %w", pageURL, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("invalid url scheme %q: only http and https allowed", parsed.Scheme)
	}
	if !f.domainAllowed(parsed.Hostname()) {
		return nil, fmt.Errorf("%w: %s", ErrDomainNotAllowed, parsed.Hostname())
	}

	return retry.DoWithData(
		func() (*goquery.Document, error) {
			return f.fetchOnce(ctx, pageURL)
		},
		retry.Context(ctx),
		retry.Attempts(uint(f.maxRetries)+1),
		retry.Delay(time.Second),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
	)
}

// Scan fetches one page and extracts its candidates.
func (f *Fetcher) Scan(ctx context.Context, pageURL string) ([]models.WatchlistCandidate, error) {
	doc, err := f.Fetch(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	return Extract(doc, pageURL), nil
}

// ScanAll scans several pages with bounded concurrency. A page that fails is
// logged and skipped; it does not fail the batch.
func (f *Fetcher) ScanAll(ctx context.Context, urls []string) []models.WatchlistCandidate {
	type pageResult struct {
		url        string
		candidates []models.WatchlistCandidate
		err        error
	}

	p := pool.NewWithResults[pageResult]().WithMaxGoroutines(f.maxConcurrent)
	for _, pageURL := range urls {
		pageURL := pageURL
		p.Go(func() pageResult {
			candidates, err := f.Scan(ctx, pageURL)
			return pageResult{url: pageURL, candidates: candidates, err: err}
		})
	}

	var all []models.WatchlistCandidate
	for _, res := range p.Wait() {
		if res.err != nil {
			log.Printf("[scraper] scan %s failed: %v", res.url, res.err)
			continue
		}
		all = append(all, res.candidates...)
	}
	return all
}

func (f *Fetcher) fetchOnce(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request for %q: %w", pageURL, err)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	res, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %q: %w", pageURL, err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %q: status code %d", pageURL, res.StatusCode)
	}

	return goquery.NewDocumentFromReader(res.Body)
}

func (f *Fetcher) domainAllowed(hostname string) bool {
	for _, domain := range f.allowedDomains {
		if hostname == domain {
			return true
		}
	}
	return false
}
