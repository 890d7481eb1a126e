package scraper

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/unicode/norm"

	"repackwatch/models"
	"repackwatch/services/watchlist"
)

// listingMarkers identify archive-style URLs that never point at one game.
var listingMarkers = []string{"/category/", "/tag/", "/page/"}

var (
	leadingDateRe = regexp.MustCompile(`^\d{1,2}[/-]\d{1,2}[/-]\d{2,4}\s*`)
	dateOnlyRe    = regexp.MustCompile(`^\d{1,2}[/-]\d{1,2}[/-]\d{2,4}$`)
	attributionRe = regexp.MustCompile(`(?i)\s*[-–—]?\s*fitgirl(\s+repacks?)?$`)
	siteSuffixRe  = regexp.MustCompile(`(?i)\s*[-–—|]\s*fitgirl repacks.*$`)
)

// Extract pulls watchlist candidates out of a parsed page. It is pure: no
// network, no persistence. The caller decides what to do with the result.
func Extract(doc *goquery.Document, pageURL string) []models.WatchlistCandidate {
	base, err := url.Parse(pageURL)
	if err != nil {
		base = nil
	}

	sel := CurrentSelectors()
	elements := findCandidateElements(doc, sel)

	candidates := make([]models.WatchlistCandidate, 0, elements.Length())
	elements.Each(func(_ int, el *goquery.Selection) {
		candidates = append(candidates, extractInfo(doc, el, sel, base, pageURL))
	})
	return candidates
}

// findCandidateElements tries each container selector in order and keeps the
// first that matches anything; with no containers at all it falls back to
// anchors whose href looks like a repack or game link.
func findCandidateElements(doc *goquery.Document, sel Selectors) *goquery.Selection {
	for _, selector := range sel.Containers {
		if found := doc.Find(selector); found.Length() > 0 {
			return found
		}
	}
	return doc.Find(sel.AnchorFallback)
}

func extractInfo(doc *goquery.Document, el *goquery.Selection, sel Selectors, base *url.URL, pageURL string) models.WatchlistCandidate {
	link := findEntryLink(el, sel)

	title := ""
	if link != nil {
		title = link.Text()
	} else if heading := el.Find(sel.Headings).First(); heading.Length() > 0 {
		title = heading.Text()
	}

	candidateURL := ""
	if link != nil {
		if href, ok := link.Attr("href"); ok {
			candidateURL = resolveCandidateURL(href, base)
		}
	}
	if candidateURL == "" && !IsListingURL(pageURL) {
		// Single-item page: the page itself is the game. Prefer the page-level
		// title sources over whatever the container yielded.
		candidateURL = pageURL
		if pageTitle := singlePageTitle(doc, sel); pageTitle != "" {
			title = pageTitle
		}
	}

	image := ""
	if img := el.Find(sel.Image).First(); img.Length() > 0 {
		if src, ok := img.Attr("src"); ok {
			image = src
		}
	}

	domain := ""
	if base != nil {
		domain = base.Hostname()
	}

	return models.WatchlistCandidate{
		Title:  CleanTitle(title),
		URL:    candidateURL,
		Image:  image,
		Domain: domain,
	}
}

// findEntryLink walks the priority chain of permalink selectors. The element
// itself may already be an anchor (fallback discovery mode).
func findEntryLink(el *goquery.Selection, sel Selectors) *goquery.Selection {
	if el.Is("a") {
		return el
	}
	for _, selector := range sel.EntryLinks {
		if link := el.Find(selector).First(); link.Length() > 0 {
			return link
		}
	}
	return nil
}

// resolveCandidateURL validates and absolutises an href. Category, tag,
// pagination and fragment links are rejected as absent.
func resolveCandidateURL(href string, base *url.URL) string {
	href = strings.TrimSpace(href)
	if href == "" || strings.Contains(href, "#") {
		return ""
	}
	for _, marker := range listingMarkers {
		if strings.Contains(href, marker) {
			return ""
		}
	}

	parsed, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if base != nil {
		parsed = base.ResolveReference(parsed)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return ""
	}
	return parsed.String()
}

// singlePageTitle resolves the title for a single-item page: document title
// stripped of the site-name suffix, else the first h1, else the Open Graph
// title.
func singlePageTitle(doc *goquery.Document, sel Selectors) string {
	if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		return siteSuffixRe.ReplaceAllString(title, "")
	}
	if h1 := strings.TrimSpace(doc.Find("h1").First().Text()); h1 != "" {
		return h1
	}
	if og, ok := doc.Find(sel.OGTitle).Attr("content"); ok {
		return strings.TrimSpace(og)
	}
	return ""
}

// IsListingURL reports whether a URL shows many entries (category, tag or
// pagination archive) rather than a single game page.
func IsListingURL(pageURL string) bool {
	for _, marker := range listingMarkers {
		if strings.Contains(pageURL, marker) {
			return true
		}
	}
	return false
}

// CleanTitle normalises a scraped title: NFC form, collapsed whitespace, a
// leading date token and a trailing scene attribution removed. Titles that
// end up empty, shorter than three characters, or consisting only of a date
// fall back to the unknown-title sentinel.
func CleanTitle(raw string) string {
	title := norm.NFC.String(raw)
	title = strings.Join(strings.Fields(title), " ")
	title = leadingDateRe.ReplaceAllString(title, "")
	title = attributionRe.ReplaceAllString(title, "")
	title = strings.TrimSpace(title)

	if title == "" || len([]rune(title)) < 3 || dateOnlyRe.MatchString(title) {
		return watchlist.UnknownTitle
	}
	return title
}
