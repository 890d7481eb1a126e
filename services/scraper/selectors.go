package scraper

// Selectors centralises every CSS selector the scraper depends on, so a site
// markup change touches this file only.
type Selectors struct {
	// Containers are tried in order; the first one matching at least one
	// element wins.
	Containers []string
	// AnchorFallback is used when no container matches at all.
	AnchorFallback string
	// EntryLinks are tried in order inside each container to find the
	// permalink for the entry.
	EntryLinks []string
	// Headings locates a title element when no usable link exists.
	Headings string
	Image    string
	OGTitle  string
}

var defaultSelectors = Selectors{
	Containers: []string{
		".post",
		".entry",
		".game-item",
		"article",
		".content .post",
		".main-content .post",
	},
	AnchorFallback: `a[href*="/repack/"], a[href*="/game/"]`,
	EntryLinks: []string{
		`h2.entry-title a[rel="bookmark"]`,
		`h1.entry-title a[rel="bookmark"]`,
		`.entry-title a[rel="bookmark"]`,
		`h2.entry-title a`,
		`h1 a[rel="bookmark"]`,
		`h2 a[rel="bookmark"]`,
		`a[rel="bookmark"]`,
		`h1 a, h2 a, h3 a`,
	},
	Headings: "h1, h2, h3, .title, .entry-title",
	Image:    "img",
	OGTitle:  `meta[property="og:title"]`,
}

// CurrentSelectors returns the active selector set.
func CurrentSelectors() Selectors {
	return defaultSelectors
}
