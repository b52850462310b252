package source

import "strings"

var hostSourceNames = []struct {
	marker string
	name   string
}{
	{"cnbc", "CNBC"},
	{"marketwatch", "MarketWatch"},
	{"seekingalpha", "Seeking Alpha"},
	{"finance.yahoo", "Yahoo Finance"},
	{"sec.gov", "SEC"},
	{"eia.gov", "EIA"},
	{"federalreserve", "Federal Reserve"},
	{"reuters", "Reuters"},
	{"techcrunch", "TechCrunch"},
	{"venturebeat", "VentureBeat"},
	{"spacenews", "SpaceNews"},
	{"space.com", "Space.com"},
	{"nasaspaceflight", "NASASpaceFlight"},
	{"oilprice", "OilPrice"},
	{"mining.com", "Mining.com"},
	{"defenseone", "Defense One"},
	{"arstechnica", "Ars Technica"},
	{"theverge", "The Verge"},
	{"wired.com", "Wired"},
	{"bbc", "BBC"},
	{"hnrss", "HN"},
	{"news.google.com", "Google News"},
	{"nitter", "Nitter"},
}

// sourceNameFromURL maps a feed URL to a short display name for the report.
func sourceNameFromURL(url string) string {
	lower := strings.ToLower(url)
	for _, entry := range hostSourceNames {
		if strings.Contains(lower, entry.marker) {
			return entry.name
		}
	}
	return "RSS"
}

var titleSourceSeparators = []string{" - ", " – ", " — "}

// entrySource resolves the real publisher of an aggregator entry. Google News
// titles end with "Headline - Publisher"; for every other feed the URL-derived
// fallback stands.
func entrySource(title, feedURL, fallback string) string {
	if !strings.Contains(feedURL, "news.google.com") {
		return fallback
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return fallback
	}
	for _, sep := range titleSourceSeparators {
		idx := strings.LastIndex(title, sep)
		if idx < 0 {
			continue
		}
		candidate := strings.TrimSpace(title[idx+len(sep):])
		if candidate != "" && len(candidate) < 80 && !strings.Contains(candidate, "http") {
			return candidate
		}
	}
	return fallback
}
