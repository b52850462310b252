package normalize

import (
	"net/url"
	"strings"
	"time"
	"unicode"

	"IntelDigest/internal/domain"
)

const (
	maxTitleRunes = 200
	maxBodyRunes  = 500
)

var timeLayouts = []string{
	time.RFC1123Z,
	time.RFC1123,
	time.RFC822Z,
	time.RFC822,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2 Jan 2006",
	"Mon, 2 Jan 2006 15:04:05 MST",
}

// Normalize converts one raw entry into the uniform item model. Entries
// missing a title or link are dropped; a dropped entry is not an error.
// The identity key is derived here so later stages never re-compute it from
// inconsistent state.
func Normalize(cat domain.Category, raw domain.RawEntry) (domain.Item, bool) {
	title := strings.TrimSpace(raw.Title)
	link := strings.TrimSpace(raw.Link)
	if title == "" || link == "" {
		return domain.Item{}, false
	}

	body := strings.TrimSpace(raw.Body)
	if body == "" {
		body = title
	}

	title = truncate(title, maxTitleRunes)
	body = truncate(body, maxBodyRunes)

	item := domain.Item{
		Category:     cat,
		Title:        title,
		Body:         body,
		OriginalBody: body,
		Link:         link,
		PublishedAt:  ParseTime(raw.Published),
		Source:       strings.TrimSpace(raw.Source),
	}
	item.IdentityKey = IdentityKey(item)
	return item, true
}

// IdentityKey derives the composite dedup signal: the normalized link, or the
// normalized title when the link normalizes to nothing usable.
func IdentityKey(item domain.Item) string {
	if key := NormalizeLink(item.Link); key != "" {
		return key
	}
	return NormalizeTitle(item.Title)
}

// NormalizeLink lower-cases scheme, host, and path and strips query and
// fragment, so tracking parameters never split one story into two.
func NormalizeLink(link string) string {
	u, err := url.Parse(strings.TrimSpace(link))
	if err != nil || u.Host == "" {
		return ""
	}
	scheme := strings.ToLower(u.Scheme)
	host := strings.ToLower(u.Host)
	path := strings.ToLower(strings.TrimSuffix(u.Path, "/"))
	return scheme + "://" + host + path
}

// NormalizeTitle case-folds, strips punctuation, and collapses whitespace.
// Matching is exact after normalization: near-duplicates that still differ
// stay distinct.
func NormalizeTitle(title string) string {
	var b strings.Builder
	lastSpace := true
	for _, r := range strings.ToLower(title) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastSpace = false
		case unicode.IsSpace(r):
			if !lastSpace {
				b.WriteRune(' ')
				lastSpace = true
			}
		}
	}
	return strings.TrimSpace(b.String())
}

// ParseTime parses textual feed dates best-effort. Failure is never fatal;
// the caller gets a zero time and the item keeps flowing.
func ParseTime(value string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
