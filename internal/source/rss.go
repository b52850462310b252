package source

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"IntelDigest/internal/domain"
	"IntelDigest/internal/ports"
)

// Window bounds how old an entry may be and still count as fresh.
type Window int

const (
	// WindowToday keeps entries published on the current UTC day.
	WindowToday Window = iota
	// WindowTodayOrYesterday also keeps the previous UTC day, for feeds whose
	// publisher timezones would otherwise empty the category.
	WindowTodayOrYesterday
)

// Group is one set of feed URLs sharing a relevance predicate and freshness
// window within a category.
type Group struct {
	URLs     []string
	Keywords []string
	// Exclude drops entries whose title contains any of these terms even when
	// a keyword matched.
	Exclude []string
	Window  Window
	// OfficialHost orders entries from matching feed URLs ahead of the rest,
	// so first-encountered dedup tie-breaks favor the official source.
	OfficialHost string
}

// RSSSource is the generic feed-backed adapter covering the energy,
// commodities, space, and fed categories.
type RSSSource struct {
	category domain.Category
	groups   []Group
	fetcher  *FeedFetcher
	maxItems int
	logger   *slog.Logger
	now      func() time.Time
}

var _ ports.Source = (*RSSSource)(nil)

// NewRSSSource builds a feed adapter for one category.
func NewRSSSource(cat domain.Category, groups []Group, fetcher *FeedFetcher, maxItems int, logger *slog.Logger) *RSSSource {
	if maxItems <= 0 {
		maxItems = 20
	}
	return &RSSSource{
		category: cat,
		groups:   groups,
		fetcher:  fetcher,
		maxItems: maxItems,
		logger:   logger,
		now:      time.Now,
	}
}

// Category identifies the bucket this adapter feeds.
func (s *RSSSource) Category() domain.Category {
	return s.category
}

// Fetch pulls every configured feed once. Individual feed failures degrade the
// status to partial; only a run where no feed responded comes back failed.
func (s *RSSSource) Fetch(ctx context.Context) domain.FetchResult {
	var (
		official []domain.RawEntry
		rest     []domain.RawEntry
		fetched  int
		failed   int
		lastErr  error
	)

	for _, group := range s.groups {
		for _, url := range group.URLs {
			feed, err := s.fetcher.Fetch(ctx, url)
			if err != nil {
				failed++
				lastErr = err
				s.debug("feed fetch failed", "url", url, "error", err)
				continue
			}
			fetched++
			entries := s.collectEntries(feed, url, group)
			if group.OfficialHost != "" && strings.Contains(url, group.OfficialHost) {
				official = append(official, entries...)
			} else {
				rest = append(rest, entries...)
			}
		}
	}

	entries := append(official, rest...)
	switch {
	case fetched == 0 && failed > 0:
		return domain.Failed(s.category, fmt.Sprintf("all feeds unreachable: %v", lastErr))
	case failed > 0:
		return domain.FetchResult{Category: s.category, Entries: entries, Status: domain.StatusPartial,
			Reason: fmt.Sprintf("%d of %d feeds unreachable", failed, failed+fetched)}
	default:
		return domain.FetchResult{Category: s.category, Entries: entries, Status: domain.StatusOK}
	}
}

func (s *RSSSource) collectEntries(feed *gofeed.Feed, url string, group Group) []domain.RawEntry {
	fallback := sourceNameFromURL(url)
	entries := make([]domain.RawEntry, 0, s.maxItems)
	for _, item := range feed.Items {
		if len(entries) >= s.maxItems {
			break
		}
		ts, ok := entryTime(item)
		if !ok || !s.fresh(ts, group.Window) {
			continue
		}
		if !matchesKeywords(item, group.Keywords) {
			continue
		}
		if excluded(item.Title, group.Exclude) {
			continue
		}
		entries = append(entries, domain.RawEntry{
			Title:     strings.TrimSpace(item.Title),
			Body:      strings.TrimSpace(item.Description),
			Link:      strings.TrimSpace(item.Link),
			Published: publishedText(item),
			Source:    entrySource(item.Title, url, fallback),
		})
	}
	return entries
}

func (s *RSSSource) fresh(ts time.Time, window Window) bool {
	now := s.now().UTC()
	day := ts.UTC().Truncate(24 * time.Hour)
	today := now.Truncate(24 * time.Hour)
	if day.Equal(today) {
		return true
	}
	if window == WindowTodayOrYesterday {
		return day.Equal(today.Add(-24 * time.Hour))
	}
	return false
}

func matchesKeywords(item *gofeed.Item, keywords []string) bool {
	if len(keywords) == 0 {
		return true
	}
	title := strings.ToLower(item.Title)
	body := strings.ToLower(item.Description)
	if body == "" {
		body = title
	}
	for _, kw := range keywords {
		if strings.Contains(title, kw) || strings.Contains(body, kw) {
			return true
		}
	}
	return false
}

func excluded(title string, terms []string) bool {
	lower := strings.ToLower(title)
	for _, term := range terms {
		if strings.Contains(lower, term) {
			return true
		}
	}
	return false
}

func (s *RSSSource) debug(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
