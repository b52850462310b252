package source

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"
)

// Browser-style header; several upstream feeds reject default Go clients.
const browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
	"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// FeedFetcher wraps a shared gofeed parser with the HTTP client and headers
// all RSS-backed adapters use. One attempt per URL; rate limits and timeouts
// surface as errors the adapter converts to its own status.
type FeedFetcher struct {
	parser *gofeed.Parser
}

// NewFeedFetcher wires a parser over the given client; a nil client gets a
// 20-second timeout default.
func NewFeedFetcher(client *http.Client) *FeedFetcher {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	parser := gofeed.NewParser()
	parser.Client = client
	parser.UserAgent = browserUserAgent
	return &FeedFetcher{parser: parser}
}

// Fetch pulls and parses one feed URL.
func (f *FeedFetcher) Fetch(ctx context.Context, url string) (*gofeed.Feed, error) {
	feed, err := f.parser.ParseURLWithContext(url, ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch feed %s: %w", url, err)
	}
	return feed, nil
}

// FetchFirst rotates among redundant mirror URLs and accepts the first feed
// that responds with any entries. Used for categories whose single endpoints
// are known-unreliable.
func (f *FeedFetcher) FetchFirst(ctx context.Context, urls []string) (*gofeed.Feed, string, error) {
	var lastErr error
	for _, url := range urls {
		feed, err := f.Fetch(ctx, url)
		if err != nil {
			lastErr = err
			continue
		}
		if len(feed.Items) > 0 {
			return feed, url, nil
		}
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("no mirror returned entries")
	}
	return nil, "", lastErr
}

// publishedText renders the entry timestamp the normalizer will re-parse.
// Prefer the parser's already-parsed instant over raw source text.
func publishedText(item *gofeed.Item) string {
	if item.PublishedParsed != nil {
		return item.PublishedParsed.UTC().Format(time.RFC3339)
	}
	return item.Published
}

// entryTime extracts the best-effort instant used by freshness filtering.
func entryTime(item *gofeed.Item) (time.Time, bool) {
	if item.PublishedParsed != nil {
		return item.PublishedParsed.UTC(), true
	}
	return time.Time{}, false
}
