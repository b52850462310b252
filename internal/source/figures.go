package source

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"IntelDigest/internal/domain"
	"IntelDigest/internal/ports"
)

const maxPostsPerAccount = 5

// FiguresSource collects public figures' statements from Nitter-style RSS
// mirrors, with optional scraping of xcancel/Nitter web timelines for
// accounts that have no working mirror. Each account's mirror list is
// redundant: the first mirror that responds wins and later mirrors are not
// contacted.
type FiguresSource struct {
	mirrors map[string][]string
	pages   []string
	fetcher *FeedFetcher
	client  *http.Client
	logger  *slog.Logger
	now     func() time.Time
}

var _ ports.Source = (*FiguresSource)(nil)

// NewFiguresSource wires mirror lists and scraped timeline pages.
func NewFiguresSource(mirrors map[string][]string, pages []string, fetcher *FeedFetcher, client *http.Client, logger *slog.Logger) *FiguresSource {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &FiguresSource{
		mirrors: mirrors,
		pages:   pages,
		fetcher: fetcher,
		client:  client,
		logger:  logger,
		now:     time.Now,
	}
}

// Category identifies the bucket this adapter feeds.
func (s *FiguresSource) Category() domain.Category {
	return domain.CategoryFigures
}

// Fetch gathers posts per account. Accounts and pages fail independently; a
// partial status means at least one of them produced nothing.
func (s *FiguresSource) Fetch(ctx context.Context) domain.FetchResult {
	var (
		entries  []domain.RawEntry
		attempts int
		failures int
		lastErr  error
	)

	// Sorted keys keep the category's entry order, and with it dedup's
	// first-encountered tie-break, stable across runs.
	accounts := make([]string, 0, len(s.mirrors))
	for account := range s.mirrors {
		accounts = append(accounts, account)
	}
	sort.Strings(accounts)

	for _, account := range accounts {
		attempts++
		posts, err := s.fetchAccount(ctx, account, s.mirrors[account])
		if err != nil {
			failures++
			lastErr = err
			s.debug("account mirrors exhausted", "account", account, "error", err)
			continue
		}
		entries = append(entries, posts...)
	}

	for _, page := range s.pages {
		attempts++
		posts, err := s.scrapeTimeline(ctx, page)
		if err != nil {
			failures++
			lastErr = err
			s.debug("timeline scrape failed", "url", page, "error", err)
			continue
		}
		entries = append(entries, posts...)
	}

	switch {
	case attempts == 0:
		return domain.FetchResult{Category: domain.CategoryFigures, Status: domain.StatusOK}
	case failures == attempts:
		return domain.Failed(domain.CategoryFigures, fmt.Sprintf("no account or page reachable: %v", lastErr))
	case failures > 0:
		return domain.FetchResult{Category: domain.CategoryFigures, Entries: entries, Status: domain.StatusPartial,
			Reason: fmt.Sprintf("%d of %d sources unreachable", failures, attempts)}
	default:
		return domain.FetchResult{Category: domain.CategoryFigures, Entries: entries, Status: domain.StatusOK}
	}
}

func (s *FiguresSource) fetchAccount(ctx context.Context, account string, urls []string) ([]domain.RawEntry, error) {
	feed, _, err := s.fetcher.FetchFirst(ctx, urls)
	if err != nil {
		return nil, err
	}

	sourceName := displayName(account)
	posts := make([]domain.RawEntry, 0, maxPostsPerAccount)
	for _, item := range feed.Items {
		if len(posts) >= maxPostsPerAccount {
			break
		}
		ts, ok := entryTime(item)
		if !ok || !sameUTCDay(ts, s.now()) {
			continue
		}
		text := stripAuthorPrefix(item.Title, account)
		posts = append(posts, domain.RawEntry{
			Title:     text,
			Body:      text,
			Link:      strings.TrimSpace(item.Link),
			Published: publishedText(item),
			Source:    sourceName,
		})
	}
	return posts, nil
}

// scrapeTimeline parses an xcancel/Nitter-style HTML timeline when the RSS
// mirrors are all down. Selector set matches what those frontends render.
func (s *FiguresSource) scrapeTimeline(ctx context.Context, pageURL string) ([]domain.RawEntry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", browserUserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request timeline: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("timeline returned %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse timeline: %w", err)
	}

	now := s.now().UTC().Format(time.RFC3339)
	source := timelineSource(pageURL)
	var posts []domain.RawEntry
	doc.Find("article.timeline-item, .timeline-item, article").EachWithBreak(func(i int, node *goquery.Selection) bool {
		text := strings.TrimSpace(node.Find(".tweet-content, .tweet-body, .content").First().Text())
		if text == "" {
			text = strings.TrimSpace(node.Text())
		}
		if len(text) < 3 {
			return true
		}
		link := statusLink(node, pageURL)
		if link == "" {
			link = pageURL
		}
		posts = append(posts, domain.RawEntry{
			Title:     text,
			Body:      text,
			Link:      link,
			Published: now,
			Source:    source,
		})
		return len(posts) < maxPostsPerAccount
	})

	return posts, nil
}

func (s *FiguresSource) debug(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}

func statusLink(node *goquery.Selection, base string) string {
	href, exists := node.Find(`a[href*="/status/"]`).First().Attr("href")
	if !exists || href == "" {
		return ""
	}
	if strings.HasPrefix(href, "http") {
		return href
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return baseURL.ResolveReference(ref).String()
}

// stripAuthorPrefix removes the "<handle>: " prefix Nitter prepends to post
// text. Only the known account handle is stripped; a colon inside the post
// itself stays.
func stripAuthorPrefix(title, account string) string {
	title = strings.TrimSpace(title)
	prefixes := []string{account + ":", "@" + account + ":", "R to @" + account + ":"}
	lower := strings.ToLower(title)
	for _, p := range prefixes {
		if strings.HasPrefix(lower, strings.ToLower(p)) {
			return strings.TrimSpace(title[len(p):])
		}
	}
	return title
}

func displayName(account string) string {
	lower := strings.ToLower(account)
	switch {
	case strings.Contains(lower, "elon") || strings.Contains(lower, "musk"):
		return "X / Elon Musk"
	case strings.Contains(lower, "trump") || strings.Contains(lower, "donald"):
		return "X / Donald Trump"
	default:
		return "X / " + account
	}
}

func timelineSource(pageURL string) string {
	u, err := url.Parse(pageURL)
	if err != nil || u.Host == "" {
		return "Web"
	}
	lower := strings.ToLower(pageURL)
	switch {
	case strings.Contains(lower, "elon") || strings.Contains(lower, "musk"):
		return "X / Elon Musk"
	case strings.Contains(lower, "trump") || strings.Contains(lower, "donald"):
		return "X / Donald Trump"
	default:
		return u.Host
	}
}

func sameUTCDay(ts, now time.Time) bool {
	return ts.UTC().Truncate(24 * time.Hour).Equal(now.UTC().Truncate(24 * time.Hour))
}
