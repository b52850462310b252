package source

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"IntelDigest/internal/domain"
)

func TestFiguresSourceMirrorRotation(t *testing.T) {
	t.Parallel()

	dead := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(dead.Close)
	alive := serveRSS(t, rssDocument(
		rssItem("elonmusk: Starship flight window confirmed", "https://nitter.net/elonmusk/status/1", testNow.Add(-time.Hour)),
		rssItem("elonmusk: Old post", "https://nitter.net/elonmusk/status/2", testNow.Add(-48*time.Hour)),
	))

	src := NewFiguresSource(
		map[string][]string{"elonmusk": {dead.URL, alive.URL}},
		nil, NewFeedFetcher(alive.Client()), alive.Client(), nil)
	src.now = func() time.Time { return testNow }

	res := src.Fetch(context.Background())
	if res.Status != domain.StatusOK {
		t.Fatalf("status = %v (%s), want ok", res.Status, res.Reason)
	}
	if len(res.Entries) != 1 {
		t.Fatalf("entries = %d, want only today's post", len(res.Entries))
	}
	got := res.Entries[0]
	if got.Title != "Starship flight window confirmed" {
		t.Errorf("title = %q, want author prefix stripped", got.Title)
	}
	if got.Source != "X / Elon Musk" {
		t.Errorf("source = %q", got.Source)
	}
}

func TestFiguresSourceFailedWhenAllMirrorsDown(t *testing.T) {
	t.Parallel()

	dead := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(dead.Close)

	src := NewFiguresSource(
		map[string][]string{"realDonaldTrump": {dead.URL}},
		nil, NewFeedFetcher(dead.Client()), dead.Client(), nil)
	src.now = func() time.Time { return testNow }

	res := src.Fetch(context.Background())
	if res.Status != domain.StatusFailed {
		t.Fatalf("status = %v, want failed", res.Status)
	}
	if res.Reason == "" {
		t.Error("reason empty, want failure detail")
	}
}

func TestFiguresSourceScrapesTimeline(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body>
<article class="timeline-item">
  <div class="tweet-content">Tariff announcement coming at noon</div>
  <a href="/realDonaldTrump/status/42">permalink</a>
</article>
<article class="timeline-item">
  <div class="tweet-content"></div>
</article>
</body></html>`)
	}))
	t.Cleanup(srv.Close)

	src := NewFiguresSource(nil, []string{srv.URL + "/realDonaldTrump"}, NewFeedFetcher(srv.Client()), srv.Client(), nil)
	src.now = func() time.Time { return testNow }

	res := src.Fetch(context.Background())
	if res.Status != domain.StatusOK {
		t.Fatalf("status = %v (%s), want ok", res.Status, res.Reason)
	}
	if len(res.Entries) != 1 {
		t.Fatalf("entries = %d, want the one non-empty post", len(res.Entries))
	}
	got := res.Entries[0]
	if got.Title != "Tariff announcement coming at noon" {
		t.Errorf("title = %q", got.Title)
	}
	want := srv.URL + "/realDonaldTrump/status/42"
	if got.Link != want {
		t.Errorf("link = %q, want %q", got.Link, want)
	}
	if got.Source != "X / Donald Trump" {
		t.Errorf("source = %q", got.Source)
	}
}

func TestFiguresSourcePartialWhenOneAccountDown(t *testing.T) {
	t.Parallel()

	dead := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(dead.Close)
	alive := serveRSS(t, rssDocument(
		rssItem("elonmusk: Shipping update", "https://nitter.net/elonmusk/status/9", testNow.Add(-time.Hour)),
	))

	src := NewFiguresSource(
		map[string][]string{
			"elonmusk":        {alive.URL},
			"realDonaldTrump": {dead.URL},
		},
		nil, NewFeedFetcher(alive.Client()), alive.Client(), nil)
	src.now = func() time.Time { return testNow }

	res := src.Fetch(context.Background())
	if res.Status != domain.StatusPartial {
		t.Fatalf("status = %v, want partial", res.Status)
	}
	if len(res.Entries) != 1 {
		t.Errorf("entries = %d, want the reachable account's post", len(res.Entries))
	}
}

func TestStripAuthorPrefix(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in      string
		account string
		want    string
	}{
		{"elonmusk: Starship update", "elonmusk", "Starship update"},
		{"@elonmusk: Starship update", "elonmusk", "Starship update"},
		{"R to @elonmusk: replying here", "elonmusk", "replying here"},
		{"No prefix here", "elonmusk", "No prefix here"},
		{"Breaking: tariff news", "realDonaldTrump", "Breaking: tariff news"},
	}
	for _, tc := range cases {
		if got := stripAuthorPrefix(tc.in, tc.account); got != tc.want {
			t.Errorf("stripAuthorPrefix(%q, %q) = %q, want %q", tc.in, tc.account, got, tc.want)
		}
	}
}

func TestFiguresSourceKeepsColonsInsidePosts(t *testing.T) {
	t.Parallel()

	alive := serveRSS(t, rssDocument(
		rssItem("Breaking: tariff announcement at noon", "https://nitter.net/realDonaldTrump/status/7", testNow.Add(-time.Hour)),
	))

	src := NewFiguresSource(
		map[string][]string{"realDonaldTrump": {alive.URL}},
		nil, NewFeedFetcher(alive.Client()), alive.Client(), nil)
	src.now = func() time.Time { return testNow }

	res := src.Fetch(context.Background())
	if len(res.Entries) != 1 {
		t.Fatalf("entries = %d", len(res.Entries))
	}
	if res.Entries[0].Title != "Breaking: tariff announcement at noon" {
		t.Errorf("title = %q, want colon kept when no handle prefix", res.Entries[0].Title)
	}
}

func TestFiguresSourceAccountOrderIsStable(t *testing.T) {
	t.Parallel()

	first := serveRSS(t, rssDocument(
		rssItem("elonmusk: Post from the first account", "https://nitter.net/elonmusk/status/1", testNow.Add(-time.Hour)),
	))
	second := serveRSS(t, rssDocument(
		rssItem("realDonaldTrump: Post from the second account", "https://nitter.net/realDonaldTrump/status/2", testNow.Add(-time.Hour)),
	))

	mirrors := map[string][]string{
		"elonmusk":        {first.URL},
		"realDonaldTrump": {second.URL},
	}
	for i := 0; i < 5; i++ {
		src := NewFiguresSource(mirrors, nil, NewFeedFetcher(first.Client()), first.Client(), nil)
		src.now = func() time.Time { return testNow }

		res := src.Fetch(context.Background())
		if len(res.Entries) != 2 {
			t.Fatalf("entries = %d, want 2", len(res.Entries))
		}
		if res.Entries[0].Source != "X / Elon Musk" {
			t.Fatalf("first entry from %q, want sorted account order", res.Entries[0].Source)
		}
	}
}
