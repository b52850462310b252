package dedup

import (
	"testing"
	"time"

	"IntelDigest/internal/domain"
	"IntelDigest/internal/normalize"
)

func mustItem(t *testing.T, title, link, published string) domain.Item {
	t.Helper()
	item, ok := normalize.Normalize(domain.CategoryEnergy, domain.RawEntry{
		Title:     title,
		Link:      link,
		Published: published,
	})
	if !ok {
		t.Fatalf("entry %q unexpectedly dropped", title)
	}
	return item
}

func TestDeduplicateMergesIdenticalLinks(t *testing.T) {
	t.Parallel()

	items := []domain.Item{
		mustItem(t, "Oil output cut announced", "https://example.com/oil?ref=a", ""),
		mustItem(t, "OPEC statement on output", "https://example.com/oil?ref=b", "Mon, 02 Jan 2006 15:04:05 MST"),
		mustItem(t, "Unrelated grid story", "https://example.com/grid", ""),
	}

	got := Deduplicate(items)
	if len(got) != 2 {
		t.Fatalf("expected 2 survivors, got %d", len(got))
	}
	// The timestamped duplicate wins, in the first duplicate's slot.
	if got[0].PublishedAt.IsZero() {
		t.Fatal("expected the survivor with a parseable timestamp")
	}
	if got[1].Link != "https://example.com/grid" {
		t.Fatalf("survivor order disturbed: %s", got[1].Link)
	}
}

func TestDeduplicateFirstWinsWhenNeitherDated(t *testing.T) {
	t.Parallel()

	first := mustItem(t, "First report", "https://example.com/story", "")
	second := mustItem(t, "Second report", "https://example.com/story#frag", "")

	got := Deduplicate([]domain.Item{first, second})
	if len(got) != 1 {
		t.Fatalf("expected 1 survivor, got %d", len(got))
	}
	if got[0].Title != "First report" {
		t.Fatalf("expected first encountered to win, got %q", got[0].Title)
	}
}

func TestDeduplicateTitleIdentityWithoutSharedLink(t *testing.T) {
	t.Parallel()

	// Items whose links fail normalization fall back to title identity.
	a := domain.Item{Title: "Fed holds rates steady", Link: "not a url"}
	a.IdentityKey = normalize.IdentityKey(a)
	b := domain.Item{Title: "FED HOLDS RATES STEADY!", Link: "also-not-a-url"}
	b.IdentityKey = normalize.IdentityKey(b)

	got := Deduplicate([]domain.Item{a, b})
	if len(got) != 1 {
		t.Fatalf("expected title-identity merge, got %d items", len(got))
	}
}

func TestDeduplicateIdempotent(t *testing.T) {
	t.Parallel()

	items := []domain.Item{
		mustItem(t, "A", "https://example.com/a", "2024-03-01"),
		mustItem(t, "B", "https://example.com/b", ""),
		mustItem(t, "A again", "https://example.com/a", ""),
		mustItem(t, "C", "https://example.com/c", "2024-03-01"),
	}

	once := Deduplicate(items)
	twice := Deduplicate(once)
	if len(once) != len(twice) {
		t.Fatalf("dedup not idempotent: %d vs %d", len(once), len(twice))
	}
	for i := range once {
		if once[i].IdentityKey != twice[i].IdentityKey {
			t.Fatalf("order changed on second pass at index %d", i)
		}
	}
}

func TestDeduplicateTimestampTieBreakScenario(t *testing.T) {
	t.Parallel()

	// Three energy entries, two sharing a link, exactly one of those dated.
	dated := mustItem(t, "Grid strain eases", "https://example.com/strain", "2024-06-05")
	undated := mustItem(t, "Grid strain easing", "https://example.com/strain?src=x", "")
	other := mustItem(t, "New interconnect approved", "https://example.com/interconnect", "")

	got := Deduplicate([]domain.Item{undated, dated, other})
	if len(got) != 2 {
		t.Fatalf("expected exactly 2 items, got %d", len(got))
	}
	want := time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC)
	if !got[0].PublishedAt.Equal(want) {
		t.Fatalf("expected dated survivor, got %v", got[0].PublishedAt)
	}
}
