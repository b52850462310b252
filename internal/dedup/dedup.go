package dedup

import "IntelDigest/internal/domain"

// Deduplicate resolves identity across one category's items. Two items are the
// same story when their identity keys match exactly. The survivor is the item
// carrying a parseable timestamp when only one of the pair has it; otherwise
// the first encountered wins. Relative order of survivors is preserved, which
// also makes the operation idempotent.
//
// The caller applies this per category; cross-category duplicates are never
// merged because the eight categories are mutually exclusive.
func Deduplicate(items []domain.Item) []domain.Item {
	if len(items) < 2 {
		return items
	}

	position := make(map[string]int, len(items))
	out := make([]domain.Item, 0, len(items))

	for _, item := range items {
		key := item.IdentityKey
		idx, seen := position[key]
		if !seen {
			position[key] = len(out)
			out = append(out, item)
			continue
		}
		// Upgrade in place: a timestamped duplicate replaces an undated
		// survivor without disturbing its slot.
		if out[idx].PublishedAt.IsZero() && !item.PublishedAt.IsZero() {
			out[idx] = item
		}
	}

	return out
}
