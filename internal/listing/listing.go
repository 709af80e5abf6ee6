// Package listing derives the visible, ordered view of a content list from
// a search query, selected tags and a sort key.
package listing

import (
	"cmp"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dustin/go-humanize"

	"github.com/Zachkp/zach-dev/internal/content"
)

// Record is any content kind that embeds content.Item.
type Record interface {
	Base() content.Item
}

// SortKey selects the ordering of the visible list.
type SortKey string

const (
	// SortNone keeps source order.
	SortNone     SortKey = ""
	SortNewest   SortKey = "newest"
	SortOldest   SortKey = "oldest"
	SortShortest SortKey = "shortest"
	SortLongest  SortKey = "longest"
)

// ParseSort validates a sort key from user input.
func ParseSort(s string) (SortKey, bool) {
	switch k := SortKey(strings.ToLower(strings.TrimSpace(s))); k {
	case SortNone, SortNewest, SortOldest, SortShortest, SortLongest:
		return k, true
	}
	return SortNone, false
}

// Query is the full filter and sort state.
type Query struct {
	Search string
	Tags   []string
	Sort   SortKey
}

// IsZero reports whether q leaves the list untouched.
func (q Query) IsZero() bool {
	return strings.TrimSpace(q.Search) == "" && len(q.Tags) == 0 && q.Sort == SortNone
}

// Apply returns the items matching both the search and the tag filter,
// ordered by q.Sort. The input is not modified and the result is never nil.
func Apply[T Record](items []T, q Query) []T {
	needle := strings.ToLower(strings.TrimSpace(q.Search))
	out := make([]T, 0, len(items))
	for _, it := range items {
		base := it.Base()
		if MatchesSearch(base, needle) && HasAnyTag(base, q.Tags) {
			out = append(out, it)
		}
	}
	SortStable(out, q.Sort)
	return out
}

// MatchesSearch reports whether the lower-cased needle occurs in the title,
// the body or any tag. An empty needle matches everything.
func MatchesSearch(it content.Item, needle string) bool {
	if needle == "" {
		return true
	}
	if strings.Contains(strings.ToLower(it.Title), needle) || strings.Contains(strings.ToLower(it.Body), needle) {
		return true
	}
	for _, tag := range it.Tags {
		if strings.Contains(strings.ToLower(tag), needle) {
			return true
		}
	}
	return false
}

// HasAnyTag reports whether it carries at least one of selected.
// No selection matches everything.
func HasAnyTag(it content.Item, selected []string) bool {
	if len(selected) == 0 {
		return true
	}
	for _, tag := range it.Tags {
		if slices.Contains(selected, tag) {
			return true
		}
	}
	return false
}

// SortStable orders items in place by key; ties keep their relative order.
// Items whose publishedAt does not parse go after every dated item for
// both date orders.
func SortStable[T Record](items []T, key SortKey) {
	switch key {
	case SortNewest, SortOldest:
		desc := key == SortNewest
		slices.SortStableFunc(items, func(a, b T) int {
			ta, okA := ParseTime(a.Base().PublishedAt)
			tb, okB := ParseTime(b.Base().PublishedAt)
			switch {
			case !okA && !okB:
				return 0
			case !okA:
				return 1
			case !okB:
				return -1
			case desc:
				return tb.Compare(ta)
			default:
				return ta.Compare(tb)
			}
		})
	case SortShortest, SortLongest:
		sign := 1
		if key == SortLongest {
			sign = -1
		}
		slices.SortStableFunc(items, func(a, b T) int {
			return sign * cmp.Compare(bodyLen(a), bodyLen(b))
		})
	}
}

func bodyLen[T Record](it T) int {
	return utf8.RuneCountInString(it.Base().Body)
}

var timeLayouts = []string{time.RFC3339Nano, time.DateOnly}

// ParseTime parses an upstream timestamp: RFC 3339 or a bare date.
func ParseTime(s string) (time.Time, bool) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Tags lists distinct tags in first-seen order.
func Tags[T Record](items []T) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, it := range items {
		for _, tag := range it.Base().Tags {
			if _, ok := seen[tag]; ok {
				continue
			}
			seen[tag] = struct{}{}
			out = append(out, tag)
		}
	}
	return out
}

// RelativeTime renders publishedAt relative to now ("3 days ago").
// Unparseable input yields "".
func RelativeTime(publishedAt string, now time.Time) string {
	t, ok := ParseTime(publishedAt)
	if !ok {
		return ""
	}
	return humanize.RelTime(t, now, "ago", "from now")
}
