package listing

import "slices"

// closed is the open index when no detail view is shown.
const closed = -1

// Browser holds the state of one list view: the base items, the current
// query, the derived visible list and which visible item is open.
// It is not safe for concurrent use.
type Browser[T Record] struct {
	items   []T
	query   Query
	visible []T
	open    int
}

func NewBrowser[T Record](items []T) *Browser[T] {
	b := &Browser[T]{items: items, open: closed}
	b.recompute()
	return b
}

// SetItems replaces the base list.
func (b *Browser[T]) SetItems(items []T) {
	b.items = items
	b.recompute()
}

func (b *Browser[T]) SetSearch(s string) {
	b.query.Search = s
	b.recompute()
}

func (b *Browser[T]) SetTags(tags []string) {
	b.query.Tags = slices.Clone(tags)
	b.recompute()
}

// ToggleTag adds tag to the selection, or removes it if already selected.
func (b *Browser[T]) ToggleTag(tag string) {
	if i := slices.Index(b.query.Tags, tag); i >= 0 {
		b.query.Tags = slices.Delete(slices.Clone(b.query.Tags), i, i+1)
	} else {
		b.query.Tags = append(b.query.Tags, tag)
	}
	b.recompute()
}

func (b *Browser[T]) SetSort(key SortKey) {
	b.query.Sort = key
	b.recompute()
}

func (b *Browser[T]) Query() Query {
	q := b.query
	q.Tags = slices.Clone(q.Tags)
	return q
}

// Visible returns the filtered, sorted list.
func (b *Browser[T]) Visible() []T { return b.visible }

// Open shows the detail view for visible index i.
func (b *Browser[T]) Open(i int) bool {
	if i < 0 || i >= len(b.visible) {
		return false
	}
	b.open = i
	return true
}

func (b *Browser[T]) Close() { b.open = closed }

// OpenIndex is the open position in Visible, or -1.
func (b *Browser[T]) OpenIndex() int { return b.open }

// Current returns the open item by position in the visible list.
func (b *Browser[T]) Current() (T, bool) {
	var zero T
	if b.open == closed {
		return zero, false
	}
	return b.visible[b.open], true
}

func (b *Browser[T]) HasNext() bool { return b.open != closed && b.open < len(b.visible)-1 }
func (b *Browser[T]) HasPrev() bool { return b.open > 0 }

// Next moves to the following visible item. It does nothing at the end.
func (b *Browser[T]) Next() bool {
	if !b.HasNext() {
		return false
	}
	b.open++
	return true
}

// Prev moves to the preceding visible item. It does nothing at the start.
func (b *Browser[T]) Prev() bool {
	if !b.HasPrev() {
		return false
	}
	b.open--
	return true
}

// recompute rebuilds the visible list. The open index is kept as a
// position; if it no longer exists the detail view closes.
func (b *Browser[T]) recompute() {
	b.visible = Apply(b.items, b.query)
	if b.open >= len(b.visible) {
		b.open = closed
	}
}
