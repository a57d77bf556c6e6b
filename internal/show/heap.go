package show

// priorityHeap is a hand-rolled binary min-heap over *PlaybackItem, keyed by
// (priority_tier ascending, then time_based_pri ascending — negated when the
// item cuts off whatever precedes it). container/heap.Interface is not used
// here: the scheduler needs delete-by-predicate (DeleteAt by arbitrary
// index, FindIndex by predicate) with bubble direction chosen by comparing the
// moved element to its *new* parent after a last-element swap, which doesn't
// map cleanly onto container/heap's fixed push/pop/fix vocabulary. A small
// slice-backed heap with explicit siftUp/siftDown is the straightforward fit
// and keeps the comparator semantics exact.
type priorityHeap struct {
	items []*PlaybackItem
}

func newPriorityHeap() *priorityHeap {
	return &priorityHeap{}
}

func (h *priorityHeap) Len() int { return len(h.items) }

// less orders items by priority_tier ascending, then
// (cut_off_previous ? -time_based_pri : time_based_pri) ascending.
func less(a, b *PlaybackItem) bool {
	if a.PriorityTier != b.PriorityTier {
		return a.PriorityTier < b.PriorityTier
	}
	av := a.TimeBasedPri
	if a.CutOffPrevious {
		av = -av
	}
	bv := b.TimeBasedPri
	if b.CutOffPrevious {
		bv = -bv
	}
	return av < bv
}

func (h *priorityHeap) Top() *PlaybackItem {
	if len(h.items) == 0 {
		return nil
	}
	return h.items[0]
}

func (h *priorityHeap) Insert(item *PlaybackItem) {
	h.items = append(h.items, item)
	h.siftUp(len(h.items) - 1)
}

func (h *priorityHeap) DeleteTop() *PlaybackItem {
	if len(h.items) == 0 {
		return nil
	}
	return h.DeleteAt(0)
}

// DeleteAt removes the element at index i, swapping in the last element and
// then bubbling it up or down depending on how it compares to its new
// parent.
func (h *priorityHeap) DeleteAt(i int) *PlaybackItem {
	n := len(h.items)
	if i < 0 || i >= n {
		return nil
	}
	removed := h.items[i]
	last := n - 1
	h.items[i] = h.items[last]
	h.items = h.items[:last]

	if i < len(h.items) {
		if i > 0 && less(h.items[i], h.items[parent(i)]) {
			h.siftUp(i)
		} else {
			h.siftDown(i)
		}
	}
	return removed
}

// FindIndex returns the index of the first element satisfying pred, or -1.
func (h *priorityHeap) FindIndex(pred func(*PlaybackItem) bool) int {
	for i, it := range h.items {
		if pred(it) {
			return i
		}
	}
	return -1
}

// Items returns the heap's backing slice directly, in heap (not sorted)
// order. Callers must not mutate the slice's length; used for diagnostic
// snapshots and the query surface's prefetch simulation.
func (h *priorityHeap) Items() []*PlaybackItem {
	return h.items
}

func parent(i int) int { return (i - 1) / 2 }
func left(i int) int   { return 2*i + 1 }
func right(i int) int  { return 2*i + 2 }

func (h *priorityHeap) siftUp(i int) {
	for i > 0 {
		p := parent(i)
		if !less(h.items[i], h.items[p]) {
			break
		}
		h.items[i], h.items[p] = h.items[p], h.items[i]
		i = p
	}
}

func (h *priorityHeap) siftDown(i int) {
	n := len(h.items)
	for {
		l, r := left(i), right(i)
		smallest := i
		if l < n && less(h.items[l], h.items[smallest]) {
			smallest = l
		}
		if r < n && less(h.items[r], h.items[smallest]) {
			smallest = r
		}
		if smallest == i {
			return
		}
		h.items[i], h.items[smallest] = h.items[smallest], h.items[i]
		i = smallest
	}
}
