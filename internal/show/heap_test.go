package show

import (
	"testing"

	"github.com/matryer/is"
)

func TestPriorityHeapOrdersByTierThenTime(t *testing.T) {
	is := is.New(t)
	h := newPriorityHeap()
	h.Insert(&PlaybackItem{ItemID: "low-tier-later", PriorityTier: 3, TimeBasedPri: 500})
	h.Insert(&PlaybackItem{ItemID: "high-tier", PriorityTier: 1, TimeBasedPri: 900})
	h.Insert(&PlaybackItem{ItemID: "low-tier-earlier", PriorityTier: 3, TimeBasedPri: 100})

	is.Equal(h.Top().ItemID, "high-tier")
	is.Equal(h.DeleteTop().ItemID, "high-tier")
	is.Equal(h.DeleteTop().ItemID, "low-tier-earlier")
	is.Equal(h.DeleteTop().ItemID, "low-tier-later")
	is.Equal(h.Len(), 0)
}

func TestPriorityHeapCutOffPreviousNegatesTimePri(t *testing.T) {
	is := is.New(t)
	h := newPriorityHeap()
	h.Insert(&PlaybackItem{ItemID: "normal", PriorityTier: 1, TimeBasedPri: 100})
	h.Insert(&PlaybackItem{ItemID: "cutoff", PriorityTier: 1, TimeBasedPri: 100, CutOffPrevious: true})

	// Same tier; the cut-off item compares on -100 against the other's 100,
	// so it sorts first.
	first := h.DeleteTop().ItemID
	second := h.DeleteTop().ItemID
	is.Equal(first, "cutoff")
	is.Equal(second, "normal")
}

func TestPriorityHeapDeleteAtArbitraryIndex(t *testing.T) {
	is := is.New(t)
	h := newPriorityHeap()
	for i, id := range []string{"x1", "x2", "x3", "x4", "x5"} {
		h.Insert(&PlaybackItem{ItemID: id, PriorityTier: 5, TimeBasedPri: int64(i)})
	}
	idx := h.FindIndex(func(it *PlaybackItem) bool { return it.ItemID == "x3" })
	is.True(idx >= 0)

	removed := h.DeleteAt(idx)
	is.Equal(removed.ItemID, "x3")
	is.Equal(h.Len(), 4)
	is.Equal(h.FindIndex(func(it *PlaybackItem) bool { return it.ItemID == "x3" }), -1)

	// remaining items must still come out in non-decreasing (tier, pri) order
	var last *PlaybackItem
	for h.Len() > 0 {
		cur := h.DeleteTop()
		if last != nil {
			is.True(!less(cur, last))
		}
		last = cur
	}
}

func TestPriorityHeapEmpty(t *testing.T) {
	is := is.New(t)
	h := newPriorityHeap()
	is.True(h.Top() == nil)
	is.True(h.DeleteTop() == nil)
	is.Equal(h.FindIndex(func(*PlaybackItem) bool { return true }), -1)
}
