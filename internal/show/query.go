package show

// StatusSnapshot is the read-only view of a RunState returned by
// GetStatusSnapshot — what's playing right now, what's stacked beneath it,
// and how many occurrences are still waiting in the wings.
type StatusSnapshot struct {
	NowMs           int64             `json:"now_ms"`
	Playing         *PlayingSnapshot  `json:"playing,omitempty"`
	Stack           []PlayingSnapshot `json:"stack"` // top-first; Stack[0] == *Playing when non-empty
	StackDepth      int               `json:"stack_depth"`
	HeapLen         int               `json:"heap_len"`
	FutureLen       int               `json:"future_len"`
	PendingWarnings int               `json:"pending_warnings"`
}

// PlayingSnapshot describes one stacked occurrence's cursor position,
// without exposing the cursor type itself.
type PlayingSnapshot struct {
	InstanceID string `json:"instance_id"`
	ItemID     string `json:"item_id"`
	ScheduleID string `json:"schedule_id,omitempty"`
	RequestID  string `json:"request_id,omitempty"`
	Phase      string `json:"phase"`
	Index      int    `json:"index"`
	OffsetMs   int64  `json:"offset_ms"`
	Suspended  bool   `json:"suspended"`
}

// GetStatusSnapshot reports RunState's current position without mutating
// anything.
func GetStatusSnapshot(rs *RunState) StatusSnapshot {
	snap := StatusSnapshot{
		NowMs:      rs.Now,
		StackDepth: len(rs.stack),
		HeapLen:    rs.heap.Len(),
		FutureLen:  len(rs.future),
	}
	if rs.Sink != nil {
		snap.PendingWarnings = rs.Sink.Len()
	}
	for i := len(rs.stack) - 1; i >= 0; i-- {
		se := rs.stack[i]
		snap.Stack = append(snap.Stack, PlayingSnapshot{
			InstanceID: se.InstanceID,
			ItemID:     se.Item.ItemID,
			ScheduleID: se.Item.ScheduleID,
			RequestID:  se.Item.RequestID,
			Phase:      se.Cursor.Phase.String(),
			Index:      se.Cursor.Index,
			OffsetMs:   se.Cursor.OffsetInto,
			Suspended:  se.Cursor.Suspended,
		})
	}
	if len(snap.Stack) > 0 {
		snap.Playing = &snap.Stack[0]
	}
	return snap
}

// UpcomingEntry is one row of the combined upcoming-occurrences listing.
// Interactive (request-originated) items are listed in the same slice as
// genuine future-queue schedule occurrences rather than a separate one — a
// wire-shape quirk carried over from the
// source's get_upcoming_items, not something a from-scratch design would
// choose, but changing it would be a behavior change this rework avoids.
type UpcomingEntry struct {
	ItemID       string `json:"item_id"`
	ScheduleID   string `json:"schedule_id,omitempty"`
	RequestID    string `json:"request_id,omitempty"`
	PriorityTier int    `json:"priority_tier"`
	SchedStartMs int64  `json:"sched_start_ms"`
	SchedEndMs   int64  `json:"sched_end_ms"`
	HasPre       bool   `json:"has_pre,omitempty"`
	HasPost      bool   `json:"has_post,omitempty"`
}

// GetUpcomingItems lists every occurrence currently sitting in the future
// queue or the eligible-now heap, soonest first, including interactive
// commands that haven't yet reached the stack.
func GetUpcomingItems(rs *RunState) []UpcomingEntry {
	out := make([]UpcomingEntry, 0, len(rs.future)+rs.heap.Len())
	for _, it := range rs.future {
		out = append(out, upcomingEntryFromItem(it))
	}
	for _, it := range rs.heap.Items() {
		out = append(out, upcomingEntryFromItem(it))
	}
	for i := 1; i < len(out); i++ {
		j := i
		for j > 0 && out[j-1].SchedStartMs > out[j].SchedStartMs {
			out[j-1], out[j] = out[j], out[j-1]
			j--
		}
	}
	return out
}

func upcomingEntryFromItem(it *PlaybackItem) UpcomingEntry {
	return UpcomingEntry{
		ItemID:       it.ItemID,
		ScheduleID:   it.ScheduleID,
		RequestID:    it.RequestID,
		PriorityTier: it.PriorityTier,
		SchedStartMs: it.SchedStartMs,
		SchedEndMs:   it.SchedEndMs,
		HasPre:       it.HasPre,
		HasPost:      it.HasPost,
	}
}

// GetUpcomingActions is the prefetch demand signal: the PlayActions the near
// future would need, simulated on throwaway cursor copies so live state is
// never touched. It covers, in order: the stack top-first (each walked
// readaheadMs past now from wherever it currently sits, suspended or not),
// every heap entry (fresh cursor starting at now), and every future-queue
// occurrence starting within schedaheadMs (fresh cursor at its own start) —
// interactive queue entries included, since they share the future queue with
// schedule occurrences here. maxItems caps the total actions returned;
// terminal end-markers are filtered out, a prefetcher has no use for them.
func GetUpcomingActions(rs *RunState, readaheadMs, schedaheadMs int64, maxItems int) []PlayAction {
	if maxItems <= 0 {
		maxItems = 64
	}
	var out []PlayAction

	collect := func(sim PlaybackStateEntry, runTo int64) {
		if len(out) >= maxItems {
			return
		}
		sim.Suspended = false
		for _, a := range sim.AdvanceToTime(runTo, nil, 0) {
			if a.End {
				continue
			}
			if len(out) >= maxItems {
				return
			}
			out = append(out, a)
		}
	}

	for i := len(rs.stack) - 1; i >= 0; i-- {
		collect(*rs.stack[i].Cursor, rs.Now+readaheadMs)
	}
	for _, it := range rs.heap.Items() {
		collect(*NewPlaybackStateEntry(it, rs.Now), rs.Now+readaheadMs)
	}
	for _, it := range rs.future {
		if it.SchedStartMs > rs.Now+schedaheadMs {
			break
		}
		collect(*NewPlaybackStateEntry(it, it.SchedStartMs), it.SchedStartMs+readaheadMs)
	}
	return out
}

// ReadOutScheduleUntil previews the PlaybackLogDetail stream RunUntil(at)
// would produce without mutating rs, by running the same stepping logic
// against a shallow clone of its containers. Cursor state is independent
// per clone (a fresh *PlaybackStateEntry per stack entry) so advancing the
// preview can never leak progress back into the live RunState; the
// underlying PlaybackItem values are immutable once built and so are safely
// shared rather than copied.
func ReadOutScheduleUntil(rs *RunState, at int64) ([]PlaybackLogDetail, []PlayAction) {
	clone := &RunState{
		Lib:         rs.Lib,
		Sink:        rs.Sink,
		Now:         rs.Now,
		future:      append([]*PlaybackItem(nil), rs.future...),
		heap:        &priorityHeap{items: append([]*PlaybackItem(nil), rs.heap.items...)},
		byID:        make(map[string]*stackEntry, len(rs.byID)),
		byRequestID: make(map[string]*stackEntry, len(rs.byRequestID)),
		LogLimit:    rs.LogLimit,
	}
	clone.stack = make([]*stackEntry, len(rs.stack))
	for i, se := range rs.stack {
		cursorCopy := *se.Cursor
		clone.stack[i] = &stackEntry{InstanceID: se.InstanceID, Item: se.Item, Cursor: &cursorCopy}
		clone.byID[se.InstanceID] = clone.stack[i]
		if se.Item.RequestID != "" {
			clone.byRequestID[se.Item.RequestID] = clone.stack[i]
		}
	}
	return clone.RunUntil(at)
}
