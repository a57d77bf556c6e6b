package show

import "fmt"

// stackEntry pairs a materialized PlaybackItem with the cursor walking it,
// plus the instance id it was registered under (distinct from ItemID when
// the same schedule/command produces more than one live occurrence).
type stackEntry struct {
	InstanceID string
	Item       *PlaybackItem
	Cursor     *PlaybackStateEntry // nil while only queued in future/heap
}

// RunState is the whole live scheduler: the future queue of not-yet-eligible
// occurrences, the priority heap of eligible-now candidates, and the
// preemption stack of what's actually playing (top) and what's parked
// beneath it. This is a pure, single-threaded, cooperative state
// machine — callers serialize their own access, there is no internal
// locking here (contrast with the Libraries, which are read concurrently by
// the query surface and so stay mutex-guarded).
type RunState struct {
	Lib  *Libraries
	Sink *ErrSink
	Now  int64

	future []*PlaybackItem // sorted ascending by SchedStartMs
	heap   *priorityHeap
	stack  []*stackEntry // index 0 = bottom, last = currently playing

	byID        map[string]*stackEntry
	byRequestID map[string]*stackEntry // tracks an interactive item wherever it currently lives

	idSeq    int64
	LogLimit int

	// IterationCap overrides RunUntil's default 10*LogLimit+100 iteration
	// ceiling when set to a positive value; see RunUntil.
	IterationCap int

	// pending holds events produced by commands that mutate RunState outside
	// of RunUntil (StopAll, Pause, Resume) — those have no log of their own
	// to write into, so their events wait here until the next RunUntil call
	// picks them up and prepends them ahead of whatever it generates itself.
	pending []PlaybackLogDetail
}

func NewRunState(lib *Libraries, sink *ErrSink, logLimit int) *RunState {
	return &RunState{
		Lib:         lib,
		Sink:        sink,
		heap:        newPriorityHeap(),
		byID:        make(map[string]*stackEntry),
		byRequestID: make(map[string]*stackEntry),
		LogLimit:    logLimit,
	}
}

// SetUpSequences rebuilds the declarative libraries behind this RunState.
// The stack, heap, and future queue are left untouched: occurrences already
// materialized keep playing against the data they were built from, and only
// newly-materialized occurrences see the replacement records.
func (rs *RunState) SetUpSequences(seqs []*Sequence, playlists []*Playlist, schedules []*ScheduledPlaylist) {
	rs.Lib.SetUpSequences(seqs, playlists, schedules, rs.Sink)
}

// AddTimeRange scans every non-deleted schedule in the library and
// materializes each occurrence intersecting [fromMs, toMs).
// preferStartingNew marks the materialized items as cutting off
// whatever preceded them, so among equal-tier candidates the newest start
// wins the heap.
func (rs *RunState) AddTimeRange(fromMs, toMs int64, preferStartingNew bool) {
	for _, sp := range rs.Lib.Schedules.NonDeleted() {
		rs.addTimeRangeToSchedule(sp, fromMs, toMs, preferStartingNew)
	}
}

// AddTimeRangeToSchedule is the single-schedule variant of AddTimeRange,
// with preferStartingNew held at its default of true.
func (rs *RunState) AddTimeRangeToSchedule(sp *ScheduledPlaylist, fromMs, toMs int64) {
	rs.addTimeRangeToSchedule(sp, fromMs, toMs, true)
}

// addTimeRangeToSchedule materializes one PlaybackItem occurrence per day
// sp's from_time/to_time resolves to a non-empty window within
// [fromMs, toMs), queuing each into the future queue (or straight into the
// heap when the window is already underway). A day whose resolved
// end_ms <= start_ms matches no instant and is silently skipped.
func (rs *RunState) addTimeRangeToSchedule(sp *ScheduledPlaylist, fromMs, toMs int64, preferStartingNew bool) {
	if toMs <= fromMs {
		return
	}
	dayStart := fromMs - (fromMs % 86400000)
	for day := dayStart; day < toMs; day += 86400000 {
		spCopy := *sp
		spCopy.DateMs = day
		startMs, endMs, err := DeriveScheduleTimes(&spCopy)
		if err != nil {
			rs.Sink.Add(WarnMalformedTime, sp.ID, err.Error())
			continue
		}
		if endMs <= startMs {
			continue
		}
		if endMs <= fromMs || startMs >= toMs {
			continue
		}
		item, err := buildFromScheduleAt(&spCopy, startMs, endMs, rs.Lib, rs.Sink)
		if err != nil {
			rs.Sink.Add(WarnUnknownPlaylist, sp.ID, err.Error())
			continue
		}
		item.CutOffPrevious = preferStartingNew
		if startMs <= rs.Now && rs.Now < endMs {
			rs.heap.Insert(item)
			continue
		}
		rs.insertFuture(item)
	}
}

func (rs *RunState) insertFuture(item *PlaybackItem) {
	i := 0
	for i < len(rs.future) && rs.future[i].SchedStartMs <= item.SchedStartMs {
		i++
	}
	rs.future = append(rs.future, nil)
	copy(rs.future[i+1:], rs.future[i:])
	rs.future[i] = item
}

func (rs *RunState) promoteEligible(now int64) {
	for len(rs.future) > 0 && rs.future[0].SchedStartMs <= now {
		item := rs.future[0]
		rs.future = rs.future[1:]
		if item.RequestID != "" {
			// A different occurrence already live under this request id means
			// the promotion is a duplicate: drop it. The queue index has
			// already advanced past it, so a persistent collision cannot
			// stall the loop.
			if existing, ok := rs.byRequestID[item.RequestID]; ok && existing.Item != item {
				continue
			}
			rs.byRequestID[item.RequestID] = &stackEntry{Item: item}
		}
		rs.heap.Insert(item)
	}
}

// AddInteractiveCommand is the single entry point for every interactive
// verb. playsong/playplaylist (optionally against a schedule id)
// materialize a PlaybackItem and admit it; the remaining verbs mutate
// RunState directly or are pure pass-throughs with no scheduler-core effect.
func (rs *RunState) AddInteractiveCommand(cmd *InteractiveCommand, t int64) error {
	switch cmd.Verb {
	case CmdPlaySong, CmdPlayPlaylist:
		var item *PlaybackItem
		var err error
		if cmd.ScheduleID != "" {
			sp := rs.Lib.Schedules.Get(cmd.ScheduleID)
			if sp == nil {
				return fmt.Errorf("interactive command %s: schedule %s not found", cmd.RequestID, cmd.ScheduleID)
			}
			item, err = BuildPlaybackItemFromCommandSchedule(cmd, sp, t, rs.Lib, rs.Sink)
		} else {
			item, err = BuildPlaybackItemFromCommand(cmd, t, rs.Lib, rs.Sink)
		}
		if err != nil {
			return err
		}
		rs.admitItem(item, t)
		return nil
	case CmdDeleteRequest:
		rs.DeleteRequest(cmd.RequestID)
		return nil
	case CmdClearRequests:
		rs.ClearRequests()
		return nil
	case CmdStopNow:
		rs.StopAll(t, false)
		return nil
	case CmdStopGraceful:
		rs.StopAll(t, true)
		return nil
	case CmdPause:
		rs.Pause(t)
		return nil
	case CmdResume:
		rs.Resume(t)
		return nil
	default:
		// suppressoutput/activateoutput/setvolume/resetstats/reloadcontrollers/
		// resetplayback carry no scheduler-core state; they are surface
		// signals forwarded to external collaborators by the caller, not
		// handled here.
		return nil
	}
}

func (rs *RunState) admitItem(item *PlaybackItem, now int64) {
	if item.ItemType == ItemImmediate || item.SchedStartMs <= now {
		rs.heap.Insert(item)
	} else {
		rs.insertFuture(item)
	}
	if item.RequestID != "" {
		rs.byRequestID[item.RequestID] = &stackEntry{Item: item}
	}
}

// allocateInstanceID finds an unused key for a newly-pushed stack entry,
// starting from the item's own id and appending "#n" on collision. A
// collision simply loops back around to try the next suffix rather than
// being recorded anywhere — mirrors the source allocator, which has no
// bound on how many suffixes it will try.
func (rs *RunState) allocateInstanceID(base string) string {
	id := base
	for {
		if _, exists := rs.byID[id]; !exists {
			return id
		}
		rs.idSeq++
		id = fmt.Sprintf("%s#%d", base, rs.idSeq)
		continue
	}
}

// pushStack parks whatever is currently on top, then logs Schedule Started
// for the incoming item — after the suspend, so the log shows the outgoing
// occupant parked before its replacement starts — and pushes it. A preempted Scheduled/Queued occupant is
// suspended to resume later; a preempted Immediate one is stopped and
// dropped outright, since an immediate request has no schedule to come back
// to.
func (rs *RunState) pushStack(item *PlaybackItem, atMs int64, log *eventLog) {
	if len(rs.stack) > 0 {
		cur := rs.stack[len(rs.stack)-1]
		if cur.Item.ItemType == ItemImmediate {
			cur.Cursor.Stop(atMs, log, 0, false)
			rs.stack = rs.stack[:len(rs.stack)-1]
			delete(rs.byID, cur.InstanceID)
			if cur.Item.RequestID != "" {
				delete(rs.byRequestID, cur.Item.RequestID)
			}
		} else {
			cur.Cursor.Suspend(atMs, log, 1)
		}
	}
	appendScheduleEvent(log, 0, atMs, EventScheduleStarted, item)
	id := rs.allocateInstanceID(item.ItemID)
	se := &stackEntry{InstanceID: id, Item: item, Cursor: NewPlaybackStateEntry(item, atMs)}
	rs.stack = append(rs.stack, se)
	rs.byID[id] = se
	if item.RequestID != "" {
		rs.byRequestID[item.RequestID] = se
	}
}

// removeStackAt removes the stack entry at index i, resuming whatever is
// newly exposed at the top if i was the top.
func (rs *RunState) removeStackAt(i int, atMs int64, log *eventLog) {
	if i < 0 || i >= len(rs.stack) {
		return
	}
	wasTop := i == len(rs.stack)-1
	removed := rs.stack[i]
	rs.stack = append(rs.stack[:i], rs.stack[i+1:]...)
	delete(rs.byID, removed.InstanceID)
	if removed.Item.RequestID != "" {
		delete(rs.byRequestID, removed.Item.RequestID)
	}
	if wasTop && len(rs.stack) > 0 {
		rs.stack[len(rs.stack)-1].Cursor.Resume(atMs, log, 0)
	}
}

// DeleteRequest removes a single interactive occurrence wherever it
// currently lives. Every container is swept unconditionally rather than
// stopping at the first match — an item id in principle lives in exactly
// one place at a time, but the sweep costs nothing and matches the source's
// deleterequest, which carries no early-exit either.
func (rs *RunState) DeleteRequest(requestID string) bool {
	found := false
	for i := 0; i < len(rs.future); i++ {
		if rs.future[i].RequestID == requestID {
			rs.future = append(rs.future[:i], rs.future[i+1:]...)
			i--
			found = true
		}
	}
	if idx := rs.heap.FindIndex(func(it *PlaybackItem) bool { return it.RequestID == requestID }); idx >= 0 {
		rs.heap.DeleteAt(idx)
		found = true
	}
	for i := 0; i < len(rs.stack); i++ {
		if rs.stack[i].Item.RequestID == requestID {
			rs.removeStackAt(i, rs.Now, nil)
			i--
			found = true
		}
	}
	delete(rs.byRequestID, requestID)
	return found
}

// ClearRequests removes every interactive (non-schedule) occurrence from
// every container.
func (rs *RunState) ClearRequests() {
	kept := rs.future[:0]
	for _, it := range rs.future {
		if it.RequestID == "" {
			kept = append(kept, it)
		}
	}
	rs.future = kept

	for {
		idx := rs.heap.FindIndex(func(it *PlaybackItem) bool { return it.RequestID != "" })
		if idx < 0 {
			break
		}
		rs.heap.DeleteAt(idx)
	}

	for i := 0; i < len(rs.stack); i++ {
		if rs.stack[i].Item.RequestID != "" {
			rs.removeStackAt(i, rs.Now, nil)
			i--
		}
	}
	rs.byRequestID = make(map[string]*stackEntry)
}

// StopAll tears down every container: nothing queued, nothing eligible,
// nothing playing. Each stack occupant is first advanced to atMs (so a
// natural completion crossed along the way still closes out its own
// Sequence/Playlist Ended), then stopped: graceful selects Schedule Ended
// over Schedule Stopped for anything still genuinely mid-flight. The
// resulting events have no RunUntil call of their own to return through, so
// they're buffered in rs.pending for the next RunUntil to surface.
func (rs *RunState) StopAll(atMs int64, graceful bool) {
	log := newEventLog(0)
	for i := len(rs.stack) - 1; i >= 0; i-- {
		entry := rs.stack[i]
		depth := len(rs.stack) - 1 - i
		if !entry.Cursor.Suspended {
			entry.Cursor.AdvanceToTime(atMs, log, depth)
		}
		entry.Cursor.Stop(atMs, log, depth, graceful)
	}
	rs.pending = append(rs.pending, log.entries...)
	rs.stack = nil
	rs.byID = make(map[string]*stackEntry)
	rs.byRequestID = make(map[string]*stackEntry)
	rs.heap = newPriorityHeap()
	rs.future = nil
}

// Pause suspends whatever is currently playing; Resume un-suspends it. Both
// act only on the top of the stack — entries beneath it are already
// suspended by preemption and are unaffected. As with StopAll, the events
// these produce are buffered in rs.pending for the next RunUntil call.
func (rs *RunState) Pause(atMs int64) {
	if len(rs.stack) == 0 {
		return
	}
	log := newEventLog(0)
	rs.stack[len(rs.stack)-1].Cursor.Suspend(atMs, log, 0)
	rs.pending = append(rs.pending, log.entries...)
}

func (rs *RunState) Resume(atMs int64) {
	if len(rs.stack) == 0 {
		return
	}
	log := newEventLog(0)
	rs.stack[len(rs.stack)-1].Cursor.Resume(atMs, log, 0)
	rs.pending = append(rs.pending, log.entries...)
}

// purgeDeadHeapEntries drops whatever sits at the heap's top once its own
// window has already elapsed (sched_end <= now) — never reaching the stack
// at all, logging Schedule Prevented instead of Schedule Started. Run after
// promotion so an item that
// materializes already-expired is caught before applyPreemptions can ever
// consider pushing it.
func (rs *RunState) purgeDeadHeapEntries(log *eventLog) {
	for rs.heap.Len() > 0 {
		top := rs.heap.Top()
		if top.SchedEndMs > rs.Now {
			break
		}
		rs.heap.DeleteTop()
		appendScheduleEvent(log, len(rs.stack), rs.Now, EventSchedulePrevented, top)
		if top.RequestID != "" {
			delete(rs.byRequestID, top.RequestID)
		}
	}
}

// applyPreemptions pushes eligible heap entries onto the stack in rank
// order. An entry that outranks the current top still waits for a graceful
// boundary unless the top prefers being hard-cut, the entry itself hard-cuts
// in, or the top is already sitting on a sequence boundary.
// While it waits, the boundary time is returned as heapCutIn (-1 when
// nothing is waiting) so RunUntil never steps the clock past it.
func (rs *RunState) applyPreemptions(log *eventLog) (progressed bool, heapCutIn int64) {
	heapCutIn = -1
	for rs.heap.Len() > 0 {
		top := rs.heap.Top()
		if len(rs.stack) == 0 {
			rs.heap.DeleteTop()
			rs.pushStack(top, rs.Now, log)
			progressed = true
			continue
		}
		cur := rs.stack[len(rs.stack)-1]
		if !less(top, cur.Item) {
			if top.SchedStartMs == rs.Now {
				appendScheduleEvent(log, len(rs.stack), rs.Now, EventScheduleDeferred, top)
			}
			break
		}
		gi := cur.Cursor.NextGracefulInterruptionTime(rs.Now)
		if !cur.Item.PreferHardCutIn && !top.HardCutIn && gi != rs.Now {
			heapCutIn = gi
			break
		}
		rs.heap.DeleteTop()
		rs.pushStack(top, rs.Now, log)
		progressed = true
	}
	return progressed, heapCutIn
}

// earliestNext reports the next time something could change, used to
// advance rs.Now when nothing is currently eligible or playable: the
// earliest of the next future-queue arrival and the current top's own next
// decision time, capped at targetMs.
func (rs *RunState) earliestNext(targetMs int64) int64 {
	best := targetMs
	if len(rs.future) > 0 && rs.future[0].SchedStartMs < best {
		best = rs.future[0].SchedStartMs
	}
	if len(rs.stack) > 0 {
		if nd := rs.stack[len(rs.stack)-1].Cursor.NextDecisionTime(); nd >= 0 && nd < best {
			best = nd
		}
	}
	if best <= rs.Now {
		best = rs.Now + 1
	}
	return best
}

// RunUntil is the scheduler's one real entry point: advance logical time
// from rs.Now to targetMs, letting eligible occurrences preempt in priority
// order and walking whatever ends up on top of the stack. It returns every
// PlaybackLogDetail crossed along the way (bounded by rs.LogLimit) alongside
// every PlayAction the walked cursors produced, so a caller driving actual
// output has the literal render instructions and not just the event trail.
func (rs *RunState) RunUntil(targetMs int64) ([]PlaybackLogDetail, []PlayAction) {
	log := newEventLog(rs.LogLimit)
	if len(rs.pending) > 0 {
		log.entries = append(log.entries, rs.pending...)
		rs.pending = nil
	}
	var allActions []PlayAction

	// Defensive iteration ceiling: a pathological schedule (e.g. an empty
	// main section alternating with an empty pre/post, each worth zero
	// simulated time) could otherwise spin without ever reaching targetMs.
	// IterationCap, when set, overrides the 10*LogLimit+100 default so a
	// caller can raise or lower the ceiling independent of log buffering.
	iterCap := rs.IterationCap
	if iterCap <= 0 {
		iterCap = 10*rs.LogLimit + 100
		if rs.LogLimit <= 0 {
			iterCap = 10000
		}
	}
	iterations := 0

	for rs.Now < targetMs {
		iterations++
		if iterations > iterCap || log.reachedLimit() {
			break
		}
		rs.promoteEligible(rs.Now)
		rs.purgeDeadHeapEntries(log)
		_, heapCutIn := rs.applyPreemptions(log)

		if len(rs.stack) == 0 {
			next := rs.earliestNext(targetMs)
			if next >= targetMs {
				rs.Now = targetMs
				break
			}
			rs.Now = next
			continue
		}

		top := rs.stack[len(rs.stack)-1]
		if top.Cursor.Phase == PhaseDone {
			// A cursor can reach Done without RunUntil seeing its terminal
			// action — a keep-to-schedule resume fast-forwarded past its end
			// while it sat suspended. Drain it here like any finished item.
			appendScheduleEvent(log, 0, rs.Now, EventScheduleEnded, top.Item)
			rs.removeStackAt(len(rs.stack)-1, rs.Now, log)
			continue
		}
		if top.Cursor.Suspended {
			next := rs.earliestNext(targetMs)
			if next >= targetMs {
				rs.Now = targetMs
				break
			}
			rs.Now = next
			continue
		}

		// Never step the clock past the next point something could change
		// hands: a waiting higher-rank entry's graceful boundary, or the next
		// future-queue arrival.
		next := targetMs
		if heapCutIn > rs.Now && heapCutIn < next {
			next = heapCutIn
		}
		if len(rs.future) > 0 && rs.future[0].SchedStartMs > rs.Now && rs.future[0].SchedStartMs < next {
			next = rs.future[0].SchedStartMs
		}

		actions := top.Cursor.AdvanceToTime(next, log, 0)
		allActions = append(allActions, actions...)
		ended, finishAt := false, next
		for _, a := range actions {
			if a.End {
				ended = true
				finishAt = a.AtTimeMs
			}
		}
		if ended {
			appendScheduleEvent(log, 0, finishAt, EventScheduleEnded, top.Item)
			rs.removeStackAt(len(rs.stack)-1, finishAt, log)
			rs.Now = finishAt
			continue
		}
		rs.Now = next
	}
	return log.entries, allActions
}

// ReadOutScheduleUntil is the supplemented read-only counterpart to
// RunUntil: it reports what the timeline between rs.Now and targetMs would
// look like without mutating RunState, by running the same stepping logic
// against a deep-enough clone of the live containers. See query.go.
