package show

// CursorPhase is the sum type replacing the "part in {-1..3}" encoding:
// a PlaybackStateEntry walks Pre, then Main (optionally looping), then Post,
// then Done. This is the hardest single piece of the scheduler core, so it
// gets its own file.
type CursorPhase int

const (
	PhasePre CursorPhase = iota
	PhaseMain
	PhasePost
	PhaseDone
)

func (p CursorPhase) String() string {
	switch p {
	case PhasePre:
		return "pre"
	case PhaseMain:
		return "main"
	case PhasePost:
		return "post"
	case PhaseDone:
		return "done"
	default:
		return "unknown"
	}
}

// PlaybackStateEntry is the cursor for one materialized PlaybackItem: where
// in pre/main/post it currently sits, how far into the current sequence it
// has played, and whether it is suspended (paused, or preempted and parked
// on the stack waiting to resume).
//
// Index of -1 means the current phase has not logged its Playlist Started
// yet; Index == len(ids) (stored after the last sequence of a non-looping
// section ends) means the phase is finished and should log Playlist Ended. A phase
// whose section resolved to zero ids is skipped without logging either
// event: an absent pre/post playlist leaves no trace in the log.
type PlaybackStateEntry struct {
	Item *PlaybackItem

	Phase           CursorPhase
	Index           int
	OffsetInto      int64 // ms played so far into the current span
	BaseTime        int64 // wall-clock ms corresponding to OffsetInto == 0
	EndingPartEarly bool  // main section should stop after the current span

	// curSpanMs/curSpanEndsEarly are decided once, at the moment a span
	// starts (OffsetInto == 0), and held fixed across however many
	// AdvanceToTime calls it takes to actually play that span out — so a
	// run cut short by runTo resumes against the same decision instead of
	// re-evaluating should_start_outro mid-sequence.
	curSpanMs        int64
	curSpanEndsEarly bool

	Suspended   bool
	SuspendAtMs int64
}

// NewPlaybackStateEntry starts a cursor for item at the pre phase, as of
// startMs (normally the item's SchedStartMs, but an immediate/queued item
// cut in partway starts wherever the scheduler decides "now" is).
func NewPlaybackStateEntry(item *PlaybackItem, startMs int64) *PlaybackStateEntry {
	return &PlaybackStateEntry{
		Item:     item,
		Phase:    PhasePre,
		Index:    -1,
		BaseTime: startMs,
	}
}

func (e *PlaybackStateEntry) sectionSlices() (ids []string, durs []int64, loop bool) {
	switch e.Phase {
	case PhasePre:
		return e.Item.PreSection.IDs, e.Item.PreSection.Durs, false
	case PhaseMain:
		return e.Item.MainSection.IDs, e.Item.MainSection.Durs, e.Item.MainSection.Loop
	case PhasePost:
		return e.Item.PostSection.IDs, e.Item.PostSection.Durs, false
	default:
		return nil, nil, false
	}
}

func (e *PlaybackStateEntry) currentPlaylistID() string {
	switch e.Phase {
	case PhasePre:
		return e.Item.PrePlaylistID
	case PhaseMain:
		return e.Item.PlaylistID
	case PhasePost:
		return e.Item.PostPlaylistID
	default:
		return ""
	}
}

func (e *PlaybackStateEntry) partNumber() int {
	switch e.Phase {
	case PhasePre:
		return 0
	case PhaseMain:
		return 1
	case PhasePost:
		return 2
	default:
		return -1
	}
}

// AdvanceToTime walks the cursor forward from wherever it is up to runTo,
// appending one PlayAction per contiguous span actually rendered and one
// PlaybackLogDetail per event crossed, then stopping either because it
// ran out of run-to budget mid-span or because the item has nothing left
// to play (phase reached Done). stackDepth is this item's current position
// on the preemption stack (0 == currently playing), recorded on every
// emitted log entry.
func (e *PlaybackStateEntry) AdvanceToTime(runTo int64, log *eventLog, stackDepth int) []PlayAction {
	var actions []PlayAction
	for {
		if e.Phase == PhaseDone || e.Suspended {
			break
		}
		curTime := e.BaseTime + e.OffsetInto
		if curTime >= runTo {
			break
		}

		ids, durs, loop := e.sectionSlices()

		if len(ids) > 0 && (e.Index >= len(ids) || e.EndingPartEarly) {
			e.emitPlaylistEnded(log, stackDepth, curTime)
			if term := e.nextPhase(curTime); term != nil {
				actions = append(actions, *term)
				break
			}
			continue
		}

		if len(ids) == 0 {
			if term := e.nextPhase(curTime); term != nil {
				actions = append(actions, *term)
				break
			}
			continue
		}

		if e.Index < 0 {
			e.emitPlaylistStarted(log, stackDepth, curTime)
			e.Index = 0
			continue
		}

		seqID := ids[e.Index]
		dur := durs[e.Index]

		if e.OffsetInto == 0 {
			if e.Phase == PhaseMain {
				target := e.Item.SchedEndMs - e.Item.PostSection.Total
				truncMs, truncate, stop := evalOutro(e.Item.EndPolicy, curTime, dur, target)
				if stop {
					e.EndingPartEarly = true
					continue
				}
				if truncate {
					e.curSpanMs = truncMs
					e.curSpanEndsEarly = true
				} else {
					e.curSpanMs = dur
					e.curSpanEndsEarly = false
				}
			} else {
				e.curSpanMs = dur
				e.curSpanEndsEarly = false
			}
		}

		remaining := e.curSpanMs - e.OffsetInto
		avail := runTo - curTime
		play := remaining
		blocked := false
		if avail < remaining {
			play = avail
			blocked = true
		}

		if e.OffsetInto == 0 && play > 0 {
			e.emitSequenceStarted(log, stackDepth, curTime, seqID)
		}
		if play > 0 {
			actions = append(actions, PlayAction{AtTimeMs: curTime, SeqID: seqID, OffsetMs: e.OffsetInto, DurationMs: play})
		}
		if blocked {
			e.OffsetInto += play
			break
		}

		newCur := curTime + play
		e.emitSequenceEnded(log, stackDepth, newCur, seqID, e.OffsetInto+play)
		e.BaseTime = newCur
		e.OffsetInto = 0

		if e.curSpanEndsEarly {
			e.EndingPartEarly = true
			continue
		}
		if e.Phase == PhaseMain && loop && len(ids) > 0 {
			e.Index = (e.Index + 1) % len(ids)
		} else {
			e.Index++
		}
	}
	return actions
}

// nextPhase advances Pre->Main->Post->Done, resetting per-phase cursor
// state. It returns a non-nil terminal PlayAction only on the Post->Done
// transition, so callers know this item has nothing further to contribute.
func (e *PlaybackStateEntry) nextPhase(atMs int64) *PlayAction {
	e.Index = -1
	e.EndingPartEarly = false
	e.OffsetInto = 0
	e.BaseTime = atMs
	switch e.Phase {
	case PhasePre:
		e.Phase = PhaseMain
		return nil
	case PhaseMain:
		e.Phase = PhasePost
		return nil
	case PhasePost:
		e.Phase = PhaseDone
		return &PlayAction{End: true, AtTimeMs: atMs}
	default:
		e.Phase = PhaseDone
		return &PlayAction{End: true, AtTimeMs: atMs}
	}
}

// evalOutro implements should_start_outro for one main-section span,
// evaluated exactly once at that span's start. target is the clock
// time the main section should have finished by, so the post section (if
// any) still completes at Item.SchedEndMs.
//
// stop means "do not play this span at all, move to post now". truncate
// means "play only truncMs of this span, then move to post" — only
// hardcut ever truncates mid-sequence; the seqbound* policies always run a
// span to its natural end once started, choosing only whether to start it.
func evalOutro(policy EndPolicy, curTime, dur, target int64) (truncMs int64, truncate bool, stop bool) {
	end := curTime + dur
	switch policy {
	case EndPolicyHardCut:
		if curTime >= target {
			return 0, false, true
		}
		if end > target {
			return target - curTime, true, false
		}
		return 0, false, false
	case EndPolicySeqBoundEarly:
		if curTime >= target || end > target {
			return 0, false, true
		}
		return 0, false, false
	case EndPolicySeqBoundLate:
		if curTime >= target {
			return 0, false, true
		}
		return 0, false, false
	case EndPolicySeqBoundNearest:
		if curTime >= target {
			return 0, false, true
		}
		if end > target {
			distBefore := target - curTime
			distAfter := end - target
			if distBefore <= distAfter {
				return 0, false, true
			}
		}
		return 0, false, false
	default:
		if curTime >= target {
			return 0, false, true
		}
		return 0, false, false
	}
}

func (e *PlaybackStateEntry) emitPlaylistStarted(log *eventLog, stackDepth int, atMs int64) {
	if log == nil || log.reachedLimit() {
		return
	}
	log.append(PlaybackLogDetail{
		EventType:         EventPlaylistStarted,
		EventTimeMs:       atMs,
		StackDepth:        stackDepth,
		ScheduleID:        e.Item.ScheduleID,
		PlaylistID:        e.currentPlaylistID(),
		RequestID:         e.Item.RequestID,
		EntryIntoPlaylist: &EntryIntoPlaylist{Part: e.partNumber(), Index: 0},
	})
}

func (e *PlaybackStateEntry) emitPlaylistEnded(log *eventLog, stackDepth int, atMs int64) {
	if log == nil || log.reachedLimit() {
		return
	}
	log.append(PlaybackLogDetail{
		EventType:   EventPlaylistEnded,
		EventTimeMs: atMs,
		StackDepth:  stackDepth,
		ScheduleID:  e.Item.ScheduleID,
		PlaylistID:  e.currentPlaylistID(),
		RequestID:   e.Item.RequestID,
	})
}

func (e *PlaybackStateEntry) emitSequenceStarted(log *eventLog, stackDepth int, atMs int64, seqID string) {
	if log == nil || log.reachedLimit() {
		return
	}
	log.append(PlaybackLogDetail{
		EventType:   EventSequenceStarted,
		EventTimeMs: atMs,
		StackDepth:  stackDepth,
		ScheduleID:  e.Item.ScheduleID,
		PlaylistID:  e.currentPlaylistID(),
		SequenceID:  seqID,
		RequestID:   e.Item.RequestID,
	})
}

func (e *PlaybackStateEntry) emitSequenceEnded(log *eventLog, stackDepth int, atMs int64, seqID string, timeIntoSeq int64) {
	if log == nil || log.reachedLimit() {
		return
	}
	t := timeIntoSeq
	log.append(PlaybackLogDetail{
		EventType:     EventSequenceEnded,
		EventTimeMs:   atMs,
		StackDepth:    stackDepth,
		ScheduleID:    e.Item.ScheduleID,
		PlaylistID:    e.currentPlaylistID(),
		SequenceID:    seqID,
		RequestID:     e.Item.RequestID,
		TimeIntoSeqMs: &t,
	})
}

func (e *PlaybackStateEntry) emitSequencePaused(log *eventLog, stackDepth int, atMs int64, seqID string) {
	if log == nil || log.reachedLimit() {
		return
	}
	t := e.OffsetInto
	log.append(PlaybackLogDetail{
		EventType:     EventSequencePaused,
		EventTimeMs:   atMs,
		StackDepth:    stackDepth,
		ScheduleID:    e.Item.ScheduleID,
		PlaylistID:    e.currentPlaylistID(),
		SequenceID:    seqID,
		RequestID:     e.Item.RequestID,
		TimeIntoSeqMs: &t,
	})
}

func (e *PlaybackStateEntry) emitSequenceResumed(log *eventLog, stackDepth int, atMs int64, seqID string) {
	if log == nil || log.reachedLimit() {
		return
	}
	t := e.OffsetInto
	log.append(PlaybackLogDetail{
		EventType:     EventSequenceResumed,
		EventTimeMs:   atMs,
		StackDepth:    stackDepth,
		ScheduleID:    e.Item.ScheduleID,
		PlaylistID:    e.currentPlaylistID(),
		SequenceID:    seqID,
		RequestID:     e.Item.RequestID,
		TimeIntoSeqMs: &t,
	})
}

// currentSeqID reports the sequence id the cursor is sitting on mid-span,
// or "" if it isn't positioned on one right now (phase boundary, or the
// current section resolved to no ids).
func (e *PlaybackStateEntry) currentSeqID() string {
	ids, _, _ := e.sectionSlices()
	if len(ids) == 0 || e.Index < 0 || e.Index >= len(ids) {
		return ""
	}
	return ids[e.Index]
}

// appendScheduleEvent writes one schedule-level event (Started/Ended/
// Stopped/Prevented/Deferred) — the events that belong to an item rather
// than to a cursor mid-walk, so they carry no playlist/sequence id.
func appendScheduleEvent(log *eventLog, stackDepth int, atMs int64, et EventType, item *PlaybackItem) {
	if log == nil || log.reachedLimit() {
		return
	}
	log.append(PlaybackLogDetail{
		EventType:   et,
		EventTimeMs: atMs,
		StackDepth:  stackDepth,
		ScheduleID:  item.ScheduleID,
		RequestID:   item.RequestID,
	})
}

// Suspend parks the cursor: AdvanceToTime becomes a no-op until Resume is
// called. Pause and preemption both go through this same pair: a paused
// cursor's BaseTime must shift by the real elapsed gap on resume exactly
// like a preempted one's, so PlaybackStateEntry carries one suspend
// mechanism and RunState's Pause and the stack's preemption path are both
// thin callers of it.
func (e *PlaybackStateEntry) Suspend(atMs int64, log *eventLog, stackDepth int) {
	if e.Suspended {
		return
	}
	if e.OffsetInto > 0 {
		if seqID := e.currentSeqID(); seqID != "" {
			e.emitSequencePaused(log, stackDepth, atMs, seqID)
		}
	}
	e.Suspended = true
	e.SuspendAtMs = atMs
	appendScheduleEvent(log, stackDepth, atMs, EventScheduleSuspended, e.Item)
}

// Resume un-parks the cursor. The default path shifts BaseTime by exactly
// the wall-clock gap between Suspend and Resume, so the next AdvanceToTime
// call picks up mid-sequence at the same OffsetInto it left off at. When the
// item carries KeepToScheduleWhenPreempted, the lost interval is lost
// playback instead: the cursor is silently walked forward to atMs (no events,
// no play actions for the skipped content) so it lands wherever the schedule
// says it should be by now.
func (e *PlaybackStateEntry) Resume(atMs int64, log *eventLog, stackDepth int) {
	if !e.Suspended {
		return
	}
	e.Suspended = false
	if e.Item.KeepToScheduleWhenPreempted {
		e.AdvanceToTime(atMs, nil, stackDepth)
	} else if delta := atMs - e.SuspendAtMs; delta > 0 {
		e.BaseTime += delta
	}
	appendScheduleEvent(log, stackDepth, atMs, EventScheduleResumed, e.Item)
	if e.OffsetInto > 0 {
		if seqID := e.currentSeqID(); seqID != "" {
			e.emitSequenceResumed(log, stackDepth, atMs, seqID)
		}
	}
}

// Stop forces the cursor to Done. If it was mid-sequence it first closes
// out Sequence Ended, then Playlist Ended if mid-playlist, before the
// schedule-level terminal: Stopped if this aborted something in-flight,
// Ended if the cursor had already run to completion or graceful was asked
// for. Callers that want "advance, then stop" semantics should
// walk the cursor to atMs with AdvanceToTime first; Stop only closes out
// whatever state the cursor is left in.
func (e *PlaybackStateEntry) Stop(atMs int64, log *eventLog, stackDepth int, graceful bool) {
	alreadyDone := e.Phase == PhaseDone
	if !alreadyDone {
		if seqID := e.currentSeqID(); seqID != "" && e.OffsetInto > 0 {
			e.emitSequenceEnded(log, stackDepth, atMs, seqID, e.OffsetInto)
		}
		if e.Index >= 0 {
			e.emitPlaylistEnded(log, stackDepth, atMs)
		}
	}
	e.Phase = PhaseDone
	e.Index = -1
	e.Suspended = false

	et := EventScheduleStopped
	if alreadyDone || graceful {
		et = EventScheduleEnded
	}
	appendScheduleEvent(log, stackDepth, atMs, et, e.Item)
}

// NextGracefulInterruptionTime reports the earliest time this cursor can be
// interrupted at a sequence boundary: now if it is already sitting on one
// (or has nothing in flight at all), otherwise the moment the span currently
// playing runs out.
func (e *PlaybackStateEntry) NextGracefulInterruptionTime(now int64) int64 {
	if e.Phase == PhaseDone || e.Suspended || e.OffsetInto == 0 {
		return now
	}
	if end := e.BaseTime + e.curSpanMs; end > now {
		return end
	}
	return now
}

// NextDecisionTime reports the earliest time at which this cursor has
// something to decide (a phase boundary, a span ending, or simply "right
// now" because a phase transition or Playlist Started is pending) — used
// by RunState to avoid stepping the simulation clock further than the next
// event that could matter. It returns -1 when nothing is pending (done or
// suspended).
func (e *PlaybackStateEntry) NextDecisionTime() int64 {
	if e.Phase == PhaseDone || e.Suspended {
		return -1
	}
	curTime := e.BaseTime + e.OffsetInto
	ids, _, _ := e.sectionSlices()
	if len(ids) == 0 || e.Index < 0 || e.Index >= len(ids) || e.EndingPartEarly {
		return curTime
	}
	if e.OffsetInto == 0 {
		return curTime
	}
	return e.BaseTime + e.curSpanMs
}
