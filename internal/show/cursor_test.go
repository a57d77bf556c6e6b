package show

import (
	"testing"

	"github.com/matryer/is"
)

func simpleMainItem(ids []string, durs []int64, loop bool, endPolicy EndPolicy, schedEndMs int64) *PlaybackItem {
	var total int64
	var longest int64
	for _, d := range durs {
		total += d
		if d > longest {
			longest = d
		}
	}
	return &PlaybackItem{
		ItemID:       "item-1",
		ScheduleID:   "sched-1",
		EndPolicy:    endPolicy,
		SchedStartMs: 0,
		SchedEndMs:   schedEndMs,
		MainSection: MainSection{
			Section: Section{IDs: ids, Durs: durs, Total: total},
			Longest: longest,
			Loop:    loop,
		},
	}
}

func TestAdvanceToTimeSingleSequenceCompletes(t *testing.T) {
	is := is.New(t)
	item := simpleMainItem([]string{"s1"}, []int64{1000}, false, EndPolicySeqBoundNearest, 1000)
	entry := NewPlaybackStateEntry(item, 0)
	log := newEventLog(0)

	actions := entry.AdvanceToTime(5000, log, 0)

	var playCount, endCount int
	for _, a := range actions {
		if a.End {
			endCount++
			is.Equal(a.AtTimeMs, int64(1000))
		} else {
			playCount++
			is.Equal(a.SeqID, "s1")
			is.Equal(a.DurationMs, int64(1000))
		}
	}
	is.Equal(playCount, 1)
	is.Equal(endCount, 1)
	is.Equal(entry.Phase, PhaseDone)

	var types []EventType
	for _, e := range log.entries {
		types = append(types, e.EventType)
	}
	is.Equal(len(types), 4) // Playlist Started, Sequence Started, Sequence Ended, Playlist Ended
	is.Equal(types[0], EventPlaylistStarted)
	is.Equal(types[1], EventSequenceStarted)
	is.Equal(types[2], EventSequenceEnded)
	is.Equal(types[3], EventPlaylistEnded)
}

func TestAdvanceToTimeEmptyMainSectionEmitsNothing(t *testing.T) {
	is := is.New(t)
	item := simpleMainItem(nil, nil, false, EndPolicySeqBoundNearest, 1000)
	entry := NewPlaybackStateEntry(item, 0)
	log := newEventLog(0)

	actions := entry.AdvanceToTime(5000, log, 0)

	is.Equal(len(log.entries), 0)
	is.Equal(entry.Phase, PhaseDone)
	found := false
	for _, a := range actions {
		if a.End {
			found = true
		}
	}
	is.True(found)
}

func TestAdvanceToTimeHardCutTruncatesMidSequence(t *testing.T) {
	is := is.New(t)
	item := simpleMainItem([]string{"s1", "s2"}, []int64{1000, 1000}, false, EndPolicyHardCut, 1500)
	entry := NewPlaybackStateEntry(item, 0)
	log := newEventLog(0)

	actions := entry.AdvanceToTime(5000, log, 0)

	var plays []PlayAction
	for _, a := range actions {
		if !a.End {
			plays = append(plays, a)
		}
	}
	is.Equal(len(plays), 2)
	is.Equal(plays[0].SeqID, "s1")
	is.Equal(plays[0].DurationMs, int64(1000))
	is.Equal(plays[1].SeqID, "s2")
	is.Equal(plays[1].DurationMs, int64(500)) // truncated to meet SchedEndMs=1500
}

func TestAdvanceToTimeBlockedMidSequenceResumesFromOffset(t *testing.T) {
	is := is.New(t)
	item := simpleMainItem([]string{"s1"}, []int64{1000}, false, EndPolicySeqBoundNearest, 1000)
	entry := NewPlaybackStateEntry(item, 0)
	log := newEventLog(0)

	first := entry.AdvanceToTime(10, log, 0)
	is.Equal(len(first), 1)
	is.Equal(first[0].OffsetMs, int64(0))
	is.Equal(first[0].DurationMs, int64(10))
	is.Equal(entry.OffsetInto, int64(10))
	is.Equal(entry.Phase, PhaseMain)

	second := entry.AdvanceToTime(5000, log, 0)
	var ended bool
	for _, a := range second {
		if !a.End {
			is.Equal(a.OffsetMs, int64(10))
			is.Equal(a.DurationMs, int64(990))
		} else {
			ended = true
		}
	}
	is.True(ended)
}

func TestSuspendResumeShiftsBaseTimeByRealGap(t *testing.T) {
	is := is.New(t)
	item := simpleMainItem([]string{"s1"}, []int64{1000}, false, EndPolicySeqBoundNearest, 1000)
	entry := NewPlaybackStateEntry(item, 0)
	log := newEventLog(0)

	entry.AdvanceToTime(10, log, 0) // plays [0,10)
	entry.Suspend(10, log, 0)
	entry.Resume(15, log, 0) // 5ms real gap while suspended

	actions := entry.AdvanceToTime(5000, log, 0)
	for _, a := range actions {
		if a.End {
			is.Equal(a.AtTimeMs, int64(1005)) // 1000ms of content + 5ms suspended gap
		}
	}
}

func TestStopForcesDoneImmediately(t *testing.T) {
	is := is.New(t)
	item := simpleMainItem([]string{"s1"}, []int64{1000}, false, EndPolicySeqBoundNearest, 1000)
	entry := NewPlaybackStateEntry(item, 0)
	log := newEventLog(0)

	entry.AdvanceToTime(10, log, 0)
	entry.Stop(10, log, 0, false)
	is.Equal(entry.Phase, PhaseDone)

	actions := entry.AdvanceToTime(5000, log, 0)
	is.Equal(len(actions), 0) // already Done, nothing further to produce
}

// TestEndPoliciesOnLoopingMain exercises the four end policies against a
// looping main section of nine 10s items scheduled across a 2m03s window:
// hardcut truncates mid-sequence at the nominal end, seqboundearly stops at
// the boundary before it, seqboundlate at the boundary after, and
// seqboundnearest picks whichever boundary is closer.
func TestEndPoliciesOnLoopingMain(t *testing.T) {
	ids := []string{"s1", "s2", "s3", "s4", "s5", "s6", "s7", "s8", "s9"}
	durs := make([]int64, len(ids))
	for i := range durs {
		durs[i] = 10000
	}

	cases := []struct {
		name       string
		policy     EndPolicy
		schedEndMs int64
		wantEndAt  int64
	}{
		{"hardcut", EndPolicyHardCut, 123000, 123000},
		{"seqboundearly", EndPolicySeqBoundEarly, 123000, 120000},
		{"seqboundlate", EndPolicySeqBoundLate, 123000, 130000},
		{"seqboundnearest before", EndPolicySeqBoundNearest, 123000, 120000},
		{"seqboundnearest after", EndPolicySeqBoundNearest, 127000, 130000},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			is := is.New(t)
			item := simpleMainItem(ids, durs, true, tc.policy, tc.schedEndMs)
			entry := NewPlaybackStateEntry(item, 0)
			log := newEventLog(0)

			actions := entry.AdvanceToTime(300000, log, 0)

			var endAt int64 = -1
			for _, a := range actions {
				if a.End {
					endAt = a.AtTimeMs
				}
			}
			is.Equal(endAt, tc.wantEndAt)
			is.Equal(entry.Phase, PhaseDone)
		})
	}
}

func TestNextGracefulInterruptionTime(t *testing.T) {
	is := is.New(t)
	item := simpleMainItem([]string{"s1"}, []int64{1000}, false, EndPolicySeqBoundNearest, 10000)
	entry := NewPlaybackStateEntry(item, 0)
	log := newEventLog(0)

	// Nothing in flight yet: interruptible right now.
	is.Equal(entry.NextGracefulInterruptionTime(0), int64(0))

	entry.AdvanceToTime(400, log, 0)
	// Mid-span: the boundary is the span's end.
	is.Equal(entry.NextGracefulInterruptionTime(400), int64(1000))
}

func TestKeepToScheduleResumeAdvancesCursor(t *testing.T) {
	is := is.New(t)
	item := simpleMainItem([]string{"s1", "s2"}, []int64{1000, 1000}, false, EndPolicySeqBoundNearest, 10000)
	item.KeepToScheduleWhenPreempted = true
	entry := NewPlaybackStateEntry(item, 0)
	log := newEventLog(0)

	entry.AdvanceToTime(400, log, 0) // 400ms into s1
	entry.Suspend(400, log, 0)
	entry.Resume(1500, log, 0) // 1100ms lost: s1's remainder plus 500ms of s2

	is.Equal(entry.Index, 1)
	is.Equal(entry.OffsetInto, int64(500))

	actions := entry.AdvanceToTime(10000, log, 0)
	for _, a := range actions {
		if !a.End {
			is.Equal(a.SeqID, "s2")
			is.Equal(a.OffsetMs, int64(500))
		} else {
			is.Equal(a.AtTimeMs, int64(2000)) // schedule position held despite the suspension
		}
	}
}
