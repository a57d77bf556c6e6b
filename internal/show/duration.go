package show

import (
	"fmt"
	"strconv"
	"strings"
)

// SeqTimes is the decomposed duration calculus for a single sequence: how
// much of the raw work is played, how much lead/trail padding surrounds it,
// and how much is trimmed off either end.
type SeqTimes struct {
	TotalMs   int64 // scheduled slot length: max(0, length + lead + trail), in ms
	LeadMs    int64 // positive lead padding, 0 if LeadTime was a trim
	TrailMs   int64 // positive trail padding, 0 if TrailTime was a trim
	TrimInMs  int64 // amount trimmed off the front, 0 if LeadTime was padding
	TrimOutMs int64 // amount trimmed off the back, 0 if TrailTime was padding
}

// GetSeqTimesMs computes the full duration decomposition for a sequence.
//
// TotalMs sums the raw lead/trail values directly (a negative lead or
// trail reduces the total, since it represents a trim rather than padding)
// and only floors the final result at zero.
func GetSeqTimesMs(s *Sequence) SeqTimes {
	var lead, trail float64
	if s.LeadTime != nil {
		lead = *s.LeadTime
	}
	if s.TrailTime != nil {
		trail = *s.TrailTime
	}
	leadMs := int64(lead * 1000)
	trailMs := int64(trail * 1000)

	out := SeqTimes{
		LeadMs:    maxInt64(0, leadMs),
		TrimInMs:  maxInt64(0, -leadMs),
		TrailMs:   maxInt64(0, trailMs),
		TrimOutMs: maxInt64(0, -trailMs),
	}
	out.TotalMs = maxInt64(0, int64(s.WorkLength*1000)+leadMs+trailMs)
	return out
}

// GetTotalSeqTimeMs is the headline duration of a sequence's scheduled slot.
func GetTotalSeqTimeMs(s *Sequence) int64 {
	return GetSeqTimesMs(s).TotalMs
}

const missingSequenceDefaultMs int64 = 1000

// ResolveSectionDurations resolves a list of sequence ids against a library,
// producing the parallel (ids, durations) arrays a pre/main/post section
// needs. Missing sequences are NOT dropped — they still occupy their slot on
// the timeline at a default duration, with a warning recorded — mirroring
// the rule that a missing media file still occupies its slot.
func ResolveSectionDurations(ids []string, lib *SequenceLibrary, sink *ErrSink) (durs []int64, total int64, longest int64) {
	durs = make([]int64, len(ids))
	for i, id := range ids {
		seq := lib.Get(id)
		var d int64
		if seq == nil {
			d = missingSequenceDefaultMs
			sink.Add(WarnUnknownSequence, id, "referenced sequence is missing; using default duration")
		} else {
			d = GetTotalSeqTimeMs(seq)
		}
		durs[i] = d
		total += d
		if d > longest {
			longest = d
		}
	}
	return durs, total, longest
}

// PlaylistDuration reports a playlist's nominal (sum, longest) duration for
// summary/reporting purposes. Unlike ResolveSectionDurations (used when
// actually building a schedulable section, where a missing sequence still
// occupies a slot), this is a lightweight informational statistic: entries
// that can't be resolved are skipped entirely rather than padded in, and no
// warning is recorded.
func PlaylistDuration(pl *Playlist, lib *SequenceLibrary) (sum int64, longest int64) {
	for _, ref := range pl.OrderedSeqIDs() {
		seq := lib.Get(ref)
		if seq == nil {
			continue
		}
		d := GetTotalSeqTimeMs(seq)
		sum += d
		if d > longest {
			longest = d
		}
	}
	return sum, longest
}

func maxInt64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

// ParseExtendedTime parses a "HH:MM[:SS]" time string into a millisecond
// offset from midnight. Hours may run from 0 to 168 (one week) to express
// "next day"/"next week" schedules that roll past midnight. The parser is
// lenient about the seconds component: a missing seconds field defaults to
// 0, and a seconds field present but not cleanly numeric is likewise folded
// to 0 rather than rejecting the whole string — mirroring the source
// parser's looseness rather than tightening it.
func ParseExtendedTime(s string) (int64, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("malformed time string %q: expected HH:MM or HH:MM:SS", s)
	}
	hours, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, fmt.Errorf("malformed time string %q: bad hours component: %w", s, err)
	}
	if hours < 0 || hours > 168 {
		return 0, fmt.Errorf("malformed time string %q: hours %d out of range [0,168]", s, hours)
	}
	minutes, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, fmt.Errorf("malformed time string %q: bad minutes component: %w", s, err)
	}
	if minutes < 0 || minutes > 59 {
		return 0, fmt.Errorf("malformed time string %q: minutes %d out of range", s, minutes)
	}
	var seconds int
	if len(parts) == 3 {
		if sv, err := strconv.Atoi(strings.TrimSpace(parts[2])); err == nil {
			seconds = sv
		}
		// unparsable seconds text is tolerated and folded to 0 rather than
		// rejecting the whole string.
	}
	total := int64(hours)*3600000 + int64(minutes)*60000 + int64(seconds)*1000
	return total, nil
}

// DeriveScheduleTimes computes start_ms/end_ms for a scheduled playlist from
// its nominal date plus from_time/to_time. A schedule whose resolved
// end_ms <= start_ms matches no instant.
func DeriveScheduleTimes(sp *ScheduledPlaylist) (startMs, endMs int64, err error) {
	fromMs, err := ParseExtendedTime(sp.FromTime)
	if err != nil {
		return 0, 0, fmt.Errorf("schedule %s: %w", sp.ID, err)
	}
	toMs, err := ParseExtendedTime(sp.ToTime)
	if err != nil {
		return 0, 0, fmt.Errorf("schedule %s: %w", sp.ID, err)
	}
	midnight := sp.DateMs - (sp.DateMs % 86400000)
	startMs = midnight + fromMs
	endMs = midnight + toMs
	return startMs, endMs, nil
}

// ScheduleDerivedTimes bundles the nominal window plus the policy-adjusted
// natural-end variants used by prefetch/reporting. These are informational
// only — the cursor's own runtime evaluation of should_start_outro is the
// authority on exactly when a schedule ends (see cursor.go); this function
// approximates it for callers that want an answer before anything runs.
type ScheduleDerivedTimes struct {
	StartMs       int64
	EndMs         int64
	ExpectedEndMs int64
	EarlyEndMs    int64
	LateEndMs     int64
}

// DeriveScheduleDurations computes the full set of schedule-duration fields
// for a schedule, given the already-resolved main-section total/longest
// (and pre/post totals) for the occurrence this schedule would materialize.
func DeriveScheduleDurations(sp *ScheduledPlaylist, startMs, endMs int64, preTotal, mainTotal, postTotal, longest int64) ScheduleDerivedTimes {
	out := ScheduleDerivedTimes{StartMs: startMs, EndMs: endMs}

	if !sp.Loop && !sp.Shuffle {
		out.ExpectedEndMs = startMs + preTotal + mainTotal + postTotal
	} else {
		out.ExpectedEndMs = endMs
	}

	switch sp.EndPolicy {
	case EndPolicySeqBoundEarly:
		out.EarlyEndMs = endMs - longest/2
		out.LateEndMs = endMs
	case EndPolicySeqBoundLate:
		out.EarlyEndMs = endMs
		out.LateEndMs = endMs + longest
	case EndPolicySeqBoundNearest:
		out.EarlyEndMs = endMs - longest/2
		out.LateEndMs = endMs + longest
	default: // hardcut
		out.EarlyEndMs = endMs
		out.LateEndMs = endMs
	}
	return out
}
