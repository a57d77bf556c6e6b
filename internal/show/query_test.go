package show

import (
	"testing"

	"github.com/matryer/is"
)

func TestGetStatusSnapshotDumpsStackTopFirst(t *testing.T) {
	is := is.New(t)
	lb := newTestLibraries()
	sink := NewErrSink()
	rs := NewRunState(lb, sink, 0)

	sp := &ScheduledPlaylist{
		ID: "sched1", PlaylistID: "plMain",
		FromTime: "00:00", ToTime: "01:00",
		Priority: PriorityMedium,
	}
	lb.Schedules.replaceAll([]*ScheduledPlaylist{sp}, lb.Playlists, sink)
	rs.AddTimeRangeToSchedule(sp, 0, 86400000)
	_, _ = rs.RunUntil(2000)

	is.NoErr(rs.AddInteractiveCommand(&InteractiveCommand{
		Verb: CmdPlaySong, SeqID: "seqA", Immediate: true, RequestID: "req1",
	}, 2000))
	_, _ = rs.RunUntil(3000)

	snap := GetStatusSnapshot(rs)
	is.Equal(snap.StackDepth, 2)
	is.Equal(len(snap.Stack), 2)
	is.Equal(snap.Stack[0].RequestID, "req1") // top first
	is.Equal(snap.Stack[1].ScheduleID, "sched1")
	is.True(snap.Stack[1].Suspended)
	is.Equal(snap.Playing, &snap.Stack[0])
}

func TestGetUpcomingActionsSimulatesWithoutMutating(t *testing.T) {
	is := is.New(t)
	lb := newTestLibraries()
	sink := NewErrSink()
	rs := NewRunState(lb, sink, 0)

	sp := &ScheduledPlaylist{
		ID: "sched1", PlaylistID: "plMain",
		FromTime: "00:00", ToTime: "01:00",
		Priority: PriorityMedium,
	}
	lb.Schedules.replaceAll([]*ScheduledPlaylist{sp}, lb.Playlists, sink)
	rs.AddTimeRangeToSchedule(sp, 0, 86400000)
	_, _ = rs.RunUntil(2000)

	before := GetStatusSnapshot(rs)
	actions := GetUpcomingActions(rs, 30000, 0, 0)
	after := GetStatusSnapshot(rs)

	is.Equal(before, after) // pure query, no state change

	// 2s into seqA: the readahead covers seqA's remainder plus seqB.
	is.Equal(len(actions), 2)
	is.Equal(actions[0].SeqID, "seqA")
	is.Equal(actions[0].OffsetMs, int64(2000))
	is.Equal(actions[0].DurationMs, int64(8000))
	is.Equal(actions[1].SeqID, "seqB")
	is.Equal(actions[1].OffsetMs, int64(0))
}

func TestGetUpcomingActionsCoversFutureWithinSchedahead(t *testing.T) {
	is := is.New(t)
	lb := newTestLibraries()
	sink := NewErrSink()
	rs := NewRunState(lb, sink, 0)

	near := &ScheduledPlaylist{ID: "near", PlaylistID: "plMain", FromTime: "01:00", ToTime: "02:00"}
	far := &ScheduledPlaylist{ID: "far", PlaylistID: "plMain", FromTime: "10:00", ToTime: "11:00"}
	lb.Schedules.replaceAll([]*ScheduledPlaylist{near, far}, lb.Playlists, sink)
	rs.AddTimeRange(0, 86400000, true)

	const twoHours = 2 * 3600 * 1000
	actions := GetUpcomingActions(rs, 15000, twoHours, 0)

	is.True(len(actions) > 0)
	for _, a := range actions {
		// only the near occurrence falls inside the schedahead window
		is.True(a.AtTimeMs < twoHours)
	}
}

func TestGetUpcomingActionsRespectsMaxItems(t *testing.T) {
	is := is.New(t)
	lb := newTestLibraries()
	sink := NewErrSink()
	rs := NewRunState(lb, sink, 0)

	sp := &ScheduledPlaylist{
		ID: "sched1", PlaylistID: "plMain",
		FromTime: "00:00", ToTime: "01:00",
		Loop: true,
	}
	lb.Schedules.replaceAll([]*ScheduledPlaylist{sp}, lb.Playlists, sink)
	rs.AddTimeRangeToSchedule(sp, 0, 86400000)
	_, _ = rs.RunUntil(1000)

	actions := GetUpcomingActions(rs, 3600*1000, 0, 3)
	is.Equal(len(actions), 3)
}

func TestGetUpcomingItemsSortedSoonestFirst(t *testing.T) {
	is := is.New(t)
	lb := newTestLibraries()
	sink := NewErrSink()
	rs := NewRunState(lb, sink, 0)

	late := &ScheduledPlaylist{ID: "late", PlaylistID: "plMain", FromTime: "05:00", ToTime: "06:00"}
	early := &ScheduledPlaylist{ID: "early", PlaylistID: "plMain", FromTime: "01:00", ToTime: "02:00"}
	lb.Schedules.replaceAll([]*ScheduledPlaylist{late, early}, lb.Playlists, sink)
	rs.AddTimeRange(0, 86400000, true)

	is.NoErr(rs.AddInteractiveCommand(&InteractiveCommand{
		Verb: CmdPlaySong, SeqID: "seqA", RequestID: "req1", StartTimeMs: 30 * 60 * 1000,
	}, 0))

	out := GetUpcomingItems(rs)
	is.Equal(len(out), 3)
	is.Equal(out[0].RequestID, "req1") // interactive items file alongside schedule occurrences
	is.Equal(out[1].ScheduleID, "early")
	is.Equal(out[2].ScheduleID, "late")
}

func TestReadOutScheduleUntilIsRepeatable(t *testing.T) {
	is := is.New(t)
	lb, sp := linearOneSongLibraries()
	sink := NewErrSink()
	rs := NewRunState(lb, sink, 0)
	rs.AddTimeRangeToSchedule(sp, 0, 86400000)

	first, _ := ReadOutScheduleUntil(rs, 24*3600*1000)
	second, _ := ReadOutScheduleUntil(rs, 24*3600*1000)
	is.Equal(first, second) // preview must not leak progress into live state
	is.Equal(rs.Now, int64(0))
}
