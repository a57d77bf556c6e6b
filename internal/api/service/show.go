// Package service wraps the scheduler core (internal/show) with the
// concurrency, persistence, and broadcast plumbing a live HTTP server needs
// around it — the core itself stays single-threaded and pure.
package service

import (
	"fmt"
	"sync"
	"time"

	"github.com/arung-agamani/denpa-radio/internal/show"
	"github.com/arung-agamani/denpa-radio/internal/store"
	"github.com/arung-agamani/denpa-radio/internal/transport"
)

// ShowService owns the one live RunState and serializes every access to it
// behind mu, since RunState itself carries no locking.
type ShowService struct {
	mu    sync.Mutex
	lib   *show.Libraries
	rs    *show.RunState
	sink  *show.ErrSink
	store *store.Store
	out   transport.Sink
}

// NewShowService builds the live RunState. iterationCap overrides RunUntil's
// default 10*logLimit+100 ceiling when positive; callers pass 0 to keep the
// default.
func NewShowService(lib *show.Libraries, sink *show.ErrSink, st *store.Store, out transport.Sink, logLimit, iterationCap int) *ShowService {
	rs := show.NewRunState(lib, sink, logLimit)
	rs.IterationCap = iterationCap
	return &ShowService{
		lib:   lib,
		rs:    rs,
		sink:  sink,
		store: st,
		out:   out,
	}
}

func nowMs() int64 {
	return time.Now().UnixMilli()
}

// Tick advances the scheduler to the current wall-clock time and fans the
// resulting events out through the broadcaster. Callers invoke it on a
// ticker and immediately after any mutating command so a client watching
// the websocket sees the consequence of its own request without delay.
func (s *ShowService) Tick() {
	s.mu.Lock()
	events, actions := s.rs.RunUntil(nowMs())
	s.mu.Unlock()

	if s.out != nil {
		s.out.BroadcastLog(events)
		s.out.BroadcastActions(actions)
	}
}

// Status returns the current scheduler position without ticking first —
// callers that want an up-to-the-millisecond view should Tick then Status.
func (s *ShowService) Status() show.StatusSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return show.GetStatusSnapshot(s.rs)
}

func (s *ShowService) Upcoming() []show.UpcomingEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return show.GetUpcomingItems(s.rs)
}

// UpcomingActions simulates the PlayActions the near future needs — the
// demand signal a prefetch layer drives media loading from.
func (s *ShowService) UpcomingActions(readaheadMs, schedaheadMs int64, maxItems int) []show.PlayAction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return show.GetUpcomingActions(s.rs, readaheadMs, schedaheadMs, maxItems)
}

// PreviewUntil reports the timeline between now and atMs without mutating
// live scheduler state.
func (s *ShowService) PreviewUntil(atMs int64) ([]show.PlaybackLogDetail, []show.PlayAction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return show.ReadOutScheduleUntil(s.rs, atMs)
}

func (s *ShowService) Warnings() []show.ValidationWarning {
	return s.sink.Warnings()
}

// Command dispatches one interactive verb and ticks immediately afterward
// so its effect (a preemption, a pause, a stop) is reflected in the very
// next status/broadcast.
func (s *ShowService) Command(cmd *show.InteractiveCommand) error {
	s.mu.Lock()
	err := s.rs.AddInteractiveCommand(cmd, nowMs())
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.Tick()
	return nil
}

// AddSchedule materializes sp's occurrences over the next horizonMs of wall
// clock and persists the schedule definition itself.
func (s *ShowService) AddSchedule(sp *show.ScheduledPlaylist, horizonMs int64) error {
	s.mu.Lock()
	schedules := append(s.lib.Schedules.NonDeleted(), sp)
	s.lib.SetUpSequences(s.lib.Sequences.List(), s.lib.Playlists.List(), schedules, s.sink)
	if s.lib.Schedules.Get(sp.ID) == nil {
		s.mu.Unlock()
		return fmt.Errorf("schedule %s rejected — see warnings", sp.ID)
	}
	t := nowMs()
	s.rs.AddTimeRangeToSchedule(sp, t, t+horizonMs)
	s.mu.Unlock()

	if s.store != nil {
		if err := s.store.Save(s.lib); err != nil {
			return err
		}
	}
	return nil
}

// Reload replaces all three libraries wholesale (e.g. from an admin-supplied
// bulk edit) and persists the result.
func (s *ShowService) Reload(seqs []*show.Sequence, playlists []*show.Playlist, schedules []*show.ScheduledPlaylist) error {
	s.mu.Lock()
	s.sink.Reset()
	s.lib.SetUpSequences(seqs, playlists, schedules, s.sink)
	s.mu.Unlock()

	if s.store == nil {
		return nil
	}
	return s.store.Save(s.lib)
}

// Shutdown stops everything currently playing/queued gracefully and closes
// the broadcaster.
func (s *ShowService) Shutdown() {
	s.mu.Lock()
	s.rs.StopAll(nowMs(), true)
	s.mu.Unlock()
	if s.out != nil {
		s.out.Close()
	}
}
