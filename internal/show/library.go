package show

import "sync"

// SequenceLibrary is the single source of truth for known sequences, keyed
// by id. Soft-deleted records (Deleted=true) are filtered out of Get/List so
// the rest of the core never has to check the flag itself — mirrors the
// teacher's TrackLibrary, where a map-of-pointers is the library and lookups
// never leak a stale record.
type SequenceLibrary struct {
	mu   sync.RWMutex
	byID map[string]*Sequence
}

func NewSequenceLibrary() *SequenceLibrary {
	return &SequenceLibrary{byID: make(map[string]*Sequence)}
}

// Get returns the sequence with the given id, or nil if absent or deleted.
func (l *SequenceLibrary) Get(id string) *Sequence {
	if l == nil {
		return nil
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	s, ok := l.byID[id]
	if !ok || s.Deleted {
		return nil
	}
	return s
}

// List returns every non-deleted sequence.
func (l *SequenceLibrary) List() []*Sequence {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]*Sequence, 0, len(l.byID))
	for _, s := range l.byID {
		if !s.Deleted {
			out = append(out, s)
		}
	}
	return out
}

// replaceAll rebuilds the library from scratch, soft-deleting records whose
// Deleted flag is set and reporting duplicate non-deleted ids to sink. The
// first non-deleted record under an id wins; later duplicates are reported
// and dropped.
func (l *SequenceLibrary) replaceAll(seqs []*Sequence, sink *ErrSink) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.byID = make(map[string]*Sequence, len(seqs))
	for _, s := range seqs {
		if s == nil {
			continue
		}
		if s.Deleted {
			l.byID[s.ID] = s
			continue
		}
		if existing, ok := l.byID[s.ID]; ok && !existing.Deleted {
			sink.Add(WarnDuplicateID, s.ID, "duplicate sequence id; keeping first entry")
			continue
		}
		l.byID[s.ID] = s
	}
}

// PlaylistLibrary is the analogous soft-delete-aware store for playlists.
type PlaylistLibrary struct {
	mu   sync.RWMutex
	byID map[string]*Playlist
}

func NewPlaylistLibrary() *PlaylistLibrary {
	return &PlaylistLibrary{byID: make(map[string]*Playlist)}
}

func (l *PlaylistLibrary) Get(id string) *Playlist {
	if l == nil {
		return nil
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	p, ok := l.byID[id]
	if !ok || p.Deleted {
		return nil
	}
	return p
}

func (l *PlaylistLibrary) List() []*Playlist {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]*Playlist, 0, len(l.byID))
	for _, p := range l.byID {
		if !p.Deleted {
			out = append(out, p)
		}
	}
	return out
}

func (l *PlaylistLibrary) replaceAll(pls []*Playlist, seqLib *SequenceLibrary, sink *ErrSink) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.byID = make(map[string]*Playlist, len(pls))
	for _, p := range pls {
		if p == nil {
			continue
		}
		if p.Deleted {
			l.byID[p.ID] = p
			continue
		}
		if existing, ok := l.byID[p.ID]; ok && !existing.Deleted {
			sink.Add(WarnDuplicateID, p.ID, "duplicate playlist id; keeping first entry")
			continue
		}
		l.byID[p.ID] = p
		for _, ref := range p.Items {
			if seqLib.Get(ref.SeqID) == nil {
				sink.Add(WarnUnknownSequence, ref.SeqID, "playlist "+p.ID+" references unknown sequence")
			}
		}
	}
}

// ScheduleLibrary stores scheduled playlists, keyed by id.
type ScheduleLibrary struct {
	mu   sync.RWMutex
	byID map[string]*ScheduledPlaylist
}

func NewScheduleLibrary() *ScheduleLibrary {
	return &ScheduleLibrary{byID: make(map[string]*ScheduledPlaylist)}
}

func (l *ScheduleLibrary) Get(id string) *ScheduledPlaylist {
	if l == nil {
		return nil
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	s, ok := l.byID[id]
	if !ok || s.Deleted {
		return nil
	}
	return s
}

// NonDeleted returns every schedule that has not been soft-deleted.
func (l *ScheduleLibrary) NonDeleted() []*ScheduledPlaylist {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]*ScheduledPlaylist, 0, len(l.byID))
	for _, s := range l.byID {
		if !s.Deleted {
			out = append(out, s)
		}
	}
	return out
}

func (l *ScheduleLibrary) replaceAll(scheds []*ScheduledPlaylist, plLib *PlaylistLibrary, sink *ErrSink) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.byID = make(map[string]*ScheduledPlaylist, len(scheds))
	for _, s := range scheds {
		if s == nil {
			continue
		}
		if s.Deleted {
			l.byID[s.ID] = s
			continue
		}
		if existing, ok := l.byID[s.ID]; ok && !existing.Deleted {
			sink.Add(WarnDuplicateID, s.ID, "duplicate schedule id; keeping first entry")
			continue
		}
		l.byID[s.ID] = s
		if plLib.Get(s.PlaylistID) == nil {
			sink.Add(WarnUnknownPlaylist, s.PlaylistID, "schedule "+s.ID+" references unknown playlist")
		}
	}
}

// Libraries bundles the three declarative stores the scheduler reads from.
// SetUpSequences below is the public entry point that rebuilds all three
// together, since playlist/schedule validation needs to cross-reference the
// sequence and playlist libraries respectively.
type Libraries struct {
	Sequences *SequenceLibrary
	Playlists *PlaylistLibrary
	Schedules *ScheduleLibrary
}

func NewLibraries() *Libraries {
	return &Libraries{
		Sequences: NewSequenceLibrary(),
		Playlists: NewPlaylistLibrary(),
		Schedules: NewScheduleLibrary(),
	}
}

// SetUpSequences rebuilds all three libraries. This does not mutate a
// RunState's stack/heap/queue — see RunState.SetUpSequences for the
// entry point callers actually use, which forwards here.
func (lb *Libraries) SetUpSequences(seqs []*Sequence, playlists []*Playlist, schedules []*ScheduledPlaylist, sink *ErrSink) {
	lb.Sequences.replaceAll(seqs, sink)
	lb.Playlists.replaceAll(playlists, lb.Sequences, sink)
	lb.Schedules.replaceAll(schedules, lb.Playlists, sink)
}
