package show

import "fmt"

// Section is a linear (ids, durations, total) triple — the shape shared by
// the pre and post sections of a PlaybackItem.
type Section struct {
	IDs   []string
	Durs  []int64
	Total int64
}

// MainSection additionally tracks the longest single item (needed by the
// seqboundnearest end policy) and whether the cursor should wrap modulo
// len(IDs) once it reaches the end.
type MainSection struct {
	Section
	Longest int64
	Loop    bool
}

// PlaybackItem is a materialized occurrence: a schedule or interactive
// command turned into a concrete pre/main/post triple with resolved
// durations and (for shuffled main sections) an already-expanded play
// order.
type PlaybackItem struct {
	ItemType                    ItemType
	PriorityTier                int
	TimeBasedPri                int64
	CutOffPrevious              bool
	HardCutIn                   bool
	PreferHardCutIn             bool
	KeepToScheduleWhenPreempted bool
	EndPolicy                   EndPolicy

	ItemID     string
	ScheduleID string // empty unless this occurrence came from a schedule
	RequestID  string // empty unless this occurrence came from an interactive command

	SchedStartMs int64
	SchedEndMs   int64

	// HasPre/HasPost record whether a pre/post playlist was configured at
	// all. The cursor does not consult these — an empty resolved section
	// produces zero events whether or not a playlist id was configured for
	// it — but the query surface reports them so a caller can distinguish
	// "no pre-roll configured" from "pre-roll configured but empty".
	HasPre  bool
	HasPost bool

	// PrePlaylistID/PlaylistID/PostPlaylistID are the underlying playlist
	// ids each section was resolved from, carried through for the
	// playlist_id field on Playlist Started/Ended log entries.
	PrePlaylistID  string
	PlaylistID     string
	PostPlaylistID string

	PreSection  Section
	MainSection MainSection
	PostSection Section
}

// buildSection resolves a playlist id into a Section, warning (but not
// failing) if the playlist can't be found.
func buildSection(playlistID string, lb *Libraries, sink *ErrSink) Section {
	pl := lb.Playlists.Get(playlistID)
	if pl == nil {
		sink.Add(WarnUnknownPlaylist, playlistID, "referenced playlist not found")
		return Section{}
	}
	ids := pl.OrderedSeqIDs()
	durs, total, _ := ResolveSectionDurations(ids, lb.Sequences, sink)
	return Section{IDs: ids, Durs: durs, Total: total}
}

// BuildPlaybackItemFromSchedule materializes a ScheduledPlaylist's next
// occurrence, deriving its start/end from date+from_time/to_time.
func BuildPlaybackItemFromSchedule(sp *ScheduledPlaylist, lb *Libraries, sink *ErrSink) (*PlaybackItem, error) {
	startMs, endMs, err := DeriveScheduleTimes(sp)
	if err != nil {
		return nil, err
	}
	return buildFromScheduleAt(sp, startMs, endMs, lb, sink)
}

func buildFromScheduleAt(sp *ScheduledPlaylist, startMs, endMs int64, lb *Libraries, sink *ErrSink) (*PlaybackItem, error) {
	item := &PlaybackItem{
		ItemType:                    ItemScheduled,
		PriorityTier:                PriorityToNumber(sp.Priority),
		TimeBasedPri:                startMs,
		HardCutIn:                   sp.HardCutIn,
		PreferHardCutIn:             sp.PreferHardCutIn,
		KeepToScheduleWhenPreempted: sp.KeepToScheduleWhenPreempted,
		EndPolicy:                   sp.EndPolicy,
		ItemID:                      sp.ID,
		ScheduleID:                  sp.ID,
		SchedStartMs:                startMs,
		SchedEndMs:                  endMs,
	}
	if item.EndPolicy == "" {
		item.EndPolicy = EndPolicySeqBoundNearest
	}

	if sp.PrePlaylistID != "" {
		item.HasPre = true
		item.PrePlaylistID = sp.PrePlaylistID
		item.PreSection = buildSection(sp.PrePlaylistID, lb, sink)
	}
	if sp.PostPlaylistID != "" {
		item.HasPost = true
		item.PostPlaylistID = sp.PostPlaylistID
		item.PostSection = buildSection(sp.PostPlaylistID, lb, sink)
	}
	item.PlaylistID = sp.PlaylistID

	var mainIDs []string
	pl := lb.Playlists.Get(sp.PlaylistID)
	if pl == nil {
		sink.Add(WarnUnknownPlaylist, sp.PlaylistID, fmt.Sprintf("schedule %s playlist_id not found", sp.ID))
	} else {
		mainIDs = pl.OrderedSeqIDs()
	}

	if sp.Shuffle && len(mainIDs) > 0 {
		minMs := endMs - startMs
		if minMs < 0 {
			minMs = 0
		}
		mainIDs = CreateShuffleList(startMs, sp.PlaylistID, mainIDs, minMs, lb.Sequences)
	}

	durs, total, longest := ResolveSectionDurations(mainIDs, lb.Sequences, sink)
	item.MainSection = MainSection{
		Section: Section{IDs: mainIDs, Durs: durs, Total: total},
		Longest: longest,
		Loop:    sp.Loop || sp.Shuffle,
	}
	return item, nil
}

// CommandVerb is the closed set of interactive command verbs.
type CommandVerb string

const (
	CmdPlaySong          CommandVerb = "playsong"
	CmdPlayPlaylist      CommandVerb = "playplaylist"
	CmdDeleteRequest     CommandVerb = "deleterequest"
	CmdClearRequests     CommandVerb = "clearrequests"
	CmdStopNow           CommandVerb = "stopnow"
	CmdStopGraceful      CommandVerb = "stopgraceful"
	CmdPause             CommandVerb = "pause"
	CmdResume            CommandVerb = "resume"
	CmdSuppressOutput    CommandVerb = "suppressoutput"
	CmdActivateOutput    CommandVerb = "activateoutput"
	CmdSetVolume         CommandVerb = "setvolume"
	CmdResetStats        CommandVerb = "resetstats"
	CmdReloadControllers CommandVerb = "reloadcontrollers"
	CmdResetPlayback     CommandVerb = "resetplayback"
)

// InteractiveCommand is one entry pushed through AddInteractiveCommand. Only
// playsong/playplaylist (optionally targeting a schedule id instead) carry
// enough information to build a PlaybackItem; the remaining verbs are
// surface signals forwarded to external collaborators and are
// handled by RunState without going through BuildPlaybackItemFromCommand.
type InteractiveCommand struct {
	Verb        CommandVerb `json:"verb"`
	SeqID       string      `json:"seq_id,omitempty"`
	PlaylistID  string      `json:"playlist_id,omitempty"`
	ScheduleID  string      `json:"schedule_id,omitempty"`
	Immediate   bool        `json:"immediate,omitempty"`
	Priority    Priority    `json:"priority,omitempty"`
	RequestID   string      `json:"request_id"`
	StartTimeMs int64       `json:"start_time_ms,omitempty"` // <= 0 means "now"
}

const defaultInteractiveHorizonMs = 24 * 3600 * 1000

// BuildPlaybackItemFromCommand materializes an interactive play command into
// a PlaybackItem.
func BuildPlaybackItemFromCommand(cmd *InteractiveCommand, t int64, lb *Libraries, sink *ErrSink) (*PlaybackItem, error) {
	schedStart := cmd.StartTimeMs
	if schedStart <= 0 {
		schedStart = t
	}
	schedEnd := schedStart + defaultInteractiveHorizonMs

	itemType := ItemQueued
	tier := 2
	if cmd.Immediate {
		itemType = ItemImmediate
		tier = 1
	}

	if cmd.ScheduleID != "" {
		return nil, fmt.Errorf("interactive command %s: schedule-id commands must go through BuildPlaybackItemFromCommandSchedule", cmd.RequestID)
	}

	item := &PlaybackItem{
		ItemType:       itemType,
		PriorityTier:   tier,
		TimeBasedPri:   schedStart,
		CutOffPrevious: cmd.Immediate,
		HardCutIn:      cmd.Immediate,
		EndPolicy:      EndPolicySeqBoundNearest,
		ItemID:         cmd.RequestID,
		RequestID:      cmd.RequestID,
		SchedStartMs:   schedStart,
		SchedEndMs:     schedEnd,
	}

	var mainIDs []string
	switch {
	case cmd.PlaylistID != "":
		pl := lb.Playlists.Get(cmd.PlaylistID)
		if pl == nil {
			sink.Add(WarnUnknownPlaylist, cmd.PlaylistID, "interactive command references unknown playlist")
		} else {
			mainIDs = pl.OrderedSeqIDs()
		}
		item.PlaylistID = cmd.PlaylistID
	case cmd.SeqID != "":
		if lb.Sequences.Get(cmd.SeqID) == nil {
			sink.Add(WarnUnknownSequence, cmd.SeqID, "interactive command references unknown sequence")
		}
		mainIDs = []string{cmd.SeqID}
		item.PlaylistID = "adhoc:" + cmd.SeqID
	default:
		return nil, fmt.Errorf("interactive command %s: no seq_id, playlist_id, or schedule_id given", cmd.RequestID)
	}

	durs, total, longest := ResolveSectionDurations(mainIDs, lb.Sequences, sink)
	item.MainSection = MainSection{
		Section: Section{IDs: mainIDs, Durs: durs, Total: total},
		Longest: longest,
		Loop:    false,
	}
	return item, nil
}

// BuildPlaybackItemFromCommandSchedule handles the "target a schedule id"
// interactive variant: re-materialize the schedule's own playlist
// structure, but override timing and priority with the interactive
// command's values.
func BuildPlaybackItemFromCommandSchedule(cmd *InteractiveCommand, sp *ScheduledPlaylist, t int64, lb *Libraries, sink *ErrSink) (*PlaybackItem, error) {
	schedStart := cmd.StartTimeMs
	if schedStart <= 0 {
		schedStart = t
	}
	schedEnd := schedStart + defaultInteractiveHorizonMs

	item, err := buildFromScheduleAt(sp, schedStart, schedEnd, lb, sink)
	if err != nil {
		return nil, err
	}

	item.ItemType = ItemQueued
	tier := 2
	if cmd.Immediate {
		item.ItemType = ItemImmediate
		tier = 1
	}
	item.PriorityTier = tier
	item.CutOffPrevious = cmd.Immediate
	item.HardCutIn = cmd.Immediate || item.HardCutIn
	item.ItemID = cmd.RequestID
	item.RequestID = cmd.RequestID
	item.ScheduleID = sp.ID
	return item, nil
}
