package show

// EventType is the closed set of event kinds a PlaybackLogDetail may carry.
type EventType string

const (
	EventScheduleStarted   EventType = "Schedule Started"
	EventScheduleEnded     EventType = "Schedule Ended"
	EventScheduleStopped   EventType = "Schedule Stopped"
	EventSchedulePrevented EventType = "Schedule Prevented"
	EventScheduleDeferred  EventType = "Schedule Deferred"
	EventScheduleSuspended EventType = "Schedule Suspended"
	EventScheduleResumed   EventType = "Schedule Resumed"

	EventPlaylistStarted EventType = "Playlist Started"
	EventPlaylistEnded   EventType = "Playlist Ended"

	EventSequenceStarted EventType = "Sequence Started"
	EventSequenceEnded   EventType = "Sequence Ended"
	EventSequencePaused  EventType = "Sequence Paused"
	EventSequenceResumed EventType = "Sequence Resumed"
)

// EntryIntoPlaylist is the [part, index] pair recorded on Playlist Started.
type EntryIntoPlaylist struct {
	Part  int `json:"part"`
	Index int `json:"index"`
}

// PlaybackLogDetail is one entry in the event log.
type PlaybackLogDetail struct {
	EventType         EventType          `json:"event_type"`
	EventTimeMs       int64              `json:"event_time_ms"`
	StackDepth        int                `json:"stack_depth"`
	ScheduleID        string             `json:"schedule_id,omitempty"`
	PlaylistID        string             `json:"playlist_id,omitempty"`
	SequenceID        string             `json:"sequence_id,omitempty"`
	RequestID         string             `json:"request_id,omitempty"`
	EntryIntoPlaylist *EntryIntoPlaylist `json:"entry_into_playlist,omitempty"`
	TimeIntoSeqMs     *int64             `json:"time_into_seq_ms,omitempty"`
}

// eventLog is an append-only buffer a single run_until call writes into.
// Kept as its own tiny type (rather than a bare []PlaybackLogDetail) so
// RunUntil can cheaply check "have we hit the limit yet" without the caller
// needing to know the field name.
type eventLog struct {
	entries []PlaybackLogDetail
	limit   int // 0 means unlimited
}

func newEventLog(limit int) *eventLog {
	return &eventLog{limit: limit}
}

func (l *eventLog) append(e PlaybackLogDetail) {
	l.entries = append(l.entries, e)
}

func (l *eventLog) reachedLimit() bool {
	return l.limit > 0 && len(l.entries) >= l.limit
}
