package show

// Sequence is a single media item with a duration and optional lead/trail
// padding or trim. LeadTime/TrailTime are seconds and may be negative — a
// negative value trims that much off the front or back of the raw work
// instead of padding it.
type Sequence struct {
	ID         string   `json:"id"`
	InstanceID string   `json:"instance_id,omitempty"`
	WorkLength float64  `json:"work_length"` // seconds
	LeadTime   *float64 `json:"lead_time,omitempty"`
	TrailTime  *float64 `json:"trail_time,omitempty"`
	Deleted    bool     `json:"deleted,omitempty"`
}

// PlaylistItemRef is one entry in a Playlist's ordered item list.
type PlaylistItemRef struct {
	SeqID   string `json:"seq_id"`
	Ordinal int    `json:"ordinal"`
}

// Playlist is an ordered reference to sequences.
type Playlist struct {
	ID      string            `json:"id"`
	Title   string            `json:"title,omitempty"`
	Items   []PlaylistItemRef `json:"items"`
	Deleted bool              `json:"deleted,omitempty"`
}

// OrderedSeqIDs returns the playlist's sequence ids in ordinal order.
func (p *Playlist) OrderedSeqIDs() []string {
	items := make([]PlaylistItemRef, len(p.Items))
	copy(items, p.Items)
	// stable ordinal sort; ordinals are expected small and mostly sorted
	// already so this is effectively O(n) in practice.
	for i := 1; i < len(items); i++ {
		j := i
		for j > 0 && items[j-1].Ordinal > items[j].Ordinal {
			items[j-1], items[j] = items[j], items[j-1]
			j--
		}
	}
	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.SeqID
	}
	return ids
}

// Priority is the closed set of schedule priority names; PriorityToNumber
// maps each to the 1..9 tier the heap comparator sorts on.
type Priority string

const (
	PriorityHighest Priority = "highest"
	PriorityVHigh   Priority = "vhigh"
	PriorityHigh    Priority = "high"
	PriorityMedHigh Priority = "medhigh"
	PriorityMedium  Priority = "medium"
	PriorityNormal  Priority = "normal"
	PriorityMedLow  Priority = "medlow"
	PriorityLow     Priority = "low"
	PriorityVLow    Priority = "vlow"
	PriorityLowest  Priority = "lowest"
)

var priorityToNumber = map[Priority]int{
	PriorityHighest: 1,
	PriorityVHigh:   2,
	PriorityHigh:    3,
	PriorityMedHigh: 4,
	PriorityMedium:  5,
	PriorityNormal:  5,
	PriorityMedLow:  6,
	PriorityLow:     7,
	PriorityVLow:    8,
	PriorityLowest:  9,
}

// PriorityToNumber resolves a priority name to its 1..9 tier (lower is
// higher priority), defaulting to "medium" (5) for an empty or unknown name.
func PriorityToNumber(p Priority) int {
	if p == "" {
		p = PriorityMedium
	}
	if n, ok := priorityToNumber[p]; ok {
		return n
	}
	return priorityToNumber[PriorityMedium]
}

// EndPolicy governs how a schedule truncates its looping main section to
// meet its scheduled end.
type EndPolicy string

const (
	EndPolicyHardCut         EndPolicy = "hardcut"
	EndPolicySeqBoundEarly   EndPolicy = "seqboundearly"
	EndPolicySeqBoundLate    EndPolicy = "seqboundlate"
	EndPolicySeqBoundNearest EndPolicy = "seqboundnearest"
)

// ScheduledPlaylist binds a playlist to a day and time window with
// priority, end policy, and preemption flags.
type ScheduledPlaylist struct {
	ID             string `json:"id"`
	PlaylistID     string `json:"playlist_id"`
	PrePlaylistID  string `json:"pre_playlist_id,omitempty"`  // empty means "no pre section"
	PostPlaylistID string `json:"post_playlist_id,omitempty"` // empty means "no post section"

	DateMs   int64  `json:"date"`      // ms epoch of the nominal day (midnight)
	FromTime string `json:"from_time"` // "HH:MM[:SS]"
	ToTime   string `json:"to_time"`   // "HH:MM[:SS]"

	Shuffle                     bool      `json:"shuffle,omitempty"`
	Loop                        bool      `json:"loop,omitempty"`
	HardCutIn                   bool      `json:"hard_cut_in,omitempty"`
	PreferHardCutIn             bool      `json:"prefer_hard_cut_in,omitempty"`
	KeepToScheduleWhenPreempted bool      `json:"keep_to_schedule_when_preempted,omitempty"`
	EndPolicy                   EndPolicy `json:"end_policy,omitempty"`
	Priority                    Priority  `json:"priority,omitempty"`

	Deleted bool `json:"deleted,omitempty"`
}

// ItemType distinguishes how a PlaybackItem entered the scheduler.
type ItemType int

const (
	ItemScheduled ItemType = iota
	ItemImmediate
	ItemQueued
)

func (t ItemType) String() string {
	switch t {
	case ItemScheduled:
		return "scheduled"
	case ItemImmediate:
		return "immediate"
	case ItemQueued:
		return "queued"
	default:
		return "unknown"
	}
}
