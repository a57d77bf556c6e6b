package show

// PlayAction is a pending instruction to render a specific sequence at a
// specific offset for a specific duration, starting at a specific clock —
// or, when End is true, a terminal marker meaning the owning cursor has
// nothing further to produce.
type PlayAction struct {
	End        bool   `json:"end"`
	AtTimeMs   int64  `json:"at_time_ms"`
	SeqID      string `json:"seq_id,omitempty"`
	OffsetMs   int64  `json:"offset_ms,omitempty"`
	DurationMs int64  `json:"duration_ms,omitempty"`
}
