// Package transport fans out the scheduler core's output — PlaybackLogDetail
// events and PlayAction instructions — to whatever is actually rendering the
// show.
package transport

import "github.com/arung-agamani/denpa-radio/internal/show"

// Sink receives the scheduler core's output as it happens. RunState itself
// never calls a Sink directly (the core stays pure); a caller
// drains RunUntil's returned log and forwards it through a Sink after the
// fact, which keeps broadcast fan-out entirely outside the simulation.
type Sink interface {
	BroadcastLog(entries []show.PlaybackLogDetail)
	BroadcastActions(actions []show.PlayAction)
	Close()
}

// multiSink fans out to more than one Sink, e.g. a websocket broadcaster
// plus a metrics recorder, without either needing to know about the other.
type multiSink struct {
	sinks []Sink
}

func NewMultiSink(sinks ...Sink) Sink {
	return &multiSink{sinks: sinks}
}

func (m *multiSink) BroadcastLog(entries []show.PlaybackLogDetail) {
	for _, s := range m.sinks {
		s.BroadcastLog(entries)
	}
}

func (m *multiSink) BroadcastActions(actions []show.PlayAction) {
	for _, s := range m.sinks {
		s.BroadcastActions(actions)
	}
}

func (m *multiSink) Close() {
	for _, s := range m.sinks {
		s.Close()
	}
}
