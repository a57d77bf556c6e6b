package transport

import (
	"testing"

	"github.com/arung-agamani/denpa-radio/internal/show"
	"github.com/matryer/is"
)

type recordingSink struct {
	logs    [][]show.PlaybackLogDetail
	actions [][]show.PlayAction
	closed  bool
}

func (r *recordingSink) BroadcastLog(entries []show.PlaybackLogDetail) {
	r.logs = append(r.logs, entries)
}

func (r *recordingSink) BroadcastActions(actions []show.PlayAction) {
	r.actions = append(r.actions, actions)
}

func (r *recordingSink) Close() {
	r.closed = true
}

func TestMultiSinkFansOutToEverySink(t *testing.T) {
	is := is.New(t)
	a := &recordingSink{}
	b := &recordingSink{}
	m := NewMultiSink(a, b)

	entries := []show.PlaybackLogDetail{{EventType: show.EventSequenceStarted, SequenceID: "seqA"}}
	m.BroadcastLog(entries)
	is.Equal(len(a.logs), 1)
	is.Equal(len(b.logs), 1)

	actions := []show.PlayAction{{SeqID: "seqA", OffsetMs: 0}}
	m.BroadcastActions(actions)
	is.Equal(len(a.actions), 1)
	is.Equal(len(b.actions), 1)

	m.Close()
	is.True(a.closed)
	is.True(b.closed)
}

func TestMultiSinkWithNoSinksIsANoOp(t *testing.T) {
	m := NewMultiSink()
	m.BroadcastLog(nil)
	m.BroadcastActions(nil)
	m.Close()
}
