package service

import (
	"testing"

	"github.com/arung-agamani/denpa-radio/internal/show"
	"github.com/matryer/is"
)

type noopSink struct {
	logCalls     int
	actionCalls  int
	closed       bool
}

func (n *noopSink) BroadcastLog(entries []show.PlaybackLogDetail) { n.logCalls++ }
func (n *noopSink) BroadcastActions(actions []show.PlayAction)    { n.actionCalls++ }
func (n *noopSink) Close()                                        { n.closed = true }

func newTestLibraries() *show.Libraries {
	lb := show.NewLibraries()
	sink := show.NewErrSink()
	lb.SetUpSequences(
		[]*show.Sequence{{ID: "seqA", WorkLength: 5}},
		[]*show.Playlist{{ID: "plMain", Items: []show.PlaylistItemRef{{SeqID: "seqA", Ordinal: 0}}}},
		nil,
		sink,
	)
	return lb
}

func TestShowServiceTickBroadcastsThroughSink(t *testing.T) {
	is := is.New(t)
	lb := newTestLibraries()
	sink := show.NewErrSink()
	out := &noopSink{}

	svc := NewShowService(lb, sink, nil, out, 0, 0)
	svc.Tick()

	is.True(out.logCalls >= 1)
	is.True(out.actionCalls >= 1)
}

func TestShowServiceCommandWarnsOnUnknownPlaylist(t *testing.T) {
	is := is.New(t)
	lb := newTestLibraries()
	sink := show.NewErrSink()
	svc := NewShowService(lb, sink, nil, &noopSink{}, 0, 0)

	err := svc.Command(&show.InteractiveCommand{
		RequestID:  "req1",
		Verb:       show.CmdPlayPlaylist,
		PlaylistID: "does-not-exist",
	})
	is.NoErr(err)
	is.True(len(svc.Warnings()) >= 1)
}

func TestShowServiceShutdownClosesSink(t *testing.T) {
	is := is.New(t)
	lb := newTestLibraries()
	sink := show.NewErrSink()
	out := &noopSink{}
	svc := NewShowService(lb, sink, nil, out, 0, 0)

	svc.Shutdown()
	is.True(out.closed)
}
