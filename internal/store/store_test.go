package store

import (
	"path/filepath"
	"testing"

	"github.com/arung-agamani/denpa-radio/internal/show"
	"github.com/matryer/is"
)

func TestSaveThenLoadRoundTrips(t *testing.T) {
	is := is.New(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "show.json")

	st, err := New(path)
	is.NoErr(err)
	is.True(!st.Exists())

	lb := show.NewLibraries()
	sink := show.NewErrSink()
	lb.SetUpSequences(
		[]*show.Sequence{{ID: "seqA", WorkLength: 10}},
		[]*show.Playlist{{ID: "plMain", Items: []show.PlaylistItemRef{{SeqID: "seqA", Ordinal: 0}}}},
		[]*show.ScheduledPlaylist{{
			ID:         "sched1",
			PlaylistID: "plMain",
			FromTime:   "00:00",
			ToTime:     "00:00:20",
			Priority:   show.PriorityMedium,
			EndPolicy:  show.EndPolicySeqBoundNearest,
		}},
		sink,
	)
	is.Equal(len(sink.Warnings()), 0)

	is.NoErr(st.Save(lb))
	is.True(st.Exists())

	loadSink := show.NewErrSink()
	loaded, err := st.Load(loadSink)
	is.NoErr(err)
	is.Equal(len(loadSink.Warnings()), 0)
	is.Equal(len(loaded.Sequences.List()), 1)
	is.Equal(len(loaded.Playlists.List()), 1)
	is.Equal(len(loaded.Schedules.NonDeleted()), 1)
	is.Equal(loaded.Sequences.List()[0].ID, "seqA")
}

func TestLoadMissingFileFails(t *testing.T) {
	is := is.New(t)
	dir := t.TempDir()
	st, err := New(filepath.Join(dir, "show.json"))
	is.NoErr(err)

	_, err = st.Load(show.NewErrSink())
	is.True(err != nil)
}
