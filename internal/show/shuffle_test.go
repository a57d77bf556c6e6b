package show

import (
	"testing"

	"github.com/matryer/is"
)

func buildSeqLib(ids []string, durMs int64) *SequenceLibrary {
	lib := NewSequenceLibrary()
	seqs := make([]*Sequence, len(ids))
	for i, id := range ids {
		seqs[i] = &Sequence{ID: id, WorkLength: float64(durMs) / 1000}
	}
	lib.replaceAll(seqs, NewErrSink())
	return lib
}

func TestCreateShuffleListReproducible(t *testing.T) {
	is := is.New(t)
	ids := []string{"a", "b", "c", "d"}
	lib := buildSeqLib(ids, 1000)

	out1 := CreateShuffleList(42, "playlist-x", ids, 5000, lib)
	out2 := CreateShuffleList(42, "playlist-x", ids, 5000, lib)
	is.Equal(len(out1), len(out2))
	for i := range out1 {
		is.Equal(out1[i], out2[i])
	}
}

func TestCreateShuffleListCoversMinDuration(t *testing.T) {
	is := is.New(t)
	ids := []string{"a", "b", "c"}
	lib := buildSeqLib(ids, 1000)

	out := CreateShuffleList(1, "playlist-y", ids, 6500, lib)
	var acc int64
	for _, id := range out {
		acc += GetTotalSeqTimeMs(lib.Get(id))
	}
	is.True(acc >= 6500)
}

func TestCreateShuffleListRespectsDoNotRepeatWindow(t *testing.T) {
	is := is.New(t)
	ids := []string{"a", "b", "c", "d", "e", "f"}
	lib := buildSeqLib(ids, 1000)

	out := CreateShuffleList(77, "playlist-z", ids, 20000, lib)
	window := len(ids) / 2
	for i := window; i < len(out); i++ {
		for j := i - window; j < i; j++ {
			is.True(out[j] != out[i]) // no id repeats within the do-not-repeat window
		}
	}
}

func TestCreateShuffleListEmptyPlaylist(t *testing.T) {
	is := is.New(t)
	lib := NewSequenceLibrary()
	out := CreateShuffleList(1, "playlist-empty", nil, 10000, lib)
	is.Equal(len(out), 0)
}
