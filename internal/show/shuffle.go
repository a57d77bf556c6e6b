package show

// CreateShuffleList builds a reproducible shuffled play order for a
// playlist's sequence ids. seed is combined with the playlist's
// UUID (via CombineSeed) before anything is drawn, so two calls with the
// same seed and playlist always produce byte-identical output regardless of
// what else has touched the shared library in between.
//
// ids is the playlist's ordered sequence-id list (its "n" for the
// do-not-repeat window and refill pool); lib resolves each id's duration so
// accumulation can stop once min_ms has been covered.
func CreateShuffleList(seed int64, playlistID string, ids []string, minMs int64, lib *SequenceLibrary) []string {
	n := len(ids)
	if n == 0 {
		return nil
	}

	combined := CombineSeed(seed, playlistID)
	rng := NewRand128(combined)
	for i := 0; i < 10; i++ {
		rng.NextUint64() // warmup
	}

	capacity := n / 2 // floor(n/2)

	var dnr []string // do-not-repeat window, oldest at index 0
	inDNR := func(id string) bool {
		for _, d := range dnr {
			if d == id {
				return true
			}
		}
		return false
	}
	pushDNR := func(id string) {
		dnr = append(dnr, id)
		for len(dnr) > capacity {
			dnr = dnr[1:]
		}
	}

	sel := append([]string(nil), ids...)
	refill := func() {
		sel = append(sel[:0:0], ids...)
	}

	var out []string
	var accMs int64

	// maxAttempts bounds the inner re-pick loop so a pathological window
	// (every remaining candidate currently forbidden) can't spin forever;
	// it is a termination guard, not part of the selection rule.
	maxAttempts := 4*n + 16

	for accMs < minMs {
		if len(sel) == 0 {
			refill()
		}

		var picked string
		attempts := 0
		for {
			k := rng.NextInt(len(sel))
			candidate := sel[k]
			attempts++
			if !inDNR(candidate) || attempts >= maxAttempts {
				picked = candidate
				// remove by swap-with-last
				last := len(sel) - 1
				sel[k] = sel[last]
				sel = sel[:last]
				break
			}
		}

		pushDNR(picked)
		out = append(out, picked)

		if seq := lib.Get(picked); seq != nil {
			accMs += GetTotalSeqTimeMs(seq)
		}
		// a missing sequence contributes nothing to accumulated duration;
		// if every referenced sequence is missing/zero-length this loop
		// would spin, so guard against that degenerate case too.
		if allZeroOrMissing(ids, lib) {
			break
		}
	}

	return out
}

func allZeroOrMissing(ids []string, lib *SequenceLibrary) bool {
	for _, id := range ids {
		if s := lib.Get(id); s != nil && GetTotalSeqTimeMs(s) > 0 {
			return false
		}
	}
	return true
}
