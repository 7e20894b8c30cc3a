package rnndescent

import (
	"math/rand"
	"sort"
)

// genRandomDistinct fills dst with size ids drawn uniformly without
// replacement from [0, n), using the rejection-free scheme from the
// original implementation: sample size values in [0, n-size), force a
// strict increase so duplicates introduced by the narrower range collapse
// into distinct slots, then rotate the whole set by a random offset modulo
// n. The result does not need to match any particular distribution byte
// for byte; it only needs to be size distinct ids with uniform-enough
// coverage of [0, n).
//
// When size >= n there are not size distinct values to draw (rng.Intn(n -
// size) would be called with a non-positive argument and panic), so this
// falls back to a uniform permutation of [0, n) and wraps it to fill any
// slots beyond n. This is the path exercised whenever a caller's pool size
// meets or exceeds the vertex count, e.g. search_L == N.
func genRandomDistinct(rng *rand.Rand, dst []int32, size, n int) {
	if size <= 0 {
		return
	}
	if size >= n {
		perm := rng.Perm(n)
		for i := 0; i < size; i++ {
			dst[i] = int32(perm[i%n])
		}
		return
	}

	for i := 0; i < size; i++ {
		dst[i] = int32(rng.Intn(n - size))
	}
	sort.Slice(dst[:size], func(i, j int) bool { return dst[i] < dst[j] })
	for i := 1; i < size; i++ {
		if dst[i] <= dst[i-1] {
			dst[i] = dst[i-1] + 1
		}
	}
	off := int32(rng.Intn(n))
	for i := 0; i < size; i++ {
		dst[i] = (dst[i] + off) % int32(n)
	}
}

// seedWorker derives the seed for worker index w, matching the original's
// randomSeed*7741 + w convention.
func seedWorker(randomSeed int64, w int) int64 { return randomSeed*7741 + int64(w) }
