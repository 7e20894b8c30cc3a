package rnndescent

import "sync"

// parallelChunks runs fn once per chunk of [0, n), distributing chunkSize-
// sized ranges across workers goroutines via a buffered job channel. This
// mirrors the worker-pool shape used elsewhere in this module for batch
// vector operations: a channel of jobs, a fixed goroutine pool draining it,
// and a WaitGroup barrier before the caller proceeds. Vertex order within
// and across chunks is not meaningful to the algorithm; only that every
// index in [0, n) is visited exactly once.
func parallelChunks(n, workers, chunkSize int, fn func(lo, hi int)) {
	parallelChunksState(n, workers, chunkSize,
		func(int) struct{} { return struct{}{} },
		func(lo, hi int, _ struct{}) { fn(lo, hi) },
	)
}

// parallelFor is parallelChunks specialized to one vertex per job, used
// where per-vertex work is expensive enough that fine-grained scheduling
// matters (e.g. the AddReverseEdges passes).
func parallelFor(n, workers int, fn func(i int)) {
	parallelChunks(n, workers, 1, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			fn(i)
		}
	})
}

// parallelChunksState is parallelChunks with one piece of per-worker state
// (a DistanceComputer, an RNG, or both bundled in a struct) constructed once
// per goroutine via newState and reused across every chunk that goroutine
// drains. Worker index assignment is by goroutine launch order, matching the
// original's per-thread-index seed derivation.
func parallelChunksState[S any](n, workers, chunkSize int, newState func(workerIdx int) S, fn func(lo, hi int, state S)) {
	if n == 0 {
		return
	}
	if workers < 1 {
		workers = 1
	}
	if chunkSize < 1 {
		chunkSize = n
	}

	type job struct{ lo, hi int }
	jobs := make(chan job, (n+chunkSize-1)/chunkSize)
	for lo := 0; lo < n; lo += chunkSize {
		hi := lo + chunkSize
		if hi > n {
			hi = n
		}
		jobs <- job{lo, hi}
	}
	close(jobs)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(workerIdx int) {
			defer wg.Done()
			state := newState(workerIdx)
			for j := range jobs {
				fn(j.lo, j.hi, state)
			}
		}(w)
	}
	wg.Wait()
}

// parallelForState is parallelChunksState specialized to one vertex per job.
func parallelForState[S any](n, workers int, newState func(workerIdx int) S, fn func(i int, state S)) {
	parallelChunksState(n, workers, 1, newState, func(lo, hi int, state S) {
		for i := lo; i < hi; i++ {
			fn(i, state)
		}
	})
}
