package rnndescent

import (
	"math/rand"
	"runtime"
)

// Params controls both the build refinement schedule and the search
// traversal. Zero-value fields are filled in by DefaultParams.
type Params struct {
	S          int // initial random neighbors per vertex
	R          int // per-vertex pool cap after reverse-edge injection
	T1         int // outer refinement rounds
	T2         int // inner passes per outer round
	L          int // initial pool capacity hint
	RandomSeed int64
	Workers    int

	SearchL int // search candidate pool size
	K0      int // per-vertex neighbor cap examined per expansion
}

// DefaultParams returns the parameter set used when a caller leaves Params
// zero-valued.
func DefaultParams() Params {
	return Params{
		S:          16,
		R:          96,
		T1:         4,
		T2:         15,
		L:          8,
		RandomSeed: 2021,
		Workers:    runtime.GOMAXPROCS(0),
		SearchL:    20,
		K0:         10,
	}
}

// withDefaults fills any zero field of p from DefaultParams.
func (p Params) withDefaults() Params {
	d := DefaultParams()
	if p.S == 0 {
		p.S = d.S
	}
	if p.R == 0 {
		p.R = d.R
	}
	if p.T1 == 0 {
		p.T1 = d.T1
	}
	if p.T2 == 0 {
		p.T2 = d.T2
	}
	if p.L == 0 {
		p.L = d.L
	}
	if p.RandomSeed == 0 {
		p.RandomSeed = d.RandomSeed
	}
	if p.Workers == 0 {
		p.Workers = d.Workers
	}
	if p.SearchL == 0 {
		p.SearchL = d.SearchL
	}
	if p.K0 == 0 {
		p.K0 = d.K0
	}
	return p
}

// Builder constructs a csrGraph from a DistanceComputer factory and a vertex
// count. A Builder is used once per Build call; HasBuilt tracks whether
// Finalize has produced a graph yet.
type Builder struct {
	params  Params
	newDist func() DistanceComputer

	ntotal   int
	graph    []nhood
	HasBuilt bool
}

// NewBuilder creates a Builder. newDist must return a fresh DistanceComputer
// each call; Build invokes it once per worker goroutine.
func NewBuilder(params Params, newDist func() DistanceComputer) *Builder {
	return &Builder{params: params.withDefaults(), newDist: newDist}
}

// workerState bundles the per-goroutine resources a build pass needs: its
// own RNG stream (seeded per the original's randomSeed*7741+workerIdx
// convention) and its own DistanceComputer (DistanceComputer implementations
// are not required to be goroutine-safe).
type workerState struct {
	rng  *rand.Rand
	dist DistanceComputer
}

func (b *Builder) newWorkerState(workerIdx int) workerState {
	return workerState{
		rng:  rand.New(rand.NewSource(seedWorker(b.params.RandomSeed, workerIdx))),
		dist: b.newDist(),
	}
}

// Build runs the full init -> refine -> finalize pipeline over n vertices
// and returns the resulting CSR graph.
func (b *Builder) Build(n int) *csrGraph {
	p := b.params
	b.ntotal = n
	b.graph = make([]nhood, n)

	b.initGraph()

	for t1 := 0; t1 < p.T1; t1++ {
		for t2 := 0; t2 < p.T2; t2++ {
			b.updateNeighbors()
		}
		if t1 != p.T1-1 {
			b.addReverseEdges()
		}
	}

	g := b.finalize()
	b.graph = nil
	b.HasBuilt = true
	return g
}

// initGraph seeds every vertex's pool with S random candidate neighbors.
func (b *Builder) initGraph() {
	p := b.params
	n := b.ntotal
	if n == 0 {
		return
	}

	for i := range b.graph {
		b.graph[i].pool = make([]Neighbor, 0, p.L)
	}

	parallelForState(n, p.Workers, b.newWorkerState, func(i int, ws workerState) {
		tmp := make([]int32, p.S)
		genRandomDistinct(ws.rng, tmp, p.S, n)
		for _, id := range tmp {
			if int(id) == i {
				continue
			}
			d := ws.dist.SymmetricDistance(int32(i), id)
			b.graph[i].pool = append(b.graph[i].pool, Neighbor{ID: id, Distance: d, Flag: true})
		}
	})
}

// updateNeighbors runs one relative-neighborhood pruning pass over every
// vertex's pool, parallelized with dynamic chunking (chunk size ~256
// vertices, matching the original's schedule(dynamic, 256)).
func (b *Builder) updateNeighbors() {
	p := b.params
	n := b.ntotal
	const chunkSize = 256

	parallelChunksState(n, p.Workers, chunkSize, b.newWorkerState, func(lo, hi int, ws workerState) {
		for u := lo; u < hi; u++ {
			nh := &b.graph[u]
			oldPool := sortPoolDedup(nh.swapOut())

			newPool := make([]Neighbor, 0, len(oldPool))
			for _, nn := range oldPool {
				ok := true
				for _, other := range newPool {
					if !nn.Flag && !other.Flag {
						continue
					}
					if nn.ID == other.ID {
						ok = false
						break
					}
					d := ws.dist.SymmetricDistance(nn.ID, other.ID)
					if d < nn.Distance {
						ok = false
						b.graph[other.ID].push(Neighbor{ID: nn.ID, Distance: d, Flag: true})
						break
					}
				}
				if ok {
					newPool = append(newPool, nn)
				}
			}

			for i := range newPool {
				newPool[i].Flag = false
			}
			nh.spliceBack(newPool)
		}
	})
}

// addReverseEdges injects, for every edge u->v, a reverse candidate v->u,
// then caps every pool back down to R. Four passes, each parallel over
// vertices, matching the original's four #pragma omp parallel for loops.
func (b *Builder) addReverseEdges() {
	n := b.ntotal
	p := b.params

	reverse := make([]nhood, n)
	parallelFor(n, p.Workers, func(u int) {
		for _, nn := range b.graph[u].pool {
			reverse[nn.ID].push(Neighbor{ID: int32(u), Distance: nn.Distance, Flag: nn.Flag})
		}
	})

	parallelFor(n, p.Workers, func(u int) {
		pool := b.graph[u].pool
		for i := range pool {
			pool[i].Flag = true
		}
		rpool := append(reverse[u].pool, pool...)
		b.graph[u].pool = nil
		rpool = sortPoolDedup(rpool)
		if len(rpool) > p.R {
			rpool = rpool[:p.R]
		}
		reverse[u].pool = rpool
	})

	fanIn := make([]nhood, n)
	parallelFor(n, p.Workers, func(u int) {
		for _, nn := range reverse[u].pool {
			fanIn[nn.ID].push(Neighbor{ID: int32(u), Distance: nn.Distance, Flag: nn.Flag})
		}
	})

	parallelFor(n, p.Workers, func(u int) {
		pool := sortPoolDedup(fanIn[u].pool)
		if len(pool) > p.R {
			pool = pool[:p.R]
		}
		b.graph[u].pool = pool
	})
}

// finalize dedups and sorts every pool, then packs the result into a CSR
// graph.
func (b *Builder) finalize() *csrGraph {
	n := b.ntotal
	p := b.params
	pools := make([][]Neighbor, n)
	parallelFor(n, p.Workers, func(u int) {
		pools[u] = sortPoolDedup(b.graph[u].pool)
	})
	return buildCSR(pools, p.R)
}
