package rnndescent

import (
	"math/rand"
	"sort"
)

// Searcher answers top-k queries against a finalized CSR graph using a
// greedy best-first traversal over a bounded sorted candidate pool.
type Searcher struct {
	graph  *csrGraph
	params Params
}

// NewSearcher wraps a finalized graph for querying.
func NewSearcher(graph *csrGraph, params Params) *Searcher {
	return &Searcher{graph: graph, params: params.withDefaults()}
}

// Search runs one query through the graph. dist must already have SetQuery
// applied. vt is advanced at the end of the call so the caller can reuse it
// for the next query on the same goroutine.
func (s *Searcher) Search(dist DistanceComputer, vt *VisitedSet, rng *rand.Rand, topk int) (labels []int32, distances []float32) {
	n := s.graph.numVertices()
	l := s.params.SearchL
	if topk > l {
		l = topk
	}

	retset := make([]Neighbor, l+1)
	initIDs := make([]int32, l)
	genRandomDistinct(rng, initIDs, l, n)
	for i, id := range initIDs {
		retset[i] = Neighbor{ID: id, Distance: dist.DistanceTo(id), Flag: true}
	}
	// genRandomDistinct already guarantees distinct ids, so a plain sort
	// (no dedup pass) reproduces the original's initialization exactly.
	sort.Slice(retset[:l], func(i, j int) bool { return retset[i].Distance < retset[j].Distance })

	k := 0
	for k < l {
		nk := l
		if retset[k].Flag {
			retset[k].Flag = false
			u := retset[k].ID

			neighbors := s.graph.neighbors(u)
			limit := s.params.K0
			if limit > len(neighbors) {
				limit = len(neighbors)
			}
			for _, id := range neighbors[:limit] {
				if vt.Get(id) {
					continue
				}
				vt.Set(id)
				d := dist.DistanceTo(id)
				if d >= retset[l-1].Distance {
					continue
				}
				r := insertIntoPool(retset, l, Neighbor{ID: id, Distance: d, Flag: true})
				if r < nk {
					nk = r
				}
			}
		}
		if nk <= k {
			k = nk
		} else {
			k++
		}
	}

	labels = make([]int32, topk)
	distances = make([]float32, topk)
	for i := 0; i < topk; i++ {
		labels[i] = retset[i].ID
		distances[i] = retset[i].Distance
	}
	vt.Advance()
	return labels, distances
}
