package rnndescent

// GraphProperties summarizes the shape of a finalized CSR graph: degree
// distributions and weak connectivity, used by the benchmark harness to
// report how a given parameter set shaped the build.
type GraphProperties struct {
	ConnectedComponents int
	MinOutDegree        int
	MaxOutDegree        int
	MeanOutDegree       float64
	MinInDegree         int
	MaxInDegree         int
	MeanInDegree        float64
	TotalDegree         int64
}

// GraphProperties computes GraphProperties for the current graph. Returns
// the zero value if the index has not been built.
func (ix *Index) GraphProperties() GraphProperties {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	if ix.graph == nil {
		return GraphProperties{}
	}
	return computeGraphProperties(ix.graph)
}

func computeGraphProperties(g *csrGraph) GraphProperties {
	n := g.numVertices()
	if n == 0 {
		return GraphProperties{}
	}

	inDegree := make([]int, n)
	var totalOut int64
	minOut, maxOut := g.outDegree(0), g.outDegree(0)
	for u := 0; u < n; u++ {
		d := g.outDegree(int32(u))
		if d < minOut {
			minOut = d
		}
		if d > maxOut {
			maxOut = d
		}
		totalOut += int64(d)
		for _, v := range g.neighbors(int32(u)) {
			inDegree[v]++
		}
	}

	minIn, maxIn := inDegree[0], inDegree[0]
	for _, d := range inDegree {
		if d < minIn {
			minIn = d
		}
		if d > maxIn {
			maxIn = d
		}
	}

	return GraphProperties{
		ConnectedComponents: countWeakComponents(g),
		MinOutDegree:        minOut,
		MaxOutDegree:        maxOut,
		MeanOutDegree:       float64(totalOut) / float64(n),
		MinInDegree:         minIn,
		MaxInDegree:         maxIn,
		MeanInDegree:        float64(totalOut) / float64(n),
		TotalDegree:         totalOut,
	}
}

// countWeakComponents counts connected components of the graph treated as
// undirected (an edge u->v counts as connectivity between u and v regardless
// of direction), via union-find.
func countWeakComponents(g *csrGraph) int {
	n := g.numVertices()
	parent := make([]int, n)
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(x int) int {
		for parent[x] != x {
			parent[x] = parent[parent[x]]
			x = parent[x]
		}
		return x
	}
	union := func(a, b int) {
		ra, rb := find(a), find(b)
		if ra != rb {
			parent[ra] = rb
		}
	}

	for u := 0; u < n; u++ {
		for _, v := range g.neighbors(int32(u)) {
			union(u, int(v))
		}
	}

	roots := make(map[int]struct{})
	for i := 0; i < n; i++ {
		roots[find(i)] = struct{}{}
	}
	return len(roots)
}
