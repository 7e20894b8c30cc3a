package rnndescent

import (
	"math"
	"testing"
)

// line1D is a minimal DistanceComputer over points placed at integer
// coordinates on a line, used to exercise Builder without pulling in a real
// storage backend.
type line1D struct {
	points []float32
	query  float32
}

func newLine1D(n int) *line1D {
	pts := make([]float32, n)
	for i := range pts {
		pts[i] = float32(i)
	}
	return &line1D{points: pts}
}

func (l *line1D) SetQuery(x []float32) { l.query = x[0] }
func (l *line1D) DistanceTo(i int32) float32 {
	return float32(math.Abs(float64(l.query - l.points[i])))
}
func (l *line1D) SymmetricDistance(i, j int32) float32 {
	return float32(math.Abs(float64(l.points[i] - l.points[j])))
}

// TestBuilderProducesValidCSR checks the structural invariants a finalized
// graph must hold regardless of dataset: in-range ids, bounded degree, no
// duplicate neighbors.
func TestBuilderProducesValidCSR(t *testing.T) {
	n := 200
	params := Params{S: 8, R: 20, T1: 2, T2: 4, L: 8, RandomSeed: 1, Workers: 4}
	builder := NewBuilder(params, func() DistanceComputer { return newLine1D(n) })

	g := builder.Build(n)
	if !builder.HasBuilt {
		t.Fatalf("expected HasBuilt after Build")
	}
	if g.numVertices() != n {
		t.Fatalf("expected %d vertices, got %d", n, g.numVertices())
	}
	if g.Offsets[0] != 0 {
		t.Fatalf("expected Offsets[0]=0, got %d", g.Offsets[0])
	}
	if int(g.Offsets[n]) != len(g.Adjacency) {
		t.Fatalf("expected Offsets[N]=len(Adjacency), got %d vs %d", g.Offsets[n], len(g.Adjacency))
	}

	for u := 0; u < n; u++ {
		neighbors := g.neighbors(int32(u))
		if len(neighbors) > params.R {
			t.Fatalf("vertex %d has out-degree %d, exceeds R=%d", u, len(neighbors), params.R)
		}
		seen := make(map[int32]bool)
		for _, id := range neighbors {
			if int(id) < 0 || int(id) >= n {
				t.Fatalf("vertex %d has out-of-range neighbor %d", u, id)
			}
			if int(id) == u {
				t.Fatalf("vertex %d has a self-loop", u)
			}
			if seen[id] {
				t.Fatalf("vertex %d has duplicate neighbor %d", u, id)
			}
			seen[id] = true
		}
	}
}

// TestBuilderRecallOnLine checks that, on an easy 1D dataset, the build
// converges to a graph where most vertices' nearest neighbors are adjacent
// points -- a coarse recall floor rather than an exact check.
func TestBuilderRecallOnLine(t *testing.T) {
	n := 300
	params := Params{S: 10, R: 16, T1: 3, T2: 6, L: 8, RandomSeed: 2021, Workers: 4}
	builder := NewBuilder(params, func() DistanceComputer { return newLine1D(n) })
	g := builder.Build(n)

	hits := 0
	for u := 50; u < 250; u++ {
		neighbors := g.neighbors(int32(u))
		for _, id := range neighbors {
			if id == int32(u-1) || id == int32(u+1) {
				hits++
				break
			}
		}
	}
	if hits < 150 {
		t.Fatalf("expected most interior vertices to link an adjacent point, got %d/200", hits)
	}
}

// TestBuilderDeterministicSingleWorker checks P7: with Workers=1 and a fixed
// seed, two builds over the same data produce identical graphs.
func TestBuilderDeterministicSingleWorker(t *testing.T) {
	n := 64
	params := Params{S: 6, R: 12, T1: 2, T2: 3, L: 8, RandomSeed: 99, Workers: 1}

	b1 := NewBuilder(params, func() DistanceComputer { return newLine1D(n) })
	g1 := b1.Build(n)

	b2 := NewBuilder(params, func() DistanceComputer { return newLine1D(n) })
	g2 := b2.Build(n)

	if len(g1.Adjacency) != len(g2.Adjacency) {
		t.Fatalf("adjacency length mismatch: %d vs %d", len(g1.Adjacency), len(g2.Adjacency))
	}
	for i := range g1.Adjacency {
		if g1.Adjacency[i] != g2.Adjacency[i] {
			t.Fatalf("adjacency mismatch at %d: %d vs %d", i, g1.Adjacency[i], g2.Adjacency[i])
		}
	}
	for i := range g1.Offsets {
		if g1.Offsets[i] != g2.Offsets[i] {
			t.Fatalf("offsets mismatch at %d: %d vs %d", i, g1.Offsets[i], g2.Offsets[i])
		}
	}
}
