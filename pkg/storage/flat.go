// Package storage provides the VectorStorage backends that back an
// rnndescent.Index: a flat exact store and a scalar-quantized store, both
// implementing rnndescent.VectorStorage over row-major vector buffers and
// handing out rnndescent.DistanceComputers.
package storage

import (
	"fmt"
	"math"

	"github.com/vectorforge/rnndescent/pkg/rnndescent"
)

// Flat stores vectors as a single contiguous row-major float32 buffer and
// computes exact distances. It implements rnndescent.VectorStorage.
type Flat struct {
	dim    int
	metric rnndescent.Metric
	data   []float32 // len == n*dim
	n      int
}

// NewFlat creates an empty flat store for vectors of the given dimension.
func NewFlat(dim int, metric rnndescent.Metric) *Flat {
	return &Flat{dim: dim, metric: metric}
}

func (f *Flat) Dim() int { return f.dim }
func (f *Flat) Len() int { return f.n }

// Add appends vectors, validating each has the store's dimensionality.
func (f *Flat) Add(vectors [][]float32) error {
	for i, v := range vectors {
		if len(v) != f.dim {
			return fmt.Errorf("storage: vector %d has dimension %d, want %d", i, len(v), f.dim)
		}
	}
	for _, v := range vectors {
		f.data = append(f.data, v...)
	}
	f.n += len(vectors)
	return nil
}

// Reconstruct returns a copy of the stored vector for id.
func (f *Flat) Reconstruct(id int32) ([]float32, error) {
	if int(id) < 0 || int(id) >= f.n {
		return nil, fmt.Errorf("storage: id %d out of range [0, %d)", id, f.n)
	}
	row := f.data[int(id)*f.dim : int(id)*f.dim+f.dim]
	out := make([]float32, f.dim)
	copy(out, row)
	return out, nil
}

// Reset discards all stored vectors.
func (f *Flat) Reset() {
	f.data = nil
	f.n = 0
}

// NewDistanceComputer returns a fresh, non-shared DistanceComputer over this
// store's current data. Safe to call concurrently; the returned computer
// must not be shared across goroutines.
func (f *Flat) NewDistanceComputer() rnndescent.DistanceComputer {
	switch f.metric {
	case rnndescent.MetricInnerProduct:
		return &flatIPDistance{store: f}
	default:
		return &flatL2Distance{store: f}
	}
}

func (f *Flat) row(id int32) []float32 {
	off := int(id) * f.dim
	return f.data[off : off+f.dim]
}

// flatL2Distance is a per-goroutine DistanceComputer over a Flat store using
// true (square-rooted) Euclidean distance. ScalarQuantized's L2 computer is
// also square-rooted, but measures in int8 code units.
type flatL2Distance struct {
	store *Flat
	query []float32
}

func (d *flatL2Distance) SetQuery(x []float32) { d.query = x }

func (d *flatL2Distance) DistanceTo(i int32) float32 {
	return l2(d.query, d.store.row(i))
}

func (d *flatL2Distance) SymmetricDistance(i, j int32) float32 {
	return l2(d.store.row(i), d.store.row(j))
}

// l2 returns true Euclidean distance. The square root does not change
// nearest-neighbor ordering (it is monotonic in the squared sum), but it
// does change the reported magnitude, and callers that read distances back
// out (e.g. SPEC_FULL's literal scenario distances) expect the true
// distance rather than its square.
func l2(a, b []float32) float32 {
	var sum float32
	for i := range a {
		diff := a[i] - b[i]
		sum += diff * diff
	}
	return float32(math.Sqrt(float64(sum)))
}

// flatIPDistance negates the inner product so that, like every other
// DistanceComputer, smaller values mean closer; Index.Search flips the sign
// back once, at the facade boundary.
type flatIPDistance struct {
	store *Flat
	query []float32
}

func (d *flatIPDistance) SetQuery(x []float32) { d.query = x }

func (d *flatIPDistance) DistanceTo(i int32) float32 {
	return -innerProduct(d.query, d.store.row(i))
}

func (d *flatIPDistance) SymmetricDistance(i, j int32) float32 {
	return -innerProduct(d.store.row(i), d.store.row(j))
}

func innerProduct(a, b []float32) float32 {
	var sum float32
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}
