// Package bench drives the comparator harness: building each candidate ANN
// method (RNN-Descent and the teacher's comparator implementations) over the
// same vector set, running the same query workload, and reporting timing,
// recall, and graph-shape properties in a common JSON schema.
package bench

// Method is the uniform interface internal/bench drives every candidate
// algorithm through. RNN-Descent and every comparator package are adapted to
// this shape so the harness can treat them identically.
type Method interface {
	// Name identifies the method in the result report (e.g. "rnndescent",
	// "hnsw", "nsg").
	Name() string
	// Build indexes vectors, replacing any prior contents.
	Build(vectors [][]float32) error
	// SearchTopK returns up to k nearest neighbor ids and their distances
	// for a single query, ascending by distance.
	SearchTopK(query []float32, k int) ([]int32, []float32, error)
}
