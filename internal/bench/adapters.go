package bench

import (
	"context"
	"fmt"

	"github.com/vectorforge/rnndescent/pkg/diskann"
	"github.com/vectorforge/rnndescent/pkg/hnsw"
	"github.com/vectorforge/rnndescent/pkg/ivf"
	"github.com/vectorforge/rnndescent/pkg/nsg"
	"github.com/vectorforge/rnndescent/pkg/rnndescent"
	"github.com/vectorforge/rnndescent/pkg/scann"
	"github.com/vectorforge/rnndescent/pkg/storage"
)

// RNNDescentMethod adapts the core Index to the Method interface — the
// subject of the benchmark, not a comparator.
type RNNDescentMethod struct {
	Dim    int
	Metric rnndescent.Metric
	Params rnndescent.Params
	index  *rnndescent.Index
}

func (m *RNNDescentMethod) Name() string { return "rnndescent" }

func (m *RNNDescentMethod) Build(vectors [][]float32) error {
	store := storage.NewFlat(m.Dim, m.Metric)
	ix, err := rnndescent.New(m.Dim, m.Metric, m.Params, store)
	if err != nil {
		return err
	}
	if err := ix.Add(vectors); err != nil {
		return err
	}
	m.index = ix
	return nil
}

func (m *RNNDescentMethod) SearchTopK(query []float32, k int) ([]int32, []float32, error) {
	labels, distances, err := m.index.Search(context.Background(), [][]float32{query}, k)
	if err != nil {
		return nil, nil, err
	}
	return labels[0], distances[0], nil
}

// HNSWMethod adapts pkg/hnsw as a benchmark comparator.
type HNSWMethod struct {
	Config   hnsw.IndexConfig
	EfSearch int
	index    *hnsw.Index
}

func (m *HNSWMethod) Name() string { return "hnsw" }

func (m *HNSWMethod) Build(vectors [][]float32) error {
	m.index = hnsw.New(m.Config)
	for _, v := range vectors {
		if _, err := m.index.Insert(v); err != nil {
			return fmt.Errorf("hnsw insert: %w", err)
		}
	}
	return nil
}

func (m *HNSWMethod) SearchTopK(query []float32, k int) ([]int32, []float32, error) {
	ef := m.EfSearch
	if ef < k {
		ef = k
	}
	result, err := m.index.Search(query, k, ef)
	if err != nil {
		return nil, nil, err
	}
	labels := make([]int32, len(result.Results))
	distances := make([]float32, len(result.Results))
	for i, r := range result.Results {
		labels[i] = int32(r.ID)
		distances[i] = r.Distance
	}
	return labels, distances, nil
}

// NSGMethod adapts pkg/nsg as a benchmark comparator.
type NSGMethod struct {
	Cfg   nsg.IndexConfig
	index *nsg.Index
}

func (m *NSGMethod) Name() string { return "nsg" }

func (m *NSGMethod) Build(vectors [][]float32) error {
	m.index = nsg.New(m.Cfg)
	for _, v := range vectors {
		if _, err := m.index.AddVector(v); err != nil {
			return fmt.Errorf("nsg add vector: %w", err)
		}
	}
	return m.index.Build()
}

func (m *NSGMethod) SearchTopK(query []float32, k int) ([]int32, []float32, error) {
	results, err := m.index.Search(query, k)
	if err != nil {
		return nil, nil, err
	}
	labels := make([]int32, len(results))
	distances := make([]float32, len(results))
	for i, r := range results {
		labels[i] = int32(r.ID)
		distances[i] = r.Distance
	}
	return labels, distances, nil
}

// IVFPQMethod adapts pkg/ivf's IVF-PQ variant as a benchmark comparator.
type IVFPQMethod struct {
	Cfg    ivf.ConfigPQ
	Nprobe int
	index  *ivf.IVFPQ
}

func (m *IVFPQMethod) Name() string { return "ivf_pq" }

func (m *IVFPQMethod) Build(vectors [][]float32) error {
	m.index = ivf.NewIVFPQ(m.Cfg)
	if err := m.index.Train(vectors); err != nil {
		return fmt.Errorf("ivf_pq train: %w", err)
	}
	ids := make([]int, len(vectors))
	for i := range vectors {
		ids[i] = i
	}
	return m.index.Add(vectors, ids)
}

func (m *IVFPQMethod) SearchTopK(query []float32, k int) ([]int32, []float32, error) {
	ids, distances, err := m.index.Search(query, k, m.Nprobe)
	if err != nil {
		return nil, nil, err
	}
	labels := make([]int32, len(ids))
	for i, id := range ids {
		labels[i] = int32(id)
	}
	return labels, distances, nil
}

// IVFFlatMethod adapts pkg/ivf's uncompressed IVF variant as a comparator —
// the exact-vector sibling of IVFPQMethod, useful for isolating how much of
// IVF-PQ's recall loss comes from product quantization versus from the
// coarse-partition search itself.
type IVFFlatMethod struct {
	Cfg    ivf.Config
	Nprobe int
	index  *ivf.IVFFlat
}

func (m *IVFFlatMethod) Name() string { return "ivf_flat" }

func (m *IVFFlatMethod) Build(vectors [][]float32) error {
	m.index = ivf.NewIVFFlat(m.Cfg)
	if err := m.index.Train(vectors); err != nil {
		return fmt.Errorf("ivf_flat train: %w", err)
	}
	ids := make([]int, len(vectors))
	for i := range vectors {
		ids[i] = i
	}
	return m.index.Add(vectors, ids)
}

func (m *IVFFlatMethod) SearchTopK(query []float32, k int) ([]int32, []float32, error) {
	ids, distances, err := m.index.Search(query, k, m.Nprobe)
	if err != nil {
		return nil, nil, err
	}
	labels := make([]int32, len(ids))
	for i, id := range ids {
		labels[i] = int32(id)
	}
	return labels, distances, nil
}

// DiskANNMethod adapts pkg/diskann's in-memory Vamana-style build as a
// benchmark comparator; the disk-resident graph is exercised but the
// benchmark harness only measures in-memory search latency.
type DiskANNMethod struct {
	Cfg   diskann.IndexConfig
	index *diskann.Index
}

func (m *DiskANNMethod) Name() string { return "diskann" }

func (m *DiskANNMethod) Build(vectors [][]float32) error {
	index, err := diskann.New(m.Cfg)
	if err != nil {
		return fmt.Errorf("diskann new: %w", err)
	}
	for _, v := range vectors {
		if _, err := index.AddVector(v, nil); err != nil {
			return fmt.Errorf("diskann add vector: %w", err)
		}
	}
	if err := index.Build(); err != nil {
		return fmt.Errorf("diskann build: %w", err)
	}
	m.index = index
	return nil
}

func (m *DiskANNMethod) SearchTopK(query []float32, k int) ([]int32, []float32, error) {
	results, err := m.index.Search(query, k)
	if err != nil {
		return nil, nil, err
	}
	labels := make([]int32, len(results))
	distances := make([]float32, len(results))
	for i, r := range results {
		labels[i] = int32(r.ID)
		distances[i] = r.Distance
	}
	return labels, distances, nil
}

// ScaNNMethod adapts pkg/scann as a benchmark comparator.
type ScaNNMethod struct {
	Cfg    *scann.Config
	Nprobe int
	index  *scann.SCANN
}

func (m *ScaNNMethod) Name() string { return "scann" }

func (m *ScaNNMethod) Build(vectors [][]float32) error {
	m.index = scann.NewSCANN(m.Cfg)
	if err := m.index.Train(vectors); err != nil {
		return fmt.Errorf("scann train: %w", err)
	}
	ids := make([]int, len(vectors))
	for i := range vectors {
		ids[i] = i
	}
	return m.index.Add(vectors, ids)
}

func (m *ScaNNMethod) SearchTopK(query []float32, k int) ([]int32, []float32, error) {
	ids, distances, err := m.index.Search(query, k, m.Nprobe)
	if err != nil {
		return nil, nil, err
	}
	labels := make([]int32, len(ids))
	for i, id := range ids {
		labels[i] = int32(id)
	}
	return labels, distances, nil
}
