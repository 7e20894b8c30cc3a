package querycache

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"math"
	"time"
)

// Result is the cached shape of one Index.Search call: labels and distances
// for a single query.
type Result struct {
	Labels    []int32
	Distances []float32
}

// QueryCache wraps an LRU cache for rnndescent.Index search results.
type QueryCache struct {
	cache *LRUCache
}

// NewQueryCache creates a query-result cache with the given capacity and
// time-to-live.
func NewQueryCache(capacity int, ttl time.Duration) *QueryCache {
	return &QueryCache{cache: NewLRUCache(capacity, ttl)}
}

// GenerateVectorQueryKey hashes a query vector together with the search
// parameters that affect its result (topk, searchL), so a cached result is
// only reused when both match.
func GenerateVectorQueryKey(queryVector []float32, topk, searchL int) CacheKey {
	h := sha256.New()
	for _, v := range queryVector {
		bits := math.Float32bits(v)
		binary.Write(h, binary.LittleEndian, bits)
	}
	binary.Write(h, binary.LittleEndian, int32(topk))
	binary.Write(h, binary.LittleEndian, int32(searchL))
	return CacheKey(fmt.Sprintf("vec:%x", h.Sum(nil)[:16]))
}

// Get retrieves a cached result for key.
func (qc *QueryCache) Get(key CacheKey) (Result, bool) {
	value, found := qc.cache.Get(key)
	if !found {
		return Result{}, false
	}
	result, ok := value.(Result)
	if !ok {
		qc.cache.Invalidate(key)
		return Result{}, false
	}
	return result, true
}

// Put stores a result under key.
func (qc *QueryCache) Put(key CacheKey, result Result) {
	qc.cache.Put(key, result)
}

// InvalidateAll clears every cached result; callers invoke this after any
// Index.Add or Index.Reset, since a rebuild changes the underlying graph.
func (qc *QueryCache) InvalidateAll() {
	qc.cache.Clear()
}

// Stats returns cache performance counters.
func (qc *QueryCache) Stats() Stats {
	return qc.cache.Stats()
}

// Size returns the number of cached entries.
func (qc *QueryCache) Size() int {
	return qc.cache.Size()
}
