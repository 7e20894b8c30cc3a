package rnndescent

import "sort"

// Neighbor is a single candidate-pool entry: a vertex id, its distance from
// whatever reference point the pool belongs to, and an active/new flag.
//
// Flag marks an entry as not yet expanded from in the current refinement
// pass (build) or traversal (search); it is cleared once the entry has been
// used as the origin of outgoing comparisons.
type Neighbor struct {
	ID       int32
	Distance float32
	Flag     bool
}

// sortPoolDedup sorts pool ascending by distance and removes duplicate ids,
// keeping the first (closest) occurrence of each id. It returns the
// deduplicated prefix of pool.
func sortPoolDedup(pool []Neighbor) []Neighbor {
	sort.Slice(pool, func(i, j int) bool { return pool[i].Distance < pool[j].Distance })

	seen := make(map[int32]struct{}, len(pool))
	out := pool[:0]
	for _, nn := range pool {
		if _, ok := seen[nn.ID]; ok {
			continue
		}
		seen[nn.ID] = struct{}{}
		out = append(out, nn)
	}
	return out
}

// insertIntoPool inserts nn into the ascending-sorted pool addr[0:size],
// which must have capacity for at least size+1 elements. It preserves the
// original algorithm's sentinel convention: if nn duplicates an existing id
// or is no better than the worst entry and collides, it returns size+1 to
// signal "no disturbance"; otherwise it returns the index nn was inserted
// at. Callers use that index to track the earliest position that changed.
func insertIntoPool(addr []Neighbor, size int, nn Neighbor) int {
	left, right := 0, size-1

	if addr[left].Distance > nn.Distance {
		copy(addr[left+1:size+1], addr[left:size])
		addr[left] = nn
		return left
	}
	if addr[right].Distance < nn.Distance {
		addr[size] = nn
		return size
	}

	for left < right-1 {
		mid := (left + right) / 2
		if addr[mid].Distance > nn.Distance {
			right = mid
		} else {
			left = mid
		}
	}

	for left > 0 {
		if addr[left].Distance < nn.Distance {
			break
		}
		if addr[left].ID == nn.ID {
			return size + 1
		}
		left--
	}
	if addr[left].ID == nn.ID || addr[right].ID == nn.ID {
		return size + 1
	}

	copy(addr[right+1:size+1], addr[right:size])
	addr[right] = nn
	return right
}
