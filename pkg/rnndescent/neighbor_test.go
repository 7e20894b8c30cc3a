package rnndescent

import "testing"

// TestSortPoolDedup checks that duplicate ids collapse to their first
// (closest) occurrence and the remainder stays distance-sorted.
func TestSortPoolDedup(t *testing.T) {
	pool := []Neighbor{
		{ID: 3, Distance: 5.0},
		{ID: 1, Distance: 1.0},
		{ID: 3, Distance: 9.0}, // duplicate id, worse distance, must be dropped
		{ID: 2, Distance: 3.0},
	}
	out := sortPoolDedup(pool)
	if len(out) != 3 {
		t.Fatalf("expected 3 entries after dedup, got %d", len(out))
	}
	wantIDs := []int32{1, 2, 3}
	for i, id := range wantIDs {
		if out[i].ID != id {
			t.Errorf("position %d: expected id %d, got %d", i, id, out[i].ID)
		}
	}
	if out[2].Distance != 5.0 {
		t.Errorf("expected first occurrence (distance 5.0) to survive, got %v", out[2].Distance)
	}
}

// TestInsertIntoPoolOrdering checks that a new entry lands at the correct
// sorted position and the tail shifts right.
func TestInsertIntoPoolOrdering(t *testing.T) {
	addr := make([]Neighbor, 5)
	addr[0] = Neighbor{ID: 0, Distance: 1.0}
	addr[1] = Neighbor{ID: 1, Distance: 2.0}
	addr[2] = Neighbor{ID: 2, Distance: 4.0}
	size := 3

	r := insertIntoPool(addr, size, Neighbor{ID: 9, Distance: 3.0})
	if r != 2 {
		t.Fatalf("expected insertion at index 2, got %d", r)
	}
	if addr[2].ID != 9 || addr[2].Distance != 3.0 {
		t.Errorf("expected inserted entry at index 2, got %+v", addr[2])
	}
	if addr[3].ID != 2 {
		t.Errorf("expected displaced entry (id 2) to shift to index 3, got %+v", addr[3])
	}
}

// TestInsertIntoPoolDuplicateRejected checks the sentinel return used to
// signal "no disturbance" when the new entry duplicates an existing id.
func TestInsertIntoPoolDuplicateRejected(t *testing.T) {
	addr := make([]Neighbor, 4)
	addr[0] = Neighbor{ID: 0, Distance: 1.0}
	addr[1] = Neighbor{ID: 1, Distance: 2.0}
	addr[2] = Neighbor{ID: 2, Distance: 4.0}
	size := 3

	r := insertIntoPool(addr, size, Neighbor{ID: 1, Distance: 2.5})
	if r != size+1 {
		t.Fatalf("expected sentinel %d for duplicate id, got %d", size+1, r)
	}
}

// TestInsertIntoPoolPrepend checks insertion at the very front.
func TestInsertIntoPoolPrepend(t *testing.T) {
	addr := make([]Neighbor, 4)
	addr[0] = Neighbor{ID: 0, Distance: 5.0}
	addr[1] = Neighbor{ID: 1, Distance: 6.0}
	addr[2] = Neighbor{ID: 2, Distance: 7.0}
	size := 3

	r := insertIntoPool(addr, size, Neighbor{ID: 9, Distance: 1.0})
	if r != 0 {
		t.Fatalf("expected insertion at index 0, got %d", r)
	}
	if addr[0].ID != 9 {
		t.Errorf("expected id 9 at front, got %+v", addr[0])
	}
	if addr[3].ID != 2 {
		t.Errorf("expected original tail (id 2) pushed to index 3, got %+v", addr[3])
	}
}

// TestInsertIntoPoolAppend checks insertion at the very back.
func TestInsertIntoPoolAppend(t *testing.T) {
	addr := make([]Neighbor, 4)
	addr[0] = Neighbor{ID: 0, Distance: 1.0}
	addr[1] = Neighbor{ID: 1, Distance: 2.0}
	addr[2] = Neighbor{ID: 2, Distance: 3.0}
	size := 3

	r := insertIntoPool(addr, size, Neighbor{ID: 9, Distance: 10.0})
	if r != size {
		t.Fatalf("expected insertion at tail index %d, got %d", size, r)
	}
	if addr[3].ID != 9 {
		t.Errorf("expected id 9 appended at index 3, got %+v", addr[3])
	}
}
