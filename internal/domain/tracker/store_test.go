package tracker

import (
	"testing"
)

func TestStore_UpsertAndGet(t *testing.T) {
	s := NewStore()
	ok := s.Upsert(Task{ID: "p1", Type: TypeExtraction, Status: StatusRunning, UpdatedAt: 100})
	if !ok {
		t.Fatal("expected upsert to store")
	}
	got, found := s.Get("p1")
	if !found || got.Status != StatusRunning {
		t.Errorf("unexpected task: %+v found=%v", got, found)
	}
}

func TestStore_MonotonicGuard(t *testing.T) {
	s := NewStore()
	s.Upsert(Task{ID: "p1", Status: StatusRunning, Message: "newer", UpdatedAt: 200})

	// An older update must never regress the stored entry.
	if s.Upsert(Task{ID: "p1", Status: StatusPending, Message: "stale", UpdatedAt: 100}) {
		t.Error("expected stale upsert to be rejected")
	}
	got, _ := s.Get("p1")
	if got.Message != "newer" || got.UpdatedAt != 200 {
		t.Errorf("stale data overwrote newer entry: %+v", got)
	}

	// An equal timestamp is accepted (last write wins at the same instant).
	if !s.Upsert(Task{ID: "p1", Status: StatusRunning, Message: "same-tick", UpdatedAt: 200}) {
		t.Error("expected equal-timestamp upsert to be accepted")
	}
}

func TestStore_Remove(t *testing.T) {
	s := NewStore()
	s.Upsert(Task{ID: "p1", UpdatedAt: 1})
	s.Remove("p1")
	if _, found := s.Get("p1"); found {
		t.Error("expected task to be removed")
	}
}

func TestStore_ClearCompleted(t *testing.T) {
	s := NewStore()
	s.Upsert(Task{ID: "p1", Status: StatusRunning, UpdatedAt: 1})
	s.Upsert(Task{ID: "p2", Status: StatusCompleted, UpdatedAt: 1})
	s.Upsert(Task{ID: "p3", Status: StatusFailed, UpdatedAt: 1})

	if removed := s.ClearCompleted(); removed != 2 {
		t.Errorf("expected 2 removed, got %d", removed)
	}
	if s.Len() != 1 {
		t.Errorf("expected 1 remaining, got %d", s.Len())
	}
	if _, found := s.Get("p1"); !found {
		t.Error("running task should survive ClearCompleted")
	}
}

func TestStore_SnapshotSorted(t *testing.T) {
	s := NewStore()
	s.Upsert(Task{ID: "p3", UpdatedAt: 1})
	s.Upsert(Task{ID: "p1", UpdatedAt: 1})
	s.Upsert(Task{ID: "p2", UpdatedAt: 1})

	snap := s.Snapshot()
	if len(snap) != 3 {
		t.Fatalf("expected 3 tasks, got %d", len(snap))
	}
	if snap[0].ID != "p1" || snap[1].ID != "p2" || snap[2].ID != "p3" {
		t.Errorf("snapshot not sorted: %v %v %v", snap[0].ID, snap[1].ID, snap[2].ID)
	}
}

func TestStore_SnapshotIsCopy(t *testing.T) {
	s := NewStore()
	s.Upsert(Task{ID: "p1", Message: "original", UpdatedAt: 1})

	snap := s.Snapshot()
	snap[0].Message = "mutated"

	got, _ := s.Get("p1")
	if got.Message != "original" {
		t.Error("snapshot mutation leaked into the store")
	}
}
