package tracker

import (
	"sort"
	"sync"
)

// Store is the thread-safe task collection. It is owned by the composition
// root and handed to the poller and handlers explicitly; there is no package
// global. Consumers read via Snapshot and mutate only through Upsert, Remove
// and ClearCompleted.
type Store struct {
	mu    sync.RWMutex
	tasks map[string]Task
}

func NewStore() *Store {
	return &Store{tasks: make(map[string]Task)}
}

// Upsert inserts or replaces the task keyed by its protocol id, unless the
// existing entry is already newer than the incoming one. The monotonic-write
// guard keeps out-of-order poll responses from regressing fresher state.
// It reports whether the task was stored.
func (s *Store) Upsert(t Task) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.tasks[t.ID]; ok && existing.UpdatedAt > t.UpdatedAt {
		return false
	}
	s.tasks[t.ID] = t
	return true
}

// Get returns the task for the given protocol id.
func (s *Store) Get(id string) (Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tasks[id]
	return t, ok
}

// Remove drops the task for the given protocol id.
func (s *Store) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tasks, id)
}

// ClearCompleted drops every task in a terminal state and returns the count
// removed.
func (s *Store) ClearCompleted() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, t := range s.tasks {
		if t.Terminal() {
			delete(s.tasks, id)
			removed++
		}
	}
	return removed
}

// Snapshot returns a copy of all tasks sorted by id for deterministic output.
func (s *Store) Snapshot() []Task {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Len returns the number of tracked tasks.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tasks)
}
