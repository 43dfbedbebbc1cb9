package store

import (
	"sync"
	"time"

	"github.com/lblanc/grafana-integration/pkg/types"
)

// Entry is a cycle report together with the time it was stored.
type Entry struct {
	Report   *types.Report
	StoredAt time.Time
}

// Store is a thread-safe, bounded history of cycle reports. When full, the
// oldest report is dropped.
type Store struct {
	mu      sync.RWMutex
	entries []*Entry // oldest first
	max     int
	now     func() time.Time // injectable for deterministic tests
}

// New creates a Store keeping at most max reports. max below 1 keeps one.
func New(max int) *Store {
	if max < 1 {
		max = 1
	}
	return &Store{
		entries: make([]*Entry, 0, max),
		max:     max,
		now:     time.Now,
	}
}

// Put appends a report. Callers must not modify rep after calling Put.
func (s *Store) Put(rep *types.Report) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.entries) == s.max {
		copy(s.entries, s.entries[1:])
		s.entries = s.entries[:len(s.entries)-1]
	}
	s.entries = append(s.entries, &Entry{Report: rep, StoredAt: s.now()})
}

// Latest returns the most recent entry, or false when the store is empty.
func (s *Store) Latest() (*Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.entries) == 0 {
		return nil, false
	}
	return s.entries[len(s.entries)-1], true
}

// Get returns the entry for runID, or false when it has been evicted or
// never existed.
func (s *Store) Get(runID string) (*Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := len(s.entries) - 1; i >= 0; i-- {
		if s.entries[i].Report.RunID == runID {
			return s.entries[i], true
		}
	}
	return nil, false
}

// List returns all entries, newest first.
func (s *Store) List() []*Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Entry, 0, len(s.entries))
	for i := len(s.entries) - 1; i >= 0; i-- {
		out = append(out, s.entries[i])
	}
	return out
}

// Count returns the number of reports held.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Age returns how long ago the latest report was stored, or false when
// the store is empty.
func (s *Store) Age() (time.Duration, bool) {
	e, ok := s.Latest()
	if !ok {
		return 0, false
	}
	return s.now().Sub(e.StoredAt), true
}
