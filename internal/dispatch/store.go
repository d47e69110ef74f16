package dispatch

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Store holds every dispatch record created during the process lifetime.
// Records are only ever appended; archival is a dashboard concern.
type Store struct {
	mu      sync.RWMutex
	records []Record
	nowFunc func() time.Time
	newID   func() string
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{
		nowFunc: time.Now,
		newID:   uuid.NewString,
	}
}

// Append assigns an id and timestamp when missing, stores the record at the
// tail and returns the stored copy.
func (s *Store) Append(rec Record) Record {
	// Fully build the record before taking the lock so readers never see a
	// half-populated entry.
	rec = rec.Clone()
	if rec.ID == "" {
		rec.ID = s.newID()
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = s.nowFunc().UTC()
	}

	s.mu.Lock()
	s.records = append(s.records, rec)
	s.mu.Unlock()

	return rec.Clone()
}

// SnapshotActive returns a point-in-time copy of all non-archived records in
// insertion order. The result is never shared with the store.
func (s *Store) SnapshotActive() []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Record, 0, len(s.records))
	for _, r := range s.records {
		if r.Archived {
			continue
		}
		out = append(out, r.Clone())
	}
	return out
}

// Len reports how many records have been appended.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
