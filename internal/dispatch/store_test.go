package dispatch

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppend_AssignsIDAndTimestamp(t *testing.T) {
	s := NewStore()
	fixed := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	s.nowFunc = func() time.Time { return fixed }

	got := s.Append(Record{Action: ActionAmbulance})

	require.NotEmpty(t, got.ID)
	assert.Equal(t, fixed, got.Timestamp)
	assert.Equal(t, UrgencyUnset, got.Urgency)
	assert.False(t, got.Archived)
	assert.NotNil(t, got.Highlights)
	assert.NotNil(t, got.Profile)
}

func TestAppend_KeepsProvidedIDAndTimestamp(t *testing.T) {
	s := NewStore()
	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	got := s.Append(Record{ID: "fixed-id", Action: ActionDispatch, Timestamp: ts})

	assert.Equal(t, "fixed-id", got.ID)
	assert.Equal(t, ts, got.Timestamp)
}

func TestAppend_IdenticalSubmissionsAreDistinct(t *testing.T) {
	s := NewStore()
	a := s.Append(Record{Action: ActionAmbulance, Status: "sent"})
	b := s.Append(Record{Action: ActionAmbulance, Status: "sent"})

	assert.NotEqual(t, a.ID, b.ID)
	assert.Len(t, s.SnapshotActive(), 2)
}

func TestSnapshotActive_EmptyStore(t *testing.T) {
	s := NewStore()
	snap := s.SnapshotActive()
	assert.Empty(t, snap)
	assert.Equal(t, 0, s.Len())
}

func TestSnapshotActive_FiltersArchivedAndKeepsOrder(t *testing.T) {
	s := NewStore()
	s.Append(Record{ID: "a", Action: "x"})
	s.Append(Record{ID: "b", Action: "x", Archived: true})
	s.Append(Record{ID: "c", Action: "x"})

	snap := s.SnapshotActive()
	require.Len(t, snap, 2)
	assert.Equal(t, "a", snap[0].ID)
	assert.Equal(t, "c", snap[1].ID)
	assert.Equal(t, 3, s.Len())
}

func TestSnapshotActive_ReturnsCopies(t *testing.T) {
	s := NewStore()
	s.Append(Record{ID: "a", Action: "x", Highlights: []string{"h1"}, Profile: Profile{ProfileName: "A"}})

	snap := s.SnapshotActive()
	snap[0].Highlights[0] = "mutated"
	snap[0].Profile[ProfileName] = "mutated"
	snap[0].Urgency = UrgencyHigh

	again := s.SnapshotActive()
	assert.Equal(t, "h1", again[0].Highlights[0])
	assert.Equal(t, "A", again[0].Profile[ProfileName])
	assert.Equal(t, UrgencyUnset, again[0].Urgency)
}

func TestAppend_ConcurrentWritersAndReaders(t *testing.T) {
	s := NewStore()
	const writers = 16
	const perWriter = 50

	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				s.Append(Record{Action: ActionDispatch, Status: fmt.Sprintf("%d-%d", w, i)})
			}
		}(w)
	}
	// readers race the writers; every record they see must be complete
	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				for _, rec := range s.SnapshotActive() {
					if rec.ID == "" || rec.Timestamp.IsZero() {
						t.Errorf("partially written record observed: %+v", rec)
						return
					}
				}
			}
		}()
	}
	wg.Wait()

	snap := s.SnapshotActive()
	require.Len(t, snap, writers*perWriter)

	seen := make(map[string]bool, len(snap))
	lastPerWriter := make(map[int]int)
	for _, rec := range snap {
		assert.False(t, seen[rec.ID], "duplicate id %s", rec.ID)
		seen[rec.ID] = true

		var w, i int
		_, err := fmt.Sscanf(rec.Status, "%d-%d", &w, &i)
		require.NoError(t, err)
		if prev, ok := lastPerWriter[w]; ok {
			assert.Greater(t, i, prev, "writer %d records out of order", w)
		}
		lastPerWriter[w] = i
	}

	// once taken, order is stable
	assert.Equal(t, snap, s.SnapshotActive())
}
