// Package board holds one dashboard's view of the dispatch queue.
//
// A Board only ever learns about records; it never forgets them. Cards are
// created the first time an id is merged and keep their local urgency and
// archive state for the life of the session, whatever later snapshots say.
package board

import (
	"errors"
	"fmt"
	"sync"

	"github.com/imrishuroy/dispatch-board/internal/dispatch"
)

// ErrUnknownCard is returned when an operation targets an id that is not on
// the visible board.
var ErrUnknownCard = errors.New("unknown card")

// Card is the local presentation of one dispatch record.
type Card struct {
	Record   dispatch.Record
	Urgency  dispatch.Urgency
	Archived bool
}

// ID returns the record id.
func (c Card) ID() string { return c.Record.ID }

type undoEntry struct {
	card  *Card
	index int
}

// Board is safe for concurrent use; the poll loop and operator commands may
// run on different goroutines.
type Board struct {
	mu      sync.Mutex
	known   map[string]*Card
	visible []*Card
	undo    *undoEntry
}

// New returns an empty board.
func New() *Board {
	return &Board{known: make(map[string]*Card)}
}

// Merge adds cards for records whose ids have never been seen and re-sorts.
// Known ids, including archived ones, are left untouched. It returns the
// number of cards created.
func (b *Board) Merge(records []dispatch.Record) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	added := 0
	for _, rec := range records {
		if rec.ID == "" {
			continue
		}
		if _, ok := b.known[rec.ID]; ok {
			continue
		}
		card := &Card{Record: rec.Clone()}
		b.known[rec.ID] = card
		b.visible = append(b.visible, card)
		added++
	}
	sortCards(b.visible)
	return added
}

// SetUrgency labels a visible card and re-sorts.
func (b *Board) SetUrgency(id string, u dispatch.Urgency) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	idx := b.indexOf(id)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownCard, id)
	}
	b.visible[idx].Urgency = u
	sortCards(b.visible)
	return nil
}

// Archive removes a visible card and remembers it, with its position, as the
// only undo candidate. Any previously buffered card stays archived.
func (b *Board) Archive(id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	idx := b.indexOf(id)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownCard, id)
	}
	card := b.visible[idx]
	card.Archived = true
	b.visible = append(b.visible[:idx], b.visible[idx+1:]...)
	b.undo = &undoEntry{card: card, index: idx}
	return nil
}

// Undo restores the last archived card at its previous index, or at the end
// when the board has shrunk below it. It reports whether anything was restored.
func (b *Board) Undo() (Card, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.undo == nil {
		return Card{}, false
	}
	entry := b.undo
	b.undo = nil
	entry.card.Archived = false

	if entry.index >= len(b.visible) {
		b.visible = append(b.visible, entry.card)
	} else {
		b.visible = append(b.visible, nil)
		copy(b.visible[entry.index+1:], b.visible[entry.index:])
		b.visible[entry.index] = entry.card
	}
	return *entry.card, true
}

// CanUndo reports whether the undo slot is occupied.
func (b *Board) CanUndo() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.undo != nil
}

// Visible returns the displayed cards in order.
func (b *Board) Visible() []Card {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]Card, len(b.visible))
	for i, c := range b.visible {
		out[i] = *c
	}
	return out
}

// Card looks up any card the board has seen, archived or not.
func (b *Board) Card(id string) (Card, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	c, ok := b.known[id]
	if !ok {
		return Card{}, false
	}
	return *c, true
}

// Known is the number of distinct records merged so far.
func (b *Board) Known() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.known)
}

func (b *Board) indexOf(id string) int {
	for i, c := range b.visible {
		if c.Record.ID == id {
			return i
		}
	}
	return -1
}
