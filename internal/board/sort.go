package board

import "sort"

// less orders by urgency rank, then by ascending id. Arrival order and
// timestamps play no part.
func less(a, b *Card) bool {
	ra, rb := a.Urgency.Rank(), b.Urgency.Rank()
	if ra != rb {
		return ra < rb
	}
	return a.Record.ID < b.Record.ID
}

func sortCards(cards []*Card) {
	sort.SliceStable(cards, func(i, j int) bool { return less(cards[i], cards[j]) })
}
