package engine

// Zone is an ordered, mutable card collection. The deck, the discard
// pile, and every hand embed it. Cards only ever move between zones;
// callers remove by position so duplicate-valued cards (multi-deck
// variants) can never be dropped or double-removed.
type Zone struct {
	cards []Card
}

// Len returns the number of cards in the zone.
func (z *Zone) Len() int { return len(z.cards) }

// Add appends a card to the logical end of the zone.
func (z *Zone) Add(c Card) {
	z.cards = append(z.cards, c)
}

// Top returns the card at the logical end without removing it.
func (z *Zone) Top() (Card, bool) {
	if len(z.cards) == 0 {
		return Card{}, false
	}
	return z.cards[len(z.cards)-1], true
}

// RemoveAt removes and returns the card at position i.
func (z *Zone) RemoveAt(i int) (Card, bool) {
	if i < 0 || i >= len(z.cards) {
		return Card{}, false
	}
	c := z.cards[i]
	z.cards = append(z.cards[:i], z.cards[i+1:]...)
	return c, true
}

// RemoveTop removes and returns the card at the logical end.
func (z *Zone) RemoveTop() (Card, bool) {
	return z.RemoveAt(len(z.cards) - 1)
}

// IndexOf returns the position of the first card equal to c, or -1.
func (z *Zone) IndexOf(c Card) int {
	for i, have := range z.cards {
		if have == c {
			return i
		}
	}
	return -1
}

// Contains reports whether the zone holds a card equal to c.
func (z *Zone) Contains(c Card) bool { return z.IndexOf(c) >= 0 }

// Cards returns a copy of the zone's contents in order.
func (z *Zone) Cards() []Card {
	out := make([]Card, len(z.cards))
	copy(out, z.cards)
	return out
}

// Clear empties the zone.
func (z *Zone) Clear() { z.cards = z.cards[:0] }
