package engine

import "testing"

func TestDeckResetFullComposition(t *testing.T) {
	d := NewDeck(NewDiscardPile(DefaultRules()), 1)
	d.Reset()
	if d.Len() != DeckSize {
		t.Fatalf("deck size after reset: got %d, want %d", d.Len(), DeckSize)
	}
	seen := make(map[Card]bool)
	for _, c := range d.Cards() {
		if seen[c] {
			t.Fatalf("duplicate card %s after reset", c)
		}
		seen[c] = true
	}
}

func TestDeckShuffleDeterministicBySeed(t *testing.T) {
	a := NewDeck(NewDiscardPile(DefaultRules()), 42)
	b := NewDeck(NewDiscardPile(DefaultRules()), 42)
	a.Reset()
	b.Reset()
	ca, cb := a.Cards(), b.Cards()
	for i := range ca {
		if ca[i] != cb[i] {
			t.Fatalf("same seed produced different orders at %d: %s vs %s", i, ca[i], cb[i])
		}
	}

	c := NewDeck(NewDiscardPile(DefaultRules()), 43)
	c.Reset()
	same := true
	for i, card := range c.Cards() {
		if card != ca[i] {
			same = false
			break
		}
	}
	if same {
		t.Fatal("different seeds produced identical orders")
	}
}

func TestDeckDrawRefillsFromDiscard(t *testing.T) {
	pile := NewDiscardPile(DefaultRules())
	d := NewDeck(pile, 1)
	pile.Add(Card{Suit: SuitHearts, Rank: 3})
	pile.Add(Card{Suit: SuitSpades, Rank: 9})

	// Deck is empty, so the draw must pull the discard pile back in.
	c, ok := d.Draw()
	if !ok {
		t.Fatal("draw failed with a non-empty discard pile")
	}
	if (c != Card{Suit: SuitSpades, Rank: 9}) {
		t.Errorf("refill draw: got %s, want 9♠", c)
	}
	if pile.Len() != 0 {
		t.Errorf("discard pile after refill: got %d cards, want 0", pile.Len())
	}
	if d.Len() != 1 {
		t.Errorf("deck after refill draw: got %d cards, want 1", d.Len())
	}

	if _, ok := d.Draw(); !ok {
		t.Fatal("second draw failed")
	}
	if _, ok := d.Draw(); ok {
		t.Fatal("draw succeeded with both piles empty")
	}
}

func TestDealInitial(t *testing.T) {
	rules := DefaultRules()
	pile := NewDiscardPile(rules)
	d := NewDeck(pile, 7)
	d.Reset()

	hands := []*Hand{
		NewHand(pile, "a"),
		NewHand(pile, "b"),
		NewHand(pile, "c"),
	}
	d.DealInitial(hands, rules.HandSize)

	for _, h := range hands {
		if h.Len() != rules.HandSize {
			t.Errorf("hand %s: got %d cards, want %d", h.OwnerID(), h.Len(), rules.HandSize)
		}
	}
	if pile.Len() != 1 {
		t.Errorf("discard pile: got %d cards, want 1", pile.Len())
	}
	total := d.Len() + pile.Len()
	for _, h := range hands {
		total += h.Len()
	}
	if total != DeckSize {
		t.Errorf("card conservation broken: got %d, want %d", total, DeckSize)
	}
}

func TestZoneRemoveByPosition(t *testing.T) {
	var z Zone
	dup := Card{Suit: SuitHearts, Rank: 5}
	z.Add(dup)
	z.Add(Card{Suit: SuitClubs, Rank: 9})
	z.Add(dup)

	c, ok := z.RemoveAt(2)
	if !ok || c != dup {
		t.Fatalf("RemoveAt(2): got %v %v", c, ok)
	}
	// The first duplicate must survive.
	if !z.Contains(dup) {
		t.Error("removing one duplicate removed both")
	}
	if z.Len() != 2 {
		t.Errorf("zone length: got %d, want 2", z.Len())
	}
	if _, ok := z.RemoveAt(5); ok {
		t.Error("RemoveAt out of range succeeded")
	}
}
