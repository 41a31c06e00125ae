package engine

import "testing"

func newTestHand(top Card, cards ...Card) *Hand {
	pile := NewDiscardPile(DefaultRules())
	pile.Add(top)
	h := NewHand(pile, "tester")
	for _, c := range cards {
		h.Add(c)
	}
	return h
}

func TestLegalDiscards(t *testing.T) {
	h := newTestHand(Card{Suit: SuitHearts, Rank: 5},
		Card{Suit: SuitDiamonds, Rank: 5}, // rank match
		Card{Suit: SuitHearts, Rank: 9},   // suit match
		Card{Suit: SuitClubs, Rank: 9},    // neither
	)
	legal := h.LegalDiscards()
	if len(legal) != 2 {
		t.Fatalf("legal discards: got %v", DisplayCards(legal))
	}
	for _, c := range legal {
		if (c == Card{Suit: SuitClubs, Rank: 9}) {
			t.Errorf("unplayable card %s listed as legal", c)
		}
	}
}

func TestDefendingCards(t *testing.T) {
	h := newTestHand(Card{Suit: SuitSpades, Rank: 10},
		Card{Suit: SuitClubs, Rank: 2},
		Card{Suit: SuitDiamonds, Rank: 7},
		Card{Suit: SuitSpades, Rank: 8},
		Card{Suit: SuitHearts, Rank: 9},
	)
	defending := h.DefendingCards()
	if len(defending) != 3 {
		t.Fatalf("defending cards: got %v", DisplayCards(defending))
	}
}

func TestScoreCard(t *testing.T) {
	h := newTestHand(Card{Suit: SuitHearts, Rank: 5})
	top := Card{Suit: SuitHearts, Rank: 5}
	cases := []struct {
		card Card
		want int
	}{
		{Card{Suit: SuitClubs, Rank: 9}, 0},    // no match
		{Card{Suit: SuitDiamonds, Rank: 5}, 4}, // rank 5 minus hoarding point
		{Card{Suit: SuitHearts, Rank: 11}, 24}, // jack premium
		{Card{Suit: SuitHearts, Rank: 2}, 20},  // special, keeps full value
		{Card{Suit: SuitHearts, Rank: 7}, 7},   // special, keeps full value
		{Card{Suit: SuitHearts, Rank: 12}, 1},  // queen devalued
		{Card{Suit: SuitHearts, Rank: 13}, 3},  // king devalued
	}
	for _, tc := range cases {
		if got := h.scoreCard(tc.card, top); got != tc.want {
			t.Errorf("scoreCard(%s): got %d, want %d", tc.card, got, tc.want)
		}
	}
}

func TestChooseBestDiscardWeighted(t *testing.T) {
	jack := Card{Suit: SuitHearts, Rank: 11} // weight 24
	five := Card{Suit: SuitDiamonds, Rank: 5} // weight 4
	h := newTestHand(Card{Suit: SuitHearts, Rank: 5}, jack, five)
	candidates := []Card{jack, five}

	// Draw below the jack's weight picks the jack, at or above it the five.
	c, ok := h.ChooseBestDiscard(candidates, func(n int) int {
		if n != 28 {
			t.Fatalf("weighted draw over %d, want 28", n)
		}
		return 23
	})
	if !ok || c != jack {
		t.Errorf("draw 23: got %s %v, want %s", c, ok, jack)
	}
	c, ok = h.ChooseBestDiscard(candidates, func(int) int { return 24 })
	if !ok || c != five {
		t.Errorf("draw 24: got %s %v, want %s", c, ok, five)
	}
}

func TestChooseBestDiscardZeroWeightFallback(t *testing.T) {
	// A legal ace scores zero, so it never wins the weighted draw. With
	// five or more cards held it is still discarded via the same-suit
	// fallback.
	ace := Card{Suit: SuitHearts, Rank: 1}
	h := newTestHand(Card{Suit: SuitHearts, Rank: 5},
		ace,
		Card{Suit: SuitClubs, Rank: 3},
		Card{Suit: SuitClubs, Rank: 6},
		Card{Suit: SuitSpades, Rank: 9},
		Card{Suit: SuitSpades, Rank: 10},
	)
	c, ok := h.ChooseBestDiscard([]Card{ace}, func(int) int { return 0 })
	if !ok || c != ace {
		t.Errorf("fallback with big hand: got %s %v, want %s", c, ok, ace)
	}

	// A small hand holds onto the zero-weight card instead.
	small := newTestHand(Card{Suit: SuitHearts, Rank: 5}, ace)
	if _, ok := small.ChooseBestDiscard([]Card{ace}, func(int) int { return 0 }); ok {
		t.Error("fallback fired with fewer than five cards held")
	}
}

func TestChooseBestDiscardNoPlayable(t *testing.T) {
	h := newTestHand(Card{Suit: SuitHearts, Rank: 5},
		Card{Suit: SuitClubs, Rank: 9})
	if _, ok := h.ChooseBestDiscard(h.Cards(), func(int) int { return 0 }); ok {
		t.Error("chose a discard with nothing playable")
	}
}

func TestChooseBestDiscardEmptyPile(t *testing.T) {
	pile := NewDiscardPile(DefaultRules())
	h := NewHand(pile, "tester")
	h.Add(Card{Suit: SuitHearts, Rank: 5})
	if _, ok := h.ChooseBestDiscard(h.Cards(), func(int) int { return 0 }); ok {
		t.Error("chose a discard against an empty pile")
	}
}
