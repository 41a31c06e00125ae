package engine

import "testing"

func TestCanPlace(t *testing.T) {
	pile := NewDiscardPile(DefaultRules())

	if pile.CanPlace(Card{Suit: SuitHearts, Rank: 5}) {
		t.Error("empty pile accepted a card")
	}

	pile.Add(Card{Suit: SuitHearts, Rank: 5})
	cases := []struct {
		card Card
		want bool
	}{
		{Card{Suit: SuitHearts, Rank: 9}, true},  // suit match
		{Card{Suit: SuitClubs, Rank: 5}, true},   // rank match
		{Card{Suit: SuitHearts, Rank: 5}, true},  // both
		{Card{Suit: SuitClubs, Rank: 9}, false},  // neither
		{Card{Suit: SuitSpades, Rank: 4}, false}, // neither
	}
	for _, tc := range cases {
		if got := pile.CanPlace(tc.card); got != tc.want {
			t.Errorf("CanPlace(%s) on 5♥: got %v, want %v", tc.card, got, tc.want)
		}
	}
}

func TestIsDefendingCard(t *testing.T) {
	rules := DefaultRules()
	pile := NewDiscardPile(rules)

	if pile.IsDefendingCard(Card{Suit: SuitHearts, Rank: rules.DrawTwoRank}) {
		t.Error("empty pile classified a defending card")
	}

	pile.Add(Card{Suit: SuitSpades, Rank: 10})
	for _, rank := range []uint8{rules.DrawTwoRank, rules.SkipRank, rules.ReverseRank} {
		if !pile.IsDefendingCard(Card{Suit: SuitHearts, Rank: rank}) {
			t.Errorf("rank %d not classified as defending", rank)
		}
	}
	if pile.IsDefendingCard(Card{Suit: SuitHearts, Rank: 10}) {
		t.Error("plain rank classified as defending")
	}
}

func TestIsNextInSequence(t *testing.T) {
	pile := NewDiscardPile(DefaultRules())
	if pile.IsNextInSequence(Card{Suit: SuitHearts, Rank: 5}) {
		t.Error("empty pile accepted a sequenced card")
	}
	pile.Add(Card{Suit: SuitHearts, Rank: 5})
	if pile.IsNextInSequence(Card{Suit: SuitHearts, Rank: 6}) {
		t.Error("same-suit card accepted as sequenced")
	}
	if !pile.IsNextInSequence(Card{Suit: SuitClubs, Rank: 6}) {
		t.Error("off-suit card rejected as sequenced")
	}
}

func TestPlacementHook(t *testing.T) {
	pile := NewDiscardPile(DefaultRules())
	var got []Placement
	pile.SetPlacementHook(func(p Placement) { got = append(got, p) })

	first := Card{Suit: SuitHearts, Rank: 5}
	second := Card{Suit: SuitHearts, Rank: 9}
	pile.Place(first)
	pile.Place(second)

	if len(got) != 2 {
		t.Fatalf("hook fired %d times, want 2", len(got))
	}
	if got[0].Card != first || got[0].HasPrev {
		t.Errorf("first placement: %+v", got[0])
	}
	if got[1].Card != second || !got[1].HasPrev || got[1].Prev != first {
		t.Errorf("second placement: %+v", got[1])
	}
	if top, _ := pile.Top(); top != second {
		t.Errorf("top after placements: got %s", top)
	}
}
