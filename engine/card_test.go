package engine

import "testing"

func TestCardString(t *testing.T) {
	cases := []struct {
		card Card
		want string
	}{
		{Card{Suit: SuitHearts, Rank: 1}, "A♥"},
		{Card{Suit: SuitDiamonds, Rank: 10}, "10♦"},
		{Card{Suit: SuitClubs, Rank: 11}, "J♣"},
		{Card{Suit: SuitSpades, Rank: 12}, "Q♠"},
		{Card{Suit: SuitHearts, Rank: 13}, "K♥"},
		{Card{Suit: SuitSpades, Rank: 7}, "7♠"},
	}
	for _, tc := range cases {
		if got := tc.card.String(); got != tc.want {
			t.Errorf("card %+v: got %q, want %q", tc.card, got, tc.want)
		}
	}
}

func TestDisplayCards(t *testing.T) {
	cards := []Card{
		{Suit: SuitHearts, Rank: 1},
		{Suit: SuitSpades, Rank: 13},
	}
	got := DisplayCards(cards)
	if got != "A♥ K♠" {
		t.Errorf("DisplayCards: got %q", got)
	}
	if DisplayCards(nil) != "" {
		t.Errorf("DisplayCards(nil): got %q", DisplayCards(nil))
	}
}
