package engine

import "strings"

// Suit identifies one of the four standard suits.
type Suit uint8

const (
	SuitHearts Suit = iota
	SuitDiamonds
	SuitClubs
	SuitSpades
)

// NumSuits is the number of suits in the standard deck.
const NumSuits = 4

// Rank bounds for the standard deck. Ace is 1, King is 13.
const (
	MinRank uint8 = 1
	MaxRank uint8 = 13
)

// DeckSize is the full card count the conservation invariant is checked against.
const DeckSize = 52

// Card is an immutable (suit, rank) value. Equality is by value; the
// standard deck contains no duplicate (suit, rank) pairs, so piles and
// hands always remove cards by position, never by equality scan.
type Card struct {
	Suit Suit
	Rank uint8
}

func (s Suit) String() string {
	switch s {
	case SuitHearts:
		return "♥"
	case SuitDiamonds:
		return "♦"
	case SuitClubs:
		return "♣"
	case SuitSpades:
		return "♠"
	}
	return "?"
}

// rankGlyph returns the display form of a rank: court cards as letters,
// everything else as digits.
func rankGlyph(rank uint8) string {
	switch rank {
	case 1:
		return "A"
	case 10:
		return "10"
	case 11:
		return "J"
	case 12:
		return "Q"
	case 13:
		return "K"
	default:
		return string('0' + rune(rank))
	}
}

func (c Card) String() string {
	return rankGlyph(c.Rank) + c.Suit.String()
}

// DisplayCards renders a card list as a single space-separated line.
func DisplayCards(cards []Card) string {
	if len(cards) == 0 {
		return ""
	}
	parts := make([]string, len(cards))
	for i, c := range cards {
		parts[i] = c.String()
	}
	return strings.Join(parts, " ")
}
