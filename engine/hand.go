package engine

// Hand is one player's zone plus the legality filters and the bot
// move-selection heuristic. It keeps a non-owning reference to the
// discard pile it plays against and the id of its player (informational
// only; the hand never reaches back into player state).
type Hand struct {
	Zone
	discard *DiscardPile
	ownerID string
}

// NewHand creates an empty hand for the given player id.
func NewHand(discard *DiscardPile, ownerID string) *Hand {
	return &Hand{discard: discard, ownerID: ownerID}
}

// OwnerID returns the id of the player this hand belongs to.
func (h *Hand) OwnerID() string { return h.ownerID }

// LegalDiscards returns the cards that may currently be placed on the
// discard pile.
func (h *Hand) LegalDiscards() []Card {
	var out []Card
	for _, c := range h.cards {
		if h.discard.CanPlace(c) {
			out = append(out, c)
		}
	}
	return out
}

// DefendingCards returns the cards usable to deflect an incoming penalty.
func (h *Hand) DefendingCards() []Card {
	var out []Card
	for _, c := range h.cards {
		if h.discard.IsDefendingCard(c) {
			out = append(out, c)
		}
	}
	return out
}

// SequencedCards returns the cards eligible for the (inactive)
// sequenced-discard phase.
func (h *Hand) SequencedCards() []Card {
	var out []Card
	for _, c := range h.cards {
		if h.discard.IsNextInSequence(c) {
			out = append(out, c)
		}
	}
	return out
}

// wildRank is a sentinel reserved for wild cards. No card in the
// standard 52-card composition carries it; the scoring branch stays so
// variants that add wilds keep a sensible weight.
const wildRank uint8 = 25

// baseScore is the rank value table used by the heuristic.
func baseScore(rank uint8) int {
	switch rank {
	case 11:
		return 25
	case 2:
		return 20
	case 12:
		return 2
	case 13:
		return 4
	default:
		return int(rank)
	}
}

// scoreCard rates a candidate against the current top card. Cards that
// match neither suit nor rank score 0; everything else starts from the
// rank table, gains a wild bonus, and loses a point unless it is a
// special rank worth holding.
func (h *Hand) scoreCard(c, top Card) int {
	if c.Suit != top.Suit && c.Rank != top.Rank {
		return 0
	}
	score := baseScore(c.Rank)
	if c.Rank == wildRank {
		score += 8
	}
	if !h.discard.rules.IsSpecialRank(c.Rank) {
		score--
	}
	return score
}

// ChooseBestDiscard picks a discard from the candidates. Positive-score
// candidates enter a weighted-random draw; if the draw selects nothing
// and the hand still holds at least five cards, the highest-scoring
// same-suit candidate wins. Returns false when no candidate is playable.
// randn draws a number in [0, n).
func (h *Hand) ChooseBestDiscard(candidates []Card, randn func(int) int) (Card, bool) {
	top, ok := h.discard.Top()
	if !ok {
		return Card{}, false
	}

	if len(candidates) == 0 {
		return Card{}, false
	}

	// Zero-score candidates stay in consideration for the fallback but
	// carry no weight in the draw.
	scores := make([]int, len(candidates))
	totalWeight := 0
	for i, c := range candidates {
		score := h.scoreCard(c, top)
		scores[i] = score
		if score > 0 {
			totalWeight += score
		}
	}

	if totalWeight > 0 {
		r := randn(totalWeight)
		acc := 0
		for i, c := range candidates {
			if scores[i] <= 0 {
				continue
			}
			acc += scores[i]
			if r < acc {
				return c, true
			}
		}
	}

	// All weights were zero; with a big enough hand prefer the strongest
	// same-suit card over not playing at all.
	if h.Len() >= 5 {
		best := Card{}
		bestScore := -1
		for i, c := range candidates {
			if c.Suit == top.Suit && scores[i] > bestScore {
				best = c
				bestScore = scores[i]
			}
		}
		if bestScore >= 0 {
			return best, true
		}
	}
	return Card{}, false
}

// Strategy selects a bot's discard: candidate cards in, a card or none
// out. Implementations may substitute any selection policy without
// touching the state machine.
type Strategy interface {
	ChooseDiscard(h *Hand, candidates []Card) (Card, bool)
}

// weightedStrategy is the default Strategy, backed by the hand's
// weighted-random heuristic.
type weightedStrategy struct {
	randn func(int) int
}

func (s weightedStrategy) ChooseDiscard(h *Hand, candidates []Card) (Card, bool) {
	return h.ChooseBestDiscard(candidates, s.randn)
}
