package engine

// Placement describes one card placed on the discard pile: the new top
// card and, when the pile was not empty, the card it covered.
type Placement struct {
	Card    Card
	Prev    Card
	HasPrev bool
}

// DiscardPile tracks the most recently placed card and answers the
// legality questions the state machine asks about it.
type DiscardPile struct {
	Zone
	rules   Rules
	onPlace func(Placement)
}

// NewDiscardPile creates an empty discard pile governed by the given rules.
func NewDiscardPile(rules Rules) *DiscardPile {
	return &DiscardPile{rules: rules}
}

// Rules returns the rule set the pile classifies cards against.
func (p *DiscardPile) Rules() Rules { return p.rules }

// SetPlacementHook registers the single consumer notified of every
// placement, including the seed card dealt at game start. Exactly one
// consumer may exist; setting a new hook replaces the old one.
func (p *DiscardPile) SetPlacementHook(fn func(Placement)) {
	p.onPlace = fn
}

// CanPlace reports whether the card may legally be placed: it must match
// the top card by rank or by suit. An empty pile accepts nothing.
func (p *DiscardPile) CanPlace(c Card) bool {
	top, ok := p.Top()
	if !ok {
		return false
	}
	return c.Rank == top.Rank || c.Suit == top.Suit
}

// IsDefendingCard reports whether the card can deflect an incoming
// penalty: any reverse, draw-two, or skip rank. False on an empty pile.
func (p *DiscardPile) IsDefendingCard(c Card) bool {
	if _, ok := p.Top(); !ok {
		return false
	}
	return p.rules.IsSpecialRank(c.Rank)
}

// IsNextInSequence reports whether the card continues a sequenced
// discard: its suit must differ from the top card's. Reserved for the
// sequenced-discard phase, which no transition currently enqueues.
func (p *DiscardPile) IsNextInSequence(c Card) bool {
	top, ok := p.Top()
	if !ok {
		return false
	}
	return c.Suit != top.Suit
}

// Place appends the card and notifies the registered consumer with the
// new and previous top cards.
func (p *DiscardPile) Place(c Card) {
	prev, hasPrev := p.Top()
	p.Add(c)
	if p.onPlace != nil {
		p.onPlace(Placement{Card: c, Prev: prev, HasPrev: hasPrev})
	}
}
