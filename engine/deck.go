package engine

// Deck is the draw pile. When it runs dry it transparently refills
// itself from the discard pile before reporting failure to the caller.
type Deck struct {
	Zone
	discard *DiscardPile
	rng     uint64
}

// NewDeck creates an empty deck tied to the given discard pile. The seed
// drives the shuffle; identical seeds produce identical permutations.
func NewDeck(discard *DiscardPile, seed uint64) *Deck {
	if seed == 0 {
		seed = 1 // xorshift can't start at 0
	}
	return &Deck{discard: discard, rng: seed}
}

// xorshift64, inline, no interface.
func (d *Deck) nextRand() uint64 {
	x := d.rng
	x ^= x << 13
	x ^= x >> 7
	x ^= x << 17
	d.rng = x
	return x
}

// randN returns a random number in [0, n).
func (d *Deck) randN(n int) int {
	return int(d.nextRand() % uint64(n))
}

// Reset rebuilds the standard 52-card set and shuffles it.
func (d *Deck) Reset() {
	d.Clear()
	for suit := Suit(0); suit < NumSuits; suit++ {
		for rank := MinRank; rank <= MaxRank; rank++ {
			d.Add(Card{Suit: suit, Rank: rank})
		}
	}
	d.Shuffle()
}

// Shuffle applies a uniform Fisher-Yates shuffle.
func (d *Deck) Shuffle() {
	for i := d.Len() - 1; i > 0; i-- {
		j := d.randN(i + 1)
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	}
}

// Draw removes and returns the top card. An empty deck first pulls the
// discard pile's entire contents back in as new draw stock; only when
// both piles are exhausted does Draw report no card.
func (d *Deck) Draw() (Card, bool) {
	if d.Len() == 0 {
		d.refill()
	}
	return d.RemoveTop()
}

// refill moves every discard-pile card into the deck. The discarded
// order becomes the new draw order, matching how the physical pile is
// turned back into stock.
func (d *Deck) refill() {
	for {
		c, ok := d.discard.RemoveAt(0)
		if !ok {
			return
		}
		d.Add(c)
	}
}

// TakeCard draws one card directly into the given hand.
func (d *Deck) TakeCard(h *Hand) (Card, bool) {
	c, ok := d.Draw()
	if ok {
		h.Add(c)
	}
	return c, ok
}

// DealInitial distributes perHand cards to each hand round-robin in the
// given turn order, then seeds the discard pile with one more drawn card.
func (d *Deck) DealInitial(hands []*Hand, perHand int) {
	for i := 0; i < perHand; i++ {
		for _, h := range hands {
			if c, ok := d.Draw(); ok {
				h.Add(c)
			}
		}
	}
	if c, ok := d.Draw(); ok {
		d.discard.Place(c)
	}
}
