package engine

// Rules holds the configurable game rule settings.
type Rules struct {
	HandSize    int     // cards dealt to each player at the start
	TurnSeconds float64 // per-turn countdown budget; 0 means every turn starts expired
	PenaltyStep int     // cards added to the penalty counter per draw-two
	DrawTwoRank uint8   // rank that imposes the draw penalty
	SkipRank    uint8   // rank that skips the next player
	ReverseRank uint8   // rank that flips the turn direction
	MaxTurns    int     // 0 = unlimited; otherwise the game ends once reached
	MinPlayers  int
}

// DefaultRules returns the standard Makao rule set.
func DefaultRules() Rules {
	return Rules{
		HandSize:    5,
		TurnSeconds: 30,
		PenaltyStep: 2,
		DrawTwoRank: 2,
		SkipRank:    7,
		ReverseRank: 8,
		MaxTurns:    0,
		MinPlayers:  2,
	}
}

// IsSpecialRank reports whether the rank alters turn order or penalty
// state when discarded. These are also the ranks that defend against an
// incoming penalty.
func (r Rules) IsSpecialRank(rank uint8) bool {
	return rank == r.DrawTwoRank || rank == r.SkipRank || rank == r.ReverseRank
}
