// internal/game/sync_state.go
package game

import (
	"github.com/google/uuid"
)

// ObfCard represents a card's state for client synchronization.
type ObfCard struct {
	Suit    int    `json:"suit"`
	Rank    int    `json:"rank"`
	Display string `json:"display"`
}

// ObfPlayerState represents the state of a single player, obfuscated for
// a specific observer.
type ObfPlayerState struct {
	PlayerID      uuid.UUID `json:"playerId"`
	Username      string    `json:"username"`
	HandSize      int       `json:"handSize"`
	Connected     bool      `json:"connected"`
	IsBot         bool      `json:"isBot"`
	IsCurrentTurn bool      `json:"isCurrentTurn"`
	// RevealedHand is populated only for the player requesting the state.
	RevealedHand []ObfCard `json:"revealedHand,omitempty"`
}

// ObfGameState represents the overall game state, obfuscated for a
// specific observer.
type ObfGameState struct {
	GameID          uuid.UUID        `json:"gameId"`
	Started         bool             `json:"started"`
	GameOver        bool             `json:"gameOver"`
	Phase           string           `json:"phase"`
	TurnID          int              `json:"turnId"`
	CurrentPlayerID uuid.UUID        `json:"currentPlayerId,omitempty"`
	Direction       int              `json:"direction"`
	PenaltyCount    int              `json:"penaltyCount"`
	DeckSize        int              `json:"deckSize"`
	DiscardSize     int              `json:"discardSize"`
	DiscardTop      *ObfCard         `json:"discardTop,omitempty"`
	Players         []ObfPlayerState `json:"players"`
}

// GetCurrentObfuscatedGameState generates a snapshot of the game state
// tailored to the perspective of the requesting user. Only that user's
// hand is revealed; everyone else contributes a count.
// Assumes lock is held by caller.
func (g *MakaoGame) GetCurrentObfuscatedGameState(forUser uuid.UUID) ObfGameState {
	obf := ObfGameState{
		GameID:   g.ID,
		Started:  g.Started,
		GameOver: g.GameOver,
	}
	if g.Engine == nil {
		return obf
	}

	obf.Phase = g.Engine.Phase().String()
	obf.TurnID = g.TurnID
	obf.Direction = g.Engine.Direction()
	obf.PenaltyCount = g.Engine.PenaltyCount()
	obf.DeckSize = g.Engine.Deck().Len()
	obf.DiscardSize = g.Engine.Pile().Len()

	// The top discard is public knowledge.
	if top, ok := g.Engine.Pile().Top(); ok {
		obf.DiscardTop = &ObfCard{
			Suit:    int(top.Suit),
			Rank:    int(top.Rank),
			Display: top.String(),
		}
	}

	var currentEngineID string
	if cur := g.Engine.CurrentPlayer(); cur != nil && !g.GameOver {
		currentEngineID = cur.ID
		obf.CurrentPlayerID = g.EngineToPlayer[currentEngineID]
	}

	obf.Players = make([]ObfPlayerState, len(g.Players))
	for i, pl := range g.Players {
		ps := ObfPlayerState{
			PlayerID:  pl.ID,
			Connected: pl.Connected,
			IsBot:     pl.IsBot,
		}
		if pl.User != nil {
			ps.Username = pl.User.Username
		}

		engineID := g.PlayerToEngine[pl.ID]
		if ep := g.Engine.PlayerByID(engineID); ep != nil {
			ps.HandSize = ep.Hand.Len()
			ps.IsCurrentTurn = engineID == currentEngineID

			if pl.ID == forUser {
				cards := ep.Hand.Cards()
				ps.RevealedHand = make([]ObfCard, len(cards))
				for j, c := range cards {
					ps.RevealedHand[j] = ObfCard{
						Suit:    int(c.Suit),
						Rank:    int(c.Rank),
						Display: c.String(),
					}
				}
			}
		}
		obf.Players[i] = ps
	}

	return obf
}
