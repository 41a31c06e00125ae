// internal/game/events.go
package game

import (
	"github.com/google/uuid"

	"makao/engine"
)

// GameEventType represents the type of a game-related event broadcast via WebSockets.
type GameEventType string

// Constants defining the various GameEvent types used for WebSocket communication.
const (
	EventGamePlayerTurn   GameEventType = "game_player_turn"   // Public: Notification of the current player's turn.
	EventPlayerTake       GameEventType = "player_take"        // Public: Player drew a card (count only).
	EventPrivateTake      GameEventType = "private_take"       // Private: Details of the card drawn.
	EventPlayerPass       GameEventType = "player_pass"        // Public: Player passed.
	EventPlayerDiscard    GameEventType = "player_discard"     // Public: Player discarded a card (details revealed).
	EventGamePenalty      GameEventType = "game_penalty"       // Public: Penalty counter changed.
	EventGameNotice       GameEventType = "game_notice"        // Public: Human-readable status line.
	EventPrivateSyncState GameEventType = "private_sync_state" // Private: Full game state sync for a player.
	EventGameEnd          GameEventType = "game_end"           // Public: Game has ended, includes results.
	EventActionFail       GameEventType = "private_action_fail"
)

// EventUser identifies a user within a GameEvent payload.
type EventUser struct {
	ID uuid.UUID `json:"id"`
}

// EventCard carries a card's details within a GameEvent payload.
type EventCard struct {
	Suit    int    `json:"suit"`
	Rank    int    `json:"rank"`
	Display string `json:"display"`
}

// GameEvent is the standard structure for broadcasting game state changes and actions.
type GameEvent struct {
	Type    GameEventType          `json:"type"`
	User    *EventUser             `json:"user,omitempty"`    // The user initiating or targeted by the event.
	Card    *EventCard             `json:"card,omitempty"`    // Primary card involved.
	Payload map[string]interface{} `json:"payload,omitempty"` // Additional arbitrary data.
	State   *ObfGameState          `json:"state,omitempty"`   // Full obfuscated state for sync events.
}

func eventCard(c engine.Card) *EventCard {
	return &EventCard{
		Suit:    int(c.Suit),
		Rank:    int(c.Rank),
		Display: c.String(),
	}
}
