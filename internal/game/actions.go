// internal/game/actions.go
package game

import (
	"log"
	"time"

	"github.com/google/uuid"

	"makao/engine"
	"makao/internal/models"
)

// HandlePlayerAction routes incoming player actions (take, pass,
// discard). Validates game and player state before delegating to the
// engine; the engine itself enforces turn order, phase, and legality.
// Assumes lock is held by the caller.
func (g *MakaoGame) HandlePlayerAction(playerID uuid.UUID, action models.GameAction) {
	if g.GameOver {
		log.Printf("Game %s: Action %s from %s ignored (game over).", g.ID, action.ActionType, playerID)
		return
	}
	if !g.Started {
		log.Printf("Game %s: Action %s from %s ignored (game not started).", g.ID, action.ActionType, playerID)
		return
	}

	player := g.getPlayerByID(playerID)
	if player == nil || !player.Connected {
		log.Printf("Game %s: Action %s from non-existent/disconnected player %s ignored.", g.ID, action.ActionType, playerID)
		return
	}
	engineID, ok := g.PlayerToEngine[playerID]
	if !ok {
		log.Printf("Game %s: Action %s from %s ignored (no engine mapping).", g.ID, action.ActionType, playerID)
		return
	}

	g.lastSeen[playerID] = time.Now()

	pre := g.snapshotForDiff(engineID)

	switch action.ActionType {
	case "action_take":
		g.Engine.TakeCard(engineID)
	case "action_pass":
		g.Engine.Pass(engineID)
	case "action_discard":
		card, ok := parseCardPayload(action.Payload)
		if !ok {
			g.fireEventToPlayer(playerID, GameEvent{
				Type:    EventActionFail,
				Payload: map[string]interface{}{"message": "Malformed card payload."},
			})
			return
		}
		g.Engine.Discard(engineID, card)
	default:
		log.Printf("Game %s: Unknown action type '%s' from player %s.", g.ID, action.ActionType, playerID)
		g.fireEventToPlayer(playerID, GameEvent{
			Type:    EventActionFail,
			Payload: map[string]interface{}{"message": "Unknown action type."},
		})
		return
	}

	g.emitEventsForAction(playerID, engineID, action, pre)
	g.broadcastSyncStateToAll()
}

// actionDiff captures the observable state an action can change, taken
// before the engine call so the after state can be compared against it.
type actionDiff struct {
	handLen    int
	discardLen int
	penalty    int
}

func (g *MakaoGame) snapshotForDiff(engineID string) actionDiff {
	d := actionDiff{
		discardLen: g.Engine.Pile().Len(),
		penalty:    g.Engine.PenaltyCount(),
	}
	if ep := g.Engine.PlayerByID(engineID); ep != nil {
		d.handLen = ep.Hand.Len()
	}
	return d
}

// emitEventsForAction broadcasts the public consequences of an accepted
// action. Rejected actions change nothing and stay silent, matching the
// engine's no-op semantics.
// Assumes lock is held by caller.
func (g *MakaoGame) emitEventsForAction(playerID uuid.UUID, engineID string, action models.GameAction, pre actionDiff) {
	ep := g.Engine.PlayerByID(engineID)
	if ep == nil {
		return
	}

	switch action.ActionType {
	case "action_take":
		drawn := ep.Hand.Len() - pre.handLen
		if drawn <= 0 {
			return
		}
		g.fireEvent(GameEvent{
			Type:    EventPlayerTake,
			User:    &EventUser{ID: playerID},
			Payload: map[string]interface{}{"count": drawn, "handSize": ep.Hand.Len()},
		})
		if ep.HasCardOnAction {
			g.fireEventToPlayer(playerID, GameEvent{
				Type: EventPrivateTake,
				Card: eventCard(ep.CardOnAction),
			})
		}
		g.logAction(playerID, string(EventPlayerTake), map[string]interface{}{"count": drawn})

	case "action_pass":
		g.fireEvent(GameEvent{
			Type: EventPlayerPass,
			User: &EventUser{ID: playerID},
		})
		g.logAction(playerID, string(EventPlayerPass), nil)

	case "action_discard":
		if g.Engine.Pile().Len() <= pre.discardLen {
			return
		}
		top, _ := g.Engine.Pile().Top()
		g.fireEvent(GameEvent{
			Type:    EventPlayerDiscard,
			User:    &EventUser{ID: playerID},
			Card:    eventCard(top),
			Payload: map[string]interface{}{"handSize": ep.Hand.Len()},
		})
		g.logAction(playerID, string(EventPlayerDiscard), map[string]interface{}{"card": top.String()})
	}

	if penalty := g.Engine.PenaltyCount(); penalty != pre.penalty {
		g.fireEvent(GameEvent{
			Type:    EventGamePenalty,
			Payload: map[string]interface{}{"penalty": penalty},
		})
		g.logAction(uuid.Nil, string(EventGamePenalty), map[string]interface{}{"penalty": penalty})
	}
}

// parseCardPayload decodes a {"card": {"suit": n, "rank": n}} payload.
func parseCardPayload(payload map[string]interface{}) (engine.Card, bool) {
	raw, ok := payload["card"].(map[string]interface{})
	if !ok {
		return engine.Card{}, false
	}
	suit, ok := raw["suit"].(float64)
	if !ok || suit < 0 || suit >= float64(engine.NumSuits) {
		return engine.Card{}, false
	}
	rank, ok := raw["rank"].(float64)
	if !ok || rank < float64(engine.MinRank) || rank > float64(engine.MaxRank) {
		return engine.Card{}, false
	}
	return engine.Card{Suit: engine.Suit(suit), Rank: uint8(rank)}, true
}
