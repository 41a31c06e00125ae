// internal/game/game_test.go
package game

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"makao/engine"
	"makao/internal/models"
)

// mockBroadcaster captures game events for testing assertions.
type mockBroadcaster struct {
	mu           sync.Mutex
	allEvents    []GameEvent
	playerEvents map[uuid.UUID][]GameEvent
}

func newMockBroadcaster() *mockBroadcaster {
	return &mockBroadcaster{
		playerEvents: make(map[uuid.UUID][]GameEvent),
	}
}

func (mb *mockBroadcaster) broadcastFn(ev GameEvent) {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	mb.allEvents = append(mb.allEvents, ev)
}

func (mb *mockBroadcaster) broadcastToPlayerFn(playerID uuid.UUID, ev GameEvent) {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	mb.playerEvents[playerID] = append(mb.playerEvents[playerID], ev)
}

func (mb *mockBroadcaster) clear() {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	mb.allEvents = nil
	mb.playerEvents = make(map[uuid.UUID][]GameEvent)
}

func (mb *mockBroadcaster) publicEventCount() int {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	return len(mb.allEvents)
}

func (mb *mockBroadcaster) findEventByType(eventType GameEventType) *GameEvent {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	for i := len(mb.allEvents) - 1; i >= 0; i-- {
		if mb.allEvents[i].Type == eventType {
			return &mb.allEvents[i]
		}
	}
	return nil
}

func (mb *mockBroadcaster) findPlayerEventByType(playerID uuid.UUID, eventType GameEventType) *GameEvent {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	events := mb.playerEvents[playerID]
	for i := len(events) - 1; i >= 0; i-- {
		if events[i].Type == eventType {
			return &events[i]
		}
	}
	return nil
}

// setupTestGame initializes a MakaoGame with mock players and broadcasters.
func setupTestGame(t *testing.T, numPlayers int, bots bool) (*MakaoGame, []*models.Player, *mockBroadcaster) {
	t.Helper()
	g := NewMakaoGame()
	mb := newMockBroadcaster()
	g.BroadcastFn = mb.broadcastFn
	g.BroadcastToPlayerFn = mb.broadcastToPlayerFn

	players := make([]*models.Player, numPlayers)
	for i := 0; i < numPlayers; i++ {
		id := uuid.New()
		players[i] = &models.Player{
			ID:        id,
			User:      &models.User{ID: id, Username: "player-" + id.String()[:8]},
			Connected: !bots,
			IsBot:     bots,
		}
		g.Mu.Lock()
		g.AddPlayer(players[i])
		g.Mu.Unlock()
	}
	return g, players, mb
}

func TestStartDealsAndBroadcasts(t *testing.T) {
	g, players, mb := setupTestGame(t, 2, false)
	g.Mu.Lock()
	g.Start()
	g.Mu.Unlock()

	require.True(t, g.Started)
	require.NotNil(t, g.Engine)
	assert.False(t, g.GameOver)

	turnEv := mb.findEventByType(EventGamePlayerTurn)
	require.NotNil(t, turnEv, "no turn event broadcast")
	require.NotNil(t, turnEv.User)
	assert.Equal(t, players[0].ID, turnEv.User.ID, "first seat should open the game")
	assert.NotNil(t, turnEv.Card, "turn event missing the top discard")
	assert.Equal(t, "take_or_discard", turnEv.Payload["phase"], "turn event should carry the phase being entered")

	// Each player sees their own hand and only counts for others.
	syncEv := mb.findPlayerEventByType(players[0].ID, EventPrivateSyncState)
	require.NotNil(t, syncEv)
	require.NotNil(t, syncEv.State)
	state := syncEv.State
	total := state.DeckSize + state.DiscardSize
	for _, ps := range state.Players {
		total += ps.HandSize
	}
	assert.Equal(t, engine.DeckSize, total, "cards not conserved across zones")
	require.Len(t, state.Players, 2)
	for _, ps := range state.Players {
		assert.Equal(t, g.Rules.HandSize, ps.HandSize)
		if ps.PlayerID == players[0].ID {
			assert.Len(t, ps.RevealedHand, g.Rules.HandSize)
		} else {
			assert.Empty(t, ps.RevealedHand, "opponent hand leaked")
		}
	}
}

func TestHandleActionTake(t *testing.T) {
	g, players, mb := setupTestGame(t, 2, false)
	g.Mu.Lock()
	g.Start()
	g.Mu.Unlock()
	mb.clear()

	g.Mu.Lock()
	g.HandlePlayerAction(players[0].ID, models.GameAction{ActionType: "action_take"})
	handLen := g.Engine.Players()[0].Hand.Len()
	g.Mu.Unlock()

	assert.Equal(t, g.Rules.HandSize+1, handLen)
	takeEv := mb.findEventByType(EventPlayerTake)
	require.NotNil(t, takeEv, "no public take event")
	assert.Equal(t, players[0].ID, takeEv.User.ID)

	privateEv := mb.findPlayerEventByType(players[0].ID, EventPrivateTake)
	require.NotNil(t, privateEv, "no private take event")
	assert.NotNil(t, privateEv.Card)
}

func TestHandleActionDiscard(t *testing.T) {
	g, players, mb := setupTestGame(t, 2, false)
	g.Mu.Lock()
	g.Start()

	// Plant a guaranteed-legal plain card in the opener's hand.
	top, ok := g.Engine.Pile().Top()
	require.True(t, ok)
	planted := engine.Card{Suit: top.Suit, Rank: 5}
	g.Engine.Players()[0].Hand.Add(planted)
	g.Mu.Unlock()
	mb.clear()

	g.Mu.Lock()
	g.HandlePlayerAction(players[0].ID, models.GameAction{
		ActionType: "action_discard",
		Payload: map[string]interface{}{
			"card": map[string]interface{}{
				"suit": float64(planted.Suit),
				"rank": float64(planted.Rank),
			},
		},
	})
	newTop, _ := g.Engine.Pile().Top()
	g.Mu.Unlock()

	assert.Equal(t, planted, newTop)
	discardEv := mb.findEventByType(EventPlayerDiscard)
	require.NotNil(t, discardEv, "no public discard event")
	assert.Equal(t, players[0].ID, discardEv.User.ID)
	require.NotNil(t, discardEv.Card)
	assert.Equal(t, planted.String(), discardEv.Card.Display)
}

func TestActionFromUnknownPlayerIgnored(t *testing.T) {
	g, _, mb := setupTestGame(t, 2, false)
	g.Mu.Lock()
	g.Start()
	g.Mu.Unlock()
	mb.clear()

	g.Mu.Lock()
	g.HandlePlayerAction(uuid.New(), models.GameAction{ActionType: "action_take"})
	g.Mu.Unlock()

	assert.Zero(t, mb.publicEventCount(), "unknown player caused a broadcast")
}

func TestMalformedDiscardPayloadFails(t *testing.T) {
	g, players, mb := setupTestGame(t, 2, false)
	g.Mu.Lock()
	g.Start()
	g.Mu.Unlock()
	mb.clear()

	g.Mu.Lock()
	g.HandlePlayerAction(players[0].ID, models.GameAction{
		ActionType: "action_discard",
		Payload:    map[string]interface{}{"card": "junk"},
	})
	g.Mu.Unlock()

	failEv := mb.findPlayerEventByType(players[0].ID, EventActionFail)
	require.NotNil(t, failEv, "no failure event for malformed payload")
}

func TestBotGameRunsToCompletion(t *testing.T) {
	g, _, mb := setupTestGame(t, 2, true)

	var endedGame, winner uuid.UUID
	endCount := 0
	g.OnGameEnd = func(gameID uuid.UUID, w uuid.UUID) {
		endedGame = gameID
		winner = w
		endCount++
	}

	g.Mu.Lock()
	g.Start()
	g.Mu.Unlock()

	require.True(t, g.GameOver, "bot game did not finish")
	assert.Equal(t, 1, endCount)
	assert.Equal(t, g.ID, endedGame)
	_ = winner // May be Nil on a stalemate.

	endEv := mb.findEventByType(EventGameEnd)
	require.NotNil(t, endEv, "no game end event")
}

func TestDisconnectReconnect(t *testing.T) {
	g, players, mb := setupTestGame(t, 2, false)
	g.Mu.Lock()
	g.Start()
	g.Mu.Unlock()
	mb.clear()

	g.Mu.Lock()
	g.HandleDisconnect(players[1].ID)
	g.Mu.Unlock()
	assert.False(t, g.GameOver, "game ended while a player remained")
	g.Mu.Lock()
	connected := g.getPlayerByID(players[1].ID).Connected
	g.Mu.Unlock()
	assert.False(t, connected)

	g.Mu.Lock()
	g.HandleReconnect(players[1].ID, nil)
	connected = g.getPlayerByID(players[1].ID).Connected
	g.Mu.Unlock()
	assert.True(t, connected)

	syncEv := mb.findPlayerEventByType(players[1].ID, EventPrivateSyncState)
	require.NotNil(t, syncEv, "no sync state sent on reconnect")
}
