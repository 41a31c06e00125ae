// internal/game/game.go
package game

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"makao/engine"
	"makao/internal/cache"
	"makao/internal/database"
	"makao/internal/models"
)

// OnGameEndFunc defines the signature for a callback executed when a game
// ends. The winner is uuid.Nil when the game ended without one.
type OnGameEndFunc func(gameID uuid.UUID, winner uuid.UUID)

// defaultTickInterval is how often the turn clock advances.
const defaultTickInterval = 250 * time.Millisecond

// MakaoGame represents the state and transport for a single game
// instance. The engine holds the authoritative card and turn state; this
// layer owns connections, timers, persistence, and the action log.
type MakaoGame struct {
	ID      uuid.UUID // Unique identifier for this game instance.
	LobbyID uuid.UUID // ID of the lobby that created this game.

	Rules   engine.Rules
	Players []*models.Player

	// Engine integration. The engine holds the authoritative game state.
	Engine         *engine.Game
	PlayerToEngine map[uuid.UUID]string // Service player UUID -> engine player id.
	EngineToPlayer map[string]uuid.UUID // Engine player id -> service player UUID.

	// Turn management.
	TurnID       int           // Increments each turn, used for sync checks.
	TickInterval time.Duration // Real-time cadence feeding the engine clock.
	actionIndex  int           // Sequential index for logging actions via historian.

	// Lifecycle state.
	Started  bool
	GameOver bool

	lastSeen map[uuid.UUID]time.Time // Tracks last activity time per player.
	Mu       sync.Mutex              // Mutex protecting concurrent access to game state.

	// Communication callbacks.
	BroadcastFn         func(ev GameEvent)                     // Sends an event to all connected players.
	BroadcastToPlayerFn func(playerID uuid.UUID, ev GameEvent) // Sends an event to a single player.
	OnGameEnd           OnGameEndFunc                          // Callback executed when the game finishes.

	stopTicker chan struct{}
	stopOnce   sync.Once
}

// NewMakaoGame creates a new game instance with default settings. The
// engine is initialized in Start, once the player list is final.
func NewMakaoGame() *MakaoGame {
	id, _ := uuid.NewRandom()
	rules := engine.DefaultRules()
	rules.MaxTurns = 1000
	return &MakaoGame{
		ID:             id,
		Rules:          rules,
		TickInterval:   defaultTickInterval,
		PlayerToEngine: make(map[uuid.UUID]string),
		EngineToPlayer: make(map[string]uuid.UUID),
		lastSeen:       make(map[uuid.UUID]time.Time),
		stopTicker:     make(chan struct{}),
	}
}

// AddPlayer adds a player to the game if not started, or marks them as
// reconnected.
// Assumes lock is held by caller.
func (g *MakaoGame) AddPlayer(p *models.Player) {
	for i, pl := range g.Players {
		if pl.ID == p.ID {
			g.Players[i].Conn = p.Conn
			g.Players[i].Connected = true
			g.Players[i].User = p.User
			g.lastSeen[p.ID] = time.Now()
			log.Printf("Game %s: Player %s reconnected.", g.ID, p.ID)
			g.logAction(p.ID, "player_add", map[string]interface{}{"reconnect": true})
			return
		}
	}
	if g.Started {
		log.Printf("Game %s: Player %s cannot join, game already started.", g.ID, p.ID)
		if p.Conn != nil {
			p.Conn.Close(websocket.StatusPolicyViolation, "Game already in progress.")
		}
		return
	}
	p.Seat = len(g.Players)
	g.Players = append(g.Players, p)
	g.lastSeen[p.ID] = time.Now()
	log.Printf("Game %s: Player %s added at seat %d.", g.ID, p.ID, p.Seat)
	g.logAction(p.ID, "player_add", map[string]interface{}{"reconnect": false, "seat": p.Seat})
}

// Start deals the opening hands and begins the first turn. Bot-only
// games run to completion synchronously inside this call.
// Assumes lock is held by caller.
func (g *MakaoGame) Start() {
	if g.Started || g.GameOver {
		log.Printf("Game %s: Start called in invalid state (Started:%v, Over:%v).", g.ID, g.Started, g.GameOver)
		return
	}
	if len(g.Players) < g.Rules.MinPlayers {
		log.Printf("Game %s: Need at least %d players, have %d. Cannot start.", g.ID, g.Rules.MinPlayers, len(g.Players))
		return
	}

	seats := make([]engine.PlayerInfo, len(g.Players))
	for i, p := range g.Players {
		engineID := p.ID.String()
		g.PlayerToEngine[p.ID] = engineID
		g.EngineToPlayer[engineID] = p.ID
		name := engineID
		if p.User != nil {
			name = p.User.Username
		}
		seats[i] = engine.PlayerInfo{ID: engineID, Name: name, Seat: p.Seat, Bot: p.IsBot}
	}

	seed := uint64(time.Now().UnixNano())
	g.Engine = engine.NewGame(seed, g.Rules, seats)
	g.Engine.OnTurn = g.onEngineTurn
	g.Engine.OnNotice = g.onEngineNotice
	g.Engine.OnGameEnd = g.onEngineGameEnd

	g.Started = true
	g.logAction(uuid.Nil, "game_start", map[string]interface{}{"players": len(g.Players)})

	g.Engine.StartNewGame()
	g.persistInitialGameState()

	if !g.GameOver {
		g.broadcastSyncStateToAll()
		g.startTicker()
	}
	log.Printf("Game %s: Started with %d players.", g.ID, len(g.Players))
}

// startTicker launches the real-time driver for the engine's turn clock.
// Assumes lock is held by caller.
func (g *MakaoGame) startTicker() {
	interval := g.TickInterval
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-g.stopTicker:
				return
			case <-ticker.C:
				g.Mu.Lock()
				if !g.GameOver && g.Engine != nil {
					g.Engine.Tick(interval.Seconds())
				}
				over := g.GameOver
				g.Mu.Unlock()
				if over {
					return
				}
			}
		}
	}()
}

func (g *MakaoGame) stopTickerOnce() {
	g.stopOnce.Do(func() { close(g.stopTicker) })
}

// onEngineTurn receives the engine's per-phase board snapshot.
// Runs inside an engine call, so the lock is already held.
func (g *MakaoGame) onEngineTurn(board engine.Board) {
	g.TurnID++
	playerUUID := g.EngineToPlayer[board.PlayerID]
	payload := map[string]interface{}{
		"turnId":   g.TurnID,
		"phase":    g.Engine.Phase().String(),
		"handSize": len(board.Hand),
	}
	ev := GameEvent{
		Type:    EventGamePlayerTurn,
		User:    &EventUser{ID: playerUUID},
		Payload: payload,
	}
	if board.HasTopCard {
		ev.Card = eventCard(board.TopCard)
	}
	g.fireEvent(ev)
	g.sendSyncState(playerUUID)
}

// onEngineNotice relays the engine's status lines.
// Runs inside an engine call, so the lock is already held.
func (g *MakaoGame) onEngineNotice(msg string) {
	g.fireEvent(GameEvent{
		Type:    EventGameNotice,
		Payload: map[string]interface{}{"message": msg},
	})
}

// onEngineGameEnd finalizes the game when the engine reaches its
// terminal state.
// Runs inside an engine call, so the lock is already held.
func (g *MakaoGame) onEngineGameEnd(winnerID string) {
	if g.GameOver {
		return
	}
	g.GameOver = true
	g.stopTickerOnce()

	winner := uuid.Nil
	if winnerID != "" {
		winner = g.EngineToPlayer[winnerID]
	}
	log.Printf("Game %s: Ended. Winner: %s.", g.ID, winner)

	g.logAction(uuid.Nil, string(EventGameEnd), map[string]interface{}{
		"winner": winner.String(),
		"turns":  g.Engine.TurnNumber(),
	})
	g.persistFinalGameState(winner)

	g.fireEvent(GameEvent{
		Type: EventGameEnd,
		Payload: map[string]interface{}{
			"winner": winner.String(),
			"turns":  g.Engine.TurnNumber(),
		},
	})
	if g.OnGameEnd != nil {
		g.OnGameEnd(g.ID, winner)
	}
}

// HandleDisconnect marks a player as disconnected. The engine keeps
// their seat; the turn clock forces their moves until they return.
// Assumes lock is held by caller.
func (g *MakaoGame) HandleDisconnect(playerID uuid.UUID) {
	player := g.getPlayerByID(playerID)
	if player == nil || !player.Connected {
		return
	}
	player.Connected = false
	player.Conn = nil
	log.Printf("Game %s: Player %s disconnected.", g.ID, playerID)
	g.logAction(playerID, "player_disconnect", nil)

	if g.Started && !g.GameOver && g.countConnectedPlayers() == 0 && !g.hasBots() {
		log.Printf("Game %s: All players disconnected. Abandoning game.", g.ID)
		g.GameOver = true
		g.stopTickerOnce()
		return
	}
	g.broadcastSyncStateToAll()
}

// HandleReconnect marks a player as connected and sends them the current
// game state.
// Assumes lock is held by caller.
func (g *MakaoGame) HandleReconnect(playerID uuid.UUID, conn *websocket.Conn) {
	player := g.getPlayerByID(playerID)
	if player == nil {
		log.Printf("Game %s: Reconnecting player %s not found.", g.ID, playerID)
		if conn != nil {
			conn.Close(websocket.StatusPolicyViolation, "You are not part of this game.")
		}
		return
	}
	player.Connected = true
	player.Conn = conn
	g.lastSeen[playerID] = time.Now()
	g.logAction(playerID, "player_reconnect", nil)

	g.sendSyncState(playerID)
	g.broadcastSyncStateToAll()
}

// fireEvent broadcasts an event to all connected players.
// Assumes lock is held by caller.
func (g *MakaoGame) fireEvent(ev GameEvent) {
	if g.BroadcastFn == nil {
		return
	}
	g.BroadcastFn(ev)
}

// fireEventToPlayer sends an event to a specific connected player.
// Assumes lock is held by caller.
func (g *MakaoGame) fireEventToPlayer(playerID uuid.UUID, ev GameEvent) {
	if g.BroadcastToPlayerFn == nil {
		return
	}
	player := g.getPlayerByID(playerID)
	if player == nil || !player.Connected {
		return
	}
	g.BroadcastToPlayerFn(playerID, ev)
}

// sendSyncState sends the current obfuscated game state to one player.
// Assumes lock is held by caller.
func (g *MakaoGame) sendSyncState(playerID uuid.UUID) {
	state := g.GetCurrentObfuscatedGameState(playerID)
	g.fireEventToPlayer(playerID, GameEvent{
		Type:  EventPrivateSyncState,
		State: &state,
	})
}

// broadcastSyncStateToAll sends each connected player their own view.
// Assumes lock is held by caller.
func (g *MakaoGame) broadcastSyncStateToAll() {
	for _, p := range g.Players {
		if p.Connected {
			g.sendSyncState(p.ID)
		}
	}
}

func (g *MakaoGame) countConnectedPlayers() int {
	count := 0
	for _, p := range g.Players {
		if p.Connected {
			count++
		}
	}
	return count
}

func (g *MakaoGame) hasBots() bool {
	for _, p := range g.Players {
		if p.IsBot {
			return true
		}
	}
	return false
}

// getPlayerByID finds a player by ID, or nil.
// Assumes lock is held by caller.
func (g *MakaoGame) getPlayerByID(playerID uuid.UUID) *models.Player {
	for _, p := range g.Players {
		if p.ID == playerID {
			return p
		}
	}
	return nil
}

// logAction sends game action details to the historian via Redis.
// Increments the internal action index for ordering.
// Assumes lock is held by caller.
func (g *MakaoGame) logAction(actorID uuid.UUID, actionType string, payload map[string]interface{}) {
	g.actionIndex++
	if payload == nil {
		payload = make(map[string]interface{})
	}
	record := cache.GameActionRecord{
		GameID:        g.ID,
		ActionIndex:   g.actionIndex,
		ActorUserID:   actorID,
		ActionType:    actionType,
		ActionPayload: payload,
		Timestamp:     time.Now().UnixMilli(),
	}

	go func(rec cache.GameActionRecord) {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if cache.Rdb == nil {
			return
		}
		if err := cache.PublishGameAction(ctx, rec); err != nil {
			log.Printf("Error: Game %s: Failed publishing action %d ('%s') to Redis: %v", g.ID, rec.ActionIndex, rec.ActionType, err)
		}
	}(record)
}

// persistInitialGameState saves the opening deal for replay/audit.
// Assumes lock is held by caller.
func (g *MakaoGame) persistInitialGameState() {
	type initialState struct {
		DeckSize int                 `json:"deckSize"`
		Players  map[string][]string `json:"players"`
	}
	snap := initialState{
		DeckSize: g.Engine.Deck().Len(),
		Players:  make(map[string][]string),
	}
	for _, ep := range g.Engine.Players() {
		cards := ep.Hand.Cards()
		rendered := make([]string, len(cards))
		for i, c := range cards {
			rendered[i] = c.String()
		}
		snap.Players[ep.ID] = rendered
	}
	if database.DB != nil {
		go database.UpsertInitialGameState(g.ID, snap)
	}
	g.logAction(uuid.Nil, "game_initial_state_saved", map[string]interface{}{"deckSize": snap.DeckSize})
}

// persistFinalGameState saves final hands and the winner.
// Assumes lock is held by caller.
func (g *MakaoGame) persistFinalGameState(winner uuid.UUID) {
	type finalPlayerState struct {
		Hand []string `json:"hand"`
	}
	players := map[string]finalPlayerState{}
	for _, ep := range g.Engine.Players() {
		cards := ep.Hand.Cards()
		rendered := make([]string, len(cards))
		for i, c := range cards {
			rendered[i] = c.String()
		}
		players[ep.ID] = finalPlayerState{Hand: rendered}
	}
	snapshot := map[string]interface{}{
		"players": players,
		"winner":  winner.String(),
		"turns":   g.Engine.TurnNumber(),
	}
	if database.DB != nil {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := database.StoreFinalGameState(ctx, g.ID, snapshot); err != nil {
				log.Printf("Error: Game %s: Failed storing final state: %v", g.ID, err)
			}
		}()
	}
}
