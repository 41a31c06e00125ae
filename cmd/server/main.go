// cmd/server/main.go
package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"makao/internal/auth"
	"makao/internal/cache"
	"makao/internal/database"
	"makao/internal/game"
	"makao/internal/models"
)

// server holds the registry of running games.
type server struct {
	mu    sync.Mutex
	games map[uuid.UUID]*game.MakaoGame
}

func newServer() *server {
	return &server{games: make(map[uuid.UUID]*game.MakaoGame)}
}

// getOrCreateGame returns the game for the given id, creating and wiring
// it on first use. A Nil id always creates a fresh game.
func (s *server) getOrCreateGame(gameID uuid.UUID) *game.MakaoGame {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gameID != uuid.Nil {
		if g, ok := s.games[gameID]; ok {
			return g
		}
	}
	g := game.NewMakaoGame()
	if gameID != uuid.Nil {
		g.ID = gameID
	}
	s.attachBroadcasters(g)
	g.OnGameEnd = func(id uuid.UUID, winner uuid.UUID) {
		logrus.WithFields(logrus.Fields{"game": id, "winner": winner}).Info("game finished")
		// Keep finished games around briefly so clients can fetch results.
		go func() {
			time.Sleep(5 * time.Minute)
			s.mu.Lock()
			delete(s.games, id)
			s.mu.Unlock()
		}()
	}
	s.games[g.ID] = g
	return g
}

// attachBroadcasters wires the game's event callbacks to the players'
// WebSocket connections. Called once per game, before any player joins,
// so the callbacks are never replaced while the game lock is contended.
func (s *server) attachBroadcasters(g *game.MakaoGame) {
	g.BroadcastFn = func(ev game.GameEvent) {
		for _, p := range g.Players {
			if p.Connected && p.Conn != nil {
				writeEvent(p.Conn, ev)
			}
		}
	}
	g.BroadcastToPlayerFn = func(playerID uuid.UUID, ev game.GameEvent) {
		for _, p := range g.Players {
			if p.ID == playerID && p.Connected && p.Conn != nil {
				writeEvent(p.Conn, ev)
				return
			}
		}
	}
}

func writeEvent(conn *websocket.Conn, ev game.GameEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := wsjson.Write(ctx, conn, ev); err != nil {
		logrus.Debugf("dropping event %s: %v", ev.Type, err)
	}
}

type credentials struct {
	Email    string `json:"email"`
	Username string `json:"username,omitempty"`
	Password string `json:"password"`
}

func (s *server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var creds credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil || creds.Email == "" || creds.Password == "" {
		http.Error(w, "email and password required", http.StatusBadRequest)
		return
	}
	hash, err := auth.HashPassword(creds.Password)
	if err != nil {
		logrus.Errorf("register %s: %v", creds.Email, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	user := &models.User{
		ID:           uuid.New(),
		Email:        creds.Email,
		Username:     creds.Username,
		PasswordHash: hash,
	}
	if err := database.CreateUser(r.Context(), user); err != nil {
		logrus.Errorf("register %s: %v", creds.Email, err)
		http.Error(w, "could not create user", http.StatusConflict)
		return
	}
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(user)
}

func (s *server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var creds credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		http.Error(w, "malformed request", http.StatusBadRequest)
		return
	}
	user, err := database.GetUserByEmail(r.Context(), creds.Email)
	if err != nil {
		logrus.Errorf("login %s: %v", creds.Email, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if user == nil || !auth.CheckPassword(user.PasswordHash, creds.Password) {
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}
	token, err := auth.CreateToken(user.ID)
	if err != nil {
		logrus.Errorf("login %s: %v", creds.Email, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(map[string]string{"token": token})
}

// handleGameWS upgrades the connection and runs the player's read loop.
// Query params: token (required), game_id (optional, join an existing
// game).
func (s *server) handleGameWS(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.ParseToken(r.URL.Query().Get("token"))
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	gameID := uuid.Nil
	if raw := r.URL.Query().Get("game_id"); raw != "" {
		gameID, err = uuid.Parse(raw)
		if err != nil {
			http.Error(w, "malformed game_id", http.StatusBadRequest)
			return
		}
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: os.Getenv("WS_ALLOW_ANY_ORIGIN") == "true",
	})
	if err != nil {
		logrus.Warnf("ws accept: %v", err)
		return
	}

	user := s.loadUser(r.Context(), userID)
	g := s.getOrCreateGame(gameID)

	player := &models.Player{
		ID:        userID,
		User:      user,
		Conn:      conn,
		Connected: true,
	}
	g.Mu.Lock()
	g.AddPlayer(player)
	g.Mu.Unlock()

	logrus.WithFields(logrus.Fields{"game": g.ID, "user": userID}).Info("player connected")
	s.readLoop(r.Context(), conn, g, userID)
}

// loadUser fetches account details, falling back to a synthetic user
// when the database is unavailable.
func (s *server) loadUser(ctx context.Context, userID uuid.UUID) *models.User {
	if database.DB != nil {
		user, err := database.GetUserByID(ctx, userID)
		if err != nil {
			logrus.Warnf("load user %s: %v", userID, err)
		} else if user != nil {
			return user
		}
	}
	return &models.User{ID: userID, Username: "guest-" + userID.String()[:8]}
}

// readLoop decodes client messages until the connection drops.
// Lobby-level messages (start_game, add_bot) are handled here; game
// actions go to the game's action router.
func (s *server) readLoop(ctx context.Context, conn *websocket.Conn, g *game.MakaoGame, userID uuid.UUID) {
	defer func() {
		g.Mu.Lock()
		g.HandleDisconnect(userID)
		g.Mu.Unlock()
		conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		var action models.GameAction
		if err := wsjson.Read(ctx, conn, &action); err != nil {
			if websocket.CloseStatus(err) == -1 && !errors.Is(err, context.Canceled) {
				logrus.Debugf("game %s: read from %s: %v", g.ID, userID, err)
			}
			return
		}

		g.Mu.Lock()
		switch action.ActionType {
		case "start_game":
			g.Start()
		case "add_bot":
			botID := uuid.New()
			g.AddPlayer(&models.Player{
				ID:    botID,
				User:  &models.User{ID: botID, Username: "bot-" + botID.String()[:8]},
				IsBot: true,
			})
		default:
			g.HandlePlayerAction(userID, action)
		}
		g.Mu.Unlock()
	}
}

func main() {
	if err := godotenv.Load(); err != nil {
		logrus.Debug("no .env file found, relying on environment")
	}
	if os.Getenv("LOG_LEVEL") == "debug" {
		logrus.SetLevel(logrus.DebugLevel)
	}
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := database.Connect(ctx); err != nil {
		logrus.Warnf("postgres unavailable, persistence disabled: %v", err)
	}
	defer database.Close()
	if err := cache.InitRedis(ctx); err != nil {
		logrus.Warnf("redis unavailable, action log disabled: %v", err)
	}

	s := newServer()
	mux := http.NewServeMux()
	mux.HandleFunc("POST /register", s.handleRegister)
	mux.HandleFunc("POST /login", s.handleLogin)
	mux.HandleFunc("/game/ws", s.handleGameWS)

	addr := os.Getenv("LISTEN_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		httpServer.Shutdown(shutdownCtx)
	}()

	logrus.Infof("makao server listening on %s", addr)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logrus.Fatalf("server error: %v", err)
	}
}
