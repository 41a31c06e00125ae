// internal/models/models.go
package models

import (
	"github.com/coder/websocket"
	"github.com/google/uuid"
)

// User is a registered account.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
}

// Player is one participant in a running game: the account, the live
// WebSocket connection (nil for bots and disconnected players), and the
// seat they occupy.
type Player struct {
	ID        uuid.UUID
	User      *User
	Conn      *websocket.Conn
	Connected bool
	IsBot     bool
	Seat      int
}

// GameAction is a decoded client action message.
type GameAction struct {
	ActionType string                 `json:"action"`
	Payload    map[string]interface{} `json:"payload,omitempty"`
}
