// internal/database/database.go
package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"makao/internal/models"
)

// DB is the shared connection pool. Nil when Postgres is not configured;
// persistence helpers degrade to no-ops in that case.
var DB *pgxpool.Pool

// Connect opens the shared pool using DATABASE_URL.
func Connect(ctx context.Context) error {
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		return errors.New("DATABASE_URL is not set")
	}
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return fmt.Errorf("create pgx pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return fmt.Errorf("ping postgres: %w", err)
	}
	DB = pool
	logrus.Info("connected to postgres")
	return nil
}

// Close releases the shared pool.
func Close() {
	if DB != nil {
		DB.Close()
		DB = nil
	}
}

// CreateUser inserts a new account.
func CreateUser(ctx context.Context, u *models.User) error {
	if DB == nil {
		return errors.New("database not connected")
	}
	_, err := DB.Exec(ctx,
		`INSERT INTO users (id, email, username, password_hash) VALUES ($1, $2, $3, $4)`,
		u.ID, u.Email, u.Username, u.PasswordHash)
	if err != nil {
		return fmt.Errorf("insert user %s: %w", u.Email, err)
	}
	return nil
}

// GetUserByEmail loads an account by email, or nil when none exists.
func GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	if DB == nil {
		return nil, errors.New("database not connected")
	}
	var u models.User
	err := DB.QueryRow(ctx,
		`SELECT id, email, username, password_hash FROM users WHERE email = $1`,
		email).Scan(&u.ID, &u.Email, &u.Username, &u.PasswordHash)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select user %s: %w", email, err)
	}
	return &u, nil
}

// GetUserByID loads an account by id, or nil when none exists.
func GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if DB == nil {
		return nil, errors.New("database not connected")
	}
	var u models.User
	err := DB.QueryRow(ctx,
		`SELECT id, email, username, password_hash FROM users WHERE id = $1`,
		id).Scan(&u.ID, &u.Email, &u.Username, &u.PasswordHash)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select user %s: %w", id, err)
	}
	return &u, nil
}

// UpsertInitialGameState stores the opening snapshot of a game for
// replay and audit. Called on a goroutine; failures are logged, not
// returned, because the game must not stall on persistence.
func UpsertInitialGameState(gameID uuid.UUID, snapshot interface{}) {
	if DB == nil {
		return
	}
	raw, err := json.Marshal(snapshot)
	if err != nil {
		logrus.Errorf("game %s: marshal initial state: %v", gameID, err)
		return
	}
	_, err = DB.Exec(context.Background(),
		`INSERT INTO game_states (game_id, initial_state, created_at)
		 VALUES ($1, $2, now())
		 ON CONFLICT (game_id) DO UPDATE SET initial_state = EXCLUDED.initial_state`,
		gameID, raw)
	if err != nil {
		logrus.Errorf("game %s: upsert initial state: %v", gameID, err)
	}
}

// StoreFinalGameState records the terminal snapshot and winner of a
// finished game.
func StoreFinalGameState(ctx context.Context, gameID uuid.UUID, snapshot interface{}) error {
	if DB == nil {
		return nil
	}
	raw, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("marshal final state: %w", err)
	}
	_, err = DB.Exec(ctx,
		`UPDATE game_states SET final_state = $2, finished_at = now() WHERE game_id = $1`,
		gameID, raw)
	if err != nil {
		return fmt.Errorf("store final state for game %s: %w", gameID, err)
	}
	return nil
}
