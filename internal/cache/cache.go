// internal/cache/cache.go
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Rdb is the shared Redis client. Nil when Redis is not configured; the
// action historian degrades to a no-op in that case.
var Rdb *redis.Client

// InitRedis connects the shared client using REDIS_ADDR and REDIS_PASSWORD.
// Returns an error when the server is unreachable.
func InitRedis(ctx context.Context) error {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASSWORD"),
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping %s: %w", addr, err)
	}
	Rdb = client
	logrus.Infof("connected to redis at %s", addr)
	return nil
}

// GameActionRecord is one entry in a game's append-only action log,
// consumed by the historian for replay and audit.
type GameActionRecord struct {
	GameID        uuid.UUID              `json:"gameId"`
	ActionIndex   int                    `json:"actionIndex"`
	ActorUserID   uuid.UUID              `json:"actorUserId"` // Nil for game-driven events.
	ActionType    string                 `json:"actionType"`
	ActionPayload map[string]interface{} `json:"actionPayload,omitempty"`
	Timestamp     int64                  `json:"timestamp"` // Unix milliseconds.
}

func actionListKey(gameID uuid.UUID) string {
	return "game:actions:" + gameID.String()
}

// PublishGameAction appends one action record to the game's Redis list.
func PublishGameAction(ctx context.Context, rec GameActionRecord) error {
	if Rdb == nil {
		return nil
	}
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal action record: %w", err)
	}
	if err := Rdb.RPush(ctx, actionListKey(rec.GameID), raw).Err(); err != nil {
		return fmt.Errorf("rpush action record: %w", err)
	}
	return nil
}

// FetchGameActions returns a game's full action log in order.
func FetchGameActions(ctx context.Context, gameID uuid.UUID) ([]GameActionRecord, error) {
	if Rdb == nil {
		return nil, nil
	}
	raws, err := Rdb.LRange(ctx, actionListKey(gameID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("lrange action log: %w", err)
	}
	records := make([]GameActionRecord, 0, len(raws))
	for _, raw := range raws {
		var rec GameActionRecord
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			logrus.Warnf("skipping malformed action record for game %s: %v", gameID, err)
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}
