package state

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/vladimiradmaev/health-records/internal/domain"
	"github.com/vladimiradmaev/health-records/internal/logger"
)

const stateTTL = 24 * time.Hour

// release deletes the key only if it still holds our token
var release = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

// NewRedisClient connects to redis and verifies the connection
func NewRedisClient(addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// RedisManager manages conversation state and in-flight claims in Redis,
// so several instances share them
type RedisManager struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisManager wraps a connected client; in-flight claims expire after ttl
func NewRedisManager(client *redis.Client, ttl time.Duration) *RedisManager {
	return &RedisManager{client: client, ttl: ttl}
}

func stateKey(userID int64) string { return fmt.Sprintf("user:%d:state", userID) }
func tempKey(userID int64) string  { return fmt.Sprintf("user:%d:temp", userID) }

// SetUserState sets the state for a user with TTL
func (m *RedisManager) SetUserState(userID int64, state string) {
	if err := m.client.Set(context.Background(), stateKey(userID), state, stateTTL).Err(); err != nil {
		logger.Warn("Failed to save user state", "user_id", userID, "error", err)
	}
}

// GetUserState gets the state for a user
func (m *RedisManager) GetUserState(userID int64) string {
	result := m.client.Get(context.Background(), stateKey(userID))
	if result.Err() != nil {
		return None
	}
	return result.Val()
}

func (m *RedisManager) ClearUserState(userID int64) {
	m.client.Del(context.Background(), stateKey(userID))
}

// SetTempData sets temporary data for a user
func (m *RedisManager) SetTempData(userID int64, key string, value interface{}) {
	tempData := m.getTempDataMap(userID)
	if tempData == nil {
		tempData = make(map[string]interface{})
	}
	tempData[key] = value
	m.saveTempDataMap(userID, tempData)
}

// GetTempData gets temporary data for a user
func (m *RedisManager) GetTempData(userID int64, key string) (interface{}, bool) {
	tempData := m.getTempDataMap(userID)
	if tempData == nil {
		return nil, false
	}
	value, exists := tempData[key]
	return value, exists
}

// ClearTempData clears all temporary data for a user
func (m *RedisManager) ClearTempData(userID int64) {
	m.client.Del(context.Background(), tempKey(userID))
}

// Begin claims key with SETNX; the claim expires on its own if never released
func (m *RedisManager) Begin(ctx context.Context, key string) (func(), error) {
	token := uuid.NewString()
	ok, err := m.client.SetNX(ctx, key, token, m.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to claim %s: %w", key, err)
	}
	if !ok {
		return nil, domain.ErrActionInFlight
	}
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := release.Run(ctx, m.client, []string{key}, token).Err(); err != nil {
			logger.Warn("Failed to release claim", "key", key, "error", err)
		}
	}, nil
}

// Close closes the Redis connection
func (m *RedisManager) Close() error {
	return m.client.Close()
}

func (m *RedisManager) getTempDataMap(userID int64) map[string]interface{} {
	result := m.client.Get(context.Background(), tempKey(userID))
	if result.Err() != nil {
		return nil
	}

	var tempData map[string]interface{}
	if err := json.Unmarshal([]byte(result.Val()), &tempData); err != nil {
		return nil
	}
	return tempData
}

func (m *RedisManager) saveTempDataMap(userID int64, tempData map[string]interface{}) {
	data, err := json.Marshal(tempData)
	if err != nil {
		return
	}
	m.client.Set(context.Background(), tempKey(userID), data, stateTTL)
}
