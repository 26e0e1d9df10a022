package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// HistoryStore keeps the most recent answered questions per user in Redis lists.
type HistoryStore struct {
	client *redis.Client
}

// NewHistoryStore creates a new exchange history store.
func NewHistoryStore(client *redis.Client) *HistoryStore {
	return &HistoryStore{client: client}
}

func historyKey(username string) string {
	return "history:" + username
}

// Append adds an exchange to the user's list, trims it to max entries and refreshes its TTL.
func (s *HistoryStore) Append(ctx context.Context, username string, ex Exchange, max int, ttl time.Duration) error {
	key := historyKey(username)

	data, err := json.Marshal(ex)
	if err != nil {
		return fmt.Errorf("marshaling exchange: %w", err)
	}

	pipe := s.client.Pipeline()
	pipe.RPush(ctx, key, string(data))
	pipe.LTrim(ctx, key, int64(-max), -1)
	pipe.Expire(ctx, key, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("pipeline exec for %s: %w", key, err)
	}
	return nil
}

// Recent returns up to limit exchanges for the user, oldest first.
func (s *HistoryStore) Recent(ctx context.Context, username string, limit int) ([]Exchange, error) {
	key := historyKey(username)

	vals, err := s.client.LRange(ctx, key, int64(-limit), -1).Result()
	if err != nil {
		return nil, fmt.Errorf("lrange %s: %w", key, err)
	}

	exchanges := make([]Exchange, 0, len(vals))
	for _, v := range vals {
		var ex Exchange
		if err := json.Unmarshal([]byte(v), &ex); err != nil {
			continue // skip malformed entries
		}
		exchanges = append(exchanges, ex)
	}
	return exchanges, nil
}

// Clear deletes the user's history.
func (s *HistoryStore) Clear(ctx context.Context, username string) error {
	return s.client.Del(ctx, historyKey(username)).Err()
}
