package history

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/askwhyharsh/scamcheck/internal/storage"
	"github.com/askwhyharsh/scamcheck/pkg/logger"
)

type RedisStore struct {
	redis    storage.RedisClient
	maxItems int
	ttl      time.Duration
	logger   logger.Logger
}

func NewRedisStore(redisClient storage.RedisClient, maxItems int, ttl time.Duration, log logger.Logger) *RedisStore {
	if maxItems <= 0 {
		maxItems = DefaultMaxItems
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &RedisStore{
		redis:    redisClient,
		maxItems: maxItems,
		ttl:      ttl,
		logger:   log,
	}
}

func (s *RedisStore) Add(ctx context.Context, clientID string, entry Entry) error {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal history entry: %w", err)
	}

	key := s.historyKey(clientID)

	if err := s.redis.ZAdd(ctx, key, &redis.Z{
		Score:  float64(entry.Timestamp.UnixNano()),
		Member: data,
	}); err != nil {
		return fmt.Errorf("failed to save history entry: %w", err)
	}

	// Drop everything below the newest maxItems
	if err := s.redis.ZRemRangeByRank(ctx, key, 0, int64(-s.maxItems-1)); err != nil {
		return fmt.Errorf("failed to trim history: %w", err)
	}

	if s.ttl > 0 {
		if err := s.redis.Expire(ctx, key, s.ttl); err != nil {
			return fmt.Errorf("failed to set history expiry: %w", err)
		}
	}

	return nil
}

// List skips members that no longer decode as an Entry and logs each one.
func (s *RedisStore) List(ctx context.Context, clientID string) ([]Entry, error) {
	key := s.historyKey(clientID)
	results, err := s.redis.ZRevRange(ctx, key, 0, int64(s.maxItems-1))
	if err != nil {
		return nil, fmt.Errorf("failed to get history: %w", err)
	}

	entries := make([]Entry, 0, len(results))
	for _, data := range results {
		var entry Entry
		if err := json.Unmarshal([]byte(data), &entry); err != nil {
			s.logger.Warn("Skipping corrupt history entry", "key", key, "bytes", len(data), "error", err)
			continue
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

func (s *RedisStore) Clear(ctx context.Context, clientID string) error {
	if err := s.redis.Del(ctx, s.historyKey(clientID)); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return nil
}

func (s *RedisStore) historyKey(clientID string) string {
	return fmt.Sprintf("history:%s", clientID)
}
