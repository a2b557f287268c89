package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/askwhyharsh/scamcheck/internal/storage"
)

// RateLimiter defines the contract for enforcing and managing rate limits.
type RateLimiter interface {
	// AllowAnalysis checks if a client may run another analysis right now.
	AllowAnalysis(ctx context.Context, clientKey string) (bool, error)

	// AllowIPRequest checks if an IP can make a request.
	AllowIPRequest(ctx context.Context, ip string) (bool, error)

	// RemainingAnalyses returns how many analyses a client has left in the current window.
	RemainingAnalyses(ctx context.Context, clientKey string) (int, error)
}

// Limiter is a sliding window limiter over Redis sorted sets.
type Limiter struct {
	redis  storage.RedisClient
	config *Config
	now    func() time.Time
}

func NewLimiter(redisClient storage.RedisClient, cfg *Config) *Limiter {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Limiter{
		redis:  redisClient,
		config: cfg,
		now:    time.Now,
	}
}

// AllowAnalysis checks if a client can run an analysis
func (l *Limiter) AllowAnalysis(ctx context.Context, clientKey string) (bool, error) {
	return l.checkSlidingWindow(ctx, analysisKey(clientKey), l.config.AnalysesPerMin)
}

// AllowIPRequest checks if an IP can make a request
func (l *Limiter) AllowIPRequest(ctx context.Context, ip string) (bool, error) {
	return l.checkSlidingWindow(ctx, requestKey(ip), l.config.RequestsPerMinute)
}

func (l *Limiter) RemainingAnalyses(ctx context.Context, clientKey string) (int, error) {
	key := analysisKey(clientKey)
	if err := l.evict(ctx, key); err != nil {
		return 0, err
	}

	count, err := l.redis.ZCard(ctx, key)
	if err != nil {
		return 0, fmt.Errorf("failed to count entries: %w", err)
	}

	return max(l.config.AnalysesPerMin-int(count), 0), nil
}

// checkSlidingWindow implements a sliding window rate limiter using sorted sets
func (l *Limiter) checkSlidingWindow(ctx context.Context, key string, maxCount int) (bool, error) {
	if err := l.evict(ctx, key); err != nil {
		return false, err
	}

	// Count entries in current window
	count, err := l.redis.ZCard(ctx, key)
	if err != nil {
		return false, fmt.Errorf("failed to count entries: %w", err)
	}

	if count >= int64(maxCount) {
		return false, nil
	}

	now := l.now()
	if err := l.redis.ZAdd(ctx, key, &redis.Z{
		Score:  float64(now.UnixMilli()),
		Member: fmt.Sprintf("%d-%s", now.UnixNano(), uuid.NewString()),
	}); err != nil {
		return false, fmt.Errorf("failed to add entry: %w", err)
	}

	if err := l.redis.Expire(ctx, key, l.config.Window); err != nil {
		return false, fmt.Errorf("failed to set expiry: %w", err)
	}

	return true, nil
}

// evict removes entries older than the window.
func (l *Limiter) evict(ctx context.Context, key string) error {
	windowStart := l.now().Add(-l.config.Window).UnixMilli()
	if err := l.redis.ZRemRangeByScore(ctx, key, "-inf", fmt.Sprintf("%d", windowStart)); err != nil {
		return fmt.Errorf("failed to clean old entries: %w", err)
	}
	return nil
}

func analysisKey(clientKey string) string {
	return fmt.Sprintf("ratelimit:analysis:%s", clientKey)
}

func requestKey(ip string) string {
	return fmt.Sprintf("ratelimit:ip:%s:requests", ip)
}

// MemoryLimiter is the same sliding window kept in process memory, used
// when Redis is not configured.
type MemoryLimiter struct {
	mu      sync.Mutex
	windows map[string][]time.Time
	config  *Config
	now     func() time.Time
}

func NewMemoryLimiter(cfg *Config) *MemoryLimiter {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &MemoryLimiter{
		windows: make(map[string][]time.Time),
		config:  cfg,
		now:     time.Now,
	}
}

func (l *MemoryLimiter) AllowAnalysis(_ context.Context, clientKey string) (bool, error) {
	return l.allow(analysisKey(clientKey), l.config.AnalysesPerMin), nil
}

func (l *MemoryLimiter) AllowIPRequest(_ context.Context, ip string) (bool, error) {
	return l.allow(requestKey(ip), l.config.RequestsPerMinute), nil
}

func (l *MemoryLimiter) RemainingAnalyses(_ context.Context, clientKey string) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	key := analysisKey(clientKey)
	hits := l.evict(key)
	return max(l.config.AnalysesPerMin-len(hits), 0), nil
}

func (l *MemoryLimiter) allow(key string, maxCount int) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	hits := l.evict(key)
	if len(hits) >= maxCount {
		return false
	}

	l.windows[key] = append(hits, l.now())
	return true
}

// Sweep evicts every key and returns how many were removed. Keys that are
// hit once and never again would otherwise stay in the map forever.
func (l *MemoryLimiter) Sweep() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for key := range l.windows {
		if len(l.evict(key)) == 0 {
			removed++
		}
	}
	return removed
}

// Len returns the number of keys currently tracked.
func (l *MemoryLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.windows)
}

// evict drops timestamps outside the window. Callers hold mu.
func (l *MemoryLimiter) evict(key string) []time.Time {
	cutoff := l.now().Add(-l.config.Window)

	hits := l.windows[key]
	i := 0
	for i < len(hits) && !hits[i].After(cutoff) {
		i++
	}
	hits = hits[i:]

	if len(hits) == 0 {
		delete(l.windows, key)
	} else {
		l.windows[key] = hits
	}
	return hits
}
