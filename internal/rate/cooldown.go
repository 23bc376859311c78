package rate

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// CooldownStore persists the end of a cooldown window per key.
type CooldownStore interface {
	SetUntil(ctx context.Context, key string, until time.Time) error
	Until(ctx context.Context, key string) (time.Time, bool, error)
}

// MemoryCooldownStore keeps cooldowns in process memory.
type MemoryCooldownStore struct {
	mu    sync.Mutex
	until map[string]time.Time
}

// NewMemoryCooldownStore creates an empty in-memory store.
func NewMemoryCooldownStore() *MemoryCooldownStore {
	return &MemoryCooldownStore{until: make(map[string]time.Time)}
}

func (s *MemoryCooldownStore) SetUntil(_ context.Context, key string, until time.Time) error {
	s.mu.Lock()
	s.until[key] = until
	s.mu.Unlock()
	return nil
}

func (s *MemoryCooldownStore) Until(_ context.Context, key string) (time.Time, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.until[key]
	return t, ok, nil
}

// RedisCooldownStore shares cooldowns between processes (CLI runs and the bridge).
// Keys expire on their own once the window closes.
type RedisCooldownStore struct {
	client *redis.Client
	prefix string
}

// NewRedisCooldownStore wraps an existing Redis client.
func NewRedisCooldownStore(client *redis.Client) *RedisCooldownStore {
	return &RedisCooldownStore{client: client, prefix: "stash:cooldown:"}
}

func (s *RedisCooldownStore) SetUntil(ctx context.Context, key string, until time.Time) error {
	ttl := time.Until(until)
	if ttl <= 0 {
		return nil
	}
	val := strconv.FormatInt(until.UnixMilli(), 10)
	if err := s.client.Set(ctx, s.prefix+key, val, ttl).Err(); err != nil {
		return fmt.Errorf("redis set cooldown: %w", err)
	}
	return nil
}

func (s *RedisCooldownStore) Until(ctx context.Context, key string) (time.Time, bool, error) {
	val, err := s.client.Get(ctx, s.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("redis get cooldown: %w", err)
	}
	ms, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("redis cooldown value %q: %w", val, err)
	}
	return time.UnixMilli(ms), true, nil
}

// HealthCheck pings Redis.
func (s *RedisCooldownStore) HealthCheck(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Guard refuses requests while a cooldown is active. The service asks
// clients to back off by answering "Try again later"; callers Trip the
// guard when they see that and Check it before every request.
type Guard struct {
	logger   *zap.Logger
	store    CooldownStore
	cooldown time.Duration
	now      func() time.Time
}

// NewGuard creates a Guard. A nil store defaults to memory.
func NewGuard(logger *zap.Logger, store CooldownStore, cooldown time.Duration) *Guard {
	if store == nil {
		store = NewMemoryCooldownStore()
	}
	return &Guard{logger: logger, store: store, cooldown: cooldown, now: time.Now}
}

// Check returns the remaining cooldown for key, or zero when requests may proceed.
// Store failures are logged and treated as "no cooldown".
func (g *Guard) Check(ctx context.Context, key string) time.Duration {
	until, ok, err := g.store.Until(ctx, key)
	if err != nil {
		g.logger.Warn("rate.cooldown_lookup_failed", zap.String("key", key), zap.Error(err))
		return 0
	}
	if !ok {
		return 0
	}
	remaining := until.Sub(g.now())
	if remaining <= 0 {
		return 0
	}
	return remaining
}

// Trip starts a cooldown for key.
func (g *Guard) Trip(ctx context.Context, key string) {
	until := g.now().Add(g.cooldown)
	if err := g.store.SetUntil(ctx, key, until); err != nil {
		g.logger.Warn("rate.cooldown_store_failed", zap.String("key", key), zap.Error(err))
		return
	}
	g.logger.Warn("rate.cooldown_started",
		zap.String("key", key),
		zap.Duration("cooldown", g.cooldown))
}

// HealthCheck reports whether the cooldown store is reachable. Stores
// without a remote backend are always healthy.
func (g *Guard) HealthCheck(ctx context.Context) error {
	hc, ok := g.store.(interface{ HealthCheck(context.Context) error })
	if !ok {
		return nil
	}
	return hc.HealthCheck(ctx)
}
