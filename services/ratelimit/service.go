package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/upb/genos-ai/services"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	// Window is the length of one counting window
	Window = time.Hour

	keyTimeLayout = "2006010215"
)

// Counter increments a windowed counter. The Redis implementation is the
// shared one; tests substitute their own.
type Counter interface {
	Incr(ctx context.Context, key string, ttl time.Duration) (int64, error)
}

// RedisCounter counts with INCR and sets the expiry on the first hit
type RedisCounter struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisCounter creates a client for the Redis instance at url. It does
// not connect until the first command.
func NewRedisCounter(url string, logger *zap.Logger) (*RedisCounter, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	return &RedisCounter{client: redis.NewClient(opt), logger: logger}, nil
}

// Incr increments key and returns the new count
func (c *RedisCounter) Incr(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	count, err := c.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if count == 1 {
		// the window is part of the key, so a missing TTL only leaks the key
		if err := c.client.Expire(ctx, key, ttl).Err(); err != nil {
			c.logger.Warn("failed to set rate limit key expiry",
				zap.String("key", key),
				zap.Error(err))
		}
	}
	return count, nil
}

// Ping checks the connection
func (c *RedisCounter) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the client
func (c *RedisCounter) Close() error {
	return c.client.Close()
}

// Result represents the result of a rate limit check
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// Config holds the per-organization limit
type Config struct {
	GenerationsPerHour int
	// LocalBurst is the token bucket size of the in-process limiter
	LocalBurst int
}

// RateLimitService limits generations per organization. With a Counter it
// uses fixed hourly windows shared across instances; without one, or when
// the counter fails, it falls back to an in-process token bucket per org.
type RateLimitService struct {
	counter Counter
	cfg     Config
	logger  *zap.Logger
	now     func() time.Time

	mu      sync.Mutex
	buckets map[uuid.UUID]*bucket
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimitService creates a new RateLimitService instance. counter may be nil.
func NewRateLimitService(counter Counter, cfg Config, logger *zap.Logger) *RateLimitService {
	if cfg.LocalBurst <= 0 {
		cfg.LocalBurst = 1
	}
	return &RateLimitService{
		counter: counter,
		cfg:     cfg,
		logger:  logger,
		now:     time.Now,
		buckets: make(map[uuid.UUID]*bucket),
	}
}

// Key returns the counter key of orgID for the window containing t
func Key(orgID uuid.UUID, t time.Time) string {
	return fmt.Sprintf("ratelimit:org:%s:%s", orgID, t.UTC().Format(keyTimeLayout))
}

// Allow consumes one generation for orgID
func (s *RateLimitService) Allow(ctx context.Context, orgID uuid.UUID) *Result {
	limit := s.cfg.GenerationsPerHour
	if limit <= 0 {
		return &Result{Allowed: true}
	}

	now := s.now()
	resetAt := now.UTC().Truncate(Window).Add(Window)

	if s.counter != nil {
		count, err := s.counter.Incr(ctx, Key(orgID, now), Window)
		if err == nil {
			remaining := limit - int(count)
			if remaining < 0 {
				remaining = 0
			}
			return &Result{
				Allowed:   count <= int64(limit),
				Limit:     limit,
				Remaining: remaining,
				ResetAt:   resetAt,
			}
		}
		s.logger.Warn("rate limit counter unavailable, using local limiter",
			zap.String("org_id", orgID.String()),
			zap.Error(err))
	}

	allowed := s.localAllow(orgID, now)
	return &Result{Allowed: allowed, Limit: limit, ResetAt: resetAt}
}

// Check is Allow as an error: nil when allowed, a rate limit DomainError otherwise
func (s *RateLimitService) Check(ctx context.Context, orgID uuid.UUID) error {
	res := s.Allow(ctx, orgID)
	if res.Allowed {
		return nil
	}

	s.logger.Info("generation rate limit exceeded",
		zap.String("org_id", orgID.String()),
		zap.Int("limit", res.Limit))

	return services.NewDomainError(services.ErrorTypeRateLimit, services.ErrRateLimitExceeded.Message, nil).
		WithDetail("limit", res.Limit).
		WithDetail("reset_at", res.ResetAt.Format(time.RFC3339))
}

func (s *RateLimitService) localAllow(orgID uuid.UUID, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.buckets[orgID]
	if !ok {
		every := rate.Every(Window / time.Duration(s.cfg.GenerationsPerHour))
		b = &bucket{limiter: rate.NewLimiter(every, s.cfg.LocalBurst)}
		s.buckets[orgID] = b
	}
	b.lastSeen = now
	return b.limiter.AllowN(now, 1)
}

// Cleanup drops local buckets idle for longer than olderThan and returns how
// many were removed
func (s *RateLimitService) Cleanup(olderThan time.Duration) int {
	cutoff := s.now().Add(-olderThan)

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, b := range s.buckets {
		if b.lastSeen.Before(cutoff) {
			delete(s.buckets, id)
			removed++
		}
	}
	return removed
}

// StartCleanup runs Cleanup every interval until ctx is done
func (s *RateLimitService) StartCleanup(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := s.Cleanup(10 * time.Minute); n > 0 {
					s.logger.Debug("removed idle rate limit buckets", zap.Int("count", n))
				}
			}
		}
	}()
}
