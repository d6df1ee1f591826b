package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"voicebank-server/internal/clients/redis"
	"voicebank-server/internal/observability"

	goredis "github.com/redis/go-redis/v9"
)

const window = time.Minute

// Result describes the outcome of a rate limit check.
type Result struct {
	Allowed      bool
	Limit        int
	Remaining    int
	ResetAt      time.Time
	RetryAfterMs int
}

// Service limits how often a caller may hit an endpoint within a one
// minute sliding window. Redis backs the window when available so the
// limit holds across instances; otherwise an in-process window is used.
type Service struct {
	redis  *redis.Client
	limit  int
	logger *observability.Logger

	mu      sync.Mutex
	windows map[string][]time.Time
}

// NewService creates a rate limiting service. redisClient may be nil.
func NewService(redisClient *redis.Client, limit int, logger *observability.Logger) *Service {
	return &Service{
		redis:   redisClient,
		limit:   limit,
		logger:  logger,
		windows: make(map[string][]time.Time),
	}
}

// Check records a request for the given caller key and reports whether it
// is within the limit.
func (s *Service) Check(ctx context.Context, callerKey string) (Result, error) {
	ctx = observability.WithFields(ctx,
		observability.Field{Key: "rate_limit_key", Value: callerKey},
	)

	if s.redis != nil {
		result, err := s.checkRedis(ctx, callerKey)
		if err != nil {
			s.logger.Warn(observability.WithFields(ctx,
				observability.Field{Key: "error", Value: err.Error()},
			), "Redis rate limit check failed, falling back to in-process window")
			return s.checkLocal(callerKey), nil
		}
		return result, nil
	}

	return s.checkLocal(callerKey), nil
}

// checkRedis implements a sliding window over a Redis sorted set. Members
// are request timestamps in milliseconds.
func (s *Service) checkRedis(ctx context.Context, callerKey string) (Result, error) {
	key := fmt.Sprintf("rl:%s", callerKey)
	now := time.Now()
	windowStartMs := now.Add(-window).UnixMilli()

	client := s.redis.GetClient()

	if err := client.ZRemRangeByScore(ctx, key, "0", strconv.FormatInt(windowStartMs, 10)).Err(); err != nil {
		return Result{}, fmt.Errorf("failed to trim rate limit window: %w", err)
	}

	count, err := client.ZCard(ctx, key).Result()
	if err != nil {
		return Result{}, fmt.Errorf("failed to count requests: %w", err)
	}

	if int(count) >= s.limit {
		oldest, err := client.ZRange(ctx, key, 0, 0).Result()
		if err != nil || len(oldest) == 0 {
			return Result{
				Allowed:      false,
				Limit:        s.limit,
				Remaining:    0,
				ResetAt:      now.Add(window),
				RetryAfterMs: int(window.Milliseconds()),
			}, nil
		}

		oldestTs, _ := strconv.ParseInt(oldest[0], 10, 64)
		resetAt := time.UnixMilli(oldestTs).Add(window)
		retryAfter := resetAt.Sub(now)
		if retryAfter < 0 {
			retryAfter = 0
		}

		return Result{
			Allowed:      false,
			Limit:        s.limit,
			Remaining:    0,
			ResetAt:      resetAt,
			RetryAfterMs: int(retryAfter.Milliseconds()),
		}, nil
	}

	nowMs := now.UnixMilli()
	err = client.ZAdd(ctx, key, goredis.Z{
		Score:  float64(nowMs),
		Member: strconv.FormatInt(nowMs, 10),
	}).Err()
	if err != nil {
		return Result{}, fmt.Errorf("failed to record request: %w", err)
	}

	if err := s.redis.Expire(ctx, key, 2*window); err != nil {
		s.logger.Warn(observability.WithFields(ctx,
			observability.Field{Key: "error", Value: err.Error()},
		), "failed to set expiration on rate limit key")
	}

	return Result{
		Allowed:   true,
		Limit:     s.limit,
		Remaining: s.limit - int(count) - 1,
		ResetAt:   now.Add(window),
	}, nil
}

// checkLocal implements the same sliding window in process memory.
func (s *Service) checkLocal(callerKey string) Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	cutoff := now.Add(-window)

	kept := s.windows[callerKey][:0]
	for _, ts := range s.windows[callerKey] {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}

	if len(kept) >= s.limit {
		s.windows[callerKey] = kept
		resetAt := kept[0].Add(window)
		retryAfter := resetAt.Sub(now)
		if retryAfter < 0 {
			retryAfter = 0
		}
		return Result{
			Allowed:      false,
			Limit:        s.limit,
			Remaining:    0,
			ResetAt:      resetAt,
			RetryAfterMs: int(retryAfter.Milliseconds()),
		}
	}

	s.windows[callerKey] = append(kept, now)
	return Result{
		Allowed:   true,
		Limit:     s.limit,
		Remaining: s.limit - len(kept) - 1,
		ResetAt:   now.Add(window),
	}
}
