package redis_limiter

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

// ErrLimitReached is returned by Acquire when every slot for the key is taken.
var ErrLimitReached = errors.New("concurrency limit reached")

// acquireScript increments the counter only while it is below ARGV[1] and
// refreshes the TTL. A value above the limit signals failure.
var acquireScript = redis.NewScript(`
local current = redis.call('GET', KEYS[1])
if current == false then
	current = 0
else
	current = tonumber(current)
end

if current >= tonumber(ARGV[1]) then
	return current + 1
end

local newCount = redis.call('INCR', KEYS[1])
redis.call('EXPIRE', KEYS[1], tonumber(ARGV[2]))
return newCount`)

// releaseScript decrements the counter and drops the key once it reaches zero.
var releaseScript = redis.NewScript(`
local count = redis.call('DECR', KEYS[1])
if tonumber(count) <= 0 then
	redis.call('DEL', KEYS[1])
	return 0
else
	redis.call('EXPIRE', KEYS[1], tonumber(ARGV[1]))
	return count
end`)

// RedisLimiter bounds how many holders a key may have at once across every
// server instance sharing the redis. Slots left behind by a crashed holder
// expire after ttl.
type RedisLimiter struct {
	client        redis.UniversalClient
	maxConcurrent int
	keyPrefix     string
	ttl           time.Duration
	logger        *logrus.Logger
}

// NewRedisLimiter creates a limiter. A nil logger uses the logrus standard logger.
func NewRedisLimiter(client redis.UniversalClient, maxConcurrent int, keyPrefix string, ttl time.Duration, logger *logrus.Logger) *RedisLimiter {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	if ttl < time.Second {
		ttl = time.Second
	}
	return &RedisLimiter{
		client:        client,
		maxConcurrent: maxConcurrent,
		keyPrefix:     keyPrefix,
		ttl:           ttl,
		logger:        logger,
	}
}

// Acquire takes a slot for key. It returns ErrLimitReached when the key is
// full and a wrapped redis error when the script cannot run.
func (rl *RedisLimiter) Acquire(ctx context.Context, key string) error {
	redisKey := rl.keyPrefix + key

	result, err := acquireScript.Run(ctx, rl.client, []string{redisKey}, rl.maxConcurrent, int(rl.ttl.Seconds())).Int()
	if err != nil {
		return fmt.Errorf("failed to run acquire script: %w", err)
	}

	if result > rl.maxConcurrent {
		rl.logger.WithFields(logrus.Fields{
			"key":     key,
			"current": result - 1,
			"max":     rl.maxConcurrent,
		}).Debug("Limiter slots exhausted")
		return ErrLimitReached
	}

	rl.logger.WithFields(logrus.Fields{
		"key":     key,
		"current": result,
		"max":     rl.maxConcurrent,
	}).Debug("Limiter slot acquired")
	return nil
}

// Release gives back a slot taken by Acquire. Failures are logged only.
func (rl *RedisLimiter) Release(ctx context.Context, key string) {
	redisKey := rl.keyPrefix + key

	remaining, err := releaseScript.Run(ctx, rl.client, []string{redisKey}, int(rl.ttl.Seconds())).Int()
	if err != nil {
		rl.logger.WithError(err).WithField("key", key).Warn("Failed to release limiter slot")
		return
	}

	rl.logger.WithFields(logrus.Fields{
		"key":       key,
		"remaining": remaining,
	}).Debug("Limiter slot released")
}

// GetCurrent returns how many slots of key are held.
func (rl *RedisLimiter) GetCurrent(ctx context.Context, key string) (int, error) {
	current, err := rl.client.Get(ctx, rl.keyPrefix+key).Int()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get current count: %w", err)
	}
	return current, nil
}

// GetMaxConcurrent returns the per-key limit.
func (rl *RedisLimiter) GetMaxConcurrent() int {
	return rl.maxConcurrent
}
