package gate

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"vigil/pkg/domain"
	dErrors "vigil/pkg/domain-errors"
)

const (
	inFlightKeyPrefix = "gate:inflight:"
	cooldownKeyPrefix = "gate:cooldown:"

	// counterTTL bounds orphaned counters when a process dies mid-audit.
	counterTTL = 24 * time.Hour
)

// acquireScript increments the in-flight counter only while below the limit,
// so check-and-increment is a single server-side step.
var acquireScript = redis.NewScript(`
local current = tonumber(redis.call('GET', KEYS[1]) or '0')
if current >= tonumber(ARGV[1]) then
	return -1
end
current = redis.call('INCR', KEYS[1])
redis.call('EXPIRE', KEYS[1], ARGV[2])
return current
`)

// releaseScript decrements without going below zero.
var releaseScript = redis.NewScript(`
local current = tonumber(redis.call('GET', KEYS[1]) or '0')
if current <= 0 then
	return 0
end
return redis.call('DECR', KEYS[1])
`)

// RedisCounterStore is a Redis-backed CounterStore for distributed
// deployments. Cooldown entries expire via key TTL, so a lapsed cooldown
// reads back as absent.
type RedisCounterStore struct {
	client *redis.Client
}

func NewRedisCounterStore(client *redis.Client) *RedisCounterStore {
	return &RedisCounterStore{client: client}
}

func (s *RedisCounterStore) Acquire(ctx context.Context, id domain.ActorID, limit int) (bool, error) {
	res, err := acquireScript.Run(ctx, s.client,
		[]string{inFlightKeyPrefix + id.String()},
		limit, int(counterTTL.Seconds()),
	).Int64()
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeUnavailable, "acquiring audit slot")
	}
	return res >= 0, nil
}

func (s *RedisCounterStore) Release(ctx context.Context, id domain.ActorID) error {
	err := releaseScript.Run(ctx, s.client, []string{inFlightKeyPrefix + id.String()}).Err()
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "releasing audit slot")
	}
	return nil
}

func (s *RedisCounterStore) InFlight(ctx context.Context, id domain.ActorID) (int, error) {
	n, err := s.client.Get(ctx, inFlightKeyPrefix+id.String()).Int()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeUnavailable, "reading in-flight count")
	}
	return n, nil
}

func (s *RedisCounterStore) Cooldown(ctx context.Context, id domain.ActorID) (*CooldownEntry, error) {
	raw, err := s.client.Get(ctx, cooldownKeyPrefix+id.String()).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "reading cooldown")
	}
	var entry CooldownEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "decoding cooldown entry")
	}
	return &entry, nil
}

func (s *RedisCounterStore) SetCooldown(ctx context.Context, entry CooldownEntry) error {
	raw, err := json.Marshal(entry)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "encoding cooldown entry")
	}
	ttl := time.Until(entry.ExpiresAt())
	if ttl <= 0 {
		return nil
	}
	err = s.client.Set(ctx, cooldownKeyPrefix+entry.ActorID.String(), raw, ttl).Err()
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "installing cooldown")
	}
	return nil
}

func (s *RedisCounterStore) ClearCooldown(ctx context.Context, id domain.ActorID) error {
	if err := s.client.Del(ctx, cooldownKeyPrefix+id.String()).Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "clearing cooldown")
	}
	return nil
}
