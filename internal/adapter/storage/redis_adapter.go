package storage

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	availabilityKeyPrefix = "available:"
	idempotencyKeyTTL     = 24 * time.Hour
)

var reserveTicketsScript = redis.NewScript(`
local key = KEYS[1]
local quantity = tonumber(ARGV[1])

local current = redis.call('GET', key)
if not current then
	return 0
end

current = tonumber(current)
if current >= quantity then
	redis.call('DECRBY', key, quantity)
	return 1
end

return 0
`)

type RedisAdapter struct {
	client *redis.Client
}

func NewRedisAdapter(client *redis.Client) *RedisAdapter {
	return &RedisAdapter{client: client}
}

func (r *RedisAdapter) ReserveTickets(ctx context.Context, eventID string, quantity int) (bool, error) {
	key := availabilityKeyPrefix + eventID

	result, err := reserveTicketsScript.Run(ctx, r.client, []string{key}, quantity).Int()
	if err != nil {
		return false, err
	}

	return result == 1, nil
}

func (r *RedisAdapter) ReleaseTickets(ctx context.Context, eventID string, quantity int) error {
	key := availabilityKeyPrefix + eventID
	return r.client.IncrBy(ctx, key, int64(quantity)).Err()
}

func (r *RedisAdapter) SeedAvailability(ctx context.Context, eventID string, available int) error {
	key := availabilityKeyPrefix + eventID
	return r.client.SetNX(ctx, key, available, 0).Err()
}

func (r *RedisAdapter) InitAvailability(ctx context.Context, eventID string, available int) error {
	key := availabilityKeyPrefix + eventID
	return r.client.Set(ctx, key, available, 0).Err()
}

func (r *RedisAdapter) SetIdempotency(ctx context.Context, key string) (bool, error) {
	ok, err := r.client.SetNX(ctx, key, 1, idempotencyKeyTTL).Result()
	if err != nil {
		return false, err
	}

	return ok, nil
}

func (r *RedisAdapter) ClearIdempotency(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}
