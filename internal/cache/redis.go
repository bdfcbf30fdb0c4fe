package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mazoair/flightpay/config"
	"github.com/mazoair/flightpay/internal/domain"
	"github.com/redis/go-redis/v9"
)

type RedisCache struct {
	client     *redis.Client
	flightsTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, flightsTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:     redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		flightsTTL: flightsTTL,
	}
}

// SaveChargeSession stores the advisory link between a pending gateway
// reference and its booking while a step-up factor is collected. The session
// expires on its own; verification resolving the reference deletes it early.
func (c *RedisCache) SaveChargeSession(ctx context.Context, session domain.ChargeSession, ttl time.Duration) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, sessionKey(session.Reference), payload, ttl).Err()
}

// GetChargeSession returns nil, nil on a miss: absence of a session is an
// expected condition, not an error.
func (c *RedisCache) GetChargeSession(ctx context.Context, reference string) (*domain.ChargeSession, error) {
	data, err := c.client.Get(ctx, sessionKey(reference)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var session domain.ChargeSession
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (c *RedisCache) DeleteChargeSession(ctx context.Context, reference string) error {
	return c.client.Del(ctx, sessionKey(reference)).Err()
}

func (c *RedisCache) GetFlights(ctx context.Context) ([]domain.Flight, error) {
	data, err := c.client.Get(ctx, flightsKey()).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var flights []domain.Flight
	if err := json.Unmarshal(data, &flights); err != nil {
		return nil, err
	}
	return flights, nil
}

func (c *RedisCache) SetFlights(ctx context.Context, flights []domain.Flight) error {
	payload, err := json.Marshal(flights)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, flightsKey(), payload, c.flightsTTL).Err()
}

func flightsKey() string {
	return "cache:flights"
}

func sessionKey(reference string) string {
	return fmt.Sprintf("charge:session:%s", reference)
}
