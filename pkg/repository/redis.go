package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/example/storefront/pkg/bag"
	"github.com/example/storefront/pkg/config"
	"github.com/go-redis/redis/v8"
)

type RedisRepository struct {
	client *redis.Client
	config *config.RedisConfig
}

func NewRedisRepository(cfg *config.RedisConfig) *RedisRepository {
	return &RedisRepository{
		client: redis.NewClient(&redis.Options{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
			PoolSize: cfg.PoolSize,
		}),
		config: cfg,
	}
}

func (r *RedisRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisRepository) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return r.client.Set(ctx, key, value, expiration).Err()
}

func (r *RedisRepository) Get(ctx context.Context, key string) (string, error) {
	return r.client.Get(ctx, key).Result()
}

func (r *RedisRepository) Del(ctx context.Context, keys ...string) error {
	return r.client.Del(ctx, keys...).Err()
}

func (r *RedisRepository) SetJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, key, data, expiration).Err()
}

func (r *RedisRepository) GetJSON(ctx context.Context, key string, dest interface{}) error {
	data, err := r.client.Get(ctx, key).Result()
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(data), dest)
}

func (r *RedisRepository) Close() error {
	return r.client.Close()
}

const defaultBagTTL = 24 * time.Hour

// BagStore keeps each session's bag as a JSON value under bag:<session_id>,
// implementing bag.Store.
type BagStore struct {
	redis *RedisRepository
	ttl   time.Duration
}

func NewBagStore(r *RedisRepository, ttl time.Duration) *BagStore {
	if ttl <= 0 {
		ttl = defaultBagTTL
	}
	return &BagStore{redis: r, ttl: ttl}
}

func bagKey(sessionID string) string {
	return "bag:" + sessionID
}

// Get returns an empty bag for an unknown session.
func (s *BagStore) Get(ctx context.Context, sessionID string) (bag.Bag, error) {
	var b bag.Bag
	err := s.redis.GetJSON(ctx, bagKey(sessionID), &b)
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return bag.New(), nil
		}
		return nil, err
	}
	if b == nil {
		b = bag.New()
	}
	return b, nil
}

func (s *BagStore) Save(ctx context.Context, sessionID string, b bag.Bag) error {
	return s.redis.SetJSON(ctx, bagKey(sessionID), b, s.ttl)
}

// Delete is a no-op when the bag is already gone.
func (s *BagStore) Delete(ctx context.Context, sessionID string) error {
	return s.redis.Del(ctx, bagKey(sessionID))
}
