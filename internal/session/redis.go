package session

import (
	"context"
	"fmt"
	"time"

	"storefront-service/pkg/config"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const redisKeyPrefix = "session:"

// RedisStore keeps sessions as expiring keys in Redis
type RedisStore struct {
	rdb *goredis.Client
	ttl time.Duration
	log *zap.Logger
}

// DialRedis connects to the configured Redis and checks it answers
func DialRedis(cfg *config.SessionConfig) (*goredis.Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        cfg.RedisAddr,
		Password:    cfg.RedisPassword,
		DB:          cfg.RedisDB,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

// NewRedisStore creates a Redis-backed Store on an open client
func NewRedisStore(rdb *goredis.Client, ttl time.Duration, log *zap.Logger) *RedisStore {
	return &RedisStore{
		rdb: rdb,
		ttl: ttl,
		log: log.Named("session"),
	}
}

func (s *RedisStore) Create(ctx context.Context) (string, error) {
	// SetNX so a token collision can never hand out someone else's session
	for attempt := 0; attempt < 3; attempt++ {
		token := NewToken()
		ok, err := s.rdb.SetNX(ctx, redisKeyPrefix+token, time.Now().Unix(), s.ttl).Result()
		if err != nil {
			return "", fmt.Errorf("create session: %w", err)
		}
		if ok {
			return token, nil
		}
		s.log.Warn("Session token collision, retrying", zap.Int("attempt", attempt+1))
	}
	return "", fmt.Errorf("create session: token collisions exhausted")
}

func (s *RedisStore) Exists(ctx context.Context, token string) (bool, error) {
	n, err := s.rdb.Exists(ctx, redisKeyPrefix+token).Result()
	if err != nil {
		return false, fmt.Errorf("lookup session: %w", err)
	}
	return n > 0, nil
}

// Close releases the Redis connection pool
func (s *RedisStore) Close() error {
	return s.rdb.Close()
}
