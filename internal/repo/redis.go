package repo

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"Drivecalc/internal/config"
)

const redisKeyPrefix = "drivecalc:session:"

type RedisSnapshotRepository struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisSnapshotRepository(ctx context.Context, cfg config.Store) (*RedisSnapshotRepository, error) {
	client := redis.NewClient(&redis.Options{
		Network:  "tcp",
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, errors.Wrap(err, "redis is not reachable")
	}
	return NewRedisSnapshotClient(client, cfg.TTL), nil
}

// NewRedisSnapshotClient wraps an existing client. A ttl of zero keeps
// snapshots until deleted.
func NewRedisSnapshotClient(client *redis.Client, ttl time.Duration) *RedisSnapshotRepository {
	return &RedisSnapshotRepository{client: client, ttl: ttl}
}

func (r *RedisSnapshotRepository) Save(ctx context.Context, code string, snapshot []byte) error {
	err := r.client.Set(ctx, redisKeyPrefix+code, snapshot, r.ttl).Err()
	return errors.Wrapf(err, "save session %s", code)
}

func (r *RedisSnapshotRepository) Load(ctx context.Context, code string) ([]byte, error) {
	data, err := r.client.Get(ctx, redisKeyPrefix+code).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "load session %s", code)
	}
	return data, nil
}

func (r *RedisSnapshotRepository) Delete(ctx context.Context, code string) error {
	err := r.client.Del(ctx, redisKeyPrefix+code).Err()
	return errors.Wrapf(err, "delete session %s", code)
}

func (r *RedisSnapshotRepository) Close() error {
	return r.client.Close()
}
