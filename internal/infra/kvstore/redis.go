package kvstore

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/redis/go-redis/v9"
)

// Redis stores each namespace as one hash.
type Redis struct {
	client *redis.Client
	prefix string
}

// NewRedis wraps an existing client.
func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client, prefix: "taskflow:kv"}
}

// DialRedis connects and pings the server.
func DialRedis(ctx context.Context, addr, password string, db int) (*Redis, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return NewRedis(client), nil
}

func (r *Redis) hashKey(namespace string) string {
	return fmt.Sprintf("%s:{%s}", r.prefix, namespace)
}

func (r *Redis) Get(ctx context.Context, namespace, key string) ([]byte, bool, error) {
	v, err := r.client.HGet(ctx, r.hashKey(namespace), key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

func (r *Redis) Set(ctx context.Context, namespace, key string, value []byte) error {
	return r.client.HSet(ctx, r.hashKey(namespace), key, value).Err()
}

func (r *Redis) Delete(ctx context.Context, namespace, key string) error {
	return r.client.HDel(ctx, r.hashKey(namespace), key).Err()
}

func (r *Redis) Keys(ctx context.Context, namespace string) ([]string, error) {
	keys, err := r.client.HKeys(ctx, r.hashKey(namespace)).Result()
	if err != nil {
		return nil, err
	}
	slices.Sort(keys)
	return keys, nil
}

// Ping reports whether the server answers.
func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *Redis) Close() error {
	return r.client.Close()
}
