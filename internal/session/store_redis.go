// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/postdeck/internal/platform/constants"
)

// RedisStore shares one token per profile across machines and shells.
//
// Key layout: postdeck:session:<profile>:token
type RedisStore struct {
	client redis.UniversalClient
	key    string
	ttl    time.Duration
}

// NewRedisStore returns a store for profile. A zero ttl keeps the token until logout.
func NewRedisStore(client redis.UniversalClient, profile string, ttl time.Duration) *RedisStore {
	if profile == "" {
		profile = "default"
	}
	return &RedisStore{
		client: client,
		key:    constants.RedisPrefixSession + profile + ":" + constants.TokenStorageKey,
		ttl:    ttl,
	}
}

// Key is the Redis key holding the token.
func (store *RedisStore) Key() string { return store.key }

func (store *RedisStore) Load(ctx context.Context) (string, error) {
	token, err := store.client.Get(ctx, store.key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("session: redis get: %w", err)
	}
	return token, nil
}

func (store *RedisStore) Save(ctx context.Context, token string) error {
	if err := store.client.Set(ctx, store.key, token, store.ttl).Err(); err != nil {
		return fmt.Errorf("session: redis set: %w", err)
	}
	return nil
}

func (store *RedisStore) Clear(ctx context.Context) error {
	if err := store.client.Del(ctx, store.key).Err(); err != nil {
		return fmt.Errorf("session: redis del: %w", err)
	}
	return nil
}
