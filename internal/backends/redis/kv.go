package redis

import (
	"context"
	"errors"

	"rocketcart/internal/types"

	"github.com/redis/go-redis/v9"
)

// KV stores each slot as a plain Redis string under its key, without expiry.
type KV struct {
	cli *redis.Client
}

func NewKV(cli *redis.Client) *KV {
	return &KV{cli: cli}
}

func (s *KV) Get(ctx context.Context, key string) (string, bool, error) {
	out := s.cli.Get(ctx, key)
	if out.Err() != nil {
		if errors.Is(out.Err(), redis.Nil) {
			return "", false, nil
		}
		return "", false, types.Err(types.ErrDataStoreAccess, out.Err(), "redis GET %s", key)
	}
	return out.Val(), true, nil
}

func (s *KV) Set(ctx context.Context, key, value string) error {
	out := s.cli.Set(ctx, key, value, 0)
	if out.Err() != nil {
		return types.Err(types.ErrDataStoreAccess, out.Err(), "redis SET %s", key)
	}
	return nil
}

// Delete removes the slot. Used in tests only.
func (s *KV) Delete(ctx context.Context, key string) error {
	return s.cli.Del(ctx, key).Err()
}
