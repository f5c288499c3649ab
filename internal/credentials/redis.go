package credentials

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

const DefaultRedisPrefix = "aichat"

// RedisStore keeps one hash field per provider, each holding the JSON form of
// Provider.
type RedisStore struct {
	redis *redis.Client
	key   string
}

func NewRedisStore(rdb *redis.Client, prefix string) *RedisStore {
	prefix = strings.TrimSuffix(strings.TrimSpace(prefix), ":")
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &RedisStore{redis: rdb, key: prefix + ":providers"}
}

var _ Store = (*RedisStore)(nil)

func (s *RedisStore) Load(ctx context.Context) (*Config, error) {
	fields, err := s.redis.HGetAll(ctx, s.key).Result()
	if err != nil {
		return nil, &ConfigError{Op: "read", Err: fmt.Errorf("redis hgetall: %w", err)}
	}

	cfg := NewConfig()
	for name, raw := range fields {
		var sp *storedProvider
		if err := json.Unmarshal([]byte(raw), &sp); err != nil {
			return nil, &ConfigError{Op: "decode", Err: fmt.Errorf("provider %q: %w", name, err)}
		}
		p, err := sp.provider()
		if err != nil {
			return nil, &ConfigError{Op: "decode", Err: fmt.Errorf("provider %q: %w", name, err)}
		}
		cfg.Providers[name] = p
	}
	return cfg, nil
}

func (s *RedisStore) Save(ctx context.Context, cfg *Config) error {
	values := make(map[string]any)
	if cfg != nil {
		for name, p := range withModelLists(cfg).Providers {
			b, err := json.Marshal(p)
			if err != nil {
				return &ConfigError{Op: "encode", Err: fmt.Errorf("provider %q: %w", name, err)}
			}
			values[name] = string(b)
		}
	}

	_, err := s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, s.key)
		if len(values) > 0 {
			pipe.HSet(ctx, s.key, values)
		}
		return nil
	})
	if err != nil {
		return &ConfigError{Op: "write", Err: fmt.Errorf("redis save: %w", err)}
	}
	return nil
}
