package flags

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	indexKey    = "toggles:index"
	valuePrefix = "toggles:"
)

var keyRe = regexp.MustCompile(`^[a-zA-Z0-9._-]{1,128}$`)

// Store keeps operator toggles in Redis so they survive restarts and can be
// flipped from outside the process.
type Store struct {
	client redis.Cmdable
}

func NewStore(client redis.Cmdable) (*Store, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is nil")
	}
	return &Store{client: client}, nil
}

func ValidateKey(key string) error {
	if !keyRe.MatchString(key) {
		return fmt.Errorf("invalid toggle key")
	}
	return nil
}

func (s *Store) Upsert(ctx context.Context, key string, value bool) (*Toggle, error) {
	if err := ValidateKey(key); err != nil {
		return nil, err
	}

	t := &Toggle{Key: key, Value: value, UpdatedAt: time.Now().UTC()}
	b, err := json.Marshal(t)
	if err != nil {
		return nil, fmt.Errorf("marshal toggle: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, toggleKey(key), b, 0)
	pipe.SAdd(ctx, indexKey, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("upsert toggle: %w", err)
	}

	return t, nil
}

func (s *Store) Get(ctx context.Context, key string) (*Toggle, error) {
	if err := ValidateKey(key); err != nil {
		return nil, err
	}

	val, err := s.client.Get(ctx, toggleKey(key)).Result()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get toggle: %w", err)
	}

	var t Toggle
	if err := json.Unmarshal([]byte(val), &t); err != nil {
		return nil, fmt.Errorf("unmarshal toggle: %w", err)
	}
	return &t, nil
}

func (s *Store) List(ctx context.Context) ([]*Toggle, error) {
	keys, err := s.client.SMembers(ctx, indexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("list toggles index: %w", err)
	}
	if len(keys) == 0 {
		return []*Toggle{}, nil
	}

	redisKeys := make([]string, 0, len(keys))
	for _, k := range keys {
		if err := ValidateKey(k); err != nil {
			continue
		}
		redisKeys = append(redisKeys, toggleKey(k))
	}
	if len(redisKeys) == 0 {
		return []*Toggle{}, nil
	}

	vals, err := s.client.MGet(ctx, redisKeys...).Result()
	if err != nil {
		return nil, fmt.Errorf("mget toggles: %w", err)
	}

	out := make([]*Toggle, 0, len(vals))
	for _, v := range vals {
		if v == nil {
			continue
		}
		str, ok := v.(string)
		if !ok {
			continue
		}
		var t Toggle
		if err := json.Unmarshal([]byte(str), &t); err != nil {
			continue
		}
		out = append(out, &t)
	}

	return out, nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, toggleKey(key))
	pipe.SRem(ctx, indexKey, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("delete toggle: %w", err)
	}

	return nil
}

func toggleKey(key string) string {
	return valuePrefix + key
}
