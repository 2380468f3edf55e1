package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/rueidis"
)

// Redis is a Cache shared between processes. Keys written under a scope are
// tracked in a set so Invalidate can delete them together.
type Redis struct {
	client rueidis.Client
	prefix string
	ttl    time.Duration
}

var _ Cache = (*Redis)(nil)

func NewRedisClient(addr string) (rueidis.Client, error) {
	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress: []string{addr},
	})
	if err != nil {
		return nil, fmt.Errorf("create redis client: %w", err)
	}
	return client, nil
}

// NewRedis namespaces every key under prefix, separated by a colon.
func NewRedis(client rueidis.Client, prefix string, ttl time.Duration) *Redis {
	if prefix != "" && !strings.HasSuffix(prefix, ":") {
		prefix += ":"
	}
	return &Redis{client: client, prefix: prefix, ttl: ttl}
}

func (r *Redis) entryKey(scope, key string) string {
	return r.prefix + scope + ":" + key
}

func (r *Redis) indexKey(scope string) string {
	return r.prefix + scope + ":keys"
}

func (r *Redis) Get(ctx context.Context, scope, key string) ([]byte, bool, error) {
	cmd := r.client.B().Get().Key(r.entryKey(scope, key)).Build()
	value, err := r.client.Do(ctx, cmd).AsBytes()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("redis get: %w", err)
	}
	return value, true, nil
}

func (r *Redis) Set(ctx context.Context, scope, key string, value []byte) error {
	entryKey := r.entryKey(scope, key)

	var cmd rueidis.Completed
	if r.ttl > 0 {
		cmd = r.client.B().Set().Key(entryKey).Value(rueidis.BinaryString(value)).ExSeconds(int64(r.ttl / time.Second)).Build()
	} else {
		cmd = r.client.B().Set().Key(entryKey).Value(rueidis.BinaryString(value)).Build()
	}
	if err := r.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}

	index := r.client.B().Sadd().Key(r.indexKey(scope)).Member(entryKey).Build()
	if err := r.client.Do(ctx, index).Error(); err != nil {
		return fmt.Errorf("redis index key: %w", err)
	}
	return nil
}

func (r *Redis) Invalidate(ctx context.Context, scope string) error {
	indexKey := r.indexKey(scope)
	members, err := r.client.Do(ctx, r.client.B().Smembers().Key(indexKey).Build()).AsStrSlice()
	if err != nil && !rueidis.IsRedisNil(err) {
		return fmt.Errorf("redis list scope: %w", err)
	}

	keys := append(members, indexKey)
	if err := r.client.Do(ctx, r.client.B().Del().Key(keys...).Build()).Error(); err != nil {
		return fmt.Errorf("redis invalidate: %w", err)
	}
	return nil
}
