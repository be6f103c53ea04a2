package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// scanBatch is the COUNT hint passed to SCAN during prefix deletion.
const scanBatch = 200

// Redis is a Cache backed by a go-redis client. The client may point at a
// server that is down; operations then report Unavailable / ErrUnavailable
// and recover once the server is back.
type Redis struct {
	rdb *redis.Client
}

// NewRedis wraps an existing client.
func NewRedis(rdb *redis.Client) *Redis {
	return &Redis{rdb: rdb}
}

func (r *Redis) Get(ctx context.Context, key string) Result {
	bs, err := r.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		return Result{Status: Hit, Value: bs}
	case errors.Is(err, redis.Nil):
		return Result{Status: Miss}
	default:
		return Result{Status: Unavailable, Err: fmt.Errorf("get %s: %w: %v", key, ErrUnavailable, err)}
	}
}

func (r *Redis) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := r.rdb.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("set %s: %w: %v", key, ErrUnavailable, err)
	}
	return nil
}

func (r *Redis) Delete(ctx context.Context, key string) error {
	if err := r.rdb.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("delete %s: %w: %v", key, ErrUnavailable, err)
	}
	return nil
}

// DeleteByPrefix walks the keyspace with SCAN rather than KEYS so a large
// keyspace does not block the server. The walk completes before anything
// is deleted; deleting mid-walk can make a server skip keys it has not
// returned yet. Matches are then removed scanBatch keys per DEL.
func (r *Redis) DeleteByPrefix(ctx context.Context, prefix string) error {
	match := escapeGlob(prefix) + "*"
	var keys []string
	it := r.rdb.Scan(ctx, 0, match, scanBatch).Iterator()
	for it.Next(ctx) {
		keys = append(keys, it.Val())
	}
	if err := it.Err(); err != nil {
		return fmt.Errorf("scan %s: %w: %v", match, ErrUnavailable, err)
	}
	for len(keys) > 0 {
		n := min(len(keys), scanBatch)
		if err := r.rdb.Del(ctx, keys[:n]...).Err(); err != nil {
			return fmt.Errorf("delete prefix %s: %w: %v", prefix, ErrUnavailable, err)
		}
		keys = keys[n:]
	}
	return nil
}

func (r *Redis) Ping(ctx context.Context) error {
	if err := r.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// escapeGlob quotes the characters SCAN MATCH treats as pattern syntax.
func escapeGlob(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '*', '?', '[', ']', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
