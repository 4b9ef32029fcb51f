package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hamed0406/linkchecker/internal/linkcheck"
)

var _ linkcheck.Cache = (*Redis)(nil)

// Redis caches validation results under linkcheck:<sha256(url)> with a TTL.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedis(addr string, ttl time.Duration) *Redis {
	return &Redis{
		client: redis.NewClient(&redis.Options{Addr: addr}),
		ttl:    ttl,
	}
}

func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *Redis) Close() error {
	return r.client.Close()
}

func (r *Redis) Get(ctx context.Context, url string) (linkcheck.Result, bool, error) {
	var res linkcheck.Result
	b, err := r.client.Get(ctx, Key(url)).Bytes()
	if errors.Is(err, redis.Nil) {
		return res, false, nil
	}
	if err != nil {
		return res, false, fmt.Errorf("redis get: %w", err)
	}
	if err := json.Unmarshal(b, &res); err != nil {
		return res, false, fmt.Errorf("decode cached result: %w", err)
	}
	return res, true, nil
}

func (r *Redis) Set(ctx context.Context, res linkcheck.Result) error {
	b, err := json.Marshal(res)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, Key(res.URL), b, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Key hashes the URL so arbitrary input makes a safe, fixed-size key.
func Key(url string) string {
	h := sha256.Sum256([]byte(url))
	return "linkcheck:" + hex.EncodeToString(h[:])
}
