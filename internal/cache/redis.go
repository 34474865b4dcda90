package cache

import (
	"bytes"
	"context"
	"encoding/gob"
	"errors"
	"fmt"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/redis/go-redis/v9"
)

// RedisClient is the part of the go-redis API the store uses.
// *redis.Client satisfies it.
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
}

// RedisStore keeps seasons in Redis so several server instances share one
// download. Entries expire with the loader TTL.
type RedisStore struct {
	client RedisClient
	ttl    time.Duration
	prefix string
}

// NewRedisStore creates a store over client. Keys expire after ttl.
func NewRedisStore(client RedisClient, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{client: client, ttl: ttl, prefix: "epacompare"}
}

// NewRedisClient parses a redis:// URL. password, when set, overrides the
// one in the URL.
func NewRedisClient(url, password string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	if password != "" {
		opts.Password = password
	}
	return redis.NewClient(opts), nil
}

// Key is the Redis key holding season.
func (s *RedisStore) Key(season int) string {
	return fmt.Sprintf("%s:season:%d", s.prefix, season)
}

// Load reads the season blob. A missing key is a miss, not an error.
func (s *RedisStore) Load(ctx context.Context, season int, notBefore time.Time) (*SeasonData, bool, error) {
	raw, err := s.client.Get(ctx, s.Key(season)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get %s: %w", s.Key(season), err)
	}
	d, err := decodeSeason(raw)
	if err != nil {
		return nil, false, err
	}
	if d.FetchedAt.Before(notBefore) {
		return nil, false, nil
	}
	return d, true, nil
}

// Save writes the season blob with the store TTL.
func (s *RedisStore) Save(ctx context.Context, d *SeasonData) error {
	raw, err := encodeSeason(d)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.Key(d.Season), raw, s.ttl).Err()
}

// Season blobs are gob, which keeps NaN metrics intact where JSON cannot,
// compressed with zstd.
func encodeSeason(d *SeasonData) ([]byte, error) {
	var buf bytes.Buffer
	zw, err := zstd.NewWriter(&buf)
	if err != nil {
		return nil, err
	}
	if err := gob.NewEncoder(zw).Encode(d); err != nil {
		zw.Close()
		return nil, fmt.Errorf("encode season %d: %w", d.Season, err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("compress season %d: %w", d.Season, err)
	}
	return buf.Bytes(), nil
}

func decodeSeason(raw []byte) (*SeasonData, error) {
	zr, err := zstd.NewReader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decompress season: %w", err)
	}
	defer zr.Close()
	var d SeasonData
	if err := gob.NewDecoder(zr).Decode(&d); err != nil {
		return nil, fmt.Errorf("decode season: %w", err)
	}
	return &d, nil
}
