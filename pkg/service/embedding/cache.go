package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"math"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/redis/go-redis/v9"
)

const defaultKeyPrefix = "foodrec:embedding:"

// RedisCache stores embeddings in Redis as little-endian float32 arrays keyed by the SHA-256 of the text
type RedisCache struct {
	client    redis.UniversalClient
	ttl       time.Duration
	keyPrefix string
}

var _ Cache = &RedisCache{}

// CacheOption is a functional option for RedisCache
type CacheOption func(*RedisCache)

// WithTTL sets the expiration of cached embeddings. Zero keeps them forever.
func WithTTL(ttl time.Duration) CacheOption {
	return func(c *RedisCache) {
		c.ttl = ttl
	}
}

// WithKeyPrefix changes the prefix of cache keys
func WithKeyPrefix(prefix string) CacheOption {
	return func(c *RedisCache) {
		c.keyPrefix = prefix
	}
}

// NewRedisCache connects to addr and verifies the connection
func NewRedisCache(ctx context.Context, addr, password string, db int, opts ...CacheOption) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, goerr.Wrap(err, "failed to connect to redis", goerr.V("addr", addr))
	}

	c := &RedisCache{
		client:    client,
		keyPrefix: defaultKeyPrefix,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Close releases the Redis connection
func (c *RedisCache) Close() error {
	return c.client.Close()
}

func (c *RedisCache) key(text string) string {
	sum := sha256.Sum256([]byte(text))
	return c.keyPrefix + hex.EncodeToString(sum[:])
}

func (c *RedisCache) GetMulti(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	keys := make([]string, len(texts))
	for i, t := range texts {
		keys[i] = c.key(t)
	}

	vals, err := c.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get embeddings from redis", goerr.V("count", len(keys)))
	}

	result := make([][]float32, len(texts))
	for i, v := range vals {
		if s, ok := v.(string); ok {
			result[i] = decodeVector([]byte(s))
		}
	}
	return result, nil
}

func (c *RedisCache) SetMulti(ctx context.Context, texts []string, vectors [][]float32) error {
	if len(texts) != len(vectors) {
		return goerr.New("texts and vectors length mismatch",
			goerr.V("texts", len(texts)),
			goerr.V("vectors", len(vectors)))
	}
	if len(texts) == 0 {
		return nil
	}

	pipe := c.client.Pipeline()
	for i, t := range texts {
		pipe.Set(ctx, c.key(t), encodeVector(vectors[i]), c.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return goerr.Wrap(err, "failed to set embeddings to redis", goerr.V("count", len(texts)))
	}
	return nil
}

func encodeVector(v []float32) []byte {
	buf := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(f))
	}
	return buf
}

func decodeVector(buf []byte) []float32 {
	if len(buf) == 0 || len(buf)%4 != 0 {
		return nil
	}
	v := make([]float32, len(buf)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[4*i:]))
	}
	return v
}
