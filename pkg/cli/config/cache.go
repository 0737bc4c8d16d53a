package config

import (
	"context"
	"log/slog"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/foodrec/pkg/service/embedding"
	"github.com/urfave/cli/v3"
)

// Cache holds CLI flags for the Redis embedding cache
type Cache struct {
	addr     string
	password string
	db       int
	ttl      time.Duration
}

func (c *Cache) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "redis-addr",
			Usage:       "Redis address for the embedding cache (cache disabled when empty)",
			Category:    "Cache",
			Sources:     cli.EnvVars("FOODREC_REDIS_ADDR"),
			Destination: &c.addr,
		},
		&cli.StringFlag{
			Name:        "redis-password",
			Usage:       "Redis password",
			Category:    "Cache",
			Sources:     cli.EnvVars("FOODREC_REDIS_PASSWORD"),
			Destination: &c.password,
		},
		&cli.IntFlag{
			Name:        "redis-db",
			Usage:       "Redis database number",
			Category:    "Cache",
			Sources:     cli.EnvVars("FOODREC_REDIS_DB"),
			Destination: &c.db,
		},
		&cli.DurationFlag{
			Name:        "embedding-cache-ttl",
			Usage:       "Expiration of cached embeddings (0 keeps them forever)",
			Category:    "Cache",
			Value:       7 * 24 * time.Hour,
			Sources:     cli.EnvVars("FOODREC_EMBEDDING_CACHE_TTL"),
			Destination: &c.ttl,
		},
	}
}

func (c Cache) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("addr", c.addr),
		slog.Int("db", c.db),
		slog.Duration("ttl", c.ttl),
	)
}

// Configure connects to Redis. It returns nil when no address is configured.
func (c *Cache) Configure(ctx context.Context) (*embedding.RedisCache, error) {
	if c.addr == "" {
		return nil, nil
	}

	cache, err := embedding.NewRedisCache(ctx, c.addr, c.password, c.db, embedding.WithTTL(c.ttl))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to configure embedding cache")
	}
	return cache, nil
}
