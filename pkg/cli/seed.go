package cli

import (
	"context"
	"math/rand/v2"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/foodrec/pkg/cli/config"
	"github.com/secmon-lab/foodrec/pkg/usecase"
	"github.com/secmon-lab/foodrec/pkg/utils/logging"
	"github.com/secmon-lab/foodrec/pkg/utils/safe"
	"github.com/urfave/cli/v3"
)

func cmdSeed() *cli.Command {
	var productCount int
	var orderCount int
	var batchRate float64
	var workers int
	var randomSeed uint64
	var repoCfg config.Repository
	var embeddingCfg config.Embedding

	flags := []cli.Flag{
		&cli.IntFlag{
			Name:        "products",
			Usage:       "Number of products to generate (0 skips products)",
			Category:    "Seed",
			Value:       usecase.DefaultSeedProducts,
			Destination: &productCount,
		},
		&cli.IntFlag{
			Name:        "orders",
			Usage:       "Number of orders to generate over the stored products (0 skips orders)",
			Category:    "Seed",
			Value:       usecase.DefaultSeedOrders,
			Destination: &orderCount,
		},
		&cli.Float64Flag{
			Name:        "batch-rate",
			Usage:       "Maximum write batches per second (0 means unlimited)",
			Category:    "Seed",
			Sources:     cli.EnvVars("FOODREC_SEED_BATCH_RATE"),
			Destination: &batchRate,
		},
		&cli.IntFlag{
			Name:        "workers",
			Usage:       "Number of concurrent write batches",
			Category:    "Seed",
			Value:       4,
			Sources:     cli.EnvVars("FOODREC_SEED_WORKERS"),
			Destination: &workers,
		},
		&cli.Uint64Flag{
			Name:        "random-seed",
			Usage:       "Seed for the data generator (random when 0)",
			Category:    "Seed",
			Destination: &randomSeed,
		},
	}
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, embeddingCfg.Flags()...)

	return &cli.Command{
		Name:  "seed",
		Usage: "Generate sample products and orders",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			if productCount < 0 || orderCount < 0 {
				return goerr.Wrap(config.ErrInvalidConfig, "counts must not be negative",
					goerr.V("products", productCount), goerr.V("orders", orderCount))
			}

			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer safe.Close(ctx, "repository", repo)

			embedder, closeEmbedder, err := embeddingCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to configure embedding")
			}
			defer closeEmbedder()

			seedOpts := []usecase.SeedOption{usecase.WithSeedWorkers(workers)}
			if batchRate > 0 {
				seedOpts = append(seedOpts, usecase.WithSeedRateLimit(batchRate, 1))
			}
			if randomSeed != 0 {
				seedOpts = append(seedOpts, usecase.WithSeedRand(rand.New(rand.NewPCG(randomSeed, randomSeed))))
			}

			uc := usecase.New(repo,
				usecase.WithEmbedder(embedder),
				usecase.WithSeedOptions(seedOpts...),
			)

			logger := logging.From(ctx)
			if productCount > 0 {
				created, err := uc.Seed.SeedProducts(ctx, productCount)
				if err != nil {
					return goerr.Wrap(err, "failed to seed products")
				}
				logger.Info("Seeded products", "count", created)
			}
			if orderCount > 0 {
				created, err := uc.Seed.SeedOrders(ctx, orderCount)
				if err != nil {
					return goerr.Wrap(err, "failed to seed orders")
				}
				logger.Info("Seeded orders", "count", created)
			}
			return nil
		},
	}
}
