package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/foodrec/pkg/cli/config"
	httpctrl "github.com/secmon-lab/foodrec/pkg/controller/http"
	"github.com/secmon-lab/foodrec/pkg/usecase"
	"github.com/secmon-lab/foodrec/pkg/utils/logging"
	"github.com/secmon-lab/foodrec/pkg/utils/safe"
	"github.com/urfave/cli/v3"
)

func cmdServe() *cli.Command {
	var addr string
	var corsOrigins []string
	var rateLimit int
	var rateWindow time.Duration
	var enableSeed bool
	var enableMetrics bool
	var repoCfg config.Repository
	var embeddingCfg config.Embedding
	var recommendCfg config.Recommend

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("FOODREC_ADDR"),
			Destination: &addr,
		},
		&cli.StringSliceFlag{
			Name:        "cors-origin",
			Usage:       "Allowed CORS origin (repeatable, disabled when empty)",
			Category:    "HTTP",
			Sources:     cli.EnvVars("FOODREC_CORS_ORIGINS"),
			Destination: &corsOrigins,
		},
		&cli.IntFlag{
			Name:        "rate-limit",
			Usage:       "Maximum API requests per client IP within the rate window (0 disables)",
			Category:    "HTTP",
			Sources:     cli.EnvVars("FOODREC_RATE_LIMIT"),
			Destination: &rateLimit,
		},
		&cli.DurationFlag{
			Name:        "rate-window",
			Usage:       "Rate limit window",
			Category:    "HTTP",
			Value:       time.Minute,
			Sources:     cli.EnvVars("FOODREC_RATE_WINDOW"),
			Destination: &rateWindow,
		},
		&cli.BoolFlag{
			Name:        "enable-seed",
			Usage:       "Expose the /api/seed endpoints (development only)",
			Category:    "HTTP",
			Sources:     cli.EnvVars("FOODREC_ENABLE_SEED"),
			Destination: &enableSeed,
		},
		&cli.BoolFlag{
			Name:        "metrics",
			Usage:       "Expose Prometheus metrics at /metrics",
			Category:    "HTTP",
			Value:       true,
			Sources:     cli.EnvVars("FOODREC_METRICS"),
			Destination: &enableMetrics,
		},
	}

	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, embeddingCfg.Flags()...)
	flags = append(flags, recommendCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
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

			recCfg, err := recommendCfg.Configure()
			if err != nil {
				return err
			}

			uc := usecase.New(repo,
				usecase.WithEmbedder(embedder),
				usecase.WithRecommendConfig(recCfg),
			)

			handler := httpctrl.New(uc,
				httpctrl.WithCORS(corsOrigins),
				httpctrl.WithRateLimit(rateLimit, rateWindow),
				httpctrl.WithSeed(enableSeed),
				httpctrl.WithMetrics(enableMetrics),
			)
			server := &http.Server{
				Addr:              addr,
				Handler:           handler,
				ReadHeaderTimeout: 30 * time.Second,
			}

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

			errCh := make(chan error, 1)
			go func() {
				logging.Default().Info("Starting HTTP server",
					"addr", addr,
					"repository", repoCfg,
					"embedding", embeddingCfg,
					"seed", enableSeed,
					"metrics", enableMetrics)
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- goerr.Wrap(err, "failed to start server")
				}
			}()

			select {
			case err := <-errCh:
				return err
			case sig := <-sigCh:
				logging.Default().Info("Received shutdown signal", "signal", sig)

				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()

				if err := server.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server gracefully")
				}

				logging.Default().Info("Server shutdown completed")
				return nil
			}
		},
	}
}
