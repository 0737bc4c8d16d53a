package config_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/foodrec/pkg/cli/config"
	"github.com/secmon-lab/foodrec/pkg/domain/interfaces"
	"github.com/urfave/cli/v3"
)

// runWith parses args into flags and runs action
func runWith(t *testing.T, flags []cli.Flag, args []string, action func(ctx context.Context) error) error {
	t.Helper()
	cmd := &cli.Command{
		Name:  "test",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			return action(ctx)
		},
	}
	return cmd.Run(context.Background(), append([]string{"test"}, args...))
}

func TestRepository_Configure(t *testing.T) {
	t.Run("memory", func(t *testing.T) {
		var cfg config.Repository
		var repo interfaces.Repository
		err := runWith(t, cfg.Flags(), []string{"--repository-backend", "memory"}, func(ctx context.Context) error {
			var err error
			repo, err = cfg.Configure(ctx)
			return err
		})
		gt.NoError(t, err).Required()
		gt.Value(t, repo).NotNil()
		gt.NoError(t, repo.Close())
	})

	t.Run("firestore requires project", func(t *testing.T) {
		var cfg config.Repository
		err := runWith(t, cfg.Flags(), []string{"--repository-backend", "firestore", "--firestore-project-id", ""}, func(ctx context.Context) error {
			_, err := cfg.Configure(ctx)
			return err
		})
		gt.Error(t, err).Is(config.ErrMissingRequired)
	})

	t.Run("postgres requires dsn", func(t *testing.T) {
		var cfg config.Repository
		err := runWith(t, cfg.Flags(), []string{"--repository-backend", "postgres", "--postgres-dsn", ""}, func(ctx context.Context) error {
			_, err := cfg.Configure(ctx)
			return err
		})
		gt.Error(t, err).Is(config.ErrMissingRequired)
	})

	t.Run("unknown backend", func(t *testing.T) {
		var cfg config.Repository
		err := runWith(t, cfg.Flags(), []string{"--repository-backend", "mysql"}, func(ctx context.Context) error {
			_, err := cfg.Configure(ctx)
			return err
		})
		gt.Error(t, err).Is(config.ErrInvalidConfig)
	})
}

func TestLogger_Configure(t *testing.T) {
	t.Run("file output", func(t *testing.T) {
		var cfg config.Logger
		path := filepath.Join(t.TempDir(), "foodrec.log")
		err := runWith(t, cfg.Flags(), []string{"--log-level", "debug", "--log-format", "json", "--log-output", path}, func(ctx context.Context) error {
			closer, err := cfg.Configure()
			if err != nil {
				return err
			}
			closer()
			return nil
		})
		gt.NoError(t, err).Required()

		_, err = os.Stat(path)
		gt.NoError(t, err)
	})

	t.Run("invalid level", func(t *testing.T) {
		var cfg config.Logger
		err := runWith(t, cfg.Flags(), []string{"--log-level", "verbose"}, func(ctx context.Context) error {
			_, err := cfg.Configure()
			return err
		})
		gt.Error(t, err).Is(config.ErrInvalidConfig)
	})

	t.Run("invalid format", func(t *testing.T) {
		var cfg config.Logger
		err := runWith(t, cfg.Flags(), []string{"--log-format", "xml"}, func(ctx context.Context) error {
			_, err := cfg.Configure()
			return err
		})
		gt.Error(t, err).Is(config.ErrInvalidConfig)
	})
}

func TestEmbedding_Configure(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		var cfg config.Embedding
		var embedder interfaces.Embedder
		err := runWith(t, cfg.Flags(), []string{"--embedding-provider", "none"}, func(ctx context.Context) error {
			var err error
			var closer func()
			embedder, closer, err = cfg.Configure(ctx)
			closer()
			return err
		})
		gt.NoError(t, err).Required()
		gt.Value(t, embedder).Nil()
	})

	t.Run("openai requires key", func(t *testing.T) {
		t.Setenv("OPENAI_API_KEY", "")
		t.Setenv("FOODREC_OPENAI_API_KEY", "")
		var cfg config.Embedding
		err := runWith(t, cfg.Flags(), []string{"--embedding-provider", "openai"}, func(ctx context.Context) error {
			_, _, err := cfg.Configure(ctx)
			return err
		})
		gt.Error(t, err).Is(config.ErrMissingRequired)
	})

	t.Run("unknown provider", func(t *testing.T) {
		var cfg config.Embedding
		err := runWith(t, cfg.Flags(), []string{"--embedding-provider", "cohere"}, func(ctx context.Context) error {
			_, _, err := cfg.Configure(ctx)
			return err
		})
		gt.Error(t, err).Is(config.ErrInvalidConfig)
	})
}

func TestRecommend_Configure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recommend.toml")
	gt.NoError(t, os.WriteFile(path, []byte("max_limit = 20\ndefault_limit = 5\n"), 0600)).Required()

	var cfg config.Recommend
	err := runWith(t, cfg.Flags(), []string{"--recommend-config", path}, func(ctx context.Context) error {
		rc, err := cfg.Configure()
		if err != nil {
			return err
		}
		gt.Value(t, rc.MaxLimit).Equal(20)
		gt.Value(t, rc.DefaultLimit).Equal(5)
		gt.Value(t, rc.UserWeight).Equal(0.7)
		return nil
	})
	gt.NoError(t, err)
}
