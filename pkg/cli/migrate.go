package cli

import (
	"context"

	"github.com/m-mizutani/fireconf"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/foodrec/pkg/cli/config"
	"github.com/secmon-lab/foodrec/pkg/domain/model"
	"github.com/secmon-lab/foodrec/pkg/repository/firestore"
	"github.com/secmon-lab/foodrec/pkg/utils/logging"
	"github.com/secmon-lab/foodrec/pkg/utils/safe"
	"github.com/urfave/cli/v3"
)

func cmdMigrate() *cli.Command {
	var repoCfg config.Repository
	var dryRun bool

	flags := []cli.Flag{
		&cli.BoolFlag{
			Name:        "dry-run",
			Usage:       "Print the Firestore index plan without applying it",
			Destination: &dryRun,
		},
	}
	flags = append(flags, repoCfg.Flags()...)

	return &cli.Command{
		Name:    "migrate",
		Aliases: []string{"m"},
		Usage:   "Prepare the storage backend (Firestore indexes or PostgreSQL schema)",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			switch repoCfg.Backend() {
			case config.BackendFirestore:
				return migrateFirestore(ctx, &repoCfg, dryRun)

			case config.BackendPostgres:
				if dryRun {
					logging.Default().Info("Dry run: would enable pgvector and migrate products, orders and users tables")
					return nil
				}
				// the schema is migrated while connecting
				repo, err := repoCfg.Configure(ctx)
				if err != nil {
					return goerr.Wrap(err, "failed to migrate postgres schema")
				}
				safe.Close(ctx, "repository", repo)
				logging.Default().Info("PostgreSQL schema is up to date")
				return nil

			default:
				return goerr.Wrap(config.ErrInvalidConfig, "migrate supports firestore and postgres backends only",
					goerr.V(config.ValueKey, repoCfg.Backend()))
			}
		},
	}
}

func migrateFirestore(ctx context.Context, repoCfg *config.Repository, dryRun bool) error {
	if repoCfg.ProjectID() == "" {
		return goerr.Wrap(config.ErrMissingRequired, "firestore-project-id is required for migration")
	}

	logger := logging.Default().With(
		"project_id", repoCfg.ProjectID(),
		"database_id", repoCfg.DatabaseID(),
		"collection_prefix", repoCfg.CollectionPrefix(),
	)
	indexes := getIndexConfig(repoCfg.CollectionPrefix())

	client, err := fireconf.NewClient(ctx, repoCfg.ProjectID(), repoCfg.DatabaseID())
	if err != nil {
		return goerr.Wrap(err, "failed to create fireconf client")
	}
	defer safe.Close(ctx, "fireconf client", client)

	if !dryRun {
		if err := client.Migrate(ctx, indexes); err != nil {
			return goerr.Wrap(err, "failed to apply Firestore indexes")
		}
		logger.Info("Firestore indexes applied")
		return nil
	}

	plan, err := client.GetMigrationPlan(ctx, indexes)
	if err != nil {
		return goerr.Wrap(err, "failed to create migration plan")
	}
	if len(plan.Steps) == 0 {
		logger.Info("Firestore indexes are up to date")
		return nil
	}
	for _, step := range plan.Steps {
		logger.Info("Planned index change",
			"collection", step.Collection,
			"operation", step.Operation,
			"description", step.Description,
			"destructive", step.Destructive)
	}
	return nil
}

// getIndexConfig declares the indexes behind FindByEmbedding and ListByUserID
func getIndexConfig(prefix string) *fireconf.Config {
	productVector := fireconf.Index{
		Fields: []fireconf.IndexField{{
			Path:   "Embedding",
			Vector: &fireconf.VectorConfig{Dimension: model.EmbeddingDimension},
		}},
	}
	ordersByUser := fireconf.Index{
		Fields: []fireconf.IndexField{
			{Path: "UserID", Order: fireconf.OrderAscending},
			{Path: "CreatedAt", Order: fireconf.OrderDescending},
		},
	}

	return &fireconf.Config{
		Collections: []fireconf.Collection{
			{Name: prefix + firestore.ProductsCollection, Indexes: []fireconf.Index{productVector}},
			{Name: prefix + firestore.OrdersCollection, Indexes: []fireconf.Index{ordersByUser}},
		},
	}
}
