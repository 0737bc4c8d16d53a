package postgres

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/foodrec/pkg/domain/interfaces"
	"github.com/secmon-lab/foodrec/pkg/domain/model"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Postgres is a repository backed by PostgreSQL with the pgvector extension
type Postgres struct {
	db      *gorm.DB
	product *productRepository
	order   *orderRepository
	user    *userRepository
}

var _ interfaces.Repository = &Postgres{}

type Option func(*gorm.Config)

// WithLogLevel changes the gorm SQL logger level. SQL logging is silent by default.
func WithLogLevel(level logger.LogLevel) Option {
	return func(cfg *gorm.Config) {
		cfg.Logger = logger.Default.LogMode(level)
	}
}

// New connects to the database and migrates the schema
func New(ctx context.Context, dsn string, opts ...Option) (*Postgres, error) {
	cfg := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	db, err := gorm.Open(postgres.Open(dsn), cfg)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to connect to postgres")
	}

	if err := migrate(ctx, db); err != nil {
		return nil, err
	}

	return &Postgres{
		db:      db,
		product: &productRepository{db: db},
		order:   &orderRepository{db: db},
		user:    &userRepository{db: db},
	}, nil
}

func migrate(ctx context.Context, db *gorm.DB) error {
	db = db.WithContext(ctx)

	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS vector").Error; err != nil {
		return goerr.Wrap(err, "failed to enable pgvector extension")
	}

	if err := db.AutoMigrate(&productRow{}, &orderRow{}, &userRow{}); err != nil {
		return goerr.Wrap(err, "failed to migrate schema")
	}

	indexSQL := "CREATE INDEX IF NOT EXISTS products_embedding_idx ON products USING hnsw (embedding vector_cosine_ops)"
	if err := db.Exec(indexSQL).Error; err != nil {
		return goerr.Wrap(err, "failed to create vector index",
			goerr.V("dimension", model.EmbeddingDimension))
	}

	return nil
}

func (p *Postgres) Product() interfaces.ProductRepository {
	return p.product
}

func (p *Postgres) Order() interfaces.OrderRepository {
	return p.order
}

func (p *Postgres) User() interfaces.UserRepository {
	return p.user
}

func (p *Postgres) Close() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return goerr.Wrap(err, "failed to get sql.DB")
	}
	return sqlDB.Close()
}
