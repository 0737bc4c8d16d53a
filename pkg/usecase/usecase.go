package usecase

import (
	"github.com/secmon-lab/foodrec/pkg/domain/interfaces"
)

type UseCases struct {
	repo         interfaces.Repository
	embedder     interfaces.Embedder
	recommendCfg RecommendConfig
	seedOpts     []SeedOption

	Product   *ProductUseCase
	Order     *OrderUseCase
	Recommend *RecommendUseCase
	Seed      *SeedUseCase
}

type Option func(*UseCases)

func WithEmbedder(embedder interfaces.Embedder) Option {
	return func(uc *UseCases) {
		uc.embedder = embedder
	}
}

func WithRecommendConfig(cfg RecommendConfig) Option {
	return func(uc *UseCases) {
		uc.recommendCfg = cfg
	}
}

func WithSeedOptions(opts ...SeedOption) Option {
	return func(uc *UseCases) {
		uc.seedOpts = append(uc.seedOpts, opts...)
	}
}

func New(repo interfaces.Repository, opts ...Option) *UseCases {
	uc := &UseCases{
		repo:         repo,
		recommendCfg: DefaultRecommendConfig(),
	}

	for _, opt := range opts {
		opt(uc)
	}

	uc.Product = NewProductUseCase(repo, uc.embedder)
	uc.Order = NewOrderUseCase(repo)
	uc.Recommend = NewRecommendUseCase(repo, uc.embedder, uc.recommendCfg)
	uc.Seed = NewSeedUseCase(uc.Product, uc.Order, uc.seedOpts...)

	return uc
}
