package config

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/foodrec/pkg/usecase"
	"github.com/urfave/cli/v3"
)

// Recommend holds CLI flags for tuning the recommendation engine
type Recommend struct {
	path string
}

func (r *Recommend) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "recommend-config",
			Usage:       "TOML file overriding recommendation settings (oversample, weights, limits)",
			Category:    "Recommendation",
			Sources:     cli.EnvVars("FOODREC_RECOMMEND_CONFIG"),
			Destination: &r.path,
		},
	}
}

// Configure returns the default settings or the ones loaded from the TOML file
func (r *Recommend) Configure() (usecase.RecommendConfig, error) {
	if r.path == "" {
		return usecase.DefaultRecommendConfig(), nil
	}

	cfg, err := usecase.LoadRecommendConfig(r.path)
	if err != nil {
		return cfg, goerr.Wrap(err, "failed to load recommend config")
	}
	return cfg, nil
}
