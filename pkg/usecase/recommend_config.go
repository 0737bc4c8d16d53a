package usecase

import (
	"math"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
)

// RecommendConfig holds the tunable constants of the recommendation engine
type RecommendConfig struct {
	// Oversample multiplies the limit when retrieving history-based candidates, leaving room
	// for purchased products removed by filtering
	Oversample int `toml:"oversample"`
	// UserWeight scales history-based scores in hybrid mode
	UserWeight float64 `toml:"user_weight"`
	// PreferenceWeight scales preference-based scores in hybrid mode
	PreferenceWeight float64 `toml:"preference_weight"`
	// FallbackScore is the fixed score of popularity recommendations
	FallbackScore float64 `toml:"fallback_score"`
	DefaultLimit  int     `toml:"default_limit"`
	MaxLimit      int     `toml:"max_limit"`
}

// DefaultRecommendConfig returns the standard engine settings
func DefaultRecommendConfig() RecommendConfig {
	return RecommendConfig{
		Oversample:       2,
		UserWeight:       0.7,
		PreferenceWeight: 0.3,
		FallbackScore:    0.5,
		DefaultLimit:     10,
		MaxLimit:         50,
	}
}

// LoadRecommendConfig reads a TOML file. Keys absent from the file keep their default values.
func LoadRecommendConfig(path string) (RecommendConfig, error) {
	cfg := DefaultRecommendConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, goerr.Wrap(err, "failed to read recommend config", goerr.V("path", path))
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, goerr.Wrap(err, "failed to parse recommend config", goerr.V("path", path))
	}

	if err := cfg.Validate(); err != nil {
		return cfg, goerr.Wrap(err, "invalid recommend config", goerr.V("path", path))
	}

	return cfg, nil
}

func validWeight(w float64) bool {
	return !math.IsNaN(w) && w >= 0 && w <= 1
}

// Validate checks the ranges of every setting
func (c RecommendConfig) Validate() error {
	if c.Oversample < 1 {
		return goerr.New("oversample must be at least 1", goerr.V("oversample", c.Oversample))
	}
	if !validWeight(c.UserWeight) {
		return goerr.New("user weight must be between 0 and 1", goerr.V("user_weight", c.UserWeight))
	}
	if !validWeight(c.PreferenceWeight) {
		return goerr.New("preference weight must be between 0 and 1", goerr.V("preference_weight", c.PreferenceWeight))
	}
	if !validWeight(c.FallbackScore) {
		return goerr.New("fallback score must be between 0 and 1", goerr.V("fallback_score", c.FallbackScore))
	}
	if c.MaxLimit < 1 {
		return goerr.New("max limit must be at least 1", goerr.V("max_limit", c.MaxLimit))
	}
	if c.DefaultLimit < 1 || c.DefaultLimit > c.MaxLimit {
		return goerr.New("default limit must be between 1 and max limit",
			goerr.V("default_limit", c.DefaultLimit),
			goerr.V("max_limit", c.MaxLimit))
	}
	return nil
}
