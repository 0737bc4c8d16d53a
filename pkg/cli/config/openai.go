package config

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem/llm/openai"
	"github.com/secmon-lab/foodrec/pkg/service/embedding"
	"github.com/urfave/cli/v3"
)

// OpenAI holds configuration for the OpenAI embedding provider
type OpenAI struct {
	apiKey string
}

func (o *OpenAI) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "openai-api-key",
			Usage:       "OpenAI API key",
			Category:    "Embedding",
			Sources:     cli.EnvVars("FOODREC_OPENAI_API_KEY", "OPENAI_API_KEY"),
			Destination: &o.apiKey,
		},
	}
}

func (o *OpenAI) Configure(ctx context.Context) (embedding.LLMClient, error) {
	if o.apiKey == "" {
		return nil, goerr.Wrap(ErrMissingRequired, "openai-api-key is required when using openai provider")
	}

	client, err := openai.New(ctx, o.apiKey)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create OpenAI client")
	}
	return client, nil
}
