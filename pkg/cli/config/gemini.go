package config

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem/llm/gemini"
	"github.com/secmon-lab/foodrec/pkg/service/embedding"
	"github.com/urfave/cli/v3"
)

// Gemini holds configuration for the Gemini embedding provider on Vertex AI
type Gemini struct {
	projectID string
	location  string
}

func (g *Gemini) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "gemini-project",
			Usage:       "Google Cloud project ID hosting the Vertex AI embedding model",
			Category:    "Embedding",
			Sources:     cli.EnvVars("FOODREC_GEMINI_PROJECT"),
			Destination: &g.projectID,
		},
		&cli.StringFlag{
			Name:        "gemini-location",
			Usage:       "Vertex AI region for embedding requests",
			Category:    "Embedding",
			Value:       "us-central1",
			Sources:     cli.EnvVars("FOODREC_GEMINI_LOCATION"),
			Destination: &g.location,
		},
	}
}

func (g Gemini) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("project_id", g.projectID),
		slog.String("location", g.location),
	)
}

// Configure returns a Vertex AI client used only for GenerateEmbedding
func (g *Gemini) Configure(ctx context.Context) (embedding.LLMClient, error) {
	if g.projectID == "" {
		return nil, goerr.Wrap(ErrMissingRequired, "gemini-project is required when using gemini provider")
	}

	client, err := gemini.New(ctx, g.projectID, g.location)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create Gemini client",
			goerr.V("project_id", g.projectID),
			goerr.V("location", g.location))
	}

	return client, nil
}
