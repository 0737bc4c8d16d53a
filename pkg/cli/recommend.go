package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/goccy/go-json"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/foodrec/pkg/cli/config"
	"github.com/secmon-lab/foodrec/pkg/domain/model"
	"github.com/secmon-lab/foodrec/pkg/domain/types"
	"github.com/secmon-lab/foodrec/pkg/usecase"
	"github.com/secmon-lab/foodrec/pkg/utils/safe"
	"github.com/urfave/cli/v3"
)

func cmdRecommend() *cli.Command {
	var userID string
	var preference string
	var limit int
	var mode string
	var outputJSON bool
	var repoCfg config.Repository
	var embeddingCfg config.Embedding
	var recommendCfg config.Recommend

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "mode",
			Aliases:     []string{"m"},
			Usage:       "Recommendation mode (user, preference, hybrid or popularity)",
			Value:       string(types.RecommendModeUser),
			Destination: &mode,
		},
		&cli.StringFlag{
			Name:        "user",
			Aliases:     []string{"u"},
			Usage:       "User ID whose order history drives the recommendation",
			Destination: &userID,
		},
		&cli.StringFlag{
			Name:        "preference",
			Aliases:     []string{"p"},
			Usage:       "Free-text preference such as \"spicy vegetarian\"",
			Destination: &preference,
		},
		&cli.IntFlag{
			Name:        "limit",
			Aliases:     []string{"n"},
			Usage:       "Number of recommendations (default from recommend config)",
			Destination: &limit,
		},
		&cli.BoolFlag{
			Name:        "json",
			Usage:       "Print recommendations as JSON",
			Destination: &outputJSON,
		},
	}
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, embeddingCfg.Flags()...)
	flags = append(flags, recommendCfg.Flags()...)

	return &cli.Command{
		Name:    "recommend",
		Aliases: []string{"r"},
		Usage:   "Print recommendations for a user or a preference",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			recMode, err := types.ParseRecommendMode(mode)
			if err != nil {
				return goerr.Wrap(config.ErrInvalidConfig, err.Error(), goerr.V(config.FlagKey, "mode"))
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

			recCfg, err := recommendCfg.Configure()
			if err != nil {
				return err
			}
			if limit == 0 {
				limit = recCfg.DefaultLimit
			}

			uc := usecase.New(repo,
				usecase.WithEmbedder(embedder),
				usecase.WithRecommendConfig(recCfg),
			)

			recs, err := runRecommend(ctx, uc.Recommend, recMode, userID, preference, limit)
			if err != nil {
				return err
			}

			if outputJSON {
				return printRecommendationsJSON(os.Stdout, recs)
			}
			printRecommendations(os.Stdout, recs)
			return nil
		},
	}
}

func runRecommend(ctx context.Context, uc *usecase.RecommendUseCase, mode types.RecommendMode, userID, preference string, limit int) ([]*model.Recommendation, error) {
	switch mode {
	case types.RecommendModeUser:
		return uc.RecommendForUser(ctx, userID, limit)
	case types.RecommendModePreference:
		return uc.RecommendForPreference(ctx, preference, limit)
	case types.RecommendModeHybrid:
		return uc.RecommendHybrid(ctx, userID, preference, limit)
	default:
		return uc.RecommendPopular(ctx, limit)
	}
}

type recommendationOutput struct {
	ProductID      model.ProductID `json:"product_id"`
	RestaurantName string          `json:"restaurant_name"`
	ProductName    string          `json:"product_name"`
	Score          float64         `json:"score"`
	Reason         string          `json:"reason"`
	Source         string          `json:"source"`
}

func printRecommendationsJSON(w io.Writer, recs []*model.Recommendation) error {
	out := make([]recommendationOutput, 0, len(recs))
	for _, rec := range recs {
		out = append(out, recommendationOutput{
			ProductID:      rec.Product.ID,
			RestaurantName: rec.Product.RestaurantName,
			ProductName:    rec.Product.ProductName,
			Score:          rec.Score,
			Reason:         rec.Reason,
			Source:         rec.Source.String(),
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return goerr.Wrap(err, "failed to encode recommendations")
	}
	return nil
}

func printRecommendations(w io.Writer, recs []*model.Recommendation) {
	if len(recs) == 0 {
		color.New(color.FgYellow).Fprintln(w, "No recommendations")
		return
	}

	rank := color.New(color.FgHiBlack)
	name := color.New(color.Bold)
	score := color.New(color.FgGreen)
	reason := color.New(color.FgCyan)

	for i, rec := range recs {
		rank.Fprintf(w, "%2d. ", i+1)
		name.Fprintf(w, "%s", rec.Product.ProductName)
		fmt.Fprintf(w, " @ %s ", rec.Product.RestaurantName)
		score.Fprintf(w, "(%.3f)", rec.Score)
		fmt.Fprintln(w)
		reason.Fprintf(w, "    %s [%s]\n", rec.Reason, rec.Source)
	}
}
