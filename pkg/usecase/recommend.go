package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/foodrec/pkg/domain/interfaces"
	"github.com/secmon-lab/foodrec/pkg/domain/model"
	"github.com/secmon-lab/foodrec/pkg/domain/types"
	"github.com/secmon-lab/foodrec/pkg/utils/logging"
	"github.com/secmon-lab/foodrec/pkg/utils/metrics"
	"golang.org/x/sync/errgroup"
)

// RecommendUseCase turns order history and preference text into ranked product recommendations
type RecommendUseCase struct {
	repo     interfaces.Repository
	embedder interfaces.Embedder
	config   RecommendConfig
}

func NewRecommendUseCase(repo interfaces.Repository, embedder interfaces.Embedder, cfg RecommendConfig) *RecommendUseCase {
	return &RecommendUseCase{
		repo:     repo,
		embedder: embedder,
		config:   cfg,
	}
}

// Config returns the engine settings
func (uc *RecommendUseCase) Config() RecommendConfig {
	return uc.config
}

// RecommendForUser recommends products similar to what the user bought before, excluding
// the purchased products themselves. Users without history get popular products instead.
func (uc *RecommendUseCase) RecommendForUser(ctx context.Context, userID string, limit int) ([]*model.Recommendation, error) {
	start := time.Now()
	recs, err := uc.recommendForUser(ctx, userID, limit)
	metrics.ObserveRecommend(types.RecommendModeUser.String(), start, err)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to recommend for user",
			goerr.V(ModeKey, types.RecommendModeUser),
			goerr.V(UserIDKey, userID),
			goerr.V(LimitKey, limit))
	}
	return recs, nil
}

// RecommendForPreference recommends the products closest to a free-text preference.
// Purchase history is not taken into account.
func (uc *RecommendUseCase) RecommendForPreference(ctx context.Context, preference string, limit int) ([]*model.Recommendation, error) {
	start := time.Now()
	recs, err := uc.recommendForPreference(ctx, preference, limit)
	metrics.ObserveRecommend(types.RecommendModePreference.String(), start, err)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to recommend for preference",
			goerr.V(ModeKey, types.RecommendModePreference),
			goerr.V(PreferenceKey, preference),
			goerr.V(LimitKey, limit))
	}
	return recs, nil
}

// RecommendHybrid blends history-based and preference-based recommendations. Either input may be
// empty; when both are, the result is empty. A product found by both branches keeps its
// history-based score.
func (uc *RecommendUseCase) RecommendHybrid(ctx context.Context, userID, preference string, limit int) ([]*model.Recommendation, error) {
	start := time.Now()
	recs, err := uc.recommendHybrid(ctx, userID, preference, limit)
	metrics.ObserveRecommend(types.RecommendModeHybrid.String(), start, err)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to recommend hybrid",
			goerr.V(ModeKey, types.RecommendModeHybrid),
			goerr.V(UserIDKey, userID),
			goerr.V(PreferenceKey, preference),
			goerr.V(LimitKey, limit))
	}
	return recs, nil
}

// RecommendPopular returns the newest products with the fallback score
func (uc *RecommendUseCase) RecommendPopular(ctx context.Context, limit int) ([]*model.Recommendation, error) {
	start := time.Now()
	recs, err := uc.recommendPopular(ctx, limit)
	metrics.ObserveRecommend(types.RecommendModePopularity.String(), start, err)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to recommend popular products",
			goerr.V(ModeKey, types.RecommendModePopularity),
			goerr.V(LimitKey, limit))
	}
	return recs, nil
}

func (uc *RecommendUseCase) validateLimit(mode types.RecommendMode, limit int) error {
	if limit < 1 || limit > uc.config.MaxLimit {
		return newRecommendError(mode, ErrInvalidInput,
			goerr.New("limit out of range",
				goerr.V(LimitKey, limit),
				goerr.V("max_limit", uc.config.MaxLimit)))
	}
	return nil
}

// stepError classifies a collaborator failure. Cancellation takes precedence over the step's kind.
func stepError(ctx context.Context, mode types.RecommendMode, kind, cause error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return newRecommendError(mode, nil, ctxErr)
	}
	return newRecommendError(mode, kind, cause)
}

func (uc *RecommendUseCase) recommendForUser(ctx context.Context, userID string, limit int) ([]*model.Recommendation, error) {
	const mode = types.RecommendModeUser

	if strings.TrimSpace(userID) == "" {
		return nil, newRecommendError(mode, ErrInvalidInput, goerr.New("user ID is required"))
	}
	if err := uc.validateLimit(mode, limit); err != nil {
		return nil, err
	}

	orders, err := uc.repo.Order().ListByUserID(ctx, userID)
	if err != nil {
		return nil, stepError(ctx, mode, ErrRetrievalFailure, err)
	}
	summaries := model.SummarizeOrders(orders)

	if len(summaries) == 0 {
		logging.From(ctx).Debug("no order history, falling back to popular products", "user_id", userID)
		metrics.RecommendFallbacks.Inc()
		return uc.recommendPopular(ctx, limit)
	}

	vector, err := uc.embed(ctx, model.PreferenceText(summaries))
	if err != nil {
		return nil, stepError(ctx, mode, ErrEmbeddingUnavailable, err)
	}

	candidates, err := uc.repo.Product().FindByEmbedding(ctx, vector, limit*uc.config.Oversample)
	if err != nil {
		return nil, stepError(ctx, mode, ErrRetrievalFailure, err)
	}

	filtered := truncate(filterPurchased(candidates, newPurchasedSet(summaries)), limit)
	recs := toRecommendations(filtered, types.RecommendSourceHistory, model.ReasonHistory)

	if err := ctx.Err(); err != nil {
		return nil, newRecommendError(mode, nil, err)
	}
	return recs, nil
}

func (uc *RecommendUseCase) recommendForPreference(ctx context.Context, preference string, limit int) ([]*model.Recommendation, error) {
	const mode = types.RecommendModePreference

	if strings.TrimSpace(preference) == "" {
		return nil, newRecommendError(mode, ErrInvalidInput, goerr.New("preference is required"))
	}
	if err := uc.validateLimit(mode, limit); err != nil {
		return nil, err
	}

	vector, err := uc.embed(ctx, preference)
	if err != nil {
		return nil, stepError(ctx, mode, ErrEmbeddingUnavailable, err)
	}

	candidates, err := uc.repo.Product().FindByEmbedding(ctx, vector, limit)
	if err != nil {
		return nil, stepError(ctx, mode, ErrRetrievalFailure, err)
	}

	recs := toRecommendations(truncate(candidates, limit), types.RecommendSourcePreference, model.PreferenceReason(preference))

	if err := ctx.Err(); err != nil {
		return nil, newRecommendError(mode, nil, err)
	}
	return recs, nil
}

func (uc *RecommendUseCase) recommendHybrid(ctx context.Context, userID, preference string, limit int) ([]*model.Recommendation, error) {
	const mode = types.RecommendModeHybrid

	if err := uc.validateLimit(mode, limit); err != nil {
		return nil, err
	}

	hasUser := strings.TrimSpace(userID) != ""
	hasPreference := strings.TrimSpace(preference) != ""
	if !hasUser && !hasPreference {
		return []*model.Recommendation{}, nil
	}

	userShare := hybridShare(limit, uc.config.UserWeight)
	prefShare := hybridShare(limit, uc.config.PreferenceWeight)

	var userRecs, prefRecs []*model.Recommendation
	eg, egCtx := errgroup.WithContext(ctx)

	if hasUser && userShare > 0 {
		eg.Go(func() error {
			recs, err := uc.recommendForUser(egCtx, userID, userShare)
			if err != nil {
				return err
			}
			scaleScores(recs, uc.config.UserWeight)
			userRecs = recs
			return nil
		})
	}

	if hasPreference && prefShare > 0 {
		eg.Go(func() error {
			recs, err := uc.recommendForPreference(egCtx, preference, prefShare)
			if err != nil {
				return err
			}
			scaleScores(recs, uc.config.PreferenceWeight)
			prefRecs = recs
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, newRecommendError(mode, nil, ctxErr)
		}
		return nil, err
	}

	merged := make([]*model.Recommendation, 0, len(userRecs)+len(prefRecs))
	merged = append(merged, userRecs...)
	merged = append(merged, prefRecs...)

	merged = dedupByProduct(merged)
	sortByScore(merged)
	return truncate(merged, limit), nil
}

func (uc *RecommendUseCase) recommendPopular(ctx context.Context, limit int) ([]*model.Recommendation, error) {
	const mode = types.RecommendModePopularity

	if err := uc.validateLimit(mode, limit); err != nil {
		return nil, err
	}

	products, err := uc.repo.Product().ListRecent(ctx, limit)
	if err != nil {
		return nil, stepError(ctx, mode, ErrRetrievalFailure, err)
	}

	recs := make([]*model.Recommendation, 0, len(products))
	for _, p := range truncate(products, limit) {
		recs = append(recs, &model.Recommendation{
			Product: p,
			Score:   uc.config.FallbackScore,
			Reason:  model.ReasonPopularity,
			Source:  types.RecommendSourcePopularity,
		})
	}

	if err := ctx.Err(); err != nil {
		return nil, newRecommendError(mode, nil, err)
	}
	return recs, nil
}

func (uc *RecommendUseCase) embed(ctx context.Context, text string) ([]float32, error) {
	if uc.embedder == nil {
		return nil, goerr.New("embedding provider is not configured")
	}

	vector, err := uc.embedder.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	if len(vector) == 0 {
		return nil, goerr.New("embedding provider returned an empty vector")
	}
	return vector, nil
}
