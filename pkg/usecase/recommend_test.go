package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/foodrec/pkg/domain/model"
	"github.com/secmon-lab/foodrec/pkg/domain/types"
	"github.com/secmon-lab/foodrec/pkg/usecase"
)

const historyText = "A's Burger A's Fries"

var baseTime = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

type recommendFixture struct {
	repo     *spyRepository
	embedder *mockEmbedder
	uc       *usecase.RecommendUseCase
	products map[string]*model.Product
}

// newRecommendFixture stores products around axis 0 and gives user u1 orders of A's Burger and A's Fries.
// Item NN products get less similar to axis 0 as NN grows.
func newRecommendFixture(t *testing.T, cfg usecase.RecommendConfig) *recommendFixture {
	t.Helper()
	ctx := context.Background()

	f := &recommendFixture{
		repo:     newSpyRepository(),
		embedder: newMockEmbedder(),
		products: make(map[string]*model.Product),
	}

	products := []*model.Product{
		{RestaurantName: "A's", ProductName: "Burger", Embedding: unitVector(map[int]float32{0: 1})},
		{RestaurantName: "A's", ProductName: "Fries", Embedding: unitVector(map[int]float32{0: 1, 100: 0.05})},
		{RestaurantName: "C's", ProductName: "Burger", Embedding: unitVector(map[int]float32{0: 1, 101: 0.02})},
		{RestaurantName: "D's", ProductName: "Unembedded"},
	}
	for i := 1; i <= 12; i++ {
		products = append(products, &model.Product{
			RestaurantName: "B's",
			ProductName:    fmt.Sprintf("Item %02d", i),
			Embedding:      unitVector(map[int]float32{0: 1, i: 0.1 * float32(i)}),
		})
	}
	for i, p := range products {
		p.Description = "test product"
		p.CreatedAt = baseTime.Add(time.Duration(i) * time.Minute)
	}

	created, err := f.repo.Product().CreateBatch(ctx, products)
	gt.NoError(t, err).Required()
	for _, p := range created {
		f.products[p.RestaurantName+" "+p.ProductName] = p
	}

	orders := []*model.Order{
		{UserID: "u1", RestaurantName: "A's", ProductName: "Burger", Quantity: 2, Price: 5.99, CreatedAt: baseTime},
		{UserID: "u1", RestaurantName: "A's", ProductName: "Fries", Quantity: 1, Price: 2.49, CreatedAt: baseTime.Add(time.Hour)},
		{UserID: "u1", RestaurantName: "A's", ProductName: "Burger", Quantity: 1, Price: 6.49, CreatedAt: baseTime.Add(2 * time.Hour)},
	}
	_, err = f.repo.Order().CreateBatch(ctx, orders)
	gt.NoError(t, err).Required()

	f.embedder.vectors[historyText] = unitVector(map[int]float32{0: 1})
	f.uc = usecase.NewRecommendUseCase(f.repo, f.embedder, cfg)
	return f
}

func productNames(recs []*model.Recommendation) []string {
	names := make([]string, len(recs))
	for i, r := range recs {
		names[i] = r.Product.ProductName
	}
	return names
}

func assertDescending(t *testing.T, recs []*model.Recommendation) {
	t.Helper()
	for i := 1; i < len(recs); i++ {
		gt.Number(t, recs[i].Score).LessOrEqual(recs[i-1].Score)
	}
}

func TestRecommendForUser_OrderHistory(t *testing.T) {
	f := newRecommendFixture(t, usecase.DefaultRecommendConfig())

	recs, err := f.uc.RecommendForUser(context.Background(), "u1", 5)
	gt.NoError(t, err).Required()

	gt.Array(t, f.embedder.calls()).Equal([]string{historyText})
	gt.Array(t, f.repo.products.searchLimits()).Equal([]int{10})

	gt.Array(t, recs).Length(5)
	gt.Array(t, productNames(recs)).Equal([]string{"Item 01", "Item 02", "Item 03", "Item 04", "Item 05"})
	for _, r := range recs {
		gt.Value(t, r.Source).Equal(types.RecommendSourceHistory)
		gt.Value(t, r.Reason).Equal("Based on your order history")
		gt.Number(t, r.Score).Greater(0.0)
		gt.Number(t, r.Score).LessOrEqual(1.0)
	}
	assertDescending(t, recs)
}

func TestRecommendForUser_ExcludesPurchasedNamesAcrossRestaurants(t *testing.T) {
	f := newRecommendFixture(t, usecase.DefaultRecommendConfig())

	recs, err := f.uc.RecommendForUser(context.Background(), "u1", 10)
	gt.NoError(t, err).Required()

	for _, r := range recs {
		gt.String(t, r.Product.ProductName).NotEqual("Burger")
		gt.String(t, r.Product.ProductName).NotEqual("Fries")
		gt.String(t, r.Product.ProductName).NotEqual("Unembedded")
	}
	gt.Array(t, recs).Length(10)
}

func TestRecommendForUser_ExcludesPurchasedProductID(t *testing.T) {
	f := newRecommendFixture(t, usecase.DefaultRecommendConfig())
	ctx := context.Background()

	item := f.products["B's Item 01"]
	_, err := f.repo.Order().Create(ctx, &model.Order{
		UserID:         "u2",
		RestaurantName: "B's",
		ProductName:    "Renamed Item",
		ProductID:      item.ID,
		Quantity:       1,
		Price:          4.5,
	})
	gt.NoError(t, err).Required()

	recs, err := f.uc.RecommendForUser(ctx, "u2", 3)
	gt.NoError(t, err).Required()
	gt.Array(t, recs).Length(3)
	for _, r := range recs {
		gt.Value(t, r.Product.ID).NotEqual(item.ID)
	}
}

func TestRecommendForUser_FallbackToPopularity(t *testing.T) {
	f := newRecommendFixture(t, usecase.DefaultRecommendConfig())

	recs, err := f.uc.RecommendForUser(context.Background(), "nobody", 4)
	gt.NoError(t, err).Required()

	gt.Array(t, f.embedder.calls()).Length(0)
	gt.Array(t, f.repo.products.searchLimits()).Length(0)
	gt.Array(t, recs).Length(4)
	gt.Array(t, productNames(recs)).Equal([]string{"Item 12", "Item 11", "Item 10", "Item 09"})
	for _, r := range recs {
		gt.Value(t, r.Source).Equal(types.RecommendSourcePopularity)
		gt.Value(t, r.Score).Equal(0.5)
		gt.Value(t, r.Reason).Equal("Popular product (no order history available)")
	}
}

func TestRecommendForUser_EmptyCatalog(t *testing.T) {
	repo := newSpyRepository()
	uc := usecase.NewRecommendUseCase(repo, newMockEmbedder(), usecase.DefaultRecommendConfig())

	recs, err := uc.RecommendForUser(context.Background(), "u1", 10)
	gt.NoError(t, err).Required()
	gt.Bool(t, recs != nil).True()
	gt.Array(t, recs).Length(0)
}

func TestRecommendForUser_FewerCandidatesThanLimit(t *testing.T) {
	repo := newSpyRepository()
	ctx := context.Background()
	_, err := repo.Product().CreateBatch(ctx, []*model.Product{
		{RestaurantName: "A's", ProductName: "Burger", Description: "d", Embedding: unitVector(map[int]float32{0: 1})},
		{RestaurantName: "A's", ProductName: "Shake", Description: "d", Embedding: unitVector(map[int]float32{0: 1, 1: 0.5})},
	})
	gt.NoError(t, err).Required()
	_, err = repo.Order().Create(ctx, &model.Order{UserID: "u1", RestaurantName: "A's", ProductName: "Burger", Quantity: 1, Price: 1})
	gt.NoError(t, err).Required()

	uc := usecase.NewRecommendUseCase(repo, newMockEmbedder(), usecase.DefaultRecommendConfig())
	recs, err := uc.RecommendForUser(ctx, "u1", 5)
	gt.NoError(t, err).Required()
	gt.Array(t, productNames(recs)).Equal([]string{"Shake"})
}

func TestRecommendForPreference(t *testing.T) {
	f := newRecommendFixture(t, usecase.DefaultRecommendConfig())

	recs, err := f.uc.RecommendForPreference(context.Background(), "spicy chicken", 4)
	gt.NoError(t, err).Required()

	gt.Array(t, f.embedder.calls()).Equal([]string{"spicy chicken"})
	gt.Array(t, f.repo.products.searchLimits()).Equal([]int{4})
	gt.Array(t, recs).Length(4)

	// no purchase filtering
	gt.Value(t, recs[0].Product.ProductName).Equal("Burger")
	gt.Value(t, recs[0].Product.RestaurantName).Equal("A's")
	for _, r := range recs {
		gt.Value(t, r.Source).Equal(types.RecommendSourcePreference)
		gt.Value(t, r.Reason).Equal(`Matches preference: "spicy chicken"`)
	}
	assertDescending(t, recs)
}

func TestRecommendForPreference_BlankPreference(t *testing.T) {
	f := newRecommendFixture(t, usecase.DefaultRecommendConfig())

	for _, pref := range []string{"", "   ", "\t\n"} {
		recs, err := f.uc.RecommendForPreference(context.Background(), pref, 5)
		gt.Value(t, recs).Nil()
		gt.Error(t, err).Is(usecase.ErrInvalidInput)
		gt.Error(t, err).Is(usecase.ErrRecommendationFailed)
	}
	gt.Array(t, f.embedder.calls()).Length(0)
}

func TestRecommendHybrid_Shares(t *testing.T) {
	f := newRecommendFixture(t, usecase.DefaultRecommendConfig())
	f.embedder.vectors["spicy chicken"] = unitVector(map[int]float32{0: 1})

	recs, err := f.uc.RecommendHybrid(context.Background(), "u1", "spicy chicken", 10)
	gt.NoError(t, err).Required()

	limits := f.repo.products.searchLimits()
	sort.Ints(limits)
	// 7 history candidates oversampled twice, 3 preference candidates
	gt.Array(t, limits).Equal([]int{3, 14})

	gt.Number(t, len(recs)).LessOrEqual(10)
	assertDescending(t, recs)

	seen := make(map[model.ProductID]bool)
	var history, preference int
	for _, r := range recs {
		gt.Bool(t, seen[r.Product.ID]).False()
		seen[r.Product.ID] = true

		switch r.Source {
		case types.RecommendSourceHistory:
			history++
			gt.Number(t, r.Score).LessOrEqual(0.7)
		case types.RecommendSourcePreference:
			preference++
			gt.Number(t, r.Score).LessOrEqual(0.3)
		}
	}
	gt.Number(t, history).LessOrEqual(7)
	gt.Number(t, preference).LessOrEqual(3)
}

func TestRecommendHybrid_OverlapKeepsHistoryScore(t *testing.T) {
	f := newRecommendFixture(t, usecase.DefaultRecommendConfig())
	ctx := context.Background()
	// closest to Item 01, then both burgers
	f.embedder.vectors["spicy chicken"] = unitVector(map[int]float32{0: 1, 1: 0.1})

	userRecs, err := f.uc.RecommendForUser(ctx, "u1", 7)
	gt.NoError(t, err).Required()
	item := userRecs[0]
	gt.Value(t, item.Product.ProductName).Equal("Item 01")

	recs, err := f.uc.RecommendHybrid(ctx, "u1", "spicy chicken", 10)
	gt.NoError(t, err).Required()

	// seven history items plus two burgers
	gt.Array(t, recs).Length(9)

	var found int
	for _, r := range recs {
		if r.Product.ID != item.Product.ID {
			continue
		}
		found++
		gt.Value(t, r.Source).Equal(types.RecommendSourceHistory)
		gt.Value(t, r.Score).Equal(item.Score * 0.7)
	}
	gt.Value(t, found).Equal(1)
}

func TestRecommendHybrid_NoInputs(t *testing.T) {
	f := newRecommendFixture(t, usecase.DefaultRecommendConfig())

	recs, err := f.uc.RecommendHybrid(context.Background(), "", "  ", 10)
	gt.NoError(t, err).Required()
	gt.Bool(t, recs != nil).True()
	gt.Array(t, recs).Length(0)
	gt.Array(t, f.embedder.calls()).Length(0)
	gt.Array(t, f.repo.products.searchLimits()).Length(0)
}

func TestRecommendHybrid_PreferenceOnly(t *testing.T) {
	f := newRecommendFixture(t, usecase.DefaultRecommendConfig())

	recs, err := f.uc.RecommendHybrid(context.Background(), "", "spicy chicken", 10)
	gt.NoError(t, err).Required()
	gt.Array(t, recs).Length(3)
	for _, r := range recs {
		gt.Value(t, r.Source).Equal(types.RecommendSourcePreference)
	}
}

func TestRecommendHybrid_UserWithoutHistory(t *testing.T) {
	f := newRecommendFixture(t, usecase.DefaultRecommendConfig())

	recs, err := f.uc.RecommendHybrid(context.Background(), "nobody", "", 10)
	gt.NoError(t, err).Required()
	gt.Array(t, recs).Length(7)
	for _, r := range recs {
		gt.Value(t, r.Source).Equal(types.RecommendSourcePopularity)
		gt.Value(t, r.Score).Equal(0.5 * 0.7)
	}
}

func TestRecommendHybrid_ZeroWeightSkipsBranch(t *testing.T) {
	cfg := usecase.DefaultRecommendConfig()
	cfg.UserWeight = 1
	cfg.PreferenceWeight = 0
	f := newRecommendFixture(t, cfg)

	recs, err := f.uc.RecommendHybrid(context.Background(), "u1", "spicy chicken", 5)
	gt.NoError(t, err).Required()
	gt.Array(t, recs).Length(5)
	gt.Array(t, f.embedder.calls()).Equal([]string{historyText})
}

func TestRecommendHybrid_BranchFailureAborts(t *testing.T) {
	f := newRecommendFixture(t, usecase.DefaultRecommendConfig())
	f.embedder.errs["spicy chicken"] = errors.New("provider down")

	recs, err := f.uc.RecommendHybrid(context.Background(), "u1", "spicy chicken", 10)
	gt.Value(t, recs).Nil()
	gt.Error(t, err).Is(usecase.ErrRecommendationFailed)
	gt.Error(t, err).Is(usecase.ErrEmbeddingUnavailable)
}

func TestRecommend_Idempotent(t *testing.T) {
	f := newRecommendFixture(t, usecase.DefaultRecommendConfig())
	ctx := context.Background()

	run := func() []*model.Recommendation {
		recs, err := f.uc.RecommendHybrid(ctx, "u1", "spicy chicken", 10)
		gt.NoError(t, err).Required()
		return recs
	}

	first, second := run(), run()
	gt.Array(t, second).Length(len(first))
	for i := range first {
		gt.Value(t, second[i].Product.ID).Equal(first[i].Product.ID)
		gt.Value(t, second[i].Score).Equal(first[i].Score)
		gt.Value(t, second[i].Source).Equal(first[i].Source)
	}
}

func TestRecommend_Canceled(t *testing.T) {
	f := newRecommendFixture(t, usecase.DefaultRecommendConfig())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	t.Run("user", func(t *testing.T) {
		recs, err := f.uc.RecommendForUser(ctx, "u1", 5)
		gt.Value(t, recs).Nil()
		gt.Error(t, err).Is(context.Canceled)
		gt.Error(t, err).Is(usecase.ErrRecommendationFailed)
	})

	t.Run("fallback", func(t *testing.T) {
		recs, err := f.uc.RecommendForUser(ctx, "nobody", 5)
		gt.Value(t, recs).Nil()
		gt.Error(t, err).Is(context.Canceled)
	})

	t.Run("preference", func(t *testing.T) {
		recs, err := f.uc.RecommendForPreference(ctx, "spicy chicken", 5)
		gt.Value(t, recs).Nil()
		gt.Error(t, err).Is(context.Canceled)
		gt.Bool(t, errors.Is(err, usecase.ErrEmbeddingUnavailable)).False()
	})

	t.Run("hybrid", func(t *testing.T) {
		recs, err := f.uc.RecommendHybrid(ctx, "u1", "spicy chicken", 10)
		gt.Value(t, recs).Nil()
		gt.Error(t, err).Is(context.Canceled)
	})
}

func TestRecommend_ErrorKinds(t *testing.T) {
	testCases := []struct {
		name    string
		setup   func(f *recommendFixture)
		call    func(f *recommendFixture) ([]*model.Recommendation, error)
		wantErr error
	}{
		{
			name:  "embedding failure",
			setup: func(f *recommendFixture) { f.embedder.errs[historyText] = errors.New("timeout") },
			call: func(f *recommendFixture) ([]*model.Recommendation, error) {
				return f.uc.RecommendForUser(context.Background(), "u1", 5)
			},
			wantErr: usecase.ErrEmbeddingUnavailable,
		},
		{
			name:  "search failure",
			setup: func(f *recommendFixture) { f.repo.products.findErr = errors.New("index unavailable") },
			call: func(f *recommendFixture) ([]*model.Recommendation, error) {
				return f.uc.RecommendForPreference(context.Background(), "tacos", 5)
			},
			wantErr: usecase.ErrRetrievalFailure,
		},
		{
			name:  "order listing failure",
			setup: func(f *recommendFixture) { f.repo.orders.listErr = errors.New("connection reset") },
			call: func(f *recommendFixture) ([]*model.Recommendation, error) {
				return f.uc.RecommendForUser(context.Background(), "u1", 5)
			},
			wantErr: usecase.ErrRetrievalFailure,
		},
		{
			name:  "popular listing failure",
			setup: func(f *recommendFixture) { f.repo.products.recentErr = errors.New("connection reset") },
			call: func(f *recommendFixture) ([]*model.Recommendation, error) {
				return f.uc.RecommendPopular(context.Background(), 5)
			},
			wantErr: usecase.ErrRetrievalFailure,
		},
		{
			name:  "zero limit",
			setup: func(f *recommendFixture) {},
			call: func(f *recommendFixture) ([]*model.Recommendation, error) {
				return f.uc.RecommendForUser(context.Background(), "u1", 0)
			},
			wantErr: usecase.ErrInvalidInput,
		},
		{
			name:  "limit above max",
			setup: func(f *recommendFixture) {},
			call: func(f *recommendFixture) ([]*model.Recommendation, error) {
				return f.uc.RecommendHybrid(context.Background(), "u1", "tacos", 51)
			},
			wantErr: usecase.ErrInvalidInput,
		},
		{
			name:  "blank user",
			setup: func(f *recommendFixture) {},
			call: func(f *recommendFixture) ([]*model.Recommendation, error) {
				return f.uc.RecommendForUser(context.Background(), " ", 5)
			},
			wantErr: usecase.ErrInvalidInput,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := newRecommendFixture(t, usecase.DefaultRecommendConfig())
			tc.setup(f)

			recs, err := tc.call(f)
			gt.Value(t, recs).Nil()
			gt.Error(t, err).Is(usecase.ErrRecommendationFailed)
			gt.Error(t, err).Is(tc.wantErr)

			var re *usecase.RecommendError
			gt.Bool(t, errors.As(err, &re)).True()
			gt.Value(t, re.Kind).Equal(tc.wantErr)
		})
	}
}

func TestRecommend_NoEmbedder(t *testing.T) {
	f := newRecommendFixture(t, usecase.DefaultRecommendConfig())
	uc := usecase.NewRecommendUseCase(f.repo, nil, usecase.DefaultRecommendConfig())

	_, err := uc.RecommendForPreference(context.Background(), "tacos", 5)
	gt.Error(t, err).Is(usecase.ErrEmbeddingUnavailable)

	// popularity needs no provider
	recs, err := uc.RecommendForUser(context.Background(), "nobody", 5)
	gt.NoError(t, err).Required()
	gt.Array(t, recs).Length(5)
}
