package usecase

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/foodrec/pkg/domain/model"
	"github.com/secmon-lab/foodrec/pkg/utils/logging"
	"github.com/secmon-lab/foodrec/pkg/utils/metrics"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

const (
	DefaultSeedProducts = 1000
	DefaultSeedOrders   = 100000

	seedProductBatchSize = 50
	seedOrderBatchSize   = 1000
	seedUserCount        = 1000
)

var (
	seedRestaurants = []string{
		"McDonald's", "KFC", "Pizza Hut", "Subway", "Burger King",
		"Taco Bell", "Domino's", "Starbucks", "Chipotle", "Wendy's",
	}
	seedProductTypes = []string{
		"Burger", "Pizza", "Sandwich", "Salad", "Fries", "Chicken", "Tacos", "Coffee", "Smoothie", "Wrap",
	}
	seedDescriptors = []string{
		"spicy", "mild", "crispy", "grilled", "fresh", "organic", "delicious", "savory", "sweet", "tangy",
		"classic", "premium", "signature", "special", "house", "chef's", "homemade", "traditional",
	}
	seedIngredients = []string{
		"chicken", "beef", "cheese", "lettuce", "tomato", "onion", "pepperoni", "mushroom", "bacon",
		"avocado", "pickles", "mayo", "sauce", "peppers", "spinach", "olives", "garlic", "herbs",
	}
	seedMealTimes = []string{"breakfast", "lunch", "dinner", "snack", "late-night cravings"}
)

// SeedUseCase generates random products and orders for demos and load tests
type SeedUseCase struct {
	products *ProductUseCase
	orders   *OrderUseCase
	rnd      *rand.Rand
	limiter  *rate.Limiter
	workers  int
}

type SeedOption func(*SeedUseCase)

// WithSeedRand makes generated data reproducible
func WithSeedRand(rnd *rand.Rand) SeedOption {
	return func(uc *SeedUseCase) {
		uc.rnd = rnd
	}
}

// WithSeedRateLimit throttles product batches sent to the embedding provider
func WithSeedRateLimit(batchesPerSecond float64, burst int) SeedOption {
	return func(uc *SeedUseCase) {
		uc.limiter = rate.NewLimiter(rate.Limit(batchesPerSecond), burst)
	}
}

// WithSeedWorkers sets the number of batches written concurrently
func WithSeedWorkers(n int) SeedOption {
	return func(uc *SeedUseCase) {
		if n > 0 {
			uc.workers = n
		}
	}
}

func NewSeedUseCase(products *ProductUseCase, orders *OrderUseCase, opts ...SeedOption) *SeedUseCase {
	uc := &SeedUseCase{
		products: products,
		orders:   orders,
		rnd:      rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0)),
		limiter:  rate.NewLimiter(rate.Inf, 1),
		workers:  4,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

func pick[T any](rnd *rand.Rand, items []T) T {
	return items[rnd.IntN(len(items))]
}

// GenerateProducts builds count random products without storing them
func (uc *SeedUseCase) GenerateProducts(count int) []*model.Product {
	products := make([]*model.Product, 0, count)
	for i := 0; i < count; i++ {
		restaurant := pick(uc.rnd, seedRestaurants)
		productType := pick(uc.rnd, seedProductTypes)
		descriptor := pick(uc.rnd, seedDescriptors)

		shuffled := make([]string, len(seedIngredients))
		copy(shuffled, seedIngredients)
		uc.rnd.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
		ingredients := shuffled[:uc.rnd.IntN(4)+2]

		products = append(products, &model.Product{
			RestaurantName: restaurant,
			ProductName:    strings.ToUpper(descriptor[:1]) + descriptor[1:] + " " + productType,
			Description: fmt.Sprintf("A %s %s made with %s. Perfect for %s.",
				descriptor, strings.ToLower(productType), strings.Join(ingredients, ", "), pick(uc.rnd, seedMealTimes)),
		})
	}
	return products
}

// GenerateOrders builds count random orders over the given products without storing them.
// Users are drawn from user_0001 to user_1000.
func (uc *SeedUseCase) GenerateOrders(products []*model.Product, count int) []*model.Order {
	orders := make([]*model.Order, 0, count)
	for i := 0; i < count; i++ {
		p := pick(uc.rnd, products)
		orders = append(orders, &model.Order{
			UserID:         fmt.Sprintf("user_%04d", uc.rnd.IntN(seedUserCount)+1),
			RestaurantName: p.RestaurantName,
			ProductName:    p.ProductName,
			ProductID:      p.ID,
			Quantity:       uc.rnd.IntN(5) + 1,
			Price:          model.RoundPrice(uc.rnd.Float64()*26 + 3.99),
		})
	}
	return orders
}

// SeedProducts generates and stores count products, embedding them in batches
func (uc *SeedUseCase) SeedProducts(ctx context.Context, count int) (int, error) {
	if count <= 0 {
		return 0, goerr.Wrap(ErrInvalidInput, "count must be positive", goerr.V(CountKey, count))
	}

	logger := logging.From(ctx)
	logger.Info("seeding products", "count", count)

	products := uc.GenerateProducts(count)
	batches := (len(products) + seedProductBatchSize - 1) / seedProductBatchSize

	err := uc.runBatches(ctx, len(products), seedProductBatchSize, func(ctx context.Context, n, start, end int) error {
		if _, err := uc.products.CreateProducts(ctx, products[start:end]); err != nil {
			return goerr.Wrap(err, "failed to seed product batch", goerr.V("batch", n))
		}
		metrics.SeededItems.WithLabelValues("product").Add(float64(end - start))
		logger.Info("created product batch", "batch", n+1, "total", batches)
		return nil
	})
	if err != nil {
		return 0, err
	}

	logger.Info("seeded products", "count", count)
	return count, nil
}

// SeedOrders generates and stores count orders for the stored products
func (uc *SeedUseCase) SeedOrders(ctx context.Context, count int) (int, error) {
	if count <= 0 {
		return 0, goerr.Wrap(ErrInvalidInput, "count must be positive", goerr.V(CountKey, count))
	}

	logger := logging.From(ctx)
	logger.Info("seeding orders", "count", count)

	products, err := uc.products.ListProducts(ctx)
	if err != nil {
		return 0, goerr.Wrap(err, "failed to list products for seeding")
	}
	if len(products) == 0 {
		return 0, goerr.Wrap(ErrNoProducts, "cannot seed orders")
	}

	orders := uc.GenerateOrders(products, count)
	batches := (len(orders) + seedOrderBatchSize - 1) / seedOrderBatchSize

	err = uc.runBatches(ctx, len(orders), seedOrderBatchSize, func(ctx context.Context, n, start, end int) error {
		if _, err := uc.orders.createOrders(ctx, orders[start:end], false); err != nil {
			return goerr.Wrap(err, "failed to seed order batch", goerr.V("batch", n))
		}
		metrics.SeededItems.WithLabelValues("order").Add(float64(end - start))
		logger.Info("created order batch", "batch", n+1, "total", batches)
		return nil
	})
	if err != nil {
		return 0, err
	}

	logger.Info("seeded orders", "count", count)
	return count, nil
}

// SeedAll seeds products first and then orders over them
func (uc *SeedUseCase) SeedAll(ctx context.Context, productCount, orderCount int) error {
	if _, err := uc.SeedProducts(ctx, productCount); err != nil {
		return err
	}
	if _, err := uc.SeedOrders(ctx, orderCount); err != nil {
		return err
	}
	return nil
}

func (uc *SeedUseCase) runBatches(ctx context.Context, total, size int, fn func(ctx context.Context, n, start, end int) error) error {
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(uc.workers)

	for n, start := 0, 0; start < total; n, start = n+1, start+size {
		end := min(start+size, total)
		if err := uc.limiter.Wait(ctx); err != nil {
			_ = eg.Wait()
			return goerr.Wrap(err, "seeding interrupted", goerr.V("batch", n))
		}

		eg.Go(func() error {
			return fn(ctx, n, start, end)
		})
	}

	return eg.Wait()
}
