package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/secmon-lab/foodrec/pkg/usecase"
	"github.com/secmon-lab/foodrec/pkg/utils/logging"
	"github.com/secmon-lab/foodrec/pkg/utils/metrics"
)

const maxRequestBodySize = 10 << 20

type Server struct {
	router         *chi.Mux
	uc             *usecase.UseCases
	allowedOrigins []string
	rateLimit      int
	rateWindow     time.Duration
	enableSeed     bool
	enableMetrics  bool
}

type Options func(*Server)

// WithCORS allows cross-origin requests from the given origins
func WithCORS(origins []string) Options {
	return func(s *Server) {
		s.allowedOrigins = origins
	}
}

// WithRateLimit limits API requests per client IP. A non-positive requests value disables it.
func WithRateLimit(requests int, window time.Duration) Options {
	return func(s *Server) {
		s.rateLimit = requests
		s.rateWindow = window
	}
}

// WithSeed exposes the data seeding endpoints
func WithSeed(enabled bool) Options {
	return func(s *Server) {
		s.enableSeed = enabled
	}
}

// WithMetrics exposes Prometheus metrics at /metrics
func WithMetrics(enabled bool) Options {
	return func(s *Server) {
		s.enableMetrics = enabled
	}
}

func New(uc *usecase.UseCases, opts ...Options) *Server {
	r := chi.NewRouter()

	s := &Server{
		router:        r,
		uc:            uc,
		rateWindow:    time.Minute,
		enableMetrics: true,
	}
	for _, opt := range opts {
		opt(s)
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)
	if len(s.allowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.allowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
			ExposedHeaders: []string{"X-Request-Id"},
			MaxAge:         300,
		}))
	}

	r.Get("/health", healthHandler)
	if s.enableMetrics {
		r.Handle("/metrics", promhttp.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.AllowContentType("application/json"))
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
				next.ServeHTTP(w, r)
			})
		})
		if s.rateLimit > 0 {
			r.Use(httprate.LimitByIP(s.rateLimit, s.rateWindow))
		}

		r.Route("/products", func(r chi.Router) {
			r.Post("/", createProductHandler(uc.Product))
			r.Post("/bulk", createProductsHandler(uc.Product))
			r.Get("/", listProductsHandler(uc.Product))
			r.Get("/{productID}", getProductHandler(uc.Product))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", createOrderHandler(uc.Order))
			r.Post("/bulk", createOrdersHandler(uc.Order))
			r.Get("/", listOrdersHandler(uc.Order))
			r.Get("/user/{userID}", listUserOrdersHandler(uc.Order))
			r.Get("/user/{userID}/history", orderHistoryHandler(uc.Order))
			r.Get("/user/{userID}/products", orderSummariesHandler(uc.Order))
		})

		r.Route("/recommendations", func(r chi.Router) {
			r.Post("/user/{userID}", recommendForUserHandler(uc.Recommend))
			r.Post("/preference", recommendForPreferenceHandler(uc.Recommend))
			r.Post("/hybrid", recommendHybridHandler(uc.Recommend))
			r.Post("/hybrid/{userID}", recommendHybridHandler(uc.Recommend))
			r.Post("/popular", recommendPopularHandler(uc.Recommend))
		})

		if s.enableSeed {
			r.Route("/seed", func(r chi.Router) {
				r.Post("/products", seedProductsHandler(uc.Seed))
				r.Post("/orders", seedOrdersHandler(uc.Seed))
				r.Post("/all", seedAllHandler(uc.Seed))
			})
		}
	})

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// accessLogger logs HTTP requests and records their latency. The request ID is attached
// to the logger carried by the request context.
func accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		logger := logging.Default().With("request_id", middleware.GetReqID(r.Context()))
		r = r.WithContext(logging.With(r.Context(), logger))

		defer func() {
			route := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}
			metrics.ObserveAPIRequest(r.Method, route, ww.Status(), time.Since(start))

			logger.Info("access",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote", r.RemoteAddr,
				"user_agent", r.UserAgent(),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(r.Context(), w, http.StatusOK, healthResponse{Status: "healthy"})
}
