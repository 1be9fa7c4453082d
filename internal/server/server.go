package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"storefront/internal/cart"
	"storefront/internal/catalog"
	"storefront/internal/config"
	"storefront/internal/database"
	custommiddleware "storefront/internal/middleware"
	"storefront/internal/service"
	"storefront/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Server struct {
	*http.Server
	config *config.Config
	logger *zap.Logger
	store  *catalog.Store
	carts  *cart.Registry
	db     *database.Service
	redis  *redis.Client

	stopSweep context.CancelFunc
}

// NewServer wires the catalog and cart handlers. db may be nil when the
// catalog is not served from Postgres.
func NewServer(cfg *config.Config, logger *zap.Logger, store *catalog.Store, db *database.Service) *Server {
	s := &Server{
		config: cfg,
		logger: logger,
		store:  store,
		carts:  cart.NewRegistry(logger),
		db:     db,
	}

	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))
	router.Use(middleware.Compress(5))
	router.Use(custommiddleware.CORSMiddleware(cfg.CORS.AllowedOrigins, cfg.Server.Env == "development"))

	if cfg.RateLimit.Enabled {
		s.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		router.Use(custommiddleware.RateLimitMiddleware(s.redis, custommiddleware.RateLimitConfig{
			RequestsPerWindow: cfg.RateLimit.Requests,
			Window:            cfg.RateLimit.Window,
			KeyPrefix:         "storefront:ratelimit",
		}, logger))
		logger.Info("Rate limiting enabled",
			zap.Int("requests", cfg.RateLimit.Requests),
			zap.Duration("window", cfg.RateLimit.Window),
		)
	}

	if cfg.Cart.SessionTTL > 0 && cfg.Cart.SweepInterval > 0 {
		ctx, cancel := context.WithCancel(context.Background())
		s.stopSweep = cancel
		go s.carts.Run(ctx, cfg.Cart.SweepInterval, cfg.Cart.SessionTTL)
		logger.Info("Cart session expiry enabled",
			zap.Duration("ttl", cfg.Cart.SessionTTL),
			zap.Duration("interval", cfg.Cart.SweepInterval),
		)
	}

	router.Get("/health", s.health)

	// Initialize services
	checkoutService := service.NewCheckoutService(logger)

	// Initialize handlers
	catalogHandler := transport.NewCatalogHandler(store, logger)
	cartHandler := transport.NewCartHandler(s.carts, store, checkoutService, logger)

	// Register routes
	catalogHandler.RegisterRoutes(router)
	cartHandler.RegisterRoutes(router)

	s.Server = &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      router,
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return s
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	body := map[string]interface{}{
		"status":  "ok",
		"catalog": map[string]bool{"ready": s.store.IsDataReady(), "loading": s.store.IsLoading()},
	}
	status := http.StatusOK

	if s.db != nil {
		dbHealth := s.db.Health(r.Context())
		body["database"] = dbHealth
		if dbHealth["status"] != "up" {
			body["status"] = "degraded"
			status = http.StatusServiceUnavailable
		}
	}

	custommiddleware.RespondWithJSON(w, status, body)
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	if s.stopSweep != nil {
		s.stopSweep()
	}

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.logger.Error("Failed to close redis client", zap.Error(err))
		}
	}

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("Failed to close database connection", zap.Error(err))
		}
	}

	s.logger.Sync()
	return nil
}
