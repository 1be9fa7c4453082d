package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"storefront/internal/catalog"
	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/logger"
	"storefront/internal/repository"
	"storefront/internal/server"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/text/language"
)

func gracefulShutdown(apiServer *server.Server, logger *zap.Logger, done chan bool) {
	// Create context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	logger.Info("Shutting down gracefully, press Ctrl+C again to force")
	stop() // Allow Ctrl+C to force shutdown

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := apiServer.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	if err := apiServer.Close(); err != nil {
		logger.Error("Error closing server resources", zap.Error(err))
	}

	logger.Info("Server exiting")

	done <- true
}

// catalogSource builds the configured catalog source. The database service is
// returned so the server can report on and close it.
func catalogSource(ctx context.Context, cfg *config.Config, log *zap.Logger) (catalog.Source, *database.Service, error) {
	switch cfg.Catalog.Source {
	case config.SourceHTTP:
		return repository.NewHTTPSource(cfg.Catalog.URL, cfg.Catalog.FetchTimeout), nil, nil
	case config.SourcePostgres:
		db, err := database.New(ctx, cfg.Database, log)
		if err != nil {
			return nil, nil, err
		}
		if err := database.RunMigrations(ctx, db.DB(), "migrations", log); err != nil {
			db.Close()
			return nil, nil, err
		}
		source := repository.NewPostgresSource(
			repository.NewCategoryRepository(db.DB()),
			repository.NewProductRepository(db.DB()),
			log,
		)
		return source, db, nil
	default:
		return repository.NewFileSource(cfg.Catalog.Path), nil, nil
	}
}

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		panic(fmt.Sprintf("invalid configuration: %v", err))
	}

	log, err := logger.New(cfg.Server.Env, cfg.Server.LogLevel)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer log.Sync()

	// Prices go over the wire as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true

	log.Info("Starting storefront API",
		zap.String("env", cfg.Server.Env),
		zap.String("port", cfg.Server.Port),
		zap.String("catalog_source", cfg.Catalog.Source),
	)

	ctx := context.Background()

	source, db, err := catalogSource(ctx, cfg, log)
	if err != nil {
		log.Fatal("Failed to initialize catalog source", zap.Error(err))
	}

	locale, err := language.Parse(cfg.Catalog.Locale)
	if err != nil {
		log.Warn("Unknown catalog locale, using English", zap.String("locale", cfg.Catalog.Locale), zap.Error(err))
		locale = language.English
	}

	store := catalog.NewStore(source, log, catalog.WithLocale(locale))
	// Queries see an empty catalog until the first load completes
	store.Load(ctx)

	srv := server.NewServer(cfg, log, store, db)

	done := make(chan bool, 1)
	go gracefulShutdown(srv, log, done)

	log.Info("Server listening", zap.String("addr", srv.Addr))

	err = srv.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		log.Fatal("HTTP server error", zap.Error(err))
	}

	<-done
	log.Info("Graceful shutdown complete")
}
