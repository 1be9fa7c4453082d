package repository

import (
	"context"
	"fmt"
	"time"

	"storefront/internal/domain"

	"go.uber.org/zap"
)

// PostgresSource assembles the catalog document from the categories and
// products tables
type PostgresSource struct {
	categories CategoryRepository
	products   ProductRepository
	logger     *zap.Logger
}

// NewPostgresSource creates a PostgresSource
func NewPostgresSource(categories CategoryRepository, products ProductRepository, logger *zap.Logger) *PostgresSource {
	return &PostgresSource{
		categories: categories,
		products:   products,
		logger:     logger,
	}
}

func (s *PostgresSource) Fetch(ctx context.Context) (*domain.Catalog, error) {
	categories, err := s.categories.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}

	products, err := s.products.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}

	s.logger.Debug("Catalog rows loaded",
		zap.Int("categories", len(categories)),
		zap.Int("products", len(products)),
	)

	return &domain.Catalog{
		Categories: categories,
		Products:   products,
		Metadata: &domain.Metadata{
			TotalProducts: len(products),
			GeneratedAt:   time.Now().UTC().Format(time.RFC3339),
			Version:       "postgres",
		},
	}, nil
}
