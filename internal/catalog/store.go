package catalog

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"slices"
	"sync"
	"time"

	"storefront/internal/domain"
	"storefront/internal/pubsub"

	"go.uber.org/zap"
	"golang.org/x/text/language"
)

var (
	ErrNilCatalog = errors.New("catalog document is empty")
)

// Source fetches the catalog document
type Source interface {
	Fetch(ctx context.Context) (*domain.Catalog, error)
}

// SourceFunc adapts a function to Source
type SourceFunc func(ctx context.Context) (*domain.Catalog, error)

func (f SourceFunc) Fetch(ctx context.Context) (*domain.Catalog, error) {
	return f(ctx)
}

// snapshot is an immutable view of a loaded catalog
type snapshot struct {
	categories []domain.Category
	products   []domain.Product
	byID       map[int]int
	metadata   *domain.Metadata
}

func newSnapshot(doc *domain.Catalog) *snapshot {
	snap := &snapshot{
		categories: slices.Clone(doc.Categories),
		products:   slices.Clone(doc.Products),
		byID:       make(map[int]int, len(doc.Products)),
		metadata:   doc.Metadata,
	}
	for i, p := range snap.products {
		snap.byID[p.ID] = i
	}
	return snap
}

// Option configures a Store
type Option func(*Store)

// WithRand sets the randomness source used to pick related products
func WithRand(r *rand.Rand) Option {
	return func(s *Store) {
		s.rng = r
	}
}

// WithLocale sets the collation locale used by name sorting
func WithLocale(tag language.Tag) Option {
	return func(s *Store) {
		s.locale = tag
	}
}

// Store holds the loaded catalog and answers read-only queries against it.
// Queries issued before the first load completes see an empty catalog.
type Store struct {
	source Source
	logger *zap.Logger
	locale language.Tag

	mu       sync.RWMutex
	snap     *snapshot
	loaded   bool
	inFlight bool
	waiters  []chan domain.Catalog

	rngMu sync.Mutex
	rng   *rand.Rand

	loading    *pubsub.Subject[bool]
	categories *pubsub.Subject[[]domain.Category]
	products   *pubsub.Subject[[]domain.Product]
}

// NewStore creates a Store backed by source. Nothing is fetched until Load.
func NewStore(source Source, logger *zap.Logger, opts ...Option) *Store {
	s := &Store{
		source:     source,
		logger:     logger,
		locale:     language.English,
		snap:       newSnapshot(&domain.Catalog{}),
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
		loading:    pubsub.NewSubject(false),
		categories: pubsub.NewSubject([]domain.Category{}),
		products:   pubsub.NewSubject([]domain.Product{}),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Load fetches the catalog in the background. The returned channel receives the
// installed catalog, real or fallback, and is then closed. If data is already
// loaded nothing is fetched; if a fetch is running the caller joins it.
func (s *Store) Load(ctx context.Context) <-chan domain.Catalog {
	return s.load(ctx, false)
}

// Reload discards the ready state and fetches the catalog again
func (s *Store) Reload(ctx context.Context) <-chan domain.Catalog {
	return s.load(ctx, true)
}

func (s *Store) load(ctx context.Context, force bool) <-chan domain.Catalog {
	done := make(chan domain.Catalog, 1)

	s.mu.Lock()
	if s.loaded && !force {
		current := s.catalogLocked()
		s.mu.Unlock()

		done <- current
		close(done)
		return done
	}

	s.waiters = append(s.waiters, done)
	if s.inFlight {
		s.mu.Unlock()
		return done
	}

	s.inFlight = true
	if force {
		s.loaded = false
	}
	s.mu.Unlock()

	s.loading.Publish(true)
	go s.fetch(context.WithoutCancel(ctx))

	return done
}

func (s *Store) fetch(ctx context.Context) {
	start := time.Now()

	doc, err := s.source.Fetch(ctx)
	if err == nil {
		err = Validate(doc)
	}
	if err != nil {
		s.logger.Warn("Failed to load catalog, using fallback data", zap.Error(err))
		doc = Fallback()
	} else if doc.Metadata != nil {
		s.logger.Info("Catalog metadata",
			zap.Int("total_products", doc.Metadata.TotalProducts),
			zap.String("generated_at", doc.Metadata.GeneratedAt),
			zap.String("version", doc.Metadata.Version),
		)
	}

	snap := newSnapshot(doc)

	s.mu.Lock()
	s.snap = snap
	s.loaded = true
	s.inFlight = false
	waiters := s.waiters
	s.waiters = nil
	current := s.catalogLocked()
	s.mu.Unlock()

	s.categories.Publish(slices.Clone(snap.categories))
	s.products.Publish(slices.Clone(snap.products))
	s.loading.Publish(false)

	s.logger.Info("Catalog loaded",
		zap.Int("products", len(snap.products)),
		zap.Int("categories", len(snap.categories)),
		zap.Duration("duration", time.Since(start)),
	)
	s.logStatistics()

	for _, w := range waiters {
		w <- current
		close(w)
	}
}

func (s *Store) catalogLocked() domain.Catalog {
	return domain.Catalog{
		Categories: slices.Clone(s.snap.categories),
		Products:   slices.Clone(s.snap.products),
		Metadata:   s.snap.metadata,
	}
}

func (s *Store) current() *snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

func (s *Store) logStatistics() {
	stats := s.Stats()
	s.logger.Info("Catalog statistics",
		zap.Any("by_category", stats.ByCategory),
		zap.String("price_min", stats.PriceRange.Min.StringFixed(2)),
		zap.String("price_max", stats.PriceRange.Max.StringFixed(2)),
		zap.String("in_stock", fmt.Sprintf("%d/%d", stats.InStock, stats.Total)),
	)
}

// IsDataReady reports whether a load has completed
func (s *Store) IsDataReady() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// IsLoading reports whether a fetch is outstanding
func (s *Store) IsLoading() bool {
	return s.loading.Value()
}

// WatchLoading streams the loading flag
func (s *Store) WatchLoading(ctx context.Context) <-chan bool {
	return s.loading.Subscribe(ctx)
}

// WatchCategories streams the category list, starting with the current one
func (s *Store) WatchCategories(ctx context.Context) <-chan []domain.Category {
	return s.categories.Subscribe(ctx)
}

// WatchProducts streams the product list, starting with the current one
func (s *Store) WatchProducts(ctx context.Context) <-chan []domain.Product {
	return s.products.Subscribe(ctx)
}

// Locale returns the collation locale used for name sorting
func (s *Store) Locale() language.Tag {
	return s.locale
}
