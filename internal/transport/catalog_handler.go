package transport

import (
	"net/http"
	"strconv"

	"storefront/internal/catalog"
	"storefront/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	DefaultPageSize     = 50
	MaxPageSize         = 100
	DefaultFeaturedSize = 6
	DefaultRelatedSize  = 4
)

// StatusResponse reports catalog load state
type StatusResponse struct {
	Loading    bool `json:"loading"`
	Ready      bool `json:"ready"`
	Categories int  `json:"categories"`
	Products   int  `json:"products"`
}

// CatalogHandler handles HTTP requests for catalog queries
type CatalogHandler struct {
	store  *catalog.Store
	logger *zap.Logger
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(store *catalog.Store, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{
		store:  store,
		logger: logger,
	}
}

// RegisterRoutes registers all catalog routes
func (h *CatalogHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/catalog", func(r chi.Router) {
		r.Get("/status", h.Status)
		r.Post("/reload", h.Reload)
	})

	r.Get("/api/categories", h.ListCategories)
	r.Get("/api/categories/{id}/products", h.CategoryProducts)

	r.Route("/api/products", func(r chi.Router) {
		r.Get("/", h.SearchProducts)
		r.Get("/featured", h.Featured)
		r.Get("/{id}", h.GetProduct)
		r.Get("/{id}/related", h.Related)
	})

	r.Get("/api/stats", h.Stats)
}

func (h *CatalogHandler) status() StatusResponse {
	return StatusResponse{
		Loading:    h.store.IsLoading(),
		Ready:      h.store.IsDataReady(),
		Categories: len(h.store.Categories()),
		Products:   len(h.store.Products()),
	}
}

// Status reports whether the catalog is loading or ready
func (h *CatalogHandler) Status(w http.ResponseWriter, r *http.Request) {
	middleware.RespondWithJSON(w, http.StatusOK, h.status())
}

// Reload refetches the catalog and waits for the new document
func (h *CatalogHandler) Reload(w http.ResponseWriter, r *http.Request) {
	select {
	case <-h.store.Reload(r.Context()):
		h.logger.Info("Catalog reloaded on request")
		middleware.RespondWithJSON(w, http.StatusOK, h.status())
	case <-r.Context().Done():
		middleware.RespondWithJSON(w, http.StatusAccepted, h.status())
	}
}

// ListCategories returns all categories
func (h *CatalogHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	middleware.RespondWithJSON(w, http.StatusOK, h.store.Categories())
}

// CategoryProducts returns one page of a category with quick filters and sort
// applied to the page
func (h *CatalogHandler) CategoryProducts(w http.ResponseWriter, r *http.Request) {
	categoryID, ok := pathID(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	page, err := intParam(q.Get("page"), 0)
	if err != nil || page < 0 {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid page")
		return
	}
	pageSize, err := intParam(q.Get("pageSize"), DefaultPageSize)
	if err != nil || pageSize < 1 || pageSize > MaxPageSize {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid pageSize")
		return
	}

	result := h.store.Paginated(categoryID, page, pageSize)

	quick := catalog.QuickFilter{
		InStock:    boolParam(q.Get("inStock")),
		HighRated:  boolParam(q.Get("highRated")),
		UnderPrice: boolParam(q.Get("underPrice")),
	}
	result.Products = catalog.SortLocale(quick.Apply(result.Products), catalog.ParseSortKey(q.Get("sort")), h.store.Locale())

	middleware.RespondWithJSON(w, http.StatusOK, result)
}

// SearchProducts searches, filters and sorts the catalog
func (h *CatalogHandler) SearchProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var categoryID *int
	if v := q.Get("category"); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil {
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid category")
			return
		}
		categoryID = &id
	}

	criteria := catalog.Criteria{InStock: boolParam(q.Get("inStock"))}
	var err error
	if criteria.MinPrice, err = decimalParam(q.Get("minPrice")); err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid minPrice")
		return
	}
	if criteria.MaxPrice, err = decimalParam(q.Get("maxPrice")); err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid maxPrice")
		return
	}
	if v := q.Get("minRating"); v != "" {
		rating, err := strconv.ParseFloat(v, 64)
		if err != nil {
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid minRating")
			return
		}
		criteria.MinRating = &rating
	}

	products := h.store.Search(q.Get("q"), categoryID)
	products = catalog.Filter(products, criteria)
	products = catalog.SortLocale(products, catalog.ParseSortKey(q.Get("sort")), h.store.Locale())

	middleware.RespondWithJSON(w, http.StatusOK, products)
}

// Featured returns top rated in-stock products
func (h *CatalogHandler) Featured(w http.ResponseWriter, r *http.Request) {
	limit, ok := limitParam(w, r, DefaultFeaturedSize)
	if !ok {
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, h.store.Featured(limit))
}

// GetProduct returns a single product
func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	product, found := h.store.ByID(id)
	if !found {
		middleware.RespondWithError(w, http.StatusNotFound, "product not found")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// Related returns a random sample of other products in the same category
func (h *CatalogHandler) Related(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	limit, ok := limitParam(w, r, DefaultRelatedSize)
	if !ok {
		return
	}

	if _, found := h.store.ByID(id); !found {
		middleware.RespondWithError(w, http.StatusNotFound, "product not found")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, h.store.Related(id, limit))
}

// Stats returns aggregate catalog statistics
func (h *CatalogHandler) Stats(w http.ResponseWriter, r *http.Request) {
	middleware.RespondWithJSON(w, http.StatusOK, h.store.Stats())
}

func pathID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}

func limitParam(w http.ResponseWriter, r *http.Request, def int) (int, bool) {
	limit, err := intParam(r.URL.Query().Get("limit"), def)
	if err != nil || limit < 0 || limit > MaxPageSize {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid limit")
		return 0, false
	}
	return limit, true
}

func intParam(v string, def int) (int, error) {
	if v == "" {
		return def, nil
	}
	return strconv.Atoi(v)
}

func boolParam(v string) bool {
	b, _ := strconv.ParseBool(v)
	return b
}

func decimalParam(v string) (*decimal.Decimal, error) {
	if v == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
