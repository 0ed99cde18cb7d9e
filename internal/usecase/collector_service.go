package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caloriecart/backend/internal/domain"
	"github.com/caloriecart/backend/internal/infrastructure/kroger"
	log "github.com/sirupsen/logrus"
)

// CollectorConfig holds configuration for the collector service
type CollectorConfig struct {
	ZipCode   string
	PageSize  int
	PageDelay time.Duration
	CacheTTL  time.Duration
}

// CollectResult is the outcome of one collection run.
type CollectResult struct {
	LocationID string
	// Products are the deduplicated catalog products, in discovery order.
	Products []domain.Product
	// Rows are the products that had both a price and a calorie count.
	Rows    []domain.ProductNutritionRow
	Skipped int
}

// CollectorService pages the catalog and turns products into nutrition rows.
type CollectorService struct {
	client    domain.CatalogClient
	cache     domain.CacheRepository
	zipCode   string
	pageSize  int
	pageDelay time.Duration
	cacheTTL  time.Duration
}

// NewCollectorService creates a new collector with dependencies. cache may be nil.
func NewCollectorService(
	client domain.CatalogClient,
	cache domain.CacheRepository,
	config CollectorConfig,
) *CollectorService {
	pageSize := config.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	pageDelay := config.PageDelay
	if pageDelay == 0 {
		pageDelay = 500 * time.Millisecond
	}

	cacheTTL := config.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = 24 * time.Hour
	}

	return &CollectorService{
		client:    client,
		cache:     cache,
		zipCode:   config.ZipCode,
		pageSize:  pageSize,
		pageDelay: pageDelay,
		cacheTTL:  cacheTTL,
	}
}

// Collect searches each term at the nearest store, keeping at most maxResults products per term.
// Products seen under an earlier term are not repeated.
func (s *CollectorService) Collect(ctx context.Context, terms []string, maxResults int) (*CollectResult, error) {
	if len(terms) == 0 || maxResults <= 0 {
		return nil, domain.ErrInvalidRequest
	}

	location, err := s.nearestLocation(ctx)
	if err != nil {
		return nil, err
	}

	var products []domain.Product
	for _, term := range terms {
		term = strings.TrimSpace(term)
		if term == "" {
			continue
		}
		found, err := s.page(ctx, term, location.LocationID, maxResults)
		if err != nil {
			return nil, fmt.Errorf("search %q: %w", term, err)
		}
		log.WithFields(log.Fields{"term": term, "count": len(found)}).Info("search complete")
		products = append(products, found...)
	}

	return s.finish(ctx, location.LocationID, products)
}

// CollectAll pages the catalog without a search term. maxProducts <= 0 means no limit.
func (s *CollectorService) CollectAll(ctx context.Context, maxProducts int) (*CollectResult, error) {
	location, err := s.nearestLocation(ctx)
	if err != nil {
		return nil, err
	}

	products, err := s.page(ctx, "", location.LocationID, maxProducts)
	if err != nil {
		return nil, err
	}

	return s.finish(ctx, location.LocationID, products)
}

func (s *CollectorService) nearestLocation(ctx context.Context) (*domain.Location, error) {
	if s.zipCode == "" {
		return nil, fmt.Errorf("%w: zip code is required", domain.ErrInvalidRequest)
	}

	key := "location:" + s.zipCode
	var location domain.Location
	if s.getFromCache(ctx, key, &location) {
		return &location, nil
	}

	found, err := s.client.NearestLocation(ctx, s.zipCode)
	if err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{
		"location_id": found.LocationID,
		"name":        found.Name,
		"zip":         s.zipCode,
	}).Info("using store")

	s.setInCache(ctx, key, found)
	return found, nil
}

// page walks search pages until an empty or short page, the reported total, or max.
func (s *CollectorService) page(ctx context.Context, term, locationID string, max int) ([]domain.Product, error) {
	var products []domain.Product
	start := 1

	for {
		resp, err := s.client.SearchProducts(ctx, domain.ProductQuery{
			Term:       term,
			LocationID: locationID,
			Start:      start,
			Limit:      s.pageSize,
		})
		if err != nil {
			return nil, err
		}
		if len(resp.Data) == 0 {
			break
		}

		products = append(products, resp.Data...)
		log.WithFields(log.Fields{"term": term, "count": len(products)}).Debug("page retrieved")

		if max > 0 && len(products) >= max {
			products = products[:max]
			break
		}
		total := resp.Meta.Pagination.Total
		if total > 0 && len(products) >= total {
			break
		}
		if total == 0 && len(resp.Data) < s.pageSize {
			break
		}

		start += s.pageSize
		if err := sleepWithContext(ctx, s.pageDelay); err != nil {
			return nil, err
		}
	}

	return products, nil
}

// finish deduplicates products, fills in missing nutrition panels and maps rows.
func (s *CollectorService) finish(ctx context.Context, locationID string, found []domain.Product) (*CollectResult, error) {
	result := &CollectResult{LocationID: locationID}
	seen := make(map[string]bool, len(found))

	for _, p := range found {
		if p.ProductID != "" {
			if seen[p.ProductID] {
				continue
			}
			seen[p.ProductID] = true
		}

		product, err := s.withDetails(ctx, p, locationID)
		if err != nil {
			return nil, err
		}
		result.Products = append(result.Products, *product)

		row, ok := kroger.MapToRow(product)
		if !ok {
			result.Skipped++
			log.WithFields(log.Fields{
				"product_id":  product.ProductID,
				"description": product.Description,
			}).Debug("skipping product without price or calories")
			continue
		}
		result.Rows = append(result.Rows, row)
	}

	log.WithFields(log.Fields{
		"products": len(result.Products),
		"rows":     len(result.Rows),
		"skipped":  result.Skipped,
	}).Info("collection complete")
	return result, nil
}

// withDetails returns p, or its detail record when the search result had no nutrition panel.
// Detail lookups that fail for any reason but cancellation fall back to p.
func (s *CollectorService) withDetails(ctx context.Context, p domain.Product, locationID string) (*domain.Product, error) {
	if len(p.NutritionInformation) > 0 || p.ProductID == "" {
		return &p, nil
	}

	key := fmt.Sprintf("product:%s:%s", locationID, p.ProductID)
	var cached domain.Product
	if s.getFromCache(ctx, key, &cached) {
		return &cached, nil
	}

	detail, err := s.client.ProductDetails(ctx, p.ProductID, locationID)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		entry := log.WithField("product_id", p.ProductID).WithError(err)
		if errors.Is(err, domain.ErrProductNotFound) {
			entry.Debug("product details not found")
		} else {
			entry.Warn("failed to fetch product details")
		}
		return &p, nil
	}

	s.setInCache(ctx, key, detail)
	return detail, nil
}

// getFromCache decodes a JSON string stored under key into dst.
func (s *CollectorService) getFromCache(ctx context.Context, key string, dst interface{}) bool {
	if s.cache == nil {
		return false
	}
	value, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, domain.ErrCacheMiss) {
			log.WithError(err).WithField("key", key).Warn("cache read failed")
		}
		return false
	}
	raw, ok := value.(string)
	if !ok {
		return false
	}
	return json.Unmarshal([]byte(raw), dst) == nil
}

func (s *CollectorService) setInCache(ctx context.Context, key string, value interface{}) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, string(raw), s.cacheTTL); err != nil {
		log.WithError(err).WithField("key", key).Warn("cache write failed")
	}
}

func sleepWithContext(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
