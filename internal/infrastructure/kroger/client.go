package kroger

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/caloriecart/backend/internal/domain"
	"github.com/caloriecart/backend/internal/metrics"
	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const (
	SandboxBaseURL    = "https://api-ce.kroger.com/v1"
	ProductionBaseURL = "https://api.kroger.com/v1"

	// DefaultScope is enough for product and location reads.
	DefaultScope = "product.compact"

	defaultMaxRetries    = 5
	defaultRateLimitWait = 60 * time.Second
	maxErrorBodyBytes    = 4096
)

// BaseURLFor picks the sandbox or production API root.
func BaseURLFor(sandbox bool) string {
	if sandbox {
		return SandboxBaseURL
	}
	return ProductionBaseURL
}

// ClientConfig holds everything needed to talk to the catalog API.
type ClientConfig struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	RedirectURI  string
	Scope        string

	// RequestsPerSecond and Burst feed the client-side limiter.
	RequestsPerSecond float64
	Burst             int

	// RateLimitWait is how long to back off after a 429.
	RateLimitWait time.Duration
	MaxRetries    int
	Timeout       time.Duration

	// TokenCache, when set, shares access tokens between runs.
	TokenCache domain.CacheRepository
	Metrics    *metrics.Metrics
}

// Client handles communication with the grocery catalog API
type Client struct {
	httpClient    *http.Client
	baseURL       string
	clientID      string
	clientSecret  string
	redirectURI   string
	scope         string
	rateLimiter   *rate.Limiter
	rateLimitWait time.Duration
	maxRetries    int
	tokenCache    domain.CacheRepository
	metrics       *metrics.Metrics
	debug         bool
	now           func() time.Time

	mu    sync.Mutex
	token *domain.Token
}

// NewClient creates a new catalog API client
func NewClient(cfg ClientConfig) *Client {
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 2 // the collector used to sleep 0.5s between pages
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	wait := cfg.RateLimitWait
	if wait <= 0 {
		wait = defaultRateLimitWait
	}
	retries := cfg.MaxRetries
	if retries <= 0 {
		retries = defaultMaxRetries
	}
	scope := cfg.Scope
	if scope == "" {
		scope = DefaultScope
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = SandboxBaseURL
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL:       baseURL,
		clientID:      cfg.ClientID,
		clientSecret:  cfg.ClientSecret,
		redirectURI:   cfg.RedirectURI,
		scope:         scope,
		rateLimiter:   rate.NewLimiter(rate.Limit(rps), burst),
		rateLimitWait: wait,
		maxRetries:    retries,
		tokenCache:    cfg.TokenCache,
		metrics:       cfg.Metrics,
		now:           time.Now,
	}
}

// SetDebug enables request level logging.
func (c *Client) SetDebug(debug bool) {
	c.debug = debug
}

func (c *Client) debugLog(format string, args ...interface{}) {
	if c.debug {
		log.WithField("component", "kroger").Debugf(format, args...)
	}
}

// NearestLocation finds the store closest to zipCode.
func (c *Client) NearestLocation(ctx context.Context, zipCode string) (*domain.Location, error) {
	params := url.Values{}
	params.Set("filter.zipCode.near", zipCode)
	params.Set("filter.limit", "1")

	body, err := c.get(ctx, "locations", "/locations", params)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Data []domain.Location `json:"data"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrLocationNotFound, zipCode)
	}

	store := resp.Data[0]
	log.WithFields(log.Fields{
		"location_id": store.LocationID,
		"name":        store.Name,
		"address":     fmt.Sprintf("%s, %s, %s", store.Address.AddressLine1, store.Address.City, store.Address.State),
	}).Info("nearest store found")

	return &store, nil
}

// SearchProducts fetches one page of products.
func (c *Client) SearchProducts(ctx context.Context, query domain.ProductQuery) (*domain.ProductsResponse, error) {
	if query.Limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive", domain.ErrInvalidRequest)
	}

	params := url.Values{}
	params.Set("filter.limit", strconv.Itoa(query.Limit))
	params.Set("filter.start", strconv.Itoa(query.Start))
	if query.LocationID != "" {
		params.Set("filter.locationId", query.LocationID)
	}
	if query.Term != "" {
		params.Set("filter.term", query.Term)
	}

	body, err := c.get(ctx, "products", "/products", params)
	if err != nil {
		return nil, err
	}

	var resp domain.ProductsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	c.debugLog("term=%q start=%d got %d products (total %d)",
		query.Term, query.Start, len(resp.Data), resp.Meta.Pagination.Total)
	return &resp, nil
}

// ProductDetails fetches a single product with its nutrition panel.
func (c *Client) ProductDetails(ctx context.Context, productID, locationID string) (*domain.Product, error) {
	if productID == "" {
		return nil, fmt.Errorf("%w: product id is required", domain.ErrInvalidRequest)
	}

	params := url.Values{}
	if locationID != "" {
		params.Set("filter.locationId", locationID)
	}

	body, err := c.get(ctx, "product", "/products/"+url.PathEscape(productID), params)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Data domain.Product `json:"data"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &resp.Data, nil
}

// get performs an authenticated GET with rate limiting and retries.
// 429 waits rateLimitWait, 5xx backs off exponentially, 401 refreshes the token once.
func (c *Client) get(ctx context.Context, endpoint, path string, params url.Values) ([]byte, error) {
	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	var lastErr error
	refreshed := false
	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter error: %w", err)
		}

		token, err := c.AccessToken(ctx)
		if err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("Authorization", "Bearer "+token.AccessToken)
		req.Header.Set("User-Agent", "CalorieCart/1.0")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			c.metrics.ObserveCatalogRequest(endpoint, "error")
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = fmt.Errorf("%w: %v", domain.ErrCatalogAPIFailure, err)
			if err := sleepWithContext(ctx, exponentialBackoff(attempt)); err != nil {
				return nil, err
			}
			continue
		}

		body, readErr := readLimitedBody(resp.Body, 32<<20)
		resp.Body.Close()
		c.metrics.ObserveCatalogRequest(endpoint, strconv.Itoa(resp.StatusCode))

		switch {
		case resp.StatusCode == http.StatusOK:
			if readErr != nil {
				return nil, fmt.Errorf("failed to read response: %w", readErr)
			}
			return body, nil

		case resp.StatusCode == http.StatusTooManyRequests:
			c.metrics.IncRateLimited()
			log.WithFields(log.Fields{
				"endpoint": endpoint,
				"attempt":  attempt,
				"wait":     c.rateLimitWait,
			}).Warn("rate limited by catalog, waiting")
			lastErr = fmt.Errorf("%w: %s", domain.ErrRateLimited, endpoint)
			if err := sleepWithContext(ctx, c.rateLimitWait); err != nil {
				return nil, err
			}

		case resp.StatusCode == http.StatusUnauthorized && !refreshed:
			refreshed = true
			c.clearToken(ctx)
			lastErr = fmt.Errorf("%w: status 401", domain.ErrAuthFailure)

		case resp.StatusCode == http.StatusNotFound:
			return nil, domain.ErrProductNotFound

		case resp.StatusCode >= 500:
			c.debugLog("%s attempt %d: status %d", endpoint, attempt, resp.StatusCode)
			lastErr = fmt.Errorf("%w: status %d", domain.ErrCatalogAPIFailure, resp.StatusCode)
			if err := sleepWithContext(ctx, exponentialBackoff(attempt)); err != nil {
				return nil, err
			}

		default:
			return nil, fmt.Errorf("%w: status %d, body: %s",
				domain.ErrCatalogAPIFailure, resp.StatusCode, truncate(body, maxErrorBodyBytes))
		}
	}

	log.WithField("endpoint", endpoint).WithError(lastErr).Error("all retries failed")
	return nil, lastErr
}

// exponentialBackoff returns 500ms, 1s, 2s, ... for attempts 1, 2, 3, ...
func exponentialBackoff(attempt int) time.Duration {
	if attempt < 1 {
		return 0
	}
	delay := 500 * time.Millisecond << (attempt - 1)
	if delay > 10*time.Second {
		delay = 10 * time.Second
	}
	return delay
}

func sleepWithContext(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
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

// readLimitedBody reads at most limit bytes.
func readLimitedBody(r io.Reader, limit int64) ([]byte, error) {
	return io.ReadAll(io.LimitReader(r, limit))
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		return string(b[:n])
	}
	return string(b)
}
