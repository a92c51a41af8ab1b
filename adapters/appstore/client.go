package appstore

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/tidwall/gjson"

	"marketintel/domain/core"
	"marketintel/internal"
	"marketintel/internal/errors"
	"marketintel/ports"
)

const serviceName = "appstore"

// Client queries the RapidAPI App Store search endpoint. Successful
// responses are cached by query parameters.
type Client struct {
	config     Config
	httpClient *http.Client
	cache      *lru.Cache[string, []byte]
	logger     *internal.Logger
}

var _ ports.AppSearcher = (*Client)(nil)

// NewClient creates a search client. A CacheSize of 0 disables caching.
func NewClient(cfg Config, logger *internal.Logger) *Client {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultConfig().Timeout
	}
	c := &Client{
		config:     cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}
	if cfg.CacheSize > 0 {
		cache, err := lru.New[string, []byte](cfg.CacheSize)
		if err == nil {
			c.cache = cache
		}
	}
	return c
}

// Search performs one search request and returns the raw JSON array.
// The body is validated to be a list before it is returned or cached.
func (c *Client) Search(ctx context.Context, req ports.SearchRequest) ([]byte, error) {
	if strings.TrimSpace(c.config.APIKey) == "" {
		return nil, errors.ConfigInvalid("RAPIDAPI_KEY is not set; live iOS data is unavailable").
			WithCause(core.ErrMissingCredential)
	}
	req, clamped := req.Normalized()
	if clamped {
		c.logger.Warn("[AppStoreClient] result count clamped to %d", req.Num)
	}

	endpoint := c.buildURL(req)
	if body, ok := c.cached(endpoint); ok {
		c.logger.Debug("[AppStoreClient] cache hit for %q", req.Query)
		return body, nil
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build App Store request")
	}
	httpReq.Header.Set("x-rapidapi-key", c.config.APIKey)
	httpReq.Header.Set("x-rapidapi-host", c.config.Host)
	httpReq.Header.Set("Accept", "application/json")

	start := time.Now()
	c.logger.Info("[AppStoreClient] fetching iOS data for query %q (num=%d, country=%s)", req.Query, req.Num, req.Country)
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, errors.ExternalServiceError(serviceName, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.ExternalServiceError(serviceName, fmt.Errorf("failed to read response: %w", err))
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errors.ExternalServiceError(serviceName,
			fmt.Errorf("API returned status %d: %s", resp.StatusCode, truncate(string(body), 200)))
	}
	if !gjson.ValidBytes(body) || !gjson.ParseBytes(body).IsArray() {
		return nil, errors.ExternalServiceError(serviceName,
			fmt.Errorf("%w: API response was not a list of apps", core.ErrMalformedResponse))
	}

	c.logger.Info("[AppStoreClient] fetched %d iOS apps in %v",
		len(gjson.ParseBytes(body).Array()), time.Since(start).Round(time.Millisecond))
	if c.cache != nil {
		c.cache.Add(endpoint, body)
	}
	return body, nil
}

func (c *Client) cached(key string) ([]byte, bool) {
	if c.cache == nil {
		return nil, false
	}
	return c.cache.Get(key)
}

func (c *Client) buildURL(req ports.SearchRequest) string {
	params := url.Values{}
	params.Set("query", req.Query)
	params.Set("num", strconv.Itoa(req.Num))
	params.Set("country", req.Country)
	params.Set("lang", req.Lang)
	return strings.TrimRight(c.config.BaseURL, "/") + SearchPath + "?" + params.Encode()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
