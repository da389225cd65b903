// Package bgg provides a BoardGameGeek XML API 2 client that returns
// normalized game records.
package bgg

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/sync/singleflight"

	"github.com/justestif/go-boardgame-playlists/internal/logging"
	"github.com/justestif/go-boardgame-playlists/internal/metrics"
)

const (
	// DefaultBaseURL is the public XML API 2 endpoint.
	DefaultBaseURL = "https://boardgamegeek.com/xmlapi2"

	defaultTimeout = 10 * time.Second
	userAgent      = "boardgame-playlists/1.0"
	breakerName    = "bgg-api"
	serviceName    = "bgg"
	maxBodyBytes   = 8 << 20
)

// Sentinel errors.
var (
	// ErrGameNotFound is returned by Details when the id matches no game.
	ErrGameNotFound = errors.New("game not found")

	// ErrUpstream is returned for non-200 responses.
	ErrUpstream = errors.New("catalog upstream error")

	// ErrCircuitOpen is returned while the breaker rejects requests.
	ErrCircuitOpen = errors.New("catalog circuit open")
)

// Cache stores raw upstream response bodies by key.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
}

// Client queries BoardGameGeek.
type Client struct {
	httpClient *http.Client
	baseURL    string
	cache      Cache
	group      singleflight.Group
	breaker    *gobreaker.CircuitBreaker[[]byte]
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API root (no trailing slash).
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithCache enables result caching.
func WithCache(cache Cache) Option {
	return func(c *Client) {
		c.cache = cache
	}
}

// New creates a Client.
func New(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
		baseURL:    DefaultBaseURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.breaker = newBreaker(breakerName)
	return c
}

// Search returns games matching query. No matches yield an empty slice.
func (c *Client) Search(ctx context.Context, query string) ([]SearchResult, error) {
	key := "bgg:search:" + strings.ToLower(strings.TrimSpace(query))
	params := url.Values{
		"query": {query},
		"type":  {"boardgame"},
	}
	items, err := c.items(ctx, "search", key, params)
	if err != nil {
		return nil, fmt.Errorf("searching games: %w", err)
	}

	results := make([]SearchResult, 0, len(items))
	for _, item := range items {
		results = append(results, toSearchResult(item))
	}
	return results, nil
}

// Details returns the attributes of one game. When the API returns several
// items only the first is used.
func (c *Client) Details(ctx context.Context, id string) (GameAttributes, error) {
	key := "bgg:thing:" + strings.TrimSpace(id)
	params := url.Values{
		"id":    {id},
		"stats": {"1"},
	}
	items, err := c.items(ctx, "thing", key, params)
	if err != nil {
		return GameAttributes{}, fmt.Errorf("fetching game %s: %w", id, err)
	}
	if len(items) == 0 {
		return GameAttributes{}, ErrGameNotFound
	}
	return toAttributes(items[0]), nil
}

// items returns the decoded items of endpoint. With a cache configured the
// raw XML body is stored under key, so normalization always runs on the
// upstream document. Concurrent misses for one key share a single request
// that outlives any one caller's cancellation. Empty thing responses are not
// cached.
func (c *Client) items(ctx context.Context, endpoint, key string, params url.Values) ([]itemXML, error) {
	if c.cache == nil {
		body, err := c.fetch(ctx, endpoint, params)
		if err != nil {
			return nil, err
		}
		return decodeItems(endpoint, body)
	}

	if items, ok := c.fromCache(ctx, endpoint, key); ok {
		return items, nil
	}

	ch := c.group.DoChan(key, func() (any, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.loadTimeout())
		defer cancel()

		body, err := c.fetch(loadCtx, endpoint, params)
		if err != nil {
			return nil, err
		}
		items, err := decodeItems(endpoint, body)
		if err != nil {
			return nil, err
		}
		if len(items) > 0 || endpoint == "search" {
			if err := c.cache.Set(loadCtx, key, body); err != nil {
				logging.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("catalog cache write failed")
			}
		}
		return items, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]itemXML), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// fromCache decodes a cached body. Read and decode failures count as misses.
func (c *Client) fromCache(ctx context.Context, endpoint, key string) ([]itemXML, bool) {
	body, ok, err := c.cache.Get(ctx, key)
	if err != nil {
		metrics.CatalogCacheLookups.WithLabelValues("error").Inc()
		logging.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("catalog cache read failed")
		return nil, false
	}
	if !ok {
		metrics.CatalogCacheLookups.WithLabelValues("miss").Inc()
		return nil, false
	}

	items, err := decodeItems(endpoint, body)
	if err != nil {
		metrics.CatalogCacheLookups.WithLabelValues("error").Inc()
		logging.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("discarding undecodable cache entry")
		return nil, false
	}
	metrics.CatalogCacheLookups.WithLabelValues("hit").Inc()
	return items, true
}

func (c *Client) loadTimeout() time.Duration {
	if c.httpClient.Timeout > 0 {
		return c.httpClient.Timeout
	}
	return defaultTimeout
}

// fetch calls endpoint through the breaker and returns the raw body.
func (c *Client) fetch(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	reqURL := c.baseURL + "/" + endpoint + "?" + params.Encode()

	start := time.Now()
	body, err := c.breaker.Execute(func() ([]byte, error) {
		return c.doRequest(ctx, reqURL)
	})
	metrics.ObserveUpstream(serviceName, endpoint, start, err)
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %v", ErrCircuitOpen, err)
		}
		return nil, err
	}
	return body, nil
}

func decodeItems(endpoint string, body []byte) ([]itemXML, error) {
	var envelope itemsXML
	if err := xml.NewDecoder(bytes.NewReader(body)).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("parsing %s response: %w", endpoint, err)
	}
	return envelope.Items, nil
}

// doRequest performs a single GET. There are no retries.
func (c *Client) doRequest(ctx context.Context, reqURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/xml")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	// 202 means BoardGameGeek queued the request; callers see it as a failure.
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
	}
	return body, nil
}
