// Package fx converts USD cost figures into a user's display currency.
// Rates come from the Frankfurter public API and are held in an explicit
// per-currency cache with a fixed TTL; a stale entry is refetched, and a
// fetch failure falls back to the stale value when one exists.
package fx

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// DefaultBaseURL is the public Frankfurter endpoint
const DefaultBaseURL = "https://api.frankfurter.app"

// DefaultTTL is how long a fetched rate stays fresh
const DefaultTTL = time.Hour

type entry struct {
	rate      float64
	fetchedAt time.Time
}

// Cache fetches and caches USD conversion rates
type Cache struct {
	baseURL string
	ttl     time.Duration
	client  *http.Client
	now     func() time.Time

	mu      sync.Mutex
	entries map[string]entry
}

// Option configures a Cache
type Option func(*Cache)

// WithBaseURL overrides the rate endpoint
func WithBaseURL(u string) Option {
	return func(c *Cache) { c.baseURL = u }
}

// WithTTL overrides the cache freshness window
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) { c.ttl = ttl }
}

// WithClock overrides the freshness time source
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// NewCache creates a rate cache
func NewCache(opts ...Option) *Cache {
	c := &Cache{
		baseURL: DefaultBaseURL,
		ttl:     DefaultTTL,
		client:  &http.Client{Timeout: 10 * time.Second},
		now:     time.Now,
		entries: make(map[string]entry),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Rate returns the USD to currency conversion rate
func (c *Cache) Rate(ctx context.Context, currency string) (float64, error) {
	currency = strings.ToUpper(currency)
	if currency == "" || currency == "USD" {
		return 1, nil
	}

	c.mu.Lock()
	cached, ok := c.entries[currency]
	c.mu.Unlock()

	if ok && c.now().Sub(cached.fetchedAt) < c.ttl {
		return cached.rate, nil
	}

	rate, err := c.fetch(ctx, currency)
	if err != nil {
		// Serve the stale rate over failing the caller
		if ok {
			return cached.rate, nil
		}
		return 0, err
	}

	c.mu.Lock()
	c.entries[currency] = entry{rate: rate, fetchedAt: c.now()}
	c.mu.Unlock()

	return rate, nil
}

// Convert converts a USD amount into the given currency
func (c *Cache) Convert(ctx context.Context, usd float64, currency string) (float64, error) {
	rate, err := c.Rate(ctx, currency)
	if err != nil {
		return 0, err
	}
	return usd * rate, nil
}

func (c *Cache) fetch(ctx context.Context, currency string) (float64, error) {
	u := fmt.Sprintf("%s/latest?from=USD&to=%s", c.baseURL, url.QueryEscape(currency))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return 0, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("fetch rate: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("rate endpoint returned status %d", resp.StatusCode)
	}

	var parsed struct {
		Rates map[string]float64 `json:"rates"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return 0, fmt.Errorf("decode rate response: %w", err)
	}

	rate, ok := parsed.Rates[currency]
	if !ok {
		return 0, fmt.Errorf("no rate for currency %s", currency)
	}
	return rate, nil
}
