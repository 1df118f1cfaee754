// Package pricing provides collateral price discovery: an HTTP market data
// client, a TTL quote cache with durable fallback, a websocket price stream
// and the boost eligibility evaluator built on top of them.
package pricing

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"vault-rewards/internal/observability"
)

// Default configuration values.
const (
	DefaultTimeout     = 10 * time.Second
	DefaultMaxRetries  = 3
	DefaultRetryDelay  = 500 * time.Millisecond
	DefaultMaxDelay    = 5 * time.Second
	DefaultBackoffMult = 2.0
)

// PriceSource fetches collateral market prices.
type PriceSource interface {
	// SpotPrice retrieves the USD price for a token symbol.
	SpotPrice(ctx context.Context, symbol string) (float64, error)

	// ContractPrice retrieves the USD price by token contract address.
	ContractPrice(ctx context.Context, contract string) (float64, error)
}

// MarketClient implements PriceSource against a CoinGecko-compatible API.
type MarketClient struct {
	baseURL     string
	platform    string
	apiKey      string
	client      *http.Client
	maxRetries  int
	retryDelay  time.Duration
	maxDelay    time.Duration
	backoffMult float64
}

// MarketOption configures MarketClient.
type MarketOption func(*MarketClient)

// WithTimeout sets HTTP client timeout.
func WithTimeout(d time.Duration) MarketOption {
	return func(c *MarketClient) {
		c.client.Timeout = d
	}
}

// WithMaxRetries sets maximum retry attempts.
func WithMaxRetries(n int) MarketOption {
	return func(c *MarketClient) {
		c.maxRetries = n
	}
}

// WithRetryDelay sets initial retry delay.
func WithRetryDelay(d time.Duration) MarketOption {
	return func(c *MarketClient) {
		c.retryDelay = d
	}
}

// WithAPIKey sets the API key header.
func WithAPIKey(key string) MarketOption {
	return func(c *MarketClient) {
		c.apiKey = key
	}
}

// WithPlatform sets the chain platform used for contract lookups.
func WithPlatform(platform string) MarketOption {
	return func(c *MarketClient) {
		c.platform = platform
	}
}

// WithHTTPClient sets a custom http.Client.
func WithHTTPClient(client *http.Client) MarketOption {
	return func(c *MarketClient) {
		c.client = client
	}
}

// NewMarketClient creates a new market data client.
func NewMarketClient(baseURL string, opts ...MarketOption) *MarketClient {
	c := &MarketClient{
		baseURL:     strings.TrimSuffix(baseURL, "/"),
		platform:    "solana",
		client:      &http.Client{Timeout: DefaultTimeout},
		maxRetries:  DefaultMaxRetries,
		retryDelay:  DefaultRetryDelay,
		maxDelay:    DefaultMaxDelay,
		backoffMult: DefaultBackoffMult,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Compile-time interface check.
var _ PriceSource = (*MarketClient)(nil)

// SpotPrice retrieves the USD price for a token symbol.
// Endpoint: /simple/price?ids=<symbol>&vs_currencies=usd
func (c *MarketClient) SpotPrice(ctx context.Context, symbol string) (float64, error) {
	endpoint := fmt.Sprintf("%s/simple/price?ids=%s&vs_currencies=usd",
		c.baseURL, url.QueryEscape(symbol))

	var result map[string]map[string]float64
	if err := c.get(ctx, endpoint, &result); err != nil {
		return 0, fmt.Errorf("spot price %s: %w", symbol, err)
	}

	price, ok := result[symbol]["usd"]
	if !ok || price <= 0 {
		return 0, fmt.Errorf("spot price %s: no usd quote in response", symbol)
	}
	return price, nil
}

// ContractPrice retrieves the USD price by token contract address.
// Endpoint: /simple/token_price/<platform>?contract_addresses=<addr>&vs_currencies=usd
func (c *MarketClient) ContractPrice(ctx context.Context, contract string) (float64, error) {
	endpoint := fmt.Sprintf("%s/simple/token_price/%s?contract_addresses=%s&vs_currencies=usd",
		c.baseURL, url.PathEscape(c.platform), url.QueryEscape(contract))

	var result map[string]map[string]float64
	if err := c.get(ctx, endpoint, &result); err != nil {
		return 0, fmt.Errorf("contract price %s: %w", contract, err)
	}

	// The API keys the response by contract address, sometimes lowercased.
	for _, quotes := range result {
		if price, ok := quotes["usd"]; ok && price > 0 {
			return price, nil
		}
	}
	return 0, fmt.Errorf("contract price %s: no usd quote in response", contract)
}

// get performs a GET request with retries and exponential backoff.
func (c *MarketClient) get(ctx context.Context, endpoint string, result interface{}) (err error) {
	start := time.Now()
	defer func() {
		observability.RecordPriceFetch(time.Since(start).Seconds(), err)
	}()

	delay := c.retryDelay
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			// Exponential backoff
			delay = time.Duration(float64(delay) * c.backoffMult)
			if delay > c.maxDelay {
				delay = c.maxDelay
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		if c.apiKey != "" {
			req.Header.Set("x-cg-api-key", c.apiKey)
		}

		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("http request: %w", err)
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("read response: %w", err)
			continue
		}

		// Handle rate limiting
		if resp.StatusCode == http.StatusTooManyRequests {
			lastErr = fmt.Errorf("rate limited (429)")
			continue
		}

		if resp.StatusCode != http.StatusOK {
			lastErr = fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
			continue
		}

		if err := json.Unmarshal(body, result); err != nil {
			lastErr = fmt.Errorf("unmarshal response: %w", err)
			continue
		}

		return nil
	}

	return fmt.Errorf("max retries exceeded: %w", lastErr)
}
