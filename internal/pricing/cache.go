package pricing

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"vault-rewards/internal/domain"
	"vault-rewards/internal/storage"
)

// DefaultQuoteTTL is how long a cached quote is considered fresh.
const DefaultQuoteTTL = 5 * time.Minute

// QuoteCacheOptions configures QuoteCache.
type QuoteCacheOptions struct {
	// TTL overrides DefaultQuoteTTL.
	TTL time.Duration
	// Clock is the time source; defaults to the real clock.
	Clock clockwork.Clock
	// Contracts maps token symbols to contract addresses for the fallback
	// lookup when the spot endpoint has no quote.
	Contracts map[string]string
	// Logger for fallback-path warnings.
	Logger *log.Logger
}

// QuoteCache serves collateral price quotes with a TTL and layered fallback:
// fresh memory, live fetch (spot then contract), stale memory, durable
// snapshot, and finally a zero-price quote meaning "unknown". Lookups never
// fail; a zero price tells callers the boost is unavailable.
type QuoteCache struct {
	source    PriceSource
	snapshots storage.PriceQuoteStore
	clock     clockwork.Clock
	ttl       time.Duration
	contracts map[string]string
	logger    *log.Logger

	mu      sync.Mutex
	entries map[string]domain.PriceQuote
}

// NewQuoteCache creates a quote cache. The snapshot store may be nil, in
// which case the durable fallback tier is skipped.
func NewQuoteCache(source PriceSource, snapshots storage.PriceQuoteStore, opts QuoteCacheOptions) *QuoteCache {
	if opts.TTL <= 0 {
		opts.TTL = DefaultQuoteTTL
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.Logger == nil {
		opts.Logger = log.New(log.Writer(), "[pricing] ", log.LstdFlags)
	}

	return &QuoteCache{
		source:    source,
		snapshots: snapshots,
		clock:     opts.Clock,
		ttl:       opts.TTL,
		contracts: opts.Contracts,
		logger:    opts.Logger,
		entries:   make(map[string]domain.PriceQuote),
	}
}

// GetQuote returns the best available quote for the token. It never returns
// an error; when every tier fails the quote carries a zero price.
func (c *QuoteCache) GetQuote(ctx context.Context, token string) domain.PriceQuote {
	now := c.clock.Now().UnixMilli()

	c.mu.Lock()
	cached, hasCached := c.entries[token]
	c.mu.Unlock()

	if hasCached && now-cached.FetchedAt < c.ttl.Milliseconds() {
		return cached
	}

	if quote, ok := c.fetch(ctx, token, now); ok {
		c.Put(quote)
		if c.snapshots != nil {
			// Write-through is best effort; a failed snapshot must not
			// block the quote.
			if err := c.snapshots.Upsert(ctx, &quote); err != nil {
				c.logger.Printf("snapshot upsert failed for %s: %v", token, err)
			}
		}
		return quote
	}

	// Stale memory beats the durable snapshot: it is at least as recent.
	if hasCached {
		c.logger.Printf("serving stale quote for %s (age %dms)", token, now-cached.FetchedAt)
		return cached
	}

	if c.snapshots != nil {
		if snap, err := c.snapshots.GetByToken(ctx, token); err == nil {
			c.logger.Printf("serving snapshot quote for %s", token)
			quote := *snap
			quote.Source = domain.QuoteSourceSnapshot
			return quote
		}
	}

	return domain.PriceQuote{
		Token:     token,
		Source:    domain.QuoteSourceNone,
		FetchedAt: now,
	}
}

// Put inserts a quote into the memory cache. Stream pushes and refreshers
// use it; last writer wins.
func (c *QuoteCache) Put(quote domain.PriceQuote) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[quote.Token] = quote
}

// fetch tries the live source: spot by symbol, then contract address.
func (c *QuoteCache) fetch(ctx context.Context, token string, now int64) (domain.PriceQuote, bool) {
	price, err := c.source.SpotPrice(ctx, token)
	source := domain.QuoteSourceSpot
	if err != nil {
		contract, hasContract := c.contracts[token]
		if !hasContract {
			c.logger.Printf("spot fetch failed for %s: %v", token, err)
			return domain.PriceQuote{}, false
		}
		price, err = c.source.ContractPrice(ctx, contract)
		if err != nil {
			c.logger.Printf("spot and contract fetch failed for %s: %v", token, err)
			return domain.PriceQuote{}, false
		}
		source = domain.QuoteSourceContract
	}

	return domain.PriceQuote{
		Token:           token,
		MarketPrice:     price,
		DiscountedPrice: domain.Discounted(price),
		Source:          source,
		FetchedAt:       now,
	}, true
}
