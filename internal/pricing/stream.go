package pricing

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"vault-rewards/internal/domain"
	"vault-rewards/internal/observability"
)

// StreamConfig configures PriceStream behavior.
type StreamConfig struct {
	// ReconnectDelay is initial delay before a reconnect attempt.
	ReconnectDelay time.Duration
	// MaxReconnectDelay is maximum delay between reconnect attempts.
	MaxReconnectDelay time.Duration
	// ReadTimeout is timeout for reading messages.
	ReadTimeout time.Duration
	// Logger for connection lifecycle messages.
	Logger *log.Logger
}

// DefaultStreamConfig returns default stream configuration.
func DefaultStreamConfig() StreamConfig {
	return StreamConfig{
		ReconnectDelay:    1 * time.Second,
		MaxReconnectDelay: 30 * time.Second,
		ReadTimeout:       60 * time.Second,
	}
}

// priceMessage is the wire format pushed by the price feed.
type priceMessage struct {
	Token string  `json:"token"`
	Price float64 `json:"price"`
	TsMs  int64   `json:"ts_ms"`
}

// PriceStream consumes a websocket price feed and pushes fresh quotes into
// the cache. The cache's TTL fallback covers any gap while the stream is
// down, so reconnects are retried forever with backoff.
type PriceStream struct {
	endpoint string
	config   StreamConfig
	cache    *QuoteCache
	logger   *log.Logger

	conn   *websocket.Conn
	connMu sync.Mutex
	closed atomic.Bool
	done   chan struct{}
	wg     sync.WaitGroup
}

// NewPriceStream creates a price stream feeding the given cache.
func NewPriceStream(endpoint string, cache *QuoteCache, config *StreamConfig) *PriceStream {
	cfg := DefaultStreamConfig()
	if config != nil {
		cfg = *config
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(log.Writer(), "[price-stream] ", log.LstdFlags)
	}

	return &PriceStream{
		endpoint: endpoint,
		config:   cfg,
		cache:    cache,
		logger:   logger,
		done:     make(chan struct{}),
	}
}

// Start connects and launches the read loop. It returns after the first
// successful connection; later disconnects reconnect in the background.
func (s *PriceStream) Start(ctx context.Context) error {
	if err := s.connect(ctx); err != nil {
		return err
	}

	s.wg.Add(1)
	go s.readLoop(ctx)

	return nil
}

// Close shuts down the stream and waits for the read loop to exit.
func (s *PriceStream) Close() {
	if !s.closed.CompareAndSwap(false, true) {
		return
	}
	close(s.done)

	s.connMu.Lock()
	if s.conn != nil {
		s.conn.Close()
	}
	s.connMu.Unlock()

	s.wg.Wait()
}

func (s *PriceStream) connect(ctx context.Context) error {
	s.connMu.Lock()
	defer s.connMu.Unlock()

	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}

	conn, _, err := dialer.DialContext(ctx, s.endpoint, nil)
	if err != nil {
		return fmt.Errorf("websocket dial: %w", err)
	}

	s.conn = conn
	return nil
}

func (s *PriceStream) readLoop(ctx context.Context) {
	defer s.wg.Done()

	delay := s.config.ReconnectDelay

	for {
		select {
		case <-s.done:
			return
		case <-ctx.Done():
			return
		default:
		}

		s.connMu.Lock()
		conn := s.conn
		s.connMu.Unlock()

		if s.config.ReadTimeout > 0 {
			_ = conn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout))
		}

		_, data, err := conn.ReadMessage()
		if err != nil {
			if s.closed.Load() {
				return
			}
			s.logger.Printf("read failed, reconnecting in %s: %v", delay, err)
			select {
			case <-s.done:
				return
			case <-ctx.Done():
				return
			case <-time.After(delay):
			}
			delay = time.Duration(float64(delay) * 2)
			if delay > s.config.MaxReconnectDelay {
				delay = s.config.MaxReconnectDelay
			}
			observability.RecordStreamReconnect()
			if err := s.connect(ctx); err != nil {
				s.logger.Printf("reconnect failed: %v", err)
			}
			continue
		}
		delay = s.config.ReconnectDelay

		var msg priceMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			s.logger.Printf("malformed price message: %v", err)
			continue
		}
		if msg.Token == "" || msg.Price <= 0 {
			continue
		}

		ts := msg.TsMs
		if ts == 0 {
			ts = time.Now().UnixMilli()
		}
		s.cache.Put(domain.PriceQuote{
			Token:           msg.Token,
			MarketPrice:     msg.Price,
			DiscountedPrice: domain.Discounted(msg.Price),
			Source:          domain.QuoteSourceStream,
			FetchedAt:       ts,
		})
		observability.RecordStreamMessage()
	}
}
