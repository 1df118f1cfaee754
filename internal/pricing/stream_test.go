package pricing

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"vault-rewards/internal/domain"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// waitForStreamQuote polls the cache until a stream-sourced quote for token
// carries the wanted price.
func waitForStreamQuote(t *testing.T, cache *QuoteCache, token string, price float64) domain.PriceQuote {
	t.Helper()
	ctx := context.Background()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		q := cache.GetQuote(ctx, token)
		if q.Source == domain.QuoteSourceStream && q.MarketPrice == price {
			return q
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("no stream quote for %s at %f within deadline", token, price)
	return domain.PriceQuote{}
}

func TestPriceStream_PushesQuotesIntoCache(t *testing.T) {
	now := time.Now().UnixMilli()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()

		messages := []string{
			`{"token":"LAIKA","price":0.02,"ts_ms":` + formatMs(now) + `}`,
			`not json`,
			`{"token":"LAIKA","price":0}`,
			`{"token":"LAIKA","price":0.03,"ts_ms":` + formatMs(now+1) + `}`,
		}
		for _, m := range messages {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(m)); err != nil {
				return
			}
		}

		// Keep connection open
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")

	src := &fakeSource{spotErr: errors.New("down"), contractErr: errors.New("down")}
	cache := NewQuoteCache(src, nil, QuoteCacheOptions{})

	stream := NewPriceStream(wsURL, cache, nil)
	if err := stream.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer stream.Close()

	// The malformed and zero-price messages are skipped; the loop survives
	// them and the last good message wins.
	q := waitForStreamQuote(t, cache, "LAIKA", 0.03)
	if q.DiscountedPrice != domain.Discounted(0.03) {
		t.Errorf("DiscountedPrice = %f, want %f", q.DiscountedPrice, domain.Discounted(0.03))
	}
	if q.FetchedAt != now+1 {
		t.Errorf("FetchedAt = %d, want %d", q.FetchedAt, now+1)
	}
}

func TestPriceStream_CloseIsIdempotent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	cache := NewQuoteCache(&fakeSource{}, nil, QuoteCacheOptions{})

	stream := NewPriceStream(wsURL, cache, nil)
	if err := stream.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	// Close waits for the read loop and a second call is a no-op.
	stream.Close()
	stream.Close()
}

func TestPriceStream_StartFailsOnDeadEndpoint(t *testing.T) {
	cache := NewQuoteCache(&fakeSource{}, nil, QuoteCacheOptions{})
	stream := NewPriceStream("ws://127.0.0.1:1/feed", cache, nil)

	if err := stream.Start(context.Background()); err == nil {
		stream.Close()
		t.Fatal("Start succeeded against a dead endpoint")
	}
}

func formatMs(ms int64) string {
	return strconv.FormatInt(ms, 10)
}
