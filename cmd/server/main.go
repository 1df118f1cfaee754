// Package main provides the unified rewards server:
// - Accrual (scheduled): daily secondary-token accrual over active positions
// - Pricing (scheduled): collateral quote refresh + durable price history
// - API: pool stats, vault rate cards, claims, yield simulation
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"vault-rewards/internal/domain"
	"vault-rewards/internal/mining"
	"vault-rewards/internal/observability"
	"vault-rewards/internal/pricing"
	"vault-rewards/internal/storage"
	chstore "vault-rewards/internal/storage/clickhouse"
	"vault-rewards/internal/storage/memory"
	"vault-rewards/internal/storage/migrations"
	pgstore "vault-rewards/internal/storage/postgres"
	"vault-rewards/internal/wallet"
	"vault-rewards/internal/yield"
)

const dayMs = 24 * 60 * 60 * 1000

// Server holds all components of the rewards service.
type Server struct {
	// Configuration
	collateralToken string
	accrualInterval time.Duration
	refreshInterval time.Duration

	// Stores
	stores *allStores

	// Components
	ledger *mining.Ledger
	engine *yield.Engine
	cache  *pricing.QuoteCache
	boost  *pricing.Evaluator
	logger *log.Logger

	// State
	mu             sync.Mutex
	started        time.Time
	lastAccrualRun time.Time
	accrualRunning bool

	// Stats
	accrualRuns int
}

// allStores holds all storage implementations.
type allStores struct {
	configStore    storage.MiningConfigStore
	vaultStore     storage.VaultStore
	positionStore  storage.PositionStore
	claimStore     storage.ClaimStore
	snapshotStore  storage.BoostSnapshotStore
	quoteStore     storage.PriceQuoteStore
	eventStore     storage.RewardEventStore
	priceHistStore storage.PriceHistoryStore
}

func main() {
	// Load .env file if exists
	_ = godotenv.Load()

	// Parse flags (env vars as defaults)
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of PostgreSQL/ClickHouse")
	priceAPIURL := flag.String("price-api-url", envOr("PRICE_API_URL", "https://api.coingecko.com/api/v3"), "Market price API base URL")
	priceAPIKey := flag.String("price-api-key", os.Getenv("PRICE_API_KEY"), "Market price API key")
	priceWSURL := flag.String("price-ws-url", os.Getenv("PRICE_WS_URL"), "Optional price stream WebSocket endpoint")
	collateralToken := flag.String("collateral-token", os.Getenv("COLLATERAL_TOKEN"), "Collateral token identifier for boost pricing")
	collateralContract := flag.String("collateral-contract", os.Getenv("COLLATERAL_CONTRACT"), "Collateral token contract address (fallback lookup)")
	httpAddr := flag.String("http-addr", ":8080", "HTTP listen address")
	accrualInterval := flag.Duration("accrual-interval", 24*time.Hour, "Accrual sweep interval")
	refreshInterval := flag.Duration("price-refresh-interval", 5*time.Minute, "Collateral price refresh interval")
	quoteTTL := flag.Duration("quote-ttl", pricing.DefaultQuoteTTL, "Price quote freshness window")

	flag.Parse()

	// Setup logger
	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lshortfile)

	// Validate required flags
	if *collateralToken == "" {
		logger.Fatal("--collateral-token is required")
	}
	if !*useMemory && (*postgresDSN == "" || *clickhouseDSN == "") {
		logger.Fatal("--postgres-dsn and --clickhouse-dsn are required (use --use-memory for in-memory storage)")
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())

	// Create stores
	stores, cleanup, err := createStores(ctx, *postgresDSN, *clickhouseDSN, *useMemory)
	if err != nil {
		logger.Fatalf("Failed to create stores: %v", err)
	}
	defer cleanup()

	// Create pricing components
	var marketOpts []pricing.MarketOption
	if *priceAPIKey != "" {
		marketOpts = append(marketOpts, pricing.WithAPIKey(*priceAPIKey))
	}
	market := pricing.NewMarketClient(*priceAPIURL, marketOpts...)

	contracts := map[string]string{}
	if *collateralContract != "" {
		contracts[*collateralToken] = *collateralContract
	}
	cache := pricing.NewQuoteCache(market, stores.quoteStore, pricing.QuoteCacheOptions{
		TTL:       *quoteTTL,
		Contracts: contracts,
		Logger:    log.New(os.Stdout, "[pricing] ", log.LstdFlags),
	})
	boost := pricing.NewEvaluator(cache, stores.snapshotStore, *collateralToken, nil)

	// Create ledger and yield engine
	ledger := mining.NewLedger(
		stores.configStore,
		stores.positionStore,
		stores.vaultStore,
		stores.claimStore,
		stores.eventStore,
		mining.LedgerOptions{Logger: log.New(os.Stdout, "[mining] ", log.LstdFlags)},
	)
	engine := yield.NewEngine(ledger, boost, stores.vaultStore, stores.eventStore, yield.EngineOptions{
		Logger: log.New(os.Stdout, "[yield] ", log.LstdFlags),
	})

	server := &Server{
		collateralToken: *collateralToken,
		accrualInterval: *accrualInterval,
		refreshInterval: *refreshInterval,
		stores:          stores,
		ledger:          ledger,
		engine:          engine,
		cache:           cache,
		boost:           boost,
		logger:          logger,
		started:         time.Now(),
	}

	// Optional price stream
	var stream *pricing.PriceStream
	if *priceWSURL != "" {
		stream = pricing.NewPriceStream(*priceWSURL, cache, nil)
		if err := stream.Start(ctx); err != nil {
			logger.Printf("Price stream unavailable, continuing with polled quotes: %v", err)
			stream = nil
		} else {
			defer stream.Close()
			logger.Printf("Price stream connected: %s", *priceWSURL)
		}
	}

	// Channel to signal completion
	done := make(chan error, 1)

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, initiating graceful shutdown...", sig)
		cancel()

		select {
		case sig := <-sigCh:
			logger.Printf("Received second signal %v, forcing immediate shutdown", sig)
			os.Exit(1)
		case <-time.After(30 * time.Second):
			logger.Println("Graceful shutdown timed out after 30s, forcing exit")
			os.Exit(1)
		case <-done:
			// Normal shutdown completed
		}
	}()

	// Start HTTP server
	go server.startHTTPServer(*httpAddr)

	// Run schedulers
	err = server.Run(ctx)
	done <- err
	cancel()

	if err != nil && err != context.Canceled {
		logger.Fatalf("Server error: %v", err)
	}

	logger.Println("Shutdown complete")
}

// envOr returns the environment variable value or a default.
func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// createStores creates all required stores.
func createStores(ctx context.Context, postgresDSN, clickhouseDSN string, useMemory bool) (*allStores, func(), error) {
	if useMemory {
		vaults := memory.NewVaultStore()
		stores := &allStores{
			configStore:    memory.NewMiningConfigStore(),
			vaultStore:     vaults,
			positionStore:  memory.NewPositionStore(vaults),
			claimStore:     memory.NewClaimStore(),
			snapshotStore:  memory.NewBoostSnapshotStore(),
			quoteStore:     memory.NewPriceQuoteStore(),
			eventStore:     memory.NewRewardEventStore(),
			priceHistStore: memory.NewPriceHistoryStore(),
		}
		return stores, func() {}, nil
	}

	// PostgreSQL
	pool, err := pgstore.NewPool(ctx, postgresDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("run postgres migrations: %w", err)
	}

	// ClickHouse
	chConn, err := migrations.RunClickhouseMigrations(ctx, clickhouseDSN)
	if err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("connect to clickhouse: %w", err)
	}

	stores := &allStores{
		// PostgreSQL stores (ledger state)
		configStore:   pgstore.NewMiningConfigStore(pool),
		vaultStore:    pgstore.NewVaultStore(pool),
		positionStore: pgstore.NewPositionStore(pool),
		claimStore:    pgstore.NewClaimStore(pool),
		snapshotStore: pgstore.NewBoostSnapshotStore(pool),
		quoteStore:    pgstore.NewPriceQuoteStore(pool),

		// ClickHouse stores (audit trail + analytics)
		eventStore:     chstore.NewRewardEventStore(chConn),
		priceHistStore: chstore.NewPriceHistoryStore(chConn),
	}

	cleanup := func() {
		chConn.Close()
		pool.Close()
	}

	return stores, cleanup, nil
}

// Run starts the schedulers and blocks until the context is canceled.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Println("Starting rewards server...")

	errCh := make(chan error, 2)

	go func() {
		err := s.runAccrualScheduler(ctx)
		if err != nil && err != context.Canceled {
			errCh <- fmt.Errorf("accrual scheduler: %w", err)
		}
	}()

	go func() {
		err := s.runPriceRefresher(ctx)
		if err != nil && err != context.Canceled {
			errCh <- fmt.Errorf("price refresher: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

// runAccrualScheduler runs the accrual sweep on schedule.
func (s *Server) runAccrualScheduler(ctx context.Context) error {
	s.logger.Printf("Starting accrual scheduler (interval: %v)...", s.accrualInterval)

	// Run immediately on start to catch up positions that are overdue
	s.runAccrualSweep(ctx)

	ticker := time.NewTicker(s.accrualInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.runAccrualSweep(ctx)
		}
	}
}

// runAccrualSweep accrues secondary rewards for every active position with
// at least one full elapsed day since its last accrual.
func (s *Server) runAccrualSweep(ctx context.Context) {
	s.mu.Lock()
	if s.accrualRunning {
		s.mu.Unlock()
		s.logger.Println("Accrual sweep already running, skipping...")
		return
	}
	s.accrualRunning = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.accrualRunning = false
		s.lastAccrualRun = time.Now()
		s.accrualRuns++
		s.mu.Unlock()
	}()

	start := time.Now()
	positions, err := s.stores.positionStore.ListActive(ctx)
	if err != nil {
		s.logger.Printf("Accrual sweep: list positions: %v", err)
		observability.RecordAccrualError("list_positions")
		return
	}

	vaultRates := map[string]int64{}
	accrued, skipped, failed := 0, 0, 0
	now := time.Now().UnixMilli()

	for _, p := range positions {
		since := p.LastAccruedAt
		if since == 0 {
			since = p.CreatedAt
		}
		days := (now - since) / dayMs
		if days < 1 {
			skipped++
			continue
		}

		rateBP, ok := vaultRates[p.VaultID]
		if !ok {
			v, err := s.stores.vaultStore.GetByID(ctx, p.VaultID)
			if err != nil {
				s.logger.Printf("Accrual sweep: vault %s: %v", p.VaultID, err)
				observability.RecordAccrualError("vault_lookup")
				failed++
				continue
			}
			rateBP = v.SecondaryRateBP
			vaultRates[p.VaultID] = rateBP
		}

		res, err := s.ledger.Accrue(ctx, p.PositionID, p.PrincipalValue, rateBP, days)
		if err != nil {
			if errors.Is(err, mining.ErrNotInitialized) {
				s.logger.Println("Accrual sweep: mining pool not initialized, skipping sweep")
				return
			}
			s.logger.Printf("Accrual sweep: position %s: %v", p.PositionID, err)
			observability.RecordAccrualError("accrue")
			failed++
			continue
		}

		observability.RecordAccrual(res.Accrued)
		accrued++
	}

	if stats, err := s.ledger.Stats(ctx); err == nil {
		observability.UpdatePoolGauges(stats.PoolRemaining, stats.PoolDistributed)
	}
	observability.DefaultMetrics.LastSuccessfulAccrual.Set(float64(time.Now().Unix()))

	s.logger.Printf("Accrual sweep completed in %v: %d accrued, %d up to date, %d failed",
		time.Since(start), accrued, skipped, failed)
}

// runPriceRefresher keeps the collateral quote warm and appends each
// observation to the durable price history.
func (s *Server) runPriceRefresher(ctx context.Context) error {
	s.logger.Printf("Starting price refresher (interval: %v)...", s.refreshInterval)

	s.refreshPrice(ctx)

	ticker := time.NewTicker(s.refreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.refreshPrice(ctx)
		}
	}
}

// refreshPrice fetches the current collateral quote.
func (s *Server) refreshPrice(ctx context.Context) {
	q := s.cache.GetQuote(ctx, s.collateralToken)
	observability.RecordQuoteServed(q.Source)

	if q.MarketPrice <= 0 {
		s.logger.Printf("Price refresh: no quote available for %s", s.collateralToken)
		return
	}

	if err := s.stores.priceHistStore.Append(ctx, &q); err != nil {
		s.logger.Printf("Price refresh: append history: %v", err)
		return
	}
	observability.DefaultMetrics.LastPriceRefresh.Set(float64(time.Now().Unix()))
}

// startHTTPServer starts the HTTP server for the API, health and metrics.
func (s *Server) startHTTPServer(addr string) {
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	// Prometheus metrics
	mux.Handle("/metrics", observability.Handler())

	// API endpoints
	mux.HandleFunc("/status", s.instrument("/status", s.handleStatus))
	mux.HandleFunc("/pool/stats", s.instrument("/pool/stats", s.handlePoolStats))
	mux.HandleFunc("/vaults", s.instrument("/vaults", s.handleVaults))
	mux.HandleFunc("/positions", s.instrument("/positions", s.handlePositions))
	mux.HandleFunc("/claims", s.instrument("/claims", s.handleClaims))
	mux.HandleFunc("/claims/confirm", s.instrument("/claims/confirm", s.handleConfirmClaim))
	mux.HandleFunc("/yield/simulate", s.instrument("/yield/simulate", s.handleSimulate))
	mux.HandleFunc("/boost/evaluate", s.instrument("/boost/evaluate", s.handleBoostEvaluate))

	s.logger.Printf("Starting HTTP server on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil && err != http.ErrServerClosed {
		s.logger.Printf("HTTP server error: %v", err)
	}
}

// statusRecorder captures the response status for request metrics.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// instrument wraps a handler with request metrics.
func (s *Server) instrument(path string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		h(rec, r)
		observability.RecordHTTPRequest(path, strconv.Itoa(rec.status), time.Since(start).Seconds())
	}
}

// StatusResponse is the JSON response for the /status endpoint.
type StatusResponse struct {
	Status         string    `json:"status"`
	Uptime         string    `json:"uptime"`
	LastAccrualRun time.Time `json:"last_accrual_run,omitempty"`
	AccrualRuns    int       `json:"accrual_runs"`
	AccrualRunning bool      `json:"accrual_running"`
}

// handleStatus returns server status as JSON.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	resp := StatusResponse{
		Status:         "running",
		Uptime:         time.Since(s.started).String(),
		LastAccrualRun: s.lastAccrualRun,
		AccrualRuns:    s.accrualRuns,
		AccrualRunning: s.accrualRunning,
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, resp)
}

// handlePoolStats returns the mining pool snapshot.
func (s *Server) handlePoolStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	stats, err := s.ledger.Stats(r.Context())
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// handleVaults returns the per-vault rate card.
func (s *Server) handleVaults(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	summaries, err := s.engine.VaultSummaries(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, summaries)
}

// handlePositions lists positions for an owner.
func (s *Server) handlePositions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	owner := r.URL.Query().Get("owner")
	if owner == "" {
		writeError(w, http.StatusBadRequest, "owner query parameter is required")
		return
	}

	positions, err := s.stores.positionStore.ListByOwner(r.Context(), owner)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, positions)
}

// claimRequest is the JSON body for POST /claims.
type claimRequest struct {
	PositionID string  `json:"position_id"`
	Claimant   string  `json:"claimant"`
	Amount     float64 `json:"amount"` // 0 claims the full pending balance
}

// handleClaims creates a claim (POST) or lists claim history (GET).
func (s *Server) handleClaims(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		claimant := r.URL.Query().Get("claimant")
		if claimant == "" {
			writeError(w, http.StatusBadRequest, "claimant query parameter is required")
			return
		}
		claims, err := s.ledger.History(r.Context(), claimant)
		if err != nil {
			writeLedgerError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, claims)

	case http.MethodPost:
		var req claimRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		claim, err := s.ledger.Claim(r.Context(), req.PositionID, req.Claimant, req.Amount)
		if err != nil {
			observability.RecordClaimError(claimErrorType(err))
			writeLedgerError(w, err)
			return
		}
		observability.RecordClaimCreated(claim.Amount)
		writeJSON(w, http.StatusCreated, claim)

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// confirmRequest is the JSON body for POST /claims/confirm.
type confirmRequest struct {
	ClaimID     string `json:"claim_id"`
	ExternalRef string `json:"external_ref"`
}

// handleConfirmClaim settles a pending claim.
func (s *Server) handleConfirmClaim(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req confirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.ClaimID == "" || req.ExternalRef == "" {
		writeError(w, http.StatusBadRequest, "claim_id and external_ref are required")
		return
	}

	claim, err := s.ledger.ConfirmClaim(r.Context(), req.ClaimID, req.ExternalRef)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	observability.RecordClaimConfirmed()
	writeJSON(w, http.StatusOK, claim)
}

// simulateRequest is the JSON body for POST /yield/simulate.
type simulateRequest struct {
	VaultID           string  `json:"vault_id"`
	DepositValue      float64 `json:"deposit_value"`
	Frequency         string  `json:"frequency"`
	CollateralBalance float64 `json:"collateral_balance"`
}

// handleSimulate computes the yield a deposit would earn.
func (s *Server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req simulateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	freq := domain.PayoutFrequency(strings.ToLower(req.Frequency))
	if !freq.Valid() {
		writeError(w, http.StatusBadRequest, "frequency must be monthly, quarterly or yearly")
		return
	}

	vault, err := s.stores.vaultStore.GetByID(r.Context(), req.VaultID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "vault not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	sim, err := s.engine.Simulate(r.Context(), req.DepositValue, vault, freq, req.CollateralBalance)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	observability.DefaultMetrics.SimulationsRun.Inc()
	writeJSON(w, http.StatusOK, sim)
}

// boostRequest is the JSON body for POST /boost/evaluate.
type boostRequest struct {
	PositionID        string  `json:"position_id"`
	CollateralBalance float64 `json:"collateral_balance"`
}

// handleBoostEvaluate re-evaluates boost eligibility for a position and
// persists the snapshot.
func (s *Server) handleBoostEvaluate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req boostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	pos, err := s.stores.positionStore.GetByID(r.Context(), req.PositionID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "position not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	result, err := s.boost.Snapshot(r.Context(), pos.PositionID, req.CollateralBalance, pos.PrincipalValue)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if err := s.stores.positionStore.SetBoostActive(r.Context(), pos.PositionID, result.IsEligible); err != nil {
		s.logger.Printf("Boost evaluate: persist flag for %s: %v", pos.PositionID, err)
	}
	writeJSON(w, http.StatusOK, result)
}

// claimErrorType maps a claim error to a metrics label.
func claimErrorType(err error) string {
	switch {
	case errors.Is(err, mining.ErrNotInitialized):
		return "not_initialized"
	case errors.Is(err, mining.ErrInvalidAmount):
		return "invalid_amount"
	case errors.Is(err, wallet.ErrInvalidAddress):
		return "invalid_address"
	case errors.Is(err, storage.ErrNotFound):
		return "not_found"
	default:
		return "internal"
	}
}

// writeLedgerError maps ledger errors to HTTP status codes.
func writeLedgerError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, mining.ErrNotInitialized):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, mining.ErrInvalidAmount), errors.Is(err, wallet.ErrInvalidAddress):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, storage.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// errorResponse is the JSON error body.
type errorResponse struct {
	Error string `json:"error"`
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
