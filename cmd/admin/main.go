// Package main provides the administrative CLI for the rewards ledger:
// pool initialization, vault and position management, claim settlement.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"vault-rewards/internal/domain"
	"vault-rewards/internal/idhash"
	"vault-rewards/internal/mining"
	"vault-rewards/internal/storage/migrations"
	pgstore "vault-rewards/internal/storage/postgres"
	"vault-rewards/internal/wallet"
)

func usage() string {
	return strings.TrimSpace(`
usage: admin [--postgres-dsn DSN] <command> [flags]

commands:
  init-pool      initialize or reset the mining pool singleton
  add-vault      register a vault product
  add-position   open a deposit position in a vault
  stats          print the mining pool snapshot
  confirm-claim  settle a pending claim
  history        print claim history for a claimant
`)
}

func main() {
	_ = godotenv.Load()

	root := flag.NewFlagSet("admin", flag.ExitOnError)
	postgresDSN := root.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	root.Parse(os.Args[1:])

	args := root.Args()
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, usage())
		os.Exit(1)
	}

	if *postgresDSN == "" {
		fmt.Fprintln(os.Stderr, "--postgres-dsn (or POSTGRES_DSN) is required")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pgstore.NewPool(ctx, *postgresDSN)
	if err != nil {
		fmt.Fprintf(os.Stderr, "connect to postgres: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		fmt.Fprintf(os.Stderr, "run migrations: %v\n", err)
		os.Exit(1)
	}

	app := &adminApp{
		configs:   pgstore.NewMiningConfigStore(pool),
		vaults:    pgstore.NewVaultStore(pool),
		positions: pgstore.NewPositionStore(pool),
		claims:    pgstore.NewClaimStore(pool),
	}
	app.ledger = mining.NewLedger(app.configs, app.positions, app.vaults, app.claims, nil, mining.LedgerOptions{
		Logger: log.New(os.Stderr, "[admin] ", log.LstdFlags),
	})

	code := 0
	switch args[0] {
	case "init-pool":
		code = app.runInitPool(ctx, args[1:])
	case "add-vault":
		code = app.runAddVault(ctx, args[1:])
	case "add-position":
		code = app.runAddPosition(ctx, args[1:])
	case "stats":
		code = app.runStats(ctx)
	case "confirm-claim":
		code = app.runConfirmClaim(ctx, args[1:])
	case "history":
		code = app.runHistory(ctx, args[1:])
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", args[0])
		fmt.Fprintln(os.Stderr, usage())
		code = 1
	}
	if code != 0 {
		os.Exit(code)
	}
}

type adminApp struct {
	configs   *pgstore.MiningConfigStore
	vaults    *pgstore.VaultStore
	positions *pgstore.PositionStore
	claims    *pgstore.ClaimStore
	ledger    *mining.Ledger
}

func (a *adminApp) runInitPool(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("init-pool", flag.ExitOnError)
	price := fs.Float64("price", 0, "internal token price")
	supply := fs.Float64("supply", 0, "total token supply")
	mint := fs.String("mint", "", "token mint address (optional)")
	fs.Parse(args)

	if *price <= 0 || *supply <= 0 {
		fmt.Fprintln(os.Stderr, "--price and --supply must be positive")
		return 1
	}

	var mintPtr *string
	if *mint != "" {
		if err := wallet.ValidateAddress(*mint); err != nil {
			fmt.Fprintf(os.Stderr, "invalid mint address: %v\n", err)
			return 1
		}
		mintPtr = mint
	}

	cfg, err := a.ledger.Initialize(ctx, *price, *supply, mintPtr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "initialize pool: %v\n", err)
		return 1
	}

	fmt.Printf("Pool initialized: total=%.2f remaining=%.2f (%.0f%% of supply)\n",
		cfg.PoolTotal, cfg.PoolRemaining, domain.PoolShareOfSupply*100)
	return 0
}

func (a *adminApp) runAddVault(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("add-vault", flag.ExitOnError)
	id := fs.String("id", "", "vault identifier")
	name := fs.String("name", "", "display name")
	baseBP := fs.Int64("base-bp", 0, "primary base rate, basis points")
	boostBP := fs.Int64("boost-bp", 0, "boost rate, basis points")
	secondaryBP := fs.Int64("secondary-bp", 0, "secondary rate, basis points")
	minEntry := fs.Float64("min-entry", 0, "minimum deposit value")
	duration := fs.Int("duration-months", 12, "lock duration in months")
	fs.Parse(args)

	if *id == "" || *name == "" {
		fmt.Fprintln(os.Stderr, "--id and --name are required")
		return 1
	}
	if *baseBP <= 0 {
		fmt.Fprintln(os.Stderr, "--base-bp must be positive")
		return 1
	}

	v := &domain.Vault{
		VaultID:         *id,
		Name:            *name,
		BaseRateBP:      *baseBP,
		BoostMaxBP:      *boostBP,
		SecondaryRateBP: *secondaryBP,
		MinEntryValue:   *minEntry,
		DurationMonths:  *duration,
		IsActive:        true,
		CreatedAt:       time.Now().UnixMilli(),
	}
	if err := a.vaults.Insert(ctx, v); err != nil {
		fmt.Fprintf(os.Stderr, "insert vault: %v\n", err)
		return 1
	}

	fmt.Printf("Vault %s created (base %d bp, boost %d bp, secondary %d bp)\n",
		v.VaultID, v.BaseRateBP, v.BoostMaxBP, v.SecondaryRateBP)
	return 0
}

func (a *adminApp) runAddPosition(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("add-position", flag.ExitOnError)
	vaultID := fs.String("vault", "", "vault identifier")
	owner := fs.String("owner", "", "depositor wallet address")
	principal := fs.Float64("principal", 0, "deposit value")
	frequency := fs.String("frequency", "monthly", "payout frequency (monthly, quarterly, yearly)")
	fs.Parse(args)

	if *vaultID == "" || *owner == "" {
		fmt.Fprintln(os.Stderr, "--vault and --owner are required")
		return 1
	}
	if err := wallet.ValidateAddress(*owner); err != nil {
		fmt.Fprintf(os.Stderr, "invalid owner address: %v\n", err)
		return 1
	}

	freq := domain.PayoutFrequency(strings.ToLower(*frequency))
	if !freq.Valid() {
		fmt.Fprintln(os.Stderr, "--frequency must be monthly, quarterly or yearly")
		return 1
	}

	v, err := a.vaults.GetByID(ctx, *vaultID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "get vault: %v\n", err)
		return 1
	}
	if !v.IsActive {
		fmt.Fprintf(os.Stderr, "vault %s is not accepting positions\n", v.VaultID)
		return 1
	}
	if *principal < v.MinEntryValue {
		fmt.Fprintf(os.Stderr, "deposit %.2f below vault minimum %.2f\n", *principal, v.MinEntryValue)
		return 1
	}

	now := time.Now().UnixMilli()
	p := &domain.Position{
		PositionID:     idhash.ComputePositionID(v.VaultID, *owner, *principal, now),
		VaultID:        v.VaultID,
		OwnerAddress:   *owner,
		PrincipalValue: *principal,
		Frequency:      freq,
		CreatedAt:      now,
	}
	if err := a.positions.Insert(ctx, p); err != nil {
		fmt.Fprintf(os.Stderr, "insert position: %v\n", err)
		return 1
	}

	fmt.Printf("Position %s opened in vault %s (%.2f, %s)\n", p.PositionID, p.VaultID, p.PrincipalValue, p.Frequency)
	return 0
}

func (a *adminApp) runStats(ctx context.Context) int {
	stats, err := a.ledger.Stats(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "pool stats: %v\n", err)
		return 1
	}
	return printJSON(stats)
}

func (a *adminApp) runConfirmClaim(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("confirm-claim", flag.ExitOnError)
	claimID := fs.String("id", "", "claim identifier")
	ref := fs.String("ref", "", "external settlement reference")
	fs.Parse(args)

	if *claimID == "" || *ref == "" {
		fmt.Fprintln(os.Stderr, "--id and --ref are required")
		return 1
	}

	claim, err := a.ledger.ConfirmClaim(ctx, *claimID, *ref)
	if err != nil {
		fmt.Fprintf(os.Stderr, "confirm claim: %v\n", err)
		return 1
	}

	fmt.Printf("Claim %s confirmed (%.6f tokens, ref %s)\n", claim.ClaimID, claim.Amount, *ref)
	return 0
}

func (a *adminApp) runHistory(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	claimant := fs.String("claimant", "", "claimant wallet address")
	fs.Parse(args)

	if *claimant == "" {
		fmt.Fprintln(os.Stderr, "--claimant is required")
		return 1
	}

	claims, err := a.ledger.History(ctx, *claimant)
	if err != nil {
		fmt.Fprintf(os.Stderr, "claim history: %v\n", err)
		return 1
	}
	return printJSON(claims)
}

func printJSON(v interface{}) int {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "encode output: %v\n", err)
		return 1
	}
	return 0
}
