package domain

// CollateralDiscountPct is the haircut applied to the market price when
// valuing collateral.
const CollateralDiscountPct = 15.0

// Quote source constants
const (
	QuoteSourceSpot     = "spot"
	QuoteSourceContract = "contract"
	QuoteSourceStream   = "stream"
	QuoteSourceSnapshot = "snapshot"
	QuoteSourceNone     = "none"
)

// PriceQuote is a priced collateral token observation.
// A MarketPrice of 0 means the price is unknown; callers treat it as
// "boost unavailable", never as an error.
// Corresponds to price_quotes table in PostgreSQL (durable fallback snapshot).
type PriceQuote struct {
	Token           string  // token symbol or identifier
	MarketPrice     float64 // observed market price, 0 when unknown
	DiscountedPrice float64 // MarketPrice * (1 - discount/100)
	Source          string  // where the quote came from
	FetchedAt       int64   // observation timestamp (ms)
}

// Discounted applies the collateral haircut to a market price.
func Discounted(marketPrice float64) float64 {
	return marketPrice * (1 - CollateralDiscountPct/100)
}
