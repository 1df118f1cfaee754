package domain

// PayoutFrequency determines how often primary rewards are paid out
// and which rate multiplier applies.
type PayoutFrequency string

// Payout frequency constants
const (
	FrequencyMonthly   PayoutFrequency = "monthly"
	FrequencyQuarterly PayoutFrequency = "quarterly"
	FrequencyYearly    PayoutFrequency = "yearly"
)

// Frequency multipliers applied to the primary APY.
const (
	MultiplierMonthly   = 1.0
	MultiplierQuarterly = 1.15
	MultiplierYearly    = 1.30
)

// Multiplier returns the rate multiplier for the frequency.
// Unknown frequencies fall back to the monthly multiplier.
func (f PayoutFrequency) Multiplier() float64 {
	switch f {
	case FrequencyQuarterly:
		return MultiplierQuarterly
	case FrequencyYearly:
		return MultiplierYearly
	default:
		return MultiplierMonthly
	}
}

// Valid reports whether the frequency is one of the supported values.
func (f PayoutFrequency) Valid() bool {
	switch f {
	case FrequencyMonthly, FrequencyQuarterly, FrequencyYearly:
		return true
	}
	return false
}
