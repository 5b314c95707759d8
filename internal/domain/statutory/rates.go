package statutory

// RateConfig carries every statutory rate and ceiling used by the
// calculators. Rates are basis points (75 = 0.75%), money is integer
// paise. The config is injected at construction so a rate revision is a
// config change, not a code change, and historical recalculation can run
// with the rates in force at the time.
type RateConfig struct {
	ESIEmployeeRateBP int64
	ESIEmployerRateBP int64
	ESIWageCeiling    int64

	PFEmployeeRateBP int64
	EPSRateBP        int64
	PFWageCeiling    int64

	TDSSlabs          []TDSSlab
	StandardDeduction int64
	RebateCeiling     int64 // section 87A: zero tax when taxable income is at or below this
	CessRateBP        int64
}

// TDSSlab - one marginal income-tax band. UpTo is annual taxable income in
// paise; zero means unbounded.
type TDSSlab struct {
	UpTo   int64
	RateBP int64
}

// DefaultRateConfig returns the rates in force for FY 2025-26
// (new regime).
func DefaultRateConfig() RateConfig {
	return RateConfig{
		ESIEmployeeRateBP: 75,
		ESIEmployerRateBP: 325,
		ESIWageCeiling:    21_000_00,

		PFEmployeeRateBP: 1200,
		EPSRateBP:        833,
		PFWageCeiling:    15_000_00,

		TDSSlabs: []TDSSlab{
			{UpTo: 3_00_000_00, RateBP: 0},
			{UpTo: 7_00_000_00, RateBP: 500},
			{UpTo: 10_00_000_00, RateBP: 1000},
			{UpTo: 12_00_000_00, RateBP: 1500},
			{UpTo: 15_00_000_00, RateBP: 2000},
			{UpTo: 0, RateBP: 3000},
		},
		StandardDeduction: 75_000_00,
		RebateCeiling:     7_00_000_00,
		CessRateBP:        400,
	}
}

// ApplyRate multiplies amount by a basis-point rate, rounding half-up to
// the nearest paisa.
func ApplyRate(amount, rateBP int64) int64 {
	return DivRoundHalfUp(amount*rateBP, 10_000)
}

// DivRoundHalfUp divides n by d rounding half-up. Both operands must be
// non-negative; payroll amounts never go negative before validation.
func DivRoundHalfUp(n, d int64) int64 {
	return (n + d/2) / d
}
