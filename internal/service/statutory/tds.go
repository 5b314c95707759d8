package statutory

import (
	"github.com/arthapay/payroll-backend-go/internal/domain/statutory"
)

// TDSCalculator projects annual income tax under the configured slab
// table and derives the monthly withholding.
type TDSCalculator struct {
	rates statutory.RateConfig
}

func NewTDSCalculator(rates statutory.RateConfig) *TDSCalculator {
	return &TDSCalculator{rates: rates}
}

// TaxableIncome applies the standard deduction and the annual
// professional tax to projected annual gross. Never negative.
func (c *TDSCalculator) TaxableIncome(annualGross, annualPT int64) int64 {
	taxable := annualGross - c.rates.StandardDeduction - annualPT
	if taxable < 0 {
		return 0
	}
	return taxable
}

// AnnualTax computes slab-wise marginal tax on taxable income, zeroes it
// under the section 87A rebate ceiling, and adds cess. Every rounding is
// half-up at the point it happens.
func (c *TDSCalculator) AnnualTax(taxable int64) int64 {
	if taxable <= c.rates.RebateCeiling {
		return 0
	}

	var tax int64
	var lower int64
	for _, slab := range c.rates.TDSSlabs {
		upper := slab.UpTo
		if upper == 0 || upper > taxable {
			upper = taxable
		}
		if upper > lower {
			tax += statutory.ApplyRate(upper-lower, slab.RateBP)
		}
		if slab.UpTo == 0 || slab.UpTo >= taxable {
			break
		}
		lower = slab.UpTo
	}

	tax += statutory.ApplyRate(tax, c.rates.CessRateBP)
	return tax
}

// Monthly returns one month's TDS from the annual projection.
func (c *TDSCalculator) Monthly(annualGross, annualPT int64) int64 {
	tax := c.AnnualTax(c.TaxableIncome(annualGross, annualPT))
	if tax == 0 {
		return 0
	}
	return statutory.DivRoundHalfUp(tax, 12)
}
