package statutory

import (
	"fmt"

	"github.com/arthapay/payroll-backend-go/internal/domain/statutory"
)

// ESICalculator decides ESI eligibility and computes both contributions.
// Rates come from the injected config, never from package state.
type ESICalculator struct {
	rates statutory.RateConfig
}

func NewESICalculator(rates statutory.RateConfig) *ESICalculator {
	return &ESICalculator{rates: rates}
}

// IsApplicable reports whether gross monthly salary falls at or under the
// ESI wage ceiling.
func (c *ESICalculator) IsApplicable(gross int64) bool {
	return gross <= c.rates.ESIWageCeiling
}

// Calculate returns the ESI outcome for one month's gross. Each
// contribution is rounded half-up independently, not derived from the
// other.
func (c *ESICalculator) Calculate(gross int64) statutory.ESIResult {
	if !c.IsApplicable(gross) {
		return statutory.ESIResult{
			Applicable: false,
			GrossUsed:  gross,
			Reason:     fmt.Sprintf("gross salary %d exceeds ESI wage ceiling %d", gross, c.rates.ESIWageCeiling),
		}
	}

	employee, employer := c.Contributions(gross)
	return statutory.ESIResult{
		Applicable:           true,
		EmployeeContribution: employee,
		EmployerContribution: employer,
		GrossUsed:            gross,
	}
}

// Contributions computes both shares without the eligibility gate. The
// record builder uses it directly for an employee already covered in the
// running contribution period, where contributions continue even after
// gross crosses the ceiling.
func (c *ESICalculator) Contributions(gross int64) (employee, employer int64) {
	employee = statutory.ApplyRate(gross, c.rates.ESIEmployeeRateBP)
	employer = statutory.ApplyRate(gross, c.rates.ESIEmployerRateBP)
	return employee, employer
}

// ContributionPeriodFor returns the ESI half-year window enclosing
// (month, year): April-September, or October-March which ends in the
// following calendar year.
func ContributionPeriodFor(month, year int) statutory.ContributionPeriod {
	switch {
	case month >= 4 && month <= 9:
		return statutory.ContributionPeriod{StartMonth: 4, StartYear: year, EndMonth: 9, EndYear: year}
	case month >= 10:
		return statutory.ContributionPeriod{StartMonth: 10, StartYear: year, EndMonth: 3, EndYear: year + 1}
	default:
		// January-March belongs to the window that started the previous
		// October.
		return statutory.ContributionPeriod{StartMonth: 10, StartYear: year - 1, EndMonth: 3, EndYear: year}
	}
}
