package statutory

import (
	"github.com/arthapay/payroll-backend-go/internal/domain/statutory"
)

// PFCalculator computes Provident Fund contributions on the PF wage base
// (basic plus DA), capped at the statutory wage ceiling.
type PFCalculator struct {
	rates statutory.RateConfig
}

func NewPFCalculator(rates statutory.RateConfig) *PFCalculator {
	return &PFCalculator{rates: rates}
}

// Calculate returns the contribution split for one month. The employer
// share is remitted as EPS plus the difference to the full employer rate,
// which is how the ECR wants it reported.
func (c *PFCalculator) Calculate(wageBase int64) statutory.PFResult {
	wage := wageBase
	if wage > c.rates.PFWageCeiling {
		wage = c.rates.PFWageCeiling
	}

	employee := statutory.ApplyRate(wage, c.rates.PFEmployeeRateBP)
	eps := statutory.ApplyRate(wage, c.rates.EPSRateBP)

	return statutory.PFResult{
		Wage:       wage,
		Employee:   employee,
		EPS:        eps,
		EmployerPF: employee - eps,
	}
}
