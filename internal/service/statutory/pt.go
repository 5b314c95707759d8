package statutory

import (
	"context"
	"fmt"
	"strings"

	"github.com/arthapay/payroll-backend-go/internal/domain/statutory"
)

// SlabSource is the capability the PT calculator needs from persistence:
// the active slabs of one state. Selection logic stays in the calculator
// so it can be tested with an in-memory fake.
type SlabSource interface {
	ActiveSlabsByState(ctx context.Context, stateCode string) ([]statutory.ProfessionalTaxSlab, error)
}

// States and union territories that do not levy Professional Tax. Policy
// list, not derived from the slab table.
var ptExemptStates = map[string]struct{}{
	"AN": {}, "AR": {}, "CH": {}, "DD": {}, "DL": {}, "DN": {}, "HP": {},
	"HR": {}, "JK": {}, "LA": {}, "LD": {}, "RJ": {}, "UK": {}, "UP": {},
}

// PTCalculator resolves the Professional Tax slab for a
// state/month/gender/salary combination.
type PTCalculator struct {
	slabs SlabSource
}

func NewPTCalculator(slabs SlabSource) *PTCalculator {
	return &PTCalculator{slabs: slabs}
}

// Calculate evaluates one month. A lookup miss is an exempt outcome, not
// an error. Month-specific slabs win over general slabs; among matches the
// highest salary_from wins.
func (c *PTCalculator) Calculate(ctx context.Context, in statutory.PTInput) (statutory.PTResult, error) {
	if err := in.Validate(); err != nil {
		return statutory.PTResult{}, err
	}

	state := strings.ToUpper(in.StateCode)
	if _, ok := ptExemptStates[state]; ok {
		return statutory.PTResult{
			IsExempt: true,
			Reason:   fmt.Sprintf("state %s does not levy professional tax", state),
		}, nil
	}

	slabs, err := c.slabs.ActiveSlabsByState(ctx, state)
	if err != nil {
		return statutory.PTResult{}, fmt.Errorf("failed to load PT slabs for %s: %w", state, err)
	}

	if slab, ok := bestMatch(slabs, in.GrossSalary, in.Month, in.Gender, true); ok {
		return slabResult(slab), nil
	}
	if slab, ok := bestMatch(slabs, in.GrossSalary, in.Month, in.Gender, false); ok {
		return slabResult(slab), nil
	}

	return statutory.PTResult{
		IsExempt: true,
		Reason:   fmt.Sprintf("gross salary below professional tax threshold for %s", state),
	}, nil
}

// AnnualLiability sums twelve independent monthly evaluations for a fixed
// salary. Month-specific slabs make individual months cost more or less.
func (c *PTCalculator) AnnualLiability(ctx context.Context, stateCode string, gross int64, gender string) (int64, error) {
	var total int64
	for month := 1; month <= 12; month++ {
		res, err := c.Calculate(ctx, statutory.PTInput{
			StateCode:   stateCode,
			GrossSalary: gross,
			Month:       month,
			Gender:      gender,
		})
		if err != nil {
			return 0, err
		}
		total += res.TaxAmount
	}
	return total, nil
}

func bestMatch(slabs []statutory.ProfessionalTaxSlab, gross int64, month int, gender string, monthSpecific bool) (statutory.ProfessionalTaxSlab, bool) {
	var best statutory.ProfessionalTaxSlab
	found := false
	for _, s := range slabs {
		if !s.Matches(gross, month, gender, monthSpecific) {
			continue
		}
		if !found || s.SalaryFrom > best.SalaryFrom {
			best = s
			found = true
		}
	}
	return best, found
}

func slabResult(slab statutory.ProfessionalTaxSlab) statutory.PTResult {
	id := slab.ID
	return statutory.PTResult{
		TaxAmount: slab.TaxAmount,
		SlabID:    &id,
	}
}
