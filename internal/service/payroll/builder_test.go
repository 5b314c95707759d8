package payroll

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthapay/payroll-backend-go/internal/domain/employee"
	domainpayroll "github.com/arthapay/payroll-backend-go/internal/domain/payroll"
	"github.com/arthapay/payroll-backend-go/internal/domain/statutory"
	"github.com/arthapay/payroll-backend-go/internal/pkg/validator"
	statutorySvc "github.com/arthapay/payroll-backend-go/internal/service/statutory"
)

type staticSlabSource struct {
	slabs map[string][]statutory.ProfessionalTaxSlab
}

func (s *staticSlabSource) ActiveSlabsByState(ctx context.Context, stateCode string) ([]statutory.ProfessionalTaxSlab, error) {
	return s.slabs[stateCode], nil
}

func testBuilder() *Builder {
	rates := statutory.DefaultRateConfig()
	slabs := &staticSlabSource{slabs: map[string][]statutory.ProfessionalTaxSlab{
		"KA": {
			{ID: "ka-general", StateCode: "KA", SalaryFrom: 25_000_00, TaxAmount: 200_00, IsActive: true},
		},
	}}
	return NewBuilder(
		statutorySvc.NewESICalculator(rates),
		statutorySvc.NewPTCalculator(slabs),
		statutorySvc.NewPFCalculator(rates),
		statutorySvc.NewTDSCalculator(rates),
	)
}

func strRef(s string) *string { return &s }

func testEmployee() employee.Employee {
	return employee.Employee{
		ID:            "emp-1",
		CompanyID:     "co-1",
		EmployeeCode:  "E001",
		FullName:      "Asha Rao",
		Gender:        employee.GenderFemale,
		WorkStateCode: "KA",
		PAN:           strRef("ABCDE1234F"),
		UAN:           strRef("100123456789"),
		PFEnrolled:    true,
		IsActive:      true,
	}
}

func fullStructure() []employee.SalaryComponent {
	return []employee.SalaryComponent{
		{Code: "BASIC", Name: "Basic", Kind: employee.ComponentKindEarning, MonthlyAmount: 26_000_00, InPFWage: true, IsActive: true},
		{Code: "HRA", Name: "House Rent Allowance", Kind: employee.ComponentKindEarning, MonthlyAmount: 13_000_00, IsActive: true},
		{Code: "SPEC", Name: "Special Allowance", Kind: employee.ComponentKindEarning, MonthlyAmount: 16_000_00, IsActive: true},
		{Code: "MEALS", Name: "Meal Card Recovery", Kind: employee.ComponentKindDeduction, MonthlyAmount: 500_00, IsActive: true},
	}
}

func TestBuilderFullAttendance(t *testing.T) {
	b := testBuilder()

	record, err := b.Build(context.Background(), BuildInput{
		Employee:   testEmployee(),
		Components: fullStructure(),
		Attendance: domainpayroll.AttendanceSummary{EmployeeID: "emp-1", WorkingDays: 26, PaidDays: 26},
		Month:      6,
		Year:       2025,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(55_000_00), record.GrossBeforeLOP)
	assert.Equal(t, int64(55_000_00), record.Gross)
	assert.Equal(t, int64(0), record.LOPDeduction)
	assert.Equal(t, 0, record.LOPDays)

	// PF wage capped at the ceiling even though basic is above it.
	assert.Equal(t, int64(15_000_00), record.PFWage)
	assert.Equal(t, int64(1_800_00), record.PFEmployee)
	assert.Equal(t, int64(1_249_50), record.PFEmployerEPS)
	assert.Equal(t, int64(550_50), record.PFEmployerDiff)

	// Gross above the ESI ceiling and no prior coverage.
	assert.False(t, record.ESIApplicable)
	assert.Equal(t, int64(0), record.ESIEmployee)

	assert.Equal(t, int64(200_00), record.PTAmount)
	assert.False(t, record.PTExempt)

	// Annual projection lands inside the rebate ceiling.
	assert.Equal(t, int64(0), record.TDSAmount)

	assert.Equal(t, int64(500_00), record.OtherDeductions)
	assert.Equal(t, int64(2_500_00), record.TotalDeductions)
	assert.Equal(t, int64(52_500_00), record.Net)
}

func TestBuilderProRation(t *testing.T) {
	b := testBuilder()

	record, err := b.Build(context.Background(), BuildInput{
		Employee: testEmployee(),
		Components: []employee.SalaryComponent{
			{Code: "BASIC", Name: "Basic", Kind: employee.ComponentKindEarning, MonthlyAmount: 26_000_00, InPFWage: true, IsActive: true},
			{Code: "HRA", Name: "House Rent Allowance", Kind: employee.ComponentKindEarning, MonthlyAmount: 13_000_00, IsActive: true},
		},
		Attendance: domainpayroll.AttendanceSummary{EmployeeID: "emp-1", WorkingDays: 26, PaidDays: 24},
		Month:      6,
		Year:       2025,
	})
	require.NoError(t, err)

	assert.Equal(t, 2, record.LOPDays)
	assert.Equal(t, int64(39_000_00), record.GrossBeforeLOP)
	assert.Equal(t, int64(36_000_00), record.Gross)
	assert.Equal(t, record.GrossBeforeLOP-record.Gross, record.LOPDeduction)

	require.Len(t, record.Earnings, 2)
	assert.Equal(t, int64(24_000_00), record.Earnings[0].Earned)
	assert.Equal(t, int64(26_000_00), record.Earnings[0].Full)
	assert.Equal(t, int64(12_000_00), record.Earnings[1].Earned)

	// Pro-rated basic still above the PF ceiling.
	assert.Equal(t, int64(15_000_00), record.PFWage)
	assert.Equal(t, int64(1_800_00), record.PFEmployee)

	var sum int64
	for _, e := range record.Earnings {
		sum += e.Earned
	}
	assert.Equal(t, record.Gross, sum)
}

func TestBuilderUnevenProRationSumsToGross(t *testing.T) {
	b := testBuilder()

	// 30_000_00 * 24 / 26 does not divide evenly; each component rounds
	// half-up on its own and the gross is the sum of the rounded figures.
	record, err := b.Build(context.Background(), BuildInput{
		Employee: testEmployee(),
		Components: []employee.SalaryComponent{
			{Code: "BASIC", Name: "Basic", Kind: employee.ComponentKindEarning, MonthlyAmount: 30_000_00, InPFWage: true, IsActive: true},
			{Code: "SPEC", Name: "Special Allowance", Kind: employee.ComponentKindEarning, MonthlyAmount: 10_000_00, IsActive: true},
		},
		Attendance: domainpayroll.AttendanceSummary{EmployeeID: "emp-1", WorkingDays: 26, PaidDays: 24},
		Month:      6,
		Year:       2025,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(27_692_31), record.Earnings[0].Earned)
	assert.Equal(t, int64(9_230_77), record.Earnings[1].Earned)

	var sum int64
	for _, e := range record.Earnings {
		sum += e.Earned
	}
	assert.Equal(t, record.Gross, sum)
	assert.Equal(t, record.GrossBeforeLOP-record.Gross, record.LOPDeduction)
}

func TestBuilderESIBelowCeiling(t *testing.T) {
	b := testBuilder()

	record, err := b.Build(context.Background(), BuildInput{
		Employee: testEmployee(),
		Components: []employee.SalaryComponent{
			{Code: "BASIC", Name: "Basic", Kind: employee.ComponentKindEarning, MonthlyAmount: 18_000_00, InPFWage: true, IsActive: true},
		},
		Attendance: domainpayroll.AttendanceSummary{EmployeeID: "emp-1", WorkingDays: 26, PaidDays: 26},
		Month:      6,
		Year:       2025,
	})
	require.NoError(t, err)

	assert.True(t, record.ESIApplicable)
	assert.Equal(t, int64(135_00), record.ESIEmployee)
	assert.Equal(t, int64(585_00), record.ESIEmployer)

	// Below the KA slab threshold.
	assert.True(t, record.PTExempt)
	assert.Equal(t, int64(0), record.PTAmount)

	assert.Equal(t, int64(1_800_00+135_00), record.TotalDeductions)
	assert.Equal(t, int64(16_065_00), record.Net)
}

func TestBuilderESICoveredAboveCeiling(t *testing.T) {
	b := testBuilder()

	in := BuildInput{
		Employee: testEmployee(),
		Components: []employee.SalaryComponent{
			{Code: "BASIC", Name: "Basic", Kind: employee.ComponentKindEarning, MonthlyAmount: 25_000_00, InPFWage: true, IsActive: true},
		},
		Attendance: domainpayroll.AttendanceSummary{EmployeeID: "emp-1", WorkingDays: 26, PaidDays: 26},
		Month:      8,
		Year:       2025,
	}

	record, err := b.Build(context.Background(), in)
	require.NoError(t, err)
	assert.False(t, record.ESIApplicable)

	in.ESICovered = true
	record, err = b.Build(context.Background(), in)
	require.NoError(t, err)

	// Contributions continue on the full gross for the rest of the
	// contribution period.
	assert.True(t, record.ESIApplicable)
	assert.Equal(t, int64(187_50), record.ESIEmployee)
	assert.Equal(t, int64(812_50), record.ESIEmployer)
	require.NotNil(t, record.ESIReason)
	assert.Contains(t, *record.ESIReason, "contribution period")
}

func TestBuilderPFNotEnrolled(t *testing.T) {
	b := testBuilder()

	emp := testEmployee()
	emp.PFEnrolled = false

	record, err := b.Build(context.Background(), BuildInput{
		Employee:   emp,
		Components: fullStructure(),
		Attendance: domainpayroll.AttendanceSummary{EmployeeID: "emp-1", WorkingDays: 26, PaidDays: 26},
		Month:      6,
		Year:       2025,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(0), record.PFWage)
	assert.Equal(t, int64(0), record.PFEmployee)
	assert.Equal(t, int64(0), record.PFEmployerEPS)
	assert.Equal(t, int64(0), record.PFEmployerDiff)
}

func TestBuilderInactiveComponentIgnored(t *testing.T) {
	b := testBuilder()

	components := fullStructure()
	components = append(components, employee.SalaryComponent{
		Code: "OLD", Name: "Discontinued Allowance", Kind: employee.ComponentKindEarning, MonthlyAmount: 5_000_00, IsActive: false,
	})

	record, err := b.Build(context.Background(), BuildInput{
		Employee:   testEmployee(),
		Components: components,
		Attendance: domainpayroll.AttendanceSummary{EmployeeID: "emp-1", WorkingDays: 26, PaidDays: 26},
		Month:      6,
		Year:       2025,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(55_000_00), record.Gross)
	assert.Len(t, record.Earnings, 3)
}

func TestBuilderNoEarnings(t *testing.T) {
	b := testBuilder()

	_, err := b.Build(context.Background(), BuildInput{
		Employee: testEmployee(),
		Components: []employee.SalaryComponent{
			{Code: "MEALS", Name: "Meal Card Recovery", Kind: employee.ComponentKindDeduction, MonthlyAmount: 500_00, IsActive: true},
		},
		Attendance: domainpayroll.AttendanceSummary{EmployeeID: "emp-1", WorkingDays: 26, PaidDays: 26},
		Month:      6,
		Year:       2025,
	})
	assert.ErrorIs(t, err, employee.ErrSalaryStructureNotFound)
}

func TestBuilderInputValidation(t *testing.T) {
	b := testBuilder()

	cases := []struct {
		name       string
		attendance domainpayroll.AttendanceSummary
		month      int
	}{
		{"zero working days", domainpayroll.AttendanceSummary{WorkingDays: 0, PaidDays: 0}, 6},
		{"paid exceeds working", domainpayroll.AttendanceSummary{WorkingDays: 26, PaidDays: 27}, 6},
		{"invalid month", domainpayroll.AttendanceSummary{WorkingDays: 26, PaidDays: 26}, 13},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := b.Build(context.Background(), BuildInput{
				Employee:   testEmployee(),
				Components: fullStructure(),
				Attendance: tc.attendance,
				Month:      tc.month,
				Year:       2025,
			})
			var verrs validator.ValidationErrors
			assert.ErrorAs(t, err, &verrs)
		})
	}
}
