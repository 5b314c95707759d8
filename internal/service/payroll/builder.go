package payroll

import (
	"context"

	"github.com/arthapay/payroll-backend-go/internal/domain/employee"
	"github.com/arthapay/payroll-backend-go/internal/domain/payroll"
	"github.com/arthapay/payroll-backend-go/internal/domain/statutory"
	"github.com/arthapay/payroll-backend-go/internal/pkg/validator"
)

// Calculator capabilities the builder needs. Concrete implementations
// live in the statutory service package.
type ESICalculator interface {
	Calculate(gross int64) statutory.ESIResult
	Contributions(gross int64) (employee, employer int64)
}

type PTCalculator interface {
	Calculate(ctx context.Context, in statutory.PTInput) (statutory.PTResult, error)
}

type PFCalculator interface {
	Calculate(wageBase int64) statutory.PFResult
}

type TDSCalculator interface {
	Monthly(annualGross, annualPT int64) int64
}

// Builder combines attendance, the salary structure and the statutory
// calculators into one payroll record. It is pure: all inputs arrive in
// BuildInput, nothing is persisted.
type Builder struct {
	esi ESICalculator
	pt  PTCalculator
	pf  PFCalculator
	tds TDSCalculator
}

func NewBuilder(esi ESICalculator, pt PTCalculator, pf PFCalculator, tds TDSCalculator) *Builder {
	return &Builder{esi: esi, pt: pt, pf: pf, tds: tds}
}

type BuildInput struct {
	Employee   employee.Employee
	Components []employee.SalaryComponent
	Attendance payroll.AttendanceSummary
	Month      int
	Year       int

	// ESICovered is set when the employee already contributed earlier in
	// the running contribution period; coverage then continues even if
	// gross has crossed the ceiling.
	ESICovered bool
}

func (in BuildInput) validate() error {
	var errs validator.ValidationErrors

	if in.Month < 1 || in.Month > 12 {
		errs = append(errs, validator.ValidationError{Field: "month", Message: "must be between 1 and 12"})
	}
	if in.Attendance.WorkingDays <= 0 {
		errs = append(errs, validator.ValidationError{Field: "working_days", Message: "must be positive"})
	}
	if in.Attendance.PaidDays < 0 || in.Attendance.PaidDays > in.Attendance.WorkingDays {
		errs = append(errs, validator.ValidationError{Field: "paid_days", Message: "must be between 0 and working_days"})
	}
	for _, c := range in.Components {
		if c.MonthlyAmount < 0 {
			errs = append(errs, validator.ValidationError{Field: "component_" + c.Code, Message: "must be non-negative"})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Build computes one employee's record for one period. Every monetary
// intermediate is rounded half-up where it is computed, so component
// figures on the payslip sum exactly to the totals.
func (b *Builder) Build(ctx context.Context, in BuildInput) (payroll.PayrollRecord, error) {
	if err := in.validate(); err != nil {
		return payroll.PayrollRecord{}, err
	}

	earnings := make([]employee.SalaryComponent, 0, len(in.Components))
	var otherDeductions int64
	for _, c := range in.Components {
		if !c.IsActive {
			continue
		}
		switch c.Kind {
		case employee.ComponentKindEarning:
			earnings = append(earnings, c)
		case employee.ComponentKindDeduction:
			otherDeductions += c.MonthlyAmount
		}
	}
	if len(earnings) == 0 {
		return payroll.PayrollRecord{}, employee.ErrSalaryStructureNotFound
	}

	record := payroll.PayrollRecord{
		EmployeeID:    in.Employee.ID,
		CompanyID:     in.Employee.CompanyID,
		PeriodMonth:   in.Month,
		PeriodYear:    in.Year,
		WorkingDays:   in.Attendance.WorkingDays,
		PaidDays:      in.Attendance.PaidDays,
		LOPDays:       in.Attendance.WorkingDays - in.Attendance.PaidDays,
		EmployeeName:  in.Employee.FullName,
		EmployeeCode:  in.Employee.EmployeeCode,
		Gender:        string(in.Employee.Gender),
		WorkStateCode: in.Employee.WorkStateCode,
		UAN:           in.Employee.UAN,
		ESICNumber:    in.Employee.ESICNumber,
		PAN:           in.Employee.PAN,
	}

	// Earnings, pro-rated per component by paid days.
	var pfBase int64
	for _, c := range earnings {
		earned := statutory.DivRoundHalfUp(c.MonthlyAmount*int64(in.Attendance.PaidDays), int64(in.Attendance.WorkingDays))
		record.Earnings = append(record.Earnings, payroll.ComponentAmount{
			Code:   c.Code,
			Name:   c.Name,
			Full:   c.MonthlyAmount,
			Earned: earned,
		})
		record.GrossBeforeLOP += c.MonthlyAmount
		record.Gross += earned
		if c.InPFWage {
			pfBase += earned
		}
	}
	record.LOPDeduction = record.GrossBeforeLOP - record.Gross

	// PF
	if in.Employee.PFEnrolled {
		pf := b.pf.Calculate(pfBase)
		record.PFWage = pf.Wage
		record.PFEmployee = pf.Employee
		record.PFEmployerEPS = pf.EPS
		record.PFEmployerDiff = pf.EmployerPF
	}

	// ESI
	esi := b.esi.Calculate(record.Gross)
	if !esi.Applicable && in.ESICovered {
		ee, er := b.esi.Contributions(record.Gross)
		reason := "covered for the remainder of the contribution period"
		esi = statutory.ESIResult{
			Applicable:           true,
			EmployeeContribution: ee,
			EmployerContribution: er,
			GrossUsed:            record.Gross,
			Reason:               reason,
		}
	}
	record.ESIApplicable = esi.Applicable
	record.ESIEmployee = esi.EmployeeContribution
	record.ESIEmployer = esi.EmployerContribution
	if esi.Reason != "" {
		reason := esi.Reason
		record.ESIReason = &reason
	}

	// PT
	pt, err := b.pt.Calculate(ctx, statutory.PTInput{
		StateCode:   in.Employee.WorkStateCode,
		GrossSalary: record.Gross,
		Month:       in.Month,
		Gender:      string(in.Employee.Gender),
	})
	if err != nil {
		return payroll.PayrollRecord{}, err
	}
	record.PTAmount = pt.TaxAmount
	record.PTSlabID = pt.SlabID
	record.PTExempt = pt.IsExempt
	if pt.Reason != "" {
		reason := pt.Reason
		record.PTReason = &reason
	}

	// TDS, from a flat annual projection of this month's gross and PT.
	record.TDSAmount = b.tds.Monthly(record.Gross*12, record.PTAmount*12)

	record.OtherDeductions = otherDeductions
	record.TotalDeductions = record.PFEmployee + record.ESIEmployee + record.PTAmount + record.TDSAmount + record.OtherDeductions
	record.Net = record.Gross - record.TotalDeductions

	return record, nil
}
