package statutory

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"

	"github.com/arthapay/payroll-backend-go/internal/domain/employee"
	"github.com/arthapay/payroll-backend-go/internal/domain/payroll"
	"github.com/arthapay/payroll-backend-go/internal/domain/statutory"
	"github.com/arthapay/payroll-backend-go/internal/pkg/validator"
)

// BuildForm16 assembles an annual TDS certificate from the financial
// year's payroll records. Actual per-month figures are summed; the tax on
// income is recomputed from the configured slabs so the certificate is
// internally consistent.
func BuildForm16(emp employee.Employee, records []payroll.PayrollRecord, fyStartYear int, tds *TDSCalculator) (statutory.Form16Data, error) {
	if emp.PAN == nil || !validator.IsValidPAN(*emp.PAN) {
		return statutory.Form16Data{}, statutory.ErrEmployeeMissingPAN
	}
	if len(records) == 0 {
		return statutory.Form16Data{}, statutory.ErrNoRecordsForPeriod
	}

	var gross, pt, deducted int64
	for _, r := range records {
		gross += r.Gross
		pt += r.PTAmount
		deducted += r.TDSAmount
	}

	taxable := tds.TaxableIncome(gross, pt)

	return statutory.Form16Data{
		EmployeeName:      emp.FullName,
		EmployeeCode:      emp.EmployeeCode,
		PAN:               *emp.PAN,
		FinancialYear:     FinancialYearLabel(fyStartYear),
		AssessmentYear:    FinancialYearLabel(fyStartYear + 1),
		GrossSalary:       gross,
		StandardDeduction: tds.rates.StandardDeduction,
		ProfessionalTax:   pt,
		TaxableIncome:     taxable,
		TaxOnIncome:       tds.AnnualTax(taxable),
		TDSDeducted:       deducted,
		MonthsCovered:     len(records),
	}, nil
}

// RenderForm16PDF renders the certificate as a simple A4 document.
func RenderForm16PDF(data statutory.Form16Data) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Form 16 - Certificate of Tax Deducted at Source")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Employee: %s (%s)", data.EmployeeName, data.EmployeeCode))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("PAN: %s", data.PAN))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Financial Year: %s  Assessment Year: %s", data.FinancialYear, data.AssessmentYear))
	pdf.Ln(10)

	line := func(label string, paise int64) {
		pdf.Cell(0, 8, fmt.Sprintf("%s: Rs %s", label, rupees(paise)))
		pdf.Ln(7)
	}
	line("Gross Salary", data.GrossSalary)
	line("Standard Deduction", data.StandardDeduction)
	line("Professional Tax", data.ProfessionalTax)
	line("Taxable Income", data.TaxableIncome)
	line("Tax on Income", data.TaxOnIncome)
	line("Tax Deducted at Source", data.TDSDeducted)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render form 16 pdf: %w", err)
	}
	return buf.Bytes(), nil
}
