package statutory

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/arthapay/payroll-backend-go/internal/domain/payroll"
	"github.com/arthapay/payroll-backend-go/internal/domain/statutory"
	"github.com/arthapay/payroll-backend-go/internal/pkg/validator"
)

// Government portals validate these files structurally: column order,
// delimiter choice and 2-decimal money rendering are part of the
// contract. Generators are pure; callers log the skipped list and persist
// the artifact.

// rupees renders integer paise as a 2-decimal rupee string.
func rupees(paise int64) string {
	return decimal.New(paise, -2).StringFixed(2)
}

// ecrSanitize strips the ECR field delimiter characters from free text.
// The EPFO portal rejects names containing them.
func ecrSanitize(s string) string {
	s = strings.ReplaceAll(s, "#", " ")
	s = strings.ReplaceAll(s, "~", " ")
	return strings.TrimSpace(s)
}

// csvQuote always quotes a free-text CSV field, doubling embedded quotes.
func csvQuote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// GenerateECR renders the EPFO Electronic Challan-cum-Return for one
// run's records. One #~#-delimited line per PF-contributing employee with
// a UAN, a trailing TOTAL line, and a period footer. Records without a
// valid UAN or without a PF contribution are skipped and reported.
func GenerateECR(records []payroll.PayrollRecord, month, year int) (string, statutory.FileSummary, []statutory.SkippedRecord) {
	var b strings.Builder
	var summary statutory.FileSummary
	var skipped []statutory.SkippedRecord
	var totalEPS, totalDiff int64

	for _, r := range records {
		if r.PFEmployee == 0 {
			skipped = append(skipped, statutory.SkippedRecord{
				EmployeeID:   r.EmployeeID,
				EmployeeName: r.EmployeeName,
				Reason:       "no PF contribution in this period",
			})
			continue
		}
		if r.UAN == nil || !validator.IsValidUAN(*r.UAN) {
			skipped = append(skipped, statutory.SkippedRecord{
				EmployeeID:   r.EmployeeID,
				EmployeeName: r.EmployeeName,
				Reason:       "missing or invalid UAN",
			})
			continue
		}

		fmt.Fprintf(&b, "%s#~#%s#~#%s#~#%s#~#%s#~#%s#~#%s#~#%s#~#%s#~#%d#~#0.00\n",
			*r.UAN,
			ecrSanitize(r.EmployeeName),
			rupees(r.Gross),
			rupees(r.PFWage),
			rupees(r.PFWage),
			rupees(r.PFWage),
			rupees(r.PFEmployee),
			rupees(r.PFEmployerEPS),
			rupees(r.PFEmployerDiff),
			r.LOPDays,
		)

		summary.RecordCount++
		summary.TotalWages += r.PFWage
		summary.TotalEmployee += r.PFEmployee
		totalEPS += r.PFEmployerEPS
		totalDiff += r.PFEmployerDiff
	}
	summary.TotalEmployer = totalEPS + totalDiff

	fmt.Fprintf(&b, "TOTAL#~#%d#~#%s#~#%s#~#%s\n",
		summary.RecordCount,
		rupees(summary.TotalWages),
		rupees(summary.TotalEmployee),
		rupees(summary.TotalEmployer),
	)
	fmt.Fprintf(&b, "Month/Year#~#%02d/%04d\n", month, year)

	return b.String(), summary, skipped
}

// ESIChallanHeader is the fixed column header the ESIC portal expects.
const ESIChallanHeader = "ESIC Number,Employee Name,Gross Wages (Rs),Employee Contribution (Rs),Employer Contribution (Rs),Total Contribution (Rs),IP Days"

// GenerateESIChallan renders the monthly ESI contribution CSV for one
// run. Only ESI-applicable records with a valid insurance number are
// included; names are always quoted. A blank line separates the summary
// row, followed by the Month/Year footer.
func GenerateESIChallan(records []payroll.PayrollRecord, month, year int) (string, statutory.FileSummary, []statutory.SkippedRecord) {
	var b strings.Builder
	var summary statutory.FileSummary
	var skipped []statutory.SkippedRecord
	var totalContribution int64
	var totalIPDays int

	b.WriteString(ESIChallanHeader + "\n")

	for _, r := range records {
		if !r.ESIApplicable {
			continue
		}
		if r.ESICNumber == nil || !validator.IsValidESICNumber(*r.ESICNumber) {
			skipped = append(skipped, statutory.SkippedRecord{
				EmployeeID:   r.EmployeeID,
				EmployeeName: r.EmployeeName,
				Reason:       "missing or invalid ESIC number",
			})
			continue
		}

		total := r.ESIEmployee + r.ESIEmployer
		fmt.Fprintf(&b, "%s,%s,%s,%s,%s,%s,%d\n",
			*r.ESICNumber,
			csvQuote(r.EmployeeName),
			rupees(r.Gross),
			rupees(r.ESIEmployee),
			rupees(r.ESIEmployer),
			rupees(total),
			r.PaidDays,
		)

		summary.RecordCount++
		summary.TotalWages += r.Gross
		summary.TotalEmployee += r.ESIEmployee
		summary.TotalEmployer += r.ESIEmployer
		totalContribution += total
		totalIPDays += r.PaidDays
	}

	b.WriteString("\n")
	fmt.Fprintf(&b, "Total,%d,%s,%s,%s,%s,%d\n",
		summary.RecordCount,
		rupees(summary.TotalWages),
		rupees(summary.TotalEmployee),
		rupees(summary.TotalEmployer),
		rupees(totalContribution),
		totalIPDays,
	)
	fmt.Fprintf(&b, "Month/Year,%02d/%04d\n", month, year)

	return b.String(), summary, skipped
}

// QuarterMonths returns the payroll months making up one quarter of the
// financial year starting in April of fyStartYear. Q4 spans the calendar
// year boundary.
func QuarterMonths(quarter, fyStartYear int) []payroll.PeriodKey {
	start := 4 + (quarter-1)*3
	months := make([]payroll.PeriodKey, 0, 3)
	for i := 0; i < 3; i++ {
		m := start + i
		y := fyStartYear
		if m > 12 {
			m -= 12
			y++
		}
		months = append(months, payroll.PeriodKey{Month: m, Year: y})
	}
	return months
}

// BuildForm24Q assembles the quarterly TDS return from the quarter's
// payroll records. Records without a valid PAN are skipped and reported;
// employees with zero TDS across the quarter are omitted.
func BuildForm24Q(records []payroll.PayrollRecord, quarter, fyStartYear int) statutory.Form24QData {
	months := QuarterMonths(quarter, fyStartYear)
	monthIndex := make(map[payroll.PeriodKey]int, len(months))
	for i, m := range months {
		monthIndex[m] = i
	}

	data := statutory.Form24QData{
		Quarter:       quarter,
		FinancialYear: FinancialYearLabel(fyStartYear),
	}

	type agg struct {
		row     statutory.Form24QDeductee
		skipped bool
	}
	byEmployee := make(map[string]*agg)
	var order []string

	for _, r := range records {
		idx, ok := monthIndex[payroll.PeriodKey{Month: r.PeriodMonth, Year: r.PeriodYear}]
		if !ok {
			continue
		}

		a, seen := byEmployee[r.EmployeeID]
		if !seen {
			a = &agg{}
			if r.PAN == nil || !validator.IsValidPAN(*r.PAN) {
				a.skipped = true
				data.Skipped = append(data.Skipped, statutory.SkippedRecord{
					EmployeeID:   r.EmployeeID,
					EmployeeName: r.EmployeeName,
					Reason:       "missing or invalid PAN",
				})
			} else {
				a.row = statutory.Form24QDeductee{
					PAN:          *r.PAN,
					EmployeeName: r.EmployeeName,
					MonthlyTDS:   make([]int64, len(months)),
				}
			}
			byEmployee[r.EmployeeID] = a
			order = append(order, r.EmployeeID)
		}
		if a.skipped {
			continue
		}

		a.row.MonthlyTDS[idx] += r.TDSAmount
		a.row.TotalTDS += r.TDSAmount
		a.row.TotalPaid += r.Gross
	}

	for _, id := range order {
		a := byEmployee[id]
		if a.skipped || a.row.TotalTDS == 0 {
			continue
		}
		data.Deductees = append(data.Deductees, a.row)
		data.TotalTDS += a.row.TotalTDS
		data.TotalPaid += a.row.TotalPaid
	}

	return data
}

// FinancialYearLabel renders "2025-26" for the FY starting April 2025.
func FinancialYearLabel(fyStartYear int) string {
	return fmt.Sprintf("%d-%02d", fyStartYear, (fyStartYear+1)%100)
}
