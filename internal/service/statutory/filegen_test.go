package statutory

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthapay/payroll-backend-go/internal/domain/payroll"
)

func pfRecord(id, name, uan string, gross, wage, employee, eps, diff int64, lopDays int) payroll.PayrollRecord {
	var uanPtr *string
	if uan != "" {
		uanPtr = &uan
	}
	return payroll.PayrollRecord{
		EmployeeID:     id,
		EmployeeName:   name,
		UAN:            uanPtr,
		Gross:          gross,
		PFWage:         wage,
		PFEmployee:     employee,
		PFEmployerEPS:  eps,
		PFEmployerDiff: diff,
		LOPDays:        lopDays,
	}
}

func esiRecord(id, name, esicNo string, gross, employee, employer int64, paidDays int) payroll.PayrollRecord {
	var esicPtr *string
	if esicNo != "" {
		esicPtr = &esicNo
	}
	return payroll.PayrollRecord{
		EmployeeID:    id,
		EmployeeName:  name,
		ESICNumber:    esicPtr,
		ESIApplicable: true,
		Gross:         gross,
		ESIEmployee:   employee,
		ESIEmployer:   employer,
		PaidDays:      paidDays,
	}
}

// paise parses a 2-decimal rupee string back to integer paise.
func paise(t *testing.T, s string) int64 {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d.Mul(decimal.NewFromInt(100)).IntPart()
}

func TestGenerateECR_ThreeContributors(t *testing.T) {
	records := []payroll.PayrollRecord{
		pfRecord("e1", "Asha Rao", "100123456789", 30_000_00, 15_000_00, 1_800_00, 1_249_50, 550_50, 0),
		pfRecord("e2", "Vikram Singh", "100123456790", 18_000_00, 15_000_00, 1_800_00, 1_249_50, 550_50, 2),
		pfRecord("e3", "Meena Pillai", "100123456791", 12_000_00, 12_000_00, 1_440_00, 999_60, 440_40, 1),
	}

	content, summary, skipped := GenerateECR(records, 7, 2025)

	lines := strings.Split(strings.TrimRight(content, "\n"), "\n")
	require.Len(t, lines, 5, "3 data lines + summary + footer")
	assert.Empty(t, skipped)
	assert.Equal(t, 3, summary.RecordCount)

	first := strings.Split(lines[0], "#~#")
	require.Len(t, first, 11)
	assert.Equal(t, "100123456789", first[0])
	assert.Equal(t, "Asha Rao", first[1])
	assert.Equal(t, "30000.00", first[2])
	assert.Equal(t, "15000.00", first[3])
	assert.Equal(t, "1800.00", first[6])
	assert.Equal(t, "1249.50", first[7])
	assert.Equal(t, "550.50", first[8])
	assert.Equal(t, "0", first[9])

	assert.Equal(t, "Month/Year#~#07/2025", lines[4])
}

func TestGenerateECR_SummaryMatchesFieldSums(t *testing.T) {
	records := []payroll.PayrollRecord{
		pfRecord("e1", "Asha Rao", "100123456789", 30_000_00, 15_000_00, 1_800_00, 1_249_50, 550_50, 0),
		pfRecord("e2", "Vikram Singh", "100123456790", 18_000_00, 15_000_00, 1_800_00, 1_249_50, 550_50, 2),
		pfRecord("e3", "Meena Pillai", "100123456791", 12_000_00, 12_000_00, 1_440_00, 999_60, 440_40, 1),
	}

	content, summary, _ := GenerateECR(records, 7, 2025)

	// Re-parse the data lines; the TOTAL line must reproduce their sums
	// exactly, with no drift from repeated rounding.
	lines := strings.Split(strings.TrimRight(content, "\n"), "\n")
	var wages, employee, employer int64
	for _, line := range lines[:3] {
		fields := strings.Split(line, "#~#")
		wages += paise(t, fields[3])
		employee += paise(t, fields[6])
		employer += paise(t, fields[7])
		employer += paise(t, fields[8])
	}

	total := strings.Split(lines[3], "#~#")
	require.Equal(t, "TOTAL", total[0])
	assert.Equal(t, wages, paise(t, total[2]))
	assert.Equal(t, employee, paise(t, total[3]))
	assert.Equal(t, employer, paise(t, total[4]))

	assert.Equal(t, summary.TotalWages, wages)
	assert.Equal(t, summary.TotalEmployee, employee)
	assert.Equal(t, summary.TotalEmployer, employer)
}

func TestGenerateECR_SkipsMissingUAN(t *testing.T) {
	records := []payroll.PayrollRecord{
		pfRecord("e1", "Asha Rao", "100123456789", 30_000_00, 15_000_00, 1_800_00, 1_249_50, 550_50, 0),
		pfRecord("e2", "No Uan", "", 18_000_00, 15_000_00, 1_800_00, 1_249_50, 550_50, 0),
		pfRecord("e3", "Not Enrolled", "100123456791", 12_000_00, 0, 0, 0, 0, 0),
	}

	content, summary, skipped := GenerateECR(records, 7, 2025)

	assert.Equal(t, 1, summary.RecordCount)
	require.Len(t, skipped, 2)
	assert.Equal(t, "e2", skipped[0].EmployeeID)
	assert.Contains(t, skipped[0].Reason, "invalid UAN")
	assert.Equal(t, "e3", skipped[1].EmployeeID)
	assert.Contains(t, skipped[1].Reason, "no PF contribution")

	lines := strings.Split(strings.TrimRight(content, "\n"), "\n")
	assert.Len(t, lines, 3)
}

func TestGenerateECR_SanitizesDelimiterInName(t *testing.T) {
	records := []payroll.PayrollRecord{
		pfRecord("e1", "Asha #~# Rao", "100123456789", 30_000_00, 15_000_00, 1_800_00, 1_249_50, 550_50, 0),
	}

	content, _, _ := GenerateECR(records, 7, 2025)

	fields := strings.Split(strings.Split(content, "\n")[0], "#~#")
	require.Len(t, fields, 11)
	assert.Equal(t, "Asha     Rao", fields[1])
}

func TestGenerateESIChallan_Format(t *testing.T) {
	records := []payroll.PayrollRecord{
		esiRecord("e1", `D'Souza, Maria`, "1234567890", 18_000_00, 135_00, 585_00, 26),
		esiRecord("e2", "Ravi Kumar", "1234567891", 21_000_00, 157_50, 682_50, 24),
	}

	content, summary, skipped := GenerateESIChallan(records, 12, 2025)

	lines := strings.Split(content, "\n")
	assert.Equal(t, ESIChallanHeader, lines[0])
	assert.Contains(t, lines[1], `"D'Souza, Maria"`, "names are always quoted")
	assert.Equal(t, "", lines[3], "blank line before summary")
	assert.Equal(t, "Total,2,39000.00,292.50,1267.50,1560.00,50", lines[4])
	assert.Equal(t, "Month/Year,12/2025", lines[5])
	assert.Empty(t, skipped)
	assert.Equal(t, 2, summary.RecordCount)
}

func TestGenerateESIChallan_RoundTripTotals(t *testing.T) {
	records := []payroll.PayrollRecord{
		esiRecord("e1", "Asha Rao", "1234567890", 17_543_21, 131_57, 570_15, 26),
		esiRecord("e2", "Ravi Kumar", "1234567891", 20_999_99, 157_50, 682_50, 22),
		esiRecord("e3", "Meena Pillai", "1234567892", 9_876_54, 74_07, 320_99, 25),
	}

	content, summary, _ := GenerateESIChallan(records, 1, 2026)

	lines := strings.Split(content, "\n")
	var gross, employee, employer int64
	for _, line := range lines[1:4] {
		fields := strings.Split(line, ",")
		n := len(fields)
		// The quoted name may itself contain commas; money fields are
		// positional from the end.
		gross += paise(t, fields[n-5])
		employee += paise(t, fields[n-4])
		employer += paise(t, fields[n-3])
	}

	summaryFields := strings.Split(lines[5], ",")
	assert.Equal(t, gross, paise(t, summaryFields[2]))
	assert.Equal(t, employee, paise(t, summaryFields[3]))
	assert.Equal(t, employer, paise(t, summaryFields[4]))
	assert.Equal(t, summary.TotalEmployee+summary.TotalEmployer, paise(t, summaryFields[5]))
}

func TestGenerateESIChallan_SkipsMissingInsuranceNumber(t *testing.T) {
	records := []payroll.PayrollRecord{
		esiRecord("e1", "Asha Rao", "", 18_000_00, 135_00, 585_00, 26),
		{EmployeeID: "e2", EmployeeName: "Above Ceiling", ESIApplicable: false, Gross: 40_000_00},
	}

	_, summary, skipped := GenerateESIChallan(records, 6, 2025)

	assert.Zero(t, summary.RecordCount)
	require.Len(t, skipped, 1, "inapplicable records are filtered, not skipped-with-warning")
	assert.Equal(t, "e1", skipped[0].EmployeeID)
}

func TestQuarterMonths(t *testing.T) {
	assert.Equal(t, []payroll.PeriodKey{{Month: 4, Year: 2025}, {Month: 5, Year: 2025}, {Month: 6, Year: 2025}}, QuarterMonths(1, 2025))
	assert.Equal(t, []payroll.PeriodKey{{Month: 1, Year: 2026}, {Month: 2, Year: 2026}, {Month: 3, Year: 2026}}, QuarterMonths(4, 2025), "Q4 crosses the calendar year")
}

func TestBuildForm24Q(t *testing.T) {
	pan1 := "ABCDE1234F"
	pan2 := "FGHIJ5678K"
	records := []payroll.PayrollRecord{
		{EmployeeID: "e1", EmployeeName: "Asha Rao", PAN: &pan1, PeriodMonth: 4, PeriodYear: 2025, Gross: 80_000_00, TDSAmount: 5_925_83},
		{EmployeeID: "e1", EmployeeName: "Asha Rao", PAN: &pan1, PeriodMonth: 5, PeriodYear: 2025, Gross: 80_000_00, TDSAmount: 5_925_83},
		{EmployeeID: "e2", EmployeeName: "Ravi Kumar", PAN: &pan2, PeriodMonth: 4, PeriodYear: 2025, Gross: 40_000_00, TDSAmount: 1_000_00},
		{EmployeeID: "e3", EmployeeName: "No Pan", PeriodMonth: 4, PeriodYear: 2025, Gross: 90_000_00, TDSAmount: 7_000_00},
		{EmployeeID: "e4", EmployeeName: "Zero Tds", PAN: &pan1, PeriodMonth: 6, PeriodYear: 2025, Gross: 20_000_00, TDSAmount: 0},
	}

	data := BuildForm24Q(records, 1, 2025)

	assert.Equal(t, "2025-26", data.FinancialYear)
	require.Len(t, data.Deductees, 2)
	assert.Equal(t, []int64{5_925_83, 5_925_83, 0}, data.Deductees[0].MonthlyTDS)
	assert.Equal(t, int64(11_851_66), data.Deductees[0].TotalTDS)
	assert.Equal(t, int64(12_851_66), data.TotalTDS)
	require.Len(t, data.Skipped, 1)
	assert.Equal(t, "e3", data.Skipped[0].EmployeeID)
}

func TestFinancialYearLabel(t *testing.T) {
	assert.Equal(t, "2025-26", FinancialYearLabel(2025))
	assert.Equal(t, "2099-00", FinancialYearLabel(2099))
}
