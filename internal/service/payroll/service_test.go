package payroll

import (
	"context"
	"fmt"
	"testing"

	"github.com/go-chi/jwtauth/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthapay/payroll-backend-go/internal/domain/employee"
	"github.com/arthapay/payroll-backend-go/internal/domain/payroll"
	"github.com/arthapay/payroll-backend-go/internal/domain/statutory"
)

// ===== FAKES =====

type fakeRunRepo struct {
	runs       map[string]payroll.PayrollRun
	records    []payroll.PayrollRecord
	attendance map[string]payroll.AttendanceSummary
	esiCovered map[string]bool
}

func newFakeRunRepo() *fakeRunRepo {
	return &fakeRunRepo{
		runs:       map[string]payroll.PayrollRun{},
		attendance: map[string]payroll.AttendanceSummary{},
		esiCovered: map[string]bool{},
	}
}

func (f *fakeRunRepo) CreateRun(ctx context.Context, run payroll.PayrollRun) (payroll.PayrollRun, error) {
	for _, existing := range f.runs {
		if existing.CompanyID == run.CompanyID &&
			existing.PeriodMonth == run.PeriodMonth &&
			existing.PeriodYear == run.PeriodYear &&
			existing.Status != payroll.RunStatusReverted {
			return payroll.PayrollRun{}, payroll.ErrRunAlreadyExists
		}
	}
	run.ID = uuid.Must(uuid.NewV7()).String()
	f.runs[run.ID] = run
	return run, nil
}

func (f *fakeRunRepo) GetRunByID(ctx context.Context, id string, companyID string) (payroll.PayrollRun, error) {
	run, ok := f.runs[id]
	if !ok || run.CompanyID != companyID {
		return payroll.PayrollRun{}, payroll.ErrRunNotFound
	}
	return run, nil
}

func (f *fakeRunRepo) GetRunByPeriod(ctx context.Context, month, year int, companyID string) (payroll.PayrollRun, error) {
	for _, run := range f.runs {
		if run.CompanyID == companyID && run.PeriodMonth == month && run.PeriodYear == year && run.Status != payroll.RunStatusReverted {
			return run, nil
		}
	}
	return payroll.PayrollRun{}, payroll.ErrRunNotFound
}

func (f *fakeRunRepo) ListRuns(ctx context.Context, companyID string, filter payroll.RunFilter) ([]payroll.PayrollRun, int64, error) {
	var out []payroll.PayrollRun
	for _, run := range f.runs {
		if run.CompanyID == companyID {
			out = append(out, run)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeRunRepo) UpdateRunResult(ctx context.Context, run payroll.PayrollRun) error {
	if _, ok := f.runs[run.ID]; !ok {
		return payroll.ErrRunNotFound
	}
	f.runs[run.ID] = run
	return nil
}

func (f *fakeRunRepo) FinalizeRun(ctx context.Context, id string, companyID string) error {
	run, ok := f.runs[id]
	if !ok || run.CompanyID != companyID {
		return payroll.ErrRunNotFound
	}
	run.Status = payroll.RunStatusFinalized
	f.runs[id] = run
	return nil
}

func (f *fakeRunRepo) RevertRun(ctx context.Context, id string, companyID string) error {
	run, ok := f.runs[id]
	if !ok || run.CompanyID != companyID {
		return payroll.ErrRunNotFound
	}
	run.Status = payroll.RunStatusReverted
	f.runs[id] = run
	return nil
}

func (f *fakeRunRepo) CreateRecord(ctx context.Context, record payroll.PayrollRecord) (payroll.PayrollRecord, error) {
	record.ID = uuid.Must(uuid.NewV7()).String()
	f.records = append(f.records, record)
	return record, nil
}

func (f *fakeRunRepo) ListRecordsByRun(ctx context.Context, runID string, companyID string) ([]payroll.PayrollRecord, error) {
	var out []payroll.PayrollRecord
	for _, r := range f.records {
		if r.RunID == runID && r.CompanyID == companyID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRunRepo) ListRecordsByEmployeePeriods(ctx context.Context, employeeID string, companyID string, months []payroll.PeriodKey) ([]payroll.PayrollRecord, error) {
	var out []payroll.PayrollRecord
	for _, r := range f.records {
		if r.EmployeeID != employeeID || r.CompanyID != companyID {
			continue
		}
		for _, m := range months {
			if r.PeriodMonth == m.Month && r.PeriodYear == m.Year {
				out = append(out, r)
				break
			}
		}
	}
	return out, nil
}

func (f *fakeRunRepo) GetAttendanceSummary(ctx context.Context, companyID string, month, year int) ([]payroll.AttendanceSummary, error) {
	var out []payroll.AttendanceSummary
	for _, a := range f.attendance {
		out = append(out, a)
	}
	return out, nil
}

func (f *fakeRunRepo) GetRunSummary(ctx context.Context, companyID string, month, year int) (payroll.RunSummaryResponse, error) {
	summary := payroll.RunSummaryResponse{PeriodMonth: month, PeriodYear: year}
	for _, r := range f.records {
		if r.CompanyID != companyID || r.PeriodMonth != month || r.PeriodYear != year {
			continue
		}
		summary.EmployeeCount++
		summary.TotalGross += r.Gross
		summary.TotalPF += r.PFEmployee
		summary.TotalESI += r.ESIEmployee
		summary.TotalPT += r.PTAmount
		summary.TotalTDS += r.TDSAmount
		summary.TotalDeductions += r.TotalDeductions
		summary.TotalNet += r.Net
	}
	return summary, nil
}

func (f *fakeRunRepo) WasESICovered(ctx context.Context, employeeID string, companyID string, period statutory.ContributionPeriod, beforeMonth, beforeYear int) (bool, error) {
	return f.esiCovered[employeeID], nil
}

type fakeEmployeeRepo struct {
	employees  []employee.Employee
	components map[string][]employee.SalaryComponent
	failFor    map[string]error
}

func (f *fakeEmployeeRepo) GetByID(ctx context.Context, id string, companyID string) (employee.Employee, error) {
	for _, e := range f.employees {
		if e.ID == id && e.CompanyID == companyID {
			return e, nil
		}
	}
	return employee.Employee{}, employee.ErrEmployeeNotFound
}

func (f *fakeEmployeeRepo) GetActiveByCompanyID(ctx context.Context, companyID string) ([]employee.Employee, error) {
	var out []employee.Employee
	for _, e := range f.employees {
		if e.CompanyID == companyID && e.IsActive {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeEmployeeRepo) GetSalaryComponents(ctx context.Context, employeeID string, companyID string) ([]employee.SalaryComponent, error) {
	if err, ok := f.failFor[employeeID]; ok {
		return nil, err
	}
	return f.components[employeeID], nil
}

type fakeDeadlineSeeder struct {
	calls []string
}

func (f *fakeDeadlineSeeder) EnsureDeadlinesForPeriod(ctx context.Context, companyID string, month, year int) error {
	f.calls = append(f.calls, fmt.Sprintf("%s:%02d/%04d", companyID, month, year))
	return nil
}

// ===== FIXTURES =====

const testCompanyID = "0191c1a0-0000-7000-8000-000000000001"

func claimsContext(t *testing.T, companyID string) context.Context {
	t.Helper()
	tokenAuth := jwtauth.New("HS256", []byte("test-secret"), nil)
	token, _, err := tokenAuth.Encode(map[string]interface{}{
		"company_id": companyID,
		"user_id":    "user-1",
	})
	require.NoError(t, err)
	return jwtauth.NewContext(context.Background(), token, nil)
}

func serviceFixture(t *testing.T) (payroll.PayrollService, *fakeRunRepo, *fakeEmployeeRepo, *fakeDeadlineSeeder) {
	t.Helper()

	empRepo := &fakeEmployeeRepo{
		components: map[string][]employee.SalaryComponent{},
		failFor:    map[string]error{},
	}
	runRepo := newFakeRunRepo()
	seeder := &fakeDeadlineSeeder{}

	svc := NewPayrollService(nil, runRepo, empRepo, testBuilder(), seeder, 50)
	return svc, runRepo, empRepo, seeder
}

func addTestEmployee(empRepo *fakeEmployeeRepo, runRepo *fakeRunRepo, id, code string, basic int64) {
	uan := fmt.Sprintf("1001234567%02d", len(empRepo.employees))
	empRepo.employees = append(empRepo.employees, employee.Employee{
		ID:            id,
		CompanyID:     testCompanyID,
		EmployeeCode:  code,
		FullName:      "Employee " + code,
		Gender:        employee.GenderMale,
		WorkStateCode: "KA",
		UAN:           &uan,
		PFEnrolled:    true,
		IsActive:      true,
	})
	empRepo.components[id] = []employee.SalaryComponent{
		{Code: "BASIC", Name: "Basic", Kind: employee.ComponentKindEarning, MonthlyAmount: basic, InPFWage: true, IsActive: true},
	}
	runRepo.attendance[id] = payroll.AttendanceSummary{EmployeeID: id, WorkingDays: 26, PaidDays: 26}
}

// ===== TESTS =====

func TestPayrollServiceCreateRunSuccess(t *testing.T) {
	svc, runRepo, empRepo, seeder := serviceFixture(t)
	addTestEmployee(empRepo, runRepo, "emp-1", "E001", 30_000_00)
	addTestEmployee(empRepo, runRepo, "emp-2", "E002", 18_000_00)

	ctx := claimsContext(t, testCompanyID)
	resp, err := svc.CreateRun(ctx, payroll.CreateRunRequest{PeriodMonth: 6, PeriodYear: 2025})
	require.NoError(t, err)

	assert.Equal(t, "completed", resp.Status)
	assert.Equal(t, 2, resp.TotalCount)
	assert.Equal(t, 2, resp.ProcessedCount)
	assert.Equal(t, 0, resp.FailedCount)
	assert.Empty(t, resp.Errors)

	records, err := svc.ListRecords(ctx, resp.ID)
	require.NoError(t, err)
	require.Len(t, records, 2)

	// Deadlines seeded for the run's period.
	require.Len(t, seeder.calls, 1)
	assert.Equal(t, testCompanyID+":06/2025", seeder.calls[0])
}

func TestPayrollServiceCreateRunDuplicatePeriod(t *testing.T) {
	svc, runRepo, empRepo, _ := serviceFixture(t)
	addTestEmployee(empRepo, runRepo, "emp-1", "E001", 30_000_00)

	ctx := claimsContext(t, testCompanyID)
	_, err := svc.CreateRun(ctx, payroll.CreateRunRequest{PeriodMonth: 6, PeriodYear: 2025})
	require.NoError(t, err)

	_, err = svc.CreateRun(ctx, payroll.CreateRunRequest{PeriodMonth: 6, PeriodYear: 2025})
	assert.ErrorIs(t, err, payroll.ErrRunAlreadyExists)

	// A different period is fine.
	_, err = svc.CreateRun(ctx, payroll.CreateRunRequest{PeriodMonth: 7, PeriodYear: 2025})
	assert.NoError(t, err)
}

func TestPayrollServiceRerunAfterRevert(t *testing.T) {
	svc, runRepo, empRepo, _ := serviceFixture(t)
	addTestEmployee(empRepo, runRepo, "emp-1", "E001", 30_000_00)

	ctx := claimsContext(t, testCompanyID)
	resp, err := svc.CreateRun(ctx, payroll.CreateRunRequest{PeriodMonth: 6, PeriodYear: 2025})
	require.NoError(t, err)

	require.NoError(t, svc.RevertRun(ctx, resp.ID))

	_, err = svc.CreateRun(ctx, payroll.CreateRunRequest{PeriodMonth: 6, PeriodYear: 2025})
	assert.NoError(t, err)
}

func TestPayrollServicePartialFailureBelowThreshold(t *testing.T) {
	svc, runRepo, empRepo, _ := serviceFixture(t)
	addTestEmployee(empRepo, runRepo, "emp-1", "E001", 30_000_00)
	addTestEmployee(empRepo, runRepo, "emp-2", "E002", 18_000_00)
	empRepo.failFor["emp-2"] = fmt.Errorf("salary structure lookup failed")

	ctx := claimsContext(t, testCompanyID)
	resp, err := svc.CreateRun(ctx, payroll.CreateRunRequest{PeriodMonth: 6, PeriodYear: 2025})
	require.NoError(t, err)

	// 1 of 2 failed: exactly at the 50% threshold, not past it.
	assert.Equal(t, "completed", resp.Status)
	assert.Equal(t, 1, resp.ProcessedCount)
	assert.Equal(t, 1, resp.FailedCount)
	require.Len(t, resp.Errors, 1)
	assert.Equal(t, "emp-2", resp.Errors[0].EmployeeID)
	assert.Equal(t, "E002", resp.Errors[0].EmployeeCode)
	assert.Contains(t, resp.Errors[0].Message, "salary structure lookup failed")
}

func TestPayrollServiceFailureThresholdExceeded(t *testing.T) {
	svc, runRepo, empRepo, _ := serviceFixture(t)
	addTestEmployee(empRepo, runRepo, "emp-1", "E001", 30_000_00)
	addTestEmployee(empRepo, runRepo, "emp-2", "E002", 18_000_00)
	addTestEmployee(empRepo, runRepo, "emp-3", "E003", 20_000_00)
	empRepo.failFor["emp-2"] = fmt.Errorf("boom")
	empRepo.failFor["emp-3"] = fmt.Errorf("boom")

	ctx := claimsContext(t, testCompanyID)
	resp, err := svc.CreateRun(ctx, payroll.CreateRunRequest{PeriodMonth: 6, PeriodYear: 2025})
	require.NoError(t, err)

	assert.Equal(t, "failed", resp.Status)
	assert.Equal(t, 1, resp.ProcessedCount)
	assert.Equal(t, 2, resp.FailedCount)
	assert.Len(t, resp.Errors, 2)
}

func TestPayrollServiceMissingAttendanceFailsEmployee(t *testing.T) {
	svc, runRepo, empRepo, _ := serviceFixture(t)
	addTestEmployee(empRepo, runRepo, "emp-1", "E001", 30_000_00)
	addTestEmployee(empRepo, runRepo, "emp-2", "E002", 18_000_00)
	delete(runRepo.attendance, "emp-2")

	ctx := claimsContext(t, testCompanyID)
	resp, err := svc.CreateRun(ctx, payroll.CreateRunRequest{PeriodMonth: 6, PeriodYear: 2025})
	require.NoError(t, err)

	assert.Equal(t, 1, resp.FailedCount)
	require.Len(t, resp.Errors, 1)
	assert.Contains(t, resp.Errors[0].Message, "attendance")
}

func TestPayrollServiceNoActiveEmployees(t *testing.T) {
	svc, _, _, _ := serviceFixture(t)

	ctx := claimsContext(t, testCompanyID)
	_, err := svc.CreateRun(ctx, payroll.CreateRunRequest{PeriodMonth: 6, PeriodYear: 2025})
	assert.ErrorIs(t, err, payroll.ErrNoActiveEmployees)
}

func TestPayrollServiceAbortedRunDoesNotBrickPeriod(t *testing.T) {
	svc, runRepo, empRepo, _ := serviceFixture(t)

	ctx := claimsContext(t, testCompanyID)
	_, err := svc.CreateRun(ctx, payroll.CreateRunRequest{PeriodMonth: 6, PeriodYear: 2025})
	require.ErrorIs(t, err, payroll.ErrNoActiveEmployees)

	// The aborted run must not be left in processing: it moves to failed
	// with the abort reason recorded, so it can be reverted.
	require.Len(t, runRepo.runs, 1)
	var aborted payroll.PayrollRun
	for _, run := range runRepo.runs {
		aborted = run
	}
	assert.Equal(t, payroll.RunStatusFailed, aborted.Status)
	require.Len(t, aborted.Errors, 1)
	assert.Contains(t, aborted.Errors[0].Message, "no active employees")

	require.NoError(t, svc.RevertRun(ctx, aborted.ID))

	addTestEmployee(empRepo, runRepo, "emp-1", "E001", 30_000_00)
	result, err := svc.CreateRun(ctx, payroll.CreateRunRequest{PeriodMonth: 6, PeriodYear: 2025})
	require.NoError(t, err)
	assert.Equal(t, string(payroll.RunStatusCompleted), result.Status)
}

func TestPayrollServiceStuckProcessingRunIsRevertible(t *testing.T) {
	svc, runRepo, _, _ := serviceFixture(t)

	runRepo.runs["stuck"] = payroll.PayrollRun{
		ID:          "stuck",
		CompanyID:   testCompanyID,
		PeriodMonth: 6,
		PeriodYear:  2025,
		Status:      payroll.RunStatusProcessing,
	}

	ctx := claimsContext(t, testCompanyID)
	require.NoError(t, svc.RevertRun(ctx, "stuck"))
	assert.Equal(t, payroll.RunStatusReverted, runRepo.runs["stuck"].Status)
}

func TestPayrollServiceESICoverageCarriesOver(t *testing.T) {
	svc, runRepo, empRepo, _ := serviceFixture(t)
	// Above the ESI ceiling, but covered earlier in the contribution
	// period: contributions continue.
	addTestEmployee(empRepo, runRepo, "emp-1", "E001", 25_000_00)
	runRepo.esiCovered["emp-1"] = true

	ctx := claimsContext(t, testCompanyID)
	resp, err := svc.CreateRun(ctx, payroll.CreateRunRequest{PeriodMonth: 8, PeriodYear: 2025})
	require.NoError(t, err)

	records, err := svc.ListRecords(ctx, resp.ID)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.True(t, records[0].ESIApplicable)
	assert.Equal(t, int64(187_50), records[0].ESIEmployee)
}

func TestPayrollServiceFinalize(t *testing.T) {
	svc, runRepo, empRepo, _ := serviceFixture(t)
	addTestEmployee(empRepo, runRepo, "emp-1", "E001", 30_000_00)

	ctx := claimsContext(t, testCompanyID)
	resp, err := svc.CreateRun(ctx, payroll.CreateRunRequest{PeriodMonth: 6, PeriodYear: 2025})
	require.NoError(t, err)

	require.NoError(t, svc.FinalizeRun(ctx, resp.ID))

	got, err := svc.GetRun(ctx, resp.ID)
	require.NoError(t, err)
	assert.Equal(t, "finalized", got.Status)

	// A finalized run cannot be finalized again.
	assert.ErrorIs(t, svc.FinalizeRun(ctx, resp.ID), payroll.ErrRunNotFinalizable)
}

func TestPayrollServiceFinalizeFailedRun(t *testing.T) {
	svc, runRepo, empRepo, _ := serviceFixture(t)
	addTestEmployee(empRepo, runRepo, "emp-1", "E001", 30_000_00)
	empRepo.failFor["emp-1"] = fmt.Errorf("boom")

	ctx := claimsContext(t, testCompanyID)
	resp, err := svc.CreateRun(ctx, payroll.CreateRunRequest{PeriodMonth: 6, PeriodYear: 2025})
	require.NoError(t, err)
	require.Equal(t, "failed", resp.Status)

	assert.ErrorIs(t, svc.FinalizeRun(ctx, resp.ID), payroll.ErrRunNotFinalizable)
}

func TestPayrollServiceRevertLifecycle(t *testing.T) {
	svc, runRepo, empRepo, _ := serviceFixture(t)
	addTestEmployee(empRepo, runRepo, "emp-1", "E001", 30_000_00)

	ctx := claimsContext(t, testCompanyID)
	resp, err := svc.CreateRun(ctx, payroll.CreateRunRequest{PeriodMonth: 6, PeriodYear: 2025})
	require.NoError(t, err)

	require.NoError(t, svc.FinalizeRun(ctx, resp.ID))
	require.NoError(t, svc.RevertRun(ctx, resp.ID))

	got, err := svc.GetRun(ctx, resp.ID)
	require.NoError(t, err)
	assert.Equal(t, "reverted", got.Status)

	// Reverted is terminal.
	assert.ErrorIs(t, svc.RevertRun(ctx, resp.ID), payroll.ErrRunAlreadyTerminal)
}

func TestPayrollServiceCrossCompanyIsolation(t *testing.T) {
	svc, runRepo, empRepo, _ := serviceFixture(t)
	addTestEmployee(empRepo, runRepo, "emp-1", "E001", 30_000_00)

	ctx := claimsContext(t, testCompanyID)
	resp, err := svc.CreateRun(ctx, payroll.CreateRunRequest{PeriodMonth: 6, PeriodYear: 2025})
	require.NoError(t, err)

	otherCtx := claimsContext(t, "0191c1a0-0000-7000-8000-000000000099")
	_, err = svc.GetRun(otherCtx, resp.ID)
	assert.ErrorIs(t, err, payroll.ErrRunNotFound)
}

func TestPayrollServiceGetSummary(t *testing.T) {
	svc, runRepo, empRepo, _ := serviceFixture(t)
	addTestEmployee(empRepo, runRepo, "emp-1", "E001", 30_000_00)
	addTestEmployee(empRepo, runRepo, "emp-2", "E002", 18_000_00)

	ctx := claimsContext(t, testCompanyID)
	_, err := svc.CreateRun(ctx, payroll.CreateRunRequest{PeriodMonth: 6, PeriodYear: 2025})
	require.NoError(t, err)

	summary, err := svc.GetSummary(ctx, 6, 2025)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.EmployeeCount)
	assert.Equal(t, int64(48_000_00), summary.TotalGross)
	// 1_800_00 on the capped wage plus 1_800_00 on the 18k basic wage.
	assert.Equal(t, int64(3_600_00), summary.TotalPF)
	// Only the 18k employee is within the ESI ceiling.
	assert.Equal(t, int64(135_00), summary.TotalESI)
}

func TestPayrollServiceMissingClaims(t *testing.T) {
	svc, _, _, _ := serviceFixture(t)

	_, err := svc.CreateRun(context.Background(), payroll.CreateRunRequest{PeriodMonth: 6, PeriodYear: 2025})
	assert.Error(t, err)
}

func TestPayrollServiceInvalidPeriod(t *testing.T) {
	svc, _, _, _ := serviceFixture(t)

	ctx := claimsContext(t, testCompanyID)
	_, err := svc.CreateRun(ctx, payroll.CreateRunRequest{PeriodMonth: 13, PeriodYear: 2025})
	assert.Error(t, err)
}
