package payroll

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/jackc/pgx/v5"

	"github.com/arthapay/payroll-backend-go/internal/domain/employee"
	"github.com/arthapay/payroll-backend-go/internal/domain/payroll"
	"github.com/arthapay/payroll-backend-go/internal/pkg/database"
	"github.com/arthapay/payroll-backend-go/internal/repository/postgresql"
	statutorySvc "github.com/arthapay/payroll-backend-go/internal/service/statutory"
)

// DeadlineSeeder is what the payroll service needs from the statutory
// side after a run: the filing obligations for the period.
type DeadlineSeeder interface {
	EnsureDeadlinesForPeriod(ctx context.Context, companyID string, month, year int) error
}

type PayrollServiceImpl struct {
	db           *database.DB
	runRepo      payroll.RunRepository
	employeeRepo employee.EmployeeRepository
	builder      *Builder
	deadlines    DeadlineSeeder

	// failureThresholdPct: the run fails when failed records exceed this
	// percentage of the total. 50 by default.
	failureThresholdPct int
}

func NewPayrollService(
	db *database.DB,
	runRepo payroll.RunRepository,
	employeeRepo employee.EmployeeRepository,
	builder *Builder,
	deadlines DeadlineSeeder,
	failureThresholdPct int,
) payroll.PayrollService {
	if failureThresholdPct <= 0 || failureThresholdPct > 100 {
		failureThresholdPct = 50
	}
	return &PayrollServiceImpl{
		db:                  db,
		runRepo:             runRepo,
		employeeRepo:        employeeRepo,
		builder:             builder,
		deadlines:           deadlines,
		failureThresholdPct: failureThresholdPct,
	}
}

// Helper to get company_id and user_id from JWT context
func getClaimsFromContext(ctx context.Context) (companyID, userID string, err error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return "", "", fmt.Errorf("failed to extract claims from context: %w", err)
	}

	companyID, ok := claims["company_id"].(string)
	if !ok || companyID == "" {
		return "", "", fmt.Errorf("company_id claim is missing or invalid")
	}

	userID, _ = claims["user_id"].(string)
	return companyID, userID, nil
}

// ========== RUN LIFECYCLE ==========

func (s *PayrollServiceImpl) CreateRun(ctx context.Context, req payroll.CreateRunRequest) (payroll.RunResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.RunResponse{}, err
	}

	companyID, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return payroll.RunResponse{}, err
	}

	// The partial unique index makes the duplicate check race-free:
	// a concurrent attempt for the same period conflicts here, before
	// any record is written.
	run, err := s.runRepo.CreateRun(ctx, payroll.PayrollRun{
		CompanyID:   companyID,
		PeriodMonth: req.PeriodMonth,
		PeriodYear:  req.PeriodYear,
		Status:      payroll.RunStatusProcessing,
	})
	if err != nil {
		return payroll.RunResponse{}, err
	}

	run, err = s.processRun(ctx, run)
	if err != nil {
		s.markRunAborted(ctx, run, err)
		return payroll.RunResponse{}, err
	}

	if s.deadlines != nil {
		if err := s.deadlines.EnsureDeadlinesForPeriod(ctx, companyID, run.PeriodMonth, run.PeriodYear); err != nil {
			slog.Error("Failed to seed statutory deadlines for run",
				"run_id", run.ID, "error", err)
		}
	}

	return mapToRunResponse(run), nil
}

// runInTransaction wraps fn in a database transaction. Service tests run
// against in-memory fakes without a pool.
func (s *PayrollServiceImpl) runInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.db == nil {
		return fn(ctx)
	}
	return postgresql.WithTransaction(ctx, s.db, func(tx pgx.Tx) error {
		return fn(context.WithValue(ctx, "tx", tx))
	})
}

// markRunAborted moves a run that errored out mid-processing to failed,
// recording the abort reason. Without this the row would sit in
// processing forever and the partial unique index would block every
// retry for the period.
func (s *PayrollServiceImpl) markRunAborted(ctx context.Context, run payroll.PayrollRun, cause error) {
	run.Status = payroll.RunStatusFailed
	run.Errors = append(run.Errors, payroll.RunError{Message: cause.Error()})
	if err := s.runRepo.UpdateRunResult(ctx, run); err != nil {
		slog.Error("Failed to mark aborted payroll run as failed",
			"run_id", run.ID, "error", err)
	}
}

// processRun iterates active employees sequentially. Per-employee
// failures are collected on the run, never abort the loop; the run fails
// only past the failure threshold.
func (s *PayrollServiceImpl) processRun(ctx context.Context, run payroll.PayrollRun) (payroll.PayrollRun, error) {
	employees, err := s.employeeRepo.GetActiveByCompanyID(ctx, run.CompanyID)
	if err != nil {
		return run, fmt.Errorf("failed to get employees: %w", err)
	}
	if len(employees) == 0 {
		return run, payroll.ErrNoActiveEmployees
	}

	summaries, err := s.runRepo.GetAttendanceSummary(ctx, run.CompanyID, run.PeriodMonth, run.PeriodYear)
	if err != nil {
		return run, fmt.Errorf("failed to get attendance summary: %w", err)
	}
	attendanceMap := make(map[string]payroll.AttendanceSummary, len(summaries))
	for _, a := range summaries {
		attendanceMap[a.EmployeeID] = a
	}

	run.TotalCount = len(employees)
	var records []payroll.PayrollRecord
	for _, emp := range employees {
		record, err := s.buildEmployeeRecord(ctx, run, emp, attendanceMap)
		if err != nil {
			run.FailedCount++
			run.Errors = append(run.Errors, payroll.RunError{
				EmployeeID:   emp.ID,
				EmployeeCode: emp.EmployeeCode,
				Message:      err.Error(),
			})
			slog.Warn("Payroll record failed",
				"run_id", run.ID, "employee_id", emp.ID, "error", err)
			continue
		}

		record.RunID = run.ID
		records = append(records, record)
		run.ProcessedCount++
	}

	if run.FailedCount*100 > run.TotalCount*s.failureThresholdPct {
		run.Status = payroll.RunStatusFailed
	} else {
		run.Status = payroll.RunStatusCompleted
	}

	// Records and the run result land together: an insert failure rolls
	// everything back and the caller marks the run aborted.
	err = s.runInTransaction(ctx, func(txCtx context.Context) error {
		for _, record := range records {
			if _, err := s.runRepo.CreateRecord(txCtx, record); err != nil {
				return fmt.Errorf("failed to store payroll record for employee %s: %w", record.EmployeeID, err)
			}
		}
		if err := s.runRepo.UpdateRunResult(txCtx, run); err != nil {
			return fmt.Errorf("failed to update run result: %w", err)
		}
		return nil
	})
	if err != nil {
		return run, err
	}

	slog.Info("Payroll run processed",
		"run_id", run.ID,
		"period", fmt.Sprintf("%02d/%04d", run.PeriodMonth, run.PeriodYear),
		"status", run.Status,
		"processed", run.ProcessedCount,
		"failed", run.FailedCount,
	)
	return run, nil
}

func (s *PayrollServiceImpl) buildEmployeeRecord(ctx context.Context, run payroll.PayrollRun, emp employee.Employee, attendanceMap map[string]payroll.AttendanceSummary) (payroll.PayrollRecord, error) {
	attendance, ok := attendanceMap[emp.ID]
	if !ok {
		return payroll.PayrollRecord{}, fmt.Errorf("no attendance summary for period")
	}

	components, err := s.employeeRepo.GetSalaryComponents(ctx, emp.ID, run.CompanyID)
	if err != nil {
		return payroll.PayrollRecord{}, err
	}

	// Once covered at the start of a contribution period, ESI coverage
	// continues for the rest of it.
	period := statutorySvc.ContributionPeriodFor(run.PeriodMonth, run.PeriodYear)
	covered, err := s.runRepo.WasESICovered(ctx, emp.ID, run.CompanyID, period, run.PeriodMonth, run.PeriodYear)
	if err != nil {
		return payroll.PayrollRecord{}, fmt.Errorf("failed to check ESI coverage: %w", err)
	}

	return s.builder.Build(ctx, BuildInput{
		Employee:   emp,
		Components: components,
		Attendance: attendance,
		Month:      run.PeriodMonth,
		Year:       run.PeriodYear,
		ESICovered: covered,
	})
}

func (s *PayrollServiceImpl) GetRun(ctx context.Context, id string) (payroll.RunResponse, error) {
	companyID, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return payroll.RunResponse{}, err
	}

	run, err := s.runRepo.GetRunByID(ctx, id, companyID)
	if err != nil {
		return payroll.RunResponse{}, err
	}
	return mapToRunResponse(run), nil
}

func (s *PayrollServiceImpl) ListRuns(ctx context.Context, filter payroll.RunFilter) ([]payroll.RunResponse, int64, error) {
	companyID, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return nil, 0, err
	}

	runs, total, err := s.runRepo.ListRuns(ctx, companyID, filter)
	if err != nil {
		return nil, 0, err
	}

	result := make([]payroll.RunResponse, 0, len(runs))
	for _, run := range runs {
		result = append(result, mapToRunResponse(run))
	}
	return result, total, nil
}

func (s *PayrollServiceImpl) ListRecords(ctx context.Context, runID string) ([]payroll.RecordResponse, error) {
	companyID, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return nil, err
	}

	records, err := s.runRepo.ListRecordsByRun(ctx, runID, companyID)
	if err != nil {
		return nil, err
	}

	result := make([]payroll.RecordResponse, 0, len(records))
	for _, r := range records {
		result = append(result, mapToRecordResponse(r))
	}
	return result, nil
}

func (s *PayrollServiceImpl) FinalizeRun(ctx context.Context, id string) error {
	companyID, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return err
	}

	run, err := s.runRepo.GetRunByID(ctx, id, companyID)
	if err != nil {
		return err
	}
	if run.Status != payroll.RunStatusCompleted {
		return payroll.ErrRunNotFinalizable
	}

	return s.runRepo.FinalizeRun(ctx, id, companyID)
}

func (s *PayrollServiceImpl) RevertRun(ctx context.Context, id string) error {
	companyID, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return err
	}

	run, err := s.runRepo.GetRunByID(ctx, id, companyID)
	if err != nil {
		return err
	}
	switch run.Status {
	case payroll.RunStatusCompleted, payroll.RunStatusFailed, payroll.RunStatusFinalized:
		// revertible
	case payroll.RunStatusProcessing:
		// Processing is synchronous, so a row still in this state after
		// the request returned belongs to an aborted run. Reverting it is
		// the escape hatch that frees the period.
	case payroll.RunStatusReverted:
		return payroll.ErrRunAlreadyTerminal
	default:
		return payroll.ErrRunNotRevertible
	}

	return s.runRepo.RevertRun(ctx, id, companyID)
}

func (s *PayrollServiceImpl) GetSummary(ctx context.Context, month, year int) (payroll.RunSummaryResponse, error) {
	companyID, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return payroll.RunSummaryResponse{}, err
	}

	return s.runRepo.GetRunSummary(ctx, companyID, month, year)
}

// ========== HELPERS ==========

func mapToRunResponse(run payroll.PayrollRun) payroll.RunResponse {
	var finalizedAt, revertedAt *string
	if run.FinalizedAt != nil {
		str := run.FinalizedAt.Format(time.RFC3339)
		finalizedAt = &str
	}
	if run.RevertedAt != nil {
		str := run.RevertedAt.Format(time.RFC3339)
		revertedAt = &str
	}

	return payroll.RunResponse{
		ID:             run.ID,
		PeriodMonth:    run.PeriodMonth,
		PeriodYear:     run.PeriodYear,
		Status:         string(run.Status),
		TotalCount:     run.TotalCount,
		ProcessedCount: run.ProcessedCount,
		FailedCount:    run.FailedCount,
		Errors:         run.Errors,
		CreatedAt:      run.CreatedAt.Format(time.RFC3339),
		FinalizedAt:    finalizedAt,
		RevertedAt:     revertedAt,
	}
}

func mapToRecordResponse(r payroll.PayrollRecord) payroll.RecordResponse {
	return payroll.RecordResponse{
		ID:              r.ID,
		EmployeeID:      r.EmployeeID,
		EmployeeName:    r.EmployeeName,
		EmployeeCode:    r.EmployeeCode,
		PeriodMonth:     r.PeriodMonth,
		PeriodYear:      r.PeriodYear,
		WorkingDays:     r.WorkingDays,
		PaidDays:        r.PaidDays,
		LOPDays:         r.LOPDays,
		Earnings:        r.Earnings,
		GrossBeforeLOP:  r.GrossBeforeLOP,
		LOPDeduction:    r.LOPDeduction,
		Gross:           r.Gross,
		PFEmployee:      r.PFEmployee,
		ESIApplicable:   r.ESIApplicable,
		ESIEmployee:     r.ESIEmployee,
		ESIEmployer:     r.ESIEmployer,
		ESIReason:       r.ESIReason,
		PTAmount:        r.PTAmount,
		PTExempt:        r.PTExempt,
		PTReason:        r.PTReason,
		TDSAmount:       r.TDSAmount,
		OtherDeductions: r.OtherDeductions,
		TotalDeductions: r.TotalDeductions,
		Net:             r.Net,
	}
}
