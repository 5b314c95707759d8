package payroll

import (
	"context"

	"github.com/arthapay/payroll-backend-go/internal/domain/statutory"
)

// RunRepository defines data access for payroll runs and their records.
// All methods include companyID parameter to prevent cross-company data
// access.
type RunRepository interface {
	// CreateRun inserts a run in processing state. A second non-reverted
	// run for the same period fails with ErrRunAlreadyExists, mapped from
	// the partial unique index on (company_id, period_year, period_month).
	CreateRun(ctx context.Context, run PayrollRun) (PayrollRun, error)
	GetRunByID(ctx context.Context, id string, companyID string) (PayrollRun, error)
	GetRunByPeriod(ctx context.Context, month, year int, companyID string) (PayrollRun, error)
	ListRuns(ctx context.Context, companyID string, filter RunFilter) ([]PayrollRun, int64, error)

	// UpdateRunResult writes the post-processing status, counts and
	// per-employee errors.
	UpdateRunResult(ctx context.Context, run PayrollRun) error
	FinalizeRun(ctx context.Context, id string, companyID string) error
	RevertRun(ctx context.Context, id string, companyID string) error

	CreateRecord(ctx context.Context, record PayrollRecord) (PayrollRecord, error)
	ListRecordsByRun(ctx context.Context, runID string, companyID string) ([]PayrollRecord, error)
	ListRecordsByEmployeePeriods(ctx context.Context, employeeID string, companyID string, months []PeriodKey) ([]PayrollRecord, error)

	// Aggregations
	GetAttendanceSummary(ctx context.Context, companyID string, month, year int) ([]AttendanceSummary, error)
	GetRunSummary(ctx context.Context, companyID string, month, year int) (RunSummaryResponse, error)

	// WasESICovered reports whether the employee had an ESI-applicable
	// record in the given contribution period before (month, year).
	// Supports the "once covered, stays covered" rule.
	WasESICovered(ctx context.Context, employeeID string, companyID string, period statutory.ContributionPeriod, beforeMonth, beforeYear int) (bool, error)
}

// PeriodKey identifies one payroll month.
type PeriodKey struct {
	Month int
	Year  int
}
