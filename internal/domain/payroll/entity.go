package payroll

import "time"

// RunStatus enum - PayrollRun lifecycle. finalized and reverted are
// terminal; records of a terminal run are immutable history.
type RunStatus string

const (
	RunStatusProcessing RunStatus = "processing"
	RunStatusCompleted  RunStatus = "completed"
	RunStatusFailed     RunStatus = "failed"
	RunStatusFinalized  RunStatus = "finalized"
	RunStatusReverted   RunStatus = "reverted"
)

// PayrollRun - one payroll computation for a (month, year) period. At most
// one non-reverted run exists per company and period, enforced by a
// partial unique index.
type PayrollRun struct {
	ID             string
	CompanyID      string
	PeriodMonth    int
	PeriodYear     int
	Status         RunStatus
	TotalCount     int
	ProcessedCount int
	FailedCount    int
	Errors         []RunError
	FinalizedAt    *time.Time
	RevertedAt     *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// RunError - a per-employee computation failure. Stored on the run so a
// partially successful run keeps an audit of what was skipped.
type RunError struct {
	EmployeeID   string `json:"employee_id"`
	EmployeeCode string `json:"employee_code"`
	Message      string `json:"message"`
}

// ComponentAmount - one earnings line on a record: the structure amount
// and the amount actually earned after pro-ration. Paise.
type ComponentAmount struct {
	Code   string `json:"code"`
	Name   string `json:"name"`
	Full   int64  `json:"full"`
	Earned int64  `json:"earned"`
}

// PayrollRecord - computed payroll for one employee in one run. All money
// fields are integer paise. Every rounding happens at the point of
// computation, so the component figures sum exactly to the totals.
type PayrollRecord struct {
	ID          string
	RunID       string
	EmployeeID  string
	CompanyID   string
	PeriodMonth int
	PeriodYear  int

	// Attendance snapshot
	WorkingDays int
	PaidDays    int
	LOPDays     int

	// Earnings
	Earnings       []ComponentAmount
	GrossBeforeLOP int64
	LOPDeduction   int64
	Gross          int64

	// Deductions
	PFWage          int64
	PFEmployee      int64
	PFEmployerEPS   int64
	PFEmployerDiff  int64
	ESIApplicable   bool
	ESIEmployee     int64
	ESIEmployer     int64
	ESIReason       *string
	PTAmount        int64
	PTSlabID        *string
	PTExempt        bool
	PTReason        *string
	TDSAmount       int64
	OtherDeductions int64

	TotalDeductions int64
	Net             int64

	CreatedAt time.Time

	// Employee snapshot carried for statutory file generation
	EmployeeName  string
	EmployeeCode  string
	Gender        string
	WorkStateCode string
	UAN           *string
	ESICNumber    *string
	PAN           *string
}

// AttendanceSummary - attendance aggregates feeding one record.
// PaidDays + LOPDays = WorkingDays.
type AttendanceSummary struct {
	EmployeeID  string
	WorkingDays int
	PaidDays    int
	LOPDays     int
}
