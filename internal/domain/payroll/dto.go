package payroll

import (
	"time"

	"github.com/arthapay/payroll-backend-go/internal/pkg/validator"
)

// ========== RUN DTOs ==========

type CreateRunRequest struct {
	PeriodMonth int `json:"period_month"`
	PeriodYear  int `json:"period_year"`
}

func (r *CreateRunRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.PeriodMonth < 1 || r.PeriodMonth > 12 {
		errs = append(errs, validator.ValidationError{Field: "period_month", Message: "must be between 1 and 12"})
	}
	if r.PeriodYear < 2000 || r.PeriodYear > time.Now().Year()+1 {
		errs = append(errs, validator.ValidationError{Field: "period_year", Message: "is out of range"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type RunResponse struct {
	ID             string     `json:"id"`
	PeriodMonth    int        `json:"period_month"`
	PeriodYear     int        `json:"period_year"`
	Status         string     `json:"status"`
	TotalCount     int        `json:"total_count"`
	ProcessedCount int        `json:"processed_count"`
	FailedCount    int        `json:"failed_count"`
	Errors         []RunError `json:"errors,omitempty"`
	CreatedAt      string     `json:"created_at"`
	FinalizedAt    *string    `json:"finalized_at,omitempty"`
	RevertedAt     *string    `json:"reverted_at,omitempty"`
}

type RunFilter struct {
	Year   *int
	Status *RunStatus
	Page   int
	Limit  int
}

// ========== RECORD DTOs ==========

type RecordResponse struct {
	ID           string `json:"id"`
	EmployeeID   string `json:"employee_id"`
	EmployeeName string `json:"employee_name"`
	EmployeeCode string `json:"employee_code"`
	PeriodMonth  int    `json:"period_month"`
	PeriodYear   int    `json:"period_year"`

	WorkingDays int `json:"working_days"`
	PaidDays    int `json:"paid_days"`
	LOPDays     int `json:"lop_days"`

	Earnings       []ComponentAmount `json:"earnings"`
	GrossBeforeLOP int64             `json:"gross_before_lop"`
	LOPDeduction   int64             `json:"lop_deduction"`
	Gross          int64             `json:"gross"`

	PFEmployee      int64   `json:"pf_employee"`
	ESIApplicable   bool    `json:"esi_applicable"`
	ESIEmployee     int64   `json:"esi_employee"`
	ESIEmployer     int64   `json:"esi_employer"`
	ESIReason       *string `json:"esi_reason,omitempty"`
	PTAmount        int64   `json:"pt_amount"`
	PTExempt        bool    `json:"pt_exempt"`
	PTReason        *string `json:"pt_reason,omitempty"`
	TDSAmount       int64   `json:"tds_amount"`
	OtherDeductions int64   `json:"other_deductions"`

	TotalDeductions int64 `json:"total_deductions"`
	Net             int64 `json:"net"`
}

// ========== SUMMARY DTOs ==========

type RunSummaryResponse struct {
	PeriodMonth     int   `json:"period_month"`
	PeriodYear      int   `json:"period_year"`
	EmployeeCount   int   `json:"employee_count"`
	TotalGross      int64 `json:"total_gross"`
	TotalPF         int64 `json:"total_pf"`
	TotalESI        int64 `json:"total_esi"`
	TotalPT         int64 `json:"total_pt"`
	TotalTDS        int64 `json:"total_tds"`
	TotalDeductions int64 `json:"total_deductions"`
	TotalNet        int64 `json:"total_net"`
}
