package statutory

import (
	"github.com/arthapay/payroll-backend-go/internal/pkg/validator"
)

// ========== CALCULATOR RESULTS ==========

// ESIResult - outcome of an ESI eligibility and contribution calculation.
// Amounts are paise.
type ESIResult struct {
	Applicable           bool   `json:"applicable"`
	EmployeeContribution int64  `json:"employee_contribution"`
	EmployerContribution int64  `json:"employer_contribution"`
	GrossUsed            int64  `json:"gross_used"`
	Reason               string `json:"reason,omitempty"`
}

// PTInput - one monthly Professional Tax evaluation.
type PTInput struct {
	StateCode   string
	GrossSalary int64
	Month       int // 1-12
	Gender      string
}

func (in PTInput) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidStateCode(in.StateCode) {
		errs = append(errs, validator.ValidationError{Field: "state_code", Message: "must be a valid two-letter state code"})
	}
	if in.GrossSalary < 0 {
		errs = append(errs, validator.ValidationError{Field: "gross_salary", Message: "must be non-negative"})
	}
	if in.Month < 1 || in.Month > 12 {
		errs = append(errs, validator.ValidationError{Field: "month", Message: "must be between 1 and 12"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// PTResult - resolved Professional Tax for one month. A lookup miss is not
// an error: IsExempt is set and Reason explains why.
type PTResult struct {
	TaxAmount int64   `json:"tax_amount"`
	SlabID    *string `json:"slab_id,omitempty"`
	IsExempt  bool    `json:"is_exempt"`
	Reason    string  `json:"reason,omitempty"`
}

// PFResult - Provident Fund contribution split for one record. EmployerPF
// is the employer share net of EPS, as remitted on the ECR.
type PFResult struct {
	Wage       int64 `json:"wage"`
	Employee   int64 `json:"employee"`
	EPS        int64 `json:"eps"`
	EmployerPF int64 `json:"employer_pf"`
}

// ========== FILE GENERATION ==========

// FileSummary - aggregates carried on the trailing summary line of a
// generated statutory file.
type FileSummary struct {
	RecordCount   int   `json:"record_count"`
	TotalWages    int64 `json:"total_wages"`
	TotalEmployee int64 `json:"total_employee"`
	TotalEmployer int64 `json:"total_employer"`
}

// SkippedRecord - a payroll record excluded from a statutory file, with
// the reason. Surfaced to the caller instead of being dropped silently.
type SkippedRecord struct {
	EmployeeID   string `json:"employee_id"`
	EmployeeName string `json:"employee_name"`
	Reason       string `json:"reason"`
}

type GeneratedFileResponse struct {
	FileID      string          `json:"file_id"`
	FileType    string          `json:"file_type"`
	Content     string          `json:"content"`
	Summary     FileSummary     `json:"summary"`
	Skipped     []SkippedRecord `json:"skipped,omitempty"`
	StoragePath string          `json:"storage_path"`
	PeriodMonth int             `json:"period_month"`
	PeriodYear  int             `json:"period_year"`
}

// FileResponse - one audit row of a previously generated artifact.
type FileResponse struct {
	ID           string `json:"id"`
	RunID        string `json:"run_id"`
	FileType     string `json:"file_type"`
	RecordCount  int    `json:"record_count"`
	SkippedCount int    `json:"skipped_count"`
	TotalAmount  int64  `json:"total_amount"`
	StoragePath  string `json:"storage_path"`
	GeneratedAt  string `json:"generated_at"`
}

// Form24QDeductee - one deductee row of a quarterly Form 24Q return.
type Form24QDeductee struct {
	PAN          string  `json:"pan"`
	EmployeeName string  `json:"employee_name"`
	MonthlyTDS   []int64 `json:"monthly_tds"` // one entry per month of the quarter
	TotalTDS     int64   `json:"total_tds"`
	TotalPaid    int64   `json:"total_paid"`
}

// Form24QData - structured quarterly TDS return, rendered as JSON.
type Form24QData struct {
	Quarter       int               `json:"quarter"` // 1-4, Q1 = Apr-Jun
	FinancialYear string            `json:"financial_year"`
	Deductees     []Form24QDeductee `json:"deductees"`
	TotalTDS      int64             `json:"total_tds"`
	TotalPaid     int64             `json:"total_paid"`
	Skipped       []SkippedRecord   `json:"skipped,omitempty"`
}

// Form16Data - annual TDS certificate data for one employee.
type Form16Data struct {
	EmployeeName      string `json:"employee_name"`
	EmployeeCode      string `json:"employee_code"`
	PAN               string `json:"pan"`
	FinancialYear     string `json:"financial_year"`
	AssessmentYear    string `json:"assessment_year"`
	GrossSalary       int64  `json:"gross_salary"`
	StandardDeduction int64  `json:"standard_deduction"`
	ProfessionalTax   int64  `json:"professional_tax"`
	TaxableIncome     int64  `json:"taxable_income"`
	TaxOnIncome       int64  `json:"tax_on_income"`
	TDSDeducted       int64  `json:"tds_deducted"`
	MonthsCovered     int    `json:"months_covered"`
}

// ========== SLAB DTOs ==========

type CreateSlabRequest struct {
	StateCode  string  `json:"state_code"`
	SalaryFrom int64   `json:"salary_from"`
	SalaryTo   *int64  `json:"salary_to,omitempty"`
	TaxAmount  int64   `json:"tax_amount"`
	Month      *int    `json:"month,omitempty"`
	Gender     *string `json:"gender,omitempty"`
}

func (r *CreateSlabRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidStateCode(r.StateCode) {
		errs = append(errs, validator.ValidationError{Field: "state_code", Message: "must be a valid two-letter state code"})
	}
	if r.SalaryFrom < 0 {
		errs = append(errs, validator.ValidationError{Field: "salary_from", Message: "must be non-negative"})
	}
	if r.SalaryTo != nil && *r.SalaryTo <= r.SalaryFrom {
		errs = append(errs, validator.ValidationError{Field: "salary_to", Message: "must be greater than salary_from"})
	}
	if r.TaxAmount < 0 {
		errs = append(errs, validator.ValidationError{Field: "tax_amount", Message: "must be non-negative"})
	}
	if r.Month != nil && (*r.Month < 1 || *r.Month > 12) {
		errs = append(errs, validator.ValidationError{Field: "month", Message: "must be between 1 and 12"})
	}
	if r.Gender != nil && *r.Gender != "male" && *r.Gender != "female" {
		errs = append(errs, validator.ValidationError{Field: "gender", Message: "must be 'male' or 'female'"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type SlabResponse struct {
	ID         string  `json:"id"`
	StateCode  string  `json:"state_code"`
	SalaryFrom int64   `json:"salary_from"`
	SalaryTo   *int64  `json:"salary_to,omitempty"`
	TaxAmount  int64   `json:"tax_amount"`
	Month      *int    `json:"month,omitempty"`
	Gender     *string `json:"gender,omitempty"`
	IsActive   bool    `json:"is_active"`
}

// ========== DEADLINE DTOs ==========

type DeadlineResponse struct {
	ID              string  `json:"id"`
	Scheme          string  `json:"scheme"`
	PeriodMonth     int     `json:"period_month"`
	PeriodYear      int     `json:"period_year"`
	DueDate         string  `json:"due_date"`
	Status          string  `json:"status"`
	FilingReference *string `json:"filing_reference,omitempty"`
	FiledAt         *string `json:"filed_at,omitempty"`
}

type MarkFiledRequest struct {
	FilingReference string `json:"filing_reference"`
}

func (r *MarkFiledRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.FilingReference) {
		errs = append(errs, validator.ValidationError{Field: "filing_reference", Message: "is required"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type DeadlineFilter struct {
	Scheme      *Scheme
	Status      *DeadlineStatus
	PeriodYear  *int
	PeriodMonth *int
}
