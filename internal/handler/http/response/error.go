package response

import (
	"errors"
	"net/http"

	"github.com/arthapay/payroll-backend-go/internal/domain/auth"
	"github.com/arthapay/payroll-backend-go/internal/domain/employee"
	"github.com/arthapay/payroll-backend-go/internal/domain/payroll"
	"github.com/arthapay/payroll-backend-go/internal/domain/statutory"
	"github.com/arthapay/payroll-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Auth domain errors
	case errors.Is(err, auth.ErrInvalidToken):
		Unauthorized(w, err.Error())
	case errors.Is(err, auth.ErrCompanyClaimMissing):
		Unauthorized(w, "Company claim missing from token")
	case errors.Is(err, auth.ErrAdminPrivilegeRequired):
		Forbidden(w, "Admin privilege required")

	// Employee domain errors
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")
	case errors.Is(err, employee.ErrSalaryStructureNotFound):
		UnprocessableEntity(w, "Employee has no active salary structure")

	// Payroll domain errors
	case errors.Is(err, payroll.ErrRunNotFound):
		NotFound(w, "Payroll run not found")
	case errors.Is(err, payroll.ErrRunAlreadyExists):
		Conflict(w, "A payroll run already exists for this period")
	case errors.Is(err, payroll.ErrRunNotFinalizable):
		Conflict(w, "Only a completed run can be finalized")
	case errors.Is(err, payroll.ErrRunNotRevertible):
		Conflict(w, "Run cannot be reverted in its current state")
	case errors.Is(err, payroll.ErrRunAlreadyTerminal):
		Conflict(w, "Run has already been reverted")
	case errors.Is(err, payroll.ErrRecordNotFound):
		NotFound(w, "Payroll record not found")
	case errors.Is(err, payroll.ErrInvalidPeriod):
		BadRequest(w, "Invalid payroll period", nil)
	case errors.Is(err, payroll.ErrNoActiveEmployees):
		UnprocessableEntity(w, "No active employees to process")

	// Statutory domain errors
	case errors.Is(err, statutory.ErrSlabNotFound):
		NotFound(w, "Professional tax slab not found")
	case errors.Is(err, statutory.ErrSlabOverlap):
		Conflict(w, "Slab overlaps an existing active slab for the same state, month and gender")
	case errors.Is(err, statutory.ErrDeadlineNotFound):
		NotFound(w, "Statutory deadline not found")
	case errors.Is(err, statutory.ErrDeadlineAlreadyFiled):
		Conflict(w, "Deadline has already been marked as filed")
	case errors.Is(err, statutory.ErrFileNotFound):
		NotFound(w, "Statutory file not found")
	case errors.Is(err, statutory.ErrRunNotGeneratable):
		Conflict(w, "Statutory files can only be generated from a completed or finalized run")
	case errors.Is(err, statutory.ErrNoRecordsForPeriod):
		UnprocessableEntity(w, "No payroll records found for the period")
	case errors.Is(err, statutory.ErrEmployeeMissingPAN):
		UnprocessableEntity(w, "Employee has no valid PAN on record")

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
