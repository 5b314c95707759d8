package employee

import "time"

// Gender enum
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

// Employee - payroll-relevant snapshot of an employee
type Employee struct {
	ID            string
	CompanyID     string
	EmployeeCode  string
	FullName      string
	Gender        Gender
	WorkStateCode string // two-letter Indian state code, e.g. "KA"
	PAN           *string
	UAN           *string
	ESICNumber    *string
	PFEnrolled    bool
	DateOfJoining time.Time
	IsActive      bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ComponentKind enum
type ComponentKind string

const (
	ComponentKindEarning   ComponentKind = "earning"
	ComponentKindDeduction ComponentKind = "deduction"
)

// SalaryComponent - one line of an employee's monthly salary structure.
// Amounts are integer paise.
type SalaryComponent struct {
	ID            string
	EmployeeID    string
	Code          string // basic, hra, special_allowance, ...
	Name          string
	Kind          ComponentKind
	MonthlyAmount int64
	InPFWage      bool // counts toward the PF wage base (basic + DA)
	IsActive      bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
