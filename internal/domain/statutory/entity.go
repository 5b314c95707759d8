package statutory

import "time"

// ProfessionalTaxSlab - one PT band for a state. Salary bounds are monthly
// gross in paise; SalaryTo nil means unbounded. Month nil means the slab
// applies every month; Gender nil means it applies to everyone. Slabs are
// soft-deleted via IsActive so historical runs stay recomputable.
type ProfessionalTaxSlab struct {
	ID         string
	StateCode  string
	SalaryFrom int64
	SalaryTo   *int64
	TaxAmount  int64
	Month      *int // 1-12
	Gender     *string
	IsActive   bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Matches reports whether the slab covers the given salary, month and
// gender. monthSpecific selects between the month-qualified pass and the
// general (all-month) pass of the lookup.
func (s ProfessionalTaxSlab) Matches(gross int64, month int, gender string, monthSpecific bool) bool {
	if !s.IsActive {
		return false
	}
	if monthSpecific {
		if s.Month == nil || *s.Month != month {
			return false
		}
	} else if s.Month != nil {
		return false
	}
	if s.Gender != nil && *s.Gender != gender {
		return false
	}
	if gross < s.SalaryFrom {
		return false
	}
	if s.SalaryTo != nil && gross >= *s.SalaryTo {
		return false
	}
	return true
}

// OverlapsAmbiguously reports whether two slabs could both match the
// same salary at the same lookup specificity, which would make slab
// resolution depend on an arbitrary tie-break. Month-qualified and
// general slabs never conflict with each other; neither do slabs scoped
// to different genders.
func (s ProfessionalTaxSlab) OverlapsAmbiguously(other ProfessionalTaxSlab) bool {
	if s.StateCode != other.StateCode {
		return false
	}
	if (s.Month == nil) != (other.Month == nil) {
		return false
	}
	if s.Month != nil && *s.Month != *other.Month {
		return false
	}
	if s.Gender != nil && other.Gender != nil && *s.Gender != *other.Gender {
		return false
	}
	if s.SalaryTo != nil && *s.SalaryTo <= other.SalaryFrom {
		return false
	}
	if other.SalaryTo != nil && *other.SalaryTo <= s.SalaryFrom {
		return false
	}
	return true
}

// DeadlineStatus enum
type DeadlineStatus string

const (
	DeadlineStatusPending       DeadlineStatus = "PENDING"
	DeadlineStatusFiled         DeadlineStatus = "FILED"
	DeadlineStatusOverdue       DeadlineStatus = "OVERDUE"
	DeadlineStatusNotApplicable DeadlineStatus = "NOT_APPLICABLE"
)

// Scheme enum - statutory schemes with filing obligations
type Scheme string

const (
	SchemePFECR  Scheme = "pf_ecr"
	SchemeESI    Scheme = "esi"
	SchemePT     Scheme = "pt"
	SchemeTDS24Q Scheme = "tds_24q"
)

// StatutoryDeadline - one compliance obligation for a company and period.
type StatutoryDeadline struct {
	ID              string
	CompanyID       string
	Scheme          Scheme
	PeriodMonth     int
	PeriodYear      int
	DueDate         time.Time
	Status          DeadlineStatus
	FilingReference *string
	FiledAt         *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// FileType enum
type FileType string

const (
	FileTypeECR        FileType = "ecr"
	FileTypeESIChallan FileType = "esi_challan"
	FileTypeForm24Q    FileType = "form24q"
)

// StatutoryFile - audit record of a generated submission artifact.
// Created once, never mutated.
type StatutoryFile struct {
	ID           string
	CompanyID    string
	RunID        string
	FileType     FileType
	RecordCount  int
	SkippedCount int
	TotalAmount  int64 // paise
	StoragePath  string
	GeneratedAt  time.Time
}

// ContributionPeriod - an ESI half-year contribution window. The
// October-March window crosses the calendar-year boundary, so start and
// end carry their own years.
type ContributionPeriod struct {
	StartMonth int
	StartYear  int
	EndMonth   int
	EndYear    int
}

// Contains reports whether (month, year) falls inside the period.
func (p ContributionPeriod) Contains(month, year int) bool {
	start := p.StartYear*12 + p.StartMonth
	end := p.EndYear*12 + p.EndMonth
	m := year*12 + month
	return m >= start && m <= end
}
