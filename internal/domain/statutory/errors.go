package statutory

import "errors"

var (
	ErrSlabNotFound         = errors.New("professional tax slab not found")
	ErrSlabOverlap          = errors.New("professional tax slab overlaps an existing active slab")
	ErrDeadlineNotFound     = errors.New("statutory deadline not found")
	ErrDeadlineAlreadyFiled = errors.New("statutory deadline already marked filed")
	ErrFileNotFound         = errors.New("statutory file not found")
	ErrRunNotGeneratable    = errors.New("payroll run is not in a state that allows file generation")
	ErrNoRecordsForPeriod   = errors.New("no payroll records found for the period")
	ErrEmployeeMissingPAN   = errors.New("employee has no PAN on record")
)
