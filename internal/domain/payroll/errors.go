package payroll

import "errors"

var (
	ErrRunNotFound        = errors.New("payroll run not found")
	ErrRunAlreadyExists   = errors.New("a payroll run already exists for this period")
	ErrRunNotRevertible   = errors.New("payroll run cannot be reverted in its current state")
	ErrRunNotFinalizable  = errors.New("payroll run cannot be finalized in its current state")
	ErrRunAlreadyTerminal = errors.New("payroll run is already in a terminal state")
	ErrRecordNotFound     = errors.New("payroll record not found")
	ErrInvalidPeriod      = errors.New("invalid payroll period")
	ErrNoActiveEmployees  = errors.New("no active employees to run payroll for")
)
