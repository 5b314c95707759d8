package validator

import (
	"regexp"
	"strings"
)

type ValidationError struct {
	Field   string
	Message string
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	var msgs []string
	for _, err := range v {
		msgs = append(msgs, err.Field+": "+err.Message)
	}
	return strings.Join(msgs, "; ")
}

func (v ValidationErrors) ToMap() map[string]string {
	result := make(map[string]string)
	for _, err := range v {
		result[err.Field] = err.Message
	}
	return result
}

// IsEmpty checks if a string is empty after trimming whitespace.
func IsEmpty(s string) bool {
	return strings.TrimSpace(s) == ""
}

// Numeric validation
var numericRegex = regexp.MustCompile(`^[0-9]+$`)

func IsNumeric(s string) bool {
	return numericRegex.MatchString(s)
}

// PAN validation (Indian income-tax permanent account number)
var panRegex = regexp.MustCompile(`^[A-Z]{5}[0-9]{4}[A-Z]$`)

func IsValidPAN(pan string) bool {
	return panRegex.MatchString(pan)
}

// UAN validation: 12-digit PF universal account number.
func IsValidUAN(uan string) bool {
	return len(uan) == 12 && IsNumeric(uan)
}

// ESIC insurance number: 10 digits, or 17 for numbers issued under the
// older scheme.
func IsValidESICNumber(n string) bool {
	return (len(n) == 10 || len(n) == 17) && IsNumeric(n)
}

// Indian states and union territories by two-letter code.
var stateCodes = map[string]struct{}{
	"AN": {}, "AP": {}, "AR": {}, "AS": {}, "BR": {}, "CH": {}, "CT": {},
	"DD": {}, "DL": {}, "DN": {}, "GA": {}, "GJ": {}, "HP": {}, "HR": {},
	"JH": {}, "JK": {}, "KA": {}, "KL": {}, "LA": {}, "LD": {}, "MH": {},
	"ML": {}, "MN": {}, "MP": {}, "MZ": {}, "NL": {}, "OR": {}, "PB": {},
	"PY": {}, "RJ": {}, "SK": {}, "TN": {}, "TR": {}, "TS": {}, "UK": {},
	"UP": {}, "WB": {},
}

func IsValidStateCode(code string) bool {
	_, ok := stateCodes[strings.ToUpper(code)]
	return ok
}

// UUIDv7 regex: version 7 (the 15th character must be '7'), all lowercase hex digits.
var uuidv7Regex = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-7[0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`)

// UUIDv7 validation
func IsValidUUID(uuid string) bool {
	return uuidv7Regex.MatchString(strings.ToLower(uuid))
}

// Slice contains check
func IsInSlice(value string, slice []string) bool {
	for _, item := range slice {
		if item == value {
			return true
		}
	}
	return false
}
