package utils

import (
	"strconv"
	"strings"
)

// IsNumericValue checks if a string represents a valid numeric value, using
// strconv.ParseFloat so integers, floats and scientific notation all qualify.
//
// Examples:
//   - "123" -> true
//   - "-123.45" -> true
//   - "1.23e-4" -> true
//   - "1.2.3" -> false
//   - "" -> false
func IsNumericValue(value string) bool {
	if value == "" {
		return false
	}

	_, err := strconv.ParseFloat(value, 64)
	return err == nil
}

// IsBooleanValue checks if a string is a SQL boolean literal (case-insensitive).
//
// Examples:
//   - "true" -> true
//   - "FALSE" -> true
//   - "1" -> false (use IsNumericValue for numeric booleans)
//   - "yes" -> false
func IsBooleanValue(value string) bool {
	lowered := strings.ToLower(value)
	return lowered == "true" || lowered == "false"
}

// IsNullValue checks if a string is the SQL NULL literal (case-insensitive).
func IsNullValue(value string) bool {
	return strings.EqualFold(value, "null")
}

// SQLLiteral renders value as a SQL literal. Numbers, booleans, NULL and values
// that are already single-quoted are emitted as-is; anything else is wrapped in
// single quotes with embedded quotes doubled.
//
// Examples:
//   - "42" -> 42
//   - "true" -> true
//   - "draft" -> 'draft'
//   - "it's" -> 'it''s'
//   - "'x'" -> 'x'
func SQLLiteral(value string) string {
	switch {
	case IsNumericValue(value), IsBooleanValue(value), IsNullValue(value):
		return value
	case len(value) >= 2 && value[0] == '\'' && value[len(value)-1] == '\'':
		return value
	}

	return "'" + strings.ReplaceAll(value, "'", "''") + "'"
}
