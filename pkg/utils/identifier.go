package utils

import "strings"

// quotePairs maps an opening identifier quote to its closing counterpart.
var quotePairs = map[byte]byte{
	'`': '`',
	'"': '"',
	'[': ']',
}

// IsQuoted checks if a string is wrapped in a matching pair of identifier quotes.
// Backticks (MySQL), double quotes (ANSI/Postgres) and brackets (SQL Server)
// are recognized.
//
// Examples:
//   - "`table`" -> true
//   - "\"table\"" -> true
//   - "[table]" -> true
//   - "table" -> false
//   - "`table\"" -> false
func IsQuoted(s string) bool {
	if len(s) < 2 {
		return false
	}

	closing, ok := quotePairs[s[0]]
	return ok && s[len(s)-1] == closing
}

// StripQuotes removes a single pair of identifier quotes if present.
//
// Examples:
//   - "`users`" -> "users"
//   - "\"users\"" -> "users"
//   - "[users]" -> "users"
//   - "users" -> "users"
//   - "" -> ""
func StripQuotes(s string) string {
	s = strings.TrimSpace(s)
	if !IsQuoted(s) {
		return s
	}

	return s[1 : len(s)-1]
}

// BacktickIdentifier adds backticks around an identifier, handling nested identifiers.
// It properly handles database.table.column style identifiers by backticking each part.
//
// Examples:
//   - "table" -> "`table`"
//   - "database.table" -> "`database`.`table`"
//   - "`table`" -> "`table`" (already backticked, not double-backticked)
//   - "" -> ""
func BacktickIdentifier(name string) string {
	if name == "" {
		return ""
	}

	parts := strings.Split(name, ".")
	for i, part := range parts {
		parts[i] = "`" + StripQuotes(part) + "`"
	}

	return strings.Join(parts, ".")
}

// DoubleQuoteIdentifier adds ANSI double quotes around an identifier, quoting
// each part of a qualified name.
//
// Examples:
//   - "table" -> "\"table\""
//   - "public.users" -> "\"public\".\"users\""
//   - "`users`" -> "\"users\""
func DoubleQuoteIdentifier(name string) string {
	if name == "" {
		return ""
	}

	parts := strings.Split(name, ".")
	for i, part := range parts {
		parts[i] = `"` + StripQuotes(part) + `"`
	}

	return strings.Join(parts, ".")
}
