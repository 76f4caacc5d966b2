// Package utils provides small helpers shared across the roadwork packages.
//
// # Identifier Utilities (identifier.go)
//
// Migration SQL comes from many dialects, so identifiers may be wrapped in
// backticks (MySQL), double quotes (Postgres, SQLite) or brackets. The helpers
// here normalize those forms:
//
//	utils.StripQuotes("`users`")             // users
//	utils.StripQuotes("[users]")             // users
//	utils.BacktickIdentifier("app.users")    // `app`.`users`
//	utils.DoubleQuoteIdentifier("app.users") // "app"."users"
//
// # Value Type Utilities (validation.go)
//
// IsNumericValue and IsBooleanValue decide whether a literal can be emitted
// without quotes, e.g. for column defaults in generated migrations:
//
//	value := "42"
//	if utils.IsNumericValue(value) || utils.IsBooleanValue(value) {
//		sql += " DEFAULT " + value
//	} else {
//		sql += " DEFAULT '" + value + "'"
//	}
//
// # Hashing (hash.go)
//
// Hash produces the "h1:" prefixed SHA256 digest stored alongside every entry
// in the migration history table, so an edited migration can be spotted.
package utils
