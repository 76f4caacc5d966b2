// Package parser classifies migration SQL into a small set of operations.
//
// It is deliberately not a SQL grammar. Statements are found with a lexer that
// understands comments and quoting, then each statement is matched against a
// handful of patterns for the DDL shapes that matter when reversing a
// migration:
//
//   - CREATE TABLE [IF NOT EXISTS] name (...)
//   - DROP TABLE [IF EXISTS] name
//   - ALTER TABLE name ADD [COLUMN] ... / DROP [COLUMN] ...
//   - CREATE [UNIQUE] INDEX name ON table ...
//   - DROP INDEX [IF EXISTS] name
//
// Anything else, including recognized prefixes that don't match their
// pattern, is returned as *RawSQL. Parsing never fails.
//
// Basic usage:
//
//	for _, op := range parser.Parse(sql) {
//		switch op := op.(type) {
//		case *parser.CreateTable:
//			fmt.Println("create", op.Table, op.Columns)
//		case *parser.RawSQL:
//			fmt.Println("unrecognized:", op.SQL)
//		}
//	}
//
// Split is also exported for callers that only need statement boundaries, such
// as the migration executor.
package parser
