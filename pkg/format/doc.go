// Package format renders parsed migration operations back into SQL text.
//
// The main entry point is Down, which synthesizes a best-effort reverse
// migration for a list of operations. Operations are visited in reverse order
// so the generated SQL undoes the most recent change first:
//
//	ops := parser.Parse(`
//		CREATE TABLE users (id SERIAL PRIMARY KEY);
//		CREATE INDEX idx_users_id ON users (id);
//	`)
//	fmt.Println(format.Down(ops))
//
// Output:
//
//	DROP INDEX IF EXISTS idx_users_id;
//
//	DROP TABLE IF EXISTS users;
//
// The reversal is lossy. Dropped tables, dropped columns, dropped indexes and
// unrecognized statements cannot be rebuilt from the SQL alone, so a WARNING
// comment is emitted in their place and the generated down.sql should be
// reviewed before it is relied on.
//
// Describe renders a one line summary of an operation for reports.
package format
