// Package history records which migrations have been run against a database.
//
// Every execution appends a row to the _roadwork_migrations table with the
// migration directory name, the direction, the time it finished and the h1
// hash of the executed file. Rows are never updated, so the table is a full
// audit trail and the current state of a migration is derived from its latest
// row (see Status).
package history
