// Package executor runs migrations against a database.
//
// The Executor works on a single directory: it selects the SQL files for a
// direction (down.sql for Down, every other .sql file for Up), splits them
// into statements and executes them in order, stopping at the first failure
// with a *StatementError that names the file, statement index and SQL.
//
// The Runner sits on top and resolves migrations through a migrator.Store:
//
//   - Run executes one migration by name
//   - RunAll executes every migration, oldest first when going up and newest
//     first when going down (reset)
//   - Redo rolls a migration back and applies it again
//
// Successful runs are appended to the history table when a Recorder is
// configured. Failing to record is logged and does not fail the run.
//
// # Transactions
//
// By default statements auto-commit. With WithTransactions (or
// RunnerParams.Transactional) each file runs in one transaction on databases
// with transactional DDL (Postgres and SQLite). There is no atomicity across
// files or across the migrations of RunAll.
package executor
