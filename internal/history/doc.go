// Package history records every submission in a SQLite database so past jobs
// can be listed and their bundle directories found again.
//
// The database carries a single schema version row. Opening a database
// written by a different schema version fails with ErrSchemaMismatch instead
// of migrating; the history is a convenience index over the bundle
// directories and can be deleted and rebuilt.
package history
