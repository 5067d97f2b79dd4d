// Package sqlite provides a SQLite-backed query cache.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. Cached answers survive restarts, unlike
// the in-memory backend.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
//
// # Expiry
//
// Every entry carries an absolute expiry time. Expired rows are ignored on read
// and deleted lazily; DeleteExpired removes them in bulk.
//
// # Data Location
//
// By default, the database is stored at ~/.pagelens/data/cache.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking provided
// by SQLite in WAL mode.
package sqlite
