// Package session persists browser sessions.
//
// A Session carries identity, expiry and string attributes. Stores keep it
// between requests:
//
//   - MemoryStore for tests and single process development;
//   - PostgresStore on a pgx pool;
//   - SQLiteStore on modernc.org/sqlite.
//
// SQL stores encode attributes with MessagePack and need their goose
// migrations applied first, see PostgresMigrations and SQLiteMigrations.
// A Janitor removes expired sessions on a cron schedule.
package session
