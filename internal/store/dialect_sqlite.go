package store

// SQLiteDialect implements Dialect for SQLite databases.
type SQLiteDialect struct{}

// DriverName returns "sqlite" for the modernc.org/sqlite driver.
func (d *SQLiteDialect) DriverName() string {
	return "sqlite"
}

// InitStatements returns SQLite PRAGMA statements.
// WAL mode allows concurrent readers while one writer persists a tileset.
func (d *SQLiteDialect) InitStatements() []string {
	return []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
	}
}

// CreateBlobTable returns the blobs table schema for SQLite.
func (d *SQLiteDialect) CreateBlobTable() string {
	return `CREATE TABLE IF NOT EXISTS blobs (
		key TEXT PRIMARY KEY,
		data BLOB NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`
}

// UpsertBlob returns the insert-or-replace statement for SQLite.
func (d *SQLiteDialect) UpsertBlob() string {
	return "INSERT INTO blobs (key, data) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET data = excluded.data"
}

// SelectBlob returns the select statement for SQLite.
func (d *SQLiteDialect) SelectBlob() string {
	return "SELECT data FROM blobs WHERE key = ?"
}

// ListKeys returns the prefix scan statement for SQLite.
func (d *SQLiteDialect) ListKeys() string {
	return `SELECT key FROM blobs WHERE key LIKE ? ESCAPE '\' ORDER BY key`
}
