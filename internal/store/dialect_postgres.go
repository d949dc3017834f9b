package store

// PostgresDialect implements Dialect for PostgreSQL databases.
type PostgresDialect struct{}

// DriverName returns "postgres" for the lib/pq driver.
func (d *PostgresDialect) DriverName() string {
	return "postgres"
}

// InitStatements returns PostgreSQL initialization statements.
// PostgreSQL needs no session setup for a plain blob table.
func (d *PostgresDialect) InitStatements() []string {
	return nil
}

// CreateBlobTable returns the blobs table schema for PostgreSQL.
func (d *PostgresDialect) CreateBlobTable() string {
	return `CREATE TABLE IF NOT EXISTS blobs (
		key TEXT PRIMARY KEY,
		data BYTEA NOT NULL,
		created_at TIMESTAMPTZ DEFAULT NOW()
	)`
}

// UpsertBlob returns the insert-or-replace statement for PostgreSQL.
func (d *PostgresDialect) UpsertBlob() string {
	return "INSERT INTO blobs (key, data) VALUES ($1, $2) ON CONFLICT (key) DO UPDATE SET data = EXCLUDED.data"
}

// SelectBlob returns the select statement for PostgreSQL.
func (d *PostgresDialect) SelectBlob() string {
	return "SELECT data FROM blobs WHERE key = $1"
}

// ListKeys returns the prefix scan statement for PostgreSQL.
func (d *PostgresDialect) ListKeys() string {
	return `SELECT key FROM blobs WHERE key LIKE $1 ESCAPE '\' ORDER BY key`
}
