package store

// Dialect abstracts SQL syntax differences between the SQLite and
// PostgreSQL blob store backends.
type Dialect interface {
	// DriverName returns the driver name for sql.Open().
	// SQLite: "sqlite", PostgreSQL: "postgres"
	DriverName() string

	// InitStatements returns backend-specific initialization statements
	// run once after opening the connection.
	InitStatements() []string

	// CreateBlobTable returns the CREATE TABLE statement for the blobs table.
	CreateBlobTable() string

	// UpsertBlob returns the insert-or-replace statement with two
	// placeholders: key, data.
	UpsertBlob() string

	// SelectBlob returns the select statement with one placeholder: key.
	SelectBlob() string

	// ListKeys returns the prefix scan statement with one placeholder:
	// the prefix pattern (already suffixed with '%').
	ListKeys() string
}

// DialectType identifies the store backend.
type DialectType string

const (
	DialectSQLite   DialectType = "sqlite"
	DialectPostgres DialectType = "postgres"
)

// NewDialect creates a Dialect for the given type.
func NewDialect(dialectType DialectType) Dialect {
	switch dialectType {
	case DialectPostgres:
		return &PostgresDialect{}
	default:
		return &SQLiteDialect{}
	}
}
