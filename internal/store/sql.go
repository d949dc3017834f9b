package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// SQLStore is a Store backed by SQLite or PostgreSQL.
type SQLStore struct {
	db      *sql.DB
	dialect Dialect
}

// Open opens a SQLite-backed store at the given file path,
// creating the file and parent directory if needed.
func Open(path string) (*SQLStore, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}
	return openWithDialect(NewDialect(DialectSQLite), path)
}

// OpenPostgres opens a PostgreSQL-backed store with the given DSN.
func OpenPostgres(dsn string) (*SQLStore, error) {
	return openWithDialect(NewDialect(DialectPostgres), dsn)
}

func openWithDialect(dialect Dialect, dataSource string) (*SQLStore, error) {
	db, err := sql.Open(dialect.DriverName(), dataSource)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	for _, stmt := range dialect.InitStatements() {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to initialize store: %w", err)
		}
	}

	if _, err := db.Exec(dialect.CreateBlobTable()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create blobs table: %w", err)
	}

	return &SQLStore{db: db, dialect: dialect}, nil
}

// Put stores data under key, replacing any previous value.
func (s *SQLStore) Put(key string, data []byte) error {
	if _, err := s.db.Exec(s.dialect.UpsertBlob(), key, data); err != nil {
		return fmt.Errorf("failed to store %q: %w", key, err)
	}
	return nil
}

// Get returns the value for key, or false if absent.
func (s *SQLStore) Get(key string) ([]byte, bool, error) {
	var data []byte
	err := s.db.QueryRow(s.dialect.SelectBlob(), key).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read %q: %w", key, err)
	}
	return data, true, nil
}

// List returns all keys with the given prefix, sorted.
func (s *SQLStore) List(prefix string) ([]string, error) {
	rows, err := s.db.Query(s.dialect.ListKeys(), escapeLike(prefix)+"%")
	if err != nil {
		return nil, fmt.Errorf("failed to list keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("failed to scan key: %w", err)
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}

// Close closes the underlying database connection.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

// escapeLike escapes LIKE wildcards so cache keys containing '%' or '_'
// match literally. Keys are hex hashes plus fixed suffixes, but the
// escape keeps List correct for any key.
func escapeLike(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '%', '_', '\\':
			out = append(out, '\\')
		}
		out = append(out, s[i])
	}
	return string(out)
}
