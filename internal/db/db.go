// Package db provides the shared SQLite store backing users, sessions, notes,
// tags, and the note/tag join table. The driver is go-sqlcipher, so the file
// can optionally be encrypted with a 32-byte key; without a key it behaves as
// plain SQLite.
package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mutecomm/go-sqlcipher/v4"
)

const (
	// DriverName is the SQLCipher-capable SQLite driver registered by
	// go-sqlcipher.
	DriverName = "sqlite3"

	// MaxOpenConns caps connections to the shared database. SQLite is
	// single-writer, so high connection counts are counterproductive.
	MaxOpenConns = 10

	// MaxIdleConns is the maximum number of idle connections.
	MaxIdleConns = 2
)

// Store wraps the sql.DB connection to the shared application database.
type Store struct {
	db *sql.DB
}

// NewFromSQL wraps an existing sql.DB as a Store. The caller is responsible
// for having applied the schema; Open does this for file-backed stores.
func NewFromSQL(sqlDB *sql.DB) *Store {
	return &Store{db: sqlDB}
}

// Open opens (creating if needed) the shared database at path. hexKey, when
// non-empty, must be 64 hex characters and enables SQLCipher encryption.
func Open(path, hexKey string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	dsn := path
	if hexKey != "" {
		dsn = fmt.Sprintf("%s?_pragma_key=x'%s'&_pragma_cipher_page_size=4096", path, hexKey)
	}
	dsn = appendSQLiteParams(dsn, sqliteCommonParams())

	sqlDB, err := sql.Open(DriverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB.SetMaxOpenConns(MaxOpenConns)
	sqlDB.SetMaxIdleConns(MaxIdleConns)

	// A plain Ping succeeds even with a wrong encryption key; reading the
	// schema version forces SQLCipher to actually decrypt a page.
	var sqliteVersion string
	if err := sqlDB.QueryRow("SELECT sqlite_version()").Scan(&sqliteVersion); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("verify database connection: %w", err)
	}

	if _, err := sqlDB.Exec(Schema); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return NewFromSQL(sqlDB), nil
}

// DB returns the underlying sql.DB for direct access when needed.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the store's connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func sqliteCommonParams() string {
	// Production-safe defaults: WAL + NORMAL provides good throughput while
	// preserving safety. Foreign keys must be on for note_tags cascades.
	return "_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000&_foreign_keys=on"
}

func appendSQLiteParams(dsn, params string) string {
	if strings.Contains(dsn, "?") {
		return dsn + "&" + params
	}
	return dsn + "?" + params
}
