// Package testdb provides in-memory store constructors for tests.
package testdb

import (
	"database/sql"
	"fmt"

	"github.com/PotatoBoi2658/notesapp/internal/db"
)

// NewStoreInMemory creates an in-memory Store with the full schema applied.
// Each call returns a completely isolated database. name keeps shared-cache
// connections within one test from colliding with another test's database.
func NewStoreInMemory(name string) (*db.Store, error) {
	if name == "" {
		name = "test"
	}

	// mode=memory with a named file keeps the database alive across the pool's
	// connections; a bare :memory: DSN gives every connection its own database.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", name)

	sqlDB, err := sql.Open(db.DriverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open in-memory database: %w", err)
	}

	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetMaxOpenConns(10)

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("ping in-memory database: %w", err)
	}

	if err := applyFastSQLitePragmas(sqlDB); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("apply fast SQLite pragmas: %w", err)
	}

	if _, err := sqlDB.Exec(db.Schema); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("initialize in-memory schema: %w", err)
	}

	return db.NewFromSQL(sqlDB), nil
}

func applyFastSQLitePragmas(sqlDB *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=MEMORY",
		"PRAGMA synchronous=OFF",
		"PRAGMA temp_store=MEMORY",
		"PRAGMA foreign_keys=ON",
	}
	for _, pragma := range pragmas {
		if _, err := sqlDB.Exec(pragma); err != nil {
			return err
		}
	}
	return nil
}
