package db

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// Init opens and pings the database. driver is "sqlite" or "pgx".
func Init(driver, connection string) (*sqlx.DB, error) {
	if _, ok := dialectMap[driver]; !ok {
		return nil, fmt.Errorf("unsupported DB_DRIVER %q (use sqlite or pgx)", driver)
	}

	if driver == "sqlite" {
		err := ensureDataDir(connection)
		if err != nil {
			return nil, err
		}
	}

	db, err := sqlx.Connect(driver, connection)
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}

	if driver == "sqlite" {
		// One writer at a time; busy_timeout in the DSN covers the waits.
		db.SetMaxOpenConns(4)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
	}
	db.SetConnMaxLifetime(5 * time.Minute)

	slog.Info("database connected", "driver", driver)
	return db, nil
}

// ensureDataDir creates the directory of a file-backed SQLite DSN.
func ensureDataDir(connection string) error {
	path, _, _ := strings.Cut(connection, "?")
	path = strings.TrimPrefix(path, "file:")
	if path == "" || path == ":memory:" {
		return nil
	}

	err := os.MkdirAll(filepath.Dir(path), 0755)
	if err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	return nil
}
