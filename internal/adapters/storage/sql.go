package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// SQL dialects
const (
	DialectSQLite   = "sqlite3"
	DialectPostgres = "postgres"
)

// SQLStorage persists the session in a session_entries table.
type SQLStorage struct {
	db *sqlx.DB
}

// OpenSQL connects to the database and applies pending migrations.
func OpenSQL(ctx context.Context, dialect, dsn string) (*SQLStorage, error) {
	db, err := sqlx.Open(dialect, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open session database: %w", err)
	}

	// An in-memory sqlite database exists per connection.
	if dialect == DialectSQLite {
		db.SetMaxOpenConns(1)
	}
	db.SetConnMaxIdleTime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping session database: %w", err)
	}

	m, err := NewMigrator(db, dialect)
	if err != nil {
		db.Close()
		return nil, err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		db.Close()
		return nil, fmt.Errorf("failed to migrate session database: %w", err)
	}

	return &SQLStorage{db: db}, nil
}

// NewMigrator builds a migrate instance over the embedded migrations. Closing
// the returned instance closes db as well.
func NewMigrator(db *sqlx.DB, dialect string) (*migrate.Migrate, error) {
	source, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to load migrations: %w", err)
	}

	var driver database.Driver
	switch dialect {
	case DialectSQLite:
		driver, err = sqlite3.WithInstance(db.DB, &sqlite3.Config{})
	case DialectPostgres:
		driver, err = postgres.WithInstance(db.DB, &postgres.Config{})
	default:
		return nil, fmt.Errorf("unsupported session dialect %q", dialect)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, dialect, driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migration instance: %w", err)
	}
	return m, nil
}

func (s *SQLStorage) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	query := s.db.Rebind(`SELECT entry_value FROM session_entries WHERE entry_key = ?`)
	err := s.db.GetContext(ctx, &value, query, key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read session entry %q: %w", key, err)
	}
	return value, true, nil
}

func (s *SQLStorage) Set(ctx context.Context, key, value string) error {
	query := s.db.Rebind(`
		INSERT INTO session_entries (entry_key, entry_value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (entry_key) DO UPDATE
		SET entry_value = excluded.entry_value, updated_at = CURRENT_TIMESTAMP`)
	if _, err := s.db.ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("failed to write session entry %q: %w", key, err)
	}
	return nil
}

func (s *SQLStorage) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM session_entries`); err != nil {
		return fmt.Errorf("failed to clear session entries: %w", err)
	}
	return nil
}

// DB exposes the connection for maintenance commands.
func (s *SQLStorage) DB() *sqlx.DB {
	return s.db
}

func (s *SQLStorage) Close() error {
	return s.db.Close()
}
