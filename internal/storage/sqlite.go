package storage

import (
	"context"
	"database/sql"
	"fmt"

	// Pure-Go SQLite driver.
	_ "modernc.org/sqlite"
)

// SQLiteStorage implements Storage using SQLite.
type SQLiteStorage struct {
	path      string
	masterKey []byte
	db        *sql.DB

	credentials *sqliteCredentialRepo
	devices     *sqliteDeviceRepo
	events      *sqliteEventRepo
	settings    *sqliteSettingsRepo
}

// NewSQLiteStorage creates a new SQLite storage. The master key is used
// to encrypt tenant client secrets at rest.
func NewSQLiteStorage(path string, masterKey []byte) *SQLiteStorage {
	return &SQLiteStorage{
		path:      path,
		masterKey: masterKey,
	}
}

// Open initializes the database connection.
func (s *SQLiteStorage) Open() error {
	ctx := context.Background()

	if len(s.masterKey) == 0 {
		return fmt.Errorf("master key is required")
	}

	db, err := sql.Open("sqlite", "file:"+s.path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}

	// Set connection pool settings
	db.SetMaxOpenConns(1) // SQLite is single-writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0) // Keep connection alive

	// Test connection
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return fmt.Errorf("ping database: %w", err)
	}

	// Enable foreign keys, WAL mode, and a busy timeout so a concurrent
	// shipper or second collector instance queues instead of failing.
	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return fmt.Errorf("execute %s: %w", pragma, err)
		}
	}

	s.db = db

	// Initialize repositories
	s.credentials = &sqliteCredentialRepo{db: db, masterKey: s.masterKey}
	s.devices = &sqliteDeviceRepo{db: db}
	s.events = &sqliteEventRepo{db: db}
	s.settings = &sqliteSettingsRepo{db: db}

	return nil
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Ping checks the connection health.
func (s *SQLiteStorage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Migrate runs database migrations.
func (s *SQLiteStorage) Migrate() error {
	return runMigrations(s.db)
}

// EnsureSettings inserts the singleton settings row on first run.
func (s *SQLiteStorage) EnsureSettings() error {
	_, err := s.db.Exec(`
		INSERT INTO settings (id, poll_interval_minutes, extra_id_counter)
		VALUES (1, ?, 1)
		ON CONFLICT(id) DO NOTHING
	`, defaultPollIntervalMinutes)
	if err != nil {
		return fmt.Errorf("ensure settings row: %w", err)
	}
	return nil
}

// defaultPollIntervalMinutes is used when the settings row is created.
const defaultPollIntervalMinutes = 5

// Credentials returns the credential repository.
func (s *SQLiteStorage) Credentials() CredentialRepository {
	return s.credentials
}

// Devices returns the device repository.
func (s *SQLiteStorage) Devices() DeviceRepository {
	return s.devices
}

// Events returns the alert record repository.
func (s *SQLiteStorage) Events() EventRepository {
	return s.events
}

// Settings returns the settings repository.
func (s *SQLiteStorage) Settings() SettingsRepository {
	return s.settings
}
