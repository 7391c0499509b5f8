package storage

import (
	"database/sql"
	"fmt"
	"time"
)

// Migration represents a database migration.
type Migration struct {
	Version int
	Name    string
	Up      string
}

// migrations holds all database migrations in order.
var migrations = []Migration{
	{
		Version: 1,
		Name:    "initial_schema",
		Up: `
			-- Tenant API credentials (written by the onboarding flow)
			CREATE TABLE IF NOT EXISTS credentials (
				id TEXT PRIMARY KEY,
				partner_tenant_id TEXT NOT NULL,
				customer_tenant_id TEXT NOT NULL,
				customer_name TEXT NOT NULL,
				client_id TEXT NOT NULL,
				client_secret_encrypted BLOB NOT NULL,
				datacenter_url TEXT NOT NULL,
				active INTEGER NOT NULL DEFAULT 1,
				created_at DATETIME NOT NULL,
				updated_at DATETIME NOT NULL
			);

			-- Managed-device inventory (written by the device synchronizer)
			CREATE TABLE IF NOT EXISTS devices (
				id TEXT PRIMARY KEY,
				partner_tenant_id TEXT NOT NULL,
				hostname TEXT NOT NULL,
				created_at DATETIME NOT NULL
			);

			-- Persisted alert records, insert-only
			CREATE TABLE IF NOT EXISTS alert_events (
				id TEXT PRIMARY KEY,
				alert_id TEXT NOT NULL,
				extra_id TEXT NOT NULL UNIQUE,
				customer_name TEXT NOT NULL,
				partner_tenant_id TEXT NOT NULL,
				customer_tenant_id TEXT NOT NULL,
				received_at DATETIME NOT NULL,
				raw_json TEXT NOT NULL
			);

			-- Singleton settings row: polling interval and the
			-- correlation-id counter shared across tenants
			CREATE TABLE IF NOT EXISTS settings (
				id INTEGER PRIMARY KEY CHECK (id = 1),
				poll_interval_minutes INTEGER NOT NULL,
				extra_id_counter INTEGER NOT NULL
			);

			-- Indexes
			CREATE UNIQUE INDEX IF NOT EXISTS idx_events_tenant_alert
				ON alert_events(customer_tenant_id, alert_id);
			CREATE INDEX IF NOT EXISTS idx_credentials_active ON credentials(active);
			CREATE INDEX IF NOT EXISTS idx_devices_hostname ON devices(partner_tenant_id, hostname);
		`,
	},
}

// runMigrations applies all pending migrations.
func runMigrations(db *sql.DB) error {
	// Create migrations table if not exists
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at DATETIME NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("create migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	err = db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("get current version: %w", err)
	}

	// Apply pending migrations
	for _, m := range migrations {
		if m.Version <= currentVersion {
			continue
		}

		// Run migration in transaction
		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("begin transaction for migration %d: %w", m.Version, err)
		}

		_, err = tx.Exec(m.Up)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("execute migration %d (%s): %w", m.Version, m.Name, err)
		}

		_, err = tx.Exec(
			"INSERT INTO schema_migrations (version, name, applied_at) VALUES (?, ?, ?)",
			m.Version, m.Name, time.Now(),
		)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("record migration %d: %w", m.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", m.Version, err)
		}
	}

	return nil
}
