// Package storage provides database storage interfaces and implementations.
package storage

import (
	"context"

	"github.com/good-yellow-bee/alertcef/internal/models"
)

// Storage is the main interface for database operations.
type Storage interface {
	// Open initializes the database connection.
	Open() error
	// Close closes the database connection.
	Close() error
	// Migrate runs database migrations.
	Migrate() error
	// Ping checks the connection health.
	Ping(ctx context.Context) error
	// EnsureSettings creates the singleton settings row if missing.
	EnsureSettings() error

	// Repository accessors
	Credentials() CredentialRepository
	Devices() DeviceRepository
	Events() EventRepository
	Settings() SettingsRepository
}

// CredentialRepository defines operations for tenant API credentials.
// The collector only reads credentials; Create exists for the external
// onboarding flow and for tests.
type CredentialRepository interface {
	Create(ctx context.Context, cred *models.Credential) error
	GetByID(ctx context.Context, id string) (*models.Credential, error)
	ListActive(ctx context.Context) ([]*models.Credential, error)
	SetActive(ctx context.Context, id string, active bool) error
}

// DeviceRepository defines lookups against the managed-device inventory.
type DeviceRepository interface {
	Create(ctx context.Context, device *models.Device) error
	ExistsByHostname(ctx context.Context, partnerTenantID, hostname string) (bool, error)
}

// EventRepository defines operations for persisted alert records.
// Records are insert-only; the alert id is unique within a tenant.
type EventRepository interface {
	Create(ctx context.Context, record *models.AlertRecord) error
	ExistsByAlertID(ctx context.Context, customerTenantID, alertID string) (bool, error)
	GetByAlertID(ctx context.Context, customerTenantID, alertID string) (*models.AlertRecord, error)
	Count(ctx context.Context) (int64, error)
}

// SettingsRepository defines access to the singleton settings row and
// the correlation-id sequencer backed by its counter.
type SettingsRepository interface {
	Get(ctx context.Context) (*models.Settings, error)
	SetPollInterval(ctx context.Context, minutes int) error

	// NextExtraID atomically claims the next counter value and returns
	// the formatted correlation id for the given customer. Two
	// concurrent callers never observe the same counter value; gaps are
	// acceptable, duplicates are not.
	NextExtraID(ctx context.Context, customerName string) (string, error)
}
