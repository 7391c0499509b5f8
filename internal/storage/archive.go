package storage

import (
	"context"
	"time"
)

// ArchiveStorage defines the optional long-term raw-alert archive.
// This is separate from the main Storage interface as archived alerts
// have different access patterns (high-volume batch writes, retention
// by TTL) and live in a different backend.
type ArchiveStorage interface {
	// Open initializes the archive connection.
	Open() error
	// Close closes the archive connection.
	Close() error
	// Migrate creates or updates the archive schema.
	Migrate() error
	// Ping checks the connection health.
	Ping(ctx context.Context) error

	// Archive returns the archive repository.
	Archive() ArchiveRepository
}

// ArchiveRepository defines archive write operations.
type ArchiveRepository interface {
	// InsertBatch inserts multiple archived alerts in a single batch.
	InsertBatch(ctx context.Context, records []*ArchiveRecord) error
}

// ArchiveRecord is a raw alert destined for the archive.
type ArchiveRecord struct {
	// AlertID is the source system's alert id.
	AlertID string

	// ExtraID is the assigned correlation id.
	ExtraID string

	// CustomerName labels the tenant.
	CustomerName string

	// PartnerTenantID and CustomerTenantID identify the tenant scope.
	PartnerTenantID  string
	CustomerTenantID string

	// Severity is the source severity label.
	Severity string

	// ReceivedAt is when the collector persisted the alert.
	ReceivedAt time.Time

	// RawJSON is the alert payload verbatim.
	RawJSON string
}
