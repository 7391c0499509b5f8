package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/google/uuid"
)

// ClickHouseConfig holds ClickHouse connection settings for the archive.
type ClickHouseConfig struct {
	// Addresses are the ClickHouse server addresses (host:port).
	Addresses []string

	// Database is the ClickHouse database name.
	Database string

	// Username for authentication.
	Username string

	// Password for authentication.
	Password string

	// MaxOpenConns is the maximum number of open connections.
	MaxOpenConns int

	// MaxIdleConns is the maximum number of idle connections.
	MaxIdleConns int

	// DialTimeout is the connection timeout.
	DialTimeout time.Duration

	// Compression enables LZ4 compression.
	Compression bool

	// RetentionDays is the TTL in days for archived alerts.
	RetentionDays int
}

// ClickHouseArchive implements ArchiveStorage for ClickHouse.
type ClickHouseArchive struct {
	config  *ClickHouseConfig
	db      *sql.DB
	archive *clickhouseArchiveRepo
}

// NewClickHouseArchive creates a new ClickHouse archive.
func NewClickHouseArchive(config *ClickHouseConfig) *ClickHouseArchive {
	// Apply defaults
	if config.MaxOpenConns == 0 {
		config.MaxOpenConns = 5
	}
	if config.MaxIdleConns == 0 {
		config.MaxIdleConns = 5
	}
	if config.DialTimeout == 0 {
		config.DialTimeout = 5 * time.Second
	}
	if config.RetentionDays == 0 {
		config.RetentionDays = 90
	}

	return &ClickHouseArchive{config: config}
}

// Open initializes the ClickHouse connection.
func (s *ClickHouseArchive) Open() error {
	opts := &clickhouse.Options{
		Addr: s.config.Addresses,
		Auth: clickhouse.Auth{
			Database: s.config.Database,
			Username: s.config.Username,
			Password: s.config.Password,
		},
		DialTimeout:  s.config.DialTimeout,
		MaxOpenConns: s.config.MaxOpenConns,
		MaxIdleConns: s.config.MaxIdleConns,
	}

	if s.config.Compression {
		opts.Compression = &clickhouse.Compression{
			Method: clickhouse.CompressionLZ4,
		}
	}

	db := clickhouse.OpenDB(opts)

	ctx, cancel := context.WithTimeout(context.Background(), s.config.DialTimeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping clickhouse: %w", err)
	}

	s.db = db
	s.archive = &clickhouseArchiveRepo{db: db}
	return nil
}

// Close closes the database connection.
func (s *ClickHouseArchive) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Migrate creates the archive table if it doesn't exist.
func (s *ClickHouseArchive) Migrate() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	createTable := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS alert_archive (
			id UUID DEFAULT generateUUIDv4(),
			alert_id String,
			extra_id String,
			customer_name LowCardinality(String),
			partner_tenant_id LowCardinality(String),
			customer_tenant_id LowCardinality(String),
			severity LowCardinality(String),
			received_at DateTime64(3, 'UTC'),
			raw_json String,
			_date Date DEFAULT toDate(received_at)
		)
		ENGINE = MergeTree()
		PARTITION BY toYYYYMM(_date)
		ORDER BY (customer_tenant_id, received_at, id)
		TTL _date + INTERVAL %d DAY DELETE
		SETTINGS index_granularity = 8192
	`, s.config.RetentionDays)

	if _, err := s.db.ExecContext(ctx, createTable); err != nil {
		return fmt.Errorf("create alert_archive table: %w", err)
	}
	return nil
}

// Ping checks the connection health.
func (s *ClickHouseArchive) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Archive returns the archive repository.
func (s *ClickHouseArchive) Archive() ArchiveRepository {
	return s.archive
}

// clickhouseArchiveRepo implements ArchiveRepository for ClickHouse.
type clickhouseArchiveRepo struct {
	db *sql.DB
}

// InsertBatch inserts archived alerts using a batched transaction.
func (r *clickhouseArchiveRepo) InsertBatch(ctx context.Context, records []*ArchiveRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO alert_archive (
			id, alert_id, extra_id, customer_name,
			partner_tenant_id, customer_tenant_id, severity, received_at, raw_json
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		_, err := stmt.ExecContext(ctx,
			uuid.New().String(),
			rec.AlertID,
			rec.ExtraID,
			rec.CustomerName,
			rec.PartnerTenantID,
			rec.CustomerTenantID,
			rec.Severity,
			rec.ReceivedAt,
			rec.RawJSON,
		)
		if err != nil {
			return fmt.Errorf("exec: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	return nil
}
