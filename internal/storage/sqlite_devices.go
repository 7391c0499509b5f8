package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/good-yellow-bee/alertcef/internal/models"
)

type sqliteDeviceRepo struct {
	db *sql.DB
}

func (r *sqliteDeviceRepo) Create(ctx context.Context, device *models.Device) error {
	query := `
		INSERT INTO devices (id, partner_tenant_id, hostname, created_at)
		VALUES (?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		device.ID, device.PartnerTenantID, device.Hostname, device.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert device: %w", err)
	}
	return nil
}

func (r *sqliteDeviceRepo) ExistsByHostname(ctx context.Context, partnerTenantID, hostname string) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx,
		"SELECT 1 FROM devices WHERE partner_tenant_id = ? AND hostname = ? LIMIT 1",
		partnerTenantID, hostname,
	).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query device by hostname: %w", err)
	}
	return true, nil
}
