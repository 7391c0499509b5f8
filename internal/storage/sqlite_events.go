package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/good-yellow-bee/alertcef/internal/models"
)

type sqliteEventRepo struct {
	db *sql.DB
}

func (r *sqliteEventRepo) Create(ctx context.Context, record *models.AlertRecord) error {
	query := `
		INSERT INTO alert_events (id, alert_id, extra_id, customer_name,
			partner_tenant_id, customer_tenant_id, received_at, raw_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		record.ID, record.AlertID, record.ExtraID, record.CustomerName,
		record.PartnerTenantID, record.CustomerTenantID, record.ReceivedAt, record.RawJSON,
	)
	if err != nil {
		return fmt.Errorf("insert alert record: %w", err)
	}
	return nil
}

func (r *sqliteEventRepo) ExistsByAlertID(ctx context.Context, customerTenantID, alertID string) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx,
		"SELECT 1 FROM alert_events WHERE customer_tenant_id = ? AND alert_id = ? LIMIT 1",
		customerTenantID, alertID,
	).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query alert record: %w", err)
	}
	return true, nil
}

func (r *sqliteEventRepo) GetByAlertID(ctx context.Context, customerTenantID, alertID string) (*models.AlertRecord, error) {
	query := `
		SELECT id, alert_id, extra_id, customer_name,
			partner_tenant_id, customer_tenant_id, received_at, raw_json
		FROM alert_events WHERE customer_tenant_id = ? AND alert_id = ?
	`
	record := &models.AlertRecord{}
	err := r.db.QueryRowContext(ctx, query, customerTenantID, alertID).Scan(
		&record.ID, &record.AlertID, &record.ExtraID, &record.CustomerName,
		&record.PartnerTenantID, &record.CustomerTenantID, &record.ReceivedAt, &record.RawJSON,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan alert record: %w", err)
	}
	return record, nil
}

func (r *sqliteEventRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM alert_events").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count alert records: %w", err)
	}
	return count, nil
}
