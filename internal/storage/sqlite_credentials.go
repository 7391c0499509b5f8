package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/good-yellow-bee/alertcef/internal/models"
	"github.com/good-yellow-bee/alertcef/internal/security"
)

type sqliteCredentialRepo struct {
	db        *sql.DB
	masterKey []byte
}

func (r *sqliteCredentialRepo) Create(ctx context.Context, cred *models.Credential) error {
	secret, err := security.EncryptSecret([]byte(cred.ClientSecret), r.masterKey)
	if err != nil {
		return fmt.Errorf("encrypt client secret: %w", err)
	}

	query := `
		INSERT INTO credentials (id, partner_tenant_id, customer_tenant_id, customer_name,
			client_id, client_secret_encrypted, datacenter_url, active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = r.db.ExecContext(ctx, query,
		cred.ID, cred.PartnerTenantID, cred.CustomerTenantID, cred.CustomerName,
		cred.ClientID, secret, cred.DatacenterURL, boolToInt(cred.Active),
		cred.CreatedAt, cred.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert credential: %w", err)
	}
	return nil
}

func (r *sqliteCredentialRepo) GetByID(ctx context.Context, id string) (*models.Credential, error) {
	query := `
		SELECT id, partner_tenant_id, customer_tenant_id, customer_name,
			client_id, client_secret_encrypted, datacenter_url, active, created_at, updated_at
		FROM credentials WHERE id = ?
	`
	row := r.db.QueryRowContext(ctx, query, id)
	cred, err := r.scanCredential(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return cred, err
}

func (r *sqliteCredentialRepo) ListActive(ctx context.Context) ([]*models.Credential, error) {
	query := `
		SELECT id, partner_tenant_id, customer_tenant_id, customer_name,
			client_id, client_secret_encrypted, datacenter_url, active, created_at, updated_at
		FROM credentials WHERE active = 1 ORDER BY customer_name
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query credentials: %w", err)
	}
	defer rows.Close()

	var creds []*models.Credential
	for rows.Next() {
		cred, err := r.scanCredential(rows.Scan)
		if err != nil {
			return nil, err
		}
		creds = append(creds, cred)
	}
	return creds, rows.Err()
}

func (r *sqliteCredentialRepo) SetActive(ctx context.Context, id string, active bool) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE credentials SET active = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
		boolToInt(active), id,
	)
	if err != nil {
		return fmt.Errorf("set credential active: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("credential not found: %s", id)
	}
	return nil
}

func (r *sqliteCredentialRepo) scanCredential(scan func(dest ...any) error) (*models.Credential, error) {
	cred := &models.Credential{}
	var secretBlob []byte
	var active int

	err := scan(
		&cred.ID, &cred.PartnerTenantID, &cred.CustomerTenantID, &cred.CustomerName,
		&cred.ClientID, &secretBlob, &cred.DatacenterURL, &active,
		&cred.CreatedAt, &cred.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("scan credential: %w", err)
	}

	secret, err := security.DecryptSecret(secretBlob, r.masterKey)
	if err != nil {
		return nil, fmt.Errorf("decrypt client secret for %s: %w", cred.ID, err)
	}
	cred.ClientSecret = string(secret)
	cred.Active = active != 0

	return cred, nil
}

// Helper functions

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
