package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/good-yellow-bee/alertcef/internal/models"
)

type sqliteSettingsRepo struct {
	db *sql.DB
}

func (r *sqliteSettingsRepo) Get(ctx context.Context) (*models.Settings, error) {
	settings := &models.Settings{}
	err := r.db.QueryRowContext(ctx,
		"SELECT poll_interval_minutes, extra_id_counter FROM settings WHERE id = 1",
	).Scan(&settings.PollIntervalMinutes, &settings.ExtraIDCounter)
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}
	return settings, nil
}

func (r *sqliteSettingsRepo) SetPollInterval(ctx context.Context, minutes int) error {
	if minutes <= 0 {
		return fmt.Errorf("poll interval must be positive, got %d", minutes)
	}
	result, err := r.db.ExecContext(ctx,
		"UPDATE settings SET poll_interval_minutes = ? WHERE id = 1", minutes,
	)
	if err != nil {
		return fmt.Errorf("update poll interval: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("settings row missing")
	}
	return nil
}

// NextExtraID claims a counter value and formats the correlation id.
// The read and increment happen in a single UPDATE ... RETURNING, which
// SQLite executes under its write lock, so two callers never observe
// the same value even across processes. Once returned, an id is never
// reissued; a caller that fails afterwards leaves a gap in the sequence.
func (r *sqliteSettingsRepo) NextExtraID(ctx context.Context, customerName string) (string, error) {
	var next int64
	err := r.db.QueryRowContext(ctx, `
		UPDATE settings SET extra_id_counter = extra_id_counter + 1
		WHERE id = 1
		RETURNING extra_id_counter
	`).Scan(&next)
	if err != nil {
		return "", fmt.Errorf("advance extra id counter: %w", err)
	}
	// The row now holds counter+1; the claimed value is the previous one.
	return models.FormatExtraID(customerName, next-1), nil
}
