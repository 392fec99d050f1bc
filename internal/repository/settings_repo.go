package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SettingsRepository is the backend settings store: per-backend credentials,
// base URLs and toggles, keyed by a backend identifier ("manageiq", "aws").
// Values are re-read on every provisioning attempt so long-running workers
// never act on stale credentials.
type SettingsRepository struct {
	pool *pgxpool.Pool
}

func NewSettingsRepository(pool *pgxpool.Pool) *SettingsRepository {
	return &SettingsRepository{pool: pool}
}

// Get returns the flat configuration map for a backend identifier.
func (r *SettingsRepository) Get(ctx context.Context, hid string) (map[string]string, error) {
	query := `SELECT data FROM settings WHERE hid = $1`

	var raw []byte
	err := r.pool.QueryRow(ctx, query, hid).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("settings for backend %q: %w", hid, ErrNotFound)
		}
		return nil, fmt.Errorf("query settings: %w", err)
	}

	settings := make(map[string]string)
	if err := json.Unmarshal(raw, &settings); err != nil {
		return nil, fmt.Errorf("decode settings for backend %q: %w", hid, err)
	}
	return settings, nil
}
