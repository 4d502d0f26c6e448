package repository

import (
	"context"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SettingCommunityActive gates all distribution; template keys live in the
// giveaway package next to their defaults.
const SettingCommunityActive = "community_active"

type SettingsRepo struct {
	db *pgxpool.Pool
}

func NewSettingsRepo(db *pgxpool.Pool) *SettingsRepo {
	return &SettingsRepo{db: db}
}

// Get returns the stored value for key, or "" when the key is absent.
func (r *SettingsRepo) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.QueryRow(ctx, `SELECT value FROM settings WHERE key = $1`, key).Scan(&value)
	if err != nil {
		if err == pgx.ErrNoRows {
			return "", nil
		}
		return "", fmt.Errorf("get setting %q: %w", key, err)
	}
	return value, nil
}

func (r *SettingsRepo) Set(ctx context.Context, key, value string) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO settings (key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`,
		key, value)
	if err != nil {
		return fmt.Errorf("set setting %q: %w", key, err)
	}
	return nil
}

// CommunityActive reads the global distribution gate. An absent or malformed
// value defaults to enabled.
func (r *SettingsRepo) CommunityActive(ctx context.Context) (bool, error) {
	value, err := r.Get(ctx, SettingCommunityActive)
	if err != nil {
		return false, err
	}
	if value == "" {
		return true, nil
	}
	active, err := strconv.ParseBool(value)
	if err != nil {
		return true, nil
	}
	return active, nil
}

func (r *SettingsRepo) SetCommunityActive(ctx context.Context, active bool) error {
	return r.Set(ctx, SettingCommunityActive, strconv.FormatBool(active))
}

// Template returns the stored message template for key, "" when unset.
func (r *SettingsRepo) Template(ctx context.Context, key string) (string, error) {
	return r.Get(ctx, key)
}
