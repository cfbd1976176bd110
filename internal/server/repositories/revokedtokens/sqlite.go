package revokedtokens

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/adminauth/internal/dbx"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

var _ Repository = (*SQLiteRepository)(nil)

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Revoke(ctx context.Context, id string, expiresAt time.Time) error {
	query := `
		INSERT OR IGNORE INTO revoked_tokens (token_id, expires_at)
		VALUES (?, ?)
	`
	if _, err := r.db.ExecContext(ctx, query, id, expiresAt.UnixMilli()); err != nil {
		return fmt.Errorf("error performing sql request: %v", err)
	}
	return nil
}

func (r *SQLiteRepository) IsRevoked(ctx context.Context, id string) (bool, error) {
	query := `
		SELECT COUNT(1)
		FROM revoked_tokens
		WHERE token_id = ?
	`
	var n int
	if err := r.db.QueryRowContext(ctx, query, id).Scan(&n); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return n > 0, nil
}

func (r *SQLiteRepository) Purge(ctx context.Context, now time.Time) (int64, error) {
	query := `
		DELETE FROM revoked_tokens
		WHERE expires_at < ?
	`
	res, err := r.db.ExecContext(ctx, query, now.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return res.RowsAffected()
}
