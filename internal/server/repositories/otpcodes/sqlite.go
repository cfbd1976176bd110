package otpcodes

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/adminauth/internal/common"
	"github.com/dmitrijs2005/adminauth/internal/dbx"
	"github.com/dmitrijs2005/adminauth/internal/server/models"
)

// SQLiteRepository implements Repository over dbx.DBTX (satisfied by *sql.DB
// or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

var _ Repository = (*SQLiteRepository)(nil)

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Save(ctx context.Context, code *models.OTPCode) error {
	query := `
		INSERT INTO otp_codes (email, code, expires_at)
		VALUES (?, ?, ?)
		ON CONFLICT(email) DO UPDATE SET code = excluded.code, expires_at = excluded.expires_at
	`
	if _, err := r.db.ExecContext(ctx, query, code.Email, code.Code, code.ExpiresAt.UnixMilli()); err != nil {
		return fmt.Errorf("error performing sql request: %v", err)
	}
	return nil
}

func (r *SQLiteRepository) Find(ctx context.Context, email string) (*models.OTPCode, error) {
	query := `
		SELECT code, expires_at
		FROM otp_codes
		WHERE email = ?
	`
	code := &models.OTPCode{Email: email}
	var expires int64
	if err := r.db.QueryRowContext(ctx, query, email).Scan(&code.Code, &expires); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	code.ExpiresAt = time.UnixMilli(expires)
	return code, nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, email string) error {
	query := `
		DELETE FROM otp_codes
		WHERE email = ?
	`
	if _, err := r.db.ExecContext(ctx, query, email); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
