// Package otpcodes declares storage for outstanding password-reset codes.
package otpcodes

import (
	"context"

	"github.com/dmitrijs2005/adminauth/internal/server/models"
)

// Repository keeps at most one code per email.
type Repository interface {
	// Save stores code, replacing any previous code of the same email.
	Save(ctx context.Context, code *models.OTPCode) error

	// Find returns the code for email or common.ErrorNotFound.
	Find(ctx context.Context, email string) (*models.OTPCode, error)

	// Delete removes the code for email. Deleting a missing code is not an error.
	Delete(ctx context.Context, email string) error
}
