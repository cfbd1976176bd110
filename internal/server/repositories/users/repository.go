// Package users declares the gateway's account repository.
package users

import (
	"context"

	"github.com/dmitrijs2005/adminauth/internal/server/models"
)

type Repository interface {
	// Create inserts user, assigning an id when empty. A duplicate email
	// yields common.ErrAlreadyExists.
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	UpdatePassword(ctx context.Context, id string, passwordHash string) error
}
