// Package users persists account rows and their capability flags.
package users

import (
	"context"

	"github.com/dmitrijs2005/docvault/internal/server/models"
)

// Repository is the storage contract for user accounts.
type Repository interface {
	// Create inserts a new account and returns it with the assigned id.
	Create(ctx context.Context, user *models.User) (*models.User, error)
	// GetByLogin returns the account for login or common.ErrorNotFound.
	GetByLogin(ctx context.Context, login string) (*models.User, error)
}
