// Package users declares the repository contract for identity records.
package users

import (
	"context"

	"github.com/dmitrijs2005/bienesraices/internal/server/models"
)

// Repository defines storage operations for user records. Lookups return
// common.ErrorNotFound when no row matches; Create returns
// common.ErrDuplicateEmail when the email uniqueness constraint fires.
//
// The ForUpdate variants lock the matched row until the surrounding
// transaction ends, serializing read-modify-write cycles per user.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByEmailForUpdate(ctx context.Context, email string) (*models.User, error)

	// FindByToken resolves the owning user from a pending-action token by
	// exact match over the flat token space.
	FindByToken(ctx context.Context, token string) (*models.User, error)
	FindByTokenForUpdate(ctx context.Context, token string) (*models.User, error)

	// Save persists the mutable account fields: password hash, confirmed
	// flag and the pending action.
	Save(ctx context.Context, user *models.User) error
}
