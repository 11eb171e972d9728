// Package messages declares the repository contract for visitor messages.
package messages

import (
	"context"

	"github.com/dmitrijs2005/bienesraices/internal/server/models"
)

// Repository defines storage operations for property messages.
type Repository interface {
	Create(ctx context.Context, m *models.Message) (*models.Message, error)

	// SelectByProperty returns all messages for a property, oldest first,
	// with the sender name joined in.
	SelectByProperty(ctx context.Context, propertyID string) ([]*models.Message, error)
}
