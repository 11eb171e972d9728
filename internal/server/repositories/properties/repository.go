// Package properties declares the repository contract for listings.
package properties

import (
	"context"

	"github.com/dmitrijs2005/bienesraices/internal/server/models"
)

// Repository defines storage operations for property listings.
type Repository interface {
	Create(ctx context.Context, p *models.Property) (*models.Property, error)

	// GetByID returns the property or common.ErrorNotFound.
	GetByID(ctx context.Context, id string) (*models.Property, error)

	// Save writes back the editable fields (title, description, lookups,
	// counts, location, image key, published flag).
	Save(ctx context.Context, p *models.Property) error

	Delete(ctx context.Context, id string) error

	// CountByUser and SelectByUser back the paginated owner dashboard.
	CountByUser(ctx context.Context, userID string) (int64, error)
	SelectByUser(ctx context.Context, userID string, limit, offset int) ([]*models.Property, error)

	// SelectPublished returns the public projection of all published
	// listings with category and price names joined in.
	SelectPublished(ctx context.Context) ([]*models.Listing, error)

	// Lookup tables for form validation.
	SelectCategories(ctx context.Context) ([]*models.Category, error)
	SelectPriceRanges(ctx context.Context) ([]*models.PriceRange, error)
}
