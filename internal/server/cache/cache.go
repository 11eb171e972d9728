// Package cache provides the published-listings cache used by the public
// map API. A miss or any backend failure falls through to the database.
package cache

import (
	"context"

	"github.com/dmitrijs2005/bienesraices/internal/server/models"
)

// ListingStore caches the published-listings payload as a whole. Get returns
// common.ErrorNotFound on a miss.
type ListingStore interface {
	GetListings(ctx context.Context) ([]*models.Listing, error)
	SetListings(ctx context.Context, listings []*models.Listing) error
	Invalidate(ctx context.Context) error
}
