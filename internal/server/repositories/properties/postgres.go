package properties

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/bienesraices/internal/common"
	"github.com/dmitrijs2005/bienesraices/internal/dbx"
	"github.com/dmitrijs2005/bienesraices/internal/server/models"
)

// PostgresRepository implements listing storage over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const propertyColumns = `id, title, description, category_id, price_id, rooms, parking, bathrooms,
	street, lat, lng, image_key, published, user_id, created_at`

func scanProperty(s interface{ Scan(...any) error }) (*models.Property, error) {
	p := &models.Property{}
	err := s.Scan(&p.ID, &p.Title, &p.Description, &p.CategoryID, &p.PriceID,
		&p.Rooms, &p.Parking, &p.Bathrooms, &p.Street, &p.Lat, &p.Lng,
		&p.ImageKey, &p.Published, &p.UserID, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return p, nil
}

// Create inserts a new listing row owned by p.UserID.
func (r *PostgresRepository) Create(ctx context.Context, p *models.Property) (*models.Property, error) {
	query := `
		INSERT INTO properties (title, description, category_id, price_id, rooms, parking, bathrooms,
			street, lat, lng, user_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at
	`
	err := r.db.QueryRowContext(ctx, query,
		p.Title, p.Description, p.CategoryID, p.PriceID, p.Rooms, p.Parking, p.Bathrooms,
		p.Street, p.Lat, p.Lng, p.UserID).
		Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return p, nil
}

// GetByID returns the listing with the given id.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Property, error) {
	query := `SELECT ` + propertyColumns + ` FROM properties WHERE id = $1`
	return scanProperty(r.db.QueryRowContext(ctx, query, id))
}

// Save writes back all editable listing fields. Exactly one row must be
// affected.
func (r *PostgresRepository) Save(ctx context.Context, p *models.Property) error {
	query := `
		UPDATE properties
		SET title = $2, description = $3, category_id = $4, price_id = $5, rooms = $6,
			parking = $7, bathrooms = $8, street = $9, lat = $10, lng = $11,
			image_key = $12, published = $13
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query, p.ID,
		p.Title, p.Description, p.CategoryID, p.PriceID, p.Rooms,
		p.Parking, p.Bathrooms, p.Street, p.Lat, p.Lng,
		p.ImageKey, p.Published)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n != 1 {
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
	return nil
}

// Delete removes a listing and, via cascade, its messages.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM properties WHERE id = $1`, id); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// CountByUser returns the number of listings owned by userID.
func (r *PostgresRepository) CountByUser(ctx context.Context, userID string) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM properties WHERE user_id = $1`, userID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

// SelectByUser returns a page of listings owned by userID, newest first.
func (r *PostgresRepository) SelectByUser(ctx context.Context, userID string, limit, offset int) ([]*models.Property, error) {
	query := `SELECT ` + propertyColumns + `
		FROM properties
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`
	rows, err := r.db.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to select properties: %w", err)
	}
	defer rows.Close()

	var result []*models.Property
	for rows.Next() {
		item, err := scanProperty(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// SelectPublished returns the public projection of every published listing.
func (r *PostgresRepository) SelectPublished(ctx context.Context) ([]*models.Listing, error) {
	query := `
		SELECT p.id, p.title, p.lat, p.lng, p.image_key, c.name, pr.name, p.category_id, p.price_id
		FROM properties p
		JOIN categories c ON c.id = p.category_id
		JOIN price_ranges pr ON pr.id = p.price_id
		WHERE p.published
		ORDER BY p.created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select listings: %w", err)
	}
	defer rows.Close()

	var result []*models.Listing
	for rows.Next() {
		var item models.Listing
		if err := rows.Scan(&item.ID, &item.Title, &item.Lat, &item.Lng, &item.ImageKey,
			&item.Category, &item.Price, &item.CategoryID, &item.PriceID); err != nil {
			return nil, err
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// SelectCategories returns the category lookup table.
func (r *PostgresRepository) SelectCategories(ctx context.Context) ([]*models.Category, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM categories ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to select categories: %w", err)
	}
	defer rows.Close()

	var result []*models.Category
	for rows.Next() {
		var item models.Category
		if err := rows.Scan(&item.ID, &item.Name); err != nil {
			return nil, err
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// SelectPriceRanges returns the price-range lookup table.
func (r *PostgresRepository) SelectPriceRanges(ctx context.Context) ([]*models.PriceRange, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM price_ranges ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to select price ranges: %w", err)
	}
	defer rows.Close()

	var result []*models.PriceRange
	for rows.Next() {
		var item models.PriceRange
		if err := rows.Scan(&item.ID, &item.Name); err != nil {
			return nil, err
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
