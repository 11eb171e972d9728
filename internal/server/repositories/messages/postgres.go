package messages

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/bienesraices/internal/dbx"
	"github.com/dmitrijs2005/bienesraices/internal/server/models"
)

// PostgresRepository implements message storage over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new message.
func (r *PostgresRepository) Create(ctx context.Context, m *models.Message) (*models.Message, error) {
	query := `
		INSERT INTO messages (text, property_id, sender_id)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`
	err := r.db.QueryRowContext(ctx, query, m.Text, m.PropertyID, m.SenderID).
		Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return m, nil
}

// SelectByProperty returns all messages for propertyID, oldest first.
func (r *PostgresRepository) SelectByProperty(ctx context.Context, propertyID string) ([]*models.Message, error) {
	query := `
		SELECT m.id, m.text, m.property_id, m.sender_id, u.name, m.created_at
		FROM messages m
		JOIN users u ON u.id = m.sender_id
		WHERE m.property_id = $1
		ORDER BY m.created_at
	`
	rows, err := r.db.QueryContext(ctx, query, propertyID)
	if err != nil {
		return nil, fmt.Errorf("failed to select messages: %w", err)
	}
	defer rows.Close()

	var result []*models.Message
	for rows.Next() {
		var item models.Message
		if err := rows.Scan(&item.ID, &item.Text, &item.PropertyID, &item.SenderID,
			&item.SenderName, &item.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
