// This file implements MessageService: visitor messages on published
// listings.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/dmitrijs2005/bienesraices/internal/common"
	"github.com/dmitrijs2005/bienesraices/internal/server/models"
	"github.com/dmitrijs2005/bienesraices/internal/server/repositories/repomanager"
)

// minMessageLength is the minimum number of characters a message must have.
const minMessageLength = 20

// MessageService handles messages visitors leave on published listings.
type MessageService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

// NewMessageService constructs a MessageService.
func NewMessageService(db *sql.DB, m repomanager.RepositoryManager) *MessageService {
	return &MessageService{db: db, repomanager: m}
}

// Send stores a message from senderID on a listing. The listing must be
// published (common.ErrPropertyNotPublished), the sender must not be the
// owner (common.ErrOwnMessage) and the text must have at least 20
// characters (common.ErrMessageTooShort).
func (s *MessageService) Send(ctx context.Context, senderID, propertyID, text string) (*models.Message, error) {
	if utf8.RuneCountInString(text) < minMessageLength {
		return nil, common.ErrMessageTooShort
	}

	props := s.repomanager.Properties(s.db)
	p, err := props.GetByID(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	if !p.Published {
		return nil, common.ErrPropertyNotPublished
	}
	if p.UserID == senderID {
		return nil, common.ErrOwnMessage
	}

	repo := s.repomanager.Messages(s.db)
	msg, err := repo.Create(ctx, &models.Message{Text: text, PropertyID: propertyID, SenderID: senderID})
	if err != nil {
		return nil, fmt.Errorf("error creating message: %w", err)
	}
	return msg, nil
}

// ListForOwner returns the messages on a listing; only the owner may read
// them.
func (s *MessageService) ListForOwner(ctx context.Context, userID, propertyID string) ([]*models.Message, error) {
	props := s.repomanager.Properties(s.db)
	p, err := props.GetByID(ctx, propertyID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("error searching property: %w", err)
	}
	if p.UserID != userID {
		return nil, common.ErrorForbidden
	}

	repo := s.repomanager.Messages(s.db)
	msgs, err := repo.SelectByProperty(ctx, propertyID)
	if err != nil {
		return nil, fmt.Errorf("error selecting messages: %w", err)
	}
	return msgs, nil
}
