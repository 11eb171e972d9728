package models

import "time"

// Message is a visitor-to-owner note attached to a published property.
type Message struct {
	ID         string
	Text       string
	PropertyID string
	SenderID   string
	SenderName string
	CreatedAt  time.Time
}
