// Package mailer sends account lifecycle emails and decouples them from
// request handling through an asynchronous dispatcher.
package mailer

import "context"

// Payload carries everything an account email needs.
type Payload struct {
	Name  string
	Email string
	Token string
}

// Mailer sends account lifecycle emails.
type Mailer interface {
	SendConfirmation(ctx context.Context, p Payload) error
	SendResetInstructions(ctx context.Context, p Payload) error
}
