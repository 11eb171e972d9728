// Package models defines the persistent entities shared by repositories
// and services.
package models

import "time"

// ActionKind tags the pending account action, if any. The zero value means
// no action is pending.
type ActionKind string

const (
	ActionNone         ActionKind = ""
	ActionConfirmation ActionKind = "confirmation"
	ActionReset        ActionKind = "reset"
)

// PendingAction is the explicit tagged variant replacing the classic
// overloaded nullable token column: either nothing is pending, or exactly
// one single-use token with a known purpose is. Assigning a new action
// overwrites (and thereby invalidates) any previous one.
type PendingAction struct {
	Kind  ActionKind
	Token string
}

// Pending reports whether any action is pending.
func (a PendingAction) Pending() bool {
	return a.Kind != ActionNone
}

// User is the identity and credential record.
//
// Invariants:
//   - PasswordHash is always the bcrypt hash of the current logical
//     password; it is recomputed on every password write and plaintext is
//     never stored.
//   - Confirmed starts false and becomes true exactly once; it never
//     reverts.
//   - At most one action is pending at a time.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Confirmed    bool
	Pending      PendingAction
	CreatedAt    time.Time
}
