// Package services contains server-side business logic. This file implements
// AccountService, which handles the account lifecycle: registration,
// confirmation, password reset and authentication.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/bienesraices/internal/common"
	"github.com/dmitrijs2005/bienesraices/internal/dbx"
	"github.com/dmitrijs2005/bienesraices/internal/server/auth"
	"github.com/dmitrijs2005/bienesraices/internal/server/config"
	"github.com/dmitrijs2005/bienesraices/internal/server/mailer"
	"github.com/dmitrijs2005/bienesraices/internal/server/models"
	"github.com/dmitrijs2005/bienesraices/internal/server/repositories/repomanager"
)

// actionTokenSize is the number of random bytes per account-action token
// (the hex string is twice as long).
const actionTokenSize = 16

// MailDispatcher is the async submission side of the mailer; delivery
// happens in the background and failures never reach the caller.
type MailDispatcher interface {
	DispatchConfirmation(p mailer.Payload)
	DispatchReset(p mailer.Payload)
}

// AccountService provides the account lifecycle operations:
//   - Register: create an unconfirmed user and send a confirmation token
//   - Confirm: consume a confirmation token
//   - RequestReset / CheckResetToken / CompleteReset: the reset flow
//   - Authenticate: verify credentials and mint a session token
type AccountService struct {
	db                           *sql.DB
	repomanager                  repomanager.RepositoryManager
	mail                         MailDispatcher
	secretKey                    []byte
	sessionTokenValidityDuration time.Duration
}

// withTx is a seam for testing transactional paths without a real database.
var withTx = dbx.WithTx

// NewAccountService constructs an AccountService using repositories, the mail
// dispatcher and server config.
func NewAccountService(db *sql.DB, m repomanager.RepositoryManager, mail MailDispatcher, cfg *config.Config) *AccountService {
	return &AccountService{
		db:                           db,
		repomanager:                  m,
		mail:                         mail,
		secretKey:                    []byte(cfg.SecretKey),
		sessionTokenValidityDuration: cfg.SessionTokenValidityDuration,
	}
}

// Register creates an unconfirmed user with a hashed password and a fresh
// confirmation token, then queues the confirmation email. A taken email
// yields common.ErrDuplicateEmail.
func (s *AccountService) Register(ctx context.Context, name, email, password string) (*models.User, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}
	token, err := common.MakeRandHexString(actionTokenSize)
	if err != nil {
		return nil, fmt.Errorf("error generating token: %w", err)
	}

	user := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Pending:      models.PendingAction{Kind: models.ActionConfirmation, Token: token},
	}

	repo := s.repomanager.Users(s.db)
	u, err := repo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrDuplicateEmail) {
			return nil, common.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	s.mail.DispatchConfirmation(mailer.Payload{Name: u.Name, Email: u.Email, Token: token})
	return u, nil
}

// Confirm consumes a confirmation token: the account becomes confirmed and
// the token is cleared, so a second call with the same token fails. An
// unknown token, or one pending a different action, yields
// common.ErrInvalidToken.
func (s *AccountService) Confirm(ctx context.Context, token string) error {
	return withTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)

		user, err := repo.FindByTokenForUpdate(ctx, token)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrInvalidToken
			}
			return fmt.Errorf("error searching token: %w", err)
		}
		if user.Pending.Kind != models.ActionConfirmation {
			return common.ErrInvalidToken
		}

		user.Confirmed = true
		user.Pending = models.PendingAction{}
		return repo.Save(ctx, user)
	})
}

// RequestReset stores a fresh reset token on the account and queues the
// reset email. Any previously pending token is overwritten and thereby
// invalidated. An unknown email yields common.ErrUnknownEmail.
func (s *AccountService) RequestReset(ctx context.Context, email string) error {
	token, err := common.MakeRandHexString(actionTokenSize)
	if err != nil {
		return fmt.Errorf("error generating token: %w", err)
	}

	var payload mailer.Payload
	err = withTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)

		user, err := repo.FindByEmailForUpdate(ctx, email)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrUnknownEmail
			}
			return fmt.Errorf("error searching user: %w", err)
		}

		user.Pending = models.PendingAction{Kind: models.ActionReset, Token: token}
		if err := repo.Save(ctx, user); err != nil {
			return err
		}
		payload = mailer.Payload{Name: user.Name, Email: user.Email, Token: token}
		return nil
	})
	if err != nil {
		return err
	}

	s.mail.DispatchReset(payload)
	return nil
}

// CheckResetToken verifies that token identifies an account with a pending
// reset. It mutates nothing; the reset form calls it before showing the
// new-password form.
func (s *AccountService) CheckResetToken(ctx context.Context, token string) error {
	repo := s.repomanager.Users(s.db)

	user, err := repo.FindByToken(ctx, token)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrInvalidToken
		}
		return fmt.Errorf("error searching token: %w", err)
	}
	if user.Pending.Kind != models.ActionReset {
		return common.ErrInvalidToken
	}
	return nil
}

// CompleteReset consumes a reset token: the password is re-hashed and the
// token is cleared, so the token cannot be used twice. An unknown token, or
// one pending a different action, yields common.ErrInvalidToken.
func (s *AccountService) CompleteReset(ctx context.Context, token, newPassword string) error {
	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return err
	}

	return withTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)

		user, err := repo.FindByTokenForUpdate(ctx, token)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrInvalidToken
			}
			return fmt.Errorf("error searching token: %w", err)
		}
		if user.Pending.Kind != models.ActionReset {
			return common.ErrInvalidToken
		}

		user.PasswordHash = hash
		user.Pending = models.PendingAction{}
		return repo.Save(ctx, user)
	})
}

// Authenticate verifies the credentials and returns a signed session token.
// The checks run in a fixed order and report distinct failures: unknown
// email (common.ErrUnknownUser), unconfirmed account
// (common.ErrAccountNotConfirmed, regardless of the supplied password),
// wrong password (common.ErrInvalidPassword).
func (s *AccountService) Authenticate(ctx context.Context, email, password string) (string, error) {
	repo := s.repomanager.Users(s.db)

	user, err := repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", common.ErrUnknownUser
		}
		return "", fmt.Errorf("error searching user: %w", err)
	}
	if !user.Confirmed {
		return "", common.ErrAccountNotConfirmed
	}
	if !auth.VerifyPassword(password, user.PasswordHash) {
		return "", common.ErrInvalidPassword
	}

	return auth.GenerateSessionToken(user.ID, user.Name, s.secretKey, s.sessionTokenValidityDuration)
}
