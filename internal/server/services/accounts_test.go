package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/bienesraices/internal/common"
	"github.com/dmitrijs2005/bienesraices/internal/dbx"
	"github.com/dmitrijs2005/bienesraices/internal/server/auth"
	"github.com/dmitrijs2005/bienesraices/internal/server/config"
	"github.com/dmitrijs2005/bienesraices/internal/server/mailer"
	"github.com/dmitrijs2005/bienesraices/internal/server/models"
	messagesrepo "github.com/dmitrijs2005/bienesraices/internal/server/repositories/messages"
	propertiesrepo "github.com/dmitrijs2005/bienesraices/internal/server/repositories/properties"
	usersrepo "github.com/dmitrijs2005/bienesraices/internal/server/repositories/users"
)

// --- helpers ---

func newSQLMockDB(t *testing.T) *sql.DB {
	t.Helper()
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// overrideWithTx replaces the transaction helper with a pass-through so the
// stateful fake repositories can be used without a real database.
func overrideWithTx(t *testing.T) {
	t.Helper()
	orig := withTx
	withTx = func(ctx context.Context, db *sql.DB, opts *sql.TxOptions, fn func(context.Context, dbx.DBTX) error) error {
		return fn(ctx, db)
	}
	t.Cleanup(func() { withTx = orig })
}

// fakeUsersRepo is an in-memory users.Repository so lifecycle flows can be
// exercised end to end.
type fakeUsersRepo struct {
	mu     sync.Mutex
	byID   map[string]*models.User
	nextID int
}

func newFakeUsersRepo() *fakeUsersRepo {
	return &fakeUsersRepo{byID: make(map[string]*models.User)}
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.byID {
		if existing.Email == u.Email {
			return nil, common.ErrDuplicateEmail
		}
	}
	f.nextID++
	u.ID = fmt.Sprintf("u-%d", f.nextID)
	u.CreatedAt = time.Now()
	clone := *u
	f.byID[u.ID] = &clone
	return u, nil
}

func (f *fakeUsersRepo) find(match func(*models.User) bool) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if match(u) {
			clone := *u
			return &clone, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUsersRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	return f.find(func(u *models.User) bool { return u.ID == id })
}

func (f *fakeUsersRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return f.find(func(u *models.User) bool { return u.Email == email })
}

func (f *fakeUsersRepo) FindByEmailForUpdate(ctx context.Context, email string) (*models.User, error) {
	return f.FindByEmail(ctx, email)
}

func (f *fakeUsersRepo) FindByToken(ctx context.Context, token string) (*models.User, error) {
	return f.find(func(u *models.User) bool { return u.Pending.Pending() && u.Pending.Token == token })
}

func (f *fakeUsersRepo) FindByTokenForUpdate(ctx context.Context, token string) (*models.User, error) {
	return f.FindByToken(ctx, token)
}

func (f *fakeUsersRepo) Save(ctx context.Context, u *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[u.ID]; !ok {
		return fmt.Errorf("unexpected rows affected: 0")
	}
	clone := *u
	f.byID[u.ID] = &clone
	return nil
}

type fakeRepoManager struct {
	u *fakeUsersRepo
	p *fakePropertiesRepo
	m *fakeMessagesRepo
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error     { return nil }
func (m *fakeRepoManager) Users(db dbx.DBTX) usersrepo.Repository           { return m.u }
func (m *fakeRepoManager) Properties(db dbx.DBTX) propertiesrepo.Repository { return m.p }
func (m *fakeRepoManager) Messages(db dbx.DBTX) messagesrepo.Repository     { return m.m }

type fakeDispatcher struct {
	mu            sync.Mutex
	confirmations []mailer.Payload
	resets        []mailer.Payload
}

func (d *fakeDispatcher) DispatchConfirmation(p mailer.Payload) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.confirmations = append(d.confirmations, p)
}

func (d *fakeDispatcher) DispatchReset(p mailer.Payload) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.resets = append(d.resets, p)
}

func newAccountService(t *testing.T) (*AccountService, *fakeUsersRepo, *fakeDispatcher) {
	t.Helper()
	overrideWithTx(t)
	repo := newFakeUsersRepo()
	disp := &fakeDispatcher{}
	cfg := &config.Config{SecretKey: "k", SessionTokenValidityDuration: time.Hour}
	svc := NewAccountService(newSQLMockDB(t), &fakeRepoManager{u: repo}, disp, cfg)
	return svc, repo, disp
}

// --- registration ---

func TestRegister_CreatesUnconfirmedUserWithHashedPassword(t *testing.T) {
	svc, _, disp := newAccountService(t)

	u, err := svc.Register(context.Background(), "Max", "max@max.com", "password123")
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}
	if u.Confirmed {
		t.Fatal("new user must start unconfirmed")
	}
	if u.PasswordHash == "password123" || u.PasswordHash == "" {
		t.Fatalf("password stored in the clear or empty: %q", u.PasswordHash)
	}
	if !auth.VerifyPassword("password123", u.PasswordHash) {
		t.Fatal("stored hash does not verify against the original password")
	}
	if u.Pending.Kind != models.ActionConfirmation || u.Pending.Token == "" {
		t.Fatalf("expected pending confirmation, got %+v", u.Pending)
	}
	if len(disp.confirmations) != 1 || disp.confirmations[0].Token != u.Pending.Token {
		t.Fatalf("confirmation email not dispatched with the token: %+v", disp.confirmations)
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, _, _ := newAccountService(t)

	if _, err := svc.Register(context.Background(), "Max", "max@max.com", "password123"); err != nil {
		t.Fatalf("first Register error: %v", err)
	}
	_, err := svc.Register(context.Background(), "Other", "max@max.com", "different")
	if !errors.Is(err, common.ErrDuplicateEmail) {
		t.Fatalf("want ErrDuplicateEmail, got %v", err)
	}
}

// --- confirmation ---

func TestConfirm_IsSingleUse(t *testing.T) {
	svc, repo, _ := newAccountService(t)

	u, err := svc.Register(context.Background(), "Max", "max@max.com", "password123")
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}
	token := u.Pending.Token

	if err := svc.Confirm(context.Background(), token); err != nil {
		t.Fatalf("Confirm error: %v", err)
	}
	stored, _ := repo.FindByID(context.Background(), u.ID)
	if !stored.Confirmed || stored.Pending.Pending() {
		t.Fatalf("expected confirmed user without pending action, got %+v", stored)
	}

	if err := svc.Confirm(context.Background(), token); !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("second Confirm with same token: want ErrInvalidToken, got %v", err)
	}
}

func TestConfirm_UnknownToken(t *testing.T) {
	svc, _, _ := newAccountService(t)

	if err := svc.Confirm(context.Background(), "nosuchtoken"); !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("want ErrInvalidToken, got %v", err)
	}
}

func TestConfirm_RejectsResetToken(t *testing.T) {
	svc, repo, _ := newAccountService(t)

	u, _ := svc.Register(context.Background(), "Max", "max@max.com", "password123")
	_ = svc.Confirm(context.Background(), u.Pending.Token)
	if err := svc.RequestReset(context.Background(), "max@max.com"); err != nil {
		t.Fatalf("RequestReset error: %v", err)
	}
	stored, _ := repo.FindByID(context.Background(), u.ID)

	if err := svc.Confirm(context.Background(), stored.Pending.Token); !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("Confirm with reset token: want ErrInvalidToken, got %v", err)
	}
}

// --- password reset ---

func TestRequestReset_UnknownEmail(t *testing.T) {
	svc, _, _ := newAccountService(t)

	err := svc.RequestReset(context.Background(), "ghost@max.com")
	if !errors.Is(err, common.ErrUnknownEmail) {
		t.Fatalf("want ErrUnknownEmail, got %v", err)
	}
}

func TestRequestReset_OverwritesPreviousToken(t *testing.T) {
	svc, _, disp := newAccountService(t)

	u, _ := svc.Register(context.Background(), "Max", "max@max.com", "password123")
	_ = svc.Confirm(context.Background(), u.Pending.Token)

	if err := svc.RequestReset(context.Background(), "max@max.com"); err != nil {
		t.Fatalf("first RequestReset error: %v", err)
	}
	if err := svc.RequestReset(context.Background(), "max@max.com"); err != nil {
		t.Fatalf("second RequestReset error: %v", err)
	}
	if len(disp.resets) != 2 {
		t.Fatalf("expected 2 reset emails, got %d", len(disp.resets))
	}
	first, second := disp.resets[0].Token, disp.resets[1].Token
	if first == second {
		t.Fatal("expected a fresh token per request")
	}

	if err := svc.CheckResetToken(context.Background(), first); !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("overwritten token must be invalid, got %v", err)
	}
	if err := svc.CheckResetToken(context.Background(), second); err != nil {
		t.Fatalf("latest token must be valid, got %v", err)
	}
}

func TestCheckResetToken_RejectsConfirmationToken(t *testing.T) {
	svc, _, _ := newAccountService(t)

	u, _ := svc.Register(context.Background(), "Max", "max@max.com", "password123")
	if err := svc.CheckResetToken(context.Background(), u.Pending.Token); !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("want ErrInvalidToken, got %v", err)
	}
}

func TestCompleteReset_RehashesAndClearsToken(t *testing.T) {
	svc, _, disp := newAccountService(t)

	u, _ := svc.Register(context.Background(), "Max", "max@max.com", "oldpassword")
	_ = svc.Confirm(context.Background(), u.Pending.Token)
	_ = svc.RequestReset(context.Background(), "max@max.com")
	token := disp.resets[0].Token

	if err := svc.CompleteReset(context.Background(), token, "newpassword"); err != nil {
		t.Fatalf("CompleteReset error: %v", err)
	}

	if _, err := svc.Authenticate(context.Background(), "max@max.com", "newpassword"); err != nil {
		t.Fatalf("Authenticate with new password error: %v", err)
	}
	if _, err := svc.Authenticate(context.Background(), "max@max.com", "oldpassword"); !errors.Is(err, common.ErrInvalidPassword) {
		t.Fatalf("old password must be rejected, got %v", err)
	}

	if err := svc.CompleteReset(context.Background(), token, "thirdpassword"); !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("reused reset token: want ErrInvalidToken, got %v", err)
	}
}

// --- authentication ---

func TestAuthenticate_UnknownUser(t *testing.T) {
	svc, _, _ := newAccountService(t)

	_, err := svc.Authenticate(context.Background(), "ghost@max.com", "whatever")
	if !errors.Is(err, common.ErrUnknownUser) {
		t.Fatalf("want ErrUnknownUser, got %v", err)
	}
}

func TestAuthenticate_UnconfirmedRegardlessOfPassword(t *testing.T) {
	svc, _, _ := newAccountService(t)

	_, _ = svc.Register(context.Background(), "Max", "max@max.com", "password123")

	for _, password := range []string{"password123", "wrongpassword"} {
		_, err := svc.Authenticate(context.Background(), "max@max.com", password)
		if !errors.Is(err, common.ErrAccountNotConfirmed) {
			t.Fatalf("password %q: want ErrAccountNotConfirmed, got %v", password, err)
		}
	}
}

func TestAuthenticate_WrongPassword(t *testing.T) {
	svc, _, _ := newAccountService(t)

	u, _ := svc.Register(context.Background(), "Max", "max@max.com", "password123")
	_ = svc.Confirm(context.Background(), u.Pending.Token)

	_, err := svc.Authenticate(context.Background(), "max@max.com", "wrongpassword")
	if !errors.Is(err, common.ErrInvalidPassword) {
		t.Fatalf("want ErrInvalidPassword, got %v", err)
	}
}

func TestAuthenticate_MintsParseableSessionToken(t *testing.T) {
	svc, _, _ := newAccountService(t)

	u, _ := svc.Register(context.Background(), "Max", "max@max.com", "password123")
	_ = svc.Confirm(context.Background(), u.Pending.Token)

	tokenString, err := svc.Authenticate(context.Background(), "max@max.com", "password123")
	if err != nil {
		t.Fatalf("Authenticate error: %v", err)
	}
	claims, err := auth.ParseSessionToken(tokenString, []byte("k"))
	if err != nil {
		t.Fatalf("ParseSessionToken error: %v", err)
	}
	if claims.UserID != u.ID || claims.Name != "Max" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}
