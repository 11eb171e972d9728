package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/bienesraices/internal/common"
	"github.com/dmitrijs2005/bienesraices/internal/dbx"
	"github.com/dmitrijs2005/bienesraices/internal/server/models"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

// PostgresRepository implements user storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const userColumns = `id, name, email, password_hash, confirmed, token, token_purpose, created_at`

func scanUser(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	var token, purpose sql.NullString
	err := row.Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash,
		&user.Confirmed, &token, &purpose, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	if token.Valid {
		user.Pending = models.PendingAction{Kind: models.ActionKind(purpose.String), Token: token.String}
	}
	return user, nil
}

func pendingColumns(user *models.User) (token, purpose sql.NullString) {
	if user.Pending.Pending() {
		token = sql.NullString{String: user.Pending.Token, Valid: true}
		purpose = sql.NullString{String: string(user.Pending.Kind), Valid: true}
	}
	return token, purpose
}

// Create inserts a new user row. A unique-violation on email is reported as
// common.ErrDuplicateEmail.
func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	query := `
		INSERT INTO users (name, email, password_hash, confirmed, token, token_purpose)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`
	token, purpose := pendingColumns(user)
	err := r.db.QueryRowContext(ctx, query,
		user.Name, user.Email, user.PasswordHash, user.Confirmed, token, purpose).
		Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return nil, common.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return user, nil
}

// FindByID returns the user with the given id.
func (r *PostgresRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.db.QueryRowContext(ctx, query, id))
}

// FindByEmail returns the user registered under email (matched as stored).
func (r *PostgresRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(r.db.QueryRowContext(ctx, query, email))
}

// FindByEmailForUpdate is FindByEmail with a row lock; call it inside a
// transaction.
func (r *PostgresRepository) FindByEmailForUpdate(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1 FOR UPDATE`
	return scanUser(r.db.QueryRowContext(ctx, query, email))
}

// FindByToken returns the user owning the given pending-action token.
func (r *PostgresRepository) FindByToken(ctx context.Context, token string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE token = $1`
	return scanUser(r.db.QueryRowContext(ctx, query, token))
}

// FindByTokenForUpdate is FindByToken with a row lock; call it inside a
// transaction.
func (r *PostgresRepository) FindByTokenForUpdate(ctx context.Context, token string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE token = $1 FOR UPDATE`
	return scanUser(r.db.QueryRowContext(ctx, query, token))
}

// Save writes back the mutable account fields. Exactly one row must be
// affected.
func (r *PostgresRepository) Save(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users
		SET password_hash = $2, confirmed = $3, token = $4, token_purpose = $5
		WHERE id = $1
	`
	token, purpose := pendingColumns(user)
	res, err := r.db.ExecContext(ctx, query, user.ID, user.PasswordHash, user.Confirmed, token, purpose)
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
