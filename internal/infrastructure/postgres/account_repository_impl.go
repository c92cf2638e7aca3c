package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/raditya-pw/go-account-api/internal/domain/entity"
	"github.com/raditya-pw/go-account-api/internal/domain/repository"
)

// DBTX is satisfied by both *pgxpool.Pool and pgx.Tx, so the same repository
// code runs against the pool or inside a transaction.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type AccountRepository struct {
	db           DBTX
	pool         *pgxpool.Pool // nil when tx-bound
	queryTimeout time.Duration
}

func NewAccountRepository(pool *pgxpool.Pool, queryTimeout time.Duration) *AccountRepository {
	return &AccountRepository{db: pool, pool: pool, queryTimeout: queryTimeout}
}

// InTx begins a transaction and hands fn a repository bound to it. Any error
// from fn rolls the whole transaction back.
func (r *AccountRepository) InTx(ctx context.Context, fn func(repository.AccountRepository) error) error {
	if r.pool == nil {
		// already tx-bound; run in the surrounding transaction
		return fn(r)
	}
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(&AccountRepository{db: tx, queryTimeout: r.queryTimeout})
	})
}

func (r *AccountRepository) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.queryTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, r.queryTimeout)
}

const accountColumns = `id, email, name, password_hash, access_token, refresh_token,
		       is_active, is_deleted, deleted_at, is_updated, updated_at, last_login_at, created_at`

func scanAccount(row pgx.Row) (*entity.Account, error) {
	a := &entity.Account{}
	err := row.Scan(&a.ID, &a.Email, &a.Name, &a.Password, &a.AccessToken, &a.RefreshToken,
		&a.IsActive, &a.IsDeleted, &a.DeletedAt, &a.IsUpdated, &a.UpdatedAt, &a.LastLoginAt, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return a, nil
}

func (r *AccountRepository) Create(ctx context.Context, a *entity.Account) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()
	row := r.db.QueryRow(ctx, `
		INSERT INTO accounts (email, name, password_hash, access_token, refresh_token, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`, a.Email, a.Name, a.Password, a.AccessToken, a.RefreshToken, a.IsActive)
	return row.Scan(&a.ID, &a.CreatedAt)
}

func (r *AccountRepository) GetByID(ctx context.Context, id string) (*entity.Account, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()
	return scanAccount(r.db.QueryRow(ctx, `
		SELECT `+accountColumns+`
		FROM accounts
		WHERE id = $1 AND is_deleted = FALSE
	`, id))
}

func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*entity.Account, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()
	return scanAccount(r.db.QueryRow(ctx, `
		SELECT `+accountColumns+`
		FROM accounts
		WHERE email = $1 AND is_deleted = FALSE
	`, email))
}

// EmailExists deliberately ignores soft-deleted rows: a deleted account does
// not reserve its email.
func (r *AccountRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM accounts WHERE email = $1 AND is_deleted = FALSE
		)
	`, email).Scan(&exists)
	return exists, err
}

func (r *AccountRepository) UpdateTokens(ctx context.Context, id string, access, refresh *string) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()
	res, err := r.db.Exec(ctx, `
		UPDATE accounts
		SET access_token = $1, refresh_token = $2
		WHERE id = $3 AND is_deleted = FALSE
	`, access, refresh, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *AccountRepository) StampLastLogin(ctx context.Context, id string, at time.Time) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()
	res, err := r.db.Exec(ctx, `
		UPDATE accounts
		SET last_login_at = $1
		WHERE id = $2 AND is_deleted = FALSE
	`, at, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// UpdateFields applies an already-sanitized column patch plus the
// update-tracking stamp.
func (r *AccountRepository) UpdateFields(ctx context.Context, id string, fields map[string]any, at time.Time) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	set := "is_updated = TRUE, updated_at = $1"
	args := []any{at}
	for col, v := range fields {
		args = append(args, v)
		set += fmt.Sprintf(", %s = $%d", col, len(args))
	}
	args = append(args, id)

	res, err := r.db.Exec(ctx, fmt.Sprintf(`
		UPDATE accounts
		SET %s
		WHERE id = $%d AND is_deleted = FALSE
	`, set, len(args)), args...)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// SoftDelete is single-use: the is_deleted guard makes a second call report
// ErrNotFound instead of re-stamping.
func (r *AccountRepository) SoftDelete(ctx context.Context, id string, at time.Time) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()
	res, err := r.db.Exec(ctx, `
		UPDATE accounts
		SET is_deleted = TRUE, deleted_at = $1, is_active = FALSE,
		    access_token = NULL, refresh_token = NULL
		WHERE id = $2 AND is_deleted = FALSE
	`, at, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

var _ repository.AccountRepository = (*AccountRepository)(nil)
