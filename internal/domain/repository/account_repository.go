package repository

import (
	"context"
	"errors"
	"time"

	"github.com/raditya-pw/go-account-api/internal/domain/entity"
)

// ErrNotFound is returned by lookups and row-targeting writes when no
// non-deleted row matches.
var ErrNotFound = errors.New("not found")

// AccountRepository defines persistence for accounts. Every lookup and write
// targets non-deleted rows only; soft-deleted accounts are invisible through
// this interface except as the absence they leave behind.
type AccountRepository interface {
	// InTx runs fn against a repository bound to a single transaction.
	// Everything fn does commits together or not at all.
	InTx(ctx context.Context, fn func(AccountRepository) error) error

	Create(ctx context.Context, a *entity.Account) error
	GetByID(ctx context.Context, id string) (*entity.Account, error)
	GetByEmail(ctx context.Context, email string) (*entity.Account, error)
	// EmailExists reports whether a non-deleted account holds the email; a
	// soft-deleted account with the same email does not count.
	EmailExists(ctx context.Context, email string) (bool, error)
	// UpdateTokens overwrites the stored token pair. Nil values clear.
	UpdateTokens(ctx context.Context, id string, access, refresh *string) error
	StampLastLogin(ctx context.Context, id string, at time.Time) error
	// UpdateFields applies a column->value patch and sets the update-tracking
	// stamp. Callers must have stripped protected fields already.
	UpdateFields(ctx context.Context, id string, fields map[string]any, at time.Time) error
	// SoftDelete flags the row deleted, clears tokens and deactivates it.
	// Returns ErrNotFound when the row is absent or already deleted.
	SoftDelete(ctx context.Context, id string, at time.Time) error
}

// AuditRepository persists the append-only auth event trail.
type AuditRepository interface {
	Insert(ctx context.Context, e *entity.AuditLog) error
}
