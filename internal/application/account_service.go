package application

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/raditya-pw/go-account-api/internal/domain/entity"
	repo "github.com/raditya-pw/go-account-api/internal/domain/repository"
	"github.com/raditya-pw/go-account-api/pkg/apperr"
	"github.com/raditya-pw/go-account-api/pkg/helpers"
)

// Service is the account lifecycle engine. Every operation that touches the
// account row runs inside one transaction via Repo.InTx, so a failure at any
// step rolls the whole operation back and no partial state is ever observable.
type Service struct {
	Repo   repo.AccountRepository
	JWT    *helpers.JWTManager
	Hasher *helpers.PasswordHasher
	Logger *logrus.Logger
}

func NewService(r repo.AccountRepository, jwt *helpers.JWTManager, hasher *helpers.PasswordHasher, logger *logrus.Logger) *Service {
	return &Service{Repo: r, JWT: jwt, Hasher: hasher, Logger: logger}
}

// AuthResult is returned by Register and Login.
type AuthResult struct {
	Account      entity.Summary `json:"account"`
	AccessToken  string         `json:"access_token"`
	RefreshToken string         `json:"refresh_token"`
}

// Identity is the verified caller attached to the request context by the
// authorization check.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// protectedPatchFields can never be written through UpdateProfile, regardless
// of patch content. Guards against privilege escalation via mass-assignment.
var protectedPatchFields = map[string]bool{
	"id":            true,
	"email":         true,
	"password":      true,
	"password_hash": true,
	"access_token":  true,
	"refresh_token": true,
	"is_deleted":    true,
	"deleted_at":    true,
	"is_updated":    true,
	"updated_at":    true,
	"last_login_at": true,
	"created_at":    true,
}

// patchableColumns maps the patch keys a client may set to their columns.
var patchableColumns = map[string]string{
	"name":      "name",
	"is_active": "is_active",
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// fail keeps typed failures as-is and collapses anything else to Internal,
// logging the original for the operational trail.
func (s *Service) fail(op string, err error) error {
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return ae
	}
	if s.Logger != nil {
		s.Logger.WithError(err).WithField("op", op).Error("account operation failed")
	}
	return apperr.Internal()
}

func (s *Service) issuePair(a *entity.Account) (string, string, error) {
	access, _, err := s.JWT.GenerateAccessToken(a.ID, a.Email)
	if err != nil {
		return "", "", err
	}
	refresh, _, err := s.JWT.GenerateRefreshToken(a.ID, a.Email)
	if err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

// Register creates an Active account and its first token pair in one
// transaction. A failure after the insert but before the tokens are stored
// rolls the registration back entirely.
func (s *Service) Register(ctx context.Context, email, name, password string) (*AuthResult, error) {
	email = normalizeEmail(email)

	hash, err := s.Hasher.Hash(password)
	if err != nil {
		return nil, s.fail("register", err)
	}

	var res *AuthResult
	err = s.Repo.InTx(ctx, func(r repo.AccountRepository) error {
		exists, err := r.EmailExists(ctx, email)
		if err != nil {
			return err
		}
		if exists {
			return apperr.Conflict("email already registered")
		}

		a := &entity.Account{
			Email:    email,
			Name:     name,
			Password: hash,
			IsActive: true,
		}
		if err := r.Create(ctx, a); err != nil {
			return err
		}

		access, refresh, err := s.issuePair(a)
		if err != nil {
			return err
		}
		if err := r.UpdateTokens(ctx, a.ID, &access, &refresh); err != nil {
			return err
		}
		a.AccessToken = &access
		a.RefreshToken = &refresh

		res = &AuthResult{Account: a.Summary(), AccessToken: access, RefreshToken: refresh}
		return nil
	})
	if err != nil {
		return nil, s.fail("register", err)
	}

	if s.Logger != nil {
		s.Logger.WithField("account_id", res.Account.ID).Info("account registered")
	}
	return res, nil
}

// Login authenticates the credentials and rotates the stored token pair,
// which implicitly revokes whatever session held the previous pair. Absent
// account and wrong password fail identically to avoid enumeration.
func (s *Service) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = normalizeEmail(email)

	var res *AuthResult
	err := s.Repo.InTx(ctx, func(r repo.AccountRepository) error {
		a, err := r.GetByEmail(ctx, email)
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return apperr.Unauthorized("invalid credentials")
			}
			return err
		}
		if !s.Hasher.Compare(a.Password, password) {
			return apperr.Unauthorized("invalid credentials")
		}
		if !a.IsActive {
			return apperr.Forbidden("account deactivated")
		}

		access, refresh, err := s.issuePair(a)
		if err != nil {
			return err
		}
		if err := r.UpdateTokens(ctx, a.ID, &access, &refresh); err != nil {
			return err
		}
		now := time.Now()
		if err := r.StampLastLogin(ctx, a.ID, now); err != nil {
			return err
		}
		a.LastLoginAt = &now

		res = &AuthResult{Account: a.Summary(), AccessToken: access, RefreshToken: refresh}
		return nil
	})
	if err != nil {
		return nil, s.fail("login", err)
	}

	if s.Logger != nil {
		s.Logger.WithField("account_id", res.Account.ID).Info("login successful")
	}
	return res, nil
}

// Authorize verifies a presented access token end to end: signature and
// expiry, then the account behind it, then byte equality against the token
// currently stored on the row. The equality check is what enforces the
// single-active-token invariant: a newer login or a logout elsewhere revokes
// this token even though it has not expired. Failures stay coarse except the
// explicit expiry message.
func (s *Service) Authorize(ctx context.Context, token string) (*Identity, error) {
	claims, err := s.JWT.ParseAccessToken(token)
	if err != nil {
		if errors.Is(err, helpers.ErrTokenExpired) {
			return nil, apperr.Unauthorized("token expired")
		}
		return nil, apperr.Unauthorized("invalid access token")
	}

	a, err := s.Repo.GetByID(ctx, claims.AccountID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, apperr.Unauthorized("invalid access token")
		}
		return nil, s.fail("authorize", err)
	}
	if !a.IsActive {
		return nil, apperr.Forbidden("account deactivated")
	}
	if a.AccessToken == nil ||
		subtle.ConstantTimeCompare([]byte(*a.AccessToken), []byte(token)) != 1 {
		return nil, apperr.Unauthorized("invalid access token")
	}

	return &Identity{ID: a.ID, Email: a.Email, Name: a.Name}, nil
}

// GetProfile reads a non-deleted account by id.
func (s *Service) GetProfile(ctx context.Context, id string) (*entity.Summary, error) {
	a, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, apperr.NotFound("account not found")
		}
		return nil, s.fail("get_profile", err)
	}
	sum := a.Summary()
	return &sum, nil
}

// GetByEmail reads a non-deleted account by its lowercased email.
func (s *Service) GetByEmail(ctx context.Context, email string) (*entity.Summary, error) {
	a, err := s.Repo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, apperr.NotFound("account not found")
		}
		return nil, s.fail("get_by_email", err)
	}
	sum := a.Summary()
	return &sum, nil
}

// UpdateProfile applies a patch after unconditionally stripping protected
// fields, stamps the update-tracking flag, and returns the mutated record.
func (s *Service) UpdateProfile(ctx context.Context, id string, patch map[string]any) (*entity.Summary, error) {
	fields := map[string]any{}
	for k, v := range patch {
		if protectedPatchFields[k] {
			continue
		}
		if col, ok := patchableColumns[k]; ok {
			fields[col] = v
		}
	}

	var sum entity.Summary
	err := s.Repo.InTx(ctx, func(r repo.AccountRepository) error {
		if err := r.UpdateFields(ctx, id, fields, time.Now()); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return apperr.NotFound("account not found")
			}
			return err
		}
		a, err := r.GetByID(ctx, id)
		if err != nil {
			return err
		}
		sum = a.Summary()
		return nil
	})
	if err != nil {
		return nil, s.fail("update_profile", err)
	}
	return &sum, nil
}

// Logout clears both stored tokens. Repeating it while the account lives is a
// no-op write that still succeeds; on a deleted account it is NotFound.
func (s *Service) Logout(ctx context.Context, id string) error {
	err := s.Repo.InTx(ctx, func(r repo.AccountRepository) error {
		if err := r.UpdateTokens(ctx, id, nil, nil); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return apperr.NotFound("account not found")
			}
			return err
		}
		return nil
	})
	if err != nil {
		return s.fail("logout", err)
	}
	return nil
}

// SoftDelete terminally flags the account, clears its tokens and deactivates
// it. Single-use: a second call reports NotFound.
func (s *Service) SoftDelete(ctx context.Context, id string) (time.Time, error) {
	deletedAt := time.Now()
	err := s.Repo.InTx(ctx, func(r repo.AccountRepository) error {
		if err := r.SoftDelete(ctx, id, deletedAt); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return apperr.NotFound("account not found")
			}
			return err
		}
		return nil
	})
	if err != nil {
		return time.Time{}, s.fail("soft_delete", err)
	}
	if s.Logger != nil {
		s.Logger.WithField("account_id", id).Info("account soft-deleted")
	}
	return deletedAt, nil
}
