package entity

import (
	"time"
)

// Account is the sole persisted aggregate. The currently honored access and
// refresh tokens live on the row itself: whatever is stored here is the only
// pair the verifier accepts, so overwriting it revokes every prior session.
// Password holds a bcrypt digest and is never serialized outward.
type Account struct {
	ID           string
	Email        string
	Name         string
	Password     string
	AccessToken  *string
	RefreshToken *string
	IsActive     bool
	IsDeleted    bool
	DeletedAt    *time.Time
	IsUpdated    bool
	UpdatedAt    *time.Time
	LastLoginAt  *time.Time
	CreatedAt    time.Time
}

// Summary is the outward-facing projection of an account.
type Summary struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	Name        string     `json:"name"`
	IsActive    bool       `json:"is_active"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

func (a *Account) Summary() Summary {
	return Summary{
		ID:          a.ID,
		Email:       a.Email,
		Name:        a.Name,
		IsActive:    a.IsActive,
		LastLoginAt: a.LastLoginAt,
		UpdatedAt:   a.UpdatedAt,
		CreatedAt:   a.CreatedAt,
	}
}
