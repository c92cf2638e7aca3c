package entity

import "time"

// AuditLog is an append-only trail of auth events (register, login, logout,
// delete). AccountID and Email are best-effort: failed logins may only know
// the attempted email.
type AuditLog struct {
	ID        string
	AccountID string
	Email     string
	Action    string
	IP        string
	UserAgent string
	Metadata  map[string]any
	CreatedAt time.Time
}
