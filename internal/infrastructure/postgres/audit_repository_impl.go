package postgres

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/raditya-pw/go-account-api/internal/domain/entity"
	"github.com/raditya-pw/go-account-api/internal/domain/repository"
)

type AuditRepository struct {
	db DBTX
}

func NewAuditRepository(pool *pgxpool.Pool) *AuditRepository {
	return &AuditRepository{db: pool}
}

func (r *AuditRepository) Insert(ctx context.Context, e *entity.AuditLog) error {
	md, err := json.Marshal(e.Metadata)
	if err != nil {
		md = []byte("{}")
	}

	var accountID pgtype.UUID
	if e.AccountID != "" {
		if parsed, perr := uuid.Parse(e.AccountID); perr == nil {
			accountID.Bytes = parsed
			accountID.Valid = true
		}
	}
	email := pgtype.Text{String: e.Email, Valid: e.Email != ""}
	ip := pgtype.Text{String: e.IP, Valid: e.IP != ""}
	ua := pgtype.Text{String: e.UserAgent, Valid: e.UserAgent != ""}

	_, err = r.db.Exec(ctx, `
		INSERT INTO audit_logs (account_id, email, action, ip, user_agent, metadata)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, accountID, email, e.Action, ip, ua, md)
	return err
}

var _ repository.AuditRepository = (*AuditRepository)(nil)
