package audit

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

// PostgresStore writes audit records to the audit_records table. Rows
// are insert-only; there are no update or delete paths.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Append(ctx context.Context, record Record) error {
	query := `
		INSERT INTO audit_records (
			id, occurred_at, actor_username, actor_email,
			action, tenant_id, details, source_ip, user_agent, request_id
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	var details any
	if len(record.Details) > 0 {
		details = []byte(record.Details)
	}

	_, err := s.db.ExecContext(ctx, query,
		uuid.New(),
		record.Timestamp,
		record.ActorUsername,
		record.ActorEmail,
		record.Action,
		nullable(record.TenantID),
		details,
		record.SourceIP,
		nullable(record.UserAgent),
		nullable(record.RequestID),
	)
	if err != nil {
		return fmt.Errorf("inserting audit record: %w", err)
	}
	return nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
