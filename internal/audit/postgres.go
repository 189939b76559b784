package audit

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
)

// Execer is the subset of *pgxpool.Pool used by PgRecorder.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

const createOperationLog = `
CREATE TABLE IF NOT EXISTS operation_log (
    id          UUID PRIMARY KEY,
    session_id  UUID NOT NULL,
    action      TEXT NOT NULL,
    severity    TEXT NOT NULL,
    detail      TEXT,
    rows_before INTEGER NOT NULL,
    rows_after  INTEGER NOT NULL,
    ip_address  TEXT,
    user_agent  TEXT,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS operation_log_session_idx ON operation_log (session_id, created_at);
`

const insertOperationLog = `
INSERT INTO operation_log
    (id, session_id, action, severity, detail, rows_before, rows_after, ip_address, user_agent, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

// PgRecorder writes entries to PostgreSQL.
type PgRecorder struct {
	db Execer
}

// NewPgRecorder creates the operation_log table if needed.
func NewPgRecorder(ctx context.Context, db Execer) (*PgRecorder, error) {
	if _, err := db.Exec(ctx, createOperationLog); err != nil {
		return nil, fmt.Errorf("create operation_log: %w", err)
	}
	return &PgRecorder{db: db}, nil
}

func (r *PgRecorder) Record(ctx context.Context, e Entry) error {
	_, err := r.db.Exec(ctx, insertOperationLog,
		e.ID,
		e.SessionID,
		string(e.Action),
		string(e.Severity),
		toPgText(e.Detail),
		e.RowsBefore,
		e.RowsAfter,
		toPgText(e.IPAddress),
		toPgText(e.UserAgent),
		pgtype.Timestamptz{Time: e.CreatedAt, Valid: true},
	)
	if err != nil {
		return fmt.Errorf("insert operation_log: %w", err)
	}
	return nil
}

func toPgText(s string) pgtype.Text {
	return pgtype.Text{String: s, Valid: s != ""}
}
