// Package audit records an operations trail of accepted user actions.
//
// Entries always go to the structured log. When a database is configured
// they are also written to the operation_log table. The trail is for
// operators; it is never read back to restore a session.
package audit

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Action is the kind of audited action.
type Action string

const (
	ActionLoad    Action = "load"
	ActionReset   Action = "reset"
	ActionMissing Action = "missing"
	ActionDedupe  Action = "dedupe"
	ActionScale   Action = "scale"
	ActionConvert Action = "convert"
	ActionExport  Action = "export"
)

// Severity ranks how much an action changes data.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Entry is one audited action.
type Entry struct {
	ID         string    `json:"id"`
	SessionID  string    `json:"session_id"`
	Action     Action    `json:"action"`
	Severity   Severity  `json:"severity"`
	Detail     string    `json:"detail,omitempty"`
	RowsBefore int       `json:"rows_before"`
	RowsAfter  int       `json:"rows_after"`
	IPAddress  string    `json:"ip_address,omitempty"`
	UserAgent  string    `json:"user_agent,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewEntry fills ID, Severity, CreatedAt and the client fields from ctx.
func NewEntry(ctx context.Context, sessionID string, action Action, detail string, before, after int) Entry {
	return Entry{
		ID:         uuid.NewString(),
		SessionID:  sessionID,
		Action:     action,
		Severity:   severityOf(action, before, after),
		Detail:     detail,
		RowsBefore: before,
		RowsAfter:  after,
		IPAddress:  IPAddressFromContext(ctx),
		UserAgent:  UserAgentFromContext(ctx),
		CreatedAt:  time.Now().UTC(),
	}
}

func severityOf(action Action, before, after int) Severity {
	switch action {
	case ActionReset:
		return SeverityHigh
	case ActionLoad, ActionExport:
		return SeverityLow
	}
	if after < before {
		return SeverityHigh
	}
	return SeverityMedium
}

// Recorder stores audit entries.
type Recorder interface {
	Record(ctx context.Context, e Entry) error
}

// LogRecorder writes entries to a slog logger.
type LogRecorder struct {
	logger *slog.Logger
}

// NewLogRecorder returns a recorder writing to logger, or to the default
// logger when logger is nil.
func NewLogRecorder(logger *slog.Logger) *LogRecorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogRecorder{logger: logger}
}

func (r *LogRecorder) Record(ctx context.Context, e Entry) error {
	r.logger.LogAttrs(ctx, slog.LevelInfo, "audit",
		slog.String("audit_id", e.ID),
		slog.String("session_id", e.SessionID),
		slog.String("action", string(e.Action)),
		slog.String("severity", string(e.Severity)),
		slog.String("detail", e.Detail),
		slog.Int("rows_before", e.RowsBefore),
		slog.Int("rows_after", e.RowsAfter),
		slog.String("ip", e.IPAddress),
	)
	return nil
}

// Multi fans an entry out to every recorder. All recorders are called even
// if one fails; the errors are joined.
func Multi(recs ...Recorder) Recorder {
	return multi(recs)
}

type multi []Recorder

func (m multi) Record(ctx context.Context, e Entry) error {
	var errs []error
	for _, r := range m {
		if err := r.Record(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
