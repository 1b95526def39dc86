package audit

import (
	"context"
	"log/slog"

	dErrors "farmgate/pkg/domain-errors"
)

// Store persists audit records. Implementations must preserve the order
// in which Append is called from a single goroutine.
type Store interface {
	Append(ctx context.Context, record Record) error
}

// Logger writes audit records through a Store and mirrors each entry to
// the structured log so operators see the trail without tailing the sink.
type Logger struct {
	store Store
	log   *slog.Logger
}

func NewLogger(store Store, log *slog.Logger) *Logger {
	return &Logger{store: store, log: log}
}

// Log appends the record. A sink failure is surfaced to the caller; the
// action it describes may already have happened, so the caller decides
// whether that is fatal for its request.
func (l *Logger) Log(ctx context.Context, record Record) error {
	if err := l.store.Append(ctx, record); err != nil {
		l.log.Error("audit append failed",
			"action", record.Action,
			"actor", record.ActorUsername,
			"error", err,
		)
		return dErrors.Wrap(err, dErrors.CodeAuditWriteFailed, "failed to write audit record")
	}

	l.log.Info("AUDIT",
		"action", record.Action,
		"actor", record.ActorUsername,
		"tenant_id", record.TenantID,
		"source_ip", record.SourceIP,
	)
	return nil
}
