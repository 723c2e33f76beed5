package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/shiftlog/timeclock-backend-go/internal/domain/audit"
)

// Recorder appends audit entries. It has two write disciplines:
//
//   - Record participates in whatever transaction the context carries,
//     so a successful clock action and its audit entry commit or roll
//     back together. A storage error is returned to abort the caller's
//     transaction.
//   - RecordFailure writes outside any caller transaction so a failure
//     entry survives even though nothing else was written. Storage
//     errors here are logged, never surfaced: audit is an observer,
//     not a participant, on the failure path.
type Recorder interface {
	Record(ctx context.Context, userID *string, action string, status audit.Status, details string) error
	RecordFailure(ctx context.Context, userID *string, action string, details string)
}

type recorder struct {
	auditRepo audit.AuditRepository
}

func NewRecorder(auditRepo audit.AuditRepository) Recorder {
	return &recorder{auditRepo: auditRepo}
}

func (r *recorder) Record(ctx context.Context, userID *string, action string, status audit.Status, details string) error {
	_, err := r.auditRepo.Create(ctx, audit.Entry{
		UserID:    userID,
		Action:    action,
		Status:    status,
		Timestamp: time.Now().UTC(),
		Details:   details,
	})
	return err
}

func (r *recorder) RecordFailure(ctx context.Context, userID *string, action string, details string) {
	if err := r.Record(ctx, userID, action, audit.StatusFailure, details); err != nil {
		slog.Error("Failed to write audit failure entry", "action", action, "error", err)
	}
}
