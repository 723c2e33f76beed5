package audit

import (
	"context"
	"time"
)

// AuditRepository defines data access methods for audit entries.
type AuditRepository interface {
	// Create appends an audit entry.
	Create(ctx context.Context, entry Entry) (Entry, error)

	// FindRecent retrieves entries newest first with offset/limit
	// paging, plus the total entry count.
	FindRecent(ctx context.Context, offset, limit int) ([]Entry, int64, error)

	// FindInRange retrieves entries with start <= timestamp < end,
	// ordered by timestamp.
	FindInRange(ctx context.Context, start, end time.Time) ([]Entry, error)

	// FindAll retrieves every entry ordered by timestamp.
	FindAll(ctx context.Context) ([]Entry, error)
}
