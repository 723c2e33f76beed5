package timeclock

import (
	"context"
	"time"
)

// ClockLogRepository defines data access methods for clock logs.
type ClockLogRepository interface {
	// Create inserts a new clock log and returns it with generated fields.
	Create(ctx context.Context, log ClockLog) (ClockLog, error)

	// LatestForUser retrieves the most recent clock log for a user,
	// or nil when the user has never clocked in.
	LatestForUser(ctx context.Context, userID string) (*ClockLog, error)

	// FindInRange retrieves clock logs with start <= timestamp < end,
	// ordered by timestamp.
	FindInRange(ctx context.Context, start, end time.Time) ([]ClockLog, error)

	// DeleteAll removes every clock log. Used only by the weekly purge.
	DeleteAll(ctx context.Context) error
}
