package timeclock

import (
	"context"

	"github.com/shiftlog/timeclock-backend-go/internal/domain/user"
)

// ClockService resolves kiosk PIN submissions into clock actions.
type ClockService interface {
	// Clock identifies the employee owning pin, resolves whether this
	// is a clock-in or clock-out from their latest log, and durably
	// records the new log together with its audit entry.
	Clock(ctx context.Context, req PinClockRequest) (ClockResponse, error)

	// UserStatuses reports every user's current clock state.
	UserStatuses(ctx context.Context) ([]user.UserStatusResponse, error)

	// Purge deletes all clock logs to start a new reporting period.
	// It requires exclusive access: no clock commit may be in flight.
	Purge(ctx context.Context) error
}
