package timeclock

import "time"

type ClockAction string

const (
	ActionClockIn  ClockAction = "CLOCK_IN"
	ActionClockOut ClockAction = "CLOCK_OUT"
)

// ClockLog is a single clock-in or clock-out event. Logs for one user
// strictly alternate CLOCK_IN, CLOCK_OUT when ordered by timestamp; a
// CLOCK_OUT carries the session ID of its paired CLOCK_IN plus the
// elapsed duration in fractional hours. Logs are immutable once
// written and only removed in bulk by the weekly purge.
type ClockLog struct {
	ID            string
	UserID        string
	Action        ClockAction
	Timestamp     time.Time
	SessionID     string
	DurationHours *float64
	CreatedAt     time.Time
}
