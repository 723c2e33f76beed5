package audit

import "time"

type Status string

const (
	StatusSuccess Status = "SUCCESS"
	StatusFailure Status = "FAILURE"
)

// Action tags drawn from the known vocabulary.
const (
	ActionPinLoginFailure  = "PIN_LOGIN_FAILURE"
	ActionClockInSuccess   = "CLOCK_IN_SUCCESS"
	ActionClockOutSuccess  = "CLOCK_OUT_SUCCESS"
	ActionAdminLoginOK     = "ADMIN_LOGIN_SUCCESS"
	ActionAdminLoginFailed = "ADMIN_LOGIN_FAILURE"
	ActionUserCreate       = "USER_CREATE_SUCCESS"
	ActionUserDelete       = "USER_DELETE_SUCCESS"
	ActionPINReset         = "USER_CREDENTIALS_RESET_SUCCESS"
	ActionWeeklyReset      = "WEEKLY_RESET_SUCCESS"
	ActionTimesheetExport  = "TIMESHEET_EXPORT"
	ActionAuditExport      = "AUDIT_EXPORT"
)

// Entry is an append-only audit record. Entries are never updated or
// deleted; they survive the weekly purge so the history of resets is
// itself preserved.
type Entry struct {
	ID        string
	UserID    *string // nil for system-initiated or unattributable events
	Action    string
	Status    Status
	Timestamp time.Time
	Details   string
}
