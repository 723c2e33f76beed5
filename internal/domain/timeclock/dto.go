package timeclock

import (
	"time"

	"github.com/shiftlog/timeclock-backend-go/internal/pkg/validator"
)

type PinClockRequest struct {
	PIN string `json:"pin"`
}

func (r PinClockRequest) Validate() error {
	if !validator.IsValidPIN(r.PIN) {
		return validator.ValidationErrors{{Field: "pin", Message: "pin must be 4-8 digits"}}
	}
	return nil
}

// ClockResponse is returned to the kiosk after a successful clock
// action.
type ClockResponse struct {
	Message                string      `json:"message"`
	UserEmail              string      `json:"user_email"`
	Action                 ClockAction `json:"action"`
	Timestamp              time.Time   `json:"timestamp"`
	SessionID              string      `json:"session_id"`
	HoursWorkedThisSession float64     `json:"hours_worked_this_session"`
}
