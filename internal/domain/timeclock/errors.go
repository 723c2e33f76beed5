package timeclock

import "errors"

// Timeclock domain errors
var (
	// ErrInvalidPIN is the single kiosk-facing authentication failure.
	// It deliberately carries no hint about which PINs exist.
	ErrInvalidPIN = errors.New("invalid PIN provided")
)
