package response

import (
	"errors"
	"net/http"

	"github.com/shiftlog/timeclock-backend-go/internal/domain/auth"
	"github.com/shiftlog/timeclock-backend-go/internal/domain/timeclock"
	"github.com/shiftlog/timeclock-backend-go/internal/domain/user"
	"github.com/shiftlog/timeclock-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Kiosk errors. The message is deliberately generic: the kiosk
	// must not learn which PINs are close to valid ones.
	case errors.Is(err, timeclock.ErrInvalidPIN):
		Unauthorized(w, "Invalid PIN provided.")

	// Auth domain errors
	case errors.Is(err, auth.ErrInvalidCredentials):
		Unauthorized(w, err.Error())
	case errors.Is(err, auth.ErrInvalidToken):
		Unauthorized(w, "Invalid or expired token")
	case errors.Is(err, auth.ErrAdminRequired):
		Forbidden(w, err.Error())

	// User domain errors
	case errors.Is(err, user.ErrUserNotFound):
		NotFound(w, "User not found")
	case errors.Is(err, user.ErrEmailExists):
		Conflict(w, "Email is already in use")
	case errors.Is(err, user.ErrDuplicatePIN):
		Conflict(w, "This PIN is already in use by another employee. Please choose a unique PIN.")
	case errors.Is(err, user.ErrAdminOnly):
		Forbidden(w, err.Error())

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
