package user

import "errors"

// User domain errors
var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailExists  = errors.New("email is already in use")
	ErrDuplicatePIN = errors.New("this PIN is already in use by another employee")
	ErrAdminOnly    = errors.New("admin privilege required")
)
