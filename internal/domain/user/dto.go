package user

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/shiftlog/timeclock-backend-go/internal/pkg/validator"
)

type CreateUserRequest struct {
	Email string `json:"email"`
	Role  Role   `json:"role"`
	PIN   string `json:"pin"`
}

func (r CreateUserRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Email) {
		errs = append(errs, validator.ValidationError{Field: "email", Message: "email is required"})
	} else if !validator.IsValidEmail(r.Email) {
		errs = append(errs, validator.ValidationError{Field: "email", Message: "invalid email format"})
	}

	if r.Role != RoleEmployee && r.Role != RoleAdmin {
		errs = append(errs, validator.ValidationError{Field: "role", Message: "role must be EMPLOYEE or ADMIN"})
	}

	if !validator.IsValidPIN(r.PIN) {
		errs = append(errs, validator.ValidationError{Field: "pin", Message: "pin must be 4-8 digits"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type ResetPINRequest struct {
	NewPIN string `json:"new_pin"`
}

func (r ResetPINRequest) Validate() error {
	if !validator.IsValidPIN(r.NewPIN) {
		return validator.ValidationErrors{{Field: "new_pin", Message: "pin must be 4-8 digits"}}
	}
	return nil
}

type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

func ToUserResponse(u User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

// UserStatusResponse reports a user's current clock state for the
// admin status board.
type UserStatusResponse struct {
	ID                  string     `json:"id"`
	Email               string     `json:"email"`
	Role                Role       `json:"role"`
	Status              string     `json:"status"`
	LastActionTimestamp *time.Time `json:"last_action_timestamp,omitempty"`
}

// DisplayName derives a presentable name from the email local part:
// fragments split on '.', '_' and '-', each capitalized, joined with
// spaces. Malformed emails fall back to a generic label.
func DisplayName(email string) string {
	at := strings.Index(email, "@")
	if at <= 0 {
		return "User"
	}
	local := email[:at]

	fragments := strings.FieldsFunc(local, func(r rune) bool {
		return r == '.' || r == '_' || r == '-'
	})
	if len(fragments) == 0 {
		return "User"
	}

	parts := make([]string, 0, len(fragments))
	for _, f := range fragments {
		lower := strings.ToLower(f)
		// Capitalize the first rune, not the first byte.
		r, size := utf8.DecodeRuneInString(lower)
		parts = append(parts, string(unicode.ToUpper(r))+lower[size:])
	}
	return strings.Join(parts, " ")
}
