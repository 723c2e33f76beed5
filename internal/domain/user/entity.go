package user

import "time"

type Role string

const (
	RoleEmployee Role = "EMPLOYEE"
	RoleAdmin    Role = "ADMIN"
)

// User is an identity known to the kiosk. Employees authenticate with
// a PIN (stored only as a bcrypt hash), admins with the same hash used
// as a password.
type User struct {
	ID        string
	Email     string
	Role      Role
	PINHash   string
	CreatedAt time.Time
	UpdatedAt time.Time
}
