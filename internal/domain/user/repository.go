package user

import "context"

// UserRepository defines data access methods for user identities.
type UserRepository interface {
	// Create inserts a new user and returns it with generated fields.
	Create(ctx context.Context, u User) (User, error)

	// GetByID retrieves a user by ID.
	GetByID(ctx context.Context, id string) (User, error)

	// GetByEmail retrieves a user by email.
	GetByEmail(ctx context.Context, email string) (User, error)

	// FindAllByRole retrieves every user holding the given role, in a
	// stable order. The kiosk PIN matcher scans this list linearly.
	FindAllByRole(ctx context.Context, role Role) ([]User, error)

	// FindAll retrieves every user.
	FindAll(ctx context.Context) ([]User, error)

	// FindByIDs retrieves the users whose IDs appear in ids. Missing
	// IDs are silently absent from the result.
	FindByIDs(ctx context.Context, ids []string) (map[string]User, error)

	// UpdatePINHash replaces a user's stored credential hash.
	UpdatePINHash(ctx context.Context, id string, pinHash string) error

	// Delete removes a user. Historical clock logs and audit entries
	// keep referencing the deleted ID.
	Delete(ctx context.Context, id string) error
}
