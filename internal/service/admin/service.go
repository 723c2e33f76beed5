package admin

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/shiftlog/timeclock-backend-go/internal/domain/audit"
	"github.com/shiftlog/timeclock-backend-go/internal/domain/user"
	auditService "github.com/shiftlog/timeclock-backend-go/internal/service/audit"
)

// AdminService covers administrative user management.
type AdminService interface {
	CreateUser(ctx context.Context, req user.CreateUserRequest) (user.UserResponse, error)
	ListUsers(ctx context.Context) ([]user.UserResponse, error)
	DeleteUser(ctx context.Context, id string) error
	ResetUserPIN(ctx context.Context, id string, newPIN string) error
}

type AdminServiceImpl struct {
	userRepo user.UserRepository
	recorder auditService.Recorder
}

func NewAdminService(userRepo user.UserRepository, recorder auditService.Recorder) AdminService {
	return &AdminServiceImpl{
		userRepo: userRepo,
		recorder: recorder,
	}
}

// CreateUser implements AdminService. Employee PINs must be unique
// among employees; because only hashes are stored, uniqueness is
// checked by comparing the candidate PIN against every employee hash.
func (s *AdminServiceImpl) CreateUser(ctx context.Context, req user.CreateUserRequest) (user.UserResponse, error) {
	if _, err := s.userRepo.GetByEmail(ctx, req.Email); err == nil {
		return user.UserResponse{}, user.ErrEmailExists
	} else if !errors.Is(err, user.ErrUserNotFound) {
		return user.UserResponse{}, fmt.Errorf("failed to check email: %w", err)
	}

	if req.Role == user.RoleEmployee {
		inUse, err := s.pinInUse(ctx, req.PIN, "")
		if err != nil {
			return user.UserResponse{}, err
		}
		if inUse {
			return user.UserResponse{}, user.ErrDuplicatePIN
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.PIN), bcrypt.DefaultCost)
	if err != nil {
		return user.UserResponse{}, fmt.Errorf("failed to hash pin: %w", err)
	}

	newUser, err := s.userRepo.Create(ctx, user.User{
		Email:   req.Email,
		Role:    req.Role,
		PINHash: string(hash),
	})
	if err != nil {
		return user.UserResponse{}, fmt.Errorf("failed to create user: %w", err)
	}

	if err := s.recorder.Record(ctx, nil, audit.ActionUserCreate, audit.StatusSuccess, "Admin created user: "+newUser.Email); err != nil {
		return user.UserResponse{}, fmt.Errorf("failed to record user creation: %w", err)
	}

	return user.ToUserResponse(newUser), nil
}

// ListUsers implements AdminService.
func (s *AdminServiceImpl) ListUsers(ctx context.Context) ([]user.UserResponse, error) {
	users, err := s.userRepo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	responses := make([]user.UserResponse, 0, len(users))
	for _, u := range users {
		responses = append(responses, user.ToUserResponse(u))
	}
	return responses, nil
}

// DeleteUser implements AdminService. Clock logs and audit entries of
// the deleted user are kept; they reference the ID as a point-in-time
// fact.
func (s *AdminServiceImpl) DeleteUser(ctx context.Context, id string) error {
	userData, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.userRepo.Delete(ctx, id); err != nil {
		return err
	}

	if err := s.recorder.Record(ctx, nil, audit.ActionUserDelete, audit.StatusSuccess, "Admin deleted user: "+userData.Email); err != nil {
		return fmt.Errorf("failed to record user deletion: %w", err)
	}
	return nil
}

// ResetUserPIN implements AdminService.
func (s *AdminServiceImpl) ResetUserPIN(ctx context.Context, id string, newPIN string) error {
	userData, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if userData.Role == user.RoleEmployee {
		inUse, err := s.pinInUse(ctx, newPIN, id)
		if err != nil {
			return err
		}
		if inUse {
			return user.ErrDuplicatePIN
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPIN), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash pin: %w", err)
	}

	if err := s.userRepo.UpdatePINHash(ctx, id, string(hash)); err != nil {
		return err
	}

	if err := s.recorder.Record(ctx, nil, audit.ActionPINReset, audit.StatusSuccess, "Admin reset credentials for user: "+userData.Email); err != nil {
		return fmt.Errorf("failed to record credential reset: %w", err)
	}
	return nil
}

// pinInUse reports whether pin already belongs to an employee other
// than excludeID. Same linear hash-compare scan as the kiosk matcher:
// hashes are the only stored form of a PIN.
func (s *AdminServiceImpl) pinInUse(ctx context.Context, pin string, excludeID string) (bool, error) {
	employees, err := s.userRepo.FindAllByRole(ctx, user.RoleEmployee)
	if err != nil {
		return false, fmt.Errorf("failed to list employees: %w", err)
	}

	for _, e := range employees {
		if e.ID == excludeID {
			continue
		}
		if bcrypt.CompareHashAndPassword([]byte(e.PINHash), []byte(pin)) == nil {
			return true, nil
		}
	}
	return false, nil
}
