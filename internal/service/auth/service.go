package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/shiftlog/timeclock-backend-go/internal/domain/audit"
	"github.com/shiftlog/timeclock-backend-go/internal/domain/auth"
	"github.com/shiftlog/timeclock-backend-go/internal/domain/user"
	"github.com/shiftlog/timeclock-backend-go/internal/pkg/jwt"
	auditService "github.com/shiftlog/timeclock-backend-go/internal/service/audit"
)

type AuthService interface {
	// AdminLogin authenticates an administrator with email and
	// password and issues an access token. Both outcomes are audited.
	AdminLogin(ctx context.Context, req auth.AdminLoginRequest) (auth.TokenResponse, error)

	// Logout revokes an access token.
	Logout(ctx context.Context, token string)
}

type AuthServiceImpl struct {
	userRepo   user.UserRepository
	jwtService jwt.Service
	recorder   auditService.Recorder
}

func NewAuthService(userRepo user.UserRepository, jwtService jwt.Service, recorder auditService.Recorder) AuthService {
	return &AuthServiceImpl{
		userRepo:   userRepo,
		jwtService: jwtService,
		recorder:   recorder,
	}
}

// AdminLogin implements AuthService.
func (a *AuthServiceImpl) AdminLogin(ctx context.Context, req auth.AdminLoginRequest) (auth.TokenResponse, error) {
	userData, err := a.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			a.recorder.RecordFailure(ctx, nil, audit.ActionAdminLoginFailed, "Failed admin login attempt for email: "+req.Email)
			return auth.TokenResponse{}, auth.ErrInvalidCredentials
		}
		return auth.TokenResponse{}, fmt.Errorf("failed to get user by email: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(userData.PINHash), []byte(req.Password)) != nil {
		a.recorder.RecordFailure(ctx, nil, audit.ActionAdminLoginFailed, "Failed admin login attempt for email: "+req.Email)
		return auth.TokenResponse{}, auth.ErrInvalidCredentials
	}

	if userData.Role != user.RoleAdmin {
		a.recorder.RecordFailure(ctx, &userData.ID, audit.ActionAdminLoginFailed, "Non-admin user attempted to log into admin portal.")
		return auth.TokenResponse{}, auth.ErrAdminRequired
	}

	token, expiresAt, err := a.jwtService.GenerateAccessToken(userData.ID, userData.Email, userData.Role)
	if err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to create access token: %w", err)
	}

	if err := a.recorder.Record(ctx, &userData.ID, audit.ActionAdminLoginOK, audit.StatusSuccess, "Admin successfully logged in."); err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to record admin login: %w", err)
	}

	return auth.TokenResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		Email:     userData.Email,
		Role:      userData.Role,
	}, nil
}

// Logout implements AuthService.
func (a *AuthServiceImpl) Logout(ctx context.Context, token string) {
	a.jwtService.RevokeToken(token)
}
