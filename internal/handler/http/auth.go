package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/jwtauth/v5"

	"github.com/shiftlog/timeclock-backend-go/internal/domain/auth"
	"github.com/shiftlog/timeclock-backend-go/internal/domain/timeclock"
	"github.com/shiftlog/timeclock-backend-go/internal/handler/http/response"
	authService "github.com/shiftlog/timeclock-backend-go/internal/service/auth"
)

type AuthHandler struct {
	authService  authService.AuthService
	clockService timeclock.ClockService
}

func NewAuthHandler(authService authService.AuthService, clockService timeclock.ClockService) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		clockService: clockService,
	}
}

// KioskClock handles PIN-only clock submissions from the shared kiosk.
func (h *AuthHandler) KioskClock(w http.ResponseWriter, r *http.Request) {
	var req timeclock.PinClockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.clockService.Clock(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, result.Message, result)
}

// AdminLogin authenticates an administrator and returns an access token.
func (h *AuthHandler) AdminLogin(w http.ResponseWriter, r *http.Request) {
	var req auth.AdminLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.authService.AdminLogin(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Login successful", result)
}

// Logout revokes the caller's access token.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token := jwtauth.TokenFromHeader(r)
	if token == "" {
		response.HandleError(w, auth.ErrInvalidToken)
		return
	}

	h.authService.Logout(r.Context(), token)
	response.SuccessWithMessage(w, "Logged out successfully", nil)
}
