package http

import (
	"encoding/json"
	"net/http"

	"github.com/stafflane/stafflane/internal/auth/service"
	"github.com/stafflane/stafflane/pkg/httpx"
	"github.com/stafflane/stafflane/pkg/slogx"
)

// AuthHandler covers the public authentication endpoints: login, register
// and forgot-password.
type AuthHandler struct {
	AuthService    *service.AuthService
	AccountService *service.AccountService
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// HandleLogin handles POST /v1/auth/login. A 2FA-enabled account receives a
// pre-auth challenge instead of a session token.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	result, err := h.AuthService.Login(ctx, req.Username, req.Password)
	if err != nil {
		writeServiceError(w, log, err)
		return
	}

	if result.Challenge != nil {
		httpx.WriteJSON(w, http.StatusOK, result.Challenge)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, result.Session)
}

type registerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type registerResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// HandleRegister handles POST /v1/auth/register.
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	acc, err := h.AccountService.Register(ctx, req.Username, req.Password, req.Role)
	if err != nil {
		writeServiceError(w, log, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, registerResponse{
		ID:       acc.ID,
		Username: acc.Username,
		Role:     acc.Role,
	})
}

type forgotPasswordRequest struct {
	Username    string `json:"username"`
	NewPassword string `json:"newPassword"`
}

// HandleForgotPassword handles POST /v1/auth/forgot-password.
func (h *AuthHandler) HandleForgotPassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req forgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if err := h.AccountService.ResetPassword(ctx, req.Username, req.NewPassword); err != nil {
		writeServiceError(w, log, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]string{
		"status":   "success",
		"username": req.Username,
	})
}
