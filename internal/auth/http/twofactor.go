package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/stafflane/stafflane/internal/auth/service"
	"github.com/stafflane/stafflane/pkg/httpx"
	"github.com/stafflane/stafflane/pkg/slogx"
)

// TwoFactorHandler covers the 2FA endpoints. Enroll and confirm require a
// session token; verify is public and gated only by possession of a valid
// pre-auth token.
type TwoFactorHandler struct {
	TwoFactorService *service.TwoFactorService
	AuthService      *service.AuthService
}

// HandleEnroll handles POST /v1/2fa/enroll. Returns the pending secret and
// the otpauth:// enrollment URI; 2FA stays disabled until confirmed.
func (h *TwoFactorHandler) HandleEnroll(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	username := httpx.SubjectFromContext(ctx)
	if username == "" {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "not authenticated")
		return
	}

	enrollment, err := h.TwoFactorService.Enroll(ctx, username)
	if err != nil {
		writeServiceError(w, log, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, enrollment)
}

type confirmRequest struct {
	Code string `json:"code"`
}

// HandleConfirm handles POST /v1/2fa/confirm, verifying a code against the
// pending secret and enabling 2FA on success.
func (h *TwoFactorHandler) HandleConfirm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	username := httpx.SubjectFromContext(ctx)
	if username == "" {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "not authenticated")
		return
	}

	var req confirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if err := h.TwoFactorService.Confirm(ctx, username, req.Code); err != nil {
		writeServiceError(w, log, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"username":         username,
		"twoFactorEnabled": true,
	})
}

type verifyRequest struct {
	PreAuthToken string `json:"preAuthToken"`
	Code         string `json:"code"`
}

// HandleVerify handles POST /v1/2fa/verify. The pre-auth token comes from
// the body or, as a fallback, the Authorization header.
func (h *TwoFactorHandler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req verifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if req.PreAuthToken == "" {
		if authz := r.Header.Get("Authorization"); strings.HasPrefix(authz, "Bearer ") {
			req.PreAuthToken = strings.TrimSpace(strings.TrimPrefix(authz, "Bearer"))
		}
	}

	grant, err := h.AuthService.Verify2FA(ctx, req.PreAuthToken, req.Code)
	if err != nil {
		writeServiceError(w, log, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, grant)
}
