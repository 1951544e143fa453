package http

import (
	"net/http"

	"github.com/stafflane/stafflane/internal/auth/service"
	"github.com/stafflane/stafflane/pkg/httpx"
	"github.com/stafflane/stafflane/pkg/slogx"
)

// MeHandler returns the authenticated caller's identity.
type MeHandler struct {
	AuthService *service.AuthService
}

// ServeHTTP handles GET /v1/auth/me.
func (h *MeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	username := httpx.SubjectFromContext(ctx)
	if username == "" {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "not authenticated")
		return
	}

	identity, err := h.AuthService.WhoAmI(ctx, username)
	if err != nil {
		writeServiceError(w, log, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, identity)
}
