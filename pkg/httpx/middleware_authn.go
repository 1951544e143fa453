package httpx

import (
	"context"
	"net/http"
	"strings"

	"github.com/stafflane/stafflane/pkg/jwtx"
	"github.com/stafflane/stafflane/pkg/slogx"
)

// Middleware wraps an http.Handler with extra behaviour.
type Middleware func(http.Handler) http.Handler

// Chain applies middlewares to h in declaration order.
func Chain(h http.Handler, mws ...Middleware) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

// AuthnMiddleware authenticates requests with a bearer session token. Only
// full session tokens pass; pre-auth tokens are rejected here, which keeps
// them useless for any authenticated endpoint.
func AuthnMiddleware(v *jwtx.Verifier) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			authz := r.Header.Get("Authorization")
			if authz == "" || !strings.HasPrefix(authz, "Bearer ") {
				writeBearerError(w, "missing bearer token")
				return
			}
			raw := strings.TrimSpace(strings.TrimPrefix(authz, "Bearer"))

			tok, err := v.Verify(raw)
			if err != nil || tok.Kind != jwtx.KindSession {
				writeBearerError(w, "token verification failed")
				log.Warn("session token rejected")
				return
			}

			// Inject into context for downstream handlers.
			ctx = context.WithValue(ctx, CtxKeySubject, tok.Subject)
			ctx = context.WithValue(ctx, CtxKeyRole, tok.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RFC 6750-compliant error response for bearer auth.
func writeBearerError(w http.ResponseWriter, desc string) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token", error_description="`+desc+`"`)
	w.WriteHeader(http.StatusUnauthorized)
}
