package httpx

import "context"

type ctxKey string

const (
	CtxKeySubject ctxKey = "subject"
	CtxKeyRole    ctxKey = "role"
)

// SubjectFromContext returns the authenticated username injected by
// AuthnMiddleware, or "" when the request is unauthenticated.
func SubjectFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(CtxKeySubject).(string); ok {
		return v
	}
	return ""
}

// RoleFromContext returns the authenticated role claim, or "".
func RoleFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(CtxKeyRole).(string); ok {
		return v
	}
	return ""
}
