package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/stafflane/stafflane/internal/auth/service"
	"github.com/stafflane/stafflane/internal/auth/store"
	"github.com/stafflane/stafflane/pkg/httpx"
	"github.com/stafflane/stafflane/pkg/jwtx"
	"github.com/stafflane/stafflane/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	verifier     *jwtx.Verifier
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	store        store.Store

	AuthService      *service.AuthService
	AccountService   *service.AccountService
	TwoFactorService *service.TwoFactorService
}

func NewRouter(
	verifier *jwtx.Verifier,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		verifier:     verifier,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerTwoFactor()
	r.registerSystem()
}

// ServeHTTP implements http.Handler and applies the global middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	h := &AuthHandler{
		AuthService:    r.AuthService,
		AccountService: r.AccountService,
	}

	r.Mux.Handle("POST /v1/auth/login", http.HandlerFunc(h.HandleLogin))
	r.Mux.Handle("POST /v1/auth/register", http.HandlerFunc(h.HandleRegister))
	r.Mux.Handle("POST /v1/auth/forgot-password", http.HandlerFunc(h.HandleForgotPassword))

	// GET /v1/auth/me requires a full session token; pre-auth tokens are
	// rejected by the middleware.
	me := &MeHandler{AuthService: r.AuthService}
	r.Mux.Handle("GET /v1/auth/me",
		httpx.Chain(me,
			httpx.AuthnMiddleware(r.verifier),
		),
	)
}

func (r *Router) registerTwoFactor() {
	h := &TwoFactorHandler{
		TwoFactorService: r.TwoFactorService,
		AuthService:      r.AuthService,
	}

	securedEnroll := httpx.Chain(http.HandlerFunc(h.HandleEnroll),
		httpx.AuthnMiddleware(r.verifier),
	)
	securedConfirm := httpx.Chain(http.HandlerFunc(h.HandleConfirm),
		httpx.AuthnMiddleware(r.verifier),
	)

	r.Mux.Handle("POST /v1/2fa/enroll", securedEnroll)
	r.Mux.Handle("POST /v1/2fa/confirm", securedConfirm)

	// Verify is public: the pre-auth token in the body is the credential.
	r.Mux.Handle("POST /v1/2fa/verify", http.HandlerFunc(h.HandleVerify))
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez", LivezHandler(r.startTime, r.buildVersion))
	r.Mux.Handle("GET /readyz", ReadyzHandler(r.startTime, r.buildVersion, r.store))
}
