package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/campusops/lostfound/internal/directory/service"
	"github.com/campusops/lostfound/internal/directory/store"
	"github.com/campusops/lostfound/pkg/httpx"
	"github.com/campusops/lostfound/pkg/slogx"

	_ "github.com/campusops/lostfound/api/directory" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store          store.Store
	AuthService    *service.AuthService
	AccountService *service.AccountService
}

func NewRouter(buildVersion string, st store.Store, logger *slog.Logger) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
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
	r.registerAccounts()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Campus Lost & Found Directory API
//	@version		0.1.0
//	@description	User directory and authentication service for the campus
//	@description	lost-and-found platform: credential verification with
//	@description	failed-attempt lockout, opaque 24h session tokens, and
//	@description	role-based permissions.
//
//	@contact.name				CampusOps Team
//	@contact.url				https://github.com/campusops/lostfound
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Opaque session token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	h := &AuthHandler{AuthService: r.AuthService}

	// Login takes a JSON body, so the brute-force limit keys on IP only;
	// per-identifier throttling is the lockout counter's job.
	r.Mux.Handle("POST /v1/auth/login",
		httpx.Chain(http.HandlerFunc(h.HandleLogin),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	r.Mux.Handle("POST /v1/auth/logout",
		httpx.Chain(http.HandlerFunc(h.HandleLogout),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)

	r.Mux.Handle("POST /v1/auth/refresh",
		httpx.Chain(http.HandlerFunc(h.HandleRefresh),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)

	r.Mux.Handle("GET /v1/auth/me",
		httpx.Chain(http.HandlerFunc(h.HandleMe),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)

	r.Mux.Handle("GET /v1/auth/permissions",
		httpx.Chain(http.HandlerFunc(h.HandlePermissions),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)

	// Password change re-verifies the old secret, so it sits behind authn and
	// the strict limit.
	r.Mux.Handle("POST /v1/auth/password",
		httpx.Chain(http.HandlerFunc(h.HandleChangePassword),
			httpx.AuthnMiddleware(r.AuthService),
			httpx.RateLimitByAccount(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerAccounts() {
	h := &AccountsHandler{
		AccountService: r.AccountService,
		AuthService:    r.AuthService,
	}

	// Everything under /v1/accounts is admin-only.
	admin := func(next http.HandlerFunc, limit httpx.RateLimitConfig) http.Handler {
		return httpx.Chain(next,
			httpx.AuthnMiddleware(r.AuthService),
			httpx.RequirePermission(httpx.PermissionAll),
			httpx.RateLimitByAccount(limit),
		)
	}

	r.Mux.Handle("POST /v1/accounts", admin(h.HandleCreate, httpx.ModerateLimit))
	r.Mux.Handle("POST /v1/accounts/batch", admin(h.HandleBatchCreate, httpx.ModerateLimit))
	r.Mux.Handle("GET /v1/accounts", admin(h.HandleList, httpx.LenientLimit))
	r.Mux.Handle("GET /v1/accounts/stats", admin(h.HandleStatistics, httpx.LenientLimit))
	r.Mux.Handle("GET /v1/accounts/search", admin(h.HandleSearch, httpx.LenientLimit))
	r.Mux.Handle("GET /v1/accounts/export", admin(h.HandleExport, httpx.ModerateLimit))
	r.Mux.Handle("GET /v1/accounts/{id}", admin(h.HandleGet, httpx.LenientLimit))
	r.Mux.Handle("PUT /v1/accounts/{id}", admin(h.HandleUpdate, httpx.ModerateLimit))
	r.Mux.Handle("DELETE /v1/accounts/{id}", admin(h.HandleDelete, httpx.ModerateLimit))
	r.Mux.Handle("POST /v1/accounts/{id}/status", admin(h.HandleSetStatus, httpx.ModerateLimit))
	r.Mux.Handle("POST /v1/accounts/{id}/reset-secret", admin(h.HandleResetSecret, httpx.ModerateLimit))
	r.Mux.Handle("POST /v1/accounts/{id}/force-logout", admin(h.HandleForceLogout, httpx.ModerateLimit))

	// College listing is useful to any authenticated caller.
	r.Mux.Handle("GET /v1/colleges",
		httpx.Chain(http.HandlerFunc(h.HandleColleges),
			httpx.AuthnMiddleware(r.AuthService),
			httpx.RateLimitByAccount(httpx.LenientLimit),
		),
	)
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}
