// Package router assembles the request pipeline and the routes.
package router

import (
	"fmt"
	"net/http"
	"os"

	crmapp "github.com/Replicator56/mini-crm/internal/application/crm"
	identityapp "github.com/Replicator56/mini-crm/internal/application/identity"
	"github.com/Replicator56/mini-crm/internal/infrastructure/config"
	"github.com/Replicator56/mini-crm/internal/infrastructure/logger"
	"github.com/Replicator56/mini-crm/internal/infrastructure/session"
	"github.com/Replicator56/mini-crm/internal/interfaces/http/flash"
	"github.com/Replicator56/mini-crm/internal/interfaces/http/handler"
	"github.com/Replicator56/mini-crm/internal/interfaces/http/middleware"
	"github.com/Replicator56/mini-crm/internal/interfaces/http/view"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RouteRegistrar defines the interface for registering routes
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// Dependencies are the services the routes are built on
type Dependencies struct {
	Config       *config.Config
	Logger       *zap.Logger
	DB           handler.Pinger
	Sessions     *session.Manager
	Notices      *flash.Store
	Auth         *identityapp.AuthService
	Clients      *crmapp.ClientService
	Appointments *crmapp.AppointmentService
}

// Router owns the gin engine and the rate limiters it started
type Router struct {
	engine   *gin.Engine
	handler  http.Handler
	limiters []*middleware.RateLimiter
}

// New builds the engine with the full pipeline:
// request id, recovery, access log, tracing, security headers, body limit,
// global rate limit, session, sanitization and CSRF. Method override wraps
// the engine in Handler.
func New(d Dependencies) (*Router, error) {
	cfg := d.Config
	middleware.SetupValidator()

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		return nil, fmt.Errorf("invalid trusted proxies: %w", err)
	}
	renderer, err := view.NewRenderer(cfg.App.Location())
	if err != nil {
		return nil, err
	}
	engine.HTMLRender = renderer

	r := &Router{engine: engine}
	base := handler.NewBaseHandler(d.Notices, d.Logger)
	pages := handler.NewPageHandler(base)
	guards := middleware.NewGuards(d.Notices, pages.ServerError)

	security := middleware.DefaultSecurityConfig()
	security.HSTSEnabled = cfg.App.IsProduction()

	engine.Use(
		middleware.RequestID(),
		logger.Recovery(d.Logger, pages.ServerError),
		logger.GinMiddleware(d.Logger),
		middleware.Tracing(cfg.Telemetry.ServiceName, cfg.Telemetry.Enabled),
		middleware.Secure(security),
		middleware.BodyLimit(cfg.HTTP.MaxBodySize),
	)
	if cfg.HTTP.RateLimitEnabled {
		global := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		r.limiters = append(r.limiters, global)
		engine.Use(middleware.RateLimit(global, pages.TooManyRequests))
	}

	// Assets and the health probe need neither a session nor a token.
	r.mountStatic(cfg.HTTP.StaticDir)
	handler.NewHealthHandler(d.DB).RegisterRoutes(&engine.RouterGroup)

	var authLimit gin.HandlerFunc
	if cfg.HTTP.AuthRateLimitEnabled {
		limiter := middleware.NewRateLimiter(cfg.HTTP.AuthRateLimitRequests, cfg.HTTP.AuthRateLimitWindow)
		r.limiters = append(r.limiters, limiter)
		authLimit = middleware.AuthRateLimit(limiter, d.Notices, pages.TooManyRequests)
	}

	app := engine.Group("/",
		middleware.Session(d.Sessions, pages.ServerError),
		middleware.TracingAttributes(),
		middleware.Sanitize(middleware.NewSanitizer()),
		middleware.CSRF(d.Notices),
	)
	r.register(app,
		pages,
		handler.NewAuthHandler(base, d.Auth, d.Sessions, authLimit),
		handler.NewClientHandler(base, d.Clients, guards.RequireAuth()),
		handler.NewAppointmentHandler(base, d.Appointments, d.Clients, guards),
	)

	// Unknown routes still get a session so the layout shows the user.
	notFound := middleware.Session(d.Sessions, pages.ServerError)
	engine.NoRoute(notFound, pages.NotFound)
	engine.NoMethod(notFound, pages.NotFound)

	r.handler = middleware.MethodOverride(engine, cfg.HTTP.MaxBodySize)
	return r, nil
}

// Handler returns the http.Handler to serve
func (r *Router) Handler() http.Handler {
	return r.handler
}

// Close stops the rate limiter cleanup loops
func (r *Router) Close() {
	for _, l := range r.limiters {
		l.Close()
	}
}

func (r *Router) register(rg *gin.RouterGroup, registrars ...RouteRegistrar) {
	for _, registrar := range registrars {
		registrar.RegisterRoutes(rg)
	}
}

// mountStatic serves dir when it exists and the embedded assets otherwise
func (r *Router) mountStatic(dir string) {
	if dir != "" {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			r.engine.Static("/public", dir)
			return
		}
	}
	r.engine.StaticFS("/public", http.FS(view.Static()))
}
