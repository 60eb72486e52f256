package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/geocoder89/campushub/internal/config"
	"github.com/geocoder89/campushub/internal/guard"
	"github.com/geocoder89/campushub/internal/http/handlers"
	"github.com/geocoder89/campushub/internal/http/middlewares"
	"github.com/geocoder89/campushub/internal/observability"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

type Deps struct {
	Sessions handlers.Sessions
	Tokens   middlewares.DeviceTokens
	Ping     func(ctx context.Context) error

	// LoginLimiter throttles sign-in attempts per client IP. NewRouter
	// builds one from cfg when nil.
	LoginLimiter *middlewares.RateLimiter

	Prom     *observability.Prom
	Gatherer prometheus.Gatherer
}

func NewRouter(log *slog.Logger, cfg config.Config, deps Deps) *gin.Engine {
	if cfg.Env != "dev" && cfg.Env != "test" {
		gin.SetMode(gin.ReleaseMode)
	}
	handlers.UseJSONFieldNames()

	r := gin.New()
	r.RedirectTrailingSlash = false

	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware(cfg.OTELServiceName))
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger(log))
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(cfg.CORSAllowedOrigins))
	if deps.Prom != nil {
		r.Use(deps.Prom.GinHandleMiddleware())
	}

	// health
	h := handlers.NewHealthHandler(deps.Ping)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)

	if deps.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	device := middlewares.Device(deps.Tokens, middlewares.CookieOptions{Secure: cfg.Env == "prod"})
	app := r.Group("/", device)

	authHandler := handlers.NewAuthHandler(deps.Sessions)
	loginLimiter := deps.LoginLimiter
	if loginLimiter == nil {
		loginLimiter = middlewares.NewRateLimiter(cfg.LoginRateLimit, cfg.LoginRateWindow)
	}

	authGroup := app.Group("/auth", middlewares.RequireJSON(), middlewares.MaxBodyBytes(cfg.MaxBodyBytes))
	authGroup.POST("/login", loginLimiter.RateLimiterMiddleware(middlewares.KeyByIP), authHandler.Login)
	authGroup.POST("/signup", loginLimiter.RateLimiterMiddleware(middlewares.KeyByDeviceOrIP), authHandler.Signup)
	authGroup.POST("/google", authHandler.Google)
	authGroup.POST("/external/:provider", authHandler.External)
	authGroup.POST("/logout", authHandler.Logout)
	authGroup.GET("/session", authHandler.Session)

	navHandler := handlers.NewNavHandler(deps.Sessions)
	app.GET("/nav", navHandler.Nav)

	// every view, plus the index and unknown paths, goes through the guard
	var guardObs handlers.GuardObserver
	if deps.Prom != nil {
		guardObs = deps.Prom
	}
	views := handlers.NewViewHandler(deps.Sessions, guardObs)
	app.GET("/", views.Serve)
	for _, v := range guard.Views() {
		app.GET(v.Pattern, views.Serve)
	}

	r.NoRoute(device, func(ctx *gin.Context) {
		if ctx.Request.Method != http.MethodGet && ctx.Request.Method != http.MethodHead {
			handlers.RespondError(ctx, http.StatusNotFound, "not_found", "Route not found", nil)
			return
		}
		views.Serve(ctx)
	})

	return r
}
