package http

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/geocoder89/newsy/internal/config"
	"github.com/geocoder89/newsy/internal/http/handlers"
	"github.com/geocoder89/newsy/internal/http/middlewares"
	"github.com/geocoder89/newsy/internal/observability"
	"github.com/geocoder89/newsy/internal/service"
)

// Deps is everything the router needs; main and the end-to-end tests build it.
type Deps struct {
	Log      *slog.Logger
	Config   config.Config
	Prom     *observability.Prom
	Users    *service.UserService
	Articles *service.ArticleService
	Tokens   middlewares.TokenVerifier
	Checks   map[string]handlers.Check
}

func NewRouter(d Deps) *gin.Engine {
	if !d.Config.IsDev() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	// middleware
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware(d.Config.OTelServiceName))
	r.Use(d.Prom.GinHandleMiddleware())
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger(d.Log))
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(d.Config.CORSAllowedOrigins))
	r.Use(middlewares.MaxBodyBytes(d.Config.MaxBodyBytes))
	r.Use(middlewares.RequestTimeout(d.Config.RequestTimeout))

	// health + metrics
	h := handlers.NewHealthHandler(d.Checks)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)
	r.GET("/metrics", gin.WrapH(d.Prom.Handler()))

	authH := handlers.NewAuthHandler(d.Users)
	usersH := handlers.NewUsersHandler(d.Users)
	articlesH := handlers.NewArticlesHandler(d.Articles)

	authMw := middlewares.NewAuthMiddleware(d.Tokens, d.Users)
	loginLimiter := middlewares.NewRateLimiter(d.Config.LoginRateLimit, d.Config.LoginRateWindow)

	api := r.Group("/api")

	// public; there is no identity to check first, so the content type is enforced up front
	api.POST("/users", middlewares.RequireJSON(), authH.Register)
	api.POST("/users/authenticate", loginLimiter.RateLimiterMiddleware(middlewares.KeyByIP), middlewares.RequireJSON(), authH.Authenticate)

	// everything else needs a bearer token; body checks run in the handlers after ownership
	protected := api.Group("", authMw.RequireAuth())
	{
		protected.GET("/users", usersH.List)
		protected.GET("/users/:id", usersH.Get)
		protected.PUT("/users/:id", usersH.Update)
		protected.DELETE("/users/:id", usersH.Delete)

		protected.GET("/articles", articlesH.List)
		protected.GET("/articles/:id", articlesH.Get)
		protected.POST("/articles", articlesH.Create)
		protected.PUT("/articles/:id", articlesH.Update)
		protected.DELETE("/articles/:id", articlesH.Delete)
	}

	return r
}
