package http

import (
	"log/slog"
	"time"

	"github.com/geocoder89/socialhub/internal/http/handlers"
	"github.com/geocoder89/socialhub/internal/http/middlewares"
	"github.com/geocoder89/socialhub/internal/observability"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// Deps is everything the router needs. It is filled in by app.Build.
type Deps struct {
	Log         *slog.Logger
	Env         string
	ServiceName string
	Prom        *observability.Prom

	Resolver middlewares.UserResolver
	Accounts handlers.AccountService
	Feed     handlers.FeedService
	Posts    handlers.PostService

	// AuthLimiter guards /login and /register. Nil disables it.
	AuthLimiter middlewares.Limiter
	Checks      map[string]handlers.Check

	CORSAllowedOrigins []string
	MaxBodyBytes       int64
	StoreTimeout       time.Duration
}

func NewRouter(d Deps) *gin.Engine {
	if d.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	if d.Log == nil {
		d.Log = slog.Default()
	}
	if d.StoreTimeout <= 0 {
		d.StoreTimeout = 3 * time.Second
	}
	if d.ServiceName == "" {
		d.ServiceName = "socialhub"
	}

	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware(d.ServiceName))
	if d.Prom != nil {
		r.Use(d.Prom.GinHandleMiddleware())
	}
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger(d.Log))
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORS(d.CORSAllowedOrigins))

	// ops
	health := handlers.NewHealthHandler(d.Checks)
	r.GET("/healthz", health.Healthz)
	r.GET("/readyz", health.Readyz)
	if d.Prom != nil {
		r.GET("/metrics", gin.WrapH(d.Prom.Handler()))
	}
	r.GET("/docs", handlers.SwaggerUI)
	r.GET("/docs/openapi.yaml", handlers.OpenAPISpec)

	accountsHandler := handlers.NewAccountsHandler(d.Accounts, d.StoreTimeout)
	feedHandler := handlers.NewFeedHandler(d.Feed, d.StoreTimeout)
	postsHandler := handlers.NewPostsHandler(d.Posts, d.StoreTimeout)
	authMiddleware := middlewares.NewAuthMiddleware(d.Resolver)

	bodyGuards := []gin.HandlerFunc{
		middlewares.MaxBodyBytes(d.MaxBodyBytes),
		middlewares.RequireJSON(),
	}

	api := r.Group("/")
	api.Use(bodyGuards...)

	// public
	limited := middlewares.RateLimit(d.AuthLimiter, middlewares.KeyByRouteAndIP, d.Log)
	api.POST("/register", limited, accountsHandler.Register)
	api.POST("/login", limited, accountsHandler.Login)
	api.GET("/posts", feedHandler.ListPosts)
	api.GET("/users/:id", feedHandler.GetUserProfile)

	// authenticated; the actor is checked before the body is looked at
	authed := r.Group("/")
	authed.Use(authMiddleware.RequireUser())
	authed.Use(bodyGuards...)
	authed.POST("/posts/new", postsHandler.CreatePost)
	authed.POST("/posts/:id/like", postsHandler.ToggleLike)
	authed.POST("/posts/:id/comment", postsHandler.AddComment)

	return r
}
