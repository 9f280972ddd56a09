// Package app wires the process-wide dependencies once at startup and tears
// them down at shutdown.
package app

import (
	"context"
	"log/slog"

	"github.com/geocoder89/socialhub/internal/accounts"
	"github.com/geocoder89/socialhub/internal/auth"
	"github.com/geocoder89/socialhub/internal/config"
	"github.com/geocoder89/socialhub/internal/db"
	"github.com/geocoder89/socialhub/internal/feed"
	httpx "github.com/geocoder89/socialhub/internal/http"
	"github.com/geocoder89/socialhub/internal/http/handlers"
	"github.com/geocoder89/socialhub/internal/http/middlewares"
	"github.com/geocoder89/socialhub/internal/observability"
	"github.com/geocoder89/socialhub/internal/posts"
	"github.com/geocoder89/socialhub/internal/queue/redisclient"
	"github.com/geocoder89/socialhub/internal/repo/memory"
	"github.com/geocoder89/socialhub/internal/repo/postgres"
	"github.com/jackc/pgx/v5/pgxpool"
	pkgerrors "github.com/pkg/errors"
)

// userStore is what every consumer of the user repository needs combined.
type userStore interface {
	accounts.UserStore
	feed.UserReader
}

type postStore interface {
	posts.Store
	feed.PostReader
}

type App struct {
	Config   config.Config
	Log      *slog.Logger
	Prom     *observability.Prom
	Tokens   *auth.Manager
	Resolver *auth.Resolver
	Accounts *accounts.Service
	Feed     *feed.Service
	Posts    *posts.Service

	pool    *pgxpool.Pool
	redis   *redisclient.Client
	limiter middlewares.Limiter
	checks  map[string]handlers.Check
}

// Build constructs the container. Any failure closes what was already opened.
func Build(ctx context.Context, cfg config.Config, log *slog.Logger) (_ *App, err error) {
	if log == nil {
		log = slog.Default()
	}

	tokens, err := auth.NewManager(cfg.JWTSecret)
	if err != nil {
		return nil, err
	}

	a := &App{
		Config: cfg,
		Log:    log,
		Prom:   observability.NewProm(),
		Tokens: tokens,
		checks: make(map[string]handlers.Check),
	}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	var (
		users userStore
		store postStore
	)

	switch cfg.StoreDriver {
	case "memory":
		log.Warn("using in-memory store; data is lost on restart")
		users = memory.NewUsersRepo()
		store = memory.NewPostsRepo()

	default:
		if cfg.AutoMigrate {
			if err = db.MigrateUp(cfg.DBURL); err != nil {
				return nil, pkgerrors.Wrap(err, "app: migrate")
			}
		}

		a.pool, err = db.NewPool(ctx, cfg.DBURL, cfg.DBMaxConns)
		if err != nil {
			return nil, pkgerrors.Wrap(err, "app: connect store")
		}
		a.checks["store"] = a.pool.Ping

		users = postgres.NewUsersRepo(a.pool, a.Prom)
		store = postgres.NewPostsRepo(a.pool, a.Prom)
	}

	if cfg.RedisAddr != "" {
		a.redis = redisclient.New(redisclient.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		a.checks["redis"] = a.redis.Ping
	}

	// AUTH_RATE_LIMIT <= 0 turns limiting off whichever backend is configured.
	switch {
	case cfg.AuthRateLimit <= 0:
	case a.redis != nil:
		a.limiter = redisclient.NewFixedWindowLimiter(a.redis.Raw(), cfg.AuthRateLimit, cfg.AuthRateWindow)
	default:
		a.limiter = middlewares.NewMemoryLimiter(cfg.AuthRateLimit, cfg.AuthRateWindow)
	}

	a.Resolver = auth.NewResolver(tokens, users)
	a.Accounts = accounts.NewService(users, tokens)
	a.Feed = feed.NewService(store, users)
	if cfg.IdentityCacheTTL > 0 {
		a.Feed.WithIdentityCache(cfg.IdentityCacheTTL)
	}
	a.Posts = posts.NewService(store, a.Prom)

	return a, nil
}

// RouterDeps hands the container to the HTTP layer.
func (a *App) RouterDeps() httpx.Deps {
	return httpx.Deps{
		Log:                a.Log,
		Env:                a.Config.Env,
		ServiceName:        "socialhub",
		Prom:               a.Prom,
		Resolver:           a.Resolver,
		Accounts:           a.Accounts,
		Feed:               a.Feed,
		Posts:              a.Posts,
		AuthLimiter:        a.limiter,
		Checks:             a.checks,
		CORSAllowedOrigins: a.Config.CORSAllowedOrigins,
		MaxBodyBytes:       a.Config.MaxBodyBytes,
		StoreTimeout:       a.Config.StoreTimeout,
	}
}

func (a *App) Close() {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.Log.Warn("redis close failed", "err", err)
		}
	}
	if a.pool != nil {
		a.pool.Close()
	}
}
