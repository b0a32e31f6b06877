package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/geocoder89/newsy/internal/auth"
	"github.com/geocoder89/newsy/internal/cache"
	"github.com/geocoder89/newsy/internal/config"
	"github.com/geocoder89/newsy/internal/db"
	httpx "github.com/geocoder89/newsy/internal/http"
	"github.com/geocoder89/newsy/internal/http/handlers"
	"github.com/geocoder89/newsy/internal/observability"
	"github.com/geocoder89/newsy/internal/repo/memory"
	"github.com/geocoder89/newsy/internal/repo/postgres"
	"github.com/geocoder89/newsy/internal/security"
	"github.com/geocoder89/newsy/internal/service"
)

func main() {
	// Load the config set up
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	// start up the observability logger
	log := observability.NewLogger(cfg.Env)
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("server exited", "err", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	startCtx, cancel := config.WithTimeout(15 * time.Second)
	defer cancel()

	shutdownTracer, err := observability.InitTracer(startCtx, observability.TracerConfig{
		ServiceName: cfg.OTelServiceName,
		Env:         cfg.Env,
		Endpoint:    cfg.OTelEndpoint,
	})
	if err != nil {
		return err
	}
	defer func() {
		ctx, cancel := config.WithTimeout(5 * time.Second)
		defer cancel()
		_ = shutdownTracer(ctx)
	}()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	prom := observability.NewProm(reg)

	// storage
	var (
		users    service.UserRepository
		articles service.ArticleRepository
		checks   = map[string]handlers.Check{}
	)

	switch cfg.Storage {
	case config.StoragePostgres:
		pool, err := db.NewPool(startCtx, cfg.DBURL(), cfg.DB.MaxConns)
		if err != nil {
			return err
		}
		defer pool.Close()

		if err := db.Migrate(startCtx, pool); err != nil {
			return err
		}

		users = postgres.NewUsersRepo(pool, prom)
		articles = postgres.NewArticlesRepo(pool, prom)
		checks["store"] = pool.Ping
	default:
		store := memory.NewStore()
		users = store.Users()
		articles = store.Articles()
		checks["store"] = store.Ping
		log.Warn("using in-memory storage; data is lost on restart")
	}

	// article list cache
	var listCache cache.Store
	if cfg.Redis.Addr != "" {
		listCache = cache.NewRedis(cache.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, cfg.CacheTTL)
	} else {
		listCache = cache.NewMemory(cfg.CacheTTL)
	}
	defer listCache.Close()
	checks["cache"] = listCache.Ping

	tokens := auth.NewManager(cfg.JWTSecret, cfg.JWTTTL)
	hasher := security.NewHasher(cfg.PasswordMinEntropy)

	router := httpx.NewRouter(httpx.Deps{
		Log:      log,
		Config:   cfg,
		Prom:     prom,
		Users:    service.NewUserService(users, hasher, tokens, listCache, log),
		Articles: service.NewArticleService(articles, listCache, prom, log),
		Tokens:   tokens,
		Checks:   checks,
	})

	// server set up
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("server starting", "port", cfg.Port, "env", cfg.Env, "storage", cfg.Storage)
		err := srv.ListenAndServe()

		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serveErr:
		return err
	case <-stop:
	}
	log.Info("server shutting down")

	ctx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}

	log.Info("shutdown complete")
	return nil
}
