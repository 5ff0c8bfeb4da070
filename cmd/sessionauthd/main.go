// Command sessionauthd serves the session-auth HTTP API backed by Redis or
// PostgreSQL.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	sessionauth "github.com/interviewly/sessionauth"
	"github.com/interviewly/sessionauth/httpapi"
	"github.com/interviewly/sessionauth/metrics/export/prometheus"
	"github.com/interviewly/sessionauth/store/pgstore"
	"github.com/interviewly/sessionauth/store/redisstore"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	ctx := context.Background()

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	logger.InfoContext(ctx, "configuration loaded",
		"port", cfg.Port,
		"backend", cfg.StoreBackend,
		"access_ttl", cfg.AccessTTL,
		"refresh_ttl", cfg.RefreshTTL)

	store, cleanup, err := buildStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	authCfg := sessionauth.DefaultConfig()
	authCfg.Token.AccessSecret = []byte(cfg.AccessSecret)
	authCfg.Token.RefreshSecret = []byte(cfg.RefreshSecret)
	authCfg.Token.AccessTTL = cfg.AccessTTL
	authCfg.Token.RefreshTTL = cfg.RefreshTTL
	authCfg.Token.Issuer = cfg.Issuer
	authCfg.Metrics.Enabled = cfg.Metrics

	engine, err := sessionauth.New().
		WithConfig(authCfg).
		WithUserStore(store).
		Build()
	if err != nil {
		return fmt.Errorf("build engine: %w", err)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(requestLogger(logger))

	httpapi.New(engine, logger, cfg.SecureCookies).Register(e)
	if cfg.Metrics {
		e.GET("/metrics", echo.WrapHandler(prometheus.NewPrometheusExporter(engine).Handler()))
	}

	errCh := make(chan error, 1)
	go func() {
		logger.InfoContext(ctx, "starting server", "address", ":"+cfg.Port)
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-quit:
	}
	logger.InfoContext(ctx, "shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.InfoContext(ctx, "server exited")
	return nil
}

func buildStore(ctx context.Context, cfg *serverConfig, logger *slog.Logger) (sessionauth.UserStore, func(), error) {
	switch cfg.StoreBackend {
	case "redis":
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("connect to redis: %w", err)
		}
		logger.InfoContext(ctx, "redis store ready", "addr", cfg.RedisAddr)
		return redisstore.New(client, cfg.RedisPrefix), func() { _ = client.Close() }, nil

	case "postgres":
		if err := pgstore.Migrate(ctx, cfg.DatabaseDSN); err != nil {
			return nil, nil, fmt.Errorf("migrate database: %w", err)
		}
		pool, err := pgxpool.New(ctx, cfg.DatabaseDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to postgres: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("ping postgres: %w", err)
		}
		logger.InfoContext(ctx, "postgres store ready")
		return pgstore.New(pool), pool.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}

func requestLogger(logger *slog.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:   true,
		LogURI:      true,
		LogError:    true,
		LogMethod:   true,
		LogLatency:  true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			ctx := c.Request().Context()
			if v.Error == nil {
				logger.InfoContext(ctx, "request completed",
					"method", v.Method,
					"uri", v.URI,
					"status", v.Status,
					"latency_ms", v.Latency.Milliseconds())
			} else {
				logger.WarnContext(ctx, "request failed",
					"method", v.Method,
					"uri", v.URI,
					"status", v.Status,
					"latency_ms", v.Latency.Milliseconds(),
					"error", v.Error.Error())
			}
			return nil
		},
	})
}
