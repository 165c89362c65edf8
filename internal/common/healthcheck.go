package common

import (
	"context"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
	"gorm.io/gorm"
)

const probeTimeout = 2 * time.Second

// HealthCheckHandler serves /livez, /readyz and /metrics. rdb may be nil
// when no redis backed component is configured.
func HealthCheckHandler(rdb redis.UniversalClient, db *gorm.DB) fasthttp.RequestHandler {
	metrics := fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())
	return func(ctx *fasthttp.RequestCtx) {
		switch string(ctx.Path()) {
		case "/livez":
			ctx.SetStatusCode(fasthttp.StatusOK)
		case "/readyz":
			if err := checkReady(ctx, rdb, db); err != nil {
				slog.Warn("Readiness check failed", "error", err)
				ctx.SetStatusCode(fasthttp.StatusServiceUnavailable)
				return
			}
			ctx.SetStatusCode(fasthttp.StatusOK)
		case "/metrics":
			metrics(ctx)
		default:
			ctx.SetStatusCode(fasthttp.StatusNotFound)
		}
	}
}

func checkReady(parent context.Context, rdb redis.UniversalClient, db *gorm.DB) error {
	ctx, cancel := context.WithTimeout(parent, probeTimeout)
	defer cancel()

	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return err
	}
	if rdb != nil {
		if err := rdb.Ping(ctx).Err(); err != nil {
			return err
		}
	}
	return nil
}

// StartHealthCheckServer runs the probe server until ctx is done, then closes done.
func StartHealthCheckServer(ctx context.Context, done chan struct{}, addr string, rdb redis.UniversalClient, db *gorm.DB) {
	server := &fasthttp.Server{
		Handler:     HealthCheckHandler(rdb, db),
		Name:        "healthcheck",
		ReadTimeout: probeTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.ListenAndServe(addr)
	}()

	select {
	case <-ctx.Done():
		if err := server.Shutdown(); err != nil {
			slog.Error("Health check server shutdown failed", "error", err)
		}
	case err := <-serverErr:
		slog.Error("Health check server stopped", "error", err)
	}
	close(done)
}
