// cmd/symcalc-server/main.go - HTTP server for the expression service
//
// Usage:
//
//	symcalc-server -config symcalc.yaml -addr :8080
//
// Endpoints:
//
//	POST /api/solve, /api/derivative, /api/integrate
//	GET  /healthz, /metrics
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/njchilds90/symcalc/internal/cache"
	"github.com/njchilds90/symcalc/internal/config"
	"github.com/njchilds90/symcalc/internal/httpapi"
	"github.com/njchilds90/symcalc/internal/logging"
	"github.com/njchilds90/symcalc/internal/metrics"
	"github.com/njchilds90/symcalc/internal/middleware"
	"github.com/njchilds90/symcalc/internal/service"
)

const shutdownTimeout = 10 * time.Second

func main() {
	configPath := flag.String("config", "", "Path to a YAML config file")
	addr := flag.String("addr", "", "Listen address, overrides the config")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if *addr != "" {
		cfg.Addr = *addr
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stderr)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.WithError(err).Fatal("server failed")
	}
}

func run(ctx context.Context, cfg *config.Config, logger *logrus.Logger) error {
	m := metrics.New()

	opts := []service.Option{service.WithObserver(m), service.WithLogger(logger)}
	c, closeCache, err := buildCache(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeCache()
	if c != nil {
		opts = append(opts, service.WithCache(c))
	}
	svc := service.New(service.CAS{}, opts...)

	var limiter *middleware.RateLimiter
	if cfg.RateLimitRPS > 0 {
		limiter = middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, logger)
		limiter.StartCleanup(10*time.Minute, ctx.Done())
	}

	srv := &http.Server{
		Addr: cfg.Addr,
		Handler: httpapi.NewRouter(httpapi.Deps{
			Service:      svc,
			Logger:       logger,
			Metrics:      m,
			RateLimiter:  limiter,
			CORSOrigins:  cfg.CORSOrigins,
			MaxBodyBytes: cfg.MaxBodyBytes,
			Started:      time.Now(),
		}),
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.WithField("addr", cfg.Addr).Info("symcalc server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// buildCache returns the Redis cache when redis_addr is set, otherwise an
// in-process LRU. A cache_size of zero without Redis disables caching.
func buildCache(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (service.Cache, func(), error) {
	noop := func() {}
	if cfg.RedisAddr != "" {
		dialCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		client, err := cache.DialRedis(dialCtx, cfg.RedisAddr, cfg.RedisDB)
		if err != nil {
			return nil, noop, err
		}
		logger.WithField("redis_addr", cfg.RedisAddr).Info("using redis result cache")
		return cache.NewRedis(client, cfg.CacheTTL, logger), func() { _ = client.Close() }, nil
	}
	if cfg.CacheSize == 0 {
		return nil, noop, nil
	}
	lru, err := cache.NewLRU(cfg.CacheSize)
	if err != nil {
		return nil, noop, err
	}
	return lru, noop, nil
}
