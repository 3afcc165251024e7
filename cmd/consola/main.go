package main

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/sistemacitas/consola/internal/api/router"
	"github.com/sistemacitas/consola/internal/clinicapi"
	"github.com/sistemacitas/consola/internal/config"
	"github.com/sistemacitas/consola/internal/http/handlers"
	"github.com/sistemacitas/consola/internal/observability/metrics"
	"github.com/sistemacitas/consola/internal/session"
	"github.com/sistemacitas/consola/pkg/logging"
)

func main() {
	// Local development convenience; production sets real env vars.
	_ = godotenv.Load()

	cfg := config.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting consola",
		"env", cfg.Env,
		"port", cfg.Port,
		"api_base_url", cfg.APIBaseURL,
	)

	redisOpts := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		redisOpts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	redisClient := redis.NewClient(redisOpts)
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		logger.Error("failed to connect to redis", "addr", cfg.RedisAddr, "error", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	consoleMetrics := metrics.NewConsoleMetrics(registry)

	sessions := session.NewStore(redisClient, cfg.SessionTTL, logger)

	api := clinicapi.NewClient(cfg.APIBaseURL,
		clinicapi.WithHTTPClient(&http.Client{Timeout: cfg.APITimeout}),
		clinicapi.WithLogger(logger),
		clinicapi.WithMetrics(consoleMetrics),
	)

	console := handlers.NewConsole(api, sessions, logger,
		handlers.WithCookie(cfg.SessionCookie, cfg.CookieSecure))

	r := router.New(&router.Config{
		Logger:         logger,
		Console:        console,
		Sessions:       sessions,
		Metrics:        consoleMetrics,
		MetricsHandler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		CookieName:     cfg.SessionCookie,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	if err := redisClient.Close(); err != nil {
		logger.Error("failed to close redis client", "error", err)
	}

	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}
