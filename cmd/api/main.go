package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/bryanwahyu/smartdocs/internal/bootstrap"
	"github.com/bryanwahyu/smartdocs/internal/config"
	"github.com/bryanwahyu/smartdocs/internal/infra/httpserver"
	"github.com/bryanwahyu/smartdocs/internal/logger"
	"github.com/bryanwahyu/smartdocs/internal/middleware"
)

func main() {
	log := logger.Setup()

	cfg, err := config.Load(config.Path())
	if err != nil {
		log.Error("config.load_failed", "error", err)
		os.Exit(1)
	}
	if err := cfg.RequireAPIKey(); err != nil {
		log.Error("config.invalid", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	// failure log (opsional)
	failures, db, err := bootstrap.OpenFailureLog(ctx, cfg)
	if err != nil {
		log.Error("db.connect_failed", "driver", cfg.Database.Driver, "error", err)
		os.Exit(1)
	}
	checks := map[string]middleware.HealthChecker{}
	if db != nil {
		defer db.Close()
		checks["database"] = &middleware.DatabaseHealthChecker{DB: db}
	}

	deps := httpserver.Deps{
		Failures:       failures,
		Checks:         checks,
		UploadDir:      cfg.PDF.UploadDir,
		MaxUploadBytes: cfg.MaxUploadBytes(),
		Logger:         log,
	}

	// init minio
	archive, err := bootstrap.OpenArchive(ctx, cfg)
	if err != nil {
		log.Error("minio.init_failed", "error", err)
		os.Exit(1)
	}
	if archive != nil {
		deps.Archive = archive
		checks["archive"] = archive
	}

	deps.Analyzer = bootstrap.NewService(cfg, bootstrap.Options{
		Failures:    failures,
		AttemptHook: middleware.IncrementModelFailures,
		Logger:      log,
	})

	mux := chi.NewRouter()
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.Server.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		ExposedHeaders: []string{"X-Analysis-ID"},
		MaxAge:         300,
	}))
	mux.Use(middleware.Logging(log))
	mux.Use(middleware.MetricsMiddleware)
	mux.Use(middleware.APIKeyAuth(cfg.Server.APIKeys))
	mux.Use(middleware.RateLimitMiddleware(cfg.Server.RateLimitRPS, cfg.Server.RateBurst))
	mux.Mount("/", httpserver.NewRouter(deps))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 15 * time.Second,
		// analisis bisa lama: model call + retry backoff
		WriteTimeout: cfg.OpenAITimeout()*time.Duration(cfg.Analysis.MaxRetries+1) + time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("server.listening", "addr", addr, "model", cfg.OpenAI.Model, "api", cfg.OpenAI.API)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server.failed", "error", err)
			os.Exit(1)
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	log.Info("server.shutting_down")

	ctx2, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		log.Error("server.shutdown_failed", "error", err)
	}
}
