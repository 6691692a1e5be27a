package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/kailas-cloud/curator/internal/config"
	dbRedis "github.com/kailas-cloud/curator/internal/db/redis"
	"github.com/kailas-cloud/curator/internal/domain/query"
	logpkg "github.com/kailas-cloud/curator/internal/logger"
	"github.com/kailas-cloud/curator/internal/metrics"
	feedrepo "github.com/kailas-cloud/curator/internal/repository/feed"
	chiTransport "github.com/kailas-cloud/curator/internal/transport/chi"
	"github.com/kailas-cloud/curator/internal/transport/dto"
	batchuc "github.com/kailas-cloud/curator/internal/usecase/batch"
	curationuc "github.com/kailas-cloud/curator/internal/usecase/curation"
	feeduc "github.com/kailas-cloud/curator/internal/usecase/feed"
	healthuc "github.com/kailas-cloud/curator/internal/usecase/health"
	"github.com/kailas-cloud/curator/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting curator API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Bool("feed_storage", cfg.Database.Enabled()),
		zap.String("db_driver", cfg.Database.Driver),
		zap.Strings("db_addrs", cfg.Database.Addrs),
	)

	dom, err := cfg.Curation.Permission.Domain()
	if err != nil {
		logger.Fatal("Invalid permission domain", zap.Error(err))
	}

	// Register metrics explicitly (no init())
	metrics.RegisterCurationMetrics()
	metrics.RegisterFeedMetrics()

	// Feed storage is optional. Interfaces stay nil (not typed nil pointers)
	// when it is disabled.
	var (
		feedSvc    *feeduc.Service
		feedReader curationuc.FeedReader
		pinger     healthuc.DBPinger
	)
	if cfg.Database.Enabled() {
		// Valkey and Redis share one rueidis-backed store.
		store, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Database.Addrs,
			Username: cfg.Database.Username,
			Password: cfg.Database.Password,
			DB:       cfg.Database.DB,
		})
		if err != nil {
			logger.Fatal("Failed to create database store", zap.Error(err))
		}
		defer store.Close()

		ctx := context.Background()
		timeout := time.Duration(cfg.Database.ReadinessTimeout) * time.Second
		if err := store.WaitForReady(ctx, timeout); err != nil {
			logger.Fatal("Database not ready", zap.Error(err))
		}
		logger.Info("Connected to database")

		repo := feedrepo.New(store, cfg.Storage.KeyPrefix).WithTTL(cfg.Storage.FeedTTL())
		feedSvc = feeduc.New(repo).WithMaxRecords(cfg.Curation.MaxRecords)
		feedReader = feedSvc
		pinger = store
	} else {
		logger.Warn("Feed storage disabled, only inline curation is available")
	}

	// Create use case services
	curationSvc := curationuc.New(feedReader).WithMaxRecords(cfg.Curation.MaxRecords)
	batchSvc := batchuc.New(curationSvc, dom).
		WithMaxBatchSize(cfg.Curation.MaxBatchSize).
		WithConcurrency(cfg.Curation.BatchConcurrency)
	healthSvc := healthuc.New(pinger)

	// Create chi server
	server := chiTransport.NewServer(curationSvc, feedSvc, batchSvc, healthSvc, logger).
		WithDomain(dom).
		WithLimits(query.Limits{
			DefaultMaxCount: cfg.Curation.DefaultMaxCount,
			MaxCountCap:     cfg.Curation.MaxCountCap,
		}).
		WithMaxBodyBytes(cfg.HTTP.MaxBodyBytes)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	chiTransport.HandlerWithOptions(server, chiTransport.ChiServerOptions{
		BaseRouter: r,
		ErrorHandlerFunc: func(w http.ResponseWriter, _ *http.Request, err error) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(dto.ErrorResponse{
				Code:    dto.ErrorCodeBadRequest,
				Message: "invalid request: " + err.Error(),
			})
		},
	})

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(dto.ErrorResponse{
						Code:    dto.ErrorCodeInternalError,
						Message: "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line, one per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
