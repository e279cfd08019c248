package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/LLkaia/news-laptops-ms/internal/config"
	dbMongo "github.com/LLkaia/news-laptops-ms/internal/db/mongo"
	dbRedis "github.com/LLkaia/news-laptops-ms/internal/db/redis"
	logpkg "github.com/LLkaia/news-laptops-ms/internal/logger"
	"github.com/LLkaia/news-laptops-ms/internal/metrics"
	articlerepo "github.com/LLkaia/news-laptops-ms/internal/repository/article"
	"github.com/LLkaia/news-laptops-ms/internal/repository/scrapeguard"
	"github.com/LLkaia/news-laptops-ms/internal/scraper"
	"github.com/LLkaia/news-laptops-ms/internal/transport/httpapi"
	ingestuc "github.com/LLkaia/news-laptops-ms/internal/usecase/ingest"
	matchuc "github.com/LLkaia/news-laptops-ms/internal/usecase/match"
	newsuc "github.com/LLkaia/news-laptops-ms/internal/usecase/news"
	"github.com/LLkaia/news-laptops-ms/internal/version"
	"github.com/LLkaia/news-laptops-ms/internal/worker"
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

	logger.Info("Starting news API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("mongo_db", cfg.Mongo.Database),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := dbMongo.NewStore(ctx, dbMongo.Config{
		URI:        cfg.Mongo.URI,
		Database:   cfg.Mongo.Database,
		Collection: cfg.Mongo.Collection,
	})
	if err != nil {
		logger.Fatal("Failed to create document store", zap.Error(err))
	}
	defer func() { _ = store.Close(context.Background()) }()

	if err := store.WaitForReady(ctx, time.Duration(cfg.Mongo.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Document store not ready", zap.Error(err))
	}
	if err := store.EnsureIndexes(ctx); err != nil {
		logger.Fatal("Failed to create indexes", zap.Error(err))
	}
	logger.Info("Connected to document store")

	// Register news metrics explicitly (no init())
	metrics.RegisterNewsMetrics()

	repo := articlerepo.New(store.Articles())
	scrape := scraper.New(scraper.Config{
		BaseURL:   cfg.Scraper.BaseURL,
		UserAgent: cfg.Scraper.UserAgent,
		Timeout:   time.Duration(cfg.Scraper.TimeoutSec) * time.Second,
	})

	ingestSvc := ingestuc.New(repo, logger)
	matchSvc := matchuc.New(repo, cfg.Search.OverlapThreshold)
	newsSvc := newsuc.New(repo, matchSvc, ingestSvc, scrape, logger).
		WithPagination(cfg.Search.DefaultPageSize, cfg.Search.MaxPageSize).
		WithRescrapeThreshold(cfg.Search.RescrapeThreshold)

	pingers := map[string]httpapi.Pinger{"mongo": store}

	// The scrape guard is optional: without Redis every thin query
	// scrapes the upstream site.
	if len(cfg.Redis.Addrs) > 0 {
		guardStore, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Redis.Addrs,
			Password: cfg.Redis.Password,
		})
		if err != nil {
			logger.Fatal("Failed to create guard store", zap.Error(err))
		}
		defer guardStore.Close()

		cooldown := time.Duration(cfg.Search.ScrapeCooldownSec) * time.Second
		newsSvc.WithGuard(scrapeguard.New(guardStore, cooldown, logger))
		pingers["redis"] = guardStore
		logger.Info("Scrape guard enabled", zap.Duration("cooldown", cooldown))
	}

	server := httpapi.NewServer(newsSvc, pingers, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(metrics.Middleware())
	server.Routes(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	workersDone := make(chan struct{})
	if cfg.Refresh.Enabled {
		manager := worker.NewManager(&worker.Refresher{
			Scraper:  scrape,
			Ingester: ingestSvc,
			Queries:  cfg.Refresh.Queries,
			Interval: time.Duration(cfg.Refresh.IntervalMin) * time.Minute,
			Logger:   logger,
		})
		go func() {
			defer close(workersDone)
			if err := manager.Start(ctx); err != nil {
				logger.Error("Worker manager error", zap.Error(err))
			}
		}()
		logger.Info("Refresh worker started",
			zap.Int("queries", len(cfg.Refresh.Queries)),
			zap.Int("interval_min", cfg.Refresh.IntervalMin),
		)
	} else {
		close(workersDone)
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	cancel()
	<-workersDone

	shutdownCtx, shutdownCancel := context.WithTimeout(
		context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second,
	)
	defer shutdownCancel()

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
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
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

			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

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
