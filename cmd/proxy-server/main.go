// cmd/proxy-server/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"paperforge/internal/cache"
	"paperforge/internal/common/config"
	"paperforge/internal/common/database"
	"paperforge/internal/common/logger"
	"paperforge/internal/common/observability"
	"paperforge/internal/dispatcher"
	"paperforge/internal/history"
	"paperforge/internal/proxy"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting proxy server...",
		zap.String("env", cfg.App.Environment),
		zap.Int("targets", len(cfg.Proxy.Targets)),
	)

	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	obs := observability.New("proxy-server")
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Response cache: redis when configured, in-process LRU otherwise ---
	var respCache cache.Cache
	if cfg.Database.Redis.Address != "" {
		var redisClient *database.RedisClient
		err = retryWithBackoff(func() error {
			var err error
			redisClient, err = database.NewRedis(cfg.Database.Redis)
			if err != nil {
				return err
			}
			return redisClient.Ping(ctx)
		}, 5, 2*time.Second, zapLog, "Redis initialization")

		if err != nil {
			zapLog.Warn("redis unavailable, falling back to in-memory cache", zap.Error(err))
		} else {
			defer redisClient.Close()
			respCache = cache.NewRedis(redisClient.Client, "proxy:", log)
			zapLog.Info("Redis response cache connected")
		}
	}
	if respCache == nil {
		respCache = cache.NewMemory(256)
	}

	d := dispatcher.New(log)
	server := proxy.NewServer(cfg.Proxy, d, respCache, log).WithRecorder(obs)
	router := server.Router()
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// --- History store + search, optional ---
	if cfg.History.Enabled {
		var pg *database.PostgresClient
		err = retryWithBackoff(func() error {
			var err error
			pg, err = database.NewPostgres(cfg.Database.Postgres)
			if err != nil {
				return err
			}
			return pg.Ping(ctx)
		}, 5, 2*time.Second, zapLog, "PostgreSQL initialization")

		if err != nil {
			zapLog.Fatal("postgres failed after retries", zap.Error(err))
		}
		defer pg.Close()
		store := history.NewStore(pg.DB, log)
		zapLog.Info("History store connected")

		var search *history.SearchIndex
		if len(cfg.Database.Elasticsearch.Addresses) > 0 {
			es, esErr := database.NewElasticsearch(cfg.Database.Elasticsearch)
			if esErr != nil {
				zapLog.Warn("elasticsearch init failed, search disabled", zap.Error(esErr))
			} else if pingErr := es.Ping(); pingErr != nil {
				zapLog.Warn("elasticsearch unreachable, search disabled", zap.Error(pingErr))
			} else {
				search = history.NewSearchIndex(es.Client, cfg.History.Index, log)
				zapLog.Info("Paper search index connected")
			}
		}

		history.NewHandler(store, search, log).Register(router)
	}

	httpServer := &http.Server{
		Addr:    cfg.Proxy.ListenAddr,
		Handler: router,
	}

	go func() {
		zapLog.Info("HTTP server listening", zap.String("addr", cfg.Proxy.ListenAddr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Fatal("http server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLog.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("graceful shutdown failed", zap.Error(err))
	}
}
