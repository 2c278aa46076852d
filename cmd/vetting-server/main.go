// cmd/vetting-server/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/QuadKenya/growth-engine/internal/api"
	"github.com/QuadKenya/growth-engine/internal/common/config"
	"github.com/QuadKenya/growth-engine/internal/common/database"
	"github.com/QuadKenya/growth-engine/internal/common/logger"
	"github.com/QuadKenya/growth-engine/internal/common/observability"
	"github.com/QuadKenya/growth-engine/internal/drafting"
	"github.com/QuadKenya/growth-engine/internal/engine/finance"
	"github.com/QuadKenya/growth-engine/internal/engine/scoring"
	"github.com/QuadKenya/growth-engine/internal/engine/site"
	"github.com/QuadKenya/growth-engine/internal/lock"
	"github.com/QuadKenya/growth-engine/internal/reporting"
	"github.com/QuadKenya/growth-engine/internal/search"
	"github.com/QuadKenya/growth-engine/internal/store"
	"github.com/QuadKenya/growth-engine/internal/workflow"
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
	zapLog := logger.New("info", "console")
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting vetting server...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	rules, territories, err := config.LoadRules(cfg.Rules.Dir)
	if err != nil {
		zapLog.Fatal("rule tables load failed", zap.Error(err))
	}
	zapLog.Info("Rule tables loaded",
		zap.Int("criteria", len(rules.ScoringModel)),
		zap.Int("territories", len(territories)),
	)

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Candidate store ---
	var candidateStore store.Store
	switch cfg.Store.Driver {
	case "postgres":
		var pg *database.PostgresClient
		err = retryWithBackoff(func() error {
			var err error
			pg, err = database.NewPostgres(cfg.Database.Postgres)
			if err != nil {
				return err
			}
			return pg.Ping(ctx)
		}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
		if err != nil {
			zapLog.Fatal("postgres failed after retries", zap.Error(err))
		}
		defer pg.Close()
		candidateStore = store.NewPostgresStore(pg.DB)
		zapLog.Info("PostgreSQL store connected")

	default:
		candidateStore, err = store.NewJSONFileStore(cfg.Store.Path)
		if err != nil {
			zapLog.Fatal("json file store init failed", zap.Error(err))
		}
		zapLog.Info("JSON file store ready", zap.String("path", cfg.Store.Path))
	}

	// --- Per-record locks ---
	var locker lock.Locker = lock.NewMemoryLocker()
	if cfg.Database.Redis.Address != "" {
		var redis *database.RedisClient
		err = retryWithBackoff(func() error {
			var err error
			redis, err = database.NewRedis(cfg.Database.Redis)
			if err != nil {
				return err
			}
			return redis.Ping(ctx)
		}, 10, 2*time.Second, zapLog, "Redis connection")
		if err != nil {
			zapLog.Fatal("redis failed after retries", zap.Error(err))
		}
		defer redis.Close()
		locker = lock.NewRedisLocker(redis.Client)
		zapLog.Info("Redis connected, distributed locking enabled")
	}

	// --- Search index ---
	var indexer search.Indexer = search.NopIndexer{}
	if cfg.Search.Enabled {
		var esClient *database.ElasticsearchClient
		err = retryWithBackoff(func() error {
			var err error
			esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			return esClient.Ping()
		}, 15, 2*time.Second, zapLog, "Elasticsearch connection")
		if err != nil {
			zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
		}
		indexer = search.NewESIndexer(esClient.Client, cfg.Search.Index, log)
		zapLog.Info("Elasticsearch connected, candidate index enabled")
	}

	orch := workflow.New(workflow.Deps{
		Store:   candidateStore,
		Drafter: drafting.NewTemplateDrafter(),
		Scorer:  scoring.NewEngine(rules, territories, log),
		Finance: finance.NewCalculator(rules.Financial),
		Site:    site.NewCalculator(rules.SiteVetting),
		Rules:   rules,
		Locker:  locker,
		Indexer: indexer,
		Logger:  log,
	})
	reporter := reporting.New(candidateStore, log, nil)

	server := api.NewServer(cfg.Server.Addr(), orch, reporter, cfg.Sweep, log)
	go func() {
		if err := server.Start(); err != nil {
			zapLog.Fatal("http server failed", zap.Error(err))
		}
	}()

	// --- Daily sweep ---
	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	go func() {
		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-sweepCtx.Done():
				return
			case <-ticker.C:
				if _, err := orch.RunSweep(sweepCtx, cfg.Sweep); err != nil {
					zapLog.Error("sweep failed", zap.Error(err))
				}
			}
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	stopSweep()
	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error shutting down http server", zap.Error(err))
	}

	zapLog.Info("Shutdown complete")
}
