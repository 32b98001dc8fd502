package main

import (
	"context"
	"log"

	appsync "agromarket/internal/application/sync"
	"agromarket/internal/config"
	"agromarket/internal/infrastructure/http/submit"
	"agromarket/internal/infrastructure/persistence/sqlite"
	"agromarket/pkg/logger"
)

// One-shot drain: open the local store, replay the outbox once, report
// the summary and exit. Useful from cron or a connectivity hook on
// devices where the agent API is not running.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config failed: %v", err)
	}
	if cfg.Submit.URL == "" {
		log.Fatal("SUBMIT_URL is empty (e.g. https://api.example.com/api/orders)")
	}

	zapLogger, err := logger.NewZapLogger(cfg.App.Env)
	if err != nil {
		log.Fatalf("init logger failed: %v", err)
	}
	defer zapLogger.Sync()

	store, err := sqlite.Open(cfg.Store, zapLogger)
	if err != nil {
		zapLogger.Fatal("open local store failed", logger.Error(err))
	}
	defer store.Close()

	outboxRepo := sqlite.NewOutboxRepository(store)
	submitClient := submit.NewClient(cfg.Submit)
	syncService := appsync.NewService(outboxRepo, submitClient, zapLogger)

	result, err := syncService.Drain(context.Background())
	if err != nil {
		zapLogger.Fatal("sync drain failed", logger.Error(err))
	}

	zapLogger.Info("sync drain done",
		logger.Int("synced", result.SyncedCount),
		logger.Int("failed", result.ErrorCount),
	)
}
