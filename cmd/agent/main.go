package main

import (
	"log"

	appcart "agromarket/internal/application/cart"
	appcatalog "agromarket/internal/application/catalog"
	appoutbox "agromarket/internal/application/outbox"
	appsync "agromarket/internal/application/sync"
	"agromarket/internal/config"
	ginserver "agromarket/internal/infrastructure/http/gin"
	"agromarket/internal/infrastructure/http/submit"
	"agromarket/internal/infrastructure/persistence/sqlite"
	"agromarket/internal/interfaces/http/handler"
	"agromarket/internal/interfaces/http/router"
	"agromarket/pkg/logger"
)

// The sync agent hosts the offline order queue: it owns the embedded
// local store, exposes the enqueue/drain/status API to the marketplace
// UI, and replays queued orders to the server. Deciding WHEN to drain
// (reconnect event, timer, app foreground) is the UI's job; the agent
// only reacts to calls.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config failed: %v", err)
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
	productRepo := sqlite.NewProductRepository(store)
	cartRepo := sqlite.NewCartRepository(store)

	submitClient := submit.NewClient(cfg.Submit)

	outboxService := appoutbox.NewService(outboxRepo, zapLogger)
	syncService := appsync.NewService(outboxRepo, submitClient, zapLogger)
	catalogService := appcatalog.NewService(productRepo, zapLogger)
	cartService := appcart.NewService(cartRepo, zapLogger)

	outboxHandler := handler.NewOutboxHandler(outboxService, syncService, cartService, zapLogger)
	catalogHandler := handler.NewCatalogHandler(catalogService)
	cartHandler := handler.NewCartHandler(cartService)

	engine := ginserver.NewEngine()
	router.RegisterRoutes(engine, outboxHandler, catalogHandler, cartHandler)

	zapLogger.Info("sync agent starting",
		logger.String("addr", cfg.Server.Address()),
		logger.String("store", cfg.Store.Path),
	)

	server := ginserver.NewServer(cfg.Server, engine)
	if err := server.Run(); err != nil {
		zapLogger.Fatal("server run failed", logger.Error(err))
	}
}
