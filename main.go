package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"

	"homely/config"
	"homely/cron"
	"homely/database"
	bookingsRepo "homely/database/repository/bookings"
	slotsRepo "homely/database/repository/slots"
	workersRepo "homely/database/repository/workers"
	"homely/handlers"
	"homely/routes"
	"homely/services/booking"
	"homely/services/catalog"
	"homely/services/notification"
	"homely/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("main: failed to load config: " + err.Error())
	}

	utils.InitializeLogger(cfg.IsProduction())
	logger := utils.GetLogger()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	mongoClient, err := database.Connect(ctx, cfg)
	cancel()
	if err != nil {
		logger.Sugar().Fatalf("main: failed to connect to mongo: %v", err)
	}
	db := mongoClient.Database(cfg.MongoDatabase)

	cacheClient, err := utils.NewCacheClient(cfg)
	if err != nil {
		logger.Sugar().Fatalf("main: failed to connect to redis: %v", err)
	}

	queueClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisQueueDB,
	})

	// Repositories.
	registry := slotsRepo.NewMongoRegistry(db)
	ledger := bookingsRepo.NewMongoBookingRepo(db)
	roster := workersRepo.NewMongoWorkerRepo(db)

	idxCtx, idxCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer idxCancel()
	if err := registry.EnsureIndexes(idxCtx); err != nil {
		logger.Sugar().Fatalf("main: failed to create slot indexes: %v", err)
	}
	if err := ledger.EnsureIndexes(idxCtx); err != nil {
		logger.Sugar().Fatalf("main: failed to create booking indexes: %v", err)
	}
	if err := roster.EnsureIndexes(idxCtx); err != nil {
		logger.Sugar().Fatalf("main: failed to create worker indexes: %v", err)
	}

	// Services.
	serviceCatalog := catalog.NewStaticCatalog(cfg)
	emitter := notification.NewAsynqEmitter(queueClient, logger)

	availability := &booking.DefaultAvailabilityService{
		Registry: registry,
		Catalog:  serviceCatalog,
		Cache:    cacheClient,
		TTL:      cfg.AvailabilityTTL(),
		Logger:   logger,
	}

	coordinator := &booking.DefaultCoordinator{
		Registry:    registry,
		Ledger:      ledger,
		Catalog:     serviceCatalog,
		Notifier:    emitter,
		Holds:       emitter,
		Snapshots:   availability,
		HoldTimeout: cfg.HoldTimeout(),
		Logger:      logger,
	}

	lifecycle := &booking.DefaultLifecycleEngine{
		Ledger:    ledger,
		Registry:  registry,
		Workers:   roster,
		Notifier:  emitter,
		Snapshots: availability,
		Logger:    logger,
	}

	assigner := &booking.DefaultWorkerAssigner{
		Ledger:    ledger,
		Workers:   roster,
		Catalog:   serviceCatalog,
		Lifecycle: lifecycle,
		Notifier:  emitter,
		Logger:    logger,
	}

	// Background worker for slot reclaim and event handoff.
	worker := cron.NewWorker(cfg, registry, logger)
	worker.Run()

	healthMonitor := utils.NewHealthMonitor(mongoClient, cacheClient, 60*time.Second)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())

	bookingHandler := &handlers.BookingHandler{
		Coordinator:  coordinator,
		Lifecycle:    lifecycle,
		Assigner:     assigner,
		Availability: availability,
		Logger:       logger,
	}
	healthHandler := &handlers.HealthHandler{Monitor: healthMonitor}

	routes.RegisterRoutes(router, bookingHandler, healthHandler, cfg.MaxRequestsPerMin)

	port := cfg.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	worker.Shutdown()
	healthMonitor.Stop()
	if err := queueClient.Close(); err != nil {
		logger.Sugar().Warnf("main: failed to close queue client: %v", err)
	}
	if err := cacheClient.Close(); err != nil {
		logger.Sugar().Warnf("main: failed to close redis client: %v", err)
	}
	if err := database.Disconnect(mongoClient); err != nil {
		logger.Sugar().Warnf("main: failed to disconnect mongo: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
