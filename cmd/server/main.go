package main

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"github.com/yeeuneey/GogoTaxi-back/internal/app"
	"github.com/yeeuneey/GogoTaxi-back/internal/config"
	"github.com/yeeuneey/GogoTaxi-back/internal/handler"
	"github.com/yeeuneey/GogoTaxi-back/internal/logging"
	"github.com/yeeuneey/GogoTaxi-back/internal/notify"
	"github.com/yeeuneey/GogoTaxi-back/internal/payments"
	"github.com/yeeuneey/GogoTaxi-back/internal/realtime"
	internalRedis "github.com/yeeuneey/GogoTaxi-back/internal/redis"
	"github.com/yeeuneey/GogoTaxi-back/internal/repository/postgres"
	"github.com/yeeuneey/GogoTaxi-back/internal/service"
)

func main() {
	cfg := config.Load()
	logger := logging.NewLogger(cfg.Log.Level)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize New Relic first so the database driver can be instrumented.
	var nrApp *newrelic.Application
	var err error
	if cfg.NewRelic.Enabled && cfg.NewRelic.LicenseKey != "" {
		nrApp, err = newrelic.NewApplication(
			newrelic.ConfigAppName(cfg.NewRelic.AppName),
			newrelic.ConfigLicense(cfg.NewRelic.LicenseKey),
			newrelic.ConfigDistributedTracerEnabled(true),
			newrelic.ConfigAppLogForwardingEnabled(true),
		)
		if err != nil {
			logger.Warn("new relic init failed", "error", err)
		} else {
			logger.Info("new relic enabled", "app", cfg.NewRelic.AppName)
		}
	}

	db, err := app.NewDatabase(ctx, cfg.Database, nrApp)
	if err != nil {
		logger.Error("database connect failed", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	logger.Info("connected to postgres", "db", cfg.Database.DBName)

	redisClient, err := app.NewRedisClient(ctx, cfg.Redis, nrApp)
	if err != nil {
		logger.Error("redis connect failed", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()
	logger.Info("connected to redis", "addr", cfg.Redis.Addr)

	var producer *notify.KafkaProducer
	if cfg.Kafka.Enabled {
		producer = notify.NewKafkaProducer(strings.Split(cfg.Kafka.Brokers, ","), cfg.Kafka.Topic)
		defer producer.Close()
		logger.Info("kafka notifications enabled", "topic", cfg.Kafka.Topic)
	}

	server := wireServer(db, redisClient, producer, nrApp, cfg, logger)

	go func() {
		logger.Info("starting server", "port", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("forced shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server exited")
}

// wireServer wires all dependencies and returns the HTTP server.
func wireServer(
	db *sql.DB,
	redisClient *redis.Client,
	producer *notify.KafkaProducer,
	nrApp *newrelic.Application,
	cfg *config.Config,
	logger *slog.Logger,
) *http.Server {
	// Redis stores.
	locationStore := internalRedis.NewLocationStore(redisClient)
	lockStore := internalRedis.NewLockStore(redisClient)
	cacheStore := internalRedis.NewCacheStore(redisClient)

	// Repositories.
	userRepo := postgres.NewUserRepository(db)
	roomRepo := postgres.NewRoomRepository(db)
	participantRepo := postgres.NewParticipantRepository(db)
	rideStateRepo := postgres.NewRideStateRepository(db)
	walletRepo := postgres.NewWalletRepository(db)
	settlementRepo := postgres.NewSettlementRepository(db)
	historyRepo := postgres.NewHistoryRepository(db)
	reviewRepo := postgres.NewReviewRepository(db)
	reportRepo := postgres.NewReportRepository(db)

	// Realtime hub.
	hub := realtime.NewHub(logger)

	// External payment rail: Stripe when configured, mock otherwise.
	var charger payments.Charger = payments.NewMockCharger()
	if cfg.Stripe.Enabled && cfg.Stripe.APIKey != "" {
		charger = payments.NewStripeCharger(cfg.Stripe.APIKey)
		logger.Info("stripe charger enabled")
	}

	// Services. A nil producer degrades notifications to log-only delivery.
	var publisher service.EventPublisher
	if producer != nil {
		publisher = producer
	}
	notificationService := service.NewNotificationService(publisher, logger)
	walletService := service.NewWalletService(db, userRepo, walletRepo, charger, cfg.Wallet.TopUpUnit, cfg.Wallet.Currency, logger)
	roomService := service.NewRoomService(db, roomRepo, participantRepo, rideStateRepo, locationStore, cacheStore, hub, notificationService, logger)
	rideService := service.NewRideService(db, roomRepo, participantRepo, rideStateRepo, lockStore, hub, notificationService, logger)
	settlementService := service.NewSettlementService(db, roomRepo, participantRepo, settlementRepo, historyRepo, walletService, notificationService, logger)
	feedbackService := service.NewFeedbackService(roomRepo, participantRepo, historyRepo, reviewRepo, reportRepo, logger)

	// Handlers.
	userHandler := handler.NewUserHandler(userRepo)
	roomHandler := handler.NewRoomHandler(roomService)
	rideHandler := handler.NewRideHandler(rideService)
	walletHandler := handler.NewWalletHandler(walletService)
	settlementHandler := handler.NewSettlementHandler(settlementService)
	feedbackHandler := handler.NewFeedbackHandler(feedbackService)
	wsHandler := handler.NewWSHandler(hub, roomService)

	router := app.NewRouter(app.RouterDeps{
		UserHandler:       userHandler,
		RoomHandler:       roomHandler,
		RideHandler:       rideHandler,
		WalletHandler:     walletHandler,
		SettlementHandler: settlementHandler,
		FeedbackHandler:   feedbackHandler,
		WSHandler:         wsHandler,
		RedisClient:       redisClient,
		NewRelicApp:       nrApp,
	})

	return &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
}
