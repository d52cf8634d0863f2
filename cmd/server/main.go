// Command server runs the courier operations API.
//
// @title                       Courier Operations API
// @version                     1.0
// @description                 Parcel lifecycle, staff wallets and recipient SMS notifications.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Session token from POST /auth/session, as "Bearer <token>".
package main

//go:generate swag init -g cmd/server/main.go -d ../../ -o ../../docs

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"

	"github.com/courierpwa/courier-ops/internal/api"
	"github.com/courierpwa/courier-ops/internal/core/ports"
	"github.com/courierpwa/courier-ops/internal/core/service"
	"github.com/courierpwa/courier-ops/internal/infrastructure/db/mongo"
	"github.com/courierpwa/courier-ops/internal/infrastructure/db/redis"
	"github.com/courierpwa/courier-ops/internal/infrastructure/events"
	"github.com/courierpwa/courier-ops/internal/infrastructure/identity"
	"github.com/courierpwa/courier-ops/internal/infrastructure/queue"
	"github.com/courierpwa/courier-ops/internal/infrastructure/sms"
	"github.com/courierpwa/courier-ops/internal/pkg/config"
	"github.com/courierpwa/courier-ops/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: cfg.Pretty(), Service: "courier-api"})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Storage ---
	mongoClient, db, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database, AppName: "courier-api", Timeout: cfg.Mongo.Timeout})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to mongodb")
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = mongoClient.Disconnect(disconnectCtx)
	}()

	repos := mongo.NewRepositories(db, cfg.Mongo.Timeout)
	if err := repos.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to ensure mongodb indexes")
	}

	rdb, err := redis.Connect(ctx, cfg.Redis)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer rdb.Close()

	gateway, err := sms.New(cfg.SMS, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build sms gateway")
	}

	// --- Core services ---
	ledgerService := service.NewLedgerService(service.LedgerServiceDeps{
		Entries:  repos.Ledger,
		Wallets:  repos.Wallets,
		Parcels:  repos.Parcels,
		Currency: cfg.Currency,
		Logger:   log,
	})
	notificationService := service.NewNotificationService(service.NotificationServiceDeps{
		Gateway:     gateway,
		Dedup:       redis.NewNotificationDedup(rdb),
		Logs:        repos.SMSLogs,
		Parcels:     repos.Parcels,
		CompanyName: cfg.CompanyName,
		Logger:      log,
	})

	// --- Lifecycle events ---
	var (
		publisher ports.EventPublisher
		nc        *nats.Conn
	)
	switch cfg.Events.Mode {
	case "queue":
		dispatcher := queue.NewDispatcher(cfg.Events.Workers, notificationService, log)
		dispatcher.Start(ctx)
		publisher = dispatcher
	case "nats":
		nc, err = events.Connect(cfg.Events.NatsURL, log)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to nats")
		}
		defer nc.Drain()

		sub, err := events.NewSubscriber(ctx, notificationService, log).Subscribe(nc)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to subscribe to lifecycle events")
		}
		defer sub.Unsubscribe()
		publisher = events.NewNATSPublisher(nc)
	default:
		publisher = events.NewInlinePublisher(notificationService)
	}
	log.Info().Str("mode", cfg.Events.Mode).Msg("lifecycle events configured")

	parcelService := service.NewParcelService(service.ParcelServiceDeps{
		Parcels:      repos.Parcels,
		Destinations: repos.Destinations,
		Ledger:       ledgerService,
		Events:       publisher,
		Logger:       log,
	})
	staffService := service.NewStaffService(repos.Staff, log)
	authService := service.NewAuthService(identity.NewJWTVerifier(cfg.Auth.IdentityJWTSecret), staffService, cfg.Auth.JWTSecret, cfg.Auth.SessionTTL)
	destinationService := service.NewDestinationService(repos.Destinations, repos.Parcels, log)

	service.NewReconciler(repos.Parcels, repos.Destinations, ledgerService, log).
		Start(ctx, cfg.Reconcile.Interval, cfg.Reconcile.Grace)

	// --- HTTP ---
	e := api.NewRouter(api.Deps{
		DB:            db,
		Redis:         rdb,
		NATS:          nc,
		JWTSecret:     cfg.Auth.JWTSecret,
		Logger:        log,
		Auth:          authService,
		Staff:         staffService,
		Parcels:       parcelService,
		Notifications: notificationService,
		Ledger:        ledgerService,
		Destinations:  destinationService,
	})

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("courier api starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http server forced to shutdown")
	}
	log.Info().Msg("courier api exited")
}
