package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"apploto/api"
	"apploto/application"
	"apploto/config"
	"apploto/database"
	"apploto/domain/ranking"
	"apploto/infrastructure"
	"apploto/infrastructure/auth"
	"apploto/infrastructure/observability"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/jonboulle/clockwork"
	log "github.com/sirupsen/logrus"
)

const shutdownTimeout = 10 * time.Second

// Run initializes and starts the application
func Run(ctx context.Context, cfg *config.Config) error {
	log.WithField("environment", cfg.Environment).Info("Starting apploto...")

	if err := observability.InitializeGlobalMetrics(ctx, cfg); err != nil {
		log.WithError(err).Warn("Failed to initialize metrics, continuing without them")
	}
	metrics := observability.GetMetrics()

	log.Info("Connecting to database...")
	db, err := database.NewConnectionWithOptions(ctx, cfg.GetDatabaseURL(), database.PoolOptions{MaxConns: cfg.DatabaseMaxConns})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()
	log.Info("Database connection established successfully")

	bus, err := newEventBus(ctx, cfg)
	if err != nil {
		return err
	}
	defer bus.Close()

	uowFactory := infrastructure.NewUnitOfWorkFactory(db, bus.publisher)

	clock := clockwork.NewRealClock()
	nameCache, err := infrastructure.NewParticipantNameCache(cfg.ParticipantCache)
	if err != nil {
		return fmt.Errorf("failed to create participant cache: %w", err)
	}
	mailer := infrastructure.NewMailer(infrastructure.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
	})

	services := application.NewServiceFactory(application.ServiceDependencies{
		Clock:      clock,
		Hasher:     auth.NewBcryptHasher(cfg.BcryptCost),
		Issuer:     auth.NewJWTProvider(cfg.JWTSecret, cfg.JWTAccessTTL, cfg.JWTRefreshTTL, clock),
		Mailer:     mailer,
		AdminEmail: cfg.AdminEmail,
		Lookup: func(source ranking.ParticipantLookup) ranking.ParticipantLookup {
			return nameCache.Lookup(source)
		},
		Faker: gofakeit.New(0),
	})

	var announcer application.Announcer
	if cfg.DiscordWebhookURL != "" {
		discord, err := infrastructure.NewDiscordAnnouncer(cfg.DiscordWebhookURL, cfg.PublicSiteURL)
		if err != nil {
			return fmt.Errorf("failed to create discord announcer: %w", err)
		}
		announcer = discord
		log.Info("Discord announcements enabled")
	}

	notifications := application.NewNotificationHandler(uowFactory, mailer, announcer, metrics, cfg.PublicSiteURL)
	if err := application.RegisterApplicationSubscriptions(bus.subscriber, notifications); err != nil {
		return fmt.Errorf("failed to register subscriptions: %w", err)
	}

	worker, err := application.NewLotteryCloseWorker(uowFactory, services, metrics, cfg.CloseWorkerSchedule)
	if err != nil {
		return err
	}
	stopWorker := worker.Start(ctx)
	defer stopWorker()

	server := api.NewServer(cfg, api.Dependencies{
		UoWFactory: uowFactory,
		Services:   services,
		NameCache:  nameCache,
		Receipts:   infrastructure.NewReceiptRenderer(cfg.PublicSiteURL),
		Metrics:    api.NewHTTPMetrics(),
	})
	health := NewHealthServer(cfg.GRPCHealthAddr)

	errCh := make(chan error, 2)
	go func() { errCh <- server.Start() }()
	go func() { errCh <- health.Start() }()
	health.SetServing(true)

	log.Infof("apploto is running in %s mode", cfg.Environment)
	var runErr error
	select {
	case <-ctx.Done():
		log.Info("Shutting down apploto...")
	case runErr = <-errCh:
		if runErr != nil {
			log.WithError(runErr).Error("Server stopped unexpectedly")
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	health.SetServing(false)
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Error shutting down HTTP server")
	}
	health.Stop()
	stopWorker()

	if err := observability.ShutdownGlobalMetrics(shutdownCtx); err != nil {
		log.WithError(err).Warn("Failed to shut down metrics provider")
	}

	if errors.Is(shutdownCtx.Err(), context.DeadlineExceeded) {
		log.Warn("Shutdown timeout exceeded")
	} else {
		log.Info("Shutdown completed")
	}
	return runErr
}
