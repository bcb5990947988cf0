package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/noah-isme/mikoro-portal/internal/config"
	"github.com/noah-isme/mikoro-portal/internal/database"
	"github.com/noah-isme/mikoro-portal/internal/handler"
	"github.com/noah-isme/mikoro-portal/internal/middleware"
	"github.com/noah-isme/mikoro-portal/internal/observability"
	"github.com/noah-isme/mikoro-portal/internal/repository"
	"github.com/noah-isme/mikoro-portal/internal/router"
	"github.com/noah-isme/mikoro-portal/internal/service"
	cloud "github.com/noah-isme/mikoro-portal/pkg/cloudinary"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).Level(cfg.LogLevel).With().Timestamp().Str("service", cfg.AppName).Logger()
	observability.RegisterMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := database.OpenKeyValueStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Str("driver", cfg.StorageDriver).Msg("failed to open storage")
	}
	defer closeStore()

	snapshots := repository.NewSnapshotRepository(store, cfg.SnapshotKey, logger)
	sessions := repository.NewSessionRepository(store, cfg.SessionKey, logger)
	if err := snapshots.EnsureSeeded(ctx); err != nil {
		logger.Fatal().Err(err).Msg("failed to seed snapshot")
	}

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = database.ConnectNATS(cfg.NATSURL, cfg.AppName, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to nats")
		}
		defer natsConn.Close()
	}

	events := service.NewEventBus(natsConn, cfg.EventSubjectPrefix, logger)
	events.Start(ctx)

	validate := validator.New(validator.WithRequiredStructEnabled())

	authService := service.NewAuthService(snapshots, sessions, logger)
	recordService := service.NewRecordService(snapshots, events, validate, logger)

	var photoStorage service.PhotoStorage
	cloudCfg := cloud.Config{
		CloudName: cfg.CloudinaryCloudName,
		APIKey:    cfg.CloudinaryAPIKey,
		APISecret: cfg.CloudinaryAPISecret,
		Folder:    cfg.CloudinaryUploadFolder,
	}
	if cloudCfg.Enabled() {
		uploader, err := cloud.New(cloudCfg, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to create cloudinary client")
		}
		photoStorage = uploader
	} else {
		logger.Warn().Msg("cloudinary credentials missing, photo upload disabled")
	}
	photoService := service.NewPhotoService(photoStorage, recordService, logger)

	service.NewParentNotifier(events, service.NewLogLinkDispatcher(logger), logger).Start(ctx)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger, Session: authService})
	router.Register(app, cfg, router.Dependencies{
		AuthHandler:         handler.NewAuthHandler(authService, validate, logger),
		StudentHandler:      handler.NewStudentHandler(recordService, photoService, logger),
		ProfileHandler:      handler.NewProfileHandler(recordService, logger),
		RecordHandler:       handler.NewRecordHandler(recordService, logger),
		AnnouncementHandler: handler.NewAnnouncementHandler(recordService, logger),
		SnapshotHandler:     handler.NewSnapshotHandler(recordService, logger),
		EventsHandler:       handler.NewEventsHandler(events, logger),
		StorageProbe: func(ctx context.Context) error {
			_, err := snapshots.Load(ctx)
			return err
		},
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			logger.Error().Err(err).Msg("server stopped listening")
			stop()
		}
	}()

	waitForShutdown(ctx, app, logger)
}

func waitForShutdown(ctx context.Context, app *fiber.App, logger zerolog.Logger) {
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	logger.Info().Msg("server stopped")
}
