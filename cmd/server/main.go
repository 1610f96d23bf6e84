package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Freeeeeet/signbridge/internal/app"
	"github.com/Freeeeeet/signbridge/internal/config"
	"github.com/Freeeeeet/signbridge/internal/controller"
	"github.com/Freeeeeet/signbridge/internal/controller/handlers"
	"github.com/Freeeeeet/signbridge/internal/controller/httpapi"
	"github.com/Freeeeeet/signbridge/internal/controller/state"
	"github.com/Freeeeeet/signbridge/internal/integration/chatroom"
	"github.com/Freeeeeet/signbridge/internal/integration/gmeet"
	"github.com/Freeeeeet/signbridge/internal/integration/mq"
	"github.com/Freeeeeet/signbridge/internal/repository"
	"github.com/Freeeeeet/signbridge/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/go-telegram/bot"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := app.NewLogger(cfg.Environment)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("Service stopped with error", zap.Error(err))
	}
	logger.Info("Service stopped")
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	logger.Info("Starting signbridge",
		zap.String("environment", cfg.Environment),
		zap.String("timezone", cfg.Location().String()))

	pool, err := pgxpool.New(ctx, cfg.GetDBDSN())
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		return err
	}
	logger.Info("Connected to database")

	migrator, err := app.NewMigrator(pool, cfg.MigrationsDir, logger)
	if err != nil {
		return err
	}
	if err := migrator.Run(ctx); err != nil {
		migrator.Close()
		return err
	}
	migrator.Close()

	// Репозитории
	userRepo := repository.NewUserRepository(pool)
	availabilityRepo := repository.NewAvailabilityRepository(pool, logger)
	interpreterRepo := repository.NewInterpreterRepository(pool)
	appointmentRepo := repository.NewAppointmentRepository(pool)
	requestRepo := repository.NewRequestRepository(pool)
	ratingRepo := repository.NewRatingRepository(pool)

	// Сервисы
	userService := service.NewUserService(userRepo, logger)
	availabilityService := service.NewAvailabilityService(availabilityRepo, userRepo, logger)
	interpreterService := service.NewInterpreterService(interpreterRepo, userRepo, logger)
	validator := service.NewBookingValidator(availabilityRepo, appointmentRepo, cfg.Location(), logger)
	matchingService := service.NewMatchingService(interpreterRepo, validator, cfg.SearchPageSize, logger)
	appointmentService := service.NewAppointmentService(
		appointmentRepo, requestRepo, ratingRepo, userRepo, validator,
		service.LifecycleConfig{RequestTTL: cfg.RequestTTL, ReviewWindow: cfg.ReviewWindow},
		logger,
	)

	var meetings service.MeetingProvider = gmeet.Disabled{}
	if cfg.GoogleCredentialsFile != "" {
		provider, err := gmeet.NewProvider(ctx, cfg.GoogleCredentialsFile, cfg.GoogleCalendarID, logger)
		if err != nil {
			return err
		}
		meetings = provider
	}
	appointmentService.WithMeetings(meetings, chatroom.NewProvisioner(""))

	var notifiers service.MultiNotifier
	if cfg.AMQPURL != "" {
		publisher, err := mq.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange, logger)
		if err != nil {
			return err
		}
		defer publisher.Close()
		notifiers = append(notifiers, publisher)
	}

	var botController *controller.BotController
	if cfg.TelegramToken != "" {
		b, err := bot.New(cfg.TelegramToken)
		if err != nil {
			return err
		}

		stateManager := state.NewManager(state.DefaultTTL)
		go sweepStates(ctx, stateManager)

		h := handlers.NewHandlers(userService, availabilityService, appointmentService, stateManager, cfg.Location(), logger)
		botController = controller.NewBotController(b, h, logger)
		if err := botController.RegisterHandlers(ctx); err != nil {
			logger.Warn("Bot commands menu not updated", zap.Error(err))
		}
		notifiers = append(notifiers, controller.NewTelegramNotifier(b, userService, cfg.Location(), logger))
	} else {
		logger.Info("TELEGRAM_TOKEN not set, bot disabled")
	}
	appointmentService.WithNotifier(notifiers)

	scheduler, err := app.NewScheduler(appointmentService, cfg.ExpireCron, cfg.CompleteCron, logger)
	if err != nil {
		return err
	}
	scheduler.Start(ctx)
	defer scheduler.Stop()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	api := httpapi.NewHandler(userService, availabilityService, interpreterService, matchingService, appointmentService, cfg.Location(), logger)
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           httpapi.NewRouter(api, logger),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	if botController != nil {
		go botController.Start(ctx)
	}

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// sweepStates периодически удаляет брошенные диалоги
func sweepStates(ctx context.Context, m *state.Manager) {
	ticker := time.NewTicker(state.DefaultTTL / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Sweep()
		}
	}
}
