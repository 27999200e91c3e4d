package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-vaccination-booking/config"
	deliveryHttp "go-vaccination-booking/internal/delivery/http"
	"go-vaccination-booking/internal/delivery/http/handler"
	"go-vaccination-booking/internal/delivery/http/middleware"
	"go-vaccination-booking/internal/infrastructure/cache"
	"go-vaccination-booking/internal/infrastructure/database"
	"go-vaccination-booking/internal/infrastructure/queue"
	"go-vaccination-booking/internal/infrastructure/telemetry"
	"go-vaccination-booking/internal/repository"
	"go-vaccination-booking/internal/service"
	"go-vaccination-booking/internal/usecase"
	"go-vaccination-booking/pkg/jwt"
	"go-vaccination-booking/pkg/logger"
	"go-vaccination-booking/pkg/validator"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Usecases exposes the business layer to the command line
type Usecases struct {
	Auth         usecase.AuthUsecase
	Vaccine      usecase.VaccineUsecase
	Child        usecase.ChildUsecase
	Vaccination  usecase.VaccinationUsecase
	Schedule     usecase.DoctorScheduleUsecase
	Booking      usecase.BookingUsecase
	Appointment  usecase.AppointmentUsecase
	Notification usecase.NotificationUsecase
	AuditLog     usecase.AuditLogUsecase
}

// App holds all dependencies for the application
type App struct {
	Config      *config.Config
	Log         *logrus.Logger
	DB          *gorm.DB
	RedisClient *redis.Client
	QueueClient *asynq.Client
	Worker      *queue.Worker
	Telemetry   *telemetry.Provider
	Server      *http.Server
	Usecases    Usecases

	jwtService *jwt.JWTService
	tokenStore service.TokenStore
}

// Load reads configuration and sets up logging without touching any backend
func Load() (*config.Config, *logrus.Logger, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	log := logger.New(cfg.Log)
	log.Info("Configuration loaded successfully")

	return cfg, log, nil
}

// New creates a new App instance with all dependencies initialized
func New(ctx context.Context) (*App, error) {
	cfg, log, err := Load()
	if err != nil {
		return nil, err
	}
	app := &App{Config: cfg, Log: log}

	if cfg.Telemetry.Enabled {
		provider, err := telemetry.Init(ctx, cfg.App, cfg.Telemetry)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
		}
		app.Telemetry = provider
	}

	db, err := database.NewPostgresConnection(cfg.DB, log)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	app.DB = db

	redisClient, err := cache.NewRedisClient(ctx, cfg.Redis, log)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	app.RedisClient = redisClient

	app.initializeUsecases()

	return app, nil
}

func (app *App) initializeUsecases() {
	cfg, db, log := app.Config, app.DB, app.Log

	// Initialize repositories
	userRepo := repository.NewUserRepository()
	childRepo := repository.NewChildRepository()
	vaccineRepo := repository.NewVaccineRepository()
	doseRepo := repository.NewDoseRecordRepository()
	scheduleRepo := repository.NewDoctorScheduleRepository()
	slotRepo := repository.NewAvailabilitySlotRepository()
	appointmentRepo := repository.NewAppointmentRepository()
	notificationRepo := repository.NewNotificationRepository()
	auditLogRepo := repository.NewAuditLogRepository()

	// Initialize services
	auditService := service.NewAuditService(log, auditLogRepo)
	availabilityCache := service.NewRedisAvailabilityCache(app.RedisClient, log, cfg.Redis.AvailabilityTTL)
	unreadCounter := service.NewRedisUnreadCounter(app.RedisClient)
	deliverer := service.NewNotificationDeliverer(db, log, notificationRepo, unreadCounter)
	app.tokenStore = service.NewRedisTokenStore(app.RedisClient)
	app.jwtService = jwt.NewJWTService(cfg.JWT)

	var notifier service.Notifier = deliverer
	if cfg.Notification.Async {
		app.QueueClient = queue.NewClient(cfg.Redis, cfg.Notification)
		app.Worker = queue.NewWorker(cfg.Redis, cfg.Notification, deliverer, log)
		notifier = service.NewQueueNotifier(app.QueueClient, log, cfg.Notification.Queue, cfg.Notification.MaxRetry)
	}

	// Initialize usecases
	app.Usecases = Usecases{
		Auth:         usecase.NewAuthUsecase(db, log, userRepo, auditService, app.jwtService, app.tokenStore),
		Vaccine:      usecase.NewVaccineUsecase(db, log, vaccineRepo, auditService),
		Child:        usecase.NewChildUsecase(db, log, childRepo, userRepo, vaccineRepo, doseRepo, appointmentRepo, slotRepo, auditService, availabilityCache),
		Vaccination:  usecase.NewVaccinationUsecase(db, log, doseRepo, childRepo, auditService, notifier),
		Schedule:     usecase.NewDoctorScheduleUsecase(db, log, scheduleRepo, slotRepo, auditService, availabilityCache),
		Booking:      usecase.NewBookingUsecase(db, log, scheduleRepo, slotRepo, childRepo, appointmentRepo, auditService, availabilityCache),
		Appointment:  usecase.NewAppointmentUsecase(db, log, appointmentRepo, childRepo, scheduleRepo, slotRepo, auditService, notifier, availabilityCache),
		Notification: usecase.NewNotificationUsecase(db, log, notificationRepo, unreadCounter),
		AuditLog:     usecase.NewAuditLogUsecase(db, log, auditLogRepo),
	}
}

// InitializeServer creates and configures the HTTP server
func (app *App) InitializeServer() {
	cfg, uc := app.Config, app.Usecases

	// Initialize validator
	customValidator := validator.NewValidator()

	// Initialize handlers
	handlers := deliveryHttp.Handlers{
		Auth:           handler.NewAuthHandler(uc.Auth, customValidator),
		Doctor:         handler.NewDoctorHandler(uc.Auth, customValidator),
		DoctorSchedule: handler.NewDoctorScheduleHandler(uc.Schedule, customValidator),
		Booking:        handler.NewBookingHandler(uc.Booking, customValidator),
		Child:          handler.NewChildHandler(uc.Child, customValidator),
		Vaccine:        handler.NewVaccineHandler(uc.Vaccine, customValidator),
		Vaccination:    handler.NewVaccinationHandler(uc.Vaccination, customValidator),
		Appointment:    handler.NewAppointmentHandler(uc.Appointment, customValidator),
		Notification:   handler.NewNotificationHandler(uc.Notification),
		AuditLog:       handler.NewAuditLogHandler(uc.AuditLog),
	}

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(app.jwtService, app.tokenStore, app.Log)
	corsMiddleware := middleware.NewCORSMiddleware(cfg.App.CORSOrigin)
	bookingLimiter := middleware.NewRateLimiter(cfg.RateLimit.BookingPerMinute, cfg.RateLimit.BookingBurst, app.Log)

	metricsPath := ""
	if cfg.Telemetry.Enabled {
		metricsPath = cfg.Telemetry.MetricsPath
	}

	// Initialize router
	router := deliveryHttp.NewRouter(handlers, authMiddleware, corsMiddleware, bookingLimiter, app.Log, metricsPath)

	app.Server = &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.App.Port),
		Handler:           router.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// Run starts the HTTP server and handles graceful shutdown
func (app *App) Run() error {
	if app.Server == nil {
		app.InitializeServer()
	}

	if app.Worker != nil {
		if err := app.Worker.Start(); err != nil {
			return err
		}
	}

	serverErr := make(chan error, 1)
	go func() {
		app.Log.Infof("Server starting on port %s", app.Config.App.Port)
		app.Log.Infof("Environment: %s", app.Config.App.Env)
		if err := app.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		app.Close()
		return fmt.Errorf("failed to start server: %w", err)
	case <-quit:
	}

	app.shutdown()
	return nil
}

func (app *App) shutdown() {
	app.Log.Info("Shutting down server...")

	// Create shutdown context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.Server.Shutdown(ctx); err != nil {
		app.Log.Errorf("Server forced to shutdown: %v", err)
	}

	app.Close()

	app.Log.Info("Server shutdown complete")
}

// Close releases every backend connection the app opened
func (app *App) Close() {
	if app.Worker != nil {
		app.Worker.Shutdown()
	}

	if app.QueueClient != nil {
		if err := app.QueueClient.Close(); err != nil {
			app.Log.Warnf("Failed to close queue client: %+v", err)
		}
	}

	if app.DB != nil {
		sqlDB, err := app.DB.DB()
		if err == nil {
			sqlDB.Close()
		}
	}

	if app.RedisClient != nil {
		app.RedisClient.Close()
	}

	if app.Telemetry != nil {
		if err := app.Telemetry.Shutdown(context.Background()); err != nil {
			app.Log.Warnf("Failed to shutdown telemetry: %+v", err)
		}
	}
}
