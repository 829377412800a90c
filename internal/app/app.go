package app

import (
	"context"
	"ethioheritage_backend/internal/config"
	"ethioheritage_backend/internal/controller"
	"ethioheritage_backend/internal/repository"
	"ethioheritage_backend/internal/service"
	"ethioheritage_backend/internal/util"
	"ethioheritage_backend/pkg/configwatcher"
	"ethioheritage_backend/pkg/database"
	"ethioheritage_backend/pkg/events"
	"ethioheritage_backend/pkg/logger"
	"ethioheritage_backend/pkg/monitoring"
	"ethioheritage_backend/pkg/security"
	"ethioheritage_backend/pkg/tracing"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/robfig/cron/v3"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config          *config.Config
	ConfigDir       string
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	services        *services
	tracer          *sdktrace.TracerProvider
	scheduler       *cron.Cron
	configCallbacks []func(*config.Config)
}

type repositories struct {
	catalog     *repository.CatalogRepository
	progress    *repository.ProgressRepository
	statistics  *repository.StatisticsRepository
	achievement *repository.AchievementRepository
	certificate *repository.CertificateRepository
	analytics   *repository.AnalyticsRepository
}

type services struct {
	storage     *service.StorageService
	catalog     *service.CatalogService
	achievement *service.AchievementService
	progress    *service.ProgressService
	certificate *service.CertificateService
	analytics   *service.AnalyticsService
	hub         *service.NotificationHub
	publisher   events.Publisher
}

type controllers struct {
	health       *controller.HealthController
	course       *controller.CourseController
	progress     *controller.ProgressController
	achievement  *controller.AchievementController
	certificate  *controller.CertificateController
	analytics    *controller.AnalyticsController
	notification *controller.NotificationController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		catalog:     repository.NewCatalogRepository(db),
		progress:    repository.NewProgressRepository(db),
		statistics:  repository.NewStatisticsRepository(db),
		achievement: repository.NewAchievementRepository(db),
		certificate: repository.NewCertificateRepository(db),
		analytics:   repository.NewAnalyticsRepository(db),
	}
}

func (a *App) newLocker(cfg *config.Config, rdb *redis.Client) service.LearnerLocker {
	if cfg.Progress.LockBackend == util.LockBackendRedis && rdb != nil {
		logger.Log.Info("Using redis learner lock")
		return service.NewRedisLocker(rdb, cfg.Progress.LockTTL, cfg.Progress.LockWait)
	}
	return service.NewLocalLocker(cfg.Progress.LockWait)
}

func (a *App) newPublisher(cfg *config.Config) events.Publisher {
	publisher, err := events.NewAMQPPublisher(&cfg.Events)
	if err != nil {
		logger.Log.Error("Failed to connect event publisher, events are disabled", zap.Error(err))
		return events.NopPublisher{}
	}
	return publisher
}

func (a *App) initServices(repos *repositories, cfg *config.Config, db *gorm.DB, rdb *redis.Client) *services {
	s := &services{}

	s.storage = service.NewStorageService(&cfg.Storage)
	s.catalog = service.NewCatalogService(repos.catalog, rdb)
	s.achievement = service.NewAchievementService(repos.achievement)
	s.publisher = a.newPublisher(cfg)

	s.hub = service.NewNotificationHub(rdb)
	go s.hub.Run()

	locker := a.newLocker(cfg, rdb)

	s.progress = service.NewProgressService(
		db,
		s.catalog,
		repos.progress,
		repos.statistics,
		s.achievement,
		locker,
		s.hub,
		s.publisher,
		&cfg.Progress,
	)

	s.certificate = service.NewCertificateService(
		repos.certificate,
		repos.progress,
		s.catalog,
		s.storage,
		locker,
		s.hub,
		s.publisher,
	)

	s.analytics = service.NewAnalyticsService(repos.analytics, s.catalog)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		health:       controller.NewHealthController(db, rdb),
		course:       controller.NewCourseController(s.catalog),
		progress:     controller.NewProgressController(s.progress),
		achievement:  controller.NewAchievementController(s.achievement),
		certificate:  controller.NewCertificateController(s.certificate),
		analytics:    controller.NewAnalyticsController(s.analytics),
		notification: controller.NewNotificationController(s.hub),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())
	router.Use(security.RateLimiter(cfg.RateLimit.MaxRequests, time.Duration(cfg.RateLimit.WindowMinutes)*time.Minute))

	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// startBackgroundTasks schedules the statistics reconciliation when configured.
func (a *App) startBackgroundTasks(s *services, cfg *config.Config) {
	if cfg.Progress.ReconcileCron == "" {
		return
	}

	a.scheduler = cron.New(cron.WithLocation(cfg.Progress.Location()))
	_, err := a.scheduler.AddFunc(cfg.Progress.ReconcileCron, func() {
		start := time.Now()
		processed, failed, err := s.progress.ReconcileStatistics(context.Background())
		if err != nil {
			logger.Log.Error("Statistics reconciliation aborted", zap.Error(err))
			return
		}
		logger.Log.Info("Statistics reconciled",
			zap.Int("processed", processed),
			zap.Int("failed", failed),
			zap.Duration("took", time.Since(start)),
		)
	})
	if err != nil {
		logger.Log.Error("Invalid reconcile schedule", zap.String("spec", cfg.Progress.ReconcileCron), zap.Error(err))
		return
	}
	a.scheduler.Start()
	logger.Log.Info("Statistics reconciliation scheduled", zap.String("spec", cfg.Progress.ReconcileCron))
}

// watchConfig applies hot-reloadable settings. Everything else needs a restart.
func (a *App) watchConfig(ctx context.Context) {
	a.RegisterConfigCallback(func(cfg *config.Config) {
		logger.SetMode(cfg.Server.Mode)
		a.services.progress.UpdateSettings(service.SettingsFromConfig(&cfg.Progress))
	})

	err := configwatcher.Watch(ctx, filepath.Join(a.ConfigDir, "config.yaml"), func(cfg *config.Config) {
		for _, callback := range a.configCallbacks {
			callback(cfg)
		}
	})
	if err != nil {
		logger.Log.Warn("Config hot reload disabled", zap.Error(err))
	}
}

func NewApp(cfg *config.Config, configDir string) *App {
	logger.InitLogger(cfg)
	defer logger.Log.Sync()

	logger.Log.Info("Logger initialized successfully")

	db, err := database.Open(&cfg.Database)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// release deployments migrate explicitly with -migrate or -migrate-only
	if cfg.Server.Mode != "release" || cfg.ForceMigrate {
		if err := database.Migrate(db); err != nil {
			logger.Log.Fatal("Failed to migrate database", zap.Error(err))
		}
	}

	app := &App{
		Config:    cfg,
		ConfigDir: configDir,
		DB:        db,
	}

	if cfg.MigrateOnly {
		return app
	}

	if cfg.Server.Mode == "debug" {
		if err := database.SeedDemoCatalog(db); err != nil {
			logger.Log.Warn("Failed to seed demo catalog", zap.Error(err))
		}
	}

	if cfg.Redis.Enabled {
		rdb, err := database.InitRedis(&cfg.Redis)
		if err != nil {
			logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
		}
		app.Redis = rdb
	}

	repos := app.initRepositories(db)
	services := app.initServices(repos, cfg, db, app.Redis)
	app.services = services
	controllers := app.initControllers(services, db, app.Redis)

	monitoring.Init()

	gin.SetMode(cfg.Server.Mode)
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer("ethioheritage-progress", cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		app.tracer = tp
	}

	app.registerRoutes(router, controllers, cfg)

	if cfg.Storage.Type == util.StorageLocal {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	app.startBackgroundTasks(services, cfg)

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	watchCtx, stopWatch := context.WithCancel(context.Background())
	defer stopWatch()
	a.watchConfig(watchCtx)

	go func() {
		logger.Log.Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	// drop websocket clients before the listener so they do not hold Shutdown open
	if a.services != nil {
		a.services.hub.Stop()
	}
	if a.scheduler != nil {
		<-a.scheduler.Stop().Done()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("Server forced to shutdown", zap.Error(err))
	}

	if a.services != nil {
		if err := a.services.publisher.Close(); err != nil {
			logger.Log.Warn("Failed to close event publisher", zap.Error(err))
		}
	}
	if a.tracer != nil {
		if err := a.tracer.Shutdown(ctx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}

	logger.Log.Info("Server exiting")
}
