package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shenikar/travel_safety_system/internal/ai"
	"github.com/shenikar/travel_safety_system/internal/config"
	"github.com/shenikar/travel_safety_system/internal/geocoding"
	v1 "github.com/shenikar/travel_safety_system/internal/handler/http/v1"
	"github.com/shenikar/travel_safety_system/internal/repository"
	"github.com/shenikar/travel_safety_system/internal/repository/memory"
	"github.com/shenikar/travel_safety_system/internal/service"
	"github.com/shenikar/travel_safety_system/internal/storage"
	"github.com/shenikar/travel_safety_system/internal/webhook"
	"github.com/shenikar/travel_safety_system/pkg/logger"
	"github.com/shenikar/travel_safety_system/pkg/postgres"
	redisclient "github.com/shenikar/travel_safety_system/pkg/redis"
	"github.com/sirupsen/logrus"

	_ "github.com/shenikar/travel_safety_system/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title Travel Safety System API
// @version 1.0
// @description Incident reports, route safety analysis and travel assistant for travelers.
// @host localhost:5000
// @BasePath /api
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key
func runMigrations(cfg *config.Config, log *logrus.Logger) error {
	log.Info("Running database migrations...")

	migrationURL := cfg.DatabaseURL
	if !strings.HasPrefix(migrationURL, "pgx5://") {
		migrationURL = strings.Replace(migrationURL, "postgres://", "pgx5://", 1)
	}

	m, err := migrate.New(
		"file://migrations",
		migrationURL,
	)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Info("Database migrations applied successfully")
	return nil
}

// repositories - набор хранилищ, выбранный STORAGE_DRIVER
type repositories struct {
	incidents service.IncidentRepository
	crimes    service.CrimeRepository
	alerts    service.WeatherAlertRepository
	trips     service.TripRepository
}

func postgresRepositories(db *pgxpool.Pool) repositories {
	return repositories{
		incidents: repository.NewIncidentRepository(db),
		crimes:    repository.NewCrimeRepository(db),
		alerts:    repository.NewWeatherAlertRepository(db),
		trips:     repository.NewTripRepository(db),
	}
}

func memoryRepositories() repositories {
	return repositories{
		incidents: memory.NewIncidentRepository(),
		crimes:    memory.NewCrimeRepository(),
		alerts:    memory.NewWeatherAlertRepository(),
		trips:     memory.NewTripRepository(),
	}
}

// corsConfig разрешает фронтенд из FRONTEND_URL, либо любой источник без cookies
func corsConfig(cfg *config.Config) cors.Config {
	corsCfg := cors.DefaultConfig()
	corsCfg.AllowMethods = []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete}
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization", "X-API-Key")
	if cfg.FrontendURL != "" {
		corsCfg.AllowOrigins = []string{cfg.FrontendURL}
		corsCfg.AllowCredentials = true
	} else {
		corsCfg.AllowAllOrigins = true
	}
	return corsCfg
}

func main() {
	// Загрузка конфигурации
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	// Инициализация логгера
	log := logger.New(cfg.LogLevel, cfg.LogFile)

	// Контекст для graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var repos repositories
	switch cfg.StorageDriver {
	case config.StorageDriverPostgres:
		// Запуск миграций
		if err := runMigrations(cfg, log); err != nil {
			log.Fatalf("Failed to run database migrations: %v", err)
		}

		// Подключение к PostgreSQL
		dbpool, err := postgres.NewPostgresDB(ctx, cfg)
		if err != nil {
			log.Fatalf("Failed to connect to PostgreSQL: %v", err)
		}
		defer dbpool.Close()
		log.Info("Successfully connected to PostgreSQL")
		repos = postgresRepositories(dbpool)
	default:
		log.Warn("Using in-memory storage, data will be lost on restart")
		repos = memoryRepositories()
	}

	// Инициализация Redis клиента
	redisClient, err := redisclient.NewRedisClient(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()
	log.Info("Successfully connected to Redis")

	// Инициализация издателя вебхуков
	webhookPublisher := webhook.NewRedisWebhookPublisher(redisClient)

	// Инициализация и запуск воркера вебхуков
	webhookWorker := webhook.NewWebhookWorker(redisClient, log, cfg)
	webhookWorker.Start(ctx)

	// Внешние клиенты
	geocoder := geocoding.NewNominatimGeocoder(geocoding.Options{
		BaseURL:   cfg.NominatimURL,
		UserAgent: cfg.NominatimUserAgent,
		CacheTTL:  cfg.GeocodeCacheTTL,
	}, redisClient, log)
	gemini, err := ai.NewGeminiClient(ctx, ai.Options{
		APIKey:  cfg.GeminiAPIKey,
		Model:   cfg.GeminiModel,
		BaseURL: cfg.GeminiBaseURL,
		Timeout: cfg.GeminiTimeout,
	})
	if err != nil {
		log.Fatalf("Failed to create Gemini client: %v", err)
	}
	if cfg.GeminiAPIKey == "" {
		log.Warn("GEMINI_API_KEY is not set, travel assistant endpoints will fail")
	}

	images, err := storage.NewLocalStore(cfg.UploadDir)
	if err != nil {
		log.Fatalf("Failed to prepare upload directory: %v", err)
	}

	// Инициализация сервисов
	incidentService := service.NewIncidentService(repos.incidents, repository.NewIncidentCache(redisClient), webhookPublisher, log)
	analyzerService := service.NewAnalyzerService(geocoder, repos.crimes, repos.incidents, repos.alerts, repos.trips, cfg.AnalyzeRadiusDegrees, log)
	assistantService := service.NewAssistantService(gemini, log)
	adminService := service.NewAdminService(repos.incidents, repos.crimes, repos.alerts, repos.trips, log, cfg)

	// Инициализация хэндлеров
	handler := v1.NewHandler(incidentService, analyzerService, assistantService, adminService, images, log, cfg)

	// Настройка Gin роутера
	router := gin.Default()
	router.MaxMultipartMemory = int64(cfg.MaxUploadMB) << 20
	router.Use(cors.New(corsConfig(cfg)))
	router.Static("/uploads", cfg.UploadDir)

	api := router.Group("/api")
	handler.RegisterRoutes(api)

	// Добавление маршрута для Swagger UI
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Запуск HTTP-сервера
	serverAddr := fmt.Sprintf(":%s", cfg.HTTPPort)

	srv := &http.Server{
		Addr:              serverAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Запуск сервера в горутине
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Error starting HTTP server: %v", err)
		}
	}()
	log.Infof("HTTP server started on port %s", cfg.HTTPPort)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Received shutdown signal, shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("Server forced to shutdown: %v", err)
	}
	cancel()

	log.Info("Server gracefully stopped")
}
