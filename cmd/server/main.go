// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"shortlink/internal/cache"
	"shortlink/internal/config"
	"shortlink/internal/handler"
	postgresRepo "shortlink/internal/repository/postgres"
	"shortlink/internal/service"
	"shortlink/pkg/logger"
)

func main() {
	// Health check for Docker: probe the running server
	if len(os.Args) > 1 && os.Args[1] == "healthcheck" {
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "8081"
		}
		client := &http.Client{Timeout: 3 * time.Second}
		resp, err := client.Get(fmt.Sprintf("http://localhost:%s/health", port))
		if err != nil {
			os.Exit(1)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			os.Exit(1)
		}
		os.Exit(0)
	}

	// Load environment variables from .env file (development only)
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	appLogger := logger.NewLogger()
	defer appLogger.Sync()
	appLogger.Info("Starting URL Shortener Service")

	cfg, err := config.LoadConfig()
	if err != nil {
		appLogger.Fatalw("Failed to load configuration", "error", err)
	}

	db, err := initDatabase(cfg, appLogger)
	if err != nil {
		appLogger.Fatalw("Failed to initialize database", "error", err)
	}

	if err := postgresRepo.Migrate(db); err != nil {
		appLogger.Fatalw("Failed to run migrations", "error", err)
	}

	// The service runs without a cache if Redis is disabled or unreachable
	var redisCache cache.Cache
	if cfg.RedisEnabled {
		redisCache, err = cache.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			appLogger.Warnw("Failed to initialize Redis cache, continuing without cache", "error", err)
			redisCache = nil
		}
	}

	urlRepo := postgresRepo.NewURLRepository(db)
	accessLogRepo := postgresRepo.NewAccessLogRepository(db)

	urlService := service.NewURLService(urlRepo, accessLogRepo, redisCache, cfg, appLogger)
	analyticsService := service.NewAnalyticsService(urlRepo, accessLogRepo, redisCache, cfg, appLogger)

	sqlDB, err := db.DB()
	if err != nil {
		appLogger.Fatalw("Failed to get database instance", "error", err)
	}

	httpLogger := appLogger.WithFields(map[string]interface{}{"component": "http"})

	router := handler.NewRouter(
		handler.NewURLHandler(urlService, analyticsService, httpLogger),
		handler.NewHealthHandler(sqlDB, redisCache),
		cfg,
		httpLogger,
	)

	srv := &http.Server{
		Addr:           fmt.Sprintf(":%s", cfg.ServerPort),
		Handler:        router,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   15 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20, // 1 MB
	}

	go func() {
		appLogger.Infow("Server starting", "port", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatalw("Failed to start server", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Errorw("Server forced to shutdown", "error", err)
	}

	if redisCache != nil {
		if err := redisCache.Close(); err != nil {
			appLogger.Errorw("Error closing Redis connection", "error", err)
		}
	}

	if err := sqlDB.Close(); err != nil {
		appLogger.Errorw("Error closing database connection", "error", err)
	}

	appLogger.Info("Server exited successfully")
}

// initDatabase opens PostgreSQL with retries and configures the connection pool
func initDatabase(cfg *config.Config, log *logger.Logger) (*gorm.DB, error) {
	gormLogger := gormlogger.New(
		log.GormWriter(),
		gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	var db *gorm.DB
	var err error

	const maxRetries = 5
	for i := 0; i < maxRetries; i++ {
		db, err = gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
			Logger:                 gormLogger,
			SkipDefaultTransaction: true,
			PrepareStmt:            true,
			TranslateError:         true,
		})
		if err == nil {
			break
		}

		log.Warnw("Failed to connect to database, retrying...", "attempt", i+1, "error", err)
		time.Sleep(5 * time.Second)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", maxRetries, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info("Database connection established successfully")
	return db, nil
}
