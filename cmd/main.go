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

	"whereiscurtis/internal/clients"
	"whereiscurtis/internal/config"
	"whereiscurtis/internal/handlers"
	"whereiscurtis/internal/mailer"
	"whereiscurtis/internal/middleware"
	"whereiscurtis/internal/repository"
	"whereiscurtis/internal/service"
	"whereiscurtis/internal/worker"
	"whereiscurtis/pkg/database"
	"whereiscurtis/pkg/redis"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"golang.org/x/time/rate"
)

func main() {
	// Загрузка .env
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	log.Println("=== Where is Curtis Backend Starting ===")

	// Загрузка конфигурации
	cfg := config.Load()

	// Подключение к PostgreSQL
	db, err := database.Connect(database.Config{
		Host:     cfg.DB.Host,
		Port:     cfg.DB.Port,
		User:     cfg.DB.User,
		Password: cfg.DB.Password,
		DBName:   cfg.DB.DBName,
		SSLMode:  cfg.DB.SSLMode,
	})
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	}()

	// Подключение к Redis
	redisClient, err := redis.Connect(redis.Config{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}
	defer redisClient.Close()

	// Автомиграция моделей
	if err := database.Migrate(db); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// Часовой пояс для суточного гейта бэкапа
	backupLocation, err := time.LoadLocation(cfg.Backup.Timezone)
	if err != nil {
		log.Fatal("Failed to load backup timezone:", err)
	}

	// Инициализация репозиториев
	eventRepo := repository.NewEventRepository(db)
	apiRequestRepo := repository.NewAPIRequestRepository(db)
	backupRepo := repository.NewBackupRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient)

	spotClient := clients.NewSpotClient(clients.SpotConfig{
		BaseURL: cfg.Spot.BaseURL,
		FeedID:  cfg.Spot.FeedID,
	})

	smtpMailer := mailer.NewSMTPMailer(mailer.SMTPConfig{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		User:     cfg.SMTP.User,
		Password: cfg.SMTP.Password,
	})

	// Инициализация сервисов
	feedService := service.NewFeedService(eventRepo, apiRequestRepo, cacheRepo, spotClient, service.FeedConfig{
		FreshnessWindow: cfg.Spot.FreshnessWindow,
	})
	backupService := service.NewBackupService(backupRepo, spotClient, smtpMailer, service.BackupConfig{
		Recipients:      cfg.Backup.Recipients,
		Location:        backupLocation,
		WindowStartHour: cfg.Backup.WindowStartHour,
		WindowEndHour:   cfg.Backup.WindowEndHour,
	})
	exportService := service.NewExportService(eventRepo)

	// Инициализация воркеров (фоновые задачи)
	scheduler := worker.NewScheduler()

	if cfg.Workers.BackupEnabled {
		scheduler.AddWorker(worker.NewBackupWorker(backupService, cfg.Workers.BackupInterval))
		log.Printf("Backup Worker enabled (interval: %v)", cfg.Workers.BackupInterval)
	}

	if cfg.Workers.FeedEnabled {
		scheduler.AddWorker(worker.NewFeedWorker(feedService, cfg.Workers.FeedInterval))
		log.Printf("Feed Worker enabled (interval: %v)", cfg.Workers.FeedInterval)
	}

	// Запускаем воркеры в фоне
	go scheduler.Start()
	defer scheduler.Stop()

	// Инициализация Gin
	if cfg.App.Debug {
		gin.SetMode(gin.DebugMode)
		log.Println("Running in DEBUG mode")
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()

	// CORS для фронтенда с картой
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", cfg.App.FrontendURL},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Rate limiting (только для продакшена)
	if !cfg.App.Debug {
		limiter := rate.NewLimiter(rate.Limit(cfg.RateLimit.RequestsPerSecond), cfg.RateLimit.Burst)
		r.Use(middleware.RateLimitMiddleware(limiter))
		log.Printf("Rate limiting enabled: %d req/sec, burst: %d",
			cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	}

	feedHandler := handlers.NewFeedHandler(feedService)
	backupHandler := handlers.NewBackupHandler(backupService)
	downloadHandler := handlers.NewDownloadHandler(exportService)
	debugHandler := handlers.NewDebugHandler(feedService, cacheRepo, db, cfg.Debug.Password)

	// Группа API v1
	api := r.Group("/api/v1")

	// 1. Сообщения трекера (свежие или из кэша)
	api.GET("/messages", feedHandler.GetMessages)

	// 2. Ручной тик бэкапа
	api.GET("/backup/run", backupHandler.RunBackup)

	// 3. Выгрузка истории файлом
	api.GET("/download", downloadHandler.Download)

	// 4. Дебаг: replay, сброс базы, ручной импорт
	api.GET("/debug", debugHandler.Handle)
	api.POST("/debug", debugHandler.Upload)

	// 5. Health check
	api.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":    "ok",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"services": gin.H{
				"database": "connected",
				"redis":    "connected",
				"spot_api": "enabled",
			},
		})
	})

	// 6. Системная статистика
	api.GET("/system/stats", func(c *gin.Context) {
		ctx := c.Request.Context()

		redisStats, _ := redis.GetStats(redisClient)
		eventCount, _ := eventRepo.Count(ctx)
		apiRequestCount, _ := apiRequestRepo.Count(ctx)

		c.JSON(200, gin.H{
			"database": gin.H{
				"events":       eventCount,
				"api_requests": apiRequestCount,
			},
			"redis": redisStats,
			"workers": gin.H{
				"feed_enabled":   cfg.Workers.FeedEnabled,
				"backup_enabled": cfg.Workers.BackupEnabled,
			},
		})
	})

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	server := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on http://localhost:%s", cfg.App.Port)
		log.Printf("API available at http://localhost:%s/api/v1", cfg.App.Port)

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server failed to start:", err)
		}
	}()

	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited properly")
}
