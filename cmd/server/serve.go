package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"gorm.io/gorm"

	"github.com/staynest/service-booking/internal/application"
	"github.com/staynest/service-booking/internal/cache"
	"github.com/staynest/service-booking/internal/config"
	bookingEvents "github.com/staynest/service-booking/internal/events"
	"github.com/staynest/service-booking/internal/handler"
	"github.com/staynest/service-booking/internal/repository"
	"github.com/staynest/service-booking/pkg/auth"
	"github.com/staynest/service-booking/pkg/database"
	"github.com/staynest/service-booking/pkg/health"
	"github.com/staynest/service-booking/pkg/kafka"
	"github.com/staynest/service-booking/pkg/middleware"
)

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting "+serviceName, zap.String("port", cfg.Port), zap.String("env", cfg.AppEnv))

	dbConfig := postgresConfig(cfg)
	db, err := database.Connect(dbConfig, log)
	if err != nil {
		return err
	}

	if err := migrateSchema(cfg, dbConfig, db, log); err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	jwtManager := auth.NewJWTManager(cfg.JWTConfig.Secret, cfg.JWTConfig.AccessTTL)

	var producer application.EventPublisher
	if cfg.KafkaConfig.Enabled() {
		kafkaProducer := kafka.NewProducer(cfg.KafkaConfig.Brokers, log)
		defer func() { _ = kafkaProducer.Close() }()
		producer = kafkaProducer
	} else {
		log.Warn("no kafka brokers configured, booking events will be dropped")
		producer = kafka.NewDiscardPublisher(log)
	}

	var calendar application.CalendarCache
	if cfg.CacheConfig.RedisURL != "" {
		redisCache, err := cache.NewRedisCalendarCache(ctx, cfg.CacheConfig.RedisURL, cfg.CacheConfig.CalendarTTL, log)
		if err != nil {
			return err
		}
		defer func() { _ = redisCache.Close() }()
		calendar = redisCache
	} else {
		calendar = cache.NewMemoryCalendarCache(cfg.CacheConfig.CalendarTTL)
	}

	bookingRepo := repository.NewGormBookingRepository(db)
	propertyRepo := repository.NewGormPropertyRepository(db)

	bookingService := application.NewBookingService(
		repository.NewGormTransactor(db),
		bookingRepo,
		propertyRepo,
		calendar,
		producer,
		log,
	)
	propertyService := application.NewPropertyService(propertyRepo, log)

	if cfg.KafkaConfig.Enabled() {
		groupID := cfg.KafkaConfig.GroupPrefix + "booking-service"
		propertyConsumer := bookingEvents.NewPropertyEventConsumer(cfg.KafkaConfig.Brokers, groupID, propertyService, log)
		defer func() { _ = propertyConsumer.Close() }()

		go func() {
			log.Info("starting property event consumer", zap.String("group_id", groupID))
			if err := propertyConsumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("property event consumer error", zap.Error(err))
			}
		}()
	}

	if cfg.AppEnv != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(middleware.RecoveryMiddleware(log))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggerMiddleware(log))
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())

	health.NewHandler(db, serviceName).RegisterRoutes(router)

	createLimit := middleware.RateLimit(rate.Limit(cfg.RateLimitConfig.RequestsPerSecond), cfg.RateLimitConfig.Burst)
	handler.NewBookingHandler(bookingService).RegisterRoutes(&router.RouterGroup, jwtManager, createLimit)
	handler.NewAdminBookingHandler(bookingService).RegisterRoutes(&router.RouterGroup, jwtManager)
	handler.NewPropertyHandler(propertyService).RegisterRoutes(&router.RouterGroup, jwtManager)

	srv := &http.Server{
		Addr:         cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("HTTP server starting", zap.String("addr", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}

	log.Info("shutting down " + serviceName)
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server forced shutdown", zap.Error(err))
	}

	log.Info(serviceName + " stopped")
	return nil
}

// migrateSchema auto-migrates in development and applies the SQL migrations
// everywhere else.
func migrateSchema(cfg *config.ServiceConfig, dbConfig database.PostgresConfig, db *gorm.DB, log *zap.Logger) error {
	if cfg.AppEnv == "development" {
		if err := repository.AutoMigrate(db); err != nil {
			return err
		}
		log.Info("database migration completed (dev auto-migrate)")
		return nil
	}
	return database.RunMigrations(dbConfig.DatabaseURL(), cfg.MigrationsDir, log)
}
