package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"clubverse/internal/config"
	"clubverse/internal/database"
	"clubverse/internal/kafka"
	"clubverse/internal/logger"
	"clubverse/internal/mailer"
	"clubverse/internal/ratelimit"
	"clubverse/internal/reservations"
	"clubverse/internal/server"
	"clubverse/internal/storage"
	"clubverse/internal/token"
	"clubverse/internal/users"

	_ "github.com/joho/godotenv/autoload"
	"github.com/redis/go-redis/v9"
)

func main() {
	lgr := logger.New()
	logger.SetDefault(lgr)
	lgr.Info("Starting Club-Verse server...")

	if err := config.ValidateJWTSecret(); err != nil {
		lgr.Error("Configuration error", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	// Database
	db := database.New()
	defer db.Close()

	if err := database.EnsureSchema(ctx, db); err != nil {
		lgr.Error("Failed to apply database schema", "error", err)
		os.Exit(1)
	}
	lgr.Info("Database ready")

	// Session tokens
	tokens := token.NewService([]byte(os.Getenv("JWT_SECRET")))

	// Redis backs the rate limiter; the server runs without it
	var limiter *ratelimit.Limiter
	if redisAddr := os.Getenv("REDIS_ADDR"); redisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     redisAddr,
			Password: os.Getenv("REDIS_PASSWORD"),
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			lgr.Warn("Redis unreachable, rate limiting disabled", "error", err)
		} else {
			limiter = ratelimit.New(ratelimit.NewRedisStore(redisClient))
			lgr.Info("Rate limiter initialized", "redis", redisAddr)
		}
	} else {
		lgr.Warn("REDIS_ADDR not set, rate limiting disabled")
	}

	// Object storage for club media is optional
	var mediaStore storage.Service
	if os.Getenv("S3_ENDPOINT") != "" {
		store, err := storage.New(ctx)
		if err != nil {
			lgr.Warn("Media storage unavailable", "error", err)
		} else {
			mediaStore = store
			lgr.Info("Media storage initialized")
		}
	}

	// Email sender for reservation confirmations
	mailConfig := mailer.NewConfig()
	sender := mailer.NewSender(mailConfig)
	lgr.Info("Email sender initialized", "mode", mailConfig.Mode)

	// Users
	userRepo := users.NewRepository(db)
	userService := users.NewService(userRepo)

	// Reservations, with Kafka-backed confirmations when brokers are configured
	reservationRepo := reservations.NewRepository(db)
	var reservationService reservations.Service
	if os.Getenv("KAFKA_BROKERS") != "" {
		kafkaConfig, err := kafka.LoadConfig()
		if err != nil {
			lgr.Error("Invalid Kafka configuration", "error", err)
			os.Exit(1)
		}
		producer, err := kafka.NewProducer(kafkaConfig, lgr)
		if err != nil {
			lgr.Error("Failed to create Kafka producer", "error", err)
			os.Exit(1)
		}
		defer producer.Close()

		reservationService = reservations.NewServiceWithPublisher(
			reservationRepo, sender, producer, kafkaConfig.ConfirmationsTopic)
		lgr.Info("Confirmation events routed through Kafka",
			"brokers", kafkaConfig.Brokers,
			"topic", kafkaConfig.ConfirmationsTopic)
	} else {
		reservationService = reservations.NewService(reservationRepo, sender)
		lgr.Info("Confirmation emails sent directly")
	}

	srv := server.New(server.Options{
		DB:           db,
		Tokens:       tokens,
		Users:        userService,
		Reservations: reservationService,
		Storage:      mediaStore,
		Limiter:      limiter,
	})

	cfg := server.LoadConfigFromEnv()
	httpServer := server.NewHTTPServer(cfg, srv)

	go func() {
		lgr.Info("HTTP server started", "port", cfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			lgr.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	lgr.Info("Shutting down Club-Verse server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		lgr.Error("HTTP server forced to shutdown", "error", err)
	}

	lgr.Info("Club-Verse server stopped")
}
