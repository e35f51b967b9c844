package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"clubverse/internal/logger"
	"clubverse/internal/mailer"

	"github.com/gin-gonic/gin"
	_ "github.com/joho/godotenv/autoload"
	"github.com/redis/go-redis/v9"
)

func main() {
	lgr := logger.New()
	logger.SetDefault(lgr)
	lgr.Info("Starting notifier service...")

	port := getEnv("NOTIFIER_PORT", "8085")
	redisAddr := getEnv("REDIS_ADDR", "localhost:6379")
	redisPassword := os.Getenv("REDIS_PASSWORD")

	kafkaBrokers := os.Getenv("KAFKA_BROKERS")
	if kafkaBrokers == "" {
		lgr.Error("KAFKA_BROKERS environment variable is required")
		os.Exit(1)
	}
	kafkaTopic := getEnv("KAFKA_TOPIC_CONFIRMATIONS", "reservation-confirmations")
	kafkaDLQTopic := getEnv("KAFKA_TOPIC_CONFIRMATIONS_DLQ", "reservation-confirmations-dlq")
	kafkaConsumerGroup := getEnv("KAFKA_CONSUMER_GROUP", "notifier-service-group")

	lgr.Info("Configuration loaded",
		"port", port,
		"redis", redisAddr,
		"kafka", kafkaBrokers,
		"topic", kafkaTopic)

	// Redis backs the idempotency store so redeliveries don't resend emails
	redisClient := redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		Password: redisPassword,
	})

	ctx := context.Background()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		lgr.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	lgr.Info("Connected to Redis")

	idempotencyStore := mailer.NewIdempotencyStore(redisClient, lgr)

	mailConfig := mailer.NewConfig()
	sender := mailer.NewSender(mailConfig)
	lgr.Info("Email sender initialized", "mode", mailConfig.Mode)

	consumerConfig := &mailer.ConsumerConfig{
		Brokers:       kafkaBrokers,
		Topic:         kafkaTopic,
		DLQTopic:      kafkaDLQTopic,
		ConsumerGroup: kafkaConsumerGroup,
		MaxRetries:    3,
	}

	consumer, err := mailer.NewConsumer(consumerConfig, sender, idempotencyStore, lgr)
	if err != nil {
		lgr.Error("Failed to create Kafka consumer", "error", err)
		os.Exit(1)
	}
	defer consumer.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		lgr.Info("Starting Kafka consumer...")
		if err := consumer.Start(ctx); err != nil {
			lgr.Error("Consumer error", "error", err)
		}
	}()

	// Health endpoint only
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.GET("/health", func(c *gin.Context) {
		health := gin.H{"status": "up"}
		if err := redisClient.Ping(c.Request.Context()).Err(); err != nil {
			health["status"] = "degraded"
			health["redis"] = err.Error()
		}
		c.JSON(http.StatusOK, health)
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", port),
		Handler: r,
	}

	go func() {
		lgr.Info("HTTP server started", "port", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			lgr.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	lgr.Info("Shutting down notifier service...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		lgr.Error("HTTP server forced to shutdown", "error", err)
	}

	lgr.Info("Notifier service stopped")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
