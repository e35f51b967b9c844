// Package server wires the HTTP surface of the application: routing, the
// auth gate, security headers, rate limiting and request logging.
package server

import (
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"clubverse/internal/database"
	"clubverse/internal/ratelimit"
	"clubverse/internal/reservations"
	"clubverse/internal/storage"
	"clubverse/internal/token"
	"clubverse/internal/users"
)

// Server holds the dependencies for the HTTP server
type Server struct {
	db      database.Service
	tokens  *token.Service
	users   users.Service
	storage storage.Service
	limiter *ratelimit.Limiter

	usersHandler        *users.Handler
	reservationsHandler *reservations.Handler
}

// Options carries the collaborators a Server needs. Storage and limiter are
// optional; routes depending on them degrade gracefully when absent.
type Options struct {
	DB           database.Service
	Tokens       *token.Service
	Users        users.Service
	Reservations reservations.Service
	Storage      storage.Service
	Limiter      *ratelimit.Limiter
}

// New creates a Server from its collaborators
func New(opts Options) *Server {
	return &Server{
		db:                  opts.DB,
		tokens:              opts.Tokens,
		users:               opts.Users,
		storage:             opts.Storage,
		limiter:             opts.Limiter,
		usersHandler:        users.NewHandler(opts.Users, opts.Tokens),
		reservationsHandler: reservations.NewHandler(opts.Reservations),
	}
}

// Config holds HTTP server configuration
type Config struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// LoadConfigFromEnv loads server configuration from environment variables
func LoadConfigFromEnv() *Config {
	port, _ := strconv.Atoi(getEnv("PORT", "8080"))

	return &Config{
		Port:         port,
		ReadTimeout:  getEnvDuration("SERVER_READ_TIMEOUT", 15*time.Second),
		WriteTimeout: getEnvDuration("SERVER_WRITE_TIMEOUT", 60*time.Second),
		IdleTimeout:  getEnvDuration("SERVER_IDLE_TIMEOUT", 120*time.Second),
	}
}

// NewHTTPServer wraps the Server in a tuned http.Server
func NewHTTPServer(cfg *Config, s *Server) *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           s.RegisterRoutes(),
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
