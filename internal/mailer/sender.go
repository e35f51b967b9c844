// Package mailer provides email sending functionality for the application.
// It supports both development mode (log-only) and production mode (SMTP).
package mailer

import (
	"fmt"
	"log/slog"
	"net/smtp"
	"os"
	"strconv"
)

// Sender defines the interface for sending emails
type Sender interface {
	SendReservationConfirmation(conf Confirmation) error
	SendEvent(event Event) error
}

// Config holds email configuration
type Config struct {
	Mode     string // "log" or "smtp"
	Host     string
	Port     int
	User     string
	Password string
	From     string
	FromName string
}

// NewConfig creates a new email configuration from environment variables
func NewConfig() *Config {
	port, _ := strconv.Atoi(os.Getenv("SMTP_PORT"))

	return &Config{
		Mode:     getEnvOrDefault("EMAIL_MODE", "log"),
		Host:     os.Getenv("SMTP_HOST"),
		Port:     port,
		User:     os.Getenv("SMTP_USER"),
		Password: os.Getenv("SMTP_PASSWORD"),
		From:     getEnvOrDefault("SMTP_FROM", "noreply@club-verse.example"),
		FromName: getEnvOrDefault("SMTP_FROM_NAME", "Club-Verse"),
	}
}

// NewSender creates a new email sender based on configuration
func NewSender(cfg *Config) Sender {
	if cfg.Mode == "smtp" {
		return &smtpSender{config: cfg}
	}
	return &logSender{}
}

// logSender logs emails instead of sending them (development mode)
type logSender struct{}

func (s *logSender) SendReservationConfirmation(conf Confirmation) error {
	slog.Info("[DEV] Reservation confirmation",
		"recipient", conf.Email,
		"club", conf.Club,
		"date", conf.Date,
		"time", conf.Time,
		"guests", conf.Guests)
	return nil
}

func (s *logSender) SendEvent(event Event) error {
	switch event.EventType {
	case EventTypeReservationConfirmation:
		conf, err := confirmationFromEvent(event)
		if err != nil {
			return err
		}
		return s.SendReservationConfirmation(conf)
	default:
		slog.Info("[DEV] Email event", "recipient", event.Recipient, "type", event.EventType)
		return nil
	}
}

// smtpSender sends emails via SMTP (production mode)
type smtpSender struct {
	config *Config
}

func (s *smtpSender) SendReservationConfirmation(conf Confirmation) error {
	subject := fmt.Sprintf("Your Table Reservation at %s", conf.Club)
	body := buildConfirmationBody(conf)

	message := fmt.Sprintf("From: %s <%s>\r\n", s.config.FromName, s.config.From)
	message += fmt.Sprintf("To: %s\r\n", conf.Email)
	message += fmt.Sprintf("Subject: %s\r\n", subject)
	message += "MIME-Version: 1.0\r\n"
	message += "Content-Type: text/html; charset=UTF-8\r\n"
	message += "\r\n"
	message += body

	auth := smtp.PlainAuth("", s.config.User, s.config.Password, s.config.Host)

	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	if err := smtp.SendMail(addr, auth, s.config.From, []string{conf.Email}, []byte(message)); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	slog.Info("Reservation confirmation sent via SMTP", "recipient", conf.Email, "club", conf.Club)
	return nil
}

func (s *smtpSender) SendEvent(event Event) error {
	switch event.EventType {
	case EventTypeReservationConfirmation:
		conf, err := confirmationFromEvent(event)
		if err != nil {
			return err
		}
		return s.SendReservationConfirmation(conf)
	default:
		return fmt.Errorf("unsupported email type: %s", event.EventType)
	}
}

func buildConfirmationBody(conf Confirmation) string {
	requests := conf.SpecialRequests
	if requests == "" {
		requests = "None"
	}

	return fmt.Sprintf(`<h2>Thank you for booking with Club-Verse!</h2>
<p>Hi %s,</p>
<p>Your reservation at <b>%s</b> is confirmed for <b>%s</b> at <b>%s</b> for <b>%d</b> guest(s).</p>
<p>Location: %s</p>
<p>Special Requests: %s</p>
<p>We look forward to hosting you!</p>
<br><small>This is an automated email. Please do not reply.</small>`,
		conf.Name, conf.Club, conf.Date, conf.Time, conf.Guests, conf.ClubLocation, requests)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
