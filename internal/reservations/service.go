// Package reservations implements the booking intake: validate a submission,
// persist it, and dispatch a best-effort confirmation email. The notification
// outcome never affects the booking result.
package reservations

import (
	"context"
	"log/slog"

	"clubverse/internal/mailer"
)

// Publisher publishes confirmation events to the event stream
type Publisher interface {
	PublishEvent(topic string, event any) error
}

// Service defines the reservations service interface
type Service interface {
	Book(ctx context.Context, req CreateReservationRequest) (*Reservation, error)
	Get(ctx context.Context, id string) (*Reservation, error)
	List(ctx context.Context, page, pageSize int) ([]Reservation, int64, error)
}

type service struct {
	repo      Repository
	sender    mailer.Sender
	publisher Publisher
	topic     string
}

// NewService creates a reservations service that sends confirmations directly
func NewService(repo Repository, sender mailer.Sender) Service {
	return &service{
		repo:   repo,
		sender: sender,
	}
}

// NewServiceWithPublisher creates a reservations service that publishes
// confirmation events to Kafka instead of sending directly. The notifier
// service consumes them.
func NewServiceWithPublisher(repo Repository, sender mailer.Sender, publisher Publisher, topic string) Service {
	return &service{
		repo:      repo,
		sender:    sender,
		publisher: publisher,
		topic:     topic,
	}
}

// Book persists a validated reservation and fires the confirmation dispatch.
// The dispatch runs in its own goroutine; its failure is logged and nothing
// else — the booking has already been persisted and is reported successful.
func (s *service) Book(ctx context.Context, req CreateReservationRequest) (*Reservation, error) {
	res, err := s.repo.Create(ctx, req)
	if err != nil {
		return nil, err
	}

	slog.Info("Reservation created",
		"reservation_id", res.ID,
		"club", res.Club,
		"date", res.Date,
		"guests", res.Guests)

	go s.dispatchConfirmation(res)

	return res, nil
}

// Get retrieves a reservation by ID
func (s *service) Get(ctx context.Context, id string) (*Reservation, error) {
	return s.repo.GetByID(ctx, id)
}

// List retrieves reservations with pagination
func (s *service) List(ctx context.Context, page, pageSize int) ([]Reservation, int64, error) {
	return s.repo.List(ctx, page, pageSize)
}

// dispatchConfirmation sends the confirmation email, or publishes an event
// for the notifier service when a publisher is configured. Errors are logged
// and swallowed.
func (s *service) dispatchConfirmation(res *Reservation) {
	conf := mailer.Confirmation{
		Name:            res.Name,
		Email:           res.Email,
		Club:            res.Club,
		ClubLocation:    res.ClubLocation,
		Date:            res.Date,
		Time:            res.Time,
		Guests:          res.Guests,
		SpecialRequests: res.SpecialRequests,
	}

	if s.publisher != nil {
		event := mailer.NewConfirmationEvent(conf)
		if err := s.publisher.PublishEvent(s.topic, event); err == nil {
			return
		} else {
			slog.Error("Failed to publish confirmation event, falling back to direct send",
				"reservation_id", res.ID,
				"error", err)
		}
	}

	if err := s.sender.SendReservationConfirmation(conf); err != nil {
		slog.Error("Failed to send reservation confirmation",
			"reservation_id", res.ID,
			"recipient", res.Email,
			"error", err)
	}
}
