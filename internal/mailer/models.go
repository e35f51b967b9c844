package mailer

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EventType represents the type of email to be sent
type EventType string

// EventTypeReservationConfirmation is sent after a booking is persisted
const EventTypeReservationConfirmation EventType = "reservation_confirmation"

// Event is an email event published to the event stream when the
// notification path runs through Kafka instead of sending directly.
type Event struct {
	// MessageID is a unique identifier (UUID v4) used for deduplication
	MessageID string `json:"message_id"`

	EventType EventType `json:"event_type"`

	Timestamp time.Time `json:"timestamp"`

	// Recipient is the email address to send to
	Recipient string `json:"recipient"`

	// Data carries the type-specific payload. For reservation confirmations
	// it is the Confirmation struct.
	Data map[string]any `json:"data"`
}

// Confirmation carries the details rendered into a reservation
// confirmation email.
type Confirmation struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Club            string `json:"club"`
	ClubLocation    string `json:"club_location"`
	Date            string `json:"date"`
	Time            string `json:"time"`
	Guests          int    `json:"guests"`
	SpecialRequests string `json:"special_requests"`
}

// NewConfirmationEvent builds a reservation confirmation event with a fresh
// message ID.
func NewConfirmationEvent(conf Confirmation) Event {
	return Event{
		MessageID: uuid.New().String(),
		EventType: EventTypeReservationConfirmation,
		Timestamp: time.Now(),
		Recipient: conf.Email,
		Data: map[string]any{
			"name":             conf.Name,
			"email":            conf.Email,
			"club":             conf.Club,
			"club_location":    conf.ClubLocation,
			"date":             conf.Date,
			"time":             conf.Time,
			"guests":           conf.Guests,
			"special_requests": conf.SpecialRequests,
		},
	}
}

// confirmationFromEvent decodes the event payload back into a Confirmation
func confirmationFromEvent(event Event) (Confirmation, error) {
	var conf Confirmation

	raw, err := json.Marshal(event.Data)
	if err != nil {
		return conf, fmt.Errorf("invalid confirmation payload: %w", err)
	}
	if err := json.Unmarshal(raw, &conf); err != nil {
		return conf, fmt.Errorf("invalid confirmation payload: %w", err)
	}

	if conf.Email == "" {
		conf.Email = event.Recipient
	}

	return conf, nil
}

// Metadata is stored in Redis for each processed event for deduplication
type Metadata struct {
	SentAt    time.Time `json:"sent_at"`
	Recipient string    `json:"recipient"`
	EventType EventType `json:"event_type"`
}
