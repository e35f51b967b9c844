package mailer

import (
	"strings"
	"testing"
)

func sampleConfirmation() Confirmation {
	return Confirmation{
		Name:            "Bob",
		Email:           "bob@example.com",
		Club:            "BREWESTATE",
		ClubLocation:    "Chandigarh",
		Date:            "2026-09-12",
		Time:            "21:00",
		Guests:          4,
		SpecialRequests: "Window table",
	}
}

func TestNewConfirmationEvent(t *testing.T) {
	event := NewConfirmationEvent(sampleConfirmation())

	if event.MessageID == "" {
		t.Error("Expected a generated message ID")
	}
	if event.EventType != EventTypeReservationConfirmation {
		t.Errorf("Expected confirmation event type, got %s", event.EventType)
	}
	if event.Recipient != "bob@example.com" {
		t.Errorf("Expected recipient to match booking email, got %s", event.Recipient)
	}

	// Two events for the same booking must not share a message ID
	other := NewConfirmationEvent(sampleConfirmation())
	if other.MessageID == event.MessageID {
		t.Error("Message IDs must be unique per event")
	}
}

func TestConfirmationFromEvent(t *testing.T) {
	event := NewConfirmationEvent(sampleConfirmation())

	conf, err := confirmationFromEvent(event)
	if err != nil {
		t.Fatalf("Failed to decode confirmation: %v", err)
	}
	if conf != sampleConfirmation() {
		t.Errorf("Decoded confirmation does not match: %+v", conf)
	}
}

func TestConfirmationFromEvent_FallsBackToRecipient(t *testing.T) {
	event := Event{
		EventType: EventTypeReservationConfirmation,
		Recipient: "bob@example.com",
		Data:      map[string]any{"name": "Bob", "club": "MOBE"},
	}

	conf, err := confirmationFromEvent(event)
	if err != nil {
		t.Fatalf("Failed to decode confirmation: %v", err)
	}
	if conf.Email != "bob@example.com" {
		t.Errorf("Expected recipient fallback, got %q", conf.Email)
	}
}

func TestBuildConfirmationBody(t *testing.T) {
	body := buildConfirmationBody(sampleConfirmation())

	for _, want := range []string{
		"Thank you for booking with Club-Verse!",
		"Bob", "BREWESTATE", "2026-09-12", "21:00", "Chandigarh", "Window table",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("Expected body to contain %q", want)
		}
	}
}

func TestBuildConfirmationBody_NoSpecialRequests(t *testing.T) {
	conf := sampleConfirmation()
	conf.SpecialRequests = ""

	if body := buildConfirmationBody(conf); !strings.Contains(body, "Special Requests: None") {
		t.Error("Expected empty special requests to render as None")
	}
}

func TestLogSenderHandlesConfirmationEvent(t *testing.T) {
	sender := &logSender{}

	if err := sender.SendEvent(NewConfirmationEvent(sampleConfirmation())); err != nil {
		t.Fatalf("Expected log sender to accept confirmation event, got %v", err)
	}
}
