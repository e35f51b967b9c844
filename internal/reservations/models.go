package reservations

import "time"

// Reservation is a persisted table booking. Email is a free-text contact
// field, not a reference to a registered user; visitors can book without an
// account. There is no conflict constraint: multiple reservations for the
// same club and slot are allowed.
type Reservation struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	Phone           string    `json:"phone"`
	Date            string    `json:"date"`
	Time            string    `json:"time"`
	Guests          int       `json:"guests"`
	SpecialRequests string    `json:"special_requests,omitempty"`
	Club            string    `json:"club"`
	ClubLocation    string    `json:"club_location,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// CreateReservationRequest is the booking submission payload. The six
// required fields must all be present for the request to be accepted.
// Email is presence-checked only; it is a free-text contact field.
type CreateReservationRequest struct {
	Name            string `json:"name" binding:"required"`
	Email           string `json:"email" binding:"required"`
	Phone           string `json:"phone" binding:"required"`
	Date            string `json:"date" binding:"required"`
	Time            string `json:"time" binding:"required"`
	Guests          int    `json:"guests" binding:"required,min=1"`
	SpecialRequests string `json:"specialRequests"`
	Club            string `json:"club" binding:"required"`
	ClubLocation    string `json:"clubLocation"`
}
