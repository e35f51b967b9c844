package reservations

import (
	"context"
	"errors"
	"fmt"

	"clubverse/internal/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ErrReservationNotFound is returned when no reservation matches the lookup
var ErrReservationNotFound = errors.New("reservation not found")

// Repository defines persistence operations for reservations
type Repository interface {
	Create(ctx context.Context, req CreateReservationRequest) (*Reservation, error)
	GetByID(ctx context.Context, id string) (*Reservation, error)
	List(ctx context.Context, page, pageSize int) ([]Reservation, int64, error)
}

type repository struct {
	db database.Service
}

// NewRepository creates a new reservations repository
func NewRepository(db database.Service) Repository {
	return &repository{db: db}
}

// Create inserts a new reservation
func (r *repository) Create(ctx context.Context, req CreateReservationRequest) (*Reservation, error) {
	query := `
		INSERT INTO reservations
			(id, name, email, phone, date, time, guests, special_requests, club, club_location, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW())
		RETURNING id, name, email, phone, date, time, guests, special_requests, club, club_location, created_at
	`

	res := &Reservation{}
	err := r.db.QueryRow(ctx, query,
		uuid.New().String(),
		req.Name,
		req.Email,
		req.Phone,
		req.Date,
		req.Time,
		req.Guests,
		req.SpecialRequests,
		req.Club,
		req.ClubLocation,
	).Scan(
		&res.ID,
		&res.Name,
		&res.Email,
		&res.Phone,
		&res.Date,
		&res.Time,
		&res.Guests,
		&res.SpecialRequests,
		&res.Club,
		&res.ClubLocation,
		&res.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create reservation: %w", err)
	}

	return res, nil
}

// GetByID retrieves a single reservation
func (r *repository) GetByID(ctx context.Context, id string) (*Reservation, error) {
	query := `
		SELECT id, name, email, phone, date, time, guests, special_requests, club, club_location, created_at
		FROM reservations
		WHERE id = $1
	`

	res := &Reservation{}
	err := r.db.QueryRow(ctx, query, id).Scan(
		&res.ID,
		&res.Name,
		&res.Email,
		&res.Phone,
		&res.Date,
		&res.Time,
		&res.Guests,
		&res.SpecialRequests,
		&res.Club,
		&res.ClubLocation,
		&res.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrReservationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get reservation: %w", err)
	}

	return res, nil
}

// List retrieves reservations with pagination, newest first
func (r *repository) List(ctx context.Context, page, pageSize int) ([]Reservation, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	var totalCount int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM reservations`).Scan(&totalCount); err != nil {
		return nil, 0, fmt.Errorf("failed to count reservations: %w", err)
	}

	query := `
		SELECT id, name, email, phone, date, time, guests, special_requests, club, club_location, created_at
		FROM reservations
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.Query(ctx, query, pageSize, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list reservations: %w", err)
	}
	defer rows.Close()

	var results []Reservation
	for rows.Next() {
		var res Reservation
		if err := rows.Scan(
			&res.ID,
			&res.Name,
			&res.Email,
			&res.Phone,
			&res.Date,
			&res.Time,
			&res.Guests,
			&res.SpecialRequests,
			&res.Club,
			&res.ClubLocation,
			&res.CreatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan reservation: %w", err)
		}
		results = append(results, res)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to read reservations: %w", err)
	}

	return results, totalCount, nil
}
