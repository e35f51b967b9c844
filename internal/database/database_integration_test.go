package database_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"clubverse/internal/database"
	"clubverse/internal/reservations"
	"clubverse/internal/users"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

var (
	containerOnce sync.Once
	containerDB   database.Service
	containerErr  error
)

// setupDatabase starts a throwaway Postgres container once per test binary
// and applies the schema. Tests share the instance.
func setupDatabase(t *testing.T) database.Service {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	containerOnce.Do(func() {
		ctx := context.Background()

		pgContainer, err := postgres.Run(ctx,
			"postgres:16-alpine",
			postgres.WithDatabase("clubverse_test"),
			postgres.WithUsername("clubverse"),
			postgres.WithPassword("clubverse"),
			testcontainers.WithWaitStrategy(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(30*time.Second)),
		)
		if err != nil {
			containerErr = err
			return
		}

		connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
		if err != nil {
			containerErr = err
			return
		}

		pool, err := pgxpool.New(ctx, connStr)
		if err != nil {
			containerErr = err
			return
		}

		db := database.NewFromPool(pool)
		if err := database.EnsureSchema(ctx, db); err != nil {
			containerErr = err
			return
		}

		containerDB = db
	})

	if containerErr != nil {
		t.Fatalf("Failed to start postgres container: %v", containerErr)
	}
	return containerDB
}

func TestHealth(t *testing.T) {
	db := setupDatabase(t)

	stats := db.Health()
	if stats["status"] != "up" {
		t.Fatalf("Expected status up, got %s (%s)", stats["status"], stats["error"])
	}
}

func TestUserRepository(t *testing.T) {
	db := setupDatabase(t)
	repo := users.NewRepository(db)
	ctx := context.Background()

	created, err := repo.Create(ctx, "Alice", "alice@integration.test", "bcrypt-hash")
	if err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}
	if created.ID == "" {
		t.Fatal("Expected generated user ID")
	}

	byEmail, err := repo.GetByEmail(ctx, "alice@integration.test")
	if err != nil {
		t.Fatalf("Failed to fetch user by email: %v", err)
	}
	if byEmail.Name != "Alice" || byEmail.PasswordHash != "bcrypt-hash" {
		t.Errorf("Fetched user does not match: %+v", byEmail)
	}

	byID, err := repo.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("Failed to fetch user by ID: %v", err)
	}
	if byID.Email != "alice@integration.test" {
		t.Errorf("Expected matching email, got %s", byID.Email)
	}

	// Unique index on email
	if _, err := repo.Create(ctx, "Impostor", "alice@integration.test", "other-hash"); !errors.Is(err, users.ErrEmailTaken) {
		t.Errorf("Expected ErrEmailTaken for duplicate email, got %v", err)
	}

	if _, err := repo.GetByEmail(ctx, "nobody@integration.test"); !errors.Is(err, users.ErrUserNotFound) {
		t.Errorf("Expected ErrUserNotFound, got %v", err)
	}
}

func TestReservationRepository(t *testing.T) {
	db := setupDatabase(t)
	repo := reservations.NewRepository(db)
	ctx := context.Background()

	req := reservations.CreateReservationRequest{
		Name:            "Bob",
		Email:           "bob@integration.test",
		Phone:           "+91-9876543210",
		Date:            "2026-09-12",
		Time:            "21:00",
		Guests:          4,
		Club:            "BREWESTATE",
		ClubLocation:    "Chandigarh",
		SpecialRequests: "Window table",
	}

	created, err := repo.Create(ctx, req)
	if err != nil {
		t.Fatalf("Failed to create reservation: %v", err)
	}
	if created.ID == "" {
		t.Fatal("Expected generated reservation ID")
	}

	fetched, err := repo.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("Failed to fetch reservation: %v", err)
	}
	if fetched.Club != "BREWESTATE" || fetched.Guests != 4 || fetched.SpecialRequests != "Window table" {
		t.Errorf("Fetched reservation does not match: %+v", fetched)
	}

	// Same slot again: double bookings are accepted
	if _, err := repo.Create(ctx, req); err != nil {
		t.Errorf("Expected duplicate slot to be accepted, got %v", err)
	}

	list, total, err := repo.List(ctx, 1, 10)
	if err != nil {
		t.Fatalf("Failed to list reservations: %v", err)
	}
	if total < 2 || len(list) < 2 {
		t.Errorf("Expected at least 2 reservations, got total=%d len=%d", total, len(list))
	}

	if _, err := repo.GetByID(ctx, "missing-id"); !errors.Is(err, reservations.ErrReservationNotFound) {
		t.Errorf("Expected ErrReservationNotFound, got %v", err)
	}
}
