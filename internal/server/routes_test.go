package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"clubverse/internal/reservations"
	"clubverse/internal/token"
	"clubverse/internal/users"

	"github.com/gin-gonic/gin"
)

// In-memory users.Service for routing tests
type fakeUsers struct {
	byEmail map[string]*users.User
	byID    map[string]*users.User
	seq     int
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{
		byEmail: make(map[string]*users.User),
		byID:    make(map[string]*users.User),
	}
}

func (f *fakeUsers) Register(ctx context.Context, req users.RegisterRequest) (*users.User, error) {
	if _, exists := f.byEmail[req.Email]; exists {
		return nil, users.ErrEmailTaken
	}
	f.seq++
	user := &users.User{
		ID:           fmt.Sprintf("user-%d", f.seq),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: req.Password,
	}
	f.byEmail[user.Email] = user
	f.byID[user.ID] = user
	return user, nil
}

func (f *fakeUsers) Authenticate(ctx context.Context, email, password string) (*users.User, error) {
	user, ok := f.byEmail[email]
	if !ok || user.PasswordHash != password {
		return nil, users.ErrInvalidCredentials
	}
	return user, nil
}

func (f *fakeUsers) GetByID(ctx context.Context, id string) (*users.User, error) {
	user, ok := f.byID[id]
	if !ok {
		return nil, users.ErrUserNotFound
	}
	return user, nil
}

type fakeReservations struct {
	created []reservations.Reservation
}

func (f *fakeReservations) Book(ctx context.Context, req reservations.CreateReservationRequest) (*reservations.Reservation, error) {
	res := reservations.Reservation{
		ID:    fmt.Sprintf("res-%d", len(f.created)+1),
		Name:  req.Name,
		Email: req.Email,
		Club:  req.Club,
	}
	f.created = append(f.created, res)
	return &res, nil
}

func (f *fakeReservations) Get(ctx context.Context, id string) (*reservations.Reservation, error) {
	return nil, reservations.ErrReservationNotFound
}

func (f *fakeReservations) List(ctx context.Context, page, pageSize int) ([]reservations.Reservation, int64, error) {
	return f.created, int64(len(f.created)), nil
}

func newTestServer() *Server {
	gin.SetMode(gin.TestMode)
	return New(Options{
		Tokens:       token.NewService([]byte("test-secret")),
		Users:        newFakeUsers(),
		Reservations: &fakeReservations{},
	})
}

func postJSON(r http.Handler, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	payload, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func getWithCookies(r http.Handler, path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == users.CookieName && cookie.Value != "" {
			return cookie
		}
	}
	t.Fatal("Expected a session cookie in the response")
	return nil
}

func TestRegisterLoginBrowseScenario(t *testing.T) {
	s := newTestServer()
	r := s.RegisterRoutes()

	// Register creates the account without opening a session
	w := postJSON(r, "/api/register", gin.H{
		"name":     "Alice",
		"email":    "alice@example.com",
		"password": "secret1",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201 from register, got %d: %s", w.Code, w.Body.String())
	}
	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == users.CookieName && cookie.Value != "" {
			t.Error("Register must not open a session")
		}
	}

	// Protected page without a session is rejected
	w = getWithCookies(r, "/api/dashboard")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("Expected 401 without session, got %d", w.Code)
	}

	// Login opens a session
	w = postJSON(r, "/api/login", gin.H{
		"email":    "alice@example.com",
		"password": "secret1",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 from login, got %d: %s", w.Code, w.Body.String())
	}
	cookie := sessionCookie(t, w)

	// The session cookie unlocks the protected pages
	w = getWithCookies(r, "/api/dashboard", cookie)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 with session, got %d: %s", w.Code, w.Body.String())
	}

	var payload struct {
		User struct {
			Name string `json:"name"`
		} `json:"user"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &payload); err != nil {
		t.Fatalf("Failed to decode dashboard payload: %v", err)
	}
	if payload.User.Name != "Alice" {
		t.Errorf("Expected dashboard user Alice, got %q", payload.User.Name)
	}
}

func TestLoginWithWrongPassword(t *testing.T) {
	s := newTestServer()
	r := s.RegisterRoutes()

	postJSON(r, "/api/register", gin.H{
		"name":     "Alice",
		"email":    "alice@example.com",
		"password": "secret1",
	})

	w := postJSON(r, "/api/login", gin.H{
		"email":    "alice@example.com",
		"password": "wrong-password",
	})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("Expected 401 for wrong password, got %d", w.Code)
	}
}

func TestReservationIntakeIsPublic(t *testing.T) {
	s := newTestServer()
	r := s.RegisterRoutes()

	w := postJSON(r, "/api/reservations", gin.H{
		"name":   "Bob",
		"email":  "bob@example.com",
		"phone":  "+91-9876543210",
		"date":   "2026-09-12",
		"time":   "21:00",
		"guests": 4,
		"club":   "BREWESTATE",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201 without a session, got %d: %s", w.Code, w.Body.String())
	}
}

func TestEntryPageEchoesIndicators(t *testing.T) {
	s := newTestServer()
	r := s.RegisterRoutes()

	w := getWithCookies(r, "/?error=token_error")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 from entry page, got %d", w.Code)
	}

	var payload map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &payload); err != nil {
		t.Fatalf("Failed to decode entry payload: %v", err)
	}
	if payload["error"] != "token_error" {
		t.Errorf("Expected error indicator echoed back, got %q", payload["error"])
	}
}

func TestBarsPageListsBothCities(t *testing.T) {
	s := newTestServer()
	r := s.RegisterRoutes()

	postJSON(r, "/api/register", gin.H{
		"name":     "Alice",
		"email":    "alice@example.com",
		"password": "secret1",
	})
	w := postJSON(r, "/api/login", gin.H{
		"email":    "alice@example.com",
		"password": "secret1",
	})
	cookie := sessionCookie(t, w)

	w = getWithCookies(r, "/api/bar", cookie)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 from bars page, got %d", w.Code)
	}

	var payload struct {
		ChdBars []Bar `json:"chdBars"`
		LdhBars []Bar `json:"ldhBars"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &payload); err != nil {
		t.Fatalf("Failed to decode bars payload: %v", err)
	}
	if len(payload.ChdBars) != 4 || len(payload.LdhBars) != 4 {
		t.Errorf("Expected 4 bars per city, got %d and %d", len(payload.ChdBars), len(payload.LdhBars))
	}
}
