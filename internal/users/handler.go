package users

import (
	"errors"
	"log/slog"
	"net/http"
	"os"

	"clubverse/internal/token"

	"github.com/gin-gonic/gin"
)

// CookieName is the cookie carrying the session token
const CookieName = "token"

// Handler handles registration, login and logout HTTP requests
type Handler struct {
	service Service
	tokens  *token.Service
}

// NewHandler creates a new users handler
func NewHandler(service Service, tokens *token.Service) *Handler {
	return &Handler{
		service: service,
		tokens:  tokens,
	}
}

// Register handles POST /api/register. On success no session is issued; the
// client is pointed back at the login page.
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "All fields are required and the password must be at least 6 characters long"})
		return
	}

	user, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, ErrEmailTaken) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "User already exists with this email"})
			return
		}
		slog.Error("Registration failed", "email", req.Email, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error occurred. Please try again."})
		return
	}

	slog.Info("User registered", "user_id", user.ID, "email", user.Email)

	c.JSON(http.StatusCreated, gin.H{
		"success":  "Registration successful! Please login.",
		"redirect": "/",
	})
}

// Login handles POST /api/login. On success a session token is issued and set
// as an http-only, same-site-strict cookie valid for 24 hours.
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email and password are required"})
		return
	}

	user, err := h.service.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
			return
		}
		slog.Error("Login failed", "email", req.Email, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error occurred. Please try again."})
		return
	}

	tokenStr, err := h.tokens.Issue(token.Identity{
		ID:    user.ID,
		Email: user.Email,
		Name:  user.Name,
	})
	if err != nil {
		slog.Error("Failed to issue token", "user_id", user.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error occurred. Please try again."})
		return
	}

	setSessionCookie(c, tokenStr, int(token.TokenTTL.Seconds()))

	c.JSON(http.StatusOK, gin.H{
		"message":  "Login successful",
		"redirect": "/api/dashboard",
	})
}

// Logout handles GET /api/logout. It clears the session cookie; tokens are
// stateless so there is nothing to revoke server-side.
func (h *Handler) Logout(c *gin.Context) {
	setSessionCookie(c, "", -1)

	c.JSON(http.StatusOK, gin.H{
		"message":  "Logged out",
		"redirect": "/",
	})
}

func setSessionCookie(c *gin.Context, value string, maxAge int) {
	secure := os.Getenv("APP_ENV") == "production"
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(CookieName, value, maxAge, "/", "", secure, true)
}
