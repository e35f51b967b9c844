package reservations

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// Handler handles reservation HTTP requests
type Handler struct {
	service Service
}

// NewHandler creates a new reservations handler
func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// Create handles POST /api/reservations. Missing required fields reject the
// submission with no side effects; a persistence failure is reported as a
// generic server error with the detail kept server-side.
func (h *Handler) Create(c *gin.Context) {
	var req CreateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields"})
		return
	}

	res, err := h.service.Book(c.Request.Context(), req)
	if err != nil {
		slog.Error("Reservation failed", "club", req.Club, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error. Please try again."})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":        "Reservation successful! Confirmation email sent.",
		"reservation_id": res.ID,
	})
}

// List handles GET /api/reservations?page=1&page_size=20
func (h *Handler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	results, total, err := h.service.List(c.Request.Context(), page, pageSize)
	if err != nil {
		slog.Error("Failed to list reservations", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error. Please try again."})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"reservations": results,
		"total":        total,
		"page":         page,
		"page_size":    pageSize,
	})
}
