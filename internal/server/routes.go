package server

import (
	"net/http"
	"os"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterRoutes builds the gin engine with the full middleware chain and
// route table.
func (s *Server) RegisterRoutes() http.Handler {
	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggingMiddleware())
	r.Use(SecurityHeadersMiddleware())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins(),
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true, // Session cookie must survive CORS
	}))

	// Public pages
	r.GET("/", s.entryPageHandler)
	r.GET("/register", s.registerPageHandler)
	r.GET("/health", s.healthHandler)

	api := r.Group("/api")
	if s.limiter != nil {
		api.Use(s.limiter.Middleware())
	}

	// Authentication endpoints stay public
	api.POST("/register", s.usersHandler.Register)
	api.POST("/login", s.usersHandler.Login)
	api.GET("/logout", s.usersHandler.Logout)

	// Reservation intake is open to unauthenticated visitors
	api.POST("/reservations", s.reservationsHandler.Create)

	protected := api.Group("")
	protected.Use(Protect(s.tokens, s.users))
	{
		protected.GET("/dashboard", s.dashboardHandler)
		protected.GET("/bar", s.barsHandler)
		protected.GET("/bars/:slug", s.barPageHandler)
		protected.GET("/team", s.teamHandler)
		protected.GET("/reserve-table", s.reserveTableHandler)
		protected.GET("/reservations", s.reservationsHandler.List)
		protected.GET("/assets/:key", s.assetHandler)
	}

	return r
}

func (s *Server) healthHandler(c *gin.Context) {
	response := make(map[string]interface{})

	response["database"] = s.db.Health()

	if s.storage != nil {
		storageHealth := make(map[string]string)
		if err := s.storage.Health(c.Request.Context()); err != nil {
			storageHealth["status"] = "down"
			storageHealth["error"] = err.Error()
		} else {
			storageHealth["status"] = "up"
		}
		response["storage"] = storageHealth
	}

	c.JSON(http.StatusOK, response)
}

func allowedOrigins() []string {
	if v := os.Getenv("CORS_ALLOW_ORIGINS"); v != "" {
		return strings.Split(v, ",")
	}
	return []string{"http://localhost:3000"}
}
