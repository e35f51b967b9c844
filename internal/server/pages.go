package server

import (
	"log/slog"
	"net/http"

	"clubverse/internal/storage"

	"github.com/gin-gonic/gin"
)

// Bar is a single venue entry on the bars page
type Bar struct {
	Name  string `json:"name"`
	Image string `json:"image"`
	Link  string `json:"link"`
}

// TeamMember is a single entry on the team page
type TeamMember struct {
	Name  string `json:"name"`
	Role  string `json:"role"`
	Image string `json:"image"`
}

var chandigarhBars = []Bar{
	{Name: "BREWESTATE", Image: "images/brewestate.png", Link: "/api/bars/brewestate"},
	{Name: "BOULEVARD", Image: "images/boul.png", Link: "/api/bars/boulevard"},
	{Name: "KALA-GHODA", Image: "images/kalaghoda.jpg", Link: "/api/bars/kalaghoda"},
	{Name: "MOBE", Image: "images/mobe.png", Link: "/api/bars/mobe"},
}

var ludhianaBars = []Bar{
	{Name: "PAARA - NIGHT CLUB", Image: "images/paara2.jpg", Link: "/api/bars/paara"},
	{Name: "ROMEO LANE", Image: "images/romeolane.jpg", Link: "/api/bars/romeo-ldh"},
	{Name: "LUNA - NIGHT CLUB", Image: "images/luna2.avif", Link: "/api/bars/luna-ldh"},
	{Name: "BAKLAVI - BAR & KITCHEN", Image: "images/baklavi.jpg", Link: "/api/bars/baklavi-ldh"},
}

var teamMembers = []TeamMember{
	{Name: "Ansh Vohra", Role: "Web Analyst", Image: "images/ansh.jpg"},
	{Name: "Akhil Handa", Role: "UI/UX Designer", Image: "images/akhil.jpg"},
	{Name: "Anmol Singh", Role: "Front-End Web Developer", Image: "images/anmol11.jpg"},
	{Name: "Aaryushi", Role: "Back-End Web Developer", Image: "images/aaryushi.jpg"},
}

var instaImages = []string{
	"food.jpg", "drink.jpg", "pizza.jpg", "beerr.avif",
	"dance.jpeg", "sing.webp", "hand.png", "taco.png",
	"drum.png", "wine.png",
}

// barSlugs is the set of individual venue pages
var barSlugs = map[string]string{
	"brewestate":  "BREWESTATE",
	"boulevard":   "BOULEVARD",
	"kalaghoda":   "KALA-GHODA",
	"mobe":        "MOBE",
	"paara":       "PAARA - NIGHT CLUB",
	"romeo-ldh":   "ROMEO LANE",
	"luna-ldh":    "LUNA - NIGHT CLUB",
	"baklavi-ldh": "BAKLAVI - BAR & KITCHEN",
}

// entryPageHandler serves the entry page payload, echoing back any error or
// success indicator carried in the query string.
func (s *Server) entryPageHandler(c *gin.Context) {
	payload := gin.H{"page": "login"}
	if v := c.Query("error"); v != "" {
		payload["error"] = v
	}
	if v := c.Query("success"); v != "" {
		payload["success"] = v
	}
	c.JSON(http.StatusOK, payload)
}

func (s *Server) registerPageHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"page": "register"})
}

func (s *Server) dashboardHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"instaImages": instaImages,
		"user":        sessionUserPayload(c),
	})
}

func (s *Server) barsHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"chdBars": s.withMediaURLs(c, chandigarhBars),
		"ldhBars": s.withMediaURLs(c, ludhianaBars),
		"user":    sessionUserPayload(c),
	})
}

func (s *Server) barPageHandler(c *gin.Context) {
	slug := c.Param("slug")
	name, ok := barSlugs[slug]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Bar not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"page": slug,
		"name": name,
		"user": sessionUserPayload(c),
	})
}

func (s *Server) teamHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"team": teamMembers,
		"user": sessionUserPayload(c),
	})
}

func (s *Server) reserveTableHandler(c *gin.Context) {
	clubs := make([]gin.H, 0, len(chandigarhBars)+len(ludhianaBars))
	for _, bar := range chandigarhBars {
		clubs = append(clubs, gin.H{"name": bar.Name, "location": "Chandigarh"})
	}
	for _, bar := range ludhianaBars {
		clubs = append(clubs, gin.H{"name": bar.Name, "location": "Ludhiana"})
	}

	c.JSON(http.StatusOK, gin.H{
		"page":  "reservation",
		"clubs": clubs,
		"user":  sessionUserPayload(c),
	})
}

// assetHandler redirects to a presigned URL for the requested media object
func (s *Server) assetHandler(c *gin.Context) {
	if s.storage == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Media storage is not configured"})
		return
	}

	key := c.Param("key")
	url, err := s.storage.MediaURL(c.Request.Context(), key, storage.DownloadTTL)
	if err != nil {
		slog.Error("Failed to presign media URL", "key", key, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error. Please try again."})
		return
	}

	c.Redirect(http.StatusTemporaryRedirect, url)
}

// withMediaURLs swaps bucket keys for presigned URLs when storage is
// configured. Without storage the raw keys pass through unchanged.
func (s *Server) withMediaURLs(c *gin.Context, bars []Bar) []Bar {
	if s.storage == nil {
		return bars
	}

	out := make([]Bar, len(bars))
	for i, bar := range bars {
		out[i] = bar
		url, err := s.storage.MediaURL(c.Request.Context(), bar.Image, storage.DownloadTTL)
		if err != nil {
			slog.Warn("Failed to presign bar image", "key", bar.Image, "error", err)
			continue
		}
		out[i].Image = url
	}
	return out
}

// sessionUserPayload shapes the authenticated user for page payloads
func sessionUserPayload(c *gin.Context) gin.H {
	user := CurrentUser(c)
	if user == nil {
		return nil
	}
	return gin.H{
		"id":    user.ID,
		"name":  user.Name,
		"email": user.Email,
	}
}
