package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/ripplehq/ripple/internal/feed"
	"github.com/ripplehq/ripple/internal/notify"
)

// --- Configuration Constants ---
const (
	maxPostLength = 280

	feedDefaultLimit        = 20
	repliesDefaultLimit     = 10
	listDefaultLimit        = 50
	maxPageLimit            = 100
	searchDefaultLimit      = 5
	searchMaxLimit          = 10
	suggestionsDefaultLimit = 3

	rateLimitRPS   = 1.0 / 3.0 // 1 write every 3 seconds
	rateLimitBurst = 1
)

// Env carries the handler dependencies.
type Env struct {
	DB     *gorm.DB
	Feed   *feed.Builder
	Notify *notify.Recorder
}

// viewerID returns the authenticated user id set by the JWT middleware.
func viewerID(c *gin.Context) uint {
	return c.GetUint("userID")
}

// idParam parses a numeric path parameter.
func idParam(c *gin.Context, name string) (uint, bool) {
	v, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || v == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name + " parameter"})
		return 0, false
	}
	return uint(v), true
}

// pageParams parses the cursor/limit query pair. Replies with 400 and
// returns ok=false on malformed or out-of-range input.
func pageParams(c *gin.Context, def, max int) (cursor uint, limit int, ok bool) {
	if s := c.Query("cursor"); s != "" {
		v, err := strconv.ParseUint(s, 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid cursor param"})
			return 0, 0, false
		}
		cursor = uint(v)
	}
	limit = def
	if s := c.Query("limit"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 || v > max {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit param"})
			return 0, 0, false
		}
		limit = v
	}
	return cursor, limit, true
}

// internalError logs the underlying failure and surfaces a generic message
// so storage details never leak to the caller.
func internalError(c *gin.Context, op string, err error) {
	log.Errorf("Error in %s: %v", op, err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong. Please try again later"})
}
