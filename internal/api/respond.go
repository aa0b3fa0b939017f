package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/platefull/backend/internal/service"
)

// respondError writes the service error as {"detail": message} with the
// status it carries; anything unrecognized becomes a 500.
func respondError(c *gin.Context, err error) {
	var se *service.StatusError
	if errors.As(err, &se) {
		c.JSON(se.Code, gin.H{"detail": se.Detail})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
}

// currentUserID returns the authenticated caller, or uuid.Nil when the
// request is anonymous.
func currentUserID(c *gin.Context) uuid.UUID {
	value, exists := c.Get("user_id")
	if !exists {
		return uuid.Nil
	}
	id, ok := value.(uuid.UUID)
	if !ok {
		return uuid.Nil
	}
	return id
}

// pagination reads page/limit query params with sane bounds.
func pagination(c *gin.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "10"))
	if limit < 1 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	return page, limit
}

// paginated is the envelope every list endpoint returns.
func paginated(count int64, results interface{}) gin.H {
	return gin.H{
		"count":   count,
		"results": results,
	}
}
