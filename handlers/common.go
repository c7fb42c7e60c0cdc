package handlers

import (
	"net/http"
	"strconv"

	"vivaah/websocket"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Shared constants and state across all handler files
const fallbackAvatar = "https://upload.wikimedia.org/wikipedia/commons/8/89/Portrait_Placeholder.png"

var wsManager *websocket.Manager

// SetWebSocketManager wires the realtime event manager into the handlers.
func SetWebSocketManager(manager *websocket.Manager) {
	wsManager = manager
}

// currentUserID reads the authenticated user's id placed in the context by
// the JWT middleware. Writes a 401 and returns false when absent or invalid.
func currentUserID(c *gin.Context) (primitive.ObjectID, bool) {
	userIDStr := c.GetString("userId")
	userID, err := primitive.ObjectIDFromHex(userIDStr)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Invalid user ID"})
		return primitive.NilObjectID, false
	}
	return userID, true
}

// parsePagination reads page/limit query params, 1-indexed with defaults 1/20.
func parsePagination(c *gin.Context) (page, limit int64) {
	page, _ = strconv.ParseInt(c.DefaultQuery("page", "1"), 10, 64)
	limit, _ = strconv.ParseInt(c.DefaultQuery("limit", "20"), 10, 64)
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	return page, limit
}

// totalPages is ceil(total/limit) for paginated listings.
func totalPages(total, limit int64) int64 {
	if limit <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}
