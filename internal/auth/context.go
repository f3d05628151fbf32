package auth

import "github.com/gin-gonic/gin"

const (
	userIDKey   = "userID"
	userRoleKey = "userRole"
)

// GetUserID returns the authenticated user's ID or empty string.
func GetUserID(c *gin.Context) string {
	return c.GetString(userIDKey)
}

// GetUserRole returns the role carried by the access token or empty string.
func GetUserRole(c *gin.Context) string {
	return c.GetString(userRoleKey)
}

// SetIdentity stores the authenticated identity on the context.
func SetIdentity(c *gin.Context, userID, role string) {
	c.Set(userIDKey, userID)
	c.Set(userRoleKey, role)
}
