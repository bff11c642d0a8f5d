package testutil

import (
	"github.com/gin-gonic/gin"
)

// Context keys written by the auth middleware
const (
	UserIDKey    = "user_id"
	UserRoleKey  = "user_role"
	UserEmailKey = "user_email"
)

// SetMockAuthContext marks c as authenticated the way RequireAuth does
func SetMockAuthContext(c *gin.Context, userID, role, email string) {
	c.Set(UserIDKey, userID)
	c.Set(UserRoleKey, role)
	c.Set(UserEmailKey, email)
}

// MockAuthMiddleware authenticates every request as the given user
func MockAuthMiddleware(userID, role, email string) gin.HandlerFunc {
	return func(c *gin.Context) {
		SetMockAuthContext(c, userID, role, email)
		c.Next()
	}
}
