package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/campusvoice/backend/internal/models"
)

// Identity headers are supplied by the auth gateway in front of this service.
// The backend never authenticates; it only consumes the resolved identity.
const (
	UserIDHeader     = "X-User-Id"
	UserRoleHeader   = "X-User-Role"
	DepartmentHeader = "X-Department-Id"
)

const identityKey = "identity"

func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := strings.TrimSpace(c.GetHeader(UserIDHeader))
		role := models.Role(strings.ToLower(strings.TrimSpace(c.GetHeader(UserRoleHeader))))
		if userID == "" || !validRole(role) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{
					"code":    "UNAUTHORIZED",
					"message": "Missing or invalid identity headers",
				},
			})
			return
		}
		c.Set(identityKey, models.Identity{
			UserID:       userID,
			Role:         role,
			DepartmentID: strings.TrimSpace(c.GetHeader(DepartmentHeader)),
		})
		c.Next()
	}
}

// RequireRole gates a route to callers carrying the given role. Identity must
// run earlier in the chain.
func RequireRole(role models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		if IdentityFrom(c).Role != role {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": gin.H{
					"code":    "FORBIDDEN",
					"message": "Insufficient role",
				},
			})
			return
		}
		c.Next()
	}
}

// IdentityFrom returns the caller identity set by Identity. The zero value
// means the middleware did not run on this route.
func IdentityFrom(c *gin.Context) models.Identity {
	v, ok := c.Get(identityKey)
	if !ok {
		return models.Identity{}
	}
	ident, _ := v.(models.Identity)
	return ident
}

func validRole(r models.Role) bool {
	switch r {
	case models.RoleStudent, models.RoleFaculty, models.RoleAdmin:
		return true
	}
	return false
}
