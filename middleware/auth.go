package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"weblog/models"
	"weblog/token"
)

const (
	// ContextUserKey stores the resolved *models.User in the Gin context.
	ContextUserKey = "user"
	// ContextUserIDKey stores the authenticated user's ObjectID.
	ContextUserIDKey = "userId"
)

// UserResolver looks up the token's user ID against the credential store.
// Injected so tests can substitute a fake for the users collection.
type UserResolver func(ctx context.Context, id primitive.ObjectID) (*models.User, error)

// AuthRequired validates the bearer token and re-resolves the encoded
// identity on every request. A token whose user has since been deleted is
// rejected outright rather than passed through with a nil identity.
func AuthRequired(issuer *token.Issuer, resolve UserResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Not authorized, no token"})
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Not authorized, no token"})
			return
		}

		claims, err := issuer.Parse(strings.TrimSpace(parts[1]))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Not authorized, token failed or expired"})
			return
		}

		userID, err := primitive.ObjectIDFromHex(claims.UserID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Not authorized, token failed or expired"})
			return
		}

		user, err := resolve(c.Request.Context(), userID)
		if err != nil || user == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Not authorized, token failed or expired"})
			return
		}

		c.Set(ContextUserKey, user)
		c.Set(ContextUserIDKey, user.ID)
		c.Next()
	}
}
