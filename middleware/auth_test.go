package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"weblog/models"
	"weblog/token"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func setupAuthRouter(issuer *token.Issuer, resolve UserResolver) *gin.Engine {
	router := gin.New()
	router.GET("/protected", AuthRequired(issuer, resolve), func(c *gin.Context) {
		user := c.MustGet(ContextUserKey).(*models.User)
		c.JSON(http.StatusOK, gin.H{"username": user.Username})
	})
	return router
}

func resolveAs(user *models.User) UserResolver {
	return func(_ context.Context, id primitive.ObjectID) (*models.User, error) {
		if user != nil && user.ID == id {
			return user, nil
		}
		return nil, mongo.ErrNoDocuments
	}
}

func TestAuthRequiredMissingHeader(t *testing.T) {
	issuer := token.NewIssuer("test-secret", time.Hour)
	router := setupAuthRouter(issuer, resolveAs(nil))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthRequiredMalformedHeader(t *testing.T) {
	issuer := token.NewIssuer("test-secret", time.Hour)
	router := setupAuthRouter(issuer, resolveAs(nil))

	for _, header := range []string{"Basic abc123", "Bearer", "Bearer ", "token-without-scheme"} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", header)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code, "header %q should be rejected", header)
	}
}

func TestAuthRequiredInvalidSignature(t *testing.T) {
	issuer := token.NewIssuer("test-secret", time.Hour)
	forger := token.NewIssuer("wrong-secret", time.Hour)
	router := setupAuthRouter(issuer, resolveAs(nil))

	forged, err := forger.Issue(primitive.NewObjectID().Hex())
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+forged)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthRequiredExpiredToken(t *testing.T) {
	expired := token.NewIssuer("test-secret", -time.Minute)
	issuer := token.NewIssuer("test-secret", time.Hour)
	router := setupAuthRouter(issuer, resolveAs(nil))

	tokenString, err := expired.Issue(primitive.NewObjectID().Hex())
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+tokenString)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

// A valid token whose identity no longer exists in the credential store
// must be a hard failure, not a pass-through with a nil user.
func TestAuthRequiredDeletedIdentity(t *testing.T) {
	issuer := token.NewIssuer("test-secret", time.Hour)
	router := setupAuthRouter(issuer, resolveAs(nil))

	tokenString, err := issuer.Issue(primitive.NewObjectID().Hex())
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+tokenString)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthRequiredValidToken(t *testing.T) {
	issuer := token.NewIssuer("test-secret", time.Hour)
	user := &models.User{ID: primitive.NewObjectID(), Username: "alice"}
	router := setupAuthRouter(issuer, resolveAs(user))

	tokenString, err := issuer.Issue(user.ID.Hex())
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+tokenString)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "alice")
}
