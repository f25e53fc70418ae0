package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"weblog/config"
	"weblog/models"
)

func testConfig() *config.AppConfig {
	return &config.AppConfig{
		JWTSecret:          "test-secret-key",
		JWTTTL:             time.Hour,
		AllowedOrigins:     []string{"http://localhost:5173"},
		RateLimitPerMinute: 1000,
	}
}

func noUser(_ context.Context, _ primitive.ObjectID) (*models.User, error) {
	return nil, mongo.ErrNoDocuments
}

func TestRouteTable(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := SetupRouter(testConfig(), noUser)

	expected := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/auth/register"},
		{http.MethodPost, "/api/auth/login"},
		{http.MethodGet, "/api/posts"},
		{http.MethodGet, "/api/posts/:id"},
		{http.MethodPost, "/api/posts"},
		{http.MethodPut, "/api/posts/:id"},
		{http.MethodDelete, "/api/posts/:id"},
		{http.MethodGet, "/api/categories"},
		{http.MethodGet, "/api/comments/posts/:postId"},
		{http.MethodPost, "/api/comments/posts/:postId"},
		{http.MethodPut, "/api/comments/:id"},
		{http.MethodDelete, "/api/comments/:id"},
		{http.MethodGet, "/api/notifications"},
		{http.MethodGet, "/api/notifications/unread-count"},
		{http.MethodPut, "/api/notifications/:id"},
		{http.MethodDelete, "/api/notifications/:id"},
		{http.MethodGet, "/api/users/profile"},
		{http.MethodPut, "/api/users/profile"},
		{http.MethodGet, "/api/users/public-profile/:userId"},
	}

	registered := map[string]bool{}
	for _, r := range router.Routes() {
		registered[r.Method+" "+r.Path] = true
	}

	for _, e := range expected {
		assert.True(t, registered[e.method+" "+e.path], "%s %s should be registered", e.method, e.path)
	}
}

func TestHealthEndpoint(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := SetupRouter(testConfig(), noUser)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ok")
}

// Protected routes reject anonymous requests before touching any store.
func TestProtectedRoutesRequireAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := SetupRouter(testConfig(), noUser)

	protected := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/posts"},
		{http.MethodPut, "/api/posts/" + primitive.NewObjectID().Hex()},
		{http.MethodDelete, "/api/posts/" + primitive.NewObjectID().Hex()},
		{http.MethodPost, "/api/comments/posts/" + primitive.NewObjectID().Hex()},
		{http.MethodGet, "/api/notifications"},
		{http.MethodGet, "/api/notifications/unread-count"},
		{http.MethodGet, "/api/users/profile"},
	}

	for _, e := range protected {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(e.method, e.path, nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code, "%s %s should require auth", e.method, e.path)
	}
}
