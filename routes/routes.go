package routes

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"weblog/config"
	"weblog/handlers"
	"weblog/middleware"
	"weblog/token"
)

// SetupRouter builds the full route table. The resolver is injected so
// tests can run the router without a live database.
func SetupRouter(cfg *config.AppConfig, resolve middleware.UserResolver) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	router.Use(middleware.RateLimit(cfg.RateLimitPerMinute))

	issuer := token.NewIssuer(cfg.JWTSecret, cfg.JWTTTL)
	auth := middleware.AuthRequired(issuer, resolve)

	api := router.Group("/api")

	api.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "message": "weblog API is running"})
	})

	api.POST("/auth/register", handlers.Register)
	api.POST("/auth/login", handlers.Login)

	api.GET("/posts", handlers.ListPosts)
	api.GET("/posts/:id", handlers.GetPost)
	api.POST("/posts", auth, handlers.CreatePost)
	api.PUT("/posts/:id", auth, handlers.UpdatePost)
	api.DELETE("/posts/:id", auth, handlers.DeletePost)

	api.GET("/categories", handlers.ListCategories)

	api.GET("/comments/posts/:postId", handlers.GetComments)
	api.POST("/comments/posts/:postId", auth, handlers.CreateComment)
	api.PUT("/comments/:id", auth, handlers.UpdateComment)
	api.DELETE("/comments/:id", auth, handlers.DeleteComment)

	api.GET("/notifications", auth, handlers.ListNotifications)
	api.GET("/notifications/unread-count", auth, handlers.UnreadNotificationCount)
	api.PUT("/notifications/:id", auth, handlers.MarkNotificationRead)
	api.DELETE("/notifications/:id", auth, handlers.DeleteNotification)

	api.GET("/users/profile", auth, handlers.GetProfile)
	api.PUT("/users/profile", auth, handlers.UpdateProfile)
	api.GET("/users/public-profile/:userId", handlers.GetPublicProfile)

	router.NoRoute(func(c *gin.Context) {
		c.JSON(404, gin.H{"message": "Endpoint not found"})
	})

	return router
}
