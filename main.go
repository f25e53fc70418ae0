package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"weblog/config"
	"weblog/database"
	"weblog/handlers"
	"weblog/logger"
	"weblog/middleware"
	"weblog/notifications"
	"weblog/routes"
	"weblog/storage"
)

func main() {
	cfg := config.Load()

	if err := logger.Init(cfg); err != nil {
		panic(err)
	}
	defer logger.L.Sync()

	logger.S.Info("starting weblog API server")

	if err := database.Connect(cfg); err != nil {
		logger.S.Fatalw("failed to connect to MongoDB", "error", err)
	}
	defer database.Disconnect()

	bootCtx, bootCancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := database.EnsureIndexes(bootCtx); err != nil {
		bootCancel()
		logger.S.Fatalw("failed to create indexes", "error", err)
	}
	if err := database.SeedCategories(bootCtx); err != nil {
		bootCancel()
		logger.S.Fatalw("failed to seed categories", "error", err)
	}
	bootCancel()

	uploader, err := storage.NewCloudinaryUploader(cfg.CloudinaryURL)
	if err != nil {
		logger.S.Fatalw("cloudinary configuration error", "error", err)
	}

	engine := notifications.NewEngine(database.NotificationStore{}, logger.S)
	handlers.Init(cfg, uploader, engine)

	gin.SetMode(cfg.GinMode)

	var resolve middleware.UserResolver = database.FindUserByID
	router := routes.SetupRouter(cfg, resolve)

	router.GET("/health", func(c *gin.Context) {
		c.String(200, "OK")
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.S.Infow("server listening", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.S.Fatalw("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.S.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.S.Errorw("forced shutdown", "error", err)
	}

	logger.S.Info("server stopped gracefully")
}
