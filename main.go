// File: aviachat/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"aviachat/config"
	"aviachat/handlers"
	"aviachat/middleware"
	"aviachat/routes"
	"aviachat/services/assistant"
	"aviachat/services/flightapi"
	"aviachat/services/session"
	"aviachat/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())

	// Session store: Redis when configured, in-process otherwise.
	ttl := time.Duration(config.AppConfig.SessionTTLMinutes) * time.Minute
	var sessionStore session.Store
	var redisClient *redis.Client
	if config.AppConfig.SessionStore == "redis" {
		redisClient = utils.GetSessionCacheClient()
		sessionStore = session.NewRedisStore(redisClient, ttl)
	} else {
		sessionStore = session.NewMemoryStore(ttl)
	}
	utils.StartHealthMonitor(redisClient)

	// Outbound webhook client.
	apiClient := flightapi.NewClient(flightapi.Config{
		BaseURL:       config.AppConfig.WebhookBaseURL,
		SearchPath:    config.AppConfig.WebhookSearchPath,
		SelectPath:    config.AppConfig.WebhookSelectPath,
		PassengerPath: config.AppConfig.WebhookPassengerPath,
		ConfirmPath:   config.AppConfig.WebhookConfirmPath,
		Timeout:       time.Duration(config.AppConfig.WebhookTimeoutSecs) * time.Second,
	}, logger)

	wizardService := &assistant.DefaultWizardService{
		Store:  sessionStore,
		API:    apiClient,
		Logger: logger,
	}

	chatHandler := handlers.NewChatHandler(wizardService, logger)
	handlerBundle := handlers.NewHandlerBundle(chatHandler)

	// Register routes with the assembled handler bundle.
	routes.RegisterRoutes(router, handlerBundle)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
