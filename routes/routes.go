package routes

import (
	"strings"
	"time"

	"aviachat/config"
	"aviachat/handlers"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterChatRoutes registers the wizard endpoints the widget calls.
func RegisterChatRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/chat")
	{
		api.POST("/message", hb.Message)
		api.POST("/select", hb.Select)
		api.POST("/continue", hb.Continue)
		api.POST("/back", hb.Back)
		api.POST("/passengers", hb.Passengers)
		api.POST("/confirm", hb.Confirm)
		api.POST("/reset", hb.Reset)
		api.GET("/transcript/:sessionID", hb.Transcript)
	}
}

// RegisterRoutes wires CORS for the widget origin and all route groups.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}
	origins := config.AppConfig.AllowedOrigins
	if origins == "" || origins == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = strings.Split(origins, ",")
	}
	r.Use(cors.New(corsCfg))

	RegisterChatRoutes(r, hb)
	r.GET("/health", hb.Health)
}
