package routes

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"clinic-assistant/config"
	"clinic-assistant/controllers"
	"clinic-assistant/database"
	"clinic-assistant/middleware"
	"clinic-assistant/services"
	"clinic-assistant/utils"
)

func SetupRoutes(router *gin.Engine, cfg *config.Config, store database.Store, table *utils.PatternTable) {
	// Initialize services
	chatbotService := services.NewChatbotService(store, table, cfg.Assistant.Clinic, cfg.Database.SessionTTL)
	whatsappService := services.NewWhatsAppService(cfg.WhatsApp)

	// Initialize controllers
	chatbotController := controllers.NewChatbotController(chatbotService)
	wsController := controllers.NewWebSocketController(chatbotService, cfg.Security.AllowedOrigins, cfg.Assistant.ReplyDelay)
	whatsappController := controllers.NewWhatsAppController(whatsappService, chatbotService, cfg.WhatsApp.VerifyToken)

	router.Use(middleware.CORS(cfg.Security.AllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		status, code := "ok", http.StatusOK
		if err := store.Ping(c.Request.Context()); err != nil {
			status, code = "degraded", http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{
			"status":              status,
			"timestamp":           time.Now(),
			"database":            cfg.Database.Type,
			"whatsapp_configured": cfg.WhatsAppEnabled(),
		})
	})

	public := router.Group("/api/v1")
	public.Use(middleware.RateLimit(cfg.Security.RateLimitPerMin))
	{
		public.POST("/chat", chatbotController.HandleChat)
		public.GET("/intents", chatbotController.GetSupportedIntents)
		public.GET("/sessions/:id/messages", chatbotController.GetChatHistory)
		public.DELETE("/sessions/:id", chatbotController.ClearSession)

		// WebSocket for real-time chat
		public.GET("/ws", wsController.HandleWebSocket)
	}

	whatsapp := router.Group("/api/whatsapp")
	{
		whatsapp.GET("/webhook", whatsappController.VerifyWebhook)

		webhook := []gin.HandlerFunc{whatsappController.HandleWebhook}
		if cfg.WhatsApp.AppSecret != "" {
			webhook = append([]gin.HandlerFunc{middleware.VerifyWhatsAppSignature(cfg.WhatsApp.AppSecret)}, webhook...)
		}
		whatsapp.POST("/webhook", webhook...)

		admin := whatsapp.Group("/admin")
		admin.Use(middleware.RateLimit(cfg.Security.RateLimitPerMin))
		{
			admin.POST("/send", whatsappController.SendMessage)
			admin.GET("/status", whatsappController.GetStatus)
		}
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Route not found",
			"path":  c.Request.URL.Path,
		})
	})
}
