package routes

import (
	"time"

	"vivaah/handlers"
	"vivaah/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func SetupRouter() *gin.Engine {
	router := gin.Default()

	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "Vivaah API is running",
			"time":    time.Now().Unix(),
			"ws":      "WebSocket available at /ws",
		})
	})

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:8080", "http://127.0.0.1:8080", "http://localhost:5500", "http://127.0.0.1:5500", "http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length", "Content-Type", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Auth; the limiter covers the unauthenticated endpoints only
	auth := router.Group("/api/auth")
	auth.POST("/register", middleware.RateLimitMiddleware(), handlers.Register)
	auth.POST("/login", middleware.RateLimitMiddleware(), handlers.Login)
	auth.POST("/google-login", middleware.RateLimitMiddleware(), handlers.GoogleLogin)
	auth.GET("/me", middleware.JWTAuthMiddleware(), handlers.Me)

	// Profiles: browsing is public, everything else requires auth
	profile := router.Group("/api/profile")
	profile.GET("/list", handlers.ListProfiles)
	profile.POST("/save", middleware.JWTAuthMiddleware(), handlers.SaveProfile)
	profile.GET("/me", middleware.JWTAuthMiddleware(), handlers.GetMyProfile)
	profile.DELETE("/", middleware.JWTAuthMiddleware(), handlers.DeleteProfile)
	profile.POST("/photos", middleware.JWTAuthMiddleware(), handlers.UploadPhoto)
	profile.GET("/:id", handlers.GetProfile)

	// Connection requests
	request := router.Group("/api/request")
	request.Use(middleware.JWTAuthMiddleware())
	request.POST("/send", handlers.SendRequest)
	request.GET("/received", handlers.GetReceivedRequests)
	request.GET("/sent", handlers.GetSentRequests)
	request.GET("/stats", handlers.GetRequestStats)
	request.GET("/connections/accepted", handlers.GetAcceptedConnections)
	request.PUT("/:requestId/status", handlers.UpdateRequestStatus)
	request.DELETE("/:requestId", handlers.DeleteRequest)

	// Messaging
	router.GET("/api/messages/vapid-public-key", handlers.GetVapidPublicKey)
	messages := router.Group("/api/messages")
	messages.Use(middleware.JWTAuthMiddleware())
	messages.GET("/conversations", handlers.GetConversations)
	messages.GET("/conversation/:conversationId", handlers.GetMessages)
	messages.POST("/start", handlers.StartConversation)
	messages.POST("/send", handlers.SendMessage)
	messages.POST("/subscribe", handlers.SubscribePush)

	// Dashboard
	dashboard := router.Group("/api/dashboard")
	dashboard.Use(middleware.JWTAuthMiddleware())
	dashboard.GET("/", handlers.GetDashboardData)
	dashboard.GET("/stats", handlers.GetDashboardStats)
	dashboard.GET("/recommended", handlers.GetRecommendedProfiles)
	dashboard.GET("/filters", handlers.GetQuickFilters)

	// Admin console
	admin := router.Group("/api/admin")
	admin.Use(middleware.JWTAuthMiddleware(), middleware.RequireAdmin())
	admin.GET("/stats", handlers.GetAdminStats)
	admin.GET("/users", handlers.ListUsers)
	admin.GET("/users/export", handlers.ExportUsers)
	admin.GET("/users/:userId", handlers.GetAdminUser)
	admin.PUT("/users/:userId", handlers.UpdateUser)
	admin.DELETE("/users/:userId", handlers.DeleteUser)
	admin.GET("/profiles", handlers.ListAdminProfiles)
	admin.PUT("/profiles/:profileId/verify", handlers.VerifyProfile)
	admin.PUT("/profiles/:profileId/photos/:photoId/moderate", handlers.ModeratePhoto)
	admin.GET("/requests", handlers.ListAdminRequests)
	admin.GET("/conversations", handlers.ListAdminConversations)
	admin.GET("/search", handlers.QuickSearch)

	// Catch-all for undefined API routes
	router.NoRoute(func(c *gin.Context) {
		if len(c.Request.URL.Path) >= 4 && c.Request.URL.Path[:4] == "/api" {
			c.JSON(404, gin.H{
				"error":   "Endpoint not found",
				"path":    c.Request.URL.Path,
				"message": "Check the API documentation for available endpoints",
			})
			return
		}
		c.Next()
	})

	return router
}
