package routes

import (
	"storefront_backend/internal/auth"
	"storefront_backend/internal/handlers"
	"storefront_backend/internal/middleware"
	"storefront_backend/ws"

	"github.com/gin-gonic/gin"
)

// Register mounts the REST surface and the websocket endpoint.
func Register(
	r *gin.Engine,
	authHandler *handlers.AuthHandler,
	notificationHandler *handlers.NotificationHandler,
	wsHandler *ws.Handler,
) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := r.Group("/api/v1")

	api.POST("/auth/login", authHandler.Login)

	// Token travels in the query string for the websocket handshake, so
	// the route sits outside the header-based auth middleware.
	api.GET("/ws/notifications", wsHandler.Serve)

	authorized := api.Group("")
	authorized.Use(middleware.AuthMiddleware(), middleware.RequireAdminCapability())
	{
		authorized.POST("/users", middleware.RoleMiddleware(auth.RoleAdmin), authHandler.CreateUser)

		notifications := authorized.Group("/notifications")
		{
			notifications.GET("", notificationHandler.List)
			notifications.POST("", notificationHandler.Create)
			notifications.GET("/unread-count", notificationHandler.UnreadCount)
			notifications.GET("/stats", notificationHandler.Stats)
			notifications.PUT("/read-multiple", notificationHandler.MarkManyRead)
			notifications.GET("/:id", notificationHandler.Get)
			notifications.PUT("/:id/read", notificationHandler.MarkRead)
			notifications.PUT("/:id/archive", notificationHandler.Archive)
			notifications.PUT("/:id/dismiss", notificationHandler.Dismiss)
		}
	}
}
