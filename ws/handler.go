package ws

import (
	"net/http"
	"strings"
	"time"

	"storefront_backend/internal/auth"
	"storefront_backend/internal/config"
	"storefront_backend/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The admin panel is served from its own origin; the token is the
	// access control, not the Origin header.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handler upgrades authenticated HTTP requests into live notification
// sessions.
type Handler struct {
	hub      *Hub
	commands NotificationCommands
}

func NewHandler(hub *Hub, commands NotificationCommands) *Handler {
	return &Handler{hub: hub, commands: commands}
}

// Serve authenticates the request and hands the connection to a
// session. Browsers cannot set headers on websocket dials, so the token
// is accepted from the query string as well as the Authorization header.
func (h *Handler) Serve(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		header := c.GetHeader("Authorization")
		token = strings.TrimPrefix(header, "Bearer ")
	}
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	claims, err := auth.ParseToken(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}
	if !auth.HasAdminCapability(claims.Role) {
		c.JSON(http.StatusForbidden, gin.H{"error": "insufficient permissions"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error response.
		logger.Warn("websocket upgrade failed", "user_id", claims.UserID, "error", err)
		return
	}

	cfg := config.GetConfig()
	session := NewSession(h.hub, conn, claims.UserID, h.commands, Options{
		SendBufferSize: cfg.Realtime.SendBufferSize,
		PingInterval:   time.Duration(cfg.Realtime.PingIntervalSec) * time.Second,
		ReadTimeout:    time.Duration(cfg.Realtime.ReadTimeoutSec) * time.Second,
	})
	session.Start()

	logger.Info("notification session opened",
		"user_id", claims.UserID, "session_id", session.ID)
}
