package handlers

import (
	"net/http"

	"storefront_backend/internal/repositories"
	"storefront_backend/internal/services"
	"storefront_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

// NotificationHandler exposes the notification REST surface. The list
// and counter endpoints back the panel's initial load and recovery
// paths; status mutations mirror the socket commands for clients
// without a live connection.
type NotificationHandler struct {
	*BaseHandler
	service services.NotificationService
}

func NewNotificationHandler(base *BaseHandler, service services.NotificationService) *NotificationHandler {
	return &NotificationHandler{
		BaseHandler: base,
		service:     service,
	}
}

// List handles GET /notifications with status, exclude_status,
// category, priority, type, page and limit filters.
func (h *NotificationHandler) List(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var criteria repositories.NotificationCriteria
	if !h.BindAndValidateQuery(c, &criteria) {
		return
	}

	resp, err := h.service.List(userID, criteria)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.RespondOK(c, resp)
}

// Get handles GET /notifications/:id.
func (h *NotificationHandler) Get(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	id, ok := h.ParseIDParam(c)
	if !ok {
		return
	}

	notification, err := h.service.Get(userID, id)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.RespondOK(c, notification)
}

// Create handles POST /notifications. Used by internal producers and
// ops tooling rather than the panel itself.
func (h *NotificationHandler) Create(c *gin.Context) {
	if _, ok := h.GetAndAuthorizeUserID(c); !ok {
		return
	}

	var req dto.CreateNotificationRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}

	notification, err := h.service.Create(&req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, notification)
}

// UnreadCount handles GET /notifications/unread-count.
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	count, err := h.service.UnreadCount(userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.RespondOK(c, dto.UnreadCountPayload{Count: count})
}

// Stats handles GET /notifications/stats.
func (h *NotificationHandler) Stats(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	stats, err := h.service.Stats(userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.RespondOK(c, stats)
}

// MarkRead handles PUT /notifications/:id/read.
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	h.mutate(c, h.service.MarkRead)
}

// Archive handles PUT /notifications/:id/archive.
func (h *NotificationHandler) Archive(c *gin.Context) {
	h.mutate(c, h.service.Archive)
}

// Dismiss handles PUT /notifications/:id/dismiss.
func (h *NotificationHandler) Dismiss(c *gin.Context) {
	h.mutate(c, h.service.Dismiss)
}

func (h *NotificationHandler) mutate(c *gin.Context, op func(string, uint64) (*dto.MutationResponse, error)) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	id, ok := h.ParseIDParam(c)
	if !ok {
		return
	}

	resp, err := op(userID, id)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.RespondOK(c, resp)
}

// MarkManyRead handles PUT /notifications/read-multiple.
func (h *NotificationHandler) MarkManyRead(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.MarkManyReadRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}

	if err := h.service.MarkManyRead(userID, req.NotificationIDs); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.RespondOK(c, gin.H{"success": true})
}
