package dto

import (
	"time"

	"storefront_backend/internal/models"
)

// ---------------- Requests ----------------

type CreateNotificationRequest struct {
	Type        models.NotificationType     `json:"type" validate:"required"`
	Title       string                      `json:"title" validate:"required,max=100"`
	Message     string                      `json:"message" validate:"omitempty,max=1000"`
	Category    models.NotificationCategory `json:"category" validate:"notifcategory"`
	Priority    models.NotificationPriority `json:"priority" validate:"notifpriority"`
	TargetType  models.TargetType           `json:"target_type"`
	TargetID    string                      `json:"target_id"`
	RecipientID *string                     `json:"recipient_id"` // nil means global
	Data        map[string]interface{}      `json:"data"`
	ExpiresAt   *time.Time                  `json:"expires_at"`
}

type MarkManyReadRequest struct {
	NotificationIDs []uint64 `json:"notification_ids" validate:"required,min=1"`
}

// ---------------- Responses ----------------

type NotificationListResponse struct {
	Notifications []models.Notification `json:"notifications"`
	Total         int64                 `json:"total"`
	Page          int                   `json:"page"`
	Limit         int                   `json:"limit"`
	TotalPages    int                   `json:"total_pages"`
}

type MutationResponse struct {
	Status  models.NotificationStatus `json:"status"`
	Changed bool                      `json:"changed"`
}
