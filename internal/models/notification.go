package models

import (
	"time"

	"gorm.io/datatypes"
)

// NotificationType is a closed set: client-side navigation routes on
// it, so every value added here needs a route in the admin client.
type NotificationType string

const (
	TypeOrderPlaced     NotificationType = "ORDER_PLACED"
	TypeProductReview   NotificationType = "PRODUCT_REVIEW"
	TypeProductQuestion NotificationType = "PRODUCT_QUESTION"
	TypeReviewReply     NotificationType = "REVIEW_REPLY"
	TypeLowStockAlert   NotificationType = "LOW_STOCK_ALERT"
)

func (t NotificationType) Valid() bool {
	switch t {
	case TypeOrderPlaced, TypeProductReview, TypeProductQuestion,
		TypeReviewReply, TypeLowStockAlert:
		return true
	}
	return false
}

type NotificationCategory string

const (
	CategoryOrders    NotificationCategory = "ORDERS"
	CategoryProducts  NotificationCategory = "PRODUCTS"
	CategoryCustomers NotificationCategory = "CUSTOMERS"
	CategoryInventory NotificationCategory = "INVENTORY"
	CategoryFinancial NotificationCategory = "FINANCIAL"
	CategorySystem    NotificationCategory = "SYSTEM"
	CategorySecurity  NotificationCategory = "SECURITY"
	CategoryMarketing NotificationCategory = "MARKETING"
	CategorySupport   NotificationCategory = "SUPPORT"
	CategoryGeneral   NotificationCategory = "GENERAL"
)

func (c NotificationCategory) Valid() bool {
	switch c {
	case CategoryOrders, CategoryProducts, CategoryCustomers, CategoryInventory,
		CategoryFinancial, CategorySystem, CategorySecurity, CategoryMarketing,
		CategorySupport, CategoryGeneral:
		return true
	}
	return false
}

// NotificationPriority drives toast duration and visual weight only.
// It never affects delivery order.
type NotificationPriority string

const (
	PriorityLow      NotificationPriority = "LOW"
	PriorityMedium   NotificationPriority = "MEDIUM"
	PriorityHigh     NotificationPriority = "HIGH"
	PriorityUrgent   NotificationPriority = "URGENT"
	PriorityCritical NotificationPriority = "CRITICAL"
)

func (p NotificationPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent, PriorityCritical:
		return true
	}
	return false
}

// Rank gives the ordinal severity: LOW < MEDIUM < HIGH < URGENT < CRITICAL.
func (p NotificationPriority) Rank() int {
	switch p {
	case PriorityLow:
		return 0
	case PriorityMedium:
		return 1
	case PriorityHigh:
		return 2
	case PriorityUrgent:
		return 3
	case PriorityCritical:
		return 4
	}
	return -1
}

// NotificationStatus is the finite state of a notification:
//
//	UNREAD -> READ -> {ARCHIVED, DISMISSED}
//	UNREAD ---------> {ARCHIVED, DISMISSED}
//
// ARCHIVED and DISMISSED are terminal. Transitions are monotonic:
// nothing ever moves back toward UNREAD.
type NotificationStatus string

const (
	StatusUnread    NotificationStatus = "UNREAD"
	StatusRead      NotificationStatus = "READ"
	StatusArchived  NotificationStatus = "ARCHIVED"
	StatusDismissed NotificationStatus = "DISMISSED"
)

func (s NotificationStatus) Valid() bool {
	switch s {
	case StatusUnread, StatusRead, StatusArchived, StatusDismissed:
		return true
	}
	return false
}

func (s NotificationStatus) Terminal() bool {
	return s == StatusArchived || s == StatusDismissed
}

// CanTransitionTo enforces the state machine. Illegal transitions are
// treated as no-ops by both the server mutation endpoints and the
// client's optimistic apply, so this is the single source of truth.
func (s NotificationStatus) CanTransitionTo(next NotificationStatus) bool {
	if s.Terminal() {
		return false
	}
	switch next {
	case StatusRead:
		return s == StatusUnread
	case StatusArchived, StatusDismissed:
		return s == StatusUnread || s == StatusRead
	}
	return false
}

// TargetType identifies what a notification points at for click-through
// navigation. Opaque to the delivery layer.
type TargetType string

const (
	TargetOrder    TargetType = "ORDER"
	TargetProduct  TargetType = "PRODUCT"
	TargetCustomer TargetType = "CUSTOMER"
	TargetReview   TargetType = "REVIEW"
	TargetQuestion TargetType = "QUESTION"
)

// Notification is the durable server-owned record. Everything except
// Status and ReadAt is immutable after creation. IDs are bigserial so
// they double as a dedup key and a recency tiebreaker on the client.
type Notification struct {
	ID          uint64               `gorm:"primaryKey;autoIncrement" json:"id"`
	Type        NotificationType     `gorm:"not null;index" json:"type"`
	Title       string               `gorm:"not null" json:"title"`
	Message     string               `json:"message"`
	Category    NotificationCategory `gorm:"not null;default:'GENERAL';index" json:"category"`
	Priority    NotificationPriority `gorm:"not null;default:'MEDIUM'" json:"priority"`
	Status      NotificationStatus   `gorm:"not null;default:'UNREAD';index" json:"status"`
	TargetType  TargetType           `json:"target_type,omitempty"`
	TargetID    string               `json:"target_id,omitempty"`
	RecipientID *string              `gorm:"type:uuid;index" json:"recipient_id,omitempty"`
	Data        datatypes.JSON       `gorm:"type:jsonb" json:"data,omitempty"` // deep-link ids, e.g. {"review_id": 7, "reply_id": 12}
	ReadAt      *time.Time           `json:"read_at,omitempty"`
	ExpiresAt   *time.Time           `json:"expires_at,omitempty"` // informational, not enforced here
	CreatedAt   time.Time            `gorm:"default:now();index" json:"created_at"`
	UpdatedAt   time.Time            `gorm:"autoUpdateTime" json:"updated_at"`

	Actions []NotificationAction `gorm:"foreignKey:NotificationID;constraint:OnDelete:CASCADE" json:"actions,omitempty"`
}

// IsGlobal reports whether the notification is visible to every
// identity with the admin capability.
func (n *Notification) IsGlobal() bool {
	return n.RecipientID == nil
}

// VisibleTo reports whether the given identity may see this record.
func (n *Notification) VisibleTo(userID string) bool {
	return n.RecipientID == nil || *n.RecipientID == userID
}

// NotificationAction is an append-only audit entry. It never mutates
// the parent's status.
type NotificationAction struct {
	ID             uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	NotificationID uint64    `gorm:"not null;index" json:"notification_id"`
	ActionType     string    `gorm:"not null" json:"action_type"`
	PerformedBy    string    `gorm:"type:uuid;not null" json:"performed_by"`
	PerformedAt    time.Time `gorm:"default:now()" json:"performed_at"`
}
