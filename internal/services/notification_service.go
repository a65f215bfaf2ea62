package services

import (
	"encoding/json"
	"fmt"

	"storefront_backend/internal/models"
	"storefront_backend/internal/repositories"
	"storefront_backend/internal/services/dto"

	"gorm.io/datatypes"
)

// NotificationService owns notification business logic: creation with
// live dispatch, status mutations (visibility-checked, no-op on illegal
// transitions), counters and stats, and the producer helpers the
// business-event sources call.
type NotificationService interface {
	Create(req *dto.CreateNotificationRequest) (*models.Notification, error)
	Get(userID string, id uint64) (*models.Notification, error)
	List(userID string, criteria repositories.NotificationCriteria) (*dto.NotificationListResponse, error)

	MarkRead(userID string, id uint64) (*dto.MutationResponse, error)
	MarkManyRead(userID string, ids []uint64) error
	Archive(userID string, id uint64) (*dto.MutationResponse, error)
	Dismiss(userID string, id uint64) (*dto.MutationResponse, error)
	RecordAction(userID string, id uint64, actionType string, actionData map[string]interface{}) error

	UnreadCount(userID string) (int64, error)
	Stats(userID string) (*repositories.NotificationStats, error)

	// Producer helpers for the business-event sources.
	NotifyOrderPlaced(orderID, orderNumber string, total float64) error
	NotifyProductReview(productID, reviewID, productName string, rating int) error
	NotifyProductQuestion(productID, questionID, productName string) error
	NotifyReviewReply(recipientID, reviewID, replyID string) error
	NotifyLowStock(productID, productName string, quantity, threshold int) error
}

type notificationService struct {
	notificationRepo repositories.NotificationRepository
	dispatcher       *EventDispatcher
}

func NewNotificationService(
	notificationRepo repositories.NotificationRepository,
	dispatcher *EventDispatcher,
) NotificationService {
	return &notificationService{
		notificationRepo: notificationRepo,
		dispatcher:       dispatcher,
	}
}

// ---------------- Creation & dispatch ----------------

func (s *notificationService) Create(req *dto.CreateNotificationRequest) (*models.Notification, error) {
	var dataJSON datatypes.JSON
	if req.Data != nil {
		raw, err := json.Marshal(req.Data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal notification data: %w", err)
		}
		dataJSON = datatypes.JSON(raw)
	}

	category := req.Category
	if category == "" {
		category = models.CategoryGeneral
	}
	priority := req.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}

	notification := &models.Notification{
		Type:        req.Type,
		Title:       req.Title,
		Message:     req.Message,
		Category:    category,
		Priority:    priority,
		Status:      models.StatusUnread,
		TargetType:  req.TargetType,
		TargetID:    req.TargetID,
		RecipientID: req.RecipientID,
		Data:        dataJSON,
		ExpiresAt:   req.ExpiresAt,
	}

	if err := s.notificationRepo.Create(notification); err != nil {
		return nil, err
	}

	// Push only after the record is durable. If nobody is connected the
	// push is silently skipped; the record is fetchable over REST.
	if s.dispatcher != nil {
		s.dispatcher.Dispatch(notification)
	}

	return notification, nil
}

// ---------------- Reads ----------------

func (s *notificationService) Get(userID string, id uint64) (*models.Notification, error) {
	notification, err := s.notificationRepo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if !notification.VisibleTo(userID) {
		// Hide other identities' notifications, same as absent rows.
		return nil, repositories.ErrNotificationNotFound
	}
	return notification, nil
}

func (s *notificationService) List(userID string, criteria repositories.NotificationCriteria) (*dto.NotificationListResponse, error) {
	if criteria.Page < 1 {
		criteria.Page = 1
	}
	if criteria.PageSize < 1 {
		criteria.PageSize = 20
	}

	notifications, total, err := s.notificationRepo.FindForRecipient(userID, criteria)
	if err != nil {
		return nil, err
	}

	return &dto.NotificationListResponse{
		Notifications: notifications,
		Total:         total,
		Page:          criteria.Page,
		Limit:         criteria.PageSize,
		TotalPages:    calculateTotalPages(total, criteria.PageSize),
	}, nil
}

// ---------------- Mutations ----------------

// checkVisible loads the record and enforces recipient scoping before
// any mutation.
func (s *notificationService) checkVisible(userID string, id uint64) error {
	notification, err := s.notificationRepo.FindByID(id)
	if err != nil {
		return err
	}
	if !notification.VisibleTo(userID) {
		return repositories.ErrNotificationNotFound
	}
	return nil
}

func (s *notificationService) MarkRead(userID string, id uint64) (*dto.MutationResponse, error) {
	if err := s.checkVisible(userID, id); err != nil {
		return nil, err
	}

	status, changed, err := s.notificationRepo.MarkRead(id)
	if err != nil {
		return nil, err
	}
	return &dto.MutationResponse{Status: status, Changed: changed}, nil
}

func (s *notificationService) MarkManyRead(userID string, ids []uint64) error {
	// Mutating an id that is not visible must not succeed silently for
	// some and fail for others: validate the whole set first.
	for _, id := range ids {
		if err := s.checkVisible(userID, id); err != nil {
			return err
		}
	}
	_, err := s.notificationRepo.MarkManyRead(ids)
	return err
}

func (s *notificationService) Archive(userID string, id uint64) (*dto.MutationResponse, error) {
	if err := s.checkVisible(userID, id); err != nil {
		return nil, err
	}

	status, changed, err := s.notificationRepo.Archive(id)
	if err != nil {
		return nil, err
	}
	return &dto.MutationResponse{Status: status, Changed: changed}, nil
}

func (s *notificationService) Dismiss(userID string, id uint64) (*dto.MutationResponse, error) {
	if err := s.checkVisible(userID, id); err != nil {
		return nil, err
	}

	status, changed, err := s.notificationRepo.Dismiss(id)
	if err != nil {
		return nil, err
	}
	return &dto.MutationResponse{Status: status, Changed: changed}, nil
}

func (s *notificationService) RecordAction(userID string, id uint64, actionType string, actionData map[string]interface{}) error {
	if err := s.checkVisible(userID, id); err != nil {
		return err
	}
	if actionType == "" {
		return fmt.Errorf("action type is required")
	}

	// The audit trail records who performed which action and when; any
	// extra payload the client attaches is not persisted.
	return s.notificationRepo.AppendAction(&models.NotificationAction{
		NotificationID: id,
		ActionType:     actionType,
		PerformedBy:    userID,
	})
}

// ---------------- Counters ----------------

func (s *notificationService) UnreadCount(userID string) (int64, error) {
	return s.notificationRepo.UnreadCount(userID)
}

func (s *notificationService) Stats(userID string) (*repositories.NotificationStats, error) {
	return s.notificationRepo.Stats(userID)
}

// ---------------- Producer helpers ----------------

func (s *notificationService) NotifyOrderPlaced(orderID, orderNumber string, total float64) error {
	_, err := s.Create(&dto.CreateNotificationRequest{
		Type:       models.TypeOrderPlaced,
		Title:      "New order received",
		Message:    fmt.Sprintf("Order %s was placed for %.2f", orderNumber, total),
		Category:   models.CategoryOrders,
		Priority:   models.PriorityHigh,
		TargetType: models.TargetOrder,
		TargetID:   orderID,
		Data:       map[string]interface{}{"order_id": orderID, "order_number": orderNumber},
	})
	return err
}

func (s *notificationService) NotifyProductReview(productID, reviewID, productName string, rating int) error {
	_, err := s.Create(&dto.CreateNotificationRequest{
		Type:       models.TypeProductReview,
		Title:      "New product review",
		Message:    fmt.Sprintf("%s received a %d-star review", productName, rating),
		Category:   models.CategoryProducts,
		Priority:   models.PriorityMedium,
		TargetType: models.TargetReview,
		TargetID:   reviewID,
		Data:       map[string]interface{}{"product_id": productID, "review_id": reviewID, "rating": rating},
	})
	return err
}

func (s *notificationService) NotifyProductQuestion(productID, questionID, productName string) error {
	_, err := s.Create(&dto.CreateNotificationRequest{
		Type:       models.TypeProductQuestion,
		Title:      "New product question",
		Message:    fmt.Sprintf("A customer asked a question about %s", productName),
		Category:   models.CategorySupport,
		Priority:   models.PriorityMedium,
		TargetType: models.TargetQuestion,
		TargetID:   questionID,
		Data:       map[string]interface{}{"product_id": productID, "question_id": questionID},
	})
	return err
}

func (s *notificationService) NotifyReviewReply(recipientID, reviewID, replyID string) error {
	_, err := s.Create(&dto.CreateNotificationRequest{
		Type:        models.TypeReviewReply,
		Title:       "Reply posted to review",
		Message:     "A reply was posted to a review you follow",
		Category:    models.CategoryProducts,
		Priority:    models.PriorityLow,
		TargetType:  models.TargetReview,
		TargetID:    reviewID,
		RecipientID: &recipientID,
		Data:        map[string]interface{}{"review_id": reviewID, "reply_id": replyID},
	})
	return err
}

func (s *notificationService) NotifyLowStock(productID, productName string, quantity, threshold int) error {
	priority := models.PriorityUrgent
	if quantity == 0 {
		priority = models.PriorityCritical
	}

	_, err := s.Create(&dto.CreateNotificationRequest{
		Type:       models.TypeLowStockAlert,
		Title:      "Low stock alert",
		Message:    fmt.Sprintf("%s is down to %d units (threshold %d)", productName, quantity, threshold),
		Category:   models.CategoryInventory,
		Priority:   priority,
		TargetType: models.TargetProduct,
		TargetID:   productID,
		Data:       map[string]interface{}{"product_id": productID, "quantity": quantity, "threshold": threshold},
	})
	return err
}

// ---------------- Helpers ----------------

func calculateTotalPages(total int64, pageSize int) int {
	if pageSize <= 0 {
		return 0
	}
	pages := int(total) / pageSize
	if int(total)%pageSize != 0 {
		pages++
	}
	return pages
}
