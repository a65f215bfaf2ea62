package repositories

import (
	"errors"
	"time"

	"storefront_backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrNotificationNotFound = errors.New("notification not found")
)

// NotificationRepository is the persistence boundary for notification
// records. It is the only writer of status/read_at; every status write
// is a single conditional UPDATE so concurrent mutations of the same
// row linearize inside the database.
type NotificationRepository interface {
	Create(notification *models.Notification) error
	FindByID(id uint64) (*models.Notification, error)
	FindForRecipient(userID string, criteria NotificationCriteria) ([]models.Notification, int64, error)

	// Status mutations. Illegal transitions are no-ops: the current
	// (unchanged) status is returned with changed=false and a nil error.
	MarkRead(id uint64) (models.NotificationStatus, bool, error)
	MarkManyRead(ids []uint64) (int64, error)
	Archive(id uint64) (models.NotificationStatus, bool, error)
	Dismiss(id uint64) (models.NotificationStatus, bool, error)

	UnreadCount(userID string) (int64, error)
	Stats(userID string) (*NotificationStats, error)

	AppendAction(action *models.NotificationAction) error
	DeleteTerminalOlderThan(cutoff time.Time) (int64, error)
}

// NotificationCriteria filters a recipient's notification window.
type NotificationCriteria struct {
	Status        models.NotificationStatus   `form:"status" validate:"notifstatus"`
	ExcludeStatus models.NotificationStatus   `form:"exclude_status" validate:"notifstatus"`
	Category      models.NotificationCategory `form:"category" validate:"notifcategory"`
	Priority      models.NotificationPriority `form:"priority" validate:"notifpriority"`
	Type          models.NotificationType     `form:"type"`
	Page          int                         `form:"page"`
	PageSize      int                         `form:"limit"`
}

// NotificationStats backs the dashboard counters.
type NotificationStats struct {
	Total       int64                                  `json:"total"`
	UnreadCount int64                                  `json:"unread_count"`
	ReadCount   int64                                  `json:"read_count"`
	ByCategory  map[models.NotificationCategory]int64  `json:"by_category"`
	ByPriority  map[models.NotificationPriority]int64  `json:"by_priority"`
	ByStatus    map[models.NotificationStatus]int64    `json:"by_status"`
	TodayCount  int64                                  `json:"today_count"`
	WeekCount   int64                                  `json:"this_week_count"`
}

type NotificationRepositoryImpl struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &NotificationRepositoryImpl{db: db}
}

func (r *NotificationRepositoryImpl) Create(notification *models.Notification) error {
	if notification.Status == "" {
		notification.Status = models.StatusUnread
	}
	return r.db.Create(notification).Error
}

func (r *NotificationRepositoryImpl) FindByID(id uint64) (*models.Notification, error) {
	var notification models.Notification
	err := r.db.First(&notification, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotificationNotFound
		}
		return nil, err
	}
	return &notification, nil
}

// visibleTo scopes a query to records the identity may see: targeted at
// it, or global (recipient_id IS NULL).
func (r *NotificationRepositoryImpl) visibleTo(userID string) *gorm.DB {
	return r.db.Model(&models.Notification{}).
		Where("recipient_id = ? OR recipient_id IS NULL", userID)
}

func (r *NotificationRepositoryImpl) FindForRecipient(userID string, criteria NotificationCriteria) ([]models.Notification, int64, error) {
	query := r.visibleTo(userID)

	if criteria.Status != "" {
		query = query.Where("status = ?", criteria.Status)
	}
	if criteria.ExcludeStatus != "" {
		query = query.Where("status <> ?", criteria.ExcludeStatus)
	}
	if criteria.Category != "" {
		query = query.Where("category = ?", criteria.Category)
	}
	if criteria.Priority != "" {
		query = query.Where("priority = ?", criteria.Priority)
	}
	if criteria.Type != "" {
		query = query.Where("type = ?", criteria.Type)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit := criteria.PageSize
	offset := (criteria.Page - 1) * criteria.PageSize

	var notifications []models.Notification
	err := query.Order("created_at DESC, id DESC").
		Limit(limit).Offset(offset).
		Find(&notifications).Error

	return notifications, total, err
}

// transition performs one conditional status write. The WHERE clause
// carries the legal source states, so a lost race or an illegal call
// both fall through to "no rows affected" and report the current state.
func (r *NotificationRepositoryImpl) transition(id uint64, next models.NotificationStatus, from []models.NotificationStatus, updates map[string]interface{}) (models.NotificationStatus, bool, error) {
	result := r.db.Model(&models.Notification{}).
		Where("id = ? AND status IN ?", id, from).
		Updates(updates)

	if result.Error != nil {
		return "", false, result.Error
	}

	if result.RowsAffected > 0 {
		return next, true, nil
	}

	current, err := r.FindByID(id)
	if err != nil {
		return "", false, err
	}
	return current.Status, false, nil
}

func (r *NotificationRepositoryImpl) MarkRead(id uint64) (models.NotificationStatus, bool, error) {
	return r.transition(id, models.StatusRead,
		[]models.NotificationStatus{models.StatusUnread},
		map[string]interface{}{
			"status":  models.StatusRead,
			"read_at": time.Now(),
		})
}

func (r *NotificationRepositoryImpl) MarkManyRead(ids []uint64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	result := r.db.Model(&models.Notification{}).
		Where("id IN ? AND status = ?", ids, models.StatusUnread).
		Updates(map[string]interface{}{
			"status":  models.StatusRead,
			"read_at": time.Now(),
		})

	return result.RowsAffected, result.Error
}

func (r *NotificationRepositoryImpl) Archive(id uint64) (models.NotificationStatus, bool, error) {
	return r.transition(id, models.StatusArchived,
		[]models.NotificationStatus{models.StatusUnread, models.StatusRead},
		map[string]interface{}{"status": models.StatusArchived})
}

func (r *NotificationRepositoryImpl) Dismiss(id uint64) (models.NotificationStatus, bool, error) {
	return r.transition(id, models.StatusDismissed,
		[]models.NotificationStatus{models.StatusUnread, models.StatusRead},
		map[string]interface{}{"status": models.StatusDismissed})
}

func (r *NotificationRepositoryImpl) UnreadCount(userID string) (int64, error) {
	var count int64
	err := r.visibleTo(userID).
		Where("status = ?", models.StatusUnread).
		Count(&count).Error
	return count, err
}

func (r *NotificationRepositoryImpl) Stats(userID string) (*NotificationStats, error) {
	var stats NotificationStats
	now := time.Now()
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	weekStart := todayStart.AddDate(0, 0, -int(todayStart.Weekday()))

	if err := r.visibleTo(userID).Count(&stats.Total).Error; err != nil {
		return nil, err
	}

	if err := r.visibleTo(userID).Where("status = ?", models.StatusUnread).
		Count(&stats.UnreadCount).Error; err != nil {
		return nil, err
	}

	if err := r.visibleTo(userID).Where("status = ?", models.StatusRead).
		Count(&stats.ReadCount).Error; err != nil {
		return nil, err
	}

	if err := r.visibleTo(userID).Where("created_at >= ?", todayStart).
		Count(&stats.TodayCount).Error; err != nil {
		return nil, err
	}

	if err := r.visibleTo(userID).Where("created_at >= ?", weekStart).
		Count(&stats.WeekCount).Error; err != nil {
		return nil, err
	}

	stats.ByCategory = make(map[models.NotificationCategory]int64)
	var categoryRows []struct {
		Category models.NotificationCategory
		Count    int64
	}
	if err := r.visibleTo(userID).
		Select("category, COUNT(*) as count").
		Group("category").Scan(&categoryRows).Error; err != nil {
		return nil, err
	}
	for _, row := range categoryRows {
		stats.ByCategory[row.Category] = row.Count
	}

	stats.ByPriority = make(map[models.NotificationPriority]int64)
	var priorityRows []struct {
		Priority models.NotificationPriority
		Count    int64
	}
	if err := r.visibleTo(userID).
		Select("priority, COUNT(*) as count").
		Group("priority").Scan(&priorityRows).Error; err != nil {
		return nil, err
	}
	for _, row := range priorityRows {
		stats.ByPriority[row.Priority] = row.Count
	}

	stats.ByStatus = make(map[models.NotificationStatus]int64)
	var statusRows []struct {
		Status models.NotificationStatus
		Count  int64
	}
	if err := r.visibleTo(userID).
		Select("status, COUNT(*) as count").
		Group("status").Scan(&statusRows).Error; err != nil {
		return nil, err
	}
	for _, row := range statusRows {
		stats.ByStatus[row.Status] = row.Count
	}

	return &stats, nil
}

func (r *NotificationRepositoryImpl) AppendAction(action *models.NotificationAction) error {
	if action.PerformedAt.IsZero() {
		action.PerformedAt = time.Now()
	}
	return r.db.Create(action).Error
}

func (r *NotificationRepositoryImpl) DeleteTerminalOlderThan(cutoff time.Time) (int64, error) {
	result := r.db.
		Where("status IN ? AND created_at < ?",
			[]models.NotificationStatus{models.StatusArchived, models.StatusDismissed}, cutoff).
		Delete(&models.Notification{})
	return result.RowsAffected, result.Error
}
