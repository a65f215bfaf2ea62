package services

import (
	"testing"
	"time"

	"storefront_backend/internal/models"
	"storefront_backend/internal/repositories"
	"storefront_backend/internal/services/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeNotificationRepo struct {
	nextID  uint64
	byID    map[uint64]*models.Notification
	actions []*models.NotificationAction
}

func newFakeNotificationRepo() *fakeNotificationRepo {
	return &fakeNotificationRepo{
		nextID: 1,
		byID:   make(map[uint64]*models.Notification),
	}
}

func (r *fakeNotificationRepo) Create(n *models.Notification) error {
	n.ID = r.nextID
	r.nextID++
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	stored := *n
	r.byID[n.ID] = &stored
	return nil
}

func (r *fakeNotificationRepo) FindByID(id uint64) (*models.Notification, error) {
	n, ok := r.byID[id]
	if !ok {
		return nil, repositories.ErrNotificationNotFound
	}
	copied := *n
	return &copied, nil
}

func (r *fakeNotificationRepo) FindForRecipient(userID string, criteria repositories.NotificationCriteria) ([]models.Notification, int64, error) {
	var out []models.Notification
	for _, n := range r.byID {
		if n.VisibleTo(userID) {
			out = append(out, *n)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeNotificationRepo) transition(id uint64, next models.NotificationStatus) (models.NotificationStatus, bool, error) {
	n, ok := r.byID[id]
	if !ok {
		return "", false, repositories.ErrNotificationNotFound
	}
	if !n.Status.CanTransitionTo(next) {
		return n.Status, false, nil
	}
	n.Status = next
	return next, true, nil
}

func (r *fakeNotificationRepo) MarkRead(id uint64) (models.NotificationStatus, bool, error) {
	return r.transition(id, models.StatusRead)
}

func (r *fakeNotificationRepo) MarkManyRead(ids []uint64) (int64, error) {
	var changed int64
	for _, id := range ids {
		if _, ok, _ := r.transition(id, models.StatusRead); ok {
			changed++
		}
	}
	return changed, nil
}

func (r *fakeNotificationRepo) Archive(id uint64) (models.NotificationStatus, bool, error) {
	return r.transition(id, models.StatusArchived)
}

func (r *fakeNotificationRepo) Dismiss(id uint64) (models.NotificationStatus, bool, error) {
	return r.transition(id, models.StatusDismissed)
}

func (r *fakeNotificationRepo) UnreadCount(userID string) (int64, error) {
	var count int64
	for _, n := range r.byID {
		if n.VisibleTo(userID) && n.Status == models.StatusUnread {
			count++
		}
	}
	return count, nil
}

func (r *fakeNotificationRepo) Stats(string) (*repositories.NotificationStats, error) {
	return &repositories.NotificationStats{}, nil
}

func (r *fakeNotificationRepo) AppendAction(a *models.NotificationAction) error {
	r.actions = append(r.actions, a)
	return nil
}

func (r *fakeNotificationRepo) DeleteTerminalOlderThan(cutoff time.Time) (int64, error) {
	var deleted int64
	for id, n := range r.byID {
		if n.Status.Terminal() && n.CreatedAt.Before(cutoff) {
			delete(r.byID, id)
			deleted++
		}
	}
	return deleted, nil
}

func newServiceUnderTest() (NotificationService, *fakeNotificationRepo, *fakeRegistry) {
	repo := newFakeNotificationRepo()
	users := &fakeUserRepo{admins: []models.User{
		adminUser("admin-1", "a1@example.com"),
	}}
	registry := newFakeRegistry("admin-1")
	dispatcher := NewEventDispatcher(registry, users, nil)
	return NewNotificationService(repo, dispatcher), repo, registry
}

func TestCreateAppliesDefaultsAndDispatches(t *testing.T) {
	svc, repo, registry := newServiceUnderTest()

	created, err := svc.Create(&dto.CreateNotificationRequest{
		Type:  models.TypeOrderPlaced,
		Title: "New order",
	})
	require.NoError(t, err)

	assert.Equal(t, models.CategoryGeneral, created.Category)
	assert.Equal(t, models.PriorityMedium, created.Priority)
	assert.Equal(t, models.StatusUnread, created.Status)

	stored, err := repo.FindByID(created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Title, stored.Title)

	// Durable write precedes the push, and the push happened.
	require.Len(t, registry.sent["admin-1"], 1)
	assert.Equal(t, dto.EventNewNotification, registry.sent["admin-1"][0].Event)
}

func TestGetHidesOtherRecipientsNotifications(t *testing.T) {
	svc, _, _ := newServiceUnderTest()

	recipient := "admin-1"
	created, err := svc.Create(&dto.CreateNotificationRequest{
		Type:        models.TypeReviewReply,
		Title:       "Reply",
		RecipientID: &recipient,
	})
	require.NoError(t, err)

	_, err = svc.Get("someone-else", created.ID)
	assert.ErrorIs(t, err, repositories.ErrNotificationNotFound)

	got, err := svc.Get("admin-1", created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
}

func TestMarkReadTwiceIsNoOp(t *testing.T) {
	svc, _, _ := newServiceUnderTest()

	created, err := svc.Create(&dto.CreateNotificationRequest{
		Type:  models.TypeOrderPlaced,
		Title: "New order",
	})
	require.NoError(t, err)

	first, err := svc.MarkRead("admin-1", created.ID)
	require.NoError(t, err)
	assert.True(t, first.Changed)
	assert.Equal(t, models.StatusRead, first.Status)

	second, err := svc.MarkRead("admin-1", created.ID)
	require.NoError(t, err)
	assert.False(t, second.Changed)
	assert.Equal(t, models.StatusRead, second.Status)
}

func TestArchivedNotificationRejectsFurtherTransitions(t *testing.T) {
	svc, _, _ := newServiceUnderTest()

	created, err := svc.Create(&dto.CreateNotificationRequest{
		Type:  models.TypeProductReview,
		Title: "Review",
	})
	require.NoError(t, err)

	archived, err := svc.Archive("admin-1", created.ID)
	require.NoError(t, err)
	assert.True(t, archived.Changed)

	// Terminal state: both further moves fall through as no-ops.
	dismissed, err := svc.Dismiss("admin-1", created.ID)
	require.NoError(t, err)
	assert.False(t, dismissed.Changed)
	assert.Equal(t, models.StatusArchived, dismissed.Status)

	read, err := svc.MarkRead("admin-1", created.ID)
	require.NoError(t, err)
	assert.False(t, read.Changed)
	assert.Equal(t, models.StatusArchived, read.Status)
}

func TestMarkManyReadRejectsInvisibleIDs(t *testing.T) {
	svc, _, _ := newServiceUnderTest()

	mine, err := svc.Create(&dto.CreateNotificationRequest{
		Type:  models.TypeOrderPlaced,
		Title: "Mine",
	})
	require.NoError(t, err)

	other := "someone-else"
	theirs, err := svc.Create(&dto.CreateNotificationRequest{
		Type:        models.TypeReviewReply,
		Title:       "Theirs",
		RecipientID: &other,
	})
	require.NoError(t, err)

	err = svc.MarkManyRead("admin-1", []uint64{mine.ID, theirs.ID})
	assert.ErrorIs(t, err, repositories.ErrNotificationNotFound)

	// The visible one must not have been flipped by the failed batch.
	got, err := svc.Get("admin-1", mine.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusUnread, got.Status)
}

func TestRecordActionAppendsAuditWithoutStatusChange(t *testing.T) {
	svc, repo, _ := newServiceUnderTest()

	created, err := svc.Create(&dto.CreateNotificationRequest{
		Type:  models.TypeProductQuestion,
		Title: "Question",
	})
	require.NoError(t, err)

	err = svc.RecordAction("admin-1", created.ID, "replied", map[string]interface{}{"answer_id": 12})
	require.NoError(t, err)

	require.Len(t, repo.actions, 1)
	assert.Equal(t, "replied", repo.actions[0].ActionType)
	assert.Equal(t, "admin-1", repo.actions[0].PerformedBy)

	got, err := svc.Get("admin-1", created.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusUnread, got.Status)
}

func TestRecordActionRequiresActionType(t *testing.T) {
	svc, _, _ := newServiceUnderTest()

	created, err := svc.Create(&dto.CreateNotificationRequest{
		Type:  models.TypeProductQuestion,
		Title: "Question",
	})
	require.NoError(t, err)

	err = svc.RecordAction("admin-1", created.ID, "", nil)
	assert.Error(t, err)
}

func TestLowStockPriorityEscalatesAtZero(t *testing.T) {
	svc, repo, _ := newServiceUnderTest()

	require.NoError(t, svc.NotifyLowStock("p-1", "Widget", 3, 5))
	require.NoError(t, svc.NotifyLowStock("p-2", "Gadget", 0, 5))

	var widget, gadget *models.Notification
	for _, n := range repo.byID {
		switch n.TargetID {
		case "p-1":
			widget = n
		case "p-2":
			gadget = n
		}
	}
	require.NotNil(t, widget)
	require.NotNil(t, gadget)

	assert.Equal(t, models.PriorityUrgent, widget.Priority)
	assert.Equal(t, models.PriorityCritical, gadget.Priority)
}
