package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusTransitions(t *testing.T) {
	tests := []struct {
		name    string
		from    NotificationStatus
		to      NotificationStatus
		allowed bool
	}{
		{"unread to read", StatusUnread, StatusRead, true},
		{"unread to archived", StatusUnread, StatusArchived, true},
		{"unread to dismissed", StatusUnread, StatusDismissed, true},
		{"read to archived", StatusRead, StatusArchived, true},
		{"read to dismissed", StatusRead, StatusDismissed, true},

		{"read back to unread", StatusRead, StatusUnread, false},
		{"read to read", StatusRead, StatusRead, false},
		{"archived to read", StatusArchived, StatusRead, false},
		{"archived to dismissed", StatusArchived, StatusDismissed, false},
		{"dismissed to archived", StatusDismissed, StatusArchived, false},
		{"dismissed to unread", StatusDismissed, StatusUnread, false},
		{"unread to unread", StatusUnread, StatusUnread, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestStatusTerminal(t *testing.T) {
	assert.False(t, StatusUnread.Terminal())
	assert.False(t, StatusRead.Terminal())
	assert.True(t, StatusArchived.Terminal())
	assert.True(t, StatusDismissed.Terminal())
}

func TestPriorityRank(t *testing.T) {
	assert.Less(t, PriorityLow.Rank(), PriorityMedium.Rank())
	assert.Less(t, PriorityMedium.Rank(), PriorityHigh.Rank())
	assert.Less(t, PriorityHigh.Rank(), PriorityUrgent.Rank())
	assert.Less(t, PriorityUrgent.Rank(), PriorityCritical.Rank())
	assert.Equal(t, -1, NotificationPriority("BOGUS").Rank())
}

func TestTypeValid(t *testing.T) {
	for _, typ := range []NotificationType{
		TypeOrderPlaced, TypeProductReview, TypeProductQuestion,
		TypeReviewReply, TypeLowStockAlert,
	} {
		assert.True(t, typ.Valid(), string(typ))
	}
	assert.False(t, NotificationType("SOMETHING_ELSE").Valid())
}

func TestNotificationVisibility(t *testing.T) {
	userA := "2f5c9f5e-0000-0000-0000-000000000001"
	userB := "2f5c9f5e-0000-0000-0000-000000000002"

	global := &Notification{}
	assert.True(t, global.IsGlobal())
	assert.True(t, global.VisibleTo(userA))
	assert.True(t, global.VisibleTo(userB))

	targeted := &Notification{RecipientID: &userA}
	assert.False(t, targeted.IsGlobal())
	assert.True(t, targeted.VisibleTo(userA))
	assert.False(t, targeted.VisibleTo(userB))
}
