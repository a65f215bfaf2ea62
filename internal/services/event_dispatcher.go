package services

import (
	"fmt"

	"storefront_backend/internal/email"
	"storefront_backend/internal/logger"
	"storefront_backend/internal/models"
	"storefront_backend/internal/repositories"
	"storefront_backend/internal/services/dto"
)

// SessionRegistry is the live-session view the dispatcher needs.
// Implemented by ws.Hub; tests use a recording fake.
type SessionRegistry interface {
	// SendJSON delivers the payload to every session of the identity.
	// Returns false when the identity has no live session.
	SendJSON(identity string, v interface{}) bool
	HasSessions(identity string) bool
}

// EventDispatcher pushes freshly persisted notifications to live
// sessions. Delivery is fire-and-forget: the durable record is the
// system of record, the push channel only an optimization. An absent
// recipient gets nothing here and catches up over REST on next load.
type EventDispatcher struct {
	registry SessionRegistry
	userRepo repositories.UserRepository
	mailer   email.Provider // optional CRITICAL escalation
}

func NewEventDispatcher(registry SessionRegistry, userRepo repositories.UserRepository, mailer email.Provider) *EventDispatcher {
	return &EventDispatcher{
		registry: registry,
		userRepo: userRepo,
		mailer:   mailer,
	}
}

// Dispatch resolves the recipient set and pushes a new-notification
// event to each member's sessions. Never returns delivery errors:
// failures are logged and absorbed.
func (d *EventDispatcher) Dispatch(notification *models.Notification) {
	recipients, err := d.resolveRecipients(notification)
	if err != nil {
		logger.Error("failed to resolve notification recipients",
			"notification_id", notification.ID, "error", err)
		return
	}

	event, err := dto.NewEvent(dto.EventNewNotification, notification)
	if err != nil {
		logger.Error("failed to encode notification event",
			"notification_id", notification.ID, "error", err)
		return
	}

	delivered := 0
	for _, identity := range recipients {
		if d.registry.SendJSON(identity, event) {
			delivered++
		}
	}

	logger.Debug("notification dispatched",
		"notification_id", notification.ID,
		"recipients", len(recipients),
		"delivered", delivered,
	)

	if delivered == 0 && notification.Priority == models.PriorityCritical {
		d.escalate(notification, recipients)
	}
}

func (d *EventDispatcher) resolveRecipients(notification *models.Notification) ([]string, error) {
	if notification.RecipientID != nil {
		return []string{*notification.RecipientID}, nil
	}
	return d.userRepo.FindAdminIDs()
}

// escalate emails the recipients of a CRITICAL notification nobody saw
// live. Fire-and-forget like the push itself.
func (d *EventDispatcher) escalate(notification *models.Notification, recipients []string) {
	if d.mailer == nil {
		return
	}

	var addresses []string
	for _, id := range recipients {
		user, err := d.userRepo.FindByID(id)
		if err != nil {
			continue
		}
		addresses = append(addresses, user.Email)
	}
	if len(addresses) == 0 {
		return
	}

	go func() {
		err := d.mailer.Send(&email.Message{
			To:      addresses,
			Subject: fmt.Sprintf("[CRITICAL] %s", notification.Title),
			Body:    notification.Message,
		})
		if err != nil {
			logger.Error("critical escalation email failed",
				"notification_id", notification.ID, "error", err)
		}
	}()
}
