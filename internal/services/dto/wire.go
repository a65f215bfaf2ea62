package dto

import (
	"encoding/json"
	"time"
)

// Wire protocol for the live notification channel. Shared by the server
// session loop and the admin client so the two cannot drift apart.

// Client -> server commands.
const (
	ActionMarkRead     = "mark-notification-read"
	ActionMarkManyRead = "mark-notifications-read"
	ActionArchive      = "archive-notification"
	ActionDismiss      = "dismiss-notification"
	ActionRecord       = "notification-action"
)

// Server -> client events.
const (
	EventNewNotification = "new-notification"
	EventUnreadCount     = "unread-count"
	EventUpdated         = "notification-updated"
	EventManyUpdated     = "notifications-updated"
	EventArchived        = "notification-archived"
	EventDismissed       = "notification-dismissed"
	EventActionCompleted = "action-completed"
	EventSystemMessage   = "system-message"
)

// Command is the client-initiated mutation envelope.
type Command struct {
	Action string          `json:"action"`
	Data   json.RawMessage `json:"data"`
}

// Event is the server push envelope.
type Event struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// NewEvent marshals the payload into an Event envelope.
func NewEvent(name string, payload interface{}) (*Event, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Event{Event: name, Data: raw}, nil
}

// Ack confirms or rejects a single client-initiated mutation.
type Ack struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

type MarkReadPayload struct {
	NotificationID uint64 `json:"notification_id"`
}

type MarkManyReadPayload struct {
	NotificationIDs []uint64 `json:"notification_ids"`
}

type ArchivePayload struct {
	NotificationID uint64 `json:"notification_id"`
}

type DismissPayload struct {
	NotificationID uint64 `json:"notification_id"`
}

type RecordActionPayload struct {
	NotificationID uint64                 `json:"notification_id"`
	ActionType     string                 `json:"action_type"`
	ActionData     map[string]interface{} `json:"action_data,omitempty"`
}

type UnreadCountPayload struct {
	Count int64 `json:"count"`
}

type SystemMessagePayload struct {
	Message   string    `json:"message"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
}
