package ws

import (
	"encoding/json"
	"sync"
	"time"

	"storefront_backend/internal/logger"
	"storefront_backend/internal/services/dto"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	maxMessageSize = 4096
)

// NotificationCommands is the mutation surface a session exposes over
// the socket. Satisfied by services.NotificationService; tests plug in
// a recording fake.
type NotificationCommands interface {
	MarkRead(userID string, id uint64) (*dto.MutationResponse, error)
	MarkManyRead(userID string, ids []uint64) error
	Archive(userID string, id uint64) (*dto.MutationResponse, error)
	Dismiss(userID string, id uint64) (*dto.MutationResponse, error)
	RecordAction(userID string, id uint64, actionType string, actionData map[string]interface{}) error
	UnreadCount(userID string) (int64, error)
}

// Options tune a session's transport behavior. Zero values fall back to
// the realtime config defaults.
type Options struct {
	SendBufferSize int
	PingInterval   time.Duration
	ReadTimeout    time.Duration
}

func (o Options) withDefaults() Options {
	if o.SendBufferSize <= 0 {
		o.SendBufferSize = 64
	}
	if o.PingInterval <= 0 {
		o.PingInterval = 30 * time.Second
	}
	if o.ReadTimeout <= 0 {
		o.ReadTimeout = 60 * time.Second
	}
	return o
}

// Session is one live websocket bound to an authenticated identity.
// The read pump is the only reader, the write pump the only writer.
type Session struct {
	ID       string
	Identity string

	hub      *Hub
	conn     *websocket.Conn
	commands NotificationCommands
	opts     Options

	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

func NewSession(hub *Hub, conn *websocket.Conn, identity string, commands NotificationCommands, opts Options) *Session {
	opts = opts.withDefaults()
	return &Session{
		ID:       uuid.NewString(),
		Identity: identity,
		hub:      hub,
		conn:     conn,
		commands: commands,
		opts:     opts,
		send:     make(chan []byte, opts.SendBufferSize),
		done:     make(chan struct{}),
	}
}

// Start registers the session and launches both pumps. The initial
// unread count is pushed immediately so a reconnecting client converges
// without waiting for its first mutation.
func (s *Session) Start() {
	s.hub.Register(s)
	go s.writePump()
	go s.readPump()
	s.pushUnreadCount()
}

// Close is idempotent and safe from any goroutine.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		if s.conn != nil {
			s.conn.Close()
		}
	})
}

// enqueue hands a frame to the write pump without blocking. False means
// the session is closing or its queue is full.
func (s *Session) enqueue(payload []byte) bool {
	select {
	case <-s.done:
		return false
	default:
	}
	select {
	case s.send <- payload:
		return true
	default:
		return false
	}
}

func (s *Session) readPump() {
	defer s.hub.Unregister(s)

	s.conn.SetReadLimit(maxMessageSize)
	s.conn.SetReadDeadline(time.Now().Add(s.opts.ReadTimeout))
	s.conn.SetPongHandler(func(string) error {
		s.conn.SetReadDeadline(time.Now().Add(s.opts.ReadTimeout))
		return nil
	})

	for {
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Warn("session closed unexpectedly",
					"identity", s.Identity, "session_id", s.ID, "error", err)
			}
			return
		}

		var cmd dto.Command
		if err := json.Unmarshal(raw, &cmd); err != nil {
			logger.Warn("discarding malformed command",
				"identity", s.Identity, "session_id", s.ID, "error", err)
			continue
		}
		s.handleCommand(&cmd)
	}
}

func (s *Session) writePump() {
	ticker := time.NewTicker(s.opts.PingInterval)
	defer func() {
		ticker.Stop()
		s.Close()
	}()

	for {
		select {
		case payload := <-s.send:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-s.done:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			s.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

// handleCommand executes one client mutation and replies with the ack
// event paired to the command. Successful mutations also refresh the
// unread count on every session of the identity so all tabs converge.
func (s *Session) handleCommand(cmd *dto.Command) {
	switch cmd.Action {
	case dto.ActionMarkRead:
		var p dto.MarkReadPayload
		if err := json.Unmarshal(cmd.Data, &p); err != nil {
			s.ack(dto.EventUpdated, err)
			return
		}
		_, err := s.commands.MarkRead(s.Identity, p.NotificationID)
		s.ack(dto.EventUpdated, err)
		if err == nil {
			s.pushUnreadCount()
		}

	case dto.ActionMarkManyRead:
		var p dto.MarkManyReadPayload
		if err := json.Unmarshal(cmd.Data, &p); err != nil {
			s.ack(dto.EventManyUpdated, err)
			return
		}
		err := s.commands.MarkManyRead(s.Identity, p.NotificationIDs)
		s.ack(dto.EventManyUpdated, err)
		if err == nil {
			s.pushUnreadCount()
		}

	case dto.ActionArchive:
		var p dto.ArchivePayload
		if err := json.Unmarshal(cmd.Data, &p); err != nil {
			s.ack(dto.EventArchived, err)
			return
		}
		_, err := s.commands.Archive(s.Identity, p.NotificationID)
		s.ack(dto.EventArchived, err)
		if err == nil {
			s.pushUnreadCount()
		}

	case dto.ActionDismiss:
		var p dto.DismissPayload
		if err := json.Unmarshal(cmd.Data, &p); err != nil {
			s.ack(dto.EventDismissed, err)
			return
		}
		_, err := s.commands.Dismiss(s.Identity, p.NotificationID)
		s.ack(dto.EventDismissed, err)
		if err == nil {
			s.pushUnreadCount()
		}

	case dto.ActionRecord:
		var p dto.RecordActionPayload
		if err := json.Unmarshal(cmd.Data, &p); err != nil {
			s.ack(dto.EventActionCompleted, err)
			return
		}
		err := s.commands.RecordAction(s.Identity, p.NotificationID, p.ActionType, p.ActionData)
		s.ack(dto.EventActionCompleted, err)

	default:
		logger.Warn("ignoring unknown command",
			"identity", s.Identity, "session_id", s.ID, "action", cmd.Action)
	}
}

// ack sends a success or failure confirmation under the given event
// name to the issuing session only.
func (s *Session) ack(eventName string, opErr error) {
	payload := dto.Ack{Success: opErr == nil}
	if opErr != nil {
		payload.Error = opErr.Error()
	}

	event, err := dto.NewEvent(eventName, payload)
	if err != nil {
		logger.Error("failed to encode ack", "event", eventName, "error", err)
		return
	}
	s.sendEvent(event)
}

func (s *Session) sendEvent(event *dto.Event) {
	raw, err := json.Marshal(event)
	if err != nil {
		logger.Error("failed to marshal event", "event", event.Event, "error", err)
		return
	}
	if !s.enqueue(raw) {
		logger.Warn("event dropped, send queue full",
			"identity", s.Identity, "session_id", s.ID, "event", event.Event)
	}
}

// pushUnreadCount fans the authoritative counter out to every session
// of this identity, not just the one that caused the change.
func (s *Session) pushUnreadCount() {
	count, err := s.commands.UnreadCount(s.Identity)
	if err != nil {
		logger.Error("failed to load unread count",
			"identity", s.Identity, "error", err)
		return
	}

	event, err := dto.NewEvent(dto.EventUnreadCount, dto.UnreadCountPayload{Count: count})
	if err != nil {
		logger.Error("failed to encode unread count event", "error", err)
		return
	}
	s.hub.SendJSON(s.Identity, event)
}
