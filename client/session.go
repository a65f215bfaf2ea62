package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"storefront_backend/internal/logger"
	"storefront_backend/internal/services/dto"

	"github.com/gorilla/websocket"
)

// State of the transport session.
type State string

const (
	StateDisconnected State = "disconnected"
	StateConnecting   State = "connecting"
	StateConnected    State = "connected"
)

var ErrNotConnected = errors.New("session is not connected")

const (
	defaultMaxReconnects = 5
	defaultRetryDelay    = 3 * time.Second
)

// Session is the admin panel's live channel. It distinguishes two
// failure shapes: a failed handshake parks the session disconnected
// until RetryConnection is called, while a drop of an established
// connection triggers bounded automatic reconnection with a fresh
// credential per attempt.
type Session struct {
	url        string
	credential func() (string, error)

	mu    sync.Mutex
	state State
	conn  *websocket.Conn
	gen   int // bumped on Disconnect to invalidate stale read loops

	maxReconnects int
	retryDelay    time.Duration

	// OnEvent receives every server push. OnStateChange fires on each
	// transition. Both may be nil.
	OnEvent       func(*dto.Event)
	OnStateChange func(State)
}

// NewSession builds a session. credential is called on every connection
// attempt so a token refreshed elsewhere is always the one used.
func NewSession(wsURL string, credential func() (string, error)) *Session {
	return &Session{
		url:           wsURL,
		credential:    credential,
		state:         StateDisconnected,
		maxReconnects: defaultMaxReconnects,
		retryDelay:    defaultRetryDelay,
	}
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) setState(next State) {
	s.mu.Lock()
	if s.state == next {
		s.mu.Unlock()
		return
	}
	s.state = next
	cb := s.OnStateChange
	s.mu.Unlock()

	if cb != nil {
		cb(next)
	}
}

// Connect establishes the live channel. A no-op unless the session is
// disconnected, so concurrent callers and already-open sessions are
// safe. A handshake failure leaves the session disconnected without
// retrying on its own.
func (s *Session) Connect() error {
	s.mu.Lock()
	if s.state != StateDisconnected {
		s.mu.Unlock()
		return nil
	}
	s.state = StateConnecting
	gen := s.gen
	cb := s.OnStateChange
	s.mu.Unlock()
	if cb != nil {
		cb(StateConnecting)
	}

	conn, err := s.dial()
	if err != nil {
		s.setState(StateDisconnected)
		return fmt.Errorf("handshake failed: %w", err)
	}

	s.mu.Lock()
	if s.gen != gen {
		// Disconnected while the dial was in flight.
		s.mu.Unlock()
		conn.Close()
		return nil
	}
	s.conn = conn
	s.state = StateConnected
	cb = s.OnStateChange
	s.mu.Unlock()
	if cb != nil {
		cb(StateConnected)
	}

	go s.readLoop(conn, gen)
	return nil
}

// RetryConnection is the user-visible retry control for a session
// parked after a failed handshake.
func (s *Session) RetryConnection() error {
	return s.Connect()
}

// Disconnect tears the channel down. Idempotent.
func (s *Session) Disconnect() {
	s.mu.Lock()
	s.gen++
	conn := s.conn
	s.conn = nil
	changed := s.state != StateDisconnected
	s.state = StateDisconnected
	cb := s.OnStateChange
	s.mu.Unlock()

	if conn != nil {
		conn.Close()
	}
	if changed && cb != nil {
		cb(StateDisconnected)
	}
}

// Send writes one command to the live channel.
func (s *Session) Send(cmd *dto.Command) error {
	s.mu.Lock()
	conn := s.conn
	connected := s.state == StateConnected
	s.mu.Unlock()

	if !connected || conn == nil {
		return ErrNotConnected
	}
	return conn.WriteJSON(cmd)
}

func (s *Session) dial() (*websocket.Conn, error) {
	token, err := s.credential()
	if err != nil {
		return nil, err
	}

	conn, _, err := websocket.DefaultDialer.Dial(s.url+"?token="+token, nil)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

func (s *Session) readLoop(conn *websocket.Conn, gen int) {
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			s.mu.Lock()
			stale := s.gen != gen
			s.mu.Unlock()
			if stale {
				// Deliberate disconnect; nothing to recover.
				return
			}
			logger.Warn("live channel dropped", "error", err)
			s.reconnect(gen)
			return
		}

		var event dto.Event
		if err := json.Unmarshal(raw, &event); err != nil {
			logger.Warn("discarding malformed push", "error", err)
			continue
		}
		if s.OnEvent != nil {
			s.OnEvent(&event)
		}
	}
}

// reconnect runs the bounded recovery loop after a transport drop.
func (s *Session) reconnect(gen int) {
	s.mu.Lock()
	if s.gen != gen {
		s.mu.Unlock()
		return
	}
	s.conn = nil
	s.state = StateConnecting
	cb := s.OnStateChange
	s.mu.Unlock()
	if cb != nil {
		cb(StateConnecting)
	}

	for attempt := 1; attempt <= s.maxReconnects; attempt++ {
		time.Sleep(s.retryDelay)

		s.mu.Lock()
		if s.gen != gen {
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()

		conn, err := s.dial()
		if err != nil {
			logger.Warn("reconnect attempt failed",
				"attempt", attempt, "max", s.maxReconnects, "error", err)
			continue
		}

		s.mu.Lock()
		if s.gen != gen {
			s.mu.Unlock()
			conn.Close()
			return
		}
		s.conn = conn
		s.state = StateConnected
		cb = s.OnStateChange
		s.mu.Unlock()
		if cb != nil {
			cb(StateConnected)
		}

		go s.readLoop(conn, gen)
		return
	}

	logger.Error("reconnect attempts exhausted", "attempts", s.maxReconnects)
	s.setState(StateDisconnected)
}
