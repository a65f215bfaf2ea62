package ws

import (
	"encoding/json"
	"sync"

	"storefront_backend/internal/logger"
)

// Hub is the connection registry: authenticated identity -> live
// sessions. An identity may hold several sessions (tabs, devices) and
// each receives an independent copy of every push. The map is pure
// liveness state, rebuilt empty on process restart.
type Hub struct {
	mu       sync.RWMutex
	sessions map[string]map[*Session]struct{}
}

func NewHub() *Hub {
	return &Hub{
		sessions: make(map[string]map[*Session]struct{}),
	}
}

func (h *Hub) Register(s *Session) {
	if s == nil || s.Identity == "" {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	set := h.sessions[s.Identity]
	if set == nil {
		set = make(map[*Session]struct{})
		h.sessions[s.Identity] = set
	}
	set[s] = struct{}{}

	logger.Debug("session registered", "identity", s.Identity, "session_id", s.ID)
}

// Unregister is idempotent: safe on a session that never completed
// registration or was already removed.
func (h *Hub) Unregister(s *Session) {
	if s == nil || s.Identity == "" {
		return
	}
	h.mu.Lock()
	set := h.sessions[s.Identity]
	if set != nil {
		delete(set, s)
		if len(set) == 0 {
			delete(h.sessions, s.Identity)
		}
	}
	h.mu.Unlock()

	s.Close()
}

// SessionsFor returns the session ids bound to the identity.
func (h *Hub) SessionsFor(identity string) []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	ids := make([]string, 0, len(h.sessions[identity]))
	for s := range h.sessions[identity] {
		ids = append(ids, s.ID)
	}
	return ids
}

func (h *Hub) HasSessions(identity string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions[identity]) > 0
}

func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	n := 0
	for _, set := range h.sessions {
		n += len(set)
	}
	return n
}

// SendJSON delivers the payload to every session of the identity.
// A session whose outbound queue is full is dropped rather than letting
// one slow consumer stall the rest.
func (h *Hub) SendJSON(identity string, v interface{}) bool {
	payload, err := json.Marshal(v)
	if err != nil {
		logger.Error("failed to marshal push payload", "error", err)
		return false
	}

	h.mu.RLock()
	set := h.sessions[identity]
	targets := make([]*Session, 0, len(set))
	for s := range set {
		targets = append(targets, s)
	}
	h.mu.RUnlock()

	delivered := false
	for _, s := range targets {
		if s.enqueue(payload) {
			delivered = true
		} else {
			logger.Warn("dropping session with full send queue",
				"identity", s.Identity, "session_id", s.ID)
			h.Unregister(s)
		}
	}
	return delivered
}

// Broadcast sends the payload to every registered session.
func (h *Hub) Broadcast(v interface{}) {
	payload, err := json.Marshal(v)
	if err != nil {
		logger.Error("failed to marshal broadcast payload", "error", err)
		return
	}

	h.mu.RLock()
	var targets []*Session
	for _, set := range h.sessions {
		for s := range set {
			targets = append(targets, s)
		}
	}
	h.mu.RUnlock()

	for _, s := range targets {
		if !s.enqueue(payload) {
			h.Unregister(s)
		}
	}
}
