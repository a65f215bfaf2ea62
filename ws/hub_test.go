package ws

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bareSession(hub *Hub, identity string, buffer int) *Session {
	return NewSession(hub, nil, identity, nil, Options{SendBufferSize: buffer})
}

func TestHubRegisterAndLookup(t *testing.T) {
	hub := NewHub()

	s1 := bareSession(hub, "admin-1", 4)
	s2 := bareSession(hub, "admin-1", 4)
	s3 := bareSession(hub, "admin-2", 4)

	hub.Register(s1)
	hub.Register(s2)
	hub.Register(s3)

	assert.True(t, hub.HasSessions("admin-1"))
	assert.True(t, hub.HasSessions("admin-2"))
	assert.False(t, hub.HasSessions("admin-3"))
	assert.Equal(t, 3, hub.Count())
	assert.Len(t, hub.SessionsFor("admin-1"), 2)

	hub.Unregister(s1)
	assert.True(t, hub.HasSessions("admin-1"))
	hub.Unregister(s2)
	assert.False(t, hub.HasSessions("admin-1"))
	assert.Equal(t, 1, hub.Count())
}

func TestHubUnregisterIsIdempotent(t *testing.T) {
	hub := NewHub()
	s := bareSession(hub, "admin-1", 4)

	hub.Register(s)
	hub.Unregister(s)
	hub.Unregister(s)

	assert.False(t, hub.HasSessions("admin-1"))
	assert.Equal(t, 0, hub.Count())
}

func TestHubUnregisterUnknownSessionIsSafe(t *testing.T) {
	hub := NewHub()
	hub.Unregister(bareSession(hub, "admin-1", 4))
	hub.Unregister(nil)
	assert.Equal(t, 0, hub.Count())
}

func TestSendJSONReachesEverySessionOfIdentity(t *testing.T) {
	hub := NewHub()
	s1 := bareSession(hub, "admin-1", 4)
	s2 := bareSession(hub, "admin-1", 4)
	other := bareSession(hub, "admin-2", 4)
	hub.Register(s1)
	hub.Register(s2)
	hub.Register(other)

	ok := hub.SendJSON("admin-1", map[string]string{"event": "ping"})
	require.True(t, ok)

	assert.Len(t, s1.send, 1)
	assert.Len(t, s2.send, 1)
	assert.Len(t, other.send, 0)
}

func TestSendJSONToAbsentIdentityReportsUndelivered(t *testing.T) {
	hub := NewHub()
	assert.False(t, hub.SendJSON("nobody", map[string]string{"event": "ping"}))
}

func TestSendJSONDropsSessionWithFullQueue(t *testing.T) {
	hub := NewHub()
	s := bareSession(hub, "admin-1", 1)
	hub.Register(s)

	require.True(t, hub.SendJSON("admin-1", map[string]string{"event": "one"}))

	// Queue is full now; the next push evicts the session.
	assert.False(t, hub.SendJSON("admin-1", map[string]string{"event": "two"}))
	assert.False(t, hub.HasSessions("admin-1"))
}

func TestBroadcastReachesAllIdentities(t *testing.T) {
	hub := NewHub()
	s1 := bareSession(hub, "admin-1", 4)
	s2 := bareSession(hub, "admin-2", 4)
	hub.Register(s1)
	hub.Register(s2)

	hub.Broadcast(map[string]string{"event": "system-message"})

	assert.Len(t, s1.send, 1)
	assert.Len(t, s2.send, 1)
}
