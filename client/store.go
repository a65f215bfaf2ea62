package client

import (
	"encoding/json"
	"sort"
	"sync"
	"time"

	"storefront_backend/internal/logger"
	"storefront_backend/internal/models"
	"storefront_backend/internal/services/dto"
)

const (
	toastDuration         = 6 * time.Second
	criticalToastDuration = 30 * time.Second
)

// Toast is a transient on-screen alert. Priority stretches the display
// time for CRITICAL but changes nothing else.
type Toast struct {
	Title    string
	Message  string
	Priority models.NotificationPriority
	Duration time.Duration
}

// CommandSender is the outbound half of the live channel. Satisfied by
// *Session; tests use a recording fake.
type CommandSender interface {
	Send(cmd *dto.Command) error
}

// CountFetcher re-reads the authoritative unread counter. Satisfied by
// *RestClient.
type CountFetcher interface {
	FetchUnreadCount() (int64, error)
}

// Store is the client-side replica of the recipient's notification
// window. Mutations apply optimistically and reconcile against server
// acks; the unread counter is only ever what the server last said, with
// a re-fetch (never a local rollback) as the recovery path.
type Store struct {
	mu sync.Mutex

	notifications []models.Notification
	index         map[uint64]int

	unreadCount int64
	connected   bool

	pending map[uint64]bool
	// Acks carry no notification id, so commands and acks pair up in
	// FIFO order per ack event name.
	awaitingAck map[string][]uint64

	sender  CommandSender
	counter CountFetcher

	refreshing bool

	OnChange      func()
	OnToast       func(Toast)
	OnUnreadCount func(int64)
}

func NewStore(sender CommandSender, counter CountFetcher) *Store {
	return &Store{
		index:       make(map[uint64]int),
		pending:     make(map[uint64]bool),
		awaitingAck: make(map[string][]uint64),
		sender:      sender,
		counter:     counter,
	}
}

// ---------------- Snapshot access ----------------

// Notifications returns a copy of the current window, newest first.
func (s *Store) Notifications() []models.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Notification, len(s.notifications))
	copy(out, s.notifications)
	return out
}

func (s *Store) UnreadCount() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unreadCount
}

func (s *Store) IsPending(id uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending[id]
}

func (s *Store) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected
}

// ---------------- Event intake ----------------

// HandleEvent routes one server push. Wire this to Session.OnEvent.
func (s *Store) HandleEvent(event *dto.Event) {
	switch event.Event {
	case dto.EventNewNotification:
		var n models.Notification
		if err := json.Unmarshal(event.Data, &n); err != nil {
			logger.Warn("discarding malformed notification push", "error", err)
			return
		}
		s.ApplyPush(n)

	case dto.EventUnreadCount:
		var p dto.UnreadCountPayload
		if err := json.Unmarshal(event.Data, &p); err != nil {
			logger.Warn("discarding malformed unread count push", "error", err)
			return
		}
		s.HandleUnreadCount(p.Count)

	case dto.EventUpdated, dto.EventManyUpdated, dto.EventArchived,
		dto.EventDismissed, dto.EventActionCompleted:
		var ack dto.Ack
		if err := json.Unmarshal(event.Data, &ack); err != nil {
			logger.Warn("discarding malformed ack", "event", event.Event, "error", err)
			return
		}
		s.HandleAck(event.Event, ack)

	case dto.EventSystemMessage:
		var p dto.SystemMessagePayload
		if err := json.Unmarshal(event.Data, &p); err != nil {
			return
		}
		s.toast(Toast{
			Title:    "System",
			Message:  p.Message,
			Priority: models.PriorityHigh,
			Duration: toastDuration,
		})

	default:
		logger.Debug("ignoring unknown event", "event", event.Event)
	}
}

// ApplyPush merges one pushed notification into the window. Duplicate
// ids (redeliveries) replace the stored copy instead of growing the
// list. The counter re-fetch keeps unread authoritative without
// trusting local arithmetic.
func (s *Store) ApplyPush(n models.Notification) {
	s.mu.Lock()
	if pos, ok := s.index[n.ID]; ok {
		s.notifications[pos] = n
		s.resortLocked()
		s.mu.Unlock()
		s.notifyChange()
		return
	}

	s.notifications = append(s.notifications, n)
	s.resortLocked()
	s.mu.Unlock()

	s.notifyChange()
	s.toast(s.toastFor(n))
	s.refreshUnreadCount()
}

// HandleUnreadCount applies the server's counter verbatim.
func (s *Store) HandleUnreadCount(count int64) {
	s.mu.Lock()
	s.unreadCount = count
	cb := s.OnUnreadCount
	s.mu.Unlock()

	if cb != nil {
		cb(count)
	}
}

// SetConnected tracks the transport state. Regaining the connection
// re-fetches the counter to absorb anything missed while offline.
func (s *Store) SetConnected(connected bool) {
	s.mu.Lock()
	was := s.connected
	s.connected = connected
	s.mu.Unlock()

	if connected && !was {
		s.refreshUnreadCount()
	}
}

// ---------------- Optimistic mutations ----------------

// MarkRead applies the transition locally and sends the command. An
// illegal transition (already read, archived, dismissed) is a silent
// no-op, matching what the server would do anyway.
func (s *Store) MarkRead(id uint64) {
	s.mutate(id, models.StatusRead, dto.ActionMarkRead, dto.EventUpdated,
		dto.MarkReadPayload{NotificationID: id})
}

func (s *Store) Archive(id uint64) {
	s.mutate(id, models.StatusArchived, dto.ActionArchive, dto.EventArchived,
		dto.ArchivePayload{NotificationID: id})
}

func (s *Store) Dismiss(id uint64) {
	s.mutate(id, models.StatusDismissed, dto.ActionDismiss, dto.EventDismissed,
		dto.DismissPayload{NotificationID: id})
}

// MarkManyRead is sugar over per-notification commands; there is no
// bulk frame on the wire.
func (s *Store) MarkManyRead(ids []uint64) {
	for _, id := range ids {
		s.MarkRead(id)
	}
}

func (s *Store) mutate(id uint64, next models.NotificationStatus, action, ackEvent string, payload interface{}) {
	s.mu.Lock()
	pos, ok := s.index[id]
	if !ok {
		s.mu.Unlock()
		return
	}
	current := s.notifications[pos].Status
	if !current.CanTransitionTo(next) {
		s.mu.Unlock()
		return
	}

	s.notifications[pos].Status = next
	if next == models.StatusRead {
		now := time.Now()
		s.notifications[pos].ReadAt = &now
	}
	s.pending[id] = true
	s.awaitingAck[ackEvent] = append(s.awaitingAck[ackEvent], id)
	s.mu.Unlock()

	s.notifyChange()

	raw, err := json.Marshal(payload)
	if err != nil {
		s.abort(ackEvent, id, "failed to encode command")
		return
	}
	if err := s.sender.Send(&dto.Command{Action: action, Data: raw}); err != nil {
		s.abort(ackEvent, id, err.Error())
	}
}

// abort withdraws a mutation whose command never reached the server.
// The id is removed from wherever it sits in the queue; popping the
// head instead would steal the slot of an earlier command that did
// send and whose ack is still on its way.
func (s *Store) abort(ackEvent string, id uint64, errMsg string) {
	s.mu.Lock()
	queue := s.awaitingAck[ackEvent]
	for i := range queue {
		if queue[i] == id {
			s.awaitingAck[ackEvent] = append(queue[:i], queue[i+1:]...)
			break
		}
	}
	delete(s.pending, id)
	s.mu.Unlock()

	s.notifyChange()
	s.reportFailure(errMsg)
}

// HandleAck reconciles one server confirmation against the oldest
// in-flight mutation for that event.
func (s *Store) HandleAck(ackEvent string, ack dto.Ack) {
	s.settle(ackEvent, ack.Success, ack.Error)
}

// settle pops the oldest in-flight id for the event. Success just
// clears the pending flag; the optimistic state is already correct.
// Failure keeps the optimistic state (no rollback), surfaces a toast,
// and re-fetches the counter so the badge at least is truthful.
func (s *Store) settle(ackEvent string, success bool, errMsg string) {
	s.mu.Lock()
	queue := s.awaitingAck[ackEvent]
	if len(queue) == 0 {
		s.mu.Unlock()
		return
	}
	id := queue[0]
	s.awaitingAck[ackEvent] = queue[1:]
	delete(s.pending, id)
	s.mu.Unlock()

	s.notifyChange()

	if success {
		return
	}
	s.reportFailure(errMsg)
}

// reportFailure surfaces a rejected or unsent mutation. The optimistic
// state stays as is; the counter re-fetch keeps the badge truthful.
func (s *Store) reportFailure(errMsg string) {
	msg := errMsg
	if msg == "" {
		msg = "The change could not be saved"
	}
	s.toast(Toast{
		Title:    "Update failed",
		Message:  msg,
		Priority: models.PriorityHigh,
		Duration: toastDuration,
	})
	s.refreshUnreadCount()
}

// ---------------- Internals ----------------

// resortLocked keeps the window newest-first with id as the tiebreaker
// for equal timestamps, and rebuilds the id index.
func (s *Store) resortLocked() {
	sort.SliceStable(s.notifications, func(i, j int) bool {
		a, b := s.notifications[i], s.notifications[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	})
	for pos := range s.notifications {
		s.index[s.notifications[pos].ID] = pos
	}
}

// refreshUnreadCount re-reads the counter over REST. Single-flight:
// overlapping triggers collapse into the request already running.
func (s *Store) refreshUnreadCount() {
	if s.counter == nil {
		return
	}

	s.mu.Lock()
	if s.refreshing {
		s.mu.Unlock()
		return
	}
	s.refreshing = true
	s.mu.Unlock()

	go func() {
		count, err := s.counter.FetchUnreadCount()

		s.mu.Lock()
		s.refreshing = false
		s.mu.Unlock()

		if err != nil {
			logger.Warn("unread count refresh failed", "error", err)
			return
		}
		s.HandleUnreadCount(count)
	}()
}

func (s *Store) toastFor(n models.Notification) Toast {
	duration := toastDuration
	if n.Priority == models.PriorityCritical {
		duration = criticalToastDuration
	}
	return Toast{
		Title:    n.Title,
		Message:  n.Message,
		Priority: n.Priority,
		Duration: duration,
	}
}

func (s *Store) toast(t Toast) {
	if s.OnToast != nil {
		s.OnToast(t)
	}
}

func (s *Store) notifyChange() {
	if s.OnChange != nil {
		s.OnChange()
	}
}
