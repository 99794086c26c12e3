package hub

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/colocapp/colocourses/internal/domain"
	"github.com/colocapp/colocourses/internal/logger"
	"github.com/colocapp/colocourses/internal/metrics"
	"github.com/colocapp/colocourses/internal/store"
)

// Hub routes realtime events to exactly the set of live connections bound to
// a coloc, and only that set. It persists nothing except chat messages
// (through the store); everything else is pure fan-out.
//
// One mutex owns the room table. Membership changes and the snapshot they
// trigger happen under it, so a snapshot can never observe a half-updated
// room, and broadcast order equals processing order. Sends are non-blocking
// enqueues onto per-session buffers, so holding the mutex across a broadcast
// is cheap and a stalled client never delays the room.
type Hub struct {
	store   store.Store
	logger  logger.Logger
	metrics *metrics.Metrics

	mu    sync.Mutex
	rooms map[string][]*Session // coloc id -> sessions in bind order
}

func New(st store.Store, log logger.Logger, m *metrics.Metrics) *Hub {
	return &Hub{
		store:   st,
		logger:  log,
		metrics: m,
		rooms:   make(map[string][]*Session),
	}
}

// NewSession registers a fresh unbound session for one connection.
func (h *Hub) NewSession() *Session {
	s := newSession()
	h.metrics.Connections.Inc()
	return s
}

// Dispatch routes one inbound event. Malformed payloads are logged and
// dropped: one connection's garbage never affects the others.
func (h *Hub) Dispatch(ctx context.Context, s *Session, evt Event) {
	label := evt.Type
	if !clientEvents[evt.Type] {
		label = "unknown"
	}
	h.metrics.Events.WithLabelValues(label).Inc()

	switch evt.Type {
	case EvtColocJoin:
		var p JoinPayload
		if err := json.Unmarshal(evt.Data, &p); err != nil {
			h.logger.Warn("bad join payload", logger.String("session_id", s.id), logger.Error(err))
			return
		}
		h.Join(s, p)

	case EvtChatSend:
		var p ChatSendPayload
		if err := json.Unmarshal(evt.Data, &p); err != nil {
			h.logger.Warn("bad chat payload", logger.String("session_id", s.id), logger.Error(err))
			return
		}
		h.Chat(ctx, s, p.Text)

	case EvtChatTyping:
		var p TypingPayload
		if err := json.Unmarshal(evt.Data, &p); err != nil {
			return
		}
		h.Typing(s, p.IsTyping)

	case EvtUserShopping:
		h.Shopping(s)

	case EvtItemAdded, EvtItemUpdated, EvtItemDeleted, EvtListCleared, EvtListValidated:
		h.Relay(s, evt.Type, evt.Data)

	default:
		h.logger.Debug("ignoring unknown event",
			logger.String("session_id", s.id),
			logger.String("type", evt.Type))
	}
}

// Join binds the session to a coloc room. A previous binding is evicted
// first (unbind-then-bind) and the old room gets a fresh snapshot; the
// joined room gets its own snapshot and a system notice, sender included.
func (h *Hub) Join(s *Session, p JoinPayload) {
	if p.ColocID == "" {
		return
	}
	username := strings.TrimSpace(p.Username)
	if username == "" {
		username = "Anonyme"
	}
	avatar := p.Avatar
	if avatar == "" {
		avatar = domain.DefaultAvatar
	}

	notice, err := systemNotice(fmt.Sprintf("%s a rejoint la coloc' 🏠", username))
	if err != nil {
		h.logger.Error("failed to build join notice", logger.Error(err))
		return
	}

	h.mu.Lock()
	if prev := s.groupID; prev != "" {
		h.removeLocked(prev, s)
		if prev != p.ColocID {
			h.pushSnapshotLocked(prev)
		}
	}
	s.username = username
	s.avatar = avatar
	s.groupID = p.ColocID
	h.rooms[p.ColocID] = append(h.rooms[p.ColocID], s)

	h.pushSnapshotLocked(p.ColocID)
	h.broadcastLocked(p.ColocID, notice, nil)
	h.metrics.Rooms.Set(float64(len(h.rooms)))
	h.mu.Unlock()

	h.logger.Info("session joined room",
		logger.String("session_id", s.id),
		logger.String("coloc_id", p.ColocID),
		logger.String("username", username))
}

// Chat persists a message under the session's bound coloc and identity
// (never a client-supplied coloc id), then broadcasts it to the whole room,
// sender included, so every view updates from the same authoritative event.
func (h *Hub) Chat(ctx context.Context, s *Session, text string) {
	h.mu.Lock()
	groupID, username, avatar := s.groupID, s.username, s.avatar
	h.mu.Unlock()
	if groupID == "" {
		return
	}

	text = strings.TrimSpace(text)
	if text == "" || len([]rune(text)) > domain.MaxMessageLength {
		h.sendTo(s, chatError())
		return
	}

	m := &domain.Message{
		ID:        uuid.NewString(),
		ColocID:   groupID,
		Username:  username,
		Avatar:    avatar,
		Text:      text,
		CreatedAt: time.Now(),
	}
	if err := h.store.InsertMessage(ctx, m); err != nil {
		h.logger.Error("failed to persist chat message",
			logger.String("coloc_id", groupID),
			logger.Error(err))
		h.sendTo(s, chatError())
		return
	}

	evt, err := NewEvent(EvtChatMessage, ChatMessagePayload{
		Type:      "user",
		Username:  m.Username,
		Avatar:    m.Avatar,
		Text:      m.Text,
		Timestamp: m.CreatedAt,
	})
	if err != nil {
		h.logger.Error("failed to build chat event", logger.Error(err))
		return
	}

	h.mu.Lock()
	h.broadcastLocked(groupID, evt, nil)
	h.mu.Unlock()
}

// Typing relays a typing indicator to every other connection of the room.
// Never persisted, never echoed to the sender.
func (h *Hub) Typing(s *Session, isTyping bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if s.groupID == "" {
		return
	}
	evt, err := NewEvent(EvtChatTyping, TypingPayload{Username: s.username, IsTyping: isTyping})
	if err != nil {
		return
	}
	h.broadcastLocked(s.groupID, evt, s)
}

// Shopping pushes a system notice to the room and a shopping:started signal
// to every other connection.
func (h *Hub) Shopping(s *Session) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if s.groupID == "" {
		return
	}
	notice, err := systemNotice(fmt.Sprintf("🛒 %s est parti(e) faire les courses !", s.username))
	if err != nil {
		return
	}
	started, err := NewEvent(EvtShoppingStarted, ShoppingStartedPayload{Username: s.username})
	if err != nil {
		return
	}
	h.broadcastLocked(s.groupID, notice, nil)
	h.broadcastLocked(s.groupID, started, s)
}

// Relay forwards an item/list event verbatim to every other connection of
// the room. The sender already holds the authoritative state from its own
// request/response call, so self-echo is deliberately suppressed.
func (h *Hub) Relay(s *Session, typ string, data json.RawMessage) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if s.groupID == "" {
		return
	}
	h.broadcastLocked(s.groupID, Event{Type: typ, Data: data}, s)
}

// Disconnect unbinds the session and tells the remaining room. Idempotent:
// a second call is a no-op, and broadcasts already queued to other
// connections are unaffected.
func (h *Hub) Disconnect(s *Session) {
	s.close()

	h.mu.Lock()
	if s.gone {
		h.mu.Unlock()
		return
	}
	s.gone = true
	groupID, username := s.groupID, s.username
	if groupID != "" {
		h.removeLocked(groupID, s)
		s.groupID = ""
		h.pushSnapshotLocked(groupID)
		if notice, err := systemNotice(fmt.Sprintf("%s a quitté la coloc'", username)); err == nil {
			h.broadcastLocked(groupID, notice, nil)
		}
	}
	h.metrics.Rooms.Set(float64(len(h.rooms)))
	h.mu.Unlock()

	h.metrics.Connections.Dec()
	if groupID != "" {
		h.logger.Info("session left room",
			logger.String("session_id", s.id),
			logger.String("coloc_id", groupID))
	}
}

// Online returns the current snapshot for a room: one entry per live
// connection in bind order.
func (h *Hub) Online(groupID string) []Member {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.snapshotLocked(groupID)
}

// internals below assume h.mu is held by the caller.

func (h *Hub) removeLocked(groupID string, s *Session) {
	room := h.rooms[groupID]
	for i, member := range room {
		if member == s {
			room = append(room[:i:i], room[i+1:]...)
			break
		}
	}
	if len(room) == 0 {
		delete(h.rooms, groupID)
	} else {
		h.rooms[groupID] = room
	}
}

func (h *Hub) snapshotLocked(groupID string) []Member {
	room := h.rooms[groupID]
	online := make([]Member, 0, len(room))
	for _, s := range room {
		online = append(online, Member{Username: s.username, Avatar: s.avatar})
	}
	return online
}

// pushSnapshotLocked recomputes the online list from the post-mutation room
// state and pushes it to every connection still bound to the room.
func (h *Hub) pushSnapshotLocked(groupID string) {
	evt, err := NewEvent(EvtUsersUpdate, h.snapshotLocked(groupID))
	if err != nil {
		h.logger.Error("failed to build online snapshot", logger.Error(err))
		return
	}
	h.broadcastLocked(groupID, evt, nil)
}

func (h *Hub) broadcastLocked(groupID string, evt Event, except *Session) {
	for _, s := range h.rooms[groupID] {
		if s == except {
			continue
		}
		h.trySendLocked(s, evt)
	}
}

// trySendLocked enqueues without ever blocking the room. A session whose
// buffer is full is closed; its transport notices and calls Disconnect,
// which performs the membership cleanup.
func (h *Hub) trySendLocked(s *Session, evt Event) {
	select {
	case <-s.closed:
		return
	default:
	}
	select {
	case s.send <- evt:
	default:
		h.logger.Warn("dropping slow realtime connection",
			logger.String("session_id", s.id))
		s.close()
	}
}

func systemNotice(text string) (Event, error) {
	return NewEvent(EvtChatMessage, ChatMessagePayload{
		Type:      "system",
		Text:      text,
		Timestamp: time.Now(),
	})
}

func chatError() Event {
	evt, _ := NewEvent(EvtChatError, "Impossible d'envoyer le message")
	return evt
}

// sendTo reaches a single session outside of any broadcast.
func (h *Hub) sendTo(s *Session, evt Event) {
	h.mu.Lock()
	h.trySendLocked(s, evt)
	h.mu.Unlock()
}
