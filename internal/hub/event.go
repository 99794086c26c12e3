package hub

import (
	"encoding/json"
	"fmt"
	"time"
)

// Event types received from clients.
const (
	EvtColocJoin     = "coloc:join"
	EvtChatSend      = "chat:send"
	EvtChatTyping    = "chat:typing"
	EvtUserShopping  = "user:shopping"
	EvtItemAdded     = "item:added"
	EvtItemUpdated   = "item:updated"
	EvtItemDeleted   = "item:deleted"
	EvtListCleared   = "list:cleared"
	EvtListValidated = "list:validated"
)

// Event types pushed to clients.
const (
	EvtChatMessage     = "chat:message"
	EvtChatError       = "chat:error"
	EvtUsersUpdate     = "users:update"
	EvtShoppingStarted = "shopping:started"
)

// clientEvents is the set of types accepted from clients. It also bounds the
// label space of the event counter: anything outside it is counted as
// "unknown", so a client cannot mint metric series with arbitrary types.
var clientEvents = map[string]bool{
	EvtColocJoin:     true,
	EvtChatSend:      true,
	EvtChatTyping:    true,
	EvtUserShopping:  true,
	EvtItemAdded:     true,
	EvtItemUpdated:   true,
	EvtItemDeleted:   true,
	EvtListCleared:   true,
	EvtListValidated: true,
}

// Event is the wire envelope of the realtime channel, both directions.
type Event struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// NewEvent marshals payload into an envelope of the given type.
func NewEvent(typ string, payload any) (Event, error) {
	if payload == nil {
		return Event{Type: typ}, nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("failed to marshal %s payload: %w", typ, err)
	}
	return Event{Type: typ, Data: data}, nil
}

// JoinPayload binds a connection to a coloc room.
type JoinPayload struct {
	ColocID  string `json:"colocId"`
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
}

// ChatSendPayload carries outgoing chat text.
type ChatSendPayload struct {
	Text string `json:"text"`
}

// TypingPayload flags a typing state change. Username is filled server-side
// before relaying.
type TypingPayload struct {
	Username string `json:"username,omitempty"`
	IsTyping bool   `json:"isTyping"`
}

// ChatMessagePayload is a chat entry pushed to the room. Type is "user" for
// persisted messages and "system" for synthetic notices.
type ChatMessagePayload struct {
	Type      string    `json:"type"`
	Username  string    `json:"username,omitempty"`
	Avatar    string    `json:"avatar,omitempty"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// Member is one entry of the online snapshot: one per live connection, in
// bind order, not deduplicated across tabs of the same user.
type Member struct {
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
}

// ShoppingStartedPayload announces a member leaving to shop.
type ShoppingStartedPayload struct {
	Username string `json:"username"`
}
