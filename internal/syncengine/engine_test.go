package syncengine

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/colocapp/colocourses/internal/hub"
	"github.com/colocapp/colocourses/internal/logger"
)

func rawEvent(t *testing.T, typ string, payload any) hub.Event {
	t.Helper()
	evt, err := hub.NewEvent(typ, payload)
	if err != nil {
		t.Fatalf("NewEvent failed: %v", err)
	}
	return evt
}

func TestEngine_ItemEvents(t *testing.T) {
	cache := NewCache()
	e := NewEngine(cache, logger.Nop())

	e.Apply(rawEvent(t, hub.EvtItemAdded, cachedItem("a", "Autre", 1, 1, false)))
	e.Apply(rawEvent(t, hub.EvtItemAdded, cachedItem("b", "Autre", 1, 1, false)))
	if cache.Len() != 2 {
		t.Fatalf("expected 2 items, got %d", cache.Len())
	}

	e.Apply(rawEvent(t, hub.EvtItemUpdated, cachedItem("a", "Autre", 1, 1, true)))
	if cache.Len() != 2 {
		t.Errorf("update must not duplicate, got %d items", cache.Len())
	}
	if !cache.Items()[0].Bought {
		t.Error("update must be applied")
	}

	e.Apply(rawEvent(t, hub.EvtItemDeleted, map[string]string{"id": "b"}))
	if cache.Len() != 1 {
		t.Errorf("expected 1 item after delete, got %d", cache.Len())
	}

	e.Apply(rawEvent(t, hub.EvtListCleared, nil))
	if cache.Len() != 0 {
		t.Errorf("list:cleared must drop bought items, got %d left", cache.Len())
	}
}

func TestEngine_MalformedEventIsSkipped(t *testing.T) {
	cache := NewCache()
	e := NewEngine(cache, logger.Nop())

	e.Apply(hub.Event{Type: hub.EvtItemAdded, Data: json.RawMessage(`{"id":42}`)})
	e.Apply(hub.Event{Type: hub.EvtItemAdded, Data: json.RawMessage(`{}`)})
	e.Apply(hub.Event{Type: hub.EvtItemDeleted, Data: json.RawMessage(`{}`)})

	if cache.Len() != 0 {
		t.Errorf("malformed events must not touch the cache, got %d items", cache.Len())
	}
}

func TestEngine_ValidatedSignalsRefresh(t *testing.T) {
	e := NewEngine(NewCache(), logger.Nop())

	e.Apply(rawEvent(t, hub.EvtListValidated, map[string]any{"deleted": 3}))
	// Repeated signals coalesce instead of blocking.
	e.Apply(rawEvent(t, hub.EvtListValidated, map[string]any{"deleted": 1}))

	select {
	case <-e.Refresh():
	default:
		t.Fatal("expected a refresh signal after list:validated")
	}
	select {
	case <-e.Refresh():
		t.Fatal("signals must coalesce to one")
	default:
	}
}

func TestEngine_TypingExpiry(t *testing.T) {
	e := NewEngine(NewCache(), logger.Nop())
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	e.now = func() time.Time { return now }

	e.Apply(rawEvent(t, hub.EvtChatTyping, hub.TypingPayload{Username: "Alice", IsTyping: true}))
	e.Apply(rawEvent(t, hub.EvtChatTyping, hub.TypingPayload{Username: "Bob", IsTyping: true}))

	if got := e.TypingUsers(); len(got) != 2 {
		t.Fatalf("expected 2 typing users, got %v", got)
	}

	// Bob stops explicitly; Alice just goes quiet past the TTL.
	e.Apply(rawEvent(t, hub.EvtChatTyping, hub.TypingPayload{Username: "Bob", IsTyping: false}))
	now = now.Add(typingTTL + time.Second)

	if got := e.TypingUsers(); len(got) != 0 {
		t.Errorf("expected no typing users after expiry, got %v", got)
	}
}
