package hub

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/colocapp/colocourses/internal/domain"
	"github.com/colocapp/colocourses/internal/logger"
	"github.com/colocapp/colocourses/internal/metrics"
	"github.com/colocapp/colocourses/internal/store/memory"
)

func newHub(t *testing.T) (*Hub, *memory.Store) {
	t.Helper()
	st := memory.New(50)
	m := metrics.New(prometheus.NewRegistry())
	return New(st, logger.Nop(), m), st
}

// drain collects every event currently queued on the session.
func drain(s *Session) []Event {
	var out []Event
	for {
		select {
		case evt := <-s.Events():
			out = append(out, evt)
		default:
			return out
		}
	}
}

func eventsOfType(events []Event, typ string) []Event {
	var out []Event
	for _, evt := range events {
		if evt.Type == typ {
			out = append(out, evt)
		}
	}
	return out
}

func join(h *Hub, s *Session, colocID, username string) {
	h.Join(s, JoinPayload{ColocID: colocID, Username: username})
}

func TestJoin_SnapshotReachesWholeRoom(t *testing.T) {
	h, _ := newHub(t)

	a := h.NewSession()
	b := h.NewSession()
	c := h.NewSession()

	join(h, a, "coloc-1", "Alice")
	join(h, b, "coloc-1", "Bob")
	join(h, c, "coloc-1", "Carol")

	// The last join pushes a 3-member snapshot to everyone, including the
	// joiner itself.
	for _, s := range []*Session{a, b, c} {
		updates := eventsOfType(drain(s), EvtUsersUpdate)
		if len(updates) == 0 {
			t.Fatalf("session %s got no users:update", s.ID())
		}
		var members []Member
		if err := json.Unmarshal(updates[len(updates)-1].Data, &members); err != nil {
			t.Fatalf("bad snapshot payload: %v", err)
		}
		if len(members) != 3 {
			t.Errorf("session %s: expected 3 members, got %d", s.ID(), len(members))
		}
	}
}

func TestJoin_DefaultsIdentity(t *testing.T) {
	h, _ := newHub(t)

	s := h.NewSession()
	h.Join(s, JoinPayload{ColocID: "coloc-1"})

	members := h.Online("coloc-1")
	if len(members) != 1 {
		t.Fatalf("expected 1 member, got %d", len(members))
	}
	if members[0].Username != "Anonyme" {
		t.Errorf("expected Anonyme fallback, got %q", members[0].Username)
	}
	if members[0].Avatar != domain.DefaultAvatar {
		t.Errorf("expected default avatar, got %q", members[0].Avatar)
	}
}

func TestJoin_SnapshotCountsConnectionsNotUsers(t *testing.T) {
	h, _ := newHub(t)

	// Same person, two tabs: the snapshot carries one entry each.
	tab1 := h.NewSession()
	tab2 := h.NewSession()
	join(h, tab1, "coloc-1", "Alice")
	join(h, tab2, "coloc-1", "Alice")

	if got := len(h.Online("coloc-1")); got != 2 {
		t.Errorf("expected 2 entries for 2 connections, got %d", got)
	}
}

func TestJoin_RebindEvictsOldRoom(t *testing.T) {
	h, _ := newHub(t)

	a := h.NewSession()
	stay := h.NewSession()
	join(h, a, "coloc-1", "Alice")
	join(h, stay, "coloc-1", "Bob")
	drain(a)
	drain(stay)

	join(h, a, "coloc-2", "Alice")

	if got := len(h.Online("coloc-1")); got != 1 {
		t.Errorf("old room should have 1 member left, got %d", got)
	}
	if got := len(h.Online("coloc-2")); got != 1 {
		t.Errorf("new room should have 1 member, got %d", got)
	}
	if events := drain(a); len(eventsOfType(events, EvtUsersUpdate)) == 0 {
		t.Error("rebinding session must receive the new room snapshot")
	}
	// The old room learns about the departure through a fresh snapshot.
	updates := eventsOfType(drain(stay), EvtUsersUpdate)
	if len(updates) != 1 {
		t.Fatalf("old room must get 1 users:update on rebind, got %d", len(updates))
	}
	var members []Member
	if err := json.Unmarshal(updates[0].Data, &members); err != nil {
		t.Fatalf("bad snapshot payload: %v", err)
	}
	if len(members) != 1 || members[0].Username != "Bob" {
		t.Errorf("expected Bob alone in old room snapshot, got %+v", members)
	}
}

func TestChat_BroadcastsToAllAndPersists(t *testing.T) {
	h, st := newHub(t)
	ctx := context.Background()

	a := h.NewSession()
	b := h.NewSession()
	join(h, a, "coloc-1", "Alice")
	join(h, b, "coloc-1", "Bob")
	drain(a)
	drain(b)

	h.Chat(ctx, a, "  salut la coloc  ")

	for _, s := range []*Session{a, b} {
		msgs := eventsOfType(drain(s), EvtChatMessage)
		if len(msgs) != 1 {
			t.Fatalf("session %s: expected 1 chat message, got %d", s.ID(), len(msgs))
		}
		var p ChatMessagePayload
		if err := json.Unmarshal(msgs[0].Data, &p); err != nil {
			t.Fatalf("bad chat payload: %v", err)
		}
		if p.Type != "user" || p.Username != "Alice" || p.Text != "salut la coloc" {
			t.Errorf("unexpected payload %+v", p)
		}
	}

	stored, err := st.RecentMessages(ctx, "coloc-1", 50)
	if err != nil {
		t.Fatalf("RecentMessages failed: %v", err)
	}
	if len(stored) != 1 || stored[0].Text != "salut la coloc" {
		t.Errorf("expected persisted trimmed message, got %+v", stored)
	}
}

func TestChat_RejectsEmptyAndOversized(t *testing.T) {
	h, st := newHub(t)
	ctx := context.Background()

	a := h.NewSession()
	join(h, a, "coloc-1", "Alice")
	drain(a)

	long := make([]rune, domain.MaxMessageLength+1)
	for i := range long {
		long[i] = 'x'
	}

	for _, text := range []string{"", "   ", string(long)} {
		h.Chat(ctx, a, text)

		events := drain(a)
		if len(eventsOfType(events, EvtChatError)) != 1 {
			t.Errorf("text %q: expected chat:error to sender", text)
		}
		if len(eventsOfType(events, EvtChatMessage)) != 0 {
			t.Errorf("text %q: rejected message must not be broadcast", text)
		}
	}

	stored, _ := st.RecentMessages(ctx, "coloc-1", 50)
	if len(stored) != 0 {
		t.Errorf("rejected messages must not be persisted, got %d", len(stored))
	}
}

func TestChat_RoomIsolation(t *testing.T) {
	h, _ := newHub(t)
	ctx := context.Background()

	a := h.NewSession()
	other := h.NewSession()
	join(h, a, "coloc-1", "Alice")
	join(h, other, "coloc-2", "Eve")
	drain(a)
	drain(other)

	h.Chat(ctx, a, "message privé")

	if got := eventsOfType(drain(other), EvtChatMessage); len(got) != 0 {
		t.Errorf("coloc-2 must not see coloc-1 chat, got %d messages", len(got))
	}
}

func TestChat_UnboundSessionIsNoop(t *testing.T) {
	h, st := newHub(t)
	ctx := context.Background()

	s := h.NewSession()
	h.Chat(ctx, s, "dans le vide")

	if events := drain(s); len(events) != 0 {
		t.Errorf("unbound session should receive nothing, got %d events", len(events))
	}
	stored, _ := st.RecentMessages(ctx, "coloc-1", 50)
	if len(stored) != 0 {
		t.Error("nothing must be persisted for an unbound session")
	}
}

func TestTyping_ExcludesSender(t *testing.T) {
	h, _ := newHub(t)

	a := h.NewSession()
	b := h.NewSession()
	join(h, a, "coloc-1", "Alice")
	join(h, b, "coloc-1", "Bob")
	drain(a)
	drain(b)

	h.Typing(a, true)

	if got := eventsOfType(drain(a), EvtChatTyping); len(got) != 0 {
		t.Error("typing must not echo to the sender")
	}
	typing := eventsOfType(drain(b), EvtChatTyping)
	if len(typing) != 1 {
		t.Fatalf("expected 1 typing event at Bob, got %d", len(typing))
	}
	var p TypingPayload
	if err := json.Unmarshal(typing[0].Data, &p); err != nil {
		t.Fatalf("bad typing payload: %v", err)
	}
	if p.Username != "Alice" || !p.IsTyping {
		t.Errorf("unexpected typing payload %+v", p)
	}
}

func TestRelay_ExcludesSender(t *testing.T) {
	h, _ := newHub(t)

	a := h.NewSession()
	b := h.NewSession()
	join(h, a, "coloc-1", "Alice")
	join(h, b, "coloc-1", "Bob")
	drain(a)
	drain(b)

	payload := json.RawMessage(`{"id":"it-1","name":"Lait"}`)
	h.Relay(a, EvtItemAdded, payload)

	if got := eventsOfType(drain(a), EvtItemAdded); len(got) != 0 {
		t.Error("relay must not echo to the sender")
	}
	added := eventsOfType(drain(b), EvtItemAdded)
	if len(added) != 1 {
		t.Fatalf("expected 1 item:added at Bob, got %d", len(added))
	}
	if string(added[0].Data) != string(payload) {
		t.Errorf("relay must forward the payload verbatim, got %s", added[0].Data)
	}
}

func TestShopping_NoticeToAllSignalToOthers(t *testing.T) {
	h, _ := newHub(t)

	a := h.NewSession()
	b := h.NewSession()
	join(h, a, "coloc-1", "Alice")
	join(h, b, "coloc-1", "Bob")
	drain(a)
	drain(b)

	h.Shopping(a)

	aEvents := drain(a)
	if len(eventsOfType(aEvents, EvtChatMessage)) != 1 {
		t.Error("sender must get the system notice")
	}
	if len(eventsOfType(aEvents, EvtShoppingStarted)) != 0 {
		t.Error("sender must not get shopping:started")
	}

	bEvents := drain(b)
	if len(eventsOfType(bEvents, EvtChatMessage)) != 1 {
		t.Error("others must get the system notice")
	}
	if len(eventsOfType(bEvents, EvtShoppingStarted)) != 1 {
		t.Error("others must get shopping:started")
	}
}

func TestDisconnect_NotifiesRemainingRoom(t *testing.T) {
	h, _ := newHub(t)

	a := h.NewSession()
	b := h.NewSession()
	join(h, a, "coloc-1", "Alice")
	join(h, b, "coloc-1", "Bob")
	drain(a)
	drain(b)

	h.Disconnect(a)

	select {
	case <-a.Done():
	default:
		t.Error("disconnected session must be closed")
	}

	events := drain(b)
	updates := eventsOfType(events, EvtUsersUpdate)
	if len(updates) != 1 {
		t.Fatalf("expected 1 users:update after disconnect, got %d", len(updates))
	}
	var members []Member
	if err := json.Unmarshal(updates[0].Data, &members); err != nil {
		t.Fatalf("bad snapshot payload: %v", err)
	}
	if len(members) != 1 || members[0].Username != "Bob" {
		t.Errorf("expected Bob alone in snapshot, got %+v", members)
	}
	if len(eventsOfType(events, EvtChatMessage)) != 1 {
		t.Error("expected a farewell notice")
	}
}

func TestDisconnect_Idempotent(t *testing.T) {
	h, _ := newHub(t)

	a := h.NewSession()
	b := h.NewSession()
	join(h, a, "coloc-1", "Alice")
	join(h, b, "coloc-1", "Bob")
	drain(b)

	h.Disconnect(a)
	drain(b)
	h.Disconnect(a)

	if events := drain(b); len(events) != 0 {
		t.Errorf("second disconnect must be silent, got %d events", len(events))
	}
}

func TestSlowConsumerIsDropped(t *testing.T) {
	h, _ := newHub(t)

	a := h.NewSession()
	slow := h.NewSession()
	join(h, a, "coloc-1", "Alice")
	join(h, slow, "coloc-1", "Bob")
	drain(a)
	// slow never drains its queue.

	for i := 0; i < sendBuffer+8; i++ {
		h.Typing(a, true)
	}

	select {
	case <-slow.Done():
	default:
		t.Error("a session that cannot drain its buffer must be closed")
	}
	// The room itself keeps working.
	h.Typing(a, false)
}

func TestDispatch_MalformedPayloadIsDropped(t *testing.T) {
	h, _ := newHub(t)
	ctx := context.Background()

	a := h.NewSession()
	b := h.NewSession()
	join(h, a, "coloc-1", "Alice")
	join(h, b, "coloc-1", "Bob")
	drain(a)
	drain(b)

	h.Dispatch(ctx, a, Event{Type: EvtChatSend, Data: json.RawMessage(`{"text":42}`)})
	h.Dispatch(ctx, a, Event{Type: "unknown:event"})

	if events := drain(b); len(events) != 0 {
		t.Errorf("malformed events must not reach the room, got %d", len(events))
	}
}

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("read counter: %v", err)
	}
	return m.GetCounter().GetValue()
}

func TestDispatch_UnknownTypesShareOneMetricLabel(t *testing.T) {
	h, _ := newHub(t)
	ctx := context.Background()

	s := h.NewSession()
	h.Dispatch(ctx, s, Event{Type: "garbage:one"})
	h.Dispatch(ctx, s, Event{Type: "garbage:two"})

	if got := counterValue(t, h.metrics.Events.WithLabelValues("unknown")); got != 2 {
		t.Errorf("expected 2 unknown events counted, got %v", got)
	}

	// Arbitrary client types must not mint their own series.
	ch := make(chan prometheus.Metric, 16)
	h.metrics.Events.Collect(ch)
	close(ch)
	series := 0
	for range ch {
		series++
	}
	if series != 1 {
		t.Errorf("expected only the unknown series, got %d", series)
	}
}

func TestDispatch_RoutesChat(t *testing.T) {
	h, _ := newHub(t)
	ctx := context.Background()

	a := h.NewSession()
	b := h.NewSession()
	join(h, a, "coloc-1", "Alice")
	join(h, b, "coloc-1", "Bob")
	drain(a)
	drain(b)

	h.Dispatch(ctx, a, Event{Type: EvtChatSend, Data: json.RawMessage(`{"text":"hello"}`)})

	if got := eventsOfType(drain(b), EvtChatMessage); len(got) != 1 {
		t.Errorf("expected chat:message routed through Dispatch, got %d", len(got))
	}
}
