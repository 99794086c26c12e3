package hub

import (
	"sync"

	"github.com/google/uuid"
)

// sendBuffer is the per-session outbound queue. A session that cannot drain
// this many events is considered dead and dropped.
const sendBuffer = 64

// Session is one live realtime connection. Its binding moves through
// Unbound -> Bound(coloc) on join, may rebind (unbind-then-bind), and ends
// Closed on disconnect.
type Session struct {
	id        string
	send      chan Event
	closed    chan struct{}
	closeOnce sync.Once

	// Identity and binding, owned by the hub: read or written only while
	// holding the hub mutex.
	username string
	avatar   string
	groupID  string
	gone     bool
}

func newSession() *Session {
	return &Session{
		id:     uuid.NewString(),
		send:   make(chan Event, sendBuffer),
		closed: make(chan struct{}),
	}
}

// ID identifies the connection in logs.
func (s *Session) ID() string { return s.id }

// Events is the outbound stream the transport drains to the client.
func (s *Session) Events() <-chan Event { return s.send }

// Done is closed once the session is dead; the transport stops writing then.
func (s *Session) Done() <-chan struct{} { return s.closed }

// close is idempotent. It never closes the send channel so concurrent
// broadcasters cannot panic on a dying session.
func (s *Session) close() {
	s.closeOnce.Do(func() {
		close(s.closed)
	})
}
