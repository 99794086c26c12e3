package syncengine

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/colocapp/colocourses/internal/domain"
	"github.com/colocapp/colocourses/internal/hub"
	"github.com/colocapp/colocourses/internal/logger"
)

// typingTTL is how long a typing indicator stays visible without a refresh;
// a user who stops typing without sending simply expires.
const typingTTL = 3 * time.Second

// Engine folds the realtime event stream into the local cache. It is the
// client-side counterpart of the hub's relay: item and list events mutate the
// cache directly, list:validated asks for a full refetch since the event
// carries no item payloads.
type Engine struct {
	cache  *Cache
	logger logger.Logger

	// refresh receives a signal whenever the cache can no longer be
	// patched incrementally and must be rebuilt from a full fetch.
	refresh chan struct{}

	mu     sync.Mutex
	typing map[string]time.Time // username -> expiry
	now    func() time.Time
}

func NewEngine(cache *Cache, log logger.Logger) *Engine {
	return &Engine{
		cache:   cache,
		logger:  log,
		refresh: make(chan struct{}, 1),
		typing:  make(map[string]time.Time),
		now:     time.Now,
	}
}

// Refresh signals when the caller should refetch the list and ReplaceAll the
// cache.
func (e *Engine) Refresh() <-chan struct{} { return e.refresh }

// Apply folds one hub event into local state. Unknown or malformed events
// are logged and skipped so a bad frame never wedges the stream.
func (e *Engine) Apply(evt hub.Event) {
	switch evt.Type {
	case hub.EvtItemAdded, hub.EvtItemUpdated:
		var it domain.Item
		if err := json.Unmarshal(evt.Data, &it); err != nil || it.ID == "" {
			e.logger.Warn("bad item event payload",
				logger.String("type", evt.Type), logger.Error(err))
			return
		}
		e.cache.Upsert(&it)

	case hub.EvtItemDeleted:
		var p struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal(evt.Data, &p); err != nil || p.ID == "" {
			e.logger.Warn("bad item delete payload", logger.Error(err))
			return
		}
		e.cache.Remove(p.ID)

	case hub.EvtListCleared:
		e.cache.RemoveBought()

	case hub.EvtListValidated:
		// Bought items are gone server-side and the coloc metadata
		// changed; the payload has no item state, so refetch.
		e.signalRefresh()

	case hub.EvtChatTyping:
		var p hub.TypingPayload
		if err := json.Unmarshal(evt.Data, &p); err != nil {
			return
		}
		e.setTyping(p.Username, p.IsTyping)
	}
}

func (e *Engine) signalRefresh() {
	select {
	case e.refresh <- struct{}{}:
	default:
	}
}

func (e *Engine) setTyping(username string, isTyping bool) {
	if username == "" {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if isTyping {
		e.typing[username] = e.now().Add(typingTTL)
	} else {
		delete(e.typing, username)
	}
}

// TypingUsers returns who is currently typing, pruning expired entries.
func (e *Engine) TypingUsers() []string {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.now()
	users := make([]string, 0, len(e.typing))
	for u, exp := range e.typing {
		if now.After(exp) {
			delete(e.typing, u)
			continue
		}
		users = append(users, u)
	}
	return users
}
