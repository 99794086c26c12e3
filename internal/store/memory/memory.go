package memory

import (
	"context"
	"sync"
	"time"

	"github.com/colocapp/colocourses/internal/domain"
)

// Store is an in-memory implementation of the document-store boundary.
// It backs dev mode and tests; semantics mirror the redis store exactly.
type Store struct {
	mu       sync.RWMutex
	groups   map[string]*domain.Group   // id -> group
	codes    map[string]string          // normalized code -> group id
	items    map[string]*domain.Item    // id -> item
	itemIDs  map[string][]string        // group id -> item ids in insertion order
	messages map[string]*messageLog     // group id -> chat log
	retain   int                        // messages kept per log
}

type messageLog struct {
	entries []*domain.Message
}

// New creates an empty store retaining up to retain messages per coloc.
func New(retain int) *Store {
	if retain < 50 {
		retain = 50
	}
	return &Store{
		groups:   make(map[string]*domain.Group),
		codes:    make(map[string]string),
		items:    make(map[string]*domain.Item),
		itemIDs:  make(map[string][]string),
		messages: make(map[string]*messageLog),
		retain:   retain,
	}
}

// Colocs

func (s *Store) InsertGroup(ctx context.Context, g *domain.Group) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := cloneGroup(g)
	s.groups[cp.ID] = cp
	s.codes[domain.NormalizeCode(cp.Code)] = cp.ID
	return nil
}

func (s *Store) GroupByID(ctx context.Context, id string) (*domain.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g, ok := s.groups[id]
	if !ok {
		return nil, domain.NotFoundf("coloc introuvable")
	}
	return cloneGroup(g), nil
}

func (s *Store) GroupByCode(ctx context.Context, code string) (*domain.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.codes[domain.NormalizeCode(code)]
	if !ok {
		return nil, domain.NotFoundf("aucune coloc avec le code %q", domain.NormalizeCode(code))
	}
	return cloneGroup(s.groups[id]), nil
}

func (s *Store) UpdateGroup(ctx context.Context, g *domain.Group) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.groups[g.ID]; !ok {
		return domain.NotFoundf("coloc introuvable")
	}
	s.groups[g.ID] = cloneGroup(g)
	return nil
}

// Items

func (s *Store) InsertItem(ctx context.Context, it *domain.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := cloneItem(it)
	s.items[cp.ID] = cp
	s.itemIDs[cp.ColocID] = append(s.itemIDs[cp.ColocID], cp.ID)
	return nil
}

func (s *Store) FindItems(ctx context.Context, groupID string, f domain.ItemFilter) ([]*domain.Item, error) {
	s.mu.RLock()
	matched := make([]*domain.Item, 0, len(s.itemIDs[groupID]))
	for _, id := range s.itemIDs[groupID] {
		it := s.items[id]
		if it != nil && f.Match(it) {
			matched = append(matched, cloneItem(it))
		}
	}
	s.mu.RUnlock()

	domain.SortItems(matched, f.SortBy)
	return matched, nil
}

func (s *Store) UpdateItem(ctx context.Context, groupID, itemID string, patch domain.ItemPatch) (*domain.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	it, ok := s.items[itemID]
	if !ok || it.ColocID != groupID {
		return nil, domain.NotFoundf("article introuvable")
	}
	patch.Apply(it, time.Now())
	return cloneItem(it), nil
}

func (s *Store) DeleteItem(ctx context.Context, groupID, itemID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	it, ok := s.items[itemID]
	if !ok || it.ColocID != groupID {
		return domain.NotFoundf("article introuvable")
	}
	s.removeItemLocked(groupID, itemID)
	return nil
}

func (s *Store) DeleteBoughtItems(ctx context.Context, groupID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	deleted := 0
	for _, id := range append([]string(nil), s.itemIDs[groupID]...) {
		if it := s.items[id]; it != nil && it.Bought {
			s.removeItemLocked(groupID, id)
			deleted++
		}
	}
	return deleted, nil
}

func (s *Store) removeItemLocked(groupID, itemID string) {
	delete(s.items, itemID)
	ids := s.itemIDs[groupID]
	for i, id := range ids {
		if id == itemID {
			s.itemIDs[groupID] = append(ids[:i:i], ids[i+1:]...)
			return
		}
	}
}

// Messages

func (s *Store) InsertMessage(ctx context.Context, m *domain.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	log := s.messages[m.ColocID]
	if log == nil {
		log = &messageLog{}
		s.messages[m.ColocID] = log
	}
	log.entries = append(log.entries, cloneMessage(m))
	if over := len(log.entries) - s.retain; over > 0 {
		log.entries = append([]*domain.Message(nil), log.entries[over:]...)
	}
	return nil
}

func (s *Store) RecentMessages(ctx context.Context, groupID string, limit int) ([]*domain.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	log := s.messages[groupID]
	if log == nil {
		return []*domain.Message{}, nil
	}
	entries := log.entries
	if limit > 0 && len(entries) > limit {
		entries = entries[len(entries)-limit:]
	}
	// Insertion order is already chronological: most recent N, oldest first.
	out := make([]*domain.Message, 0, len(entries))
	for _, m := range entries {
		out = append(out, cloneMessage(m))
	}
	return out, nil
}

// Clones keep callers from mutating stored documents through shared pointers.

func cloneGroup(g *domain.Group) *domain.Group {
	cp := *g
	cp.Members = append([]string(nil), g.Members...)
	if g.ValidatedAt != nil {
		t := *g.ValidatedAt
		cp.ValidatedAt = &t
	}
	return &cp
}

func cloneItem(it *domain.Item) *domain.Item {
	cp := *it
	if it.DueDate != nil {
		t := *it.DueDate
		cp.DueDate = &t
	}
	return &cp
}

func cloneMessage(m *domain.Message) *domain.Message {
	cp := *m
	return &cp
}
