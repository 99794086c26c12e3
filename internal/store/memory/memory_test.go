package memory

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/colocapp/colocourses/internal/domain"
)

func newGroup(id, code string) *domain.Group {
	now := time.Now()
	return &domain.Group{
		ID:         id,
		Code:       code,
		Name:       "Coloc " + id,
		Members:    []string{"Alice"},
		ListStatus: domain.ListStatusActive,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func newItem(id, colocID, name string, created time.Time) *domain.Item {
	return &domain.Item{
		ID:        id,
		ColocID:   colocID,
		Name:      name,
		Quantity:  1,
		Unit:      "pcs",
		Category:  "Autre",
		CreatedAt: created,
		UpdatedAt: created,
	}
}

func TestStore_GroupByCode_CaseInsensitive(t *testing.T) {
	ctx := context.Background()
	s := New(50)

	if err := s.InsertGroup(ctx, newGroup("g1", "SOLEIL-42")); err != nil {
		t.Fatalf("InsertGroup failed: %v", err)
	}

	g, err := s.GroupByCode(ctx, "soleil-42")
	if err != nil {
		t.Fatalf("GroupByCode failed: %v", err)
	}
	if g.ID != "g1" {
		t.Errorf("expected g1, got %s", g.ID)
	}

	if _, err := s.GroupByCode(ctx, "LUNE-11"); !domain.IsNotFound(err) {
		t.Errorf("expected NotFound for unknown code, got %v", err)
	}
}

func TestStore_CrossColocIsolation(t *testing.T) {
	ctx := context.Background()
	s := New(50)
	now := time.Now()

	if err := s.InsertItem(ctx, newItem("it1", "coloc-a", "Lait", now)); err != nil {
		t.Fatalf("InsertItem failed: %v", err)
	}

	// Knowing the item id is not enough: the coloc id must match too.
	bought := true
	if _, err := s.UpdateItem(ctx, "coloc-b", "it1", domain.ItemPatch{Bought: &bought}); !domain.IsNotFound(err) {
		t.Errorf("update through wrong coloc: expected NotFound, got %v", err)
	}
	if err := s.DeleteItem(ctx, "coloc-b", "it1"); !domain.IsNotFound(err) {
		t.Errorf("delete through wrong coloc: expected NotFound, got %v", err)
	}

	items, err := s.FindItems(ctx, "coloc-b", domain.ItemFilter{})
	if err != nil {
		t.Fatalf("FindItems failed: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("coloc-b must see no items, got %d", len(items))
	}

	// The item is untouched through its own coloc.
	it, err := s.UpdateItem(ctx, "coloc-a", "it1", domain.ItemPatch{})
	if err != nil {
		t.Fatalf("UpdateItem through own coloc failed: %v", err)
	}
	if it.Bought {
		t.Error("item must not have been modified by the rejected update")
	}
}

func TestStore_DeleteBoughtItems(t *testing.T) {
	ctx := context.Background()
	s := New(50)
	now := time.Now()

	for i := 0; i < 5; i++ {
		it := newItem(fmt.Sprintf("it%d", i), "coloc-a", fmt.Sprintf("Article %d", i), now.Add(time.Duration(i)*time.Second))
		it.Bought = i%2 == 0 // it0, it2, it4 bought
		if err := s.InsertItem(ctx, it); err != nil {
			t.Fatalf("InsertItem failed: %v", err)
		}
	}
	// An item of another coloc never gets touched.
	other := newItem("other", "coloc-b", "Ailleurs", now)
	other.Bought = true
	if err := s.InsertItem(ctx, other); err != nil {
		t.Fatalf("InsertItem failed: %v", err)
	}

	deleted, err := s.DeleteBoughtItems(ctx, "coloc-a")
	if err != nil {
		t.Fatalf("DeleteBoughtItems failed: %v", err)
	}
	if deleted != 3 {
		t.Errorf("expected 3 deleted, got %d", deleted)
	}

	left, _ := s.FindItems(ctx, "coloc-a", domain.ItemFilter{})
	if len(left) != 2 {
		t.Errorf("expected 2 remaining items, got %d", len(left))
	}
	for _, it := range left {
		if it.Bought {
			t.Errorf("bought item %s survived", it.ID)
		}
	}

	elsewhere, _ := s.FindItems(ctx, "coloc-b", domain.ItemFilter{})
	if len(elsewhere) != 1 {
		t.Errorf("coloc-b item must survive, got %d items", len(elsewhere))
	}
}

func TestStore_FindItems_FilterAndSort(t *testing.T) {
	ctx := context.Background()
	s := New(50)
	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	a := newItem("a", "c", "Pain", base)
	b := newItem("b", "c", "Beurre", base.Add(time.Second))
	b.Bought = true
	c := newItem("c", "c", "Pain de mie", base.Add(2*time.Second))
	c.Urgent = true
	for _, it := range []*domain.Item{a, b, c} {
		if err := s.InsertItem(ctx, it); err != nil {
			t.Fatalf("InsertItem failed: %v", err)
		}
	}

	pending, err := s.FindItems(ctx, "c", domain.ItemFilter{Status: domain.StatusPending})
	if err != nil {
		t.Fatalf("FindItems failed: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("expected 2 pending items, got %d", len(pending))
	}

	urgent, err := s.FindItems(ctx, "c", domain.ItemFilter{SortBy: domain.SortUrgent})
	if err != nil {
		t.Fatalf("FindItems failed: %v", err)
	}
	if urgent[0].ID != "c" {
		t.Errorf("urgent pending item must come first, got %s", urgent[0].ID)
	}

	pain, err := s.FindItems(ctx, "c", domain.ItemFilter{Search: "pain"})
	if err != nil {
		t.Fatalf("FindItems failed: %v", err)
	}
	if len(pain) != 2 {
		t.Errorf("expected 2 matches for 'pain', got %d", len(pain))
	}
}

func TestStore_Messages_OrderAndRetention(t *testing.T) {
	ctx := context.Background()
	s := New(50)
	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	for i := 0; i < 60; i++ {
		m := &domain.Message{
			ID:        fmt.Sprintf("m%d", i),
			ColocID:   "c",
			Username:  "Alice",
			Text:      fmt.Sprintf("message %d", i),
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		}
		if err := s.InsertMessage(ctx, m); err != nil {
			t.Fatalf("InsertMessage failed: %v", err)
		}
	}

	msgs, err := s.RecentMessages(ctx, "c", 50)
	if err != nil {
		t.Fatalf("RecentMessages failed: %v", err)
	}
	if len(msgs) != 50 {
		t.Fatalf("expected 50 messages, got %d", len(msgs))
	}
	// Most recent 50, oldest first.
	if msgs[0].ID != "m10" || msgs[49].ID != "m59" {
		t.Errorf("expected m10..m59, got %s..%s", msgs[0].ID, msgs[49].ID)
	}

	empty, err := s.RecentMessages(ctx, "unknown", 50)
	if err != nil {
		t.Fatalf("RecentMessages on unknown coloc failed: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("unknown coloc must have empty history, got %d", len(empty))
	}
}

func TestStore_ClonesProtectInternals(t *testing.T) {
	ctx := context.Background()
	s := New(50)

	g := newGroup("g1", "SOLEIL-42")
	if err := s.InsertGroup(ctx, g); err != nil {
		t.Fatalf("InsertGroup failed: %v", err)
	}

	got, _ := s.GroupByID(ctx, "g1")
	got.Members = append(got.Members, "Mallory")

	again, _ := s.GroupByID(ctx, "g1")
	if len(again.Members) != 1 {
		t.Errorf("mutating a returned group must not affect the store, members=%v", again.Members)
	}
}
