package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/colocapp/colocourses/internal/domain"
)

// InsertItem stores an item document and appends its id to the owning
// coloc's list, preserving creation order.
func (s *Store) InsertItem(ctx context.Context, it *domain.Item) error {
	data, err := json.Marshal(it)
	if err != nil {
		return fmt.Errorf("failed to marshal item: %w", err)
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, ItemKey(it.ID), data, 0)
	pipe.RPush(ctx, ItemListKey(it.ColocID), it.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save item: %w", err)
	}
	return nil
}

// FindItems loads a coloc's items and applies filter and sort in-app.
// The id list scopes the fetch: items of other colocs are never touched.
func (s *Store) FindItems(ctx context.Context, groupID string, f domain.ItemFilter) ([]*domain.Item, error) {
	items, err := s.loadItems(ctx, groupID)
	if err != nil {
		return nil, err
	}

	matched := make([]*domain.Item, 0, len(items))
	for _, it := range items {
		if f.Match(it) {
			matched = append(matched, it)
		}
	}
	domain.SortItems(matched, f.SortBy)
	return matched, nil
}

// UpdateItem patches an item only when both the item id and the coloc id
// match; anything else is a not-found, never a cross-coloc write.
func (s *Store) UpdateItem(ctx context.Context, groupID, itemID string, patch domain.ItemPatch) (*domain.Item, error) {
	it, err := s.getItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if it == nil || it.ColocID != groupID {
		return nil, domain.NotFoundf("article introuvable")
	}

	patch.Apply(it, time.Now())

	data, err := json.Marshal(it)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal item: %w", err)
	}
	if err := s.client.Set(ctx, ItemKey(it.ID), data, 0).Err(); err != nil {
		return nil, fmt.Errorf("failed to update item: %w", err)
	}
	return it, nil
}

// DeleteItem removes an item with the same double-key check as UpdateItem.
func (s *Store) DeleteItem(ctx context.Context, groupID, itemID string) error {
	it, err := s.getItem(ctx, itemID)
	if err != nil {
		return err
	}
	if it == nil || it.ColocID != groupID {
		return domain.NotFoundf("article introuvable")
	}

	pipe := s.client.Pipeline()
	pipe.Del(ctx, ItemKey(itemID))
	pipe.LRem(ctx, ItemListKey(groupID), 1, itemID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}
	return nil
}

// DeleteBoughtItems bulk-removes every bought item of a coloc and returns
// how many were removed.
func (s *Store) DeleteBoughtItems(ctx context.Context, groupID string) (int, error) {
	items, err := s.loadItems(ctx, groupID)
	if err != nil {
		return 0, err
	}

	pipe := s.client.Pipeline()
	deleted := 0
	for _, it := range items {
		if !it.Bought {
			continue
		}
		pipe.Del(ctx, ItemKey(it.ID))
		pipe.LRem(ctx, ItemListKey(groupID), 1, it.ID)
		deleted++
	}
	if deleted == 0 {
		return 0, nil
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("failed to clear bought items: %w", err)
	}
	return deleted, nil
}

// getItem returns (nil, nil) when the document does not exist.
func (s *Store) getItem(ctx context.Context, id string) (*domain.Item, error) {
	data, err := s.client.Get(ctx, ItemKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get item: %w", err)
	}

	var it domain.Item
	if err := json.Unmarshal(data, &it); err != nil {
		return nil, fmt.Errorf("failed to unmarshal item: %w", err)
	}
	return &it, nil
}

func (s *Store) loadItems(ctx context.Context, groupID string) ([]*domain.Item, error) {
	ids, err := s.client.LRange(ctx, ItemListKey(groupID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list item ids: %w", err)
	}
	if len(ids) == 0 {
		return []*domain.Item{}, nil
	}

	pipe := s.client.Pipeline()
	cmds := make([]*redis.StringCmd, len(ids))
	for i, id := range ids {
		cmds[i] = pipe.Get(ctx, ItemKey(id))
	}
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("failed to fetch items: %w", err)
	}

	items := make([]*domain.Item, 0, len(ids))
	for _, cmd := range cmds {
		data, err := cmd.Bytes()
		if err != nil {
			// Skip ids whose document vanished (concurrent delete).
			continue
		}
		var it domain.Item
		if err := json.Unmarshal(data, &it); err != nil {
			continue
		}
		items = append(items, &it)
	}
	return items, nil
}
