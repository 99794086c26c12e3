package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/colocapp/colocourses/internal/domain"
)

// InsertGroup stores a coloc document and indexes its join code.
func (s *Store) InsertGroup(ctx context.Context, g *domain.Group) error {
	data, err := json.Marshal(g)
	if err != nil {
		return fmt.Errorf("failed to marshal coloc: %w", err)
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, GroupKey(g.ID), data, 0)
	pipe.Set(ctx, CodeKey(domain.NormalizeCode(g.Code)), g.ID, 0)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save coloc: %w", err)
	}
	return nil
}

// GroupByID retrieves a coloc document by id.
func (s *Store) GroupByID(ctx context.Context, id string) (*domain.Group, error) {
	data, err := s.client.Get(ctx, GroupKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.NotFoundf("coloc introuvable")
		}
		return nil, fmt.Errorf("failed to get coloc: %w", err)
	}

	var g domain.Group
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("failed to unmarshal coloc: %w", err)
	}
	return &g, nil
}

// GroupByCode resolves a join code (case-insensitive) to its coloc.
func (s *Store) GroupByCode(ctx context.Context, code string) (*domain.Group, error) {
	normalized := domain.NormalizeCode(code)
	id, err := s.client.Get(ctx, CodeKey(normalized)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.NotFoundf("aucune coloc avec le code %q", normalized)
		}
		return nil, fmt.Errorf("failed to resolve code: %w", err)
	}
	return s.GroupByID(ctx, id)
}

// UpdateGroup overwrites a coloc document. The code is immutable after
// creation so the code index never needs a rewrite.
func (s *Store) UpdateGroup(ctx context.Context, g *domain.Group) error {
	exists, err := s.client.Exists(ctx, GroupKey(g.ID)).Result()
	if err != nil {
		return fmt.Errorf("failed to check coloc: %w", err)
	}
	if exists == 0 {
		return domain.NotFoundf("coloc introuvable")
	}

	data, err := json.Marshal(g)
	if err != nil {
		return fmt.Errorf("failed to marshal coloc: %w", err)
	}
	if err := s.client.Set(ctx, GroupKey(g.ID), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to update coloc: %w", err)
	}
	return nil
}
