package store

import (
	"context"

	"github.com/colocapp/colocourses/internal/domain"
)

// Store is the durable document-store boundary: plain insert / filtered find /
// find-one-and-update / find-one-and-delete / delete-many semantics, no
// transactions across collections. Every item and message operation is keyed
// by coloc id; cross-coloc access is impossible through this interface.
type Store interface {
	// Colocs
	InsertGroup(ctx context.Context, g *domain.Group) error
	GroupByID(ctx context.Context, id string) (*domain.Group, error)
	GroupByCode(ctx context.Context, code string) (*domain.Group, error)
	UpdateGroup(ctx context.Context, g *domain.Group) error

	// Items
	InsertItem(ctx context.Context, it *domain.Item) error
	FindItems(ctx context.Context, groupID string, f domain.ItemFilter) ([]*domain.Item, error)
	// UpdateItem and DeleteItem match on BOTH ids and return NotFoundError
	// when either does not: knowing another coloc's item id is not enough
	// to touch it.
	UpdateItem(ctx context.Context, groupID, itemID string, patch domain.ItemPatch) (*domain.Item, error)
	DeleteItem(ctx context.Context, groupID, itemID string) error
	DeleteBoughtItems(ctx context.Context, groupID string) (int, error)

	// Messages (append-only, bounded retrieval)
	InsertMessage(ctx context.Context, m *domain.Message) error
	RecentMessages(ctx context.Context, groupID string, limit int) ([]*domain.Message, error)
}
