package redis

import (
	"github.com/redis/go-redis/v9"
)

// Store implements the document-store boundary on Redis: one JSON document
// per coloc/item, a per-coloc id list for items, and a capped list per chat
// log. Filtering and sorting happen in-app over the fetched documents.
type Store struct {
	client *redis.Client
	retain int // messages kept per chat log
}

// NewStore creates a new Redis store retaining up to retain messages per
// coloc chat log.
func NewStore(client *redis.Client, retain int) *Store {
	if retain < 50 {
		retain = 50
	}
	return &Store{
		client: client,
		retain: retain,
	}
}
