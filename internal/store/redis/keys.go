package redis

const (
	// KeyPrefixGroup is the prefix for coloc documents
	KeyPrefixGroup = "coloc:group:"
	// KeyPrefixCode indexes normalized join codes to coloc ids
	KeyPrefixCode = "coloc:code:"
	// KeyPrefixItem is the prefix for item documents
	KeyPrefixItem = "coloc:item:"
	// KeyPrefixItemList is the prefix for per-coloc item id lists
	KeyPrefixItemList = "coloc:items:"
	// KeyPrefixMessages is the prefix for per-coloc chat logs
	KeyPrefixMessages = "coloc:messages:"
)

// GroupKey returns the Redis key for a coloc document by id
func GroupKey(id string) string {
	return KeyPrefixGroup + id
}

// CodeKey returns the Redis key indexing a normalized join code
func CodeKey(code string) string {
	return KeyPrefixCode + code
}

// ItemKey returns the Redis key for an item document by id
func ItemKey(id string) string {
	return KeyPrefixItem + id
}

// ItemListKey returns the Redis key for a coloc's ordered item id list
func ItemListKey(groupID string) string {
	return KeyPrefixItemList + groupID
}

// MessagesKey returns the Redis key for a coloc's chat log
func MessagesKey(groupID string) string {
	return KeyPrefixMessages + groupID
}
