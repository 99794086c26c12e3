package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/colocapp/colocourses/internal/domain"
)

// InsertMessage appends a chat entry to the coloc's log and trims the log to
// the retention cap in the same pipeline.
func (s *Store) InsertMessage(ctx context.Context, m *domain.Message) error {
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	key := MessagesKey(m.ColocID)
	pipe := s.client.Pipeline()
	pipe.RPush(ctx, key, data)
	pipe.LTrim(ctx, key, int64(-s.retain), -1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save message: %w", err)
	}
	return nil
}

// RecentMessages returns the most recent limit entries, oldest first.
// The log is stored in insertion order, so the tail of the list is already
// the recent window in chronological order.
func (s *Store) RecentMessages(ctx context.Context, groupID string, limit int) ([]*domain.Message, error) {
	start := int64(0)
	if limit > 0 {
		start = int64(-limit)
	}
	raw, err := s.client.LRange(ctx, MessagesKey(groupID), start, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch messages: %w", err)
	}

	messages := make([]*domain.Message, 0, len(raw))
	for _, data := range raw {
		var m domain.Message
		if err := json.Unmarshal([]byte(data), &m); err != nil {
			continue
		}
		messages = append(messages, &m)
	}
	return messages, nil
}

// TrimAllMessages re-trims every chat log to the retention cap. The insert
// path already trims; this is the periodic pass catching logs written by
// older deployments or interrupted pipelines.
func (s *Store) TrimAllMessages(ctx context.Context) (int, error) {
	trimmed := 0
	iter := s.client.Scan(ctx, 0, KeyPrefixMessages+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := s.client.LTrim(ctx, iter.Val(), int64(-s.retain), -1).Err(); err != nil {
			return trimmed, fmt.Errorf("failed to trim %s: %w", iter.Val(), err)
		}
		trimmed++
	}
	if err := iter.Err(); err != nil {
		return trimmed, fmt.Errorf("failed to scan chat logs: %w", err)
	}
	return trimmed, nil
}
