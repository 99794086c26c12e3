package scheduler

import (
	"context"
	"time"

	"github.com/colocapp/colocourses/internal/logger"
	redisstore "github.com/colocapp/colocourses/internal/store/redis"
)

// MessageTrimmer handles periodic trimming of per-coloc chat history
type MessageTrimmer struct {
	store    *redisstore.Store
	logger   logger.Logger
	interval time.Duration
	stopCh   chan struct{}
}

// NewMessageTrimmer creates a new message trimmer
func NewMessageTrimmer(store *redisstore.Store, log logger.Logger, interval time.Duration) *MessageTrimmer {
	return &MessageTrimmer{
		store:    store,
		logger:   log,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the periodic trim process
func (mt *MessageTrimmer) Start(ctx context.Context) {
	ticker := time.NewTicker(mt.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := mt.Trim(ctx); err != nil {
					mt.logger.Error("failed to trim chat history",
						logger.Error(err))
				}
			case <-mt.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop stops the trimmer
func (mt *MessageTrimmer) Stop() {
	close(mt.stopCh)
}

// Trim caps every coloc's chat history at the configured retention. The
// write path already trims on insert; this pass catches lists written
// before a retention decrease.
func (mt *MessageTrimmer) Trim(ctx context.Context) error {
	trimmed, err := mt.store.TrimAllMessages(ctx)
	if err != nil {
		return err
	}
	if trimmed > 0 {
		mt.logger.Info("trimmed chat history",
			logger.Int("lists", trimmed))
	}
	return nil
}
