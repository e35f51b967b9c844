package mailer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// IdempotencyStore deduplicates confirmation events so that a redelivered
// Kafka message never produces a second email.
type IdempotencyStore struct {
	redis  *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewIdempotencyStore creates a new idempotency store. Records are kept for
// 24 hours, matching the window in which the broker could redeliver.
func NewIdempotencyStore(redisClient *redis.Client, logger *slog.Logger) *IdempotencyStore {
	return &IdempotencyStore{
		redis:  redisClient,
		ttl:    24 * time.Hour,
		logger: logger,
	}
}

func (s *IdempotencyStore) buildKey(messageID string) string {
	return fmt.Sprintf("confirmation:sent:%s", messageID)
}

// IsProcessed checks if an event has already been handled
func (s *IdempotencyStore) IsProcessed(ctx context.Context, messageID string) (bool, error) {
	exists, err := s.redis.Exists(ctx, s.buildKey(messageID)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check idempotency record: %w", err)
	}

	return exists > 0, nil
}

// MarkAsProcessed records an event as handled. Returns true when this call
// created the record, false when another consumer won the race. SET NX keeps
// the check-and-set atomic.
func (s *IdempotencyStore) MarkAsProcessed(ctx context.Context, event Event) (bool, error) {
	metadata := Metadata{
		SentAt:    time.Now(),
		Recipient: event.Recipient,
		EventType: event.EventType,
	}

	metadataJSON, err := json.Marshal(metadata)
	if err != nil {
		return false, fmt.Errorf("failed to marshal metadata: %w", err)
	}

	success, err := s.redis.SetNX(ctx, s.buildKey(event.MessageID), metadataJSON, s.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to mark event as processed: %w", err)
	}

	if success {
		s.logger.Info("Marked confirmation as processed",
			"message_id", event.MessageID,
			"recipient", event.Recipient)
	} else {
		s.logger.Warn("Confirmation already processed (duplicate detected)",
			"message_id", event.MessageID,
			"recipient", event.Recipient)
	}

	return success, nil
}

// GetMetadata retrieves the stored metadata for a processed event
func (s *IdempotencyStore) GetMetadata(ctx context.Context, messageID string) (*Metadata, error) {
	data, err := s.redis.Get(ctx, s.buildKey(messageID)).Result()
	if err == redis.Nil {
		return nil, fmt.Errorf("event not found: %s", messageID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get metadata: %w", err)
	}

	var metadata Metadata
	if err := json.Unmarshal([]byte(data), &metadata); err != nil {
		return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
	}

	return &metadata, nil
}
