package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	redisv9 "github.com/redis/go-redis/v9"

	"newsrag/internal/model"
)

// HistoryLog keeps each chat session's messages in a Redis list with a
// sliding TTL. It is the hot read path for history; durable storage is the
// MySQL archive written by the persist worker.
type HistoryLog struct {
	client *redisv9.Client
	ttl    time.Duration
}

func NewHistoryLog(client *redisv9.Client, ttl time.Duration) *HistoryLog {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &HistoryLog{
		client: client,
		ttl:    ttl,
	}
}

// Append pushes the message onto the session's list and refreshes the TTL.
func (l *HistoryLog) Append(ctx context.Context, sessionID string, msg model.Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal history message failed: %w", err)
	}
	key := l.historyKey(sessionID)
	if err := l.client.RPush(ctx, key, payload).Err(); err != nil {
		return fmt.Errorf("redis append history failed: %w", err)
	}
	if err := l.client.Expire(ctx, key, l.ttl).Err(); err != nil {
		return fmt.Errorf("redis expire history failed: %w", err)
	}
	return nil
}

// List returns all messages of the session in append order.
func (l *HistoryLog) List(ctx context.Context, sessionID string) ([]model.Message, error) {
	raw, err := l.client.LRange(ctx, l.historyKey(sessionID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("redis read history failed: %w", err)
	}

	messages := make([]model.Message, 0, len(raw))
	for _, item := range raw {
		var msg model.Message
		if err := json.Unmarshal([]byte(item), &msg); err != nil {
			return nil, fmt.Errorf("unmarshal history message failed: %w", err)
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

// Clear drops the session's list.
func (l *HistoryLog) Clear(ctx context.Context, sessionID string) error {
	if err := l.client.Del(ctx, l.historyKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("redis clear history failed: %w", err)
	}
	return nil
}

func (l *HistoryLog) historyKey(sessionID string) string {
	return "chat:history:" + sessionID
}
