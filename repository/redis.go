package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"go-storefront/models"
)

// RedisChatSessions keeps the most recent chat turns of each session in a
// capped Redis list that expires after ttl of inactivity.
type RedisChatSessions struct {
	client   *redis.Client
	ttl      time.Duration
	maxTurns int
}

func NewRedisChatSessions(client *redis.Client, ttl time.Duration, maxTurns int) *RedisChatSessions {
	return &RedisChatSessions{client: client, ttl: ttl, maxTurns: maxTurns}
}

func chatKey(sessionID string) string {
	return fmt.Sprintf("chat:session:%s", sessionID)
}

func (r *RedisChatSessions) History(ctx context.Context, sessionID string) ([]models.ChatMessage, error) {
	raw, err := r.client.LRange(ctx, chatKey(sessionID), 0, -1).Result()
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("read chat history: %w", err)
	}
	msgs := make([]models.ChatMessage, 0, len(raw))
	for _, s := range raw {
		var m models.ChatMessage
		if err := json.Unmarshal([]byte(s), &m); err != nil {
			continue
		}
		msgs = append(msgs, m)
	}
	return msgs, nil
}

func (r *RedisChatSessions) Append(ctx context.Context, sessionID string, msgs ...models.ChatMessage) error {
	if len(msgs) == 0 {
		return nil
	}
	values := make([]interface{}, 0, len(msgs))
	for _, m := range msgs {
		data, err := json.Marshal(m)
		if err != nil {
			return err
		}
		values = append(values, data)
	}

	key := chatKey(sessionID)
	pipe := r.client.TxPipeline()
	pipe.RPush(ctx, key, values...)
	// a turn is a customer message plus its reply
	pipe.LTrim(ctx, key, int64(-2*r.maxTurns), -1)
	pipe.Expire(ctx, key, r.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("append chat history: %w", err)
	}
	return nil
}
