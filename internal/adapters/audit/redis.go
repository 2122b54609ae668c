package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dkeye/Meet/internal/domain"
	"github.com/go-redis/redis/v8"
)

// RedisSink appends audit entries to one Redis list per room so they
// outlive the process.
type RedisSink struct {
	client    redis.Cmdable
	keyPrefix string
}

func NewRedisSink(client redis.Cmdable, keyPrefix string) *RedisSink {
	if keyPrefix == "" {
		keyPrefix = "meet:audit"
	}
	return &RedisSink{client: client, keyPrefix: keyPrefix}
}

func (s *RedisSink) roomKey(room domain.RoomID) string {
	return fmt.Sprintf("%s:%s", s.keyPrefix, room)
}

func (s *RedisSink) Write(ctx context.Context, e domain.AuditEntry) error {
	b, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("audit: marshal entry %s: %w", e.ID, err)
	}
	key := s.roomKey(e.RoomID)
	if err := s.client.RPush(ctx, key, b).Err(); err != nil {
		return fmt.Errorf("audit: rpush %s: %w", key, err)
	}
	return nil
}

// Entries reads back a room's persisted trail.
func (s *RedisSink) Entries(ctx context.Context, room domain.RoomID) ([]domain.AuditEntry, error) {
	key := s.roomKey(room)
	raw, err := s.client.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("audit: lrange %s: %w", key, err)
	}
	out := make([]domain.AuditEntry, 0, len(raw))
	for _, r := range raw {
		var e domain.AuditEntry
		if err := json.Unmarshal([]byte(r), &e); err != nil {
			return nil, fmt.Errorf("audit: decode entry in %s: %w", key, err)
		}
		out = append(out, e)
	}
	return out, nil
}

// Ping checks the connection at startup.
func (s *RedisSink) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("audit: redis ping: %w", err)
	}
	return nil
}
