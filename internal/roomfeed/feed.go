// Package roomfeed mirrors committed room events to Redis: a pub/sub channel
// carrying every event and a live-room index with per-room activity stamps
// that external tooling can use to find idle rooms.
package roomfeed

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Event is one committed room change.
type Event struct {
	Type   string          `json:"type"`
	RoomID string          `json:"room_id"`
	At     time.Time       `json:"at"`
	Data   json.RawMessage `json:"data,omitempty"`
}

// Feed receives committed room events. Implementations must be safe for
// concurrent use.
type Feed interface {
	Publish(ctx context.Context, ev Event) error
	MarkLive(ctx context.Context, roomID string) error
	MarkEnded(ctx context.Context, roomID string) error
	Close() error
}

// Nop discards everything.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error    { return nil }
func (Nop) MarkLive(context.Context, string) error  { return nil }
func (Nop) MarkEnded(context.Context, string) error { return nil }
func (Nop) Close() error                            { return nil }

// Redis publishes to a go-redis client.
type Redis struct {
	rdb     *redis.Client
	channel string
	ttl     time.Duration
}

// Dial connects to redisURL and verifies the connection.
func Dial(ctx context.Context, redisURL, channel string, ttl time.Duration) (*Redis, error) {
	if strings.TrimSpace(redisURL) == "" {
		return nil, fmt.Errorf("redis url required for room feed")
	}
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return NewRedis(rdb, channel, ttl), nil
}

func NewRedis(rdb *redis.Client, channel string, ttl time.Duration) *Redis {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Redis{rdb: rdb, channel: channel, ttl: ttl}
}

func (r *Redis) keyLive() string                  { return r.channel + ":live" }
func (r *Redis) keyActivity(roomID string) string { return r.channel + ":room:" + roomID + ":last" }

// Channel is the pub/sub channel events are published on.
func (r *Redis) Channel() string { return r.channel }

func (r *Redis) Publish(ctx context.Context, ev Event) error {
	raw, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	_, err = r.rdb.Pipelined(ctx, func(p redis.Pipeliner) error {
		p.Publish(ctx, r.channel, raw)
		if ev.RoomID != "" {
			p.Set(ctx, r.keyActivity(ev.RoomID), ev.At.UTC().Format(time.RFC3339Nano), r.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("publish %s: %w", ev.Type, err)
	}
	return nil
}

func (r *Redis) MarkLive(ctx context.Context, roomID string) error {
	if strings.TrimSpace(roomID) == "" {
		return nil
	}
	if err := r.rdb.SAdd(ctx, r.keyLive(), roomID).Err(); err != nil {
		return fmt.Errorf("mark live: %w", err)
	}
	return r.rdb.Expire(ctx, r.keyLive(), r.ttl).Err()
}

func (r *Redis) MarkEnded(ctx context.Context, roomID string) error {
	if err := r.rdb.SRem(ctx, r.keyLive(), roomID).Err(); err != nil {
		return fmt.Errorf("mark ended: %w", err)
	}
	return nil
}

// LiveRooms returns the indexed live rooms.
func (r *Redis) LiveRooms(ctx context.Context) ([]string, error) {
	return r.rdb.SMembers(ctx, r.keyLive()).Result()
}

// LastActivity returns when roomID last published an event.
func (r *Redis) LastActivity(ctx context.Context, roomID string) (time.Time, bool, error) {
	raw, err := r.rdb.Get(ctx, r.keyActivity(roomID)).Result()
	if err == redis.Nil {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}
	at, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("parse activity stamp: %w", err)
	}
	return at, true, nil
}

func (r *Redis) Close() error { return r.rdb.Close() }
