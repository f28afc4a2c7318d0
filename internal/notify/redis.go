package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Publisher is the subset of the go-redis client the sink needs.
type Publisher interface {
	Publish(ctx context.Context, channel string, message any) *redis.IntCmd
}

// RedisSink publishes JSON encoded events on a pub/sub channel.
type RedisSink struct {
	client  Publisher
	channel string
	clock   func() time.Time
}

func NewRedisSink(client Publisher, channel string) *RedisSink {
	return &RedisSink{client: client, channel: channel, clock: time.Now}
}

func (s *RedisSink) PublishStatus(ctx context.Context, ev StatusEvent) error {
	return s.publish(ctx, Event{Kind: KindStatus, Status: &ev})
}

func (s *RedisSink) PublishOutcome(ctx context.Context, ev OutcomeEvent) error {
	return s.publish(ctx, Event{Kind: KindOutcome, Outcome: &ev})
}

func (s *RedisSink) publish(ctx context.Context, ev Event) error {
	ev.At = s.clock().UTC()
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", ev.Kind, err)
	}
	if err := s.client.Publish(ctx, s.channel, payload).Err(); err != nil {
		return fmt.Errorf("publish %s event: %w", ev.Kind, err)
	}
	return nil
}
