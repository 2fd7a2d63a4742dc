package events

import (
	"context"
	"encoding/json"
	"log"

	"github.com/redis/go-redis/v9"
)

// RedisBus fans reward events out over redis pub/sub so additional processes
// (a future notify bridge, analytics) can consume the same stream.
type RedisBus struct {
	client *redis.Client
}

func NewRedisBus(client *redis.Client) *RedisBus {
	return &RedisBus{client: client}
}

func (b *RedisBus) Publish(ctx context.Context, ev RewardEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return b.client.Publish(ctx, RewardChannel, string(data)).Err()
}

func (b *RedisBus) Subscribe(ctx context.Context, handler func(RewardEvent)) error {
	pubsub := b.client.Subscribe(ctx, RewardChannel)
	ch := pubsub.Channel()

	go func() {
		defer pubsub.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var ev RewardEvent
				if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
					log.Printf("[EVENTS] failed to unmarshal reward event: %v", err)
					continue
				}
				handler(ev)
			}
		}
	}()

	return nil
}
