package pubsub

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/SARVESHVARADKAR123/profile-service/internal/events"
)

// ProfileUpdates is the channel every profile event is published on.
const ProfileUpdates = "profile:updates"

// Notifier publishes profile events on a Redis pub/sub channel so live
// clients can follow profile changes.
type Notifier struct {
	client  *redis.Client
	channel string
}

func New(addr string) *Notifier {
	return NewWithClient(redis.NewClient(&redis.Options{Addr: addr}))
}

func NewWithClient(client *redis.Client) *Notifier {
	return &Notifier{client: client, channel: ProfileUpdates}
}

func (n *Notifier) Name() string { return "redis" }

func (n *Notifier) Ping(ctx context.Context) error {
	return n.client.Ping(ctx).Err()
}

func (n *Notifier) Send(ctx context.Context, e events.Event) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return n.client.Publish(ctx, n.channel, payload).Err()
}

// Subscribe returns a subscription to the profile channel. Callers must close it.
func (n *Notifier) Subscribe(ctx context.Context) *redis.PubSub {
	return n.client.Subscribe(ctx, n.channel)
}

func (n *Notifier) Close() error { return n.client.Close() }

// Decode parses a message received from a profile subscription.
func Decode(msg *redis.Message) (events.Event, error) {
	var e events.Event
	if err := json.Unmarshal([]byte(msg.Payload), &e); err != nil {
		return events.Event{}, fmt.Errorf("decode event from %s: %w", msg.Channel, err)
	}
	return e, nil
}
