package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"

	"github.com/SARVESHVARADKAR123/profile-service/internal/events"
)

// Consumer reads profile events from every profile topic as one consumer group.
type Consumer struct {
	r *kafka.Reader
}

func NewConsumer(brokers []string, groupID string) *Consumer {
	return &Consumer{
		r: kafka.NewReader(kafka.ReaderConfig{
			Brokers:     brokers,
			GroupID:     groupID,
			GroupTopics: []string{events.TypeProfileCreated, events.TypeProfileUpdated},
		}),
	}
}

// Read blocks until the next event arrives or ctx is done.
func (c *Consumer) Read(ctx context.Context) (events.Event, error) {
	msg, err := c.r.ReadMessage(ctx)
	if err != nil {
		return events.Event{}, err
	}
	return fromMessage(msg)
}

func (c *Consumer) Close() error { return c.r.Close() }

func fromMessage(msg kafka.Message) (events.Event, error) {
	var e events.Event
	if err := json.Unmarshal(msg.Value, &e); err != nil {
		return events.Event{}, fmt.Errorf("decode event from %s: %w", msg.Topic, err)
	}
	return e, nil
}
