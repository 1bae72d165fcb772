package events

import (
	"context"
	"encoding/json"
	"time"
)

// ChannelAdCreated is the channel new-ad events are published on. Feed
// listeners (notification fan-out, realtime push) subscribe to it.
const ChannelAdCreated = "ads.created"

// Message represents a broker-agnostic payload delivered to subscribers.
type Message struct {
	ID         string
	Data       []byte
	Attributes map[string]string
}

// Handler processes a message. Return an error to signal a retry/nack.
type Handler func(ctx context.Context, msg Message) error

// Backend defines the broker-agnostic operations used by the app.
type Backend interface {
	Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error)
	Subscribe(ctx context.Context, channel string, handler Handler) error
	Close() error
}

// AdCreatedEvent is the payload published when an ad is posted.
type AdCreatedEvent struct {
	AdID      int       `json:"ad_id"`
	Title     string    `json:"title"`
	UserID    int       `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Events wraps a backend with a stable API.
type Events struct {
	backend Backend
}

// New constructs an Events wrapper for the provided backend.
func New(backend Backend) *Events {
	return &Events{backend: backend}
}

// PublishAdCreated serializes and publishes an ad-created event.
func (e *Events) PublishAdCreated(ctx context.Context, event AdCreatedEvent) (string, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return "", err
	}
	return e.backend.Publish(ctx, ChannelAdCreated, data, map[string]string{
		"content-type": "application/json",
	})
}

// Subscribe consumes messages from the named channel.
func (e *Events) Subscribe(ctx context.Context, channel string, handler Handler) error {
	return e.backend.Subscribe(ctx, channel, handler)
}

// Close closes the underlying backend.
func (e *Events) Close() error {
	return e.backend.Close()
}
