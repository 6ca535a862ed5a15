// Package queue is the forecast event bus: fit and forecast completions
// are published as JSON events over a pluggable backend (memory, NATS
// JetStream, Redis Streams, or Kafka).
package queue

import "context"

// Publisher publishes messages to a subject/topic.
type Publisher interface {
	Publish(ctx context.Context, subject string, data []byte) error

	// PublishBatch publishes multiple messages and reports how many
	// succeeded.
	PublishBatch(ctx context.Context, messages []BatchMessage) (int, error)

	Close() error
}

// BatchMessage is one message of a batch publish.
type BatchMessage struct {
	Subject string
	Data    []byte
}

// MessageHandler handles incoming messages. A non-nil error leaves the
// message unacknowledged for backends that support redelivery.
type MessageHandler func(data []byte) error

// Subscriber consumes messages from a subject/topic.
type Subscriber interface {
	Subscribe(subject string, handler MessageHandler) error
	Unsubscribe(subject string) error
	Close() error
}

// Queue combines Publisher and Subscriber.
type Queue interface {
	Publisher
	Subscriber
}
