package queue

import (
	"testing"

	"github.com/panelcast/panelcast/internal/config"
)

func TestNewQueueMemory(t *testing.T) {
	q, err := NewQueue(config.QueueConfig{Type: "memory"})
	if err != nil {
		t.Fatalf("NewQueue(memory) failed: %v", err)
	}
	defer q.Close()

	if _, ok := q.(*MemoryQueue); !ok {
		t.Errorf("expected *MemoryQueue, got %T", q)
	}
}

func TestNewQueueTypeIsCaseInsensitive(t *testing.T) {
	q, err := NewQueue(config.QueueConfig{Type: "Memory"})
	if err != nil {
		t.Fatalf("NewQueue(Memory) failed: %v", err)
	}
	defer q.Close()
}

func TestNewQueueUnsupportedType(t *testing.T) {
	if _, err := NewQueue(config.QueueConfig{Type: "rabbitmq"}); err == nil {
		t.Error("expected error for unsupported queue type")
	}
}

func TestNewQueueKafkaRequiresBrokers(t *testing.T) {
	if _, err := NewQueue(config.QueueConfig{Type: "kafka"}); err == nil {
		t.Error("expected error when kafka brokers are missing")
	}
}

func TestNewPublisherAndSubscriber(t *testing.T) {
	cfg := config.QueueConfig{Type: "memory"}

	pub, err := NewPublisher(cfg)
	if err != nil {
		t.Fatalf("NewPublisher failed: %v", err)
	}
	defer pub.Close()

	sub, err := NewSubscriber(cfg)
	if err != nil {
		t.Fatalf("NewSubscriber failed: %v", err)
	}
	defer sub.Close()
}
