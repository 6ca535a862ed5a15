package queue

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
)

// startJetStreamServer runs an embedded NATS server with JetStream on a
// random port.
func startJetStreamServer(t *testing.T) *server.Server {
	t.Helper()

	opts := &server.Options{
		Host:      "127.0.0.1",
		Port:      -1,
		JetStream: true,
		StoreDir:  t.TempDir(),
	}
	ns, err := server.NewServer(opts)
	if err != nil {
		t.Fatalf("failed to create NATS server: %v", err)
	}
	ns.Start()
	if !ns.ReadyForConnections(5 * time.Second) {
		ns.Shutdown()
		t.Fatal("NATS server did not become ready")
	}
	t.Cleanup(ns.Shutdown)
	return ns
}

func TestNATSPublishSubscribe(t *testing.T) {
	ns := startJetStreamServer(t)

	q, err := newNATSQueue(ns.ClientURL())
	if err != nil {
		t.Fatalf("failed to create NATS queue: %v", err)
	}
	defer q.Close()

	var mu sync.Mutex
	var received []ModelFittedEvent
	err = q.Subscribe(SubjectModelFitted, func(data []byte) error {
		var ev ModelFittedEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			return err
		}
		mu.Lock()
		received = append(received, ev)
		mu.Unlock()
		return nil
	})
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}

	want := ModelFittedEvent{
		ModelID:  "9f2c6f0e-0000-4000-8000-000000000002",
		Strategy: "direct",
		Horizon:  7,
		Entities: 40,
		FittedAt: time.Date(2026, 8, 31, 9, 30, 0, 0, time.UTC),
	}
	if err := PublishEvent(context.Background(), q, SubjectModelFitted, want); err != nil {
		t.Fatalf("PublishEvent failed: %v", err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for {
		mu.Lock()
		n := len(received)
		mu.Unlock()
		if n >= 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("timed out waiting for event delivery")
		}
		time.Sleep(20 * time.Millisecond)
	}

	mu.Lock()
	defer mu.Unlock()
	if received[0] != want {
		t.Errorf("event mismatch: got %+v want %+v", received[0], want)
	}
}

func TestNATSPublishBatch(t *testing.T) {
	ns := startJetStreamServer(t)

	q, err := newNATSQueue(ns.ClientURL())
	if err != nil {
		t.Fatalf("failed to create NATS queue: %v", err)
	}
	defer q.Close()

	// Streams must exist before JetStream accepts publishes.
	if err := q.Subscribe(SubjectForecastCompleted, func([]byte) error { return nil }); err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}

	messages := make([]BatchMessage, 10)
	for i := range messages {
		data, _ := json.Marshal(ForecastCompletedEvent{
			Entities:    i + 1,
			Horizon:     3,
			CompletedAt: time.Now().UTC(),
		})
		messages[i] = BatchMessage{Subject: SubjectForecastCompleted, Data: data}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	count, err := q.PublishBatch(ctx, messages)
	if err != nil {
		t.Fatalf("PublishBatch failed: %v", err)
	}
	if count != 10 {
		t.Errorf("expected 10 published, got %d", count)
	}
}

func TestNATSRedeliveryOnHandlerError(t *testing.T) {
	ns := startJetStreamServer(t)

	q, err := newNATSQueue(ns.ClientURL())
	if err != nil {
		t.Fatalf("failed to create NATS queue: %v", err)
	}
	defer q.Close()

	subject := "panelcast.test.redelivery"
	var mu sync.Mutex
	attempts := 0
	err = q.Subscribe(subject, func(data []byte) error {
		mu.Lock()
		defer mu.Unlock()
		attempts++
		if attempts == 1 {
			return context.DeadlineExceeded // nak, force redelivery
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}

	if err := q.Publish(context.Background(), subject, []byte("retry-me")); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	deadline := time.Now().Add(10 * time.Second)
	for {
		mu.Lock()
		n := attempts
		mu.Unlock()
		if n >= 2 {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("expected redelivery after nak, attempts=%d", n)
		}
		time.Sleep(50 * time.Millisecond)
	}
}

func TestNATSUnsubscribe(t *testing.T) {
	ns := startJetStreamServer(t)

	q, err := newNATSQueue(ns.ClientURL())
	if err != nil {
		t.Fatalf("failed to create NATS queue: %v", err)
	}
	defer q.Close()

	if err := q.Unsubscribe("panelcast.test.none"); err == nil {
		t.Error("expected error unsubscribing from unknown subject")
	}

	subject := "panelcast.test.unsub"
	if err := q.Subscribe(subject, func([]byte) error { return nil }); err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	if err := q.Subscribe(subject, func([]byte) error { return nil }); err == nil {
		t.Error("expected error on duplicate subscription")
	}
	if err := q.Unsubscribe(subject); err != nil {
		t.Errorf("Unsubscribe failed: %v", err)
	}
}

func TestNATSConnectFailure(t *testing.T) {
	if _, err := newNATSQueue("nats://127.0.0.1:1"); err == nil {
		t.Error("expected connection error for unreachable server")
	}
}

func TestSanitizeConsumerName(t *testing.T) {
	cases := map[string]string{
		"panelcast.model.fitted": "panelcast_model_fitted",
		"simple":                 "simple",
		"with-dash_ok":           "with-dash_ok",
		"a.b>c*d":                "a_b_c_d",
	}
	for in, want := range cases {
		if got := sanitizeConsumerName(in); got != want {
			t.Errorf("sanitizeConsumerName(%q) = %q, want %q", in, got, want)
		}
	}
}

// Ensure the nats.Conn constructor path stays usable for callers that
// manage their own connection.
func TestNATSQueueWithConn(t *testing.T) {
	ns := startJetStreamServer(t)

	conn, err := nats.Connect(ns.ClientURL())
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	q, err := newNATSQueueWithConn(conn)
	if err != nil {
		t.Fatalf("newNATSQueueWithConn failed: %v", err)
	}
	defer q.Close()

	if err := q.Subscribe("panelcast.test.conn", func([]byte) error { return nil }); err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	if err := q.Publish(context.Background(), "panelcast.test.conn", []byte("hello")); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
}
