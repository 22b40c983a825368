package queue

import (
	"context"
	"testing"
	"time"
)

func TestInMemoryPublishConsume(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	q := NewInMemory(4)
	if err := q.Publish(ctx, Message{Type: "session.saved", Body: []byte("u1")}); err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	messages, err := q.Consume(ctx)
	if err != nil {
		t.Fatalf("consume init failed: %v", err)
	}

	select {
	case msg := <-messages:
		if msg.Type != "session.saved" || string(msg.Body) != "u1" {
			t.Fatalf("message = %+v", msg)
		}
	case <-time.After(time.Second):
		t.Fatal("no message delivered")
	}

	cancel()
	select {
	case _, ok := <-messages:
		if ok {
			t.Fatal("expected closed channel after cancel")
		}
	case <-time.After(time.Second):
		t.Fatal("channel not closed after cancel")
	}
}

func TestPublishCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	q := NewInMemory(0)
	if err := q.Publish(ctx, Message{Type: "x"}); err == nil {
		t.Fatal("expected error publishing to a full queue with cancelled context")
	}
}

func TestEncodeDecode(t *testing.T) {
	tests := []struct {
		name string
		msg  Message
	}{
		{name: "plain", msg: Message{Type: "session.saved", Body: []byte("u1")}},
		{name: "pipe in body", msg: Message{Type: "session.saved", Body: []byte("u1|2025-06-05")}},
		{name: "empty body", msg: Message{Type: "ping", Body: []byte("")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := decode(encode(tt.msg))
			if got.Type != tt.msg.Type || string(got.Body) != string(tt.msg.Body) {
				t.Fatalf("round trip = %+v want %+v", got, tt.msg)
			}
		})
	}
}
