package amqp

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/rabbitmq/amqp091-go"
)

type fakeAck struct {
	acked   int
	nacked  int
	requeue bool
}

func (f *fakeAck) Ack(tag uint64, multiple bool) error { f.acked++; return nil }

func (f *fakeAck) Nack(tag uint64, multiple, requeue bool) error {
	f.nacked++
	f.requeue = requeue
	return nil
}

func (f *fakeAck) Reject(tag uint64, requeue bool) error { return nil }

func newTestClient() *Client {
	return &Client{logger: slog.Default()}
}

func delivery(ack *fakeAck, body string) amqp091.Delivery {
	return amqp091.Delivery{Acknowledger: ack, DeliveryTag: 1, Body: []byte(body)}
}

func TestHandleDeliveryAcksOnSuccess(t *testing.T) {
	ack := &fakeAck{}
	var got *ChangeMessage
	newTestClient().handleDelivery(context.Background(),
		delivery(ack, `{"kind":"transaction.added","transaction_id":"abc","timestamp":"2025-03-01T10:00:00Z"}`),
		func(_ context.Context, m *ChangeMessage) error { got = m; return nil })

	if ack.acked != 1 || ack.nacked != 0 {
		t.Fatalf("expected ack, got %+v", ack)
	}
	if got == nil || got.Kind != TransactionAdded || got.TransactionID != "abc" {
		t.Fatalf("unexpected message: %+v", got)
	}
}

func TestHandleDeliveryDropsOnFailure(t *testing.T) {
	cases := []struct {
		name    string
		body    string
		handler Handler
	}{
		{"bad json", `{`, func(context.Context, *ChangeMessage) error { return nil }},
		{"unknown kind", `{"kind":"mystery"}`, func(context.Context, *ChangeMessage) error { return nil }},
		{"handler error", `{"kind":"settings.changed","slot":"budget"}`, func(context.Context, *ChangeMessage) error { return errors.New("sheets down") }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ack := &fakeAck{}
			newTestClient().handleDelivery(context.Background(), delivery(ack, tc.body), tc.handler)
			if ack.nacked != 1 || ack.acked != 0 || ack.requeue {
				t.Fatalf("expected nack without requeue, got %+v", ack)
			}
		})
	}
}

func TestChangeMessageJSON(t *testing.T) {
	msg := NewChangeMessage(TransactionRemoved, "id-1", "")
	b, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(b), "slot") {
		t.Fatalf("empty slot should be omitted: %s", b)
	}
	back, err := ChangeMessageFromJSON(b)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.Kind != TransactionRemoved || back.TransactionID != "id-1" || !back.Timestamp.Equal(msg.Timestamp) {
		t.Fatalf("unexpected message: %+v", back)
	}
}
