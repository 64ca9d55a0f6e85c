package event

import (
	"testing"

	"lightning/internal/ledger"
)

func TestQueueDrainPreservesOrder(t *testing.T) {
	q := NewQueue(8)
	ids := []ledger.OrderID{11, 22, 33}
	for _, id := range ids {
		if err := q.TryPublish(Deal(id, 1, 10)); err != nil {
			t.Fatalf("publish: %v", err)
		}
	}

	var got []ledger.OrderID
	q.Drain(func(e Event) {
		got = append(got, e.OrderID)
	})
	if len(got) != len(ids) {
		t.Fatalf("drained %d events, want %d", len(got), len(ids))
	}
	for i := range ids {
		if got[i] != ids[i] {
			t.Fatalf("event %d out of order: got %d want %d", i, got[i], ids[i])
		}
	}
}

func TestQueueFullAndClosed(t *testing.T) {
	q := NewQueue(1)
	if err := q.TryPublish(EndTrading(20220901)); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if err := q.TryPublish(EndTrading(20220901)); err != ErrQueueFull {
		t.Fatalf("expected ErrQueueFull, got %v", err)
	}
	q.Close()
	if err := q.TryPublish(EndTrading(20220901)); err != ErrQueueClosed {
		t.Fatalf("expected ErrQueueClosed, got %v", err)
	}
}
