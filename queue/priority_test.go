package queue

import (
	"testing"
	"time"
)

func intLess(a, b any) bool { return a.(int) < b.(int) }

func TestUnboundedPriorityOrdersByComparator(t *testing.T) {
	q := NewUnboundedPriority(intLess)
	q.Enqueue("r", 5)
	q.Enqueue("r", 1)
	q.Enqueue("r", 3)

	for _, want := range []int{1, 3, 5} {
		got := q.Dequeue()
		if got != want {
			t.Fatalf("Dequeue = %v, want %v", got, want)
		}
	}
}

func TestUnboundedPriorityNumberOfMessagesExact(t *testing.T) {
	q := NewUnboundedPriority(intLess)
	q.Enqueue("r", 1)
	q.Enqueue("r", 2)
	if n := q.NumberOfMessages(); n != 2 {
		t.Fatalf("NumberOfMessages = %d, want 2", n)
	}
	q.Dequeue()
	if n := q.NumberOfMessages(); n != 1 {
		t.Fatalf("NumberOfMessages = %d, want 1 after one Dequeue", n)
	}
}

func TestBoundedPriorityDivertsOnTimeout(t *testing.T) {
	sink := &recordingSink{}
	q := NewBoundedPriority(1, 10*time.Millisecond, intLess, sink)

	q.Enqueue("r1", 1)
	q.Enqueue("r2", 2)

	if len(sink.envelopes) != 1 || sink.envelopes[0] != 2 {
		t.Fatalf("expected 2 diverted, got %v", sink.envelopes)
	}
}

func TestBoundedPriorityCleanUp(t *testing.T) {
	q := NewBoundedPriority(4, 0, intLess, nil)
	q.Enqueue("r1", 3)
	q.Enqueue("r2", 1)

	sink := &recordingSink{}
	q.CleanUp("owner", sink)
	if len(sink.envelopes) != 2 {
		t.Fatalf("got %d dead letters, want 2", len(sink.envelopes))
	}
}
