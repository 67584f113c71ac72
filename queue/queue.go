// Package queue provides the pluggable user-message queues behind a
// mailbox's consumer side. Every variant is safe for any number of
// concurrent producers; Dequeue must only ever be called by the single
// consumer that owns the mailbox's run loop.
//
// The package deliberately knows nothing about actors, PIDs, or envelopes
// — it moves opaque `any` values so that the root bollywood package (which
// does know about those types) can depend on queue without an import
// cycle.
package queue

// DeadLetterSink receives values that cannot be delivered: a closed
// target, a bounded-queue timeout, or a post-cleanup enqueue.
type DeadLetterSink interface {
	DeadLetter(receiver any, envelope any)
}

// UserQueue is the pluggable FIFO (or priority/deque) queue a mailbox
// drains from.
type UserQueue interface {
	// Enqueue is thread-safe from any producer. Bounded variants with a
	// positive push-timeout divert to deadLetters on timeout instead of
	// blocking indefinitely; Enqueue itself never reports that failure to
	// the caller — see its bounded policy.
	Enqueue(receiver, envelope any)
	// Dequeue returns the next envelope, or nil if the queue is empty.
	// Callable only by the single consumer.
	Dequeue() any
	// HasMessages is a hint, not a synchronization point.
	HasMessages() bool
	// NumberOfMessages is a hint; implementations may return a
	// conservative value (including 0) when an exact count isn't O(1).
	NumberOfMessages() int
	// CleanUp drains any residual envelopes to deadLetters, addressed to
	// owner.
	CleanUp(owner any, deadLetters DeadLetterSink)
}

// Deque is the extension capability advertised by deque-based queues: a
// capability query rather than a distinct type hierarchy.
type Deque interface {
	UserQueue
	// EnqueueFirst injects receiver/envelope at the front of the queue,
	// bypassing FIFO order for the caller — used by stash/unstash
	// patterns above this package.
	EnqueueFirst(receiver, envelope any)
}

// AsDeque reports whether q advertises the Deque capability.
func AsDeque(q UserQueue) (Deque, bool) {
	d, ok := q.(Deque)
	return d, ok
}
