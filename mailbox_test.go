package bollywood

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/lguibr/bollywood/queue"
)

// recordingActor captures every Invoke/SystemInvoke it receives, guarded by
// a mutex since the dispatcher may run it from different worker goroutines
// across successive Run calls (never concurrently with itself).
type recordingActor struct {
	mu       sync.Mutex
	invoked  []any
	system   []SystemMessage
	failNext error
}

func (a *recordingActor) Invoke(ctx Context, envelope *Envelope) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.invoked = append(a.invoked, envelope.Message)
}

func (a *recordingActor) SystemInvoke(ctx Context, msg SystemMessage) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.system = append(a.system, msg)
	if a.failNext != nil {
		err := a.failNext
		a.failNext = nil
		return err
	}
	return nil
}

// fixedDispatcher is a Dispatcher test double that never actually schedules
// anything onto a worker pool — tests drive Mailbox.Run directly and only
// need Throughput/ThroughputDeadline/RegisterForExecution to exist.
type fixedDispatcher struct {
	throughput int
	deadline   time.Duration
	hasDead    bool
	registered int
}

func (d *fixedDispatcher) Throughput() int { return d.throughput }
func (d *fixedDispatcher) ThroughputDeadline() (time.Duration, bool) {
	return d.deadline, d.hasDead
}
func (d *fixedDispatcher) RegisterForExecution(mailbox *Mailbox, hasUserHint, hasSystemHint bool) {
	d.registered++
}

func newTestMailbox(actor Actor, throughput int) (*Mailbox, *fixedDispatcher) {
	disp := &fixedDispatcher{throughput: throughput}
	mb := newMailbox(&PID{ID: "test-1"}, nil, queue.NewUnboundedFIFO(), disp, nil)
	mb.setActor(actor)
	return mb, disp
}

func TestMailboxEnqueueThenRunInvokesActor(t *testing.T) {
	actor := &recordingActor{}
	mb, _ := newTestMailbox(actor, 10)

	mb.Enqueue(mb.self, NewEnvelope("hello", nil))
	if err := mb.Run(context.Background()); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	actor.mu.Lock()
	defer actor.mu.Unlock()
	if len(actor.invoked) != 1 || actor.invoked[0] != "hello" {
		t.Fatalf("actor.invoked = %v, want [hello]", actor.invoked)
	}
}

func TestMailboxSystemMessagesProcessedBeforeUser(t *testing.T) {
	actor := &recordingActor{}
	mb, _ := newTestMailbox(actor, 10)

	mb.Enqueue(mb.self, NewEnvelope("user", nil))
	mb.SystemEnqueue(NewSuspend(), nil)

	if err := mb.Run(context.Background()); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	actor.mu.Lock()
	defer actor.mu.Unlock()
	if len(actor.system) != 1 {
		t.Fatalf("expected one system message processed, got %d", len(actor.system))
	}
	// Suspend means the user message must NOT have been delivered this Run.
	if len(actor.invoked) != 0 {
		t.Fatalf("expected zero user messages delivered while suspended, got %v", actor.invoked)
	}
}

func TestMailboxTerminateClosesAndForwardsRemaining(t *testing.T) {
	e := NewEngine(EngineConfig{})
	defer e.Shutdown(time.Second)

	actor := &recordingActor{}
	mb, _ := newTestMailbox(actor, 10)
	mb.engine = e

	mb.SystemEnqueue(NewTerminate(), nil)
	mb.SystemEnqueue(NewResume(), nil) // enqueued before Run drains; both arrive in one batch

	if err := mb.Run(context.Background()); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if !mb.IsClosed() {
		t.Fatal("mailbox must be Closed after processing a Terminate")
	}
	_, systemMessages := e.DeadLetters()
	if len(systemMessages) != 1 {
		t.Fatalf("dead-letter system queue got %d messages, want the 1 left after Terminate", len(systemMessages))
	}
	if _, ok := systemMessages[0].(*Resume); !ok {
		t.Fatalf("forwarded message = %#v, want the Resume", systemMessages[0])
	}
}

func TestMailboxEnqueueAfterCloseDivertsToDeadLetter(t *testing.T) {
	actor := &recordingActor{}
	mb, _ := newTestMailbox(actor, 10)
	mb.status.BecomeClosed()

	// No engine wired, so deadLetter is a silent no-op; this exercises only
	// that Enqueue does not deliver to the actor once closed.
	mb.Enqueue(mb.self, NewEnvelope("late", nil))
	if err := mb.Run(context.Background()); err != nil {
		t.Fatalf("Run on a closed mailbox must be a no-op, got error: %v", err)
	}

	actor.mu.Lock()
	defer actor.mu.Unlock()
	if len(actor.invoked) != 0 {
		t.Fatal("closed mailbox must never deliver enqueued user messages")
	}
}

func TestMailboxThroughputLimitsOneRun(t *testing.T) {
	actor := &recordingActor{}
	mb, _ := newTestMailbox(actor, 2)

	for i := 0; i < 5; i++ {
		mb.Enqueue(mb.self, NewEnvelope(i, nil))
	}
	if err := mb.Run(context.Background()); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	actor.mu.Lock()
	got := len(actor.invoked)
	actor.mu.Unlock()
	if got != 2 {
		t.Fatalf("delivered %d messages in one Run, want throughput-bounded 2", got)
	}
	if mb.NumberOfMessages() != 3 {
		t.Fatalf("queue should still hold 3 undelivered messages, got %d", mb.NumberOfMessages())
	}
}

func TestMailboxRunRecoversPanicAsError(t *testing.T) {
	mb, _ := newTestMailbox(panicActor{}, 10)
	mb.Enqueue(mb.self, NewEnvelope("boom", nil))

	err := mb.Run(context.Background())
	if err == nil {
		t.Fatal("expected Run to convert a panicking Invoke into an error")
	}
}

type panicActor struct{}

func (panicActor) Invoke(ctx Context, envelope *Envelope) { panic("kaboom") }
func (panicActor) SystemInvoke(ctx Context, msg SystemMessage) error { return nil }

func TestMailboxRunSurfacesInterruption(t *testing.T) {
	actor := &recordingActor{}
	mb, _ := newTestMailbox(actor, 10)
	mb.Enqueue(mb.self, NewEnvelope("a", nil))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := mb.Run(ctx)
	if !errors.Is(err, ErrInterrupted) {
		t.Fatalf("Run error = %v, want ErrInterrupted", err)
	}
}

func TestMailboxCleanUpDivertsPendingMessagesToDeadLetters(t *testing.T) {
	e := NewEngine(EngineConfig{})
	defer e.Shutdown(time.Second)

	actor := &recordingActor{}
	mb, _ := newTestMailbox(actor, 10)
	mb.engine = e

	mb.Enqueue(mb.self, NewEnvelope("one", nil))
	mb.Enqueue(mb.self, NewEnvelope("two", nil))
	mb.Enqueue(mb.self, NewEnvelope("three", nil))
	mb.SystemEnqueue(NewSuspend(), nil)
	mb.SystemEnqueue(NewResume(), nil)

	mb.cleanUp()

	envelopes, systemMessages := e.DeadLetters()
	if len(envelopes) != 3 {
		t.Fatalf("dead-letter user queue got %d envelopes, want 3", len(envelopes))
	}
	if len(systemMessages) != 2 {
		t.Fatalf("dead-letter system queue got %d messages, want 2", len(systemMessages))
	}
	for _, msg := range systemMessages {
		if !unlinked(msg) {
			t.Fatal("forwarded system messages must be unlinked")
		}
	}

	// Further system traffic on the cleaned-up mailbox diverts to dead
	// letters instead of being accepted by the closed system queue.
	mb.SystemEnqueue(NewTerminate(), e.deadLetters)
	_, systemMessages = e.DeadLetters()
	if len(systemMessages) != 1 {
		t.Fatalf("post-cleanup SystemEnqueue got %d dead letters, want 1", len(systemMessages))
	}
}

func TestMailboxRunReregistersWithDispatcherOnExit(t *testing.T) {
	actor := &recordingActor{}
	mb, disp := newTestMailbox(actor, 10)
	mb.Enqueue(mb.self, NewEnvelope("a", nil))
	// Enqueue itself registers once; count only what Run adds.
	before := disp.registered

	if err := mb.Run(context.Background()); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if disp.registered != before+1 {
		t.Fatal("Run must call RegisterForExecution(false,false) on the way out")
	}
	if mb.status.IsScheduled() {
		t.Fatal("Run must clear the Scheduled bit before returning")
	}
}
