package bollywood

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/lguibr/bollywood/eventstream"
	"github.com/lguibr/bollywood/queue"
)

// Dispatcher is the contract the mailbox core consumes. Mailbox never
// talks to a concrete worker pool directly — only through this interface —
// so a PoolDispatcher is swappable for a test double or a future
// implementation.
type Dispatcher interface {
	// Throughput is the upper bound on consecutive user messages processed
	// per Run; the mailbox clamps it to a minimum of 1.
	Throughput() int
	// ThroughputDeadline returns the optional wall-clock cap on one Run's
	// user-message phase, and whether it is configured at all.
	ThroughputDeadline() (time.Duration, bool)
	// RegisterForExecution asks the dispatcher to reconsider scheduling
	// mailbox, with the given hints.
	RegisterForExecution(mailbox *Mailbox, hasUserHint, hasSystemHint bool)
}

// Mailbox is the runtime core: it owns the packed Status word, the
// lock-free system message list, and a pluggable user message queue, and
// implements the state transitions and run loop that tie them together.
//
// The zero value is not usable; construct with newMailbox (Engine.Spawn
// does this, with a user queue built by the MailboxFactory).
type Mailbox struct {
	status     Status
	system     systemMessageList
	userQueue  queue.UserQueue
	actor      Actor
	self       *PID
	engine     *Engine
	dispatcher Dispatcher
	logger     *eventstream.Logger
}

// newMailbox builds a Mailbox with primary state Open, suspend-count 0,
// scheduled bit clear — which is exactly the zero value of Status, so
// there is nothing to initialize there.
func newMailbox(self *PID, engine *Engine, userQueue queue.UserQueue, dispatcher Dispatcher, logger *eventstream.Logger) *Mailbox {
	return &Mailbox{
		userQueue:  userQueue,
		self:       self,
		engine:     engine,
		dispatcher: dispatcher,
		logger:     eventstream.OrDiscard(logger),
	}
}

// setActor publishes the execution object. Engine.Spawn calls this exactly
// once, before the mailbox becomes reachable from any producer, satisfying
// the publication-safety requirement — by the time any goroutine other
// than the spawning one observes the *Mailbox at all, the actor field is
// already set.
func (m *Mailbox) setActor(actor Actor) { m.actor = actor }

// Enqueue delivers a user message. It never blocks beyond whatever the
// configured UserQueue variant blocks for, and diverts to dead letters
// itself only through the UserQueue's own bounded-timeout policy — a
// closed mailbox instead diverts here, directly, since a closed mailbox's
// queue must not accept further work at all.
func (m *Mailbox) Enqueue(receiver *PID, envelope *Envelope) {
	if m.status.IsClosed() {
		m.deadLetter(receiver, envelope)
		return
	}
	m.userQueue.Enqueue(receiver, envelope)
	m.scheduleIfNeeded(true, false)
}

// SystemEnqueue delivers a control message, taking priority over user
// traffic. deadLetters is the mailbox to divert to if this mailbox's
// system queue has already been closed by cleanUp (a Terminate closes the
// status word but leaves the system queue open until cleanUp); it is nil
// only for the dead-letter mailbox
// itself, which must never recurse into another sink.
func (m *Mailbox) SystemEnqueue(msg SystemMessage, deadLetters *Mailbox) {
	m.system.enqueue(msg, deadLetters)
	m.scheduleIfNeeded(false, true)
}

// systemEnqueueDirect is called by systemMessageList.enqueue when this
// mailbox is acting as a dead-letter sink for some other, already-closed
// mailbox's diverted system message. It never recurses: the dead-letter
// mailbox's own system queue is never itself closed during ordinary
// operation.
func (m *Mailbox) systemEnqueueDirect(msg SystemMessage) {
	m.system.enqueue(msg, nil)
}

func (m *Mailbox) deadLetter(receiver *PID, envelope *Envelope) {
	if m.engine == nil {
		return
	}
	m.engine.deadLetter(receiver, envelope)
}

// scheduleIfNeeded hands scheduling over to the dispatcher.
// RegisterForExecution itself decides, from the hints and
// canBeScheduledForExecution, whether this call is the one that wins the
// Open/Suspended→Scheduled transition.
func (m *Mailbox) scheduleIfNeeded(hasUserHint, hasSystemHint bool) {
	m.dispatcher.RegisterForExecution(m, hasUserHint, hasSystemHint)
}

// canBeScheduledForExecution is the scheduling predicate, used both by
// producers deciding whether to flip the Scheduled bit and by a dispatcher
// cheaply checking before it enqueues the mailbox onto its own run queue.
func (m *Mailbox) canBeScheduledForExecution(hasUserHint, hasSystemHint bool) bool {
	status := m.status.Load()
	if status == StatusClosed {
		return false
	}
	if status&^StatusScheduled == 0 {
		// Open (possibly already Scheduled).
		return hasUserHint || hasSystemHint || m.HasSystemMessages() || m.HasMessages()
	}
	// Some suspend-count bit is set: only system traffic may run.
	return hasSystemHint || m.HasSystemMessages()
}

// HasMessages reports whether the user queue currently holds any envelope.
// Hint only.
func (m *Mailbox) HasMessages() bool { return m.userQueue.HasMessages() }

// HasSystemMessages reports whether the system list currently holds any
// control message. Hint only.
func (m *Mailbox) HasSystemMessages() bool { return m.system.hasMessages() }

// NumberOfMessages reports the user queue's length hint.
func (m *Mailbox) NumberOfMessages() int { return m.userQueue.NumberOfMessages() }

// Suspend increments the suspend count.
func (m *Mailbox) Suspend() bool { return m.status.Suspend() }

// Resume decrements the suspend count.
func (m *Mailbox) Resume() bool { return m.status.Resume() }

// BecomeClosed transitions the mailbox to the terminal Closed state.
func (m *Mailbox) BecomeClosed() bool { return m.status.BecomeClosed() }

// IsClosed reports whether the mailbox has reached the terminal state.
func (m *Mailbox) IsClosed() bool { return m.status.IsClosed() }

// Run is the dispatcher-facing executor entry. The dispatcher guarantees
// it is never called while the Scheduled bit is clear, and never calls it
// concurrently with another Run of the same mailbox — the Scheduled bit is
// the logical mutex.
//
// ctx stands in for the JVM original's thread-interrupt flag: ctx.Err()
// != nil is treated as an observed interrupt, and ErrInterrupted is the
// interrupted-failure surfaced to the caller.
func (m *Mailbox) Run(ctx context.Context) (err error) {
	defer func() {
		// Unconditional finally: clear Scheduled and ask the dispatcher to
		// re-evaluate, regardless of how Run is exiting — including via
		// panic, which we convert to an error so the dispatcher's
		// supervision path sees it uniformly.
		if r := recover(); r != nil {
			err = fmt.Errorf("bollywood: panic in Run for %s: %v\n%s", m.self, r, debug.Stack())
		}
		m.status.SetAsIdle()
		m.dispatcher.RegisterForExecution(m, false, false)
	}()

	if m.status.IsClosed() {
		return nil
	}

	interrupted, err := m.processSystemMessages(ctx)
	if err != nil {
		return err
	}
	if interrupted {
		return ErrInterrupted
	}
	if err := m.processUserMessages(ctx); err != nil {
		return err
	}
	return nil
}

// processSystemMessages drains and delivers pending system messages ahead
// of any user message. It returns whether an interrupt was observed and
// deferred during draining, per the rule that an interrupt observed mid
// system-drain is deferred until the drain completes.
func (m *Mailbox) processSystemMessages(ctx context.Context) (interrupted bool, err error) {
	for {
		batch := m.system.drain(nil)
		if len(batch) == 0 {
			return interrupted, nil
		}
		for _, msg := range batch {
			unlink(msg)
			if err := m.actor.SystemInvoke(m.contextFor(msg), msg); err != nil {
				return interrupted, fmt.Errorf("bollywood: fatal system invoke error for %s: %w", m.self, err)
			}
			// Suspend/Resume/Terminate are the three system messages the
			// mailbox itself acts on, beyond just delivering them to
			// SystemInvoke — everything else (Watch, Unwatch, Failed,
			// Create) is purely the actor's business.
			switch msg.(type) {
			case *Terminate:
				m.status.BecomeClosed()
			case *Suspend:
				m.status.Suspend()
			case *Resume:
				m.status.Resume()
			}
			if ctx.Err() != nil {
				interrupted = true
			}
			if m.status.IsClosed() {
				m.forwardRemaining(batch)
				return interrupted, nil
			}
		}
		if !m.system.hasMessages() {
			return interrupted, nil
		}
	}
}

// forwardRemaining diverts whatever is left of a batch (only reachable
// because the mailbox became Closed mid-drain) to the dead-letter
// mailbox's system queue, logging — but not stopping for — any individual
// forwarding failure.
func (m *Mailbox) forwardRemaining(batch []SystemMessage) {
	if m.engine == nil {
		return
	}
	for _, msg := range batch {
		if unlinked(msg) {
			continue // already processed before the close was observed
		}
		func() {
			defer func() {
				if r := recover(); r != nil {
					m.logger.Error("dead-letter forwarding panicked", "actor", m.self, "message", msg, "panic", r)
				}
			}()
			unlink(msg)
			m.engine.deadLetterSystem(msg)
		}()
	}
}

// processUserMessages runs up to the configured throughput of user
// messages, honoring the optional wall-clock deadline and yielding
// whenever a system message or an interrupt needs attention.
func (m *Mailbox) processUserMessages(ctx context.Context) error {
	left := m.dispatcher.Throughput()
	if left < 1 {
		left = 1
	}
	var deadline time.Time
	hasDeadline := false
	if d, ok := m.dispatcher.ThroughputDeadline(); ok {
		deadline = time.Now().Add(d)
		hasDeadline = true
	}

	for m.status.ShouldProcessMessage() && left > 0 {
		if hasDeadline && time.Now().After(deadline) {
			return nil
		}
		raw := m.userQueue.Dequeue()
		if raw == nil {
			return nil
		}
		envelope, _ := raw.(*Envelope)
		m.actor.Invoke(m.contextFor(envelope), envelope)
		if ctx.Err() != nil {
			return ErrInterrupted
		}
		if interrupted, err := m.processSystemMessages(ctx); err != nil {
			return err
		} else if interrupted {
			return ErrInterrupted
		}
		left--
	}
	return nil
}

func (m *Mailbox) contextFor(message interface{}) *context {
	sender := (*PID)(nil)
	if env, ok := message.(*Envelope); ok {
		sender = env.Sender
		message = env.Message
	}
	return &context{engine: m.engine, self: m.self, sender: sender, message: message}
}

// cleanUp releases this mailbox's resources. It is invoked when the owning
// actor is unregistered; if this mailbox has no actor at all (it is itself
// the dead-letter mailbox) cleanup is a no-op.
func (m *Mailbox) cleanUp() {
	if m.actor == nil {
		return
	}
	remaining := m.system.close()
	if m.engine != nil {
		for _, msg := range remaining {
			unlink(msg)
			m.engine.deadLetterSystem(msg)
		}
	}
	m.userQueue.CleanUp(m.self, userQueueDeadLetterSink{engine: m.engine})
}

// userQueueDeadLetterSink adapts Engine's dead-letter routing to the
// queue package's any-typed DeadLetterSink, so queue never imports the
// root package's PID/Envelope types.
type userQueueDeadLetterSink struct {
	engine *Engine
}

func (s userQueueDeadLetterSink) DeadLetter(receiver, envelope any) {
	if s.engine == nil {
		return
	}
	pid, _ := receiver.(*PID)
	env, _ := envelope.(*Envelope)
	s.engine.deadLetter(pid, env)
}
