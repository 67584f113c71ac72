package bollywood

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lguibr/bollywood/eventstream"
	"github.com/lguibr/bollywood/queue"
)

// Engine owns the PID space, Spawn/Send/SystemSend routing, and the
// dead-letter mailbox singleton for one actor system. It hands every
// mailbox to a pooled Dispatcher instead of starting one goroutine per
// actor.
type Engine struct {
	pidCounter uint64

	mu       sync.RWMutex
	actors   map[string]*Mailbox
	parents  map[string]*PID
	watchers map[string][]*PID

	defaultFactory MailboxFactory
	dispatcher     *PoolDispatcher
	logger         *eventstream.Logger
	deadLetters    *Mailbox

	stopping   atomic.Bool
	shutdownCh chan struct{}
}

// EngineConfig configures a new Engine.
type EngineConfig struct {
	DefaultFactory MailboxFactory
	Dispatcher     *PoolDispatcher
	Logger         *eventstream.Logger
}

// NewEngine constructs an Engine. A nil DefaultFactory defaults to an
// unbounded FIFO factory; a nil Dispatcher starts a single-worker
// PoolDispatcher with throughput 30 (actors are small and short-lived, so
// a modest default throughput keeps any one actor from starving the
// others).
func NewEngine(cfg EngineConfig) *Engine {
	factory := cfg.DefaultFactory
	if factory == nil {
		factory, _ = NewDefaultMailboxFactory(Settings{Variant: QueueVariantUnboundedFIFO})
	}
	dispatcher := cfg.Dispatcher
	if dispatcher == nil {
		dispatcher = NewPoolDispatcher(DispatcherConfig{Workers: 1, Throughput: 30})
	}

	e := &Engine{
		actors:         make(map[string]*Mailbox),
		parents:        make(map[string]*PID),
		watchers:       make(map[string][]*PID),
		defaultFactory: factory,
		dispatcher:     dispatcher,
		logger:         eventstream.OrDiscard(cfg.Logger),
		shutdownCh:     make(chan struct{}),
	}

	// The dead-letter mailbox has no actor and is reachable only through
	// e.deadLetter/e.deadLetterSystem, never scheduled.
	deadLetterQueue := queue.NewUnboundedFIFO()
	e.deadLetters = newMailbox(&PID{ID: "dead-letters"}, e, deadLetterQueue, dispatcher, e.logger)

	return e
}

func (e *Engine) shutdownContext() context.Context {
	return contextFromChan(e.shutdownCh)
}

// chanContext adapts a close-to-cancel channel to a context.Context, so
// Mailbox.Run's interrupt-polling (ctx.Err) observes Engine.Shutdown the
// same way it would observe any other cancellation.
type chanContext struct {
	context.Context
	done <-chan struct{}
}

func (c chanContext) Done() <-chan struct{} { return c.done }
func (c chanContext) Err() error {
	select {
	case <-c.done:
		return context.Canceled
	default:
		return nil
	}
}

func contextFromChan(done <-chan struct{}) context.Context {
	return chanContext{Context: context.Background(), done: done}
}

// nextPID generates a unique PID, following an "actor-N" naming scheme.
func (e *Engine) nextPID() *PID {
	id := atomic.AddUint64(&e.pidCounter, 1)
	return newPID(id)
}

// Spawn builds a new actor from props, validates its declared
// MailboxRequirement against the resolved factory, and registers it with
// the dispatcher. The actor's Create message is delivered as its first
// system message, so Invoke/SystemInvoke never race the constructor.
func (e *Engine) Spawn(props *Props) (*PID, error) {
	if e.stopping.Load() {
		return nil, ErrMailboxClosed
	}

	factory := props.factory
	if factory == nil {
		factory = e.defaultFactory
	}
	if !factory.Satisfies(props.requirement) {
		return nil, ErrCapabilityUnsatisfied
	}

	pid := e.nextPID()
	userQueue, err := factory.NewUserQueue(userQueueDeadLetterSink{engine: e})
	if err != nil {
		return nil, err
	}

	mailbox := newMailbox(pid, e, userQueue, e.dispatcher, e.logger)
	actor := props.Produce()
	if actor == nil {
		return nil, fmt.Errorf("bollywood: producer for %s returned a nil actor", pid)
	}
	mailbox.setActor(actor)

	e.mu.Lock()
	e.actors[pid.ID] = mailbox
	e.mu.Unlock()

	mailbox.SystemEnqueue(NewCreate(), e.deadLetters)
	return pid, nil
}

// lookup returns the mailbox for pid, or nil if it is unknown (already
// removed, or never existed).
func (e *Engine) lookup(pid *PID) *Mailbox {
	if pid == nil {
		return nil
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.actors[pid.ID]
}

// Send delivers a user message to target, from sender (which may be nil
// for messages originating outside the actor system).
func (e *Engine) Send(target *PID, message interface{}, sender *PID) {
	mailbox := e.lookup(target)
	if mailbox == nil {
		e.deadLetter(target, NewEnvelope(message, sender))
		return
	}
	mailbox.Enqueue(target, NewEnvelope(message, sender))
}

// SystemSend delivers a system message to target.
func (e *Engine) SystemSend(target *PID, msg SystemMessage) {
	mailbox := e.lookup(target)
	if mailbox == nil {
		e.deadLetterSystem(msg)
		return
	}
	mailbox.SystemEnqueue(msg, e.deadLetters)
}

// Suspend stops target from processing user messages until a matching
// Resume.
func (e *Engine) Suspend(target *PID) { e.SystemSend(target, NewSuspend()) }

// Resume reverses one prior Suspend.
func (e *Engine) Resume(target *PID) { e.SystemSend(target, NewResume()) }

// Watch registers watcher to receive a Terminated message once target's
// mailbox closes.
func (e *Engine) Watch(target, watcher *PID) {
	e.mu.Lock()
	e.watchers[target.ID] = append(e.watchers[target.ID], watcher)
	e.mu.Unlock()
	e.SystemSend(target, NewWatch(watcher))
}

// Unwatch cancels a prior Watch.
func (e *Engine) Unwatch(target, watcher *PID) {
	e.mu.Lock()
	list := e.watchers[target.ID]
	for i, w := range list {
		if w.ID == watcher.ID {
			e.watchers[target.ID] = append(list[:i], list[i+1:]...)
			break
		}
	}
	e.mu.Unlock()
	e.SystemSend(target, NewUnwatch(watcher))
}

// Stop requests that target's mailbox close, via a Terminate system
// message.
func (e *Engine) Stop(target *PID) {
	e.SystemSend(target, NewTerminate())
}

// reportFailure notifies target's parent (if any) with a Failed message,
// and notifies every registered watcher with Terminated once the mailbox
// that failed has actually closed. It is called by the dispatcher when a
// Run returns a non-nil error (user-invocation panic/error, or
// ErrInterrupted).
func (e *Engine) reportFailure(target *PID, reason error) {
	e.mu.RLock()
	parent, hasParent := e.parents[target.ID]
	e.mu.RUnlock()
	if hasParent {
		e.SystemSend(parent, NewFailed(target, reason))
	}

	mailbox := e.lookup(target)
	if mailbox != nil && mailbox.IsClosed() {
		e.notifyTerminated(target)
	}
}

func (e *Engine) notifyTerminated(who *PID) {
	e.mu.Lock()
	watchers := e.watchers[who.ID]
	delete(e.watchers, who.ID)
	e.mu.Unlock()
	for _, w := range watchers {
		e.SystemSend(w, NewTerminated(who))
	}
}

// remove unregisters pid's mailbox, runs its cleanUp, and notifies its
// watchers. Called internally once an actor's mailbox has reached the
// Closed state.
func (e *Engine) remove(pid *PID) {
	e.mu.Lock()
	mailbox, ok := e.actors[pid.ID]
	delete(e.actors, pid.ID)
	delete(e.parents, pid.ID)
	e.mu.Unlock()
	if ok {
		mailbox.cleanUp()
	}
	e.notifyTerminated(pid)
}

// Shutdown stops every live actor, waits up to timeout for their mailboxes
// to close and clean up, then stops the dispatcher's worker pool.
func (e *Engine) Shutdown(timeout time.Duration) {
	if !e.stopping.CompareAndSwap(false, true) {
		return
	}
	close(e.shutdownCh)

	e.mu.RLock()
	pids := make([]*PID, 0, len(e.actors))
	for _, mailbox := range e.actors {
		pids = append(pids, mailbox.self)
	}
	e.mu.RUnlock()

	for _, pid := range pids {
		e.Stop(pid)
	}

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		e.mu.RLock()
		remaining := len(e.actors)
		e.mu.RUnlock()
		if remaining == 0 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	e.mu.Lock()
	for _, mailbox := range e.actors {
		mailbox.cleanUp()
	}
	e.actors = make(map[string]*Mailbox)
	e.mu.Unlock()

	e.dispatcher.Stop()
}
