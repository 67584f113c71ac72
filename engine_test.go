package bollywood

import (
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newEchoProducer(invoked chan<- *Envelope) Producer {
	return func() Actor {
		return &echoActor{invoked: invoked}
	}
}

// echoActor reports every user message it receives on a channel and
// ignores system messages; closing on Terminate is done by the mailbox
// itself, not by this actor.
type echoActor struct {
	invoked chan<- *Envelope
}

func (a *echoActor) Invoke(ctx Context, envelope *Envelope) {
	if a.invoked != nil {
		a.invoked <- envelope
	}
}

func (a *echoActor) SystemInvoke(ctx Context, msg SystemMessage) error { return nil }

func TestEngineSpawnSendInvokesActor(t *testing.T) {
	e := NewEngine(EngineConfig{})
	defer e.Shutdown(time.Second)

	invoked := make(chan *Envelope, 1)
	pid, err := e.Spawn(NewProps(newEchoProducer(invoked)))
	if err != nil {
		t.Fatalf("Spawn returned error: %v", err)
	}

	e.Send(pid, "hello", nil)

	select {
	case env := <-invoked:
		if env.Message != "hello" {
			t.Fatalf("Invoke got %v, want hello", env.Message)
		}
	case <-time.After(time.Second):
		t.Fatal("actor never received the sent message")
	}
}

func TestEngineSendToUnknownPIDDeadLetters(t *testing.T) {
	e := NewEngine(EngineConfig{})
	defer e.Shutdown(time.Second)

	ghost := &PID{ID: "ghost"}
	e.Send(ghost, "nobody-home", nil)

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		envelopes, _ := e.DeadLetters()
		if len(envelopes) == 1 && envelopes[0].Message == "nobody-home" {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("message to an unknown PID never reached dead letters")
}

func TestEngineSpawnCapabilityUnsatisfied(t *testing.T) {
	factory, err := NewDefaultMailboxFactory(Settings{Variant: QueueVariantUnboundedFIFO})
	if err != nil {
		t.Fatalf("NewDefaultMailboxFactory: %v", err)
	}
	e := NewEngine(EngineConfig{DefaultFactory: factory})
	defer e.Shutdown(time.Second)

	_, err = e.Spawn(NewProps(newEchoProducer(nil)).WithMailboxRequirement(RequireDeque))
	if err != ErrCapabilityUnsatisfied {
		t.Fatalf("Spawn error = %v, want ErrCapabilityUnsatisfied", err)
	}
}

func TestEngineWatchNotifiesTerminated(t *testing.T) {
	e := NewEngine(EngineConfig{})
	defer e.Shutdown(time.Second)

	childInvoked := make(chan *Envelope, 1)
	child, err := e.Spawn(NewProps(newEchoProducer(childInvoked)))
	if err != nil {
		t.Fatalf("Spawn child: %v", err)
	}

	watcherNotified := make(chan SystemMessage, 1)
	watcher, err := e.Spawn(NewProps(func() Actor {
		return &watchingActor{notified: watcherNotified}
	}))
	if err != nil {
		t.Fatalf("Spawn watcher: %v", err)
	}

	e.Watch(child, watcher)
	e.Stop(child)

	select {
	case msg := <-watcherNotified:
		terminated, ok := msg.(*Terminated)
		if !ok || terminated.Who.ID != child.ID {
			t.Fatalf("watcher got %#v, want Terminated{Who: child}", msg)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("watcher was never notified of child termination")
	}
}

type watchingActor struct {
	notified chan<- SystemMessage
}

func (a *watchingActor) Invoke(ctx Context, envelope *Envelope) {}
func (a *watchingActor) SystemInvoke(ctx Context, msg SystemMessage) error {
	switch msg.(type) {
	case *Terminated:
		a.notified <- msg
	}
	return nil
}

func TestEngineShutdownStopsAllActorsAndDispatcher(t *testing.T) {
	e := NewEngine(EngineConfig{})

	for i := 0; i < 5; i++ {
		if _, err := e.Spawn(NewProps(newEchoProducer(nil))); err != nil {
			t.Fatalf("Spawn: %v", err)
		}
	}

	e.Shutdown(2 * time.Second)

	e.mu.RLock()
	remaining := len(e.actors)
	e.mu.RUnlock()
	if remaining != 0 {
		t.Fatalf("%d actors remain registered after Shutdown", remaining)
	}

	if _, err := e.Spawn(NewProps(newEchoProducer(nil))); err != ErrMailboxClosed {
		t.Fatalf("Spawn after Shutdown = %v, want ErrMailboxClosed", err)
	}
}
