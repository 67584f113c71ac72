package bollywood

import (
	"testing"
	"time"

	"github.com/lguibr/bollywood/queue"
)

func TestPoolDispatcherRunsEnqueuedMailbox(t *testing.T) {
	disp := NewPoolDispatcher(DispatcherConfig{Workers: 2, Throughput: 10})
	defer disp.Stop()

	actor := &recordingActor{}
	mb := newMailbox(&PID{ID: "d-1"}, nil, queue.NewUnboundedFIFO(), disp, nil)
	mb.setActor(actor)

	done := make(chan struct{})
	go func() {
		for {
			actor.mu.Lock()
			n := len(actor.invoked)
			actor.mu.Unlock()
			if n > 0 {
				close(done)
				return
			}
			time.Sleep(time.Millisecond)
		}
	}()

	mb.Enqueue(mb.self, NewEnvelope("hi", nil))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("dispatcher never ran the mailbox after Enqueue")
	}
}

func TestPoolDispatcherRegisterForExecutionIsSingleAuthorityForScheduledBit(t *testing.T) {
	disp := NewPoolDispatcher(DispatcherConfig{Workers: 1, Throughput: 10})
	defer disp.Stop()

	actor := &recordingActor{}
	mb := newMailbox(&PID{ID: "d-2"}, nil, queue.NewUnboundedFIFO(), disp, nil)
	mb.setActor(actor)

	// Force Scheduled already set; a second RegisterForExecution attempt
	// must not re-enter the run queue (it must lose the CAS).
	if !mb.status.SetAsScheduled() {
		t.Fatal("setup: expected to win the initial SetAsScheduled")
	}
	disp.RegisterForExecution(mb, true, false)

	// Since SetAsScheduled already held, RegisterForExecution must not
	// enqueue a duplicate onto the run queue; give it a moment, then
	// confirm the mailbox never ran (a Run would have cleared the
	// Scheduled bit) before clearing the bit ourselves.
	time.Sleep(20 * time.Millisecond)
	if !mb.status.IsScheduled() {
		t.Fatal("mailbox should not have run: the Scheduled bit was cleared")
	}
	mb.status.SetAsIdle()

	actor.mu.Lock()
	n := len(actor.invoked)
	actor.mu.Unlock()
	if n != 0 {
		t.Fatal("mailbox should not have run: no message was ever enqueued")
	}
}

func TestPoolDispatcherStopIsIdempotentAndWaitsForWorkers(t *testing.T) {
	disp := NewPoolDispatcher(DispatcherConfig{Workers: 3, Throughput: 1})
	disp.Stop()
	disp.Stop() // must not panic or block forever
}

func TestPoolDispatcherThroughputDeadlineConfigured(t *testing.T) {
	disp := NewPoolDispatcher(DispatcherConfig{Workers: 1, Throughput: 5, ThroughputDeadline: 50 * time.Millisecond})
	defer disp.Stop()

	d, ok := disp.ThroughputDeadline()
	if !ok || d != 50*time.Millisecond {
		t.Fatalf("ThroughputDeadline = (%v, %v), want (50ms, true)", d, ok)
	}
	if disp.Throughput() != 5 {
		t.Fatalf("Throughput() = %d, want 5", disp.Throughput())
	}
}

func TestPoolDispatcherClampsZeroWorkersAndThroughput(t *testing.T) {
	disp := NewPoolDispatcher(DispatcherConfig{})
	defer disp.Stop()
	if disp.Throughput() != 1 {
		t.Fatalf("Throughput() = %d, want clamped 1", disp.Throughput())
	}
}
