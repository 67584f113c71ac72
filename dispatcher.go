package bollywood

import (
	"context"
	"sync"
	"time"

	"github.com/lguibr/bollywood/eventstream"
)

// PoolDispatcher is a fixed-size goroutine worker pool draining a
// run-queue channel, replacing a one-goroutine-per-actor model with a
// worker pool that calls Run on whichever mailbox a worker pulls off the
// queue.
//
// RegisterForExecution never blocks the caller: a full run queue means the
// mailbox is parked in a spillover backlog, which RegisterForExecution and
// every worker (after each Run) move onto the run queue as space frees up.
type PoolDispatcher struct {
	throughput         int
	throughputDeadline time.Duration
	hasDeadline        bool
	runQueue           chan *Mailbox
	logger             *eventstream.Logger

	mu      sync.Mutex
	backlog []*Mailbox

	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// DispatcherConfig configures a PoolDispatcher.
type DispatcherConfig struct {
	// Workers is the number of goroutines draining the run queue. Clamped
	// to a minimum of 1.
	Workers int
	// Throughput is the per-Run upper bound on consecutive user messages.
	// Clamped to a minimum of 1.
	Throughput int
	// ThroughputDeadline optionally caps one Run's user-message phase by
	// wall clock, on top of the Throughput count. Zero means "no
	// deadline".
	ThroughputDeadline time.Duration
	// RunQueueSize bounds the dispatcher's run-queue channel. A mailbox
	// that can't fit is held in an in-memory backlog and retried as
	// workers free up, so RegisterForExecution never blocks.
	RunQueueSize int
	Logger       *eventstream.Logger
}

// NewPoolDispatcher starts Workers goroutines draining an internal run
// queue and returns the dispatcher that feeds them.
func NewPoolDispatcher(cfg DispatcherConfig) *PoolDispatcher {
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}
	throughput := cfg.Throughput
	if throughput < 1 {
		throughput = 1
	}
	runQueueSize := cfg.RunQueueSize
	if runQueueSize < 1 {
		runQueueSize = workers * 4
	}

	d := &PoolDispatcher{
		throughput:         throughput,
		throughputDeadline: cfg.ThroughputDeadline,
		hasDeadline:        cfg.ThroughputDeadline > 0,
		runQueue:           make(chan *Mailbox, runQueueSize),
		logger:             eventstream.OrDiscard(cfg.Logger),
		stopCh:             make(chan struct{}),
	}
	for i := 0; i < workers; i++ {
		d.wg.Add(1)
		go d.worker()
	}
	return d
}

func (d *PoolDispatcher) Throughput() int { return d.throughput }

func (d *PoolDispatcher) ThroughputDeadline() (time.Duration, bool) {
	return d.throughputDeadline, d.hasDeadline
}

// RegisterForExecution is called both by producers that just enqueued work
// and, unconditionally with hasUserHint=hasSystemHint=false, by the end of
// every Run. It alone performs the CAS that sets the Scheduled bit — only
// the caller that wins that CAS actually pushes mailbox onto the run
// queue, so a mailbox is never queued twice for the same idle→active
// transition.
func (d *PoolDispatcher) RegisterForExecution(mailbox *Mailbox, hasUserHint, hasSystemHint bool) {
	if !mailbox.canBeScheduledForExecution(hasUserHint, hasSystemHint) {
		return
	}
	if !mailbox.status.SetAsScheduled() {
		return
	}
	select {
	case d.runQueue <- mailbox:
		return
	default:
	}
	d.mu.Lock()
	d.backlog = append(d.backlog, mailbox)
	d.mu.Unlock()
	d.drainBacklog()
}

func (d *PoolDispatcher) drainBacklog() {
	for {
		d.mu.Lock()
		if len(d.backlog) == 0 {
			d.mu.Unlock()
			return
		}
		m := d.backlog[0]
		select {
		case d.runQueue <- m:
			d.backlog = d.backlog[1:]
			d.mu.Unlock()
		default:
			d.mu.Unlock()
			return
		}
	}
}

func (d *PoolDispatcher) worker() {
	defer d.wg.Done()
	for {
		select {
		case <-d.stopCh:
			return
		case mailbox := <-d.runQueue:
			d.run(mailbox)
			d.drainBacklog()
		}
	}
}

// run executes one mailbox and converts any propagated error (a user
// invocation panic/error, or ErrInterrupted) into a Failed system message
// for the actor's parent, and a Terminated for its watchers once the
// mailbox has closed (see Engine.reportFailure) — this assigns supervision of
// user-invocation errors to the dispatcher, not the mailbox.
func (d *PoolDispatcher) run(mailbox *Mailbox) {
	ctx := context.Background()
	if mailbox.engine != nil {
		var cancel context.CancelFunc
		ctx, cancel = context.WithCancel(mailbox.engine.shutdownContext())
		defer cancel()
	}

	err := mailbox.Run(ctx)
	if err != nil {
		d.logger.Error("actor run failed", "actor", mailbox.self, "error", err)
		if mailbox.engine != nil {
			mailbox.engine.reportFailure(mailbox.self, err)
		}
	}
	if mailbox.engine != nil && mailbox.IsClosed() {
		mailbox.engine.remove(mailbox.self)
	}
}

// Stop signals every worker goroutine to exit and waits for them to do so.
// Already-queued mailboxes are abandoned; callers that need a graceful
// drain should stop spawning new work and let in-flight Runs finish before
// calling Stop.
func (d *PoolDispatcher) Stop() {
	d.stopOnce.Do(func() { close(d.stopCh) })
	d.wg.Wait()
}
