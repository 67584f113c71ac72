// Command bollywood-echo is a minimal demonstration of the actor runtime:
// it spawns a handful of echo actors behind a pooled dispatcher, sends each
// one a message, and shuts the engine down cleanly.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/lguibr/bollywood"
	"github.com/lguibr/bollywood/config"
	"github.com/lguibr/bollywood/eventstream"
)

// echoActor replies to the sender (if any) with the same message it
// received, and logs the Create and Terminate system messages it's handed.
type echoActor struct {
	id     int
	logger *eventstream.Logger
}

func (a *echoActor) Invoke(ctx bollywood.Context, envelope *bollywood.Envelope) {
	fmt.Printf("actor %d got %v from %s\n", a.id, envelope.Message, ctx.Sender())
	if ctx.Sender() != nil {
		ctx.Engine().Send(ctx.Sender(), envelope.Message, ctx.Self())
	}
}

func (a *echoActor) SystemInvoke(ctx bollywood.Context, msg bollywood.SystemMessage) error {
	switch msg.(type) {
	case *bollywood.Create:
		a.logger.Info("actor started", "id", a.id)
	case *bollywood.Terminate:
		a.logger.Info("actor stopping", "id", a.id)
	}
	return nil
}

func newEchoProducer(id int, logger *eventstream.Logger) bollywood.Producer {
	return func() bollywood.Actor { return &echoActor{id: id, logger: logger} }
}

func main() {
	cfg, err := config.NewLoader().AutoLoad()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config: falling back to defaults:", err)
		cfg = config.DefaultConfig()
	}

	logger := eventstream.New(slog.NewTextHandler(os.Stdout, nil))

	factory, err := bollywood.NewDefaultMailboxFactory(bollywood.Settings{
		Variant:     variantFor(cfg.Mailbox.Variant),
		Capacity:    cfg.Mailbox.Capacity,
		PushTimeout: cfg.Mailbox.PushTimeout,
	})
	if err != nil {
		panic(fmt.Sprintf("bollywood: invalid mailbox configuration: %v", err))
	}

	dispatcher := bollywood.NewPoolDispatcher(bollywood.DispatcherConfig{
		Workers:            cfg.Dispatcher.Workers,
		Throughput:         cfg.Dispatcher.Throughput,
		ThroughputDeadline: cfg.Dispatcher.ThroughputDeadline,
		RunQueueSize:       cfg.Dispatcher.RunQueueSize,
		Logger:             logger,
	})

	engine := bollywood.NewEngine(bollywood.EngineConfig{
		DefaultFactory: factory,
		Dispatcher:     dispatcher,
		Logger:         logger,
	})

	const actorCount = 3
	pids := make([]*bollywood.PID, actorCount)
	for i := 0; i < actorCount; i++ {
		pid, err := engine.Spawn(bollywood.NewProps(newEchoProducer(i, logger)))
		if err != nil {
			panic(fmt.Sprintf("bollywood: spawn failed: %v", err))
		}
		pids[i] = pid
	}

	for _, pid := range pids {
		engine.Send(pid, "hello", nil)
	}

	time.Sleep(100 * time.Millisecond)

	envelopes, systemMessages := engine.DeadLetters()
	if len(envelopes) > 0 || len(systemMessages) > 0 {
		fmt.Printf("dead letters: %d envelopes, %d system messages\n", len(envelopes), len(systemMessages))
	}

	engine.Shutdown(2 * time.Second)
}

func variantFor(v config.Variant) bollywood.QueueVariant {
	switch v {
	case config.VariantBoundedFIFO:
		return bollywood.QueueVariantBoundedFIFO
	case config.VariantUnboundedDeque:
		return bollywood.QueueVariantUnboundedDeque
	case config.VariantBoundedDeque:
		return bollywood.QueueVariantBoundedDeque
	case config.VariantPriority:
		return bollywood.QueueVariantPriority
	case config.VariantBoundedPriority:
		return bollywood.QueueVariantBoundedPriority
	case config.VariantUnboundedMPSC:
		return bollywood.QueueVariantUnboundedMPSC
	default:
		return bollywood.QueueVariantUnboundedFIFO
	}
}
