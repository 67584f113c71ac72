package bollywood

// Actor is the execution object a Mailbox drives. Its restart/supervision
// strategy is explicitly out of scope for this module — the mailbox only
// ever calls through this interface, never inspecting an actor's internal
// state.
//
// Invoke handles one user message. The mailbox does not handle a panic
// raised from Invoke: Run recovers it only to return it as an error to
// whatever drives Run, which is responsible for supervision.
//
// SystemInvoke handles one system message and is contractually responsible
// for recovering its own non-fatal errors; an error returned from
// SystemInvoke is treated by the mailbox as fatal and is surfaced to
// whatever drives Run.
type Actor interface {
	Invoke(ctx Context, envelope *Envelope)
	SystemInvoke(ctx Context, msg SystemMessage) error
}

// Producer constructs a fresh Actor instance. Engine.Spawn calls a
// Producer exactly once per actor, synchronously in the caller's
// goroutine, before that actor's Create message is enqueued.
type Producer func() Actor
