package bollywood

// deadLetter delivers an undeliverable user envelope to the engine's
// dead-letter mailbox, addressed to receiver. It is the counterpart of
// systemEnqueueDirect for the user-message side.
func (e *Engine) deadLetter(receiver *PID, envelope *Envelope) {
	if e.deadLetters == nil || envelope == nil {
		return
	}
	e.deadLetters.userQueue.Enqueue(receiver, envelope)
}

// deadLetterSystem forwards an already-unlinked system message to the
// dead-letter mailbox's system queue.
func (e *Engine) deadLetterSystem(msg SystemMessage) {
	if e.deadLetters == nil || msg == nil {
		return
	}
	e.deadLetters.systemEnqueueDirect(msg)
}

// DeadLetters returns a snapshot of every envelope and system message
// currently parked in the dead-letter mailbox's queues, for diagnostics
// and tests. It is a destructive read: matching the underlying queues'
// Dequeue/drain semantics, each call removes what it returns.
func (e *Engine) DeadLetters() (envelopes []*Envelope, systemMessages []SystemMessage) {
	if e.deadLetters == nil {
		return nil, nil
	}
	for {
		raw := e.deadLetters.userQueue.Dequeue()
		if raw == nil {
			break
		}
		if env, ok := raw.(*Envelope); ok {
			envelopes = append(envelopes, env)
		}
	}
	systemMessages = e.deadLetters.system.close()
	// Re-open the dead-letter mailbox's own system queue: it must keep
	// accepting diverted messages for the lifetime of the engine, unlike
	// an ordinary mailbox's system queue, which stays closed once sealed.
	e.deadLetters.system.drain(nil)
	for _, msg := range systemMessages {
		unlink(msg)
	}
	return envelopes, systemMessages
}
