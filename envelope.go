package bollywood

// Envelope is the opaque pair of message payload and sender reference
// carried by the user message queue. The mailbox
// never inspects or mutates the payload; it only moves the envelope between
// a producer and the single consuming run loop.
type Envelope struct {
	Message interface{}
	Sender *PID
}

// NewEnvelope wraps a message and its (possibly nil) sender into an Envelope.
func NewEnvelope(message interface{}, sender *PID) *Envelope {
	return &Envelope{Message: message, Sender: sender}
}
