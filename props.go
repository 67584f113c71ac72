package bollywood

// MailboxRequirement is a marker an actor type can declare so the
// deployment machinery knows what capabilities its mailbox's user queue
// must provide. Actor creation fails before any message is
// delivered if the factory the deployment resolves does not satisfy it.
type MailboxRequirement int

const (
	// RequireNone accepts whatever queue variant the factory produces.
	RequireNone MailboxRequirement = iota
	// RequireDeque requires a queue capable of EnqueueFirst (stash).
	RequireDeque
	// RequirePriority requires a queue that dequeues in comparator order.
	RequirePriority
	// RequireUnboundedSingleConsumer requires the MPSC-optimized queue —
	// incompatible with dispatchers that allow concurrent actor runs.
	RequireUnboundedSingleConsumer
)

// Props configures how Engine.Spawn builds one actor: its Producer, an
// optional MailboxRequirement, and an optional explicit MailboxFactory
// overriding the engine's default.
type Props struct {
	producer Producer
	requirement MailboxRequirement
	factory MailboxFactory
}

// NewProps creates a Props wrapping the given actor Producer.
func NewProps(producer Producer) *Props {
	if producer == nil {
		panic("bollywood: producer cannot be nil")
	}
	return &Props{producer: producer}
}

// WithMailboxRequirement declares the capability the spawned actor's
// mailbox must provide.
func (p *Props) WithMailboxRequirement(req MailboxRequirement) *Props {
	p.requirement = req
	return p
}

// WithMailboxFactory overrides the engine's default MailboxFactory for
// this actor only.
func (p *Props) WithMailboxFactory(f MailboxFactory) *Props {
	p.factory = f
	return p
}

// Produce constructs a new Actor instance using the configured Producer.
func (p *Props) Produce() Actor { return p.producer() }
