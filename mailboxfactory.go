package bollywood

import (
	"time"

	"github.com/lguibr/bollywood/queue"
)

// MailboxFactory builds the user queue for a newly created mailbox. The
// engine owns a default factory; Props.WithMailboxFactory lets a single
// actor override it.
type MailboxFactory interface {
	// NewUserQueue builds a queue.UserQueue for one actor's mailbox.
	// deadLetters adapts the engine's dead-letter routing for the queue
	// package's any-typed DeadLetterSink (see userQueueDeadLetterSink in
	// mailbox.go).
	NewUserQueue(deadLetters queue.DeadLetterSink) (queue.UserQueue, error)
	// Satisfies reports whether queues this factory produces satisfy the
	// given MailboxRequirement, so Engine.Spawn can fail eagerly, before
	// any message is delivered.
	Satisfies(requirement MailboxRequirement) bool
}

// Settings configures a DefaultMailboxFactory.
type Settings struct {
	// Variant selects which of the published queue flavors to build.
	Variant QueueVariant
	// Capacity is the bounded-queue capacity; ignored for unbounded
	// variants. Must be >= 0.
	Capacity int
	// PushTimeout is the bounded-queue offer timeout. 0 means "put with
	// unbounded blocking"; negative is rejected at construction.
	PushTimeout time.Duration
	// Less is the comparator for priority variants; required when Variant
	// is QueueVariantPriority or QueueVariantBoundedPriority.
	Less queue.Comparator
}

// QueueVariant names one of the published queue flavors.
type QueueVariant int

const (
	QueueVariantUnboundedFIFO QueueVariant = iota
	QueueVariantBoundedFIFO
	QueueVariantUnboundedDeque
	QueueVariantBoundedDeque
	QueueVariantPriority
	QueueVariantBoundedPriority
	QueueVariantUnboundedMPSC
)

// DefaultMailboxFactory is the concrete MailboxFactory this module ships.
// It fails eagerly on construction: negative capacity or a negative
// push-timeout is rejected before any mailbox is ever built from it.
type DefaultMailboxFactory struct {
	settings Settings
}

// NewDefaultMailboxFactory validates settings and returns a factory that
// builds queue.UserQueue values from them.
func NewDefaultMailboxFactory(settings Settings) (*DefaultMailboxFactory, error) {
	if settings.Capacity < 0 {
		return nil, ErrInvalidCapacity
	}
	if settings.PushTimeout < 0 {
		return nil, ErrNilPushTimeout
	}
	if (settings.Variant == QueueVariantPriority || settings.Variant == QueueVariantBoundedPriority) && settings.Less == nil {
		return nil, ErrNilPushTimeout
	}
	return &DefaultMailboxFactory{settings: settings}, nil
}

func (f *DefaultMailboxFactory) NewUserQueue(deadLetters queue.DeadLetterSink) (queue.UserQueue, error) {
	s := f.settings
	switch s.Variant {
	case QueueVariantUnboundedFIFO:
		return queue.NewUnboundedFIFO(), nil
	case QueueVariantBoundedFIFO:
		return queue.NewBoundedFIFO(s.Capacity, s.PushTimeout, deadLetters), nil
	case QueueVariantUnboundedDeque:
		return queue.NewUnboundedDeque(), nil
	case QueueVariantBoundedDeque:
		return queue.NewBoundedDeque(s.Capacity, s.PushTimeout, deadLetters), nil
	case QueueVariantPriority:
		return queue.NewUnboundedPriority(s.Less), nil
	case QueueVariantBoundedPriority:
		return queue.NewBoundedPriority(s.Capacity, s.PushTimeout, s.Less, deadLetters), nil
	case QueueVariantUnboundedMPSC:
		return queue.NewUnboundedMPSC(), nil
	default:
		return queue.NewUnboundedFIFO(), nil
	}
}

// Satisfies checks the declared MailboxRequirement against the capability
// this factory's variant actually advertises.
func (f *DefaultMailboxFactory) Satisfies(requirement MailboxRequirement) bool {
	switch requirement {
	case RequireNone:
		return true
	case RequireDeque:
		return f.settings.Variant == QueueVariantUnboundedDeque || f.settings.Variant == QueueVariantBoundedDeque
	case RequirePriority:
		return f.settings.Variant == QueueVariantPriority || f.settings.Variant == QueueVariantBoundedPriority
	case RequireUnboundedSingleConsumer:
		return f.settings.Variant == QueueVariantUnboundedMPSC
	default:
		return false
	}
}
