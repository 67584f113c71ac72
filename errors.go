package bollywood

import "errors"

// ErrInterrupted is the Go rendition of the original's "interrupted
// failure". A thread-interrupt flag polled between invocations there
// becomes a context.Context polled here, and cancellation surfaces as this
// sentinel-wrapped error rather than clearing and rethrowing an interrupt
// bit.
var ErrInterrupted = errors.New("bollywood: run was interrupted")

// ErrMailboxClosed is returned by Engine.Spawn once the engine has begun
// shutting down.
var ErrMailboxClosed = errors.New("bollywood: mailbox is closed")

// ErrInvalidCapacity is returned by a MailboxFactory when asked to build a
// bounded queue with a negative capacity.
var ErrInvalidCapacity = errors.New("bollywood: mailbox capacity must be >= 0")

// ErrNilPushTimeout is returned by NewDefaultMailboxFactory when the
// push-timeout is negative, and also when a priority variant is
// configured without a comparator.
var ErrNilPushTimeout = errors.New("bollywood: mailbox push-timeout must be set")

// ErrCapabilityUnsatisfied is returned by actor creation when a declared
// mailbox requirement (e.g. "deque-based") is not satisfied by the queue a
// factory produced.
var ErrCapabilityUnsatisfied = errors.New("bollywood: mailbox factory does not satisfy declared requirement")
